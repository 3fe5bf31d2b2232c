package monitor

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360/thermoflow/component"
	"github.com/c360/thermoflow/errors"
	"github.com/c360/thermoflow/natsclient"
)

// RelayConfig holds configuration for the NATS monitor relay.
type RelayConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Validate checks the configuration for errors
func (c *RelayConfig) Validate() error {
	if c.URL == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "RelayConfig", "Validate", "url is required")
	}
	if c.Subject == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "RelayConfig", "Validate", "subject is required")
	}
	return nil
}

// DefaultRelayConfig returns the default relay settings.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		URL:     "nats://localhost:4222",
		Subject: "thermoflow.monitor",
	}
}

// Relay republishes every broadcast line to a NATS subject. It registers
// with the hub as a permanent subscriber: transient publish failures are
// logged and swallowed rather than returned, so a NATS outage does not get
// the relay pruned; the client reconnects on its own.
type Relay struct {
	id      string
	subject string
	client  *natsclient.Client
	logger  *slog.Logger
}

// NewRelay creates a relay publishing to the configured subject.
func NewRelay(config RelayConfig, client *natsclient.Client, deps component.Dependencies) (*Relay, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Relay", "NewRelay", "nats client is required")
	}

	return &Relay{
		id:      "nats-relay-" + uuid.NewString(),
		subject: config.Subject,
		client:  client,
		logger:  deps.GetLoggerWithComponent("monitor-relay"),
	}, nil
}

// ID implements Subscriber.
func (r *Relay) ID() string {
	return r.id
}

// WriteLine publishes one wire line.
func (r *Relay) WriteLine(line string) error {
	if err := r.client.Publish(r.subject, []byte(line)); err != nil {
		if errors.IsTransient(err) {
			r.logger.Debug("relay publish skipped", "subject", r.subject, "error", err)
			return nil
		}
		return err
	}
	return nil
}

// Close disconnects the relay's NATS client.
func (r *Relay) Close() error {
	return r.client.Close()
}
