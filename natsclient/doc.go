// Package natsclient wraps the NATS connection used by the optional monitor
// relay. It owns connect and drain lifecycle, reconnect options and handler
// logging, so the rest of the code deals only with Publish and Subscribe.
package natsclient
