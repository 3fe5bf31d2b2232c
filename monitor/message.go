package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/thermoflow/errors"
)

// OutputTag marks "value pushed downstream" lines on the wire.
const OutputTag = ">"

// Message is one monitoring event: a stage-state snapshot or a stage output.
// Messages are ephemeral; each gets one best-effort delivery pass and is then
// discarded.
type Message struct {
	Index   int
	Tag     string
	Payload string
}

// Line renders the message in wire form. State lines are
// "<index>: <tag>: <payload>"; output lines are "<index>: >:<value>" with no
// space after the tag separator. Observers that only know the deployed
// pipeline's shape key off index and tag.
func (m Message) Line() string {
	if m.Tag == OutputTag {
		return fmt.Sprintf("%d: %s:%s", m.Index, OutputTag, m.Payload)
	}
	return fmt.Sprintf("%d: %s: %s", m.Index, m.Tag, m.Payload)
}

// ParseLine decodes a wire line back into a Message. Payloads may themselves
// contain colons (JSON), so everything after the second separator is payload.
func ParseLine(line string) (Message, error) {
	parts := strings.Split(line, ":")
	if len(parts) < 3 {
		return Message{}, errors.WrapInvalid(
			fmt.Errorf("malformed monitor line %q", line),
			"Message", "ParseLine", "field count check")
	}

	index, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Message{}, errors.WrapInvalid(err, "Message", "ParseLine", "index parse")
	}

	return Message{
		Index:   index,
		Tag:     strings.TrimSpace(parts[1]),
		Payload: strings.TrimSpace(strings.Join(parts[2:], ":")),
	}, nil
}
