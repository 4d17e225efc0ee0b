package stream

import (
	"encoding/json"
	"strings"

	"github.com/helio-search/helio/internal/domain/search/result"
)

// payloadPrefix marks payload lines inside a frame. Lines without it
// (comments, retry hints) carry no payload.
const payloadPrefix = "data:"

// Event is one parsed protocol event. The set of implementations is closed;
// server-side event types this client does not know about surface as Unknown
// so observers still see them.
type Event interface {
	isEvent()
}

// Connected carries the server-assigned correlation id for the session.
type Connected struct {
	RequestID string
}

// Results carries a full replacement of the current result list.
type Results struct {
	Items []result.Item
}

// CompletionDone carries the generated answer text.
type CompletionDone struct {
	Text string
}

// ErrorEvent carries a server-reported failure message.
type ErrorEvent struct {
	Message string
}

// Done marks the natural end of the stream.
type Done struct{}

// Cancelled is synthesized locally when a session is cancelled; it never
// arrives on the wire.
type Cancelled struct{}

// Unknown preserves an event with an unrecognized type discriminant.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (Connected) isEvent()      {}
func (Results) isEvent()        {}
func (CompletionDone) isEvent() {}
func (ErrorEvent) isEvent()     {}
func (Done) isEvent()           {}
func (Cancelled) isEvent()      {}
func (Unknown) isEvent()        {}

// Parse extracts the payload from a frame and decodes it into an Event.
// Frames with no payload, non-JSON payload, or a missing type discriminant
// yield (nil, false); they are keep-alive noise, not errors.
func Parse(f Frame) (Event, bool) {
	payload := payloadOf(f)
	if payload == "" {
		return nil, false
	}

	var envelope struct {
		Type      string        `json:"type"`
		RequestID string        `json:"request_id"`
		Results   []result.Item `json:"results"`
		Text      string        `json:"text"`
		Message   string        `json:"message"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, false
	}

	switch envelope.Type {
	case "connected":
		return Connected{RequestID: envelope.RequestID}, true
	case "results":
		return Results{Items: envelope.Results}, true
	case "completion_done":
		return CompletionDone{Text: envelope.Text}, true
	case "error":
		return ErrorEvent{Message: envelope.Message}, true
	case "done":
		return Done{}, true
	case "":
		return nil, false
	default:
		return Unknown{Type: envelope.Type, Raw: json.RawMessage(payload)}, true
	}
}

// payloadOf joins the frame's payload lines with newlines, stripping the
// line prefix and at most one following space from each.
func payloadOf(f Frame) string {
	var lines []string
	for _, l := range f.Lines {
		rest, ok := strings.CutPrefix(l, payloadPrefix)
		if !ok {
			continue
		}
		lines = append(lines, strings.TrimPrefix(rest, " "))
	}
	return strings.Join(lines, "\n")
}
