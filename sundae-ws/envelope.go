package sundaews

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedEnvelope marks a notification that cannot be dispatched.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// RawEnvelope is one undecoded notification as delivered by the transport.
type RawEnvelope struct {
	ID   string
	Data []byte
}

// Envelope is a decoded notification for a site.
type Envelope struct {
	Topic string
	// Message is what subscribers receive. A non-string message is kept as
	// its JSON text.
	Message string
}

// ParseEnvelope decodes {"topic"|"siteId": ..., "message": ...}. A payload
// wrapped in an SNS notification, whose Message field holds the envelope as a
// JSON string, is unwrapped first.
func ParseEnvelope(data []byte) (Envelope, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return Envelope{}, err
	}

	if !hasAny(fields, "topic", "siteId", "message") {
		if inner, ok := stringField(fields, "Message"); ok {
			data = []byte(inner)
			if fields, err = decodeObject(data); err != nil {
				return Envelope{}, err
			}
		}
	}

	topic := topicField(fields, "topic")
	if topic == "" {
		topic = topicField(fields, "siteId")
	}
	if topic == "" {
		return Envelope{}, fmt.Errorf("%w: missing topic", ErrMalformedEnvelope)
	}

	raw, ok := fields["message"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Envelope{}, fmt.Errorf("%w: missing message", ErrMalformedEnvelope)
	}
	message, ok := stringField(fields, "message")
	if !ok {
		message = string(raw)
	}

	return Envelope{
		Topic:   topic,
		Message: message,
	}, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedEnvelope)
	}
	return fields, nil
}

func hasAny(fields map[string]json.RawMessage, keys ...string) bool {
	for _, key := range keys {
		if _, ok := fields[key]; ok {
			return true
		}
	}
	return false
}

// topicField reads a site id. Numbers and booleans are taken as their JSON
// text, so {"siteId": 42} addresses site "42".
func topicField(fields map[string]json.RawMessage, key string) string {
	if s, ok := stringField(fields, key); ok {
		return s
	}
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v.(type) {
	case float64, bool:
		return string(bytes.TrimSpace(raw))
	}
	return ""
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
