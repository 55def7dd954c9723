package sundaews

import (
	"github.com/aws/aws-lambda-go/events"
)

const (
	RouteConnect    = "$connect"
	RouteDisconnect = "$disconnect"
)

// Event is everything the function can be invoked with: a websocket lifecycle
// request from API Gateway, or a batch of SQS or Kinesis records.
type Event struct {
	events.APIGatewayWebsocketProxyRequest
	Records []Record `json:"Records"`
}

// Record covers the fields of SQS and Kinesis records the dispatcher needs.
type Record struct {
	MessageID   string                `json:"messageId,omitempty"`
	Body        string                `json:"body,omitempty"`
	EventID     string                `json:"eventID,omitempty"`
	EventSource string                `json:"eventSource,omitempty"`
	Kinesis     *events.KinesisRecord `json:"kinesis,omitempty"`
}

func (r Record) Envelope() RawEnvelope {
	if r.Kinesis != nil {
		return RawEnvelope{ID: r.EventID, Data: r.Kinesis.Data}
	}
	return RawEnvelope{ID: r.MessageID, Data: []byte(r.Body)}
}

func (e Event) Envelopes() []RawEnvelope {
	envelopes := make([]RawEnvelope, 0, len(e.Records))
	for _, r := range e.Records {
		envelopes = append(envelopes, r.Envelope())
	}
	return envelopes
}
