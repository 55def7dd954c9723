// Package publish sends site notifications to the queue or stream the
// broadcaster consumes.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kinesis"
	"github.com/aws/aws-sdk-go/service/kinesis/kinesisiface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// Envelope is the notification format. Both topic and siteId are written so
// readers keyed on either name accept it.
type Envelope struct {
	Topic   string `json:"topic"`
	SiteID  string `json:"siteId"`
	Message string `json:"message"`
}

// Publisher sends a message to every connection registered under site.
type Publisher interface {
	Send(ctx context.Context, site, message string) error
}

func Marshal(site, message string) ([]byte, error) {
	if site == "" {
		return nil, fmt.Errorf("site is required")
	}
	data, err := json.Marshal(Envelope{Topic: site, SiteID: site, Message: message})
	if err != nil {
		return nil, fmt.Errorf("marshalling envelope: %w", err)
	}
	return data, nil
}

// SQSPublisher publishes envelopes to an SQS queue.
type SQSPublisher struct {
	client   sqsiface.SQSAPI
	queueURL string
}

func NewSQS(client sqsiface.SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
	}
}

func (p *SQSPublisher) Send(ctx context.Context, site, message string) error {
	data, err := Marshal(site, message)
	if err != nil {
		return err
	}

	_, err = p.client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(data)),
	})
	if err != nil {
		return fmt.Errorf("publishing to queue %v: %w", p.queueURL, err)
	}
	return nil
}

// KinesisPublisher publishes envelopes to a Kinesis stream.
type KinesisPublisher struct {
	client     kinesisiface.KinesisAPI
	streamName string
}

func NewKinesis(client kinesisiface.KinesisAPI, streamName string) *KinesisPublisher {
	return &KinesisPublisher{
		client:     client,
		streamName: streamName,
	}
}

// StreamName returns the Kinesis stream name for the given environment.
func StreamName(env string) string {
	return env + "-sundae-ws-events"
}

// Send publishes to the stream. The site is the partition key so ordering is
// preserved within a site.
func (p *KinesisPublisher) Send(ctx context.Context, site, message string) error {
	data, err := Marshal(site, message)
	if err != nil {
		return err
	}

	_, err = p.client.PutRecordWithContext(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(p.streamName),
		PartitionKey: aws.String(site),
		Data:         data,
	})
	if err != nil {
		return fmt.Errorf("publishing to kinesis stream %v: %w", p.streamName, err)
	}
	return nil
}
