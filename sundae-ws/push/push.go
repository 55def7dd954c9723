// Package push delivers frames to live websocket connections through the API
// Gateway Management API.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi/apigatewaymanagementapiiface"
	"github.com/rs/zerolog"
)

// Client posts data to connections on one websocket API stage.
type Client struct {
	api apigatewaymanagementapiiface.ApiGatewayManagementApiAPI
}

func New(api apigatewaymanagementapiiface.ApiGatewayManagementApiAPI) *Client {
	return &Client{api: api}
}

// Build creates a client for endpoint, e.g. https://{api-id}.execute-api.{region}.amazonaws.com/{stage}.
func Build(s *session.Session, endpoint string) *Client {
	return New(apigatewaymanagementapi.New(s, aws.NewConfig().WithEndpoint(endpoint)))
}

// Push writes data to a single connection.
func (c *Client) Push(ctx context.Context, connectionID string, data []byte) error {
	_, err := c.api.PostToConnectionWithContext(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})
	if err != nil {
		return fmt.Errorf("posting to connection %v: %w", connectionID, err)
	}
	return nil
}

// DryRun logs frames instead of posting them.
type DryRun struct {
	Logger zerolog.Logger
}

func (d DryRun) Push(_ context.Context, connectionID string, data []byte) error {
	d.Logger.Info().
		Str("connection_id", connectionID).
		RawJSON("frame", data).
		Msg("dry run: not pushing")
	return nil
}

// Frame is what a subscriber receives: the notification's message body.
type Frame struct {
	Message string `json:"message"`
}

func MarshalFrame(message string) ([]byte, error) {
	data, err := json.Marshal(Frame{Message: message})
	if err != nil {
		return nil, fmt.Errorf("marshalling frame: %w", err)
	}
	return data, nil
}

// IsGone reports whether err means the connection no longer exists (HTTP 410).
func IsGone(err error) bool {
	if err == nil {
		return false
	}
	var gone *apigatewaymanagementapi.GoneException
	if errors.As(err, &gone) {
		return true
	}
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusGone {
		return true
	}
	return strings.Contains(err.Error(), apigatewaymanagementapi.ErrCodeGoneException)
}
