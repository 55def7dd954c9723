// Package sundaews broadcasts site notifications to authenticated websocket
// clients connected through an API Gateway WebSocket API.
package sundaews

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/token"
	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
)

// ErrRegistration marks a verified connection whose memberships could not be stored.
var ErrRegistration = errors.New("unable to register connection")

const (
	bodyConnected    = "connected"
	bodyRejected     = "unable to verify token"
	bodyDisconnected = "disconnected"
	bodyDispatched   = "all good"
	bodyUnknownRoute = "Received unknown route:"
)

// Verifier checks a connecting client's credential.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*token.Claims, error)
}

// Registry stores which sites a connection belongs to.
type Registry interface {
	RegisterMemberships(ctx context.Context, connectionID string, sites []string) error
	Deregister(ctx context.Context, connectionID string) error
}

// Handler is the function entrypoint. It keeps no state between invocations.
type Handler struct {
	Verifier   Verifier
	Registry   Registry
	Dispatcher *Dispatcher
	Logger     zerolog.Logger
	Metrics    Metrics // optional
}

// HandleEvent routes a websocket lifecycle request or a batch of records.
func (h *Handler) HandleEvent(ctx context.Context, event Event) (events.APIGatewayProxyResponse, error) {
	route := event.RequestContext.RouteKey
	logger := h.Logger.With().
		Str("connection_id", event.RequestContext.ConnectionID).
		Str("route", route).
		Logger()
	ctx = logger.WithContext(ctx)

	switch route {
	case RouteConnect:
		return h.handleConnect(ctx, logger, event), nil
	case RouteDisconnect:
		return h.handleDisconnect(ctx, logger, event), nil
	}

	if event.Records != nil && h.Dispatcher != nil {
		logger.Debug().Int("records", len(event.Records)).Msg("dispatching records")
		if err := h.Dispatcher.Dispatch(ctx, event.Envelopes()); err != nil {
			logger.Error().Err(err).Msg("dispatch failed")
		}
		return response(http.StatusOK, bodyDispatched), nil
	}

	logger.Warn().Msg("unknown route")
	return response(http.StatusNotFound, bodyUnknownRoute+route), nil
}

func (h *Handler) handleConnect(ctx context.Context, logger zerolog.Logger, event Event) events.APIGatewayProxyResponse {
	connID := event.RequestContext.ConnectionID
	credential := token.Credential(event.Headers, event.QueryStringParameters)

	claims, err := h.Verifier.Verify(ctx, credential)
	if err != nil {
		logger.Info().Err(err).Msg("rejecting connection")
		h.event(ctx, sundaecli.ConnectRejectedMetric, RouteConnect)
		return response(http.StatusBadRequest, bodyRejected)
	}

	sites := claims.Sites()
	if err := h.Registry.RegisterMemberships(ctx, connID, sites); err != nil {
		err = fmt.Errorf("%w: %w", ErrRegistration, err)
		logger.Error().Err(err).Strs("sites", sites).Msg("rejecting connection")
		h.event(ctx, sundaecli.ConnectRejectedMetric, RouteConnect)
		return response(http.StatusBadRequest, bodyRejected)
	}

	logger.Info().Strs("sites", sites).Str("token_use", claims.TokenUse).Msg("connection established")
	h.event(ctx, sundaecli.ConnectAcceptedMetric, RouteConnect)
	return response(http.StatusOK, bodyConnected)
}

func (h *Handler) handleDisconnect(ctx context.Context, logger zerolog.Logger, event Event) events.APIGatewayProxyResponse {
	if err := h.Registry.Deregister(ctx, event.RequestContext.ConnectionID); err != nil {
		logger.Error().Err(err).Msg("failed to deregister connection")
	}

	logger.Info().Msg("connection closed")
	h.event(ctx, sundaecli.DisconnectedMetric, RouteDisconnect)
	return response(http.StatusOK, bodyDisconnected)
}

func (h *Handler) event(ctx context.Context, name sundaecli.MetricName, route string) {
	if h.Metrics != nil {
		h.Metrics.Event(ctx, name, map[sundaecli.DimensionName]string{sundaecli.RouteDimension: route})
	}
}

func response(statusCode int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: statusCode, Body: body}
}
