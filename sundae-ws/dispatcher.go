package sundaews

import (
	"context"
	"sync/atomic"

	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/push"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 50

// Subscribers resolves the connections registered under a site.
type Subscribers interface {
	SubscribersOf(ctx context.Context, site string) ([]string, error)
}

// Pusher delivers a frame to one connection.
type Pusher interface {
	Push(ctx context.Context, connectionID string, data []byte) error
}

// Metrics is satisfied by sundaecli.Metrics.
type Metrics interface {
	Event(ctx context.Context, name sundaecli.MetricName, dimensions ...map[sundaecli.DimensionName]string)
	Gauge(ctx context.Context, name sundaecli.MetricName, value float64, dimensions ...map[sundaecli.DimensionName]string)
}

// Dispatcher fans notifications out to every connection registered for their site.
type Dispatcher struct {
	Subscribers Subscribers
	Pusher      Pusher
	Logger      zerolog.Logger
	Metrics     Metrics // optional
	Concurrency int     // max concurrent pushes per envelope (default 50)
}

// Dispatch processes every envelope independently. Malformed envelopes and
// failed lookups are logged and skipped; failed pushes are logged and
// otherwise ignored. Stale connections are left for their TTL to remove.
func (d *Dispatcher) Dispatch(ctx context.Context, envelopes []RawEnvelope) error {
	var (
		g          errgroup.Group
		dispatched atomic.Int64
		dropped    atomic.Int64
		failures   atomic.Int64
	)
	for _, raw := range envelopes {
		raw := raw
		g.Go(func() error {
			envelope, err := ParseEnvelope(raw.Data)
			if err != nil {
				dropped.Add(1)
				d.Logger.Warn().Err(err).Str("envelope_id", raw.ID).Msg("skipping envelope")
				return nil
			}

			failed, err := d.dispatchEnvelope(ctx, envelope)
			if err != nil {
				dropped.Add(1)
				d.Logger.Error().Err(err).
					Str("envelope_id", raw.ID).
					Str("topic", envelope.Topic).
					Msg("failed to resolve subscribers")
				return nil
			}
			dispatched.Add(1)
			failures.Add(int64(failed))
			return nil
		})
	}
	_ = g.Wait()

	if d.Metrics != nil {
		d.Metrics.Gauge(ctx, sundaecli.EnvelopesDispatchedMetric, float64(dispatched.Load()))
		d.Metrics.Gauge(ctx, sundaecli.EnvelopesDroppedMetric, float64(dropped.Load()))
		d.Metrics.Gauge(ctx, sundaecli.DeliveryFailuresMetric, float64(failures.Load()))
	}
	return nil
}

// dispatchEnvelope pushes one envelope to its subscribers and returns the
// number of failed deliveries.
func (d *Dispatcher) dispatchEnvelope(ctx context.Context, envelope Envelope) (int, error) {
	subs, err := d.Subscribers.SubscribersOf(ctx, envelope.Topic)
	if err != nil {
		return 0, err
	}

	d.Logger.Debug().
		Str("topic", envelope.Topic).
		Int("subscribers", len(subs)).
		Msg("dispatching envelope")

	if len(subs) == 0 {
		return 0, nil
	}

	frame, err := push.MarshalFrame(envelope.Message)
	if err != nil {
		return 0, err
	}

	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	var (
		g      errgroup.Group
		failed atomic.Int64
	)
	g.SetLimit(concurrency)
	for _, connID := range subs {
		connID := connID
		g.Go(func() error {
			if err := d.Pusher.Push(ctx, connID, frame); err != nil {
				failed.Add(1)
				d.Logger.Debug().Err(err).
					Str("connection_id", connID).
					Bool("gone", push.IsGone(err)).
					Msg("delivery failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(failed.Load()), nil
}
