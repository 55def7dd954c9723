package sundaews

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	sundaecli "github.com/SundaeSwap-finance/sundae-ws-notify/sundae-cli"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/connectiondao"
	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/token"
	"github.com/rs/zerolog"
)

var testLogger = zerolog.New(io.Discard)

// memRegistry mirrors the table layout: records keyed by topic key, then
// connection id.
type memRegistry struct {
	mu        sync.Mutex
	records   map[string]map[string]connectiondao.Connection
	failSites map[string]bool
	lookupErr error
	lookups   int
}

func newMemRegistry() *memRegistry {
	return &memRegistry{
		records:   map[string]map[string]connectiondao.Connection{},
		failSites: map[string]bool{},
	}
}

func (m *memRegistry) RegisterMemberships(_ context.Context, connectionID string, sites []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	for _, site := range sites {
		if m.failSites[site] {
			if first == nil {
				first = errors.New("provisioned throughput exceeded")
			}
			continue
		}
		key := connectiondao.TopicKey(site)
		if m.records[key] == nil {
			m.records[key] = map[string]connectiondao.Connection{}
		}
		m.records[key][connectionID] = connectiondao.NewConnection(site, connectionID, 0)
	}
	return first
}

func (m *memRegistry) SubscribersOf(_ context.Context, site string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lookups++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	var ids []string
	for id := range m.records[connectiondao.TopicKey(site)] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memRegistry) Deregister(_ context.Context, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, conns := range m.records {
		delete(conns, connectionID)
		if len(conns) == 0 {
			delete(m.records, key)
		}
	}
	return nil
}

func (m *memRegistry) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, conns := range m.records {
		n += len(conns)
	}
	return n
}

type pushed struct {
	ConnectionID string
	Data         string
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []pushed
	fail   map[string]error
}

func (f *fakePusher) Push(_ context.Context, connectionID string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pushes = append(f.pushes, pushed{ConnectionID: connectionID, Data: string(data)})
	if err := f.fail[connectionID]; err != nil {
		return err
	}
	return nil
}

func (f *fakePusher) sorted() []pushed {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := append([]pushed(nil), f.pushes...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectionID == out[j].ConnectionID {
			return out[i].Data < out[j].Data
		}
		return out[i].ConnectionID < out[j].ConnectionID
	})
	return out
}

// fakeVerifier accepts credentials it knows about.
type fakeVerifier map[string]*token.Claims

func (f fakeVerifier) Verify(_ context.Context, credential string) (*token.Claims, error) {
	if claims, ok := f[credential]; ok {
		return claims, nil
	}
	return nil, token.ErrVerification
}

type fakeMetrics struct {
	mu     sync.Mutex
	events []sundaecli.MetricName
	routes []string
	gauges map[sundaecli.MetricName]float64
}

func (f *fakeMetrics) Event(_ context.Context, name sundaecli.MetricName, dimensions ...map[sundaecli.DimensionName]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, name)
	for _, d := range dimensions {
		if route, ok := d[sundaecli.RouteDimension]; ok {
			f.routes = append(f.routes, route)
		}
	}
}

func (f *fakeMetrics) Gauge(_ context.Context, name sundaecli.MetricName, value float64, _ ...map[sundaecli.DimensionName]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gauges == nil {
		f.gauges = map[sundaecli.MetricName]float64{}
	}
	f.gauges[name] = value
}
