package sundaews

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tj/assert"
)

type fakePublisher struct {
	sent []publishedMessage
	err  error
}

type publishedMessage struct {
	Site    string
	Message string
}

func (f *fakePublisher) Send(_ context.Context, site, message string) error {
	f.sent = append(f.sent, publishedMessage{Site: site, Message: message})
	return f.err
}

func TestAdminRoutes(t *testing.T) {
	ctx := context.Background()

	t.Run("list connections", func(t *testing.T) {
		registry := newMemRegistry()
		assert.Nil(t, registry.RegisterMemberships(ctx, "conn-a", []string{"site-1"}))
		assert.Nil(t, registry.RegisterMemberships(ctx, "conn-b", []string{"site-1"}))

		w := httptest.NewRecorder()
		AdminRoutes(registry, &fakePublisher{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sites/site-1/connections", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		var got siteConnections
		assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, siteConnections{SiteID: "site-1", Connections: []string{"conn-a", "conn-b"}}, got)
	})

	t.Run("list empty site", func(t *testing.T) {
		w := httptest.NewRecorder()
		AdminRoutes(newMemRegistry(), &fakePublisher{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sites/site-1/connections", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `{"siteId":"site-1","connections":[]}`, strings.TrimSpace(w.Body.String()))
	})

	t.Run("list failure", func(t *testing.T) {
		registry := newMemRegistry()
		registry.lookupErr = errors.New("boom")
		w := httptest.NewRecorder()
		AdminRoutes(registry, &fakePublisher{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sites/site-1/connections", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("publish", func(t *testing.T) {
		publisher := &fakePublisher{}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sites/site-1/messages", strings.NewReader(`{"message":"hello"}`))
		AdminRoutes(newMemRegistry(), publisher).ServeHTTP(w, req)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, []publishedMessage{{Site: "site-1", Message: "hello"}}, publisher.sent)
	})

	t.Run("publish requires a message", func(t *testing.T) {
		publisher := &fakePublisher{}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sites/site-1/messages", strings.NewReader(`{}`))
		AdminRoutes(newMemRegistry(), publisher).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, publisher.sent, 0)
	})

	t.Run("publish failure", func(t *testing.T) {
		publisher := &fakePublisher{err: errors.New("boom")}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/sites/site-1/messages", strings.NewReader(`{"message":"hello"}`))
		AdminRoutes(newMemRegistry(), publisher).ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
