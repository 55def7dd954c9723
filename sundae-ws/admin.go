package sundaews

import (
	"encoding/json"
	"net/http"

	"github.com/SundaeSwap-finance/sundae-ws-notify/sundae-ws/publish"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type siteConnections struct {
	SiteID      string   `json:"siteId"`
	Connections []string `json:"connections"`
}

type messageRequest struct {
	Message string `json:"message"`
}

// AdminRoutes lists a site's connections and publishes messages to a site.
func AdminRoutes(subscribers Subscribers, publisher publish.Publisher) chi.Router {
	router := chi.NewRouter()

	router.Get("/sites/{siteId}/connections", func(w http.ResponseWriter, req *http.Request) {
		site := chi.URLParam(req, "siteId")
		ids, err := subscribers.SubscribersOf(req.Context(), site)
		if err != nil {
			zerolog.Ctx(req.Context()).Error().Err(err).Str("site", site).Msg("failed to list connections")
			http.Error(w, "unable to list connections", http.StatusInternalServerError)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, siteConnections{SiteID: site, Connections: ids})
	})

	router.Post("/sites/{siteId}/messages", func(w http.ResponseWriter, req *http.Request) {
		site := chi.URLParam(req, "siteId")

		var body messageRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Message == "" {
			http.Error(w, "message is required", http.StatusBadRequest)
			return
		}
		if err := publisher.Send(req.Context(), site, body.Message); err != nil {
			zerolog.Ctx(req.Context()).Error().Err(err).Str("site", site).Msg("failed to publish message")
			http.Error(w, "unable to publish message", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	return router
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
