package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stanstork/meeting-trigger/internal/handlers"
)

// NewRouter sets up the API routes. pushAuth wraps the event push endpoint.
func NewRouter(events *handlers.EventHandler, meetings *handlers.MeetingHandler, pushAuth func(http.Handler) http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.Handle("/events/invitations/{invitationID}", pushAuth(http.HandlerFunc(events.PushInvitationUpdate))).Methods(http.MethodPost)

	api.HandleFunc("/meetings/{meetingID}", meetings.Get).Methods(http.MethodGet)
	api.HandleFunc("/invitations/{invitationID}/meetings", meetings.ListByInvitation).Methods(http.MethodGet)

	return router
}
