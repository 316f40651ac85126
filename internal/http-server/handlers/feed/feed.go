package feed

import (
	"log/slog"
	"net/http"

	"RideDesk/internal/lib/sl"
	"RideDesk/internal/ws"
)

// Live upgrades the request to the back-office WebSocket feed.
func Live(log *slog.Logger, hub *ws.Hub, auth ws.Authenticator) http.HandlerFunc {
	logger := log.With(sl.Module("http.feed"))
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			http.Error(w, "live feed not available", http.StatusServiceUnavailable)
			return
		}
		ws.ServeWs(hub, auth, logger, w, r)
	}
}
