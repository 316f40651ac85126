package errors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"RideDesk/internal/lib/api/response"
)

func NotFound(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("route not found", slog.String("path", r.URL.Path))

		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Requested resource not found"))
	}
}
