package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"RideDesk/internal/lib/api/response"
)

type Core interface {
	Health(ctx context.Context) (map[string]string, error)
}

func Health(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := handler.Health(r.Context())
		if err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Response{Success: false, Data: status, Message: err.Error()})
			return
		}
		render.JSON(w, r, response.Ok(status))
	}
}
