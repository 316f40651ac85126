package booking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"RideDesk/entity"
	"RideDesk/internal/lib/api/response"
	"RideDesk/internal/lib/sl"
	"RideDesk/internal/storage/bookings"
)

type Core interface {
	GetBooking(ctx context.Context, id string) (*entity.Booking, error)
}

func GetBooking(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing booking id"))
			return
		}

		b, err := handler.GetBooking(r.Context(), id)
		if err != nil {
			if errors.Is(err, bookings.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Booking not found"))
				return
			}
			log.Error("get booking", slog.String("booking_id", id), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get booking"))
			return
		}

		render.JSON(w, r, response.Ok(b))
	}
}
