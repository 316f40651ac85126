package conversation

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"RideDesk/internal/lib/api/response"
	"RideDesk/internal/lib/sl"
)

type Core interface {
	ResetConversation(ctx context.Context, userID string) error
}

// ResetConversation drops a sender's session without messaging them.
func ResetConversation(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")
		if userID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Missing user_id parameter"))
			return
		}

		if err := handler.ResetConversation(r.Context(), userID); err != nil {
			log.Error("reset conversation", slog.String("user_id", userID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Reset failed"))
			return
		}

		render.JSON(w, r, response.Ok("Conversation reset successfully"))
	}
}
