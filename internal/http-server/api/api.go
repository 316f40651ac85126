package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"RideDesk/internal/config"
	"RideDesk/internal/http-server/handlers/booking"
	"RideDesk/internal/http-server/handlers/conversation"
	"RideDesk/internal/http-server/handlers/errors"
	"RideDesk/internal/http-server/handlers/feed"
	"RideDesk/internal/http-server/handlers/health"
	"RideDesk/internal/http-server/handlers/whatsapp"
	"RideDesk/internal/http-server/middleware/authenticate"
	"RideDesk/internal/lib/sl"
	"RideDesk/internal/ws"
)

const requestTimeout = 60 * time.Second

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	booking.Core
	conversation.Core
	health.Core
}

// NewRouter builds the HTTP routes. hub may be nil when the live feed is off.
func NewRouter(log *slog.Logger, handler Handler, hook whatsapp.Webhook, hub *ws.Hub) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/health", health.Health(log, handler))

	router.Route("/api/webhook", func(r chi.Router) {
		r.Get("/", whatsapp.WebhookVerify(log, hook))
		r.Post("/", whatsapp.WebhookHandler(log, hook))
	})

	router.Route("/api/v1", func(v1 chi.Router) {
		// browsers cannot set headers on a WebSocket handshake, the feed checks its own token
		v1.Get("/ws", feed.Live(log, hub, handler))

		v1.Group(func(r chi.Router) {
			r.Use(authenticate.New(log, handler))
			r.Get("/bookings/{id}", booking.GetBooking(log, handler))
			r.Delete("/conversations/{user_id}", conversation.ResetConversation(log, handler))
		})
	})

	return router
}

// New starts the API server and blocks until it stops.
func New(conf *config.Config, log *slog.Logger, handler Handler, hook whatsapp.Webhook, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:           NewRouter(log, handler, hook, hub),
		ErrorLog:          httpLog,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
