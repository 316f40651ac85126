package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"RideDesk/bot/chat"
	"RideDesk/bot/chat/booking"
	chatwhatsapp "RideDesk/bot/chat/whatsapp"
	"RideDesk/bot/whatsapp"
	"RideDesk/entity"
	"RideDesk/impl/core"
	"RideDesk/internal/catalog"
	"RideDesk/internal/config"
	"RideDesk/internal/database"
	"RideDesk/internal/http-server/api"
	"RideDesk/internal/kafka"
	"RideDesk/internal/lib/logger"
	"RideDesk/internal/lib/sl"
	"RideDesk/internal/service/fare"
	"RideDesk/internal/storage/bookings"
	"RideDesk/internal/storage/kv"
	"RideDesk/internal/ws"
)

const startupTimeout = 10 * time.Second

type bookingStore interface {
	SaveBooking(ctx context.Context, b *entity.Booking) error
	GetBooking(ctx context.Context, id string) (*entity.Booking, error)
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting ridedesk", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := catalog.Load(conf.CatalogPath)
	if err != nil {
		lg.Error("load catalog", sl.Err(err))
		return
	}
	lg.With(
		slog.String("driver", cat.Driver.Name),
		slog.Int("locations", len(cat.All())),
	).Info("catalog loaded")

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
		return
	}
	if db != nil {
		initCtx, initCancel := context.WithTimeout(ctx, startupTimeout)
		if err = db.EnsureIndexes(initCtx, conf.Session.TTL); err != nil {
			lg.Error("mongo indexes", sl.Err(err))
		}
		initCancel()
		handler.AddHealthCheck("mongo", db.Ping)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	var store kv.Store
	switch {
	case conf.Session.Backend == config.BackendMemory:
		store = kv.NewMemoryStore()
		lg.Warn("in-memory store: sessions and bookings are lost on restart")
	case conf.Session.Backend == config.BackendRedis || conf.Bookings.Backend == config.BackendKV:
		rs := kv.NewRedisStore(conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
		defer rs.Close()
		initCtx, initCancel := context.WithTimeout(ctx, startupTimeout)
		if err = rs.Ping(initCtx); err != nil {
			lg.Error("redis ping", slog.String("addr", conf.Redis.Addr), sl.Err(err))
		}
		initCancel()
		handler.AddHealthCheck("redis", rs.Ping)
		store = rs
		lg.Info("redis client initialized", slog.String("addr", conf.Redis.Addr))
	}

	var sessions chat.ChatStateStorage
	if conf.Session.Backend == config.BackendMongo {
		sessions = chat.NewMongoChatStateStorage(db)
	} else {
		sessions = chat.NewKVSessionStorage(store, conf.Session.TTL)
	}

	var repo bookingStore
	if conf.Bookings.Backend == config.BackendMongo {
		repo = db
	} else {
		repo = bookings.NewKVRepository(store)
	}

	waBot := whatsapp.NewWhatsAppBot(whatsapp.Config{
		AccessToken:   conf.WhatsApp.AccessToken,
		VerifyToken:   conf.WhatsApp.VerifyToken,
		AppSecret:     conf.WhatsApp.AppSecret,
		PhoneNumberID: conf.WhatsApp.PhoneNumberID,
		APIVersion:    conf.WhatsApp.ApiVersion,
		BaseURL:       conf.WhatsApp.BaseURL,
		EventTimeout:  conf.WhatsApp.EventTimeout,
	}, lg)
	lg.With(
		slog.String("phone_number_id", conf.WhatsApp.PhoneNumberID),
		slog.String("api_version", conf.WhatsApp.ApiVersion),
		sl.Secret("access_token", conf.WhatsApp.AccessToken),
	).Info("whatsapp bot initialized")

	hub := ws.NewHub(lg)
	go hub.Run(ctx)

	publishers := []booking.EventPublisher{hub}
	if conf.Kafka.Enabled {
		producer := kafka.NewProducer(conf.Kafka.Brokers, conf.Kafka.BookingTopic, lg)
		defer producer.Close()
		handler.AddHealthCheck("kafka", producer.CheckConnection)
		publishers = append(publishers, producer)
		lg.With(
			slog.Any("brokers", conf.Kafka.Brokers),
			slog.String("topic", conf.Kafka.BookingTopic),
		).Info("kafka producer initialized")
	}

	dispatcher := chat.NewMessageDispatcher(chatwhatsapp.NewMessenger(waBot), lg)
	finalizer := booking.NewFinalizer(repo, cat, lg, publishers...)
	workflow := booking.NewBookingWorkflow(cat, fare.NewCalculator(cat), finalizer, lg)

	engine := chat.NewChatEngine(workflow, sessions, dispatcher, &chat.EngineOptions{
		CancelKeywords: conf.Session.CancelKeywords,
	}, lg)
	engine.SetMessageListener(hub)
	waBot.SetEventHandler(engine)

	handler.SetBookingReader(repo)
	handler.SetConversations(engine)

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, waBot, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
