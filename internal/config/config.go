package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
	"time"
)

const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
	BackendKV     = "kv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH" env-default:""`
	WhatsApp    struct {
		AccessToken   string        `yaml:"access_token" env:"WHATSAPP_TOKEN" env-default:""`
		VerifyToken   string        `yaml:"verify_token" env:"VERIFY_TOKEN" env-default:""`
		AppSecret     string        `yaml:"app_secret" env:"WHATSAPP_APP_SECRET" env-default:""`
		PhoneNumberID string        `yaml:"phone_number_id" env:"WHATSAPP_PHONE_NUMBER_ID" env-default:""`
		ApiVersion    string        `yaml:"api_version" env-default:"v19.0"`
		BaseURL       string        `yaml:"base_url" env-default:"https://graph.facebook.com"`
		EventTimeout  time.Duration `yaml:"event_timeout" env-default:"30s"`
	} `yaml:"whatsapp"`
	Session struct {
		Backend        string        `yaml:"backend" env:"SESSION_BACKEND" env-default:"redis"`
		TTL            time.Duration `yaml:"ttl" env-default:"24h"`
		CancelKeywords []string      `yaml:"cancel_keywords" env-default:"cancelar,cancel"`
	} `yaml:"session"`
	Bookings struct {
		Backend string `yaml:"backend" env:"BOOKINGS_BACKEND" env-default:"kv"`
	} `yaml:"bookings"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
		Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
		DB       int    `yaml:"db" env-default:"0"`
	} `yaml:"redis"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"ridedesk"`
	} `yaml:"mongo"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled" env-default:"false"`
		Brokers      []string `yaml:"brokers" env-default:"127.0.0.1:9092"`
		BookingTopic string   `yaml:"booking_topic" env-default:"ridedesk.bookings"`
	} `yaml:"kafka"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env:"PORT" env-default:"9100"`
		ApiKey string `yaml:"key" env:"API_KEY" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
		if err = instance.validate(); err != nil {
			log.Fatal(err)
		}
	})
	return instance
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case BackendRedis, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("unsupported session backend: %q", c.Session.Backend)
	}
	switch c.Bookings.Backend {
	case BackendKV, BackendMongo:
	default:
		return fmt.Errorf("unsupported bookings backend: %q", c.Bookings.Backend)
	}
	if (c.Session.Backend == BackendMongo || c.Bookings.Backend == BackendMongo) && !c.Mongo.Enabled {
		return fmt.Errorf("mongo backend selected but mongo is not enabled")
	}
	return nil
}
