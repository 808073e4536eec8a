package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/books-service/pkg/kafka"
	"github.com/Astemirdum/books-service/pkg/logger"
	"github.com/Astemirdum/books-service/pkg/serializer"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `envconfig:"BOOKS_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"BOOKS_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE"`
	RPS          float64       `envconfig:"BOOKS_API_RPS" default:"100"`
}

// IDStrategy selects how new book ids are produced.
type IDStrategy string

const (
	IDSequential IDStrategy = "sequential"
	IDRandom     IDStrategy = "random"
)

func (s *IDStrategy) Decode(value string) error {
	switch v := IDStrategy(value); v {
	case IDSequential, IDRandom:
		*s = v
		return nil
	}
	return fmt.Errorf("unknown id strategy %q", value)
}

type Store struct {
	IDStrategy IDStrategy `envconfig:"BOOKS_ID_STRATEGY" default:"sequential"`
}

type Config struct {
	Server HTTPServer
	Store  Store
	Kafka  kafka.Config
	Log    logger.Log
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options are applied first, so an environment
// variable wins over an option for the same field.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		c, err := Load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = c
		printConfig(cfg)
	})

	return cfg
}

func Load(ops ...Option) (*Config, error) {
	var config Config
	for _, op := range ops {
		op(&config)
	}
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func printConfig(cfg *Config) {
	jscfg, _ := serializer.JSON.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
