package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/books-service/books/config"
	"github.com/Astemirdum/books-service/books/internal/handler"
	"github.com/Astemirdum/books-service/books/internal/queue"
	"github.com/Astemirdum/books-service/books/internal/repository"
	"github.com/Astemirdum/books-service/books/internal/server"
	"github.com/Astemirdum/books-service/books/internal/service"
	cb "github.com/Astemirdum/books-service/pkg/circuit_breaker"
	"github.com/Astemirdum/books-service/pkg/kafka"
	"github.com/Astemirdum/books-service/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func Run(cfg *config.Config) error {
	log, err := logger.NewLogger(cfg.Log, "books")
	if err != nil {
		return errors.Wrap(err, "logger.NewLogger")
	}
	defer log.Sync() //nolint:errcheck

	publisher, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return errors.Wrap(err, "kafka.NewProducer")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("publisher.Close", zap.Error(err))
		}
	}()

	repo := repository.NewRepository(log)
	svc := service.NewService(repo, newIDGenerator(cfg.Store), publisher, log)

	h := handler.New(svc, log, handler.WithAPIRPS(cfg.Server.RPS))
	srv := server.NewServer(cfg.Server, h.NewRouter())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr",
				net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	gg.Go(func() error {
		<-ctx.Done()
		log.Debug("Graceful shutdown", zap.Error(context.Cause(ctx)))

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err := gg.Wait(); err != nil {
		return errors.Wrap(err, "server")
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func newPublisher(cfg kafka.Config, log *zap.Logger) (queue.Publisher, error) {
	if !cfg.Enabled() {
		log.Info("kafka brokers are not configured, book events are disabled")
		return queue.NewNopPublisher(), nil
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}
	const (
		window    = 20
		cooldown  = 10 * time.Second
		threshold = 0.5
		recovery  = 5
	)
	return queue.NewPublisher(producer, kafka.BooksTopic, cb.New(window, cooldown, threshold, recovery), log), nil
}

func newIDGenerator(cfg config.Store) repository.IDGenerator {
	if cfg.IDStrategy == config.IDRandom {
		return repository.RandomID{}
	}
	return repository.NewSequentialID()
}
