// package main является точкой входа архиватора заказов: он вычитывает
// события о завершенных заказах из Kafka и сохраняет их в PostgreSQL.
// Сервис поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/archiver"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage/kafka"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage/postgres"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/slogpretty"
	"github.com/IBM/sarama"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	wg := &sync.WaitGroup{}

	cfg := config.MustLoad()

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting order archiver", slog.String("env", cfg.Env))

	storage, err := postgres.New(cfg.Postgres, log)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	log.Info("storage init successful")

	eventChan := make(chan *sarama.ConsumerMessage)
	commitChan := make(chan *sarama.ConsumerMessage)

	a := archiver.New(storage, eventChan, commitChan, log)

	wg.Add(1)
	go a.ProcessEvents(ctx, wg)

	c, err := kafka.NewConsumer(cfg.Kafka, eventChan, commitChan, log)
	if err != nil {
		log.Error("failed to init consumer", sl.Err(err))
		os.Exit(1)
	}

	log.Info("consumer init successful")

	wg.Add(1)
	go c.ProcessMessages(ctx, cfg.Kafka.Topic, wg)

	log.Info("listening order events")

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)

	<-sigchan
	cancel()

	wg.Wait()

	log.Info("shutting down consumer")
	c.Consumer.Close()
}
