package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
	"github.com/IBM/sarama"
)

// Producer публикует события о завершенных заказах в Kafka.
// Витрина вызывает Publish из обработчика завершения заказа,
// архивация выполняется консьюмером на другой стороне топика.
type Producer struct {
	Producer sarama.AsyncProducer
	topic    string
	Log      *slog.Logger
}

func NewProducer(cfg config.Kafka, log *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()

	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Producer.Acks)
	config.Producer.Idempotent = cfg.Producer.EnableIdempotence
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = cfg.Producer.Retries

	p, err := sarama.NewAsyncProducer(cfg.BootstrapServers, config)
	if err != nil {
		return nil, fmt.Errorf("can't create producer: %v", err)
	}

	return &Producer{
		Producer: p,
		topic:    cfg.Topic,
		Log:      log,
	}, nil
}

// Publish сериализует заказ и отправляет его в топик. Ключом сообщения
// служит order_uid, чтобы события одного заказа попадали в одну партицию.
func (p *Producer) Publish(order *models.CompletedOrder) error {
	const fn = "storage.kafka.Publish"

	value, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("%s: can't marshal order: %v", fn, err)
	}

	p.Producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(order.OrderID),
		Value: sarama.ByteEncoder(value),
	}

	return nil
}

// HandleResult читает каналы успехов и ошибок асинхронного продюсера
// до отмены контекста. Без вычитывания этих каналов продюсер блокируется.
func (p *Producer) HandleResult(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	go func() {
		for success := range p.Producer.Successes() {
			p.Log.Info("order event sent",
				slog.Int("partition", int(success.Partition)),
				slog.Int64("offset", success.Offset),
			)
		}
	}()

	go func() {
		for err := range p.Producer.Errors() {
			p.Log.Error("failed to send order event", sl.Err(err))
		}
	}()

	<-ctx.Done()
}
