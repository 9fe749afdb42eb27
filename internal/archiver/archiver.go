package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
	wp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/workerpool"
	"github.com/IBM/sarama"
)

type Storage interface {
	SaveOrder(ctx context.Context, order *models.CompletedOrder) error
}

type IPool interface {
	Create()
	Handle(context.Context, *sarama.ConsumerMessage) error
	Wait()
}

// Archiver сохраняет события о завершенных заказах в архив батчами
// через пул воркеров. Успешно сохраненные сообщения отправляются
// в commitChan для коммита оффсетов.
type Archiver struct {
	Storage    Storage
	eventChan  <-chan *sarama.ConsumerMessage
	commitChan chan<- *sarama.ConsumerMessage
	log        *slog.Logger
}

func New(
	storage Storage,
	eventChan <-chan *sarama.ConsumerMessage,
	commitChan chan<- *sarama.ConsumerMessage,
	log *slog.Logger,
) *Archiver {
	return &Archiver{
		Storage:    storage,
		eventChan:  eventChan,
		commitChan: commitChan,
		log:        log,
	}
}

func (a *Archiver) ProcessEvents(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	const fn = "archiver.ProcessEvents"
	log := a.log.With("fn", fn)

	pool := wp.New(wp.DefaultWorkersCount, a.archiveOrder)

	events := make([]*sarama.ConsumerMessage, 0, pool.Size())

	for {
		select {
		case <-ctx.Done():
			if len(events) != 0 {
				a.processBatch(ctx, events, pool)
			}

			log.Info("stopping event processing by context")
			return

		case event := <-a.eventChan:
			events = append(events, event)

			if len(events) == pool.Size() {
				a.processBatch(ctx, events, pool)

				events = make([]*sarama.ConsumerMessage, 0, pool.Size())
			}
		}
	}
}

func (a *Archiver) processBatch(ctx context.Context, events []*sarama.ConsumerMessage, pool IPool) {
	pool.Create()

	wg := &sync.WaitGroup{}

	for _, event := range events {
		wg.Add(1)

		go func(current *sarama.ConsumerMessage) {
			defer wg.Done()

			err := pool.Handle(ctx, current)
			if err != nil {
				a.log.Error("failed to handle order event", sl.Err(err))
			} else {
				a.commitChan <- current
			}
		}(event)
	}

	wg.Wait()
	pool.Wait()
}

func (a *Archiver) archiveOrder(ctx context.Context, event *sarama.ConsumerMessage) error {
	a.log.Info("received completed order")

	var order models.CompletedOrder
	if err := json.Unmarshal(event.Value, &order); err != nil {
		a.log.Error("can't unmarshal json", sl.Err(err))

		return fmt.Errorf("can't unmarshal json: %v", err)
	}

	a.log.Info("archiving order", slog.String("order_uid", order.OrderID))

	if err := a.Storage.SaveOrder(ctx, &order); err != nil {
		a.log.Error("failed to save order in archive", sl.Err(err))

		return fmt.Errorf("failed to save order in archive: %v", err)
	}

	return nil
}
