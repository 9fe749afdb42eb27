// package main является точкой входа витрины: HTTP API корзины
// и оформления заказа. Сервис поддерживает graceful shutdown: при
// получении SIGINT или SIGTERM он прекращает принимать запросы,
// дожидается активных горутин и закрывает продюсера Kafka.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/checkout"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	cartadd "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/cart/add"
	cartremove "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/cart/remove"
	cartupdate "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/cart/update"
	cartview "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/cart/view"
	cataloglist "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/catalog/list"
	checkoutback "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/checkout/back"
	checkoutbegin "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/checkout/begin"
	checkoutcancel "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/checkout/cancel"
	checkoutpaymethod "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/checkout/paymethod"
	checkoutshipping "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/checkout/shipping"
	checkoutstate "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/checkout/state"
	checkoutsubmit "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/checkout/submit"
	orderlast "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/handlers/order/last"
	mwLogger "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/http-server/middleware/logger"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage/kafka"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage/redis"
	catalogGen "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/generator/catalog"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/slogpretty"
)

const catalogSize = 24

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	wg := &sync.WaitGroup{}

	cfg := config.MustLoad()

	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting storefront", slog.String("env", cfg.Env))

	kv, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	log.Info("storage init successful")

	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Error("failed to init producer", sl.Err(err))
		os.Exit(1)
	}

	log.Info("producer init successful")

	wg.Add(1)
	go producer.HandleResult(ctx, wg)

	api := payment.NewAPI(cfg.Payment)
	adapters := payment.NewRegistry(api, cfg.Payment.ReferenceLength)
	completion := checkout.NewCompletion(kv, producer, log)
	checkouts := checkout.NewManager(kv, adapters, api, api, completion, cfg.Store, cfg.Payment, log)

	products := catalogGen.Products(catalogSize)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", cataloglist.New(log, products))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartview.New(log, checkouts))
			r.Post("/add", cartadd.New(log, checkouts))
			r.Post("/remove", cartremove.New(log, checkouts))
			r.Post("/update", cartupdate.New(log, checkouts))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/begin", checkoutbegin.New(log, checkouts))
			r.Post("/shipping", checkoutshipping.New(log, checkouts))
			r.Post("/method", checkoutpaymethod.New(log, checkouts))
			r.Post("/back", checkoutback.New(log, checkouts))
			r.Post("/submit", checkoutsubmit.New(log, checkouts))
			r.Post("/cancel", checkoutcancel.New(log, checkouts))
			r.Get("/state", checkoutstate.New(log, checkouts))
		})

		r.Get("/order/last", orderlast.New(log, completion))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", sl.Err(err))
		}
	}()

	log.Info("server started", slog.String("address", cfg.HTTPServer.Address))

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)

	<-sigchan
	cancel()

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error("failed to stop server", sl.Err(err))
	}

	wg.Wait()

	log.Info("stopping producer")
	producer.Producer.Close()
}
