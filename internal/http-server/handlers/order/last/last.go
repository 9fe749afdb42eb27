package last

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	strg "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

type Response struct {
	resp.Response
	Order *models.CompletedOrder `json:"order"`
}

type LastOrderConsumer interface {
	ConsumeLastOrder(ctx context.Context, sessionID string) (*models.CompletedOrder, error)
}

// New возвращает обработчик экрана успешного оформления. Запись о
// последнем завершенном заказе выдается ровно один раз и удаляется
// при чтении, чтобы не показывать устаревший экран успеха при
// позднем несвязанном визите.
func New(log *slog.Logger, orders LastOrderConsumer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.order.last.New"

		log := log.With(
			slog.String("fn", fn),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			log.Error("missing session_id")

			render.JSON(w, r, resp.Error("session_id is required"))

			return
		}

		order, err := orders.ConsumeLastOrder(r.Context(), sessionID)
		if errors.Is(err, strg.ErrNoOrder) {
			log.Info("no completed order", slog.String("session_id", sessionID))

			render.JSON(w, r, resp.Error("no completed order"))

			return
		}
		if err != nil {
			log.Error("failed to read completed order", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to read completed order"))

			return
		}

		log.Info("completed order consumed", slog.String("order_uid", order.OrderID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Order:    order,
		})
	}
}
