package view

import (
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/cart"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

type Response struct {
	resp.Response
	Items     []models.CartLine `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	ItemCount int               `json:"item_count"`
}

type CartProvider interface {
	Cart(sessionID string) *cart.Store
}

func New(log *slog.Logger, carts CartProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.cart.view.New"

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

		items, err := carts.Cart(sessionID).Items(r.Context())
		if err != nil {
			log.Error("failed to read cart", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to read cart"))

			return
		}

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			Items:     items,
			Subtotal:  models.Subtotal(items),
			ItemCount: models.ItemCount(items),
		})
	}
}
