package update

import (
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/cart"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

type Request struct {
	SessionID string `json:"session_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`

	// Количество <= 0 эквивалентно удалению позиции.
	Quantity int `json:"quantity"`
}

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
		const fn = "handlers.cart.update.New"

		log := log.With(
			slog.String("fn", fn),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode json body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request"))

			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		store := carts.Cart(req.SessionID)

		if err := store.UpdateQuantity(r.Context(), req.ProductID, req.Quantity); err != nil {
			log.Error("failed to update quantity", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to update quantity"))

			return
		}

		items, err := store.Items(r.Context())
		if err != nil {
			log.Error("failed to read cart", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to read cart"))

			return
		}

		log.Info("quantity updated",
			slog.String("product_id", req.ProductID),
			slog.Int("quantity", req.Quantity),
		)

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			Items:     items,
			Subtotal:  models.Subtotal(items),
			ItemCount: models.ItemCount(items),
		})
	}
}
