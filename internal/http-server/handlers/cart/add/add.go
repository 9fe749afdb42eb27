package add

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
	Product   struct {
		ID       string  `json:"id" validate:"required"`
		Name     string  `json:"name" validate:"required"`
		Price    float64 `json:"price" validate:"gte=0"`
		ImageRef string  `json:"image_ref"`
		Category string  `json:"category"`
	} `json:"product"`
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
		const fn = "handlers.cart.add.New"

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

		log.Info("request body decoded", slog.Any("request", req))

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		store := carts.Cart(req.SessionID)

		product := models.Product{
			ID:       req.Product.ID,
			Name:     req.Product.Name,
			Price:    req.Product.Price,
			ImageRef: req.Product.ImageRef,
			Category: req.Product.Category,
		}

		if err := store.AddItem(r.Context(), product); err != nil {
			log.Error("failed to add item", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to add item"))

			return
		}

		items, err := store.Items(r.Context())
		if err != nil {
			log.Error("failed to read cart", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to read cart"))

			return
		}

		log.Info("item added", slog.String("product_id", product.ID))

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			Items:     items,
			Subtotal:  models.Subtotal(items),
			ItemCount: models.ItemCount(items),
		})
	}
}
