package list

import (
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
)

type Response struct {
	resp.Response
	Products []models.Product `json:"products"`
}

func New(log *slog.Logger, products []models.Product) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.catalog.list.New"

		log := log.With(
			slog.String("fn", fn),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		log.Info("catalog requested", slog.Int("count", len(products)))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Products: products,
		})
	}
}
