package cancel

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/checkout"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

type Request struct {
	SessionID string `json:"session_id" validate:"required"`
}

type CheckoutAbandoner interface {
	Abandon(sessionID string) error
}

// New возвращает обработчик отказа от оформления: черновик уничтожается,
// опрос статуса (если шел) останавливается немедленно, корзина не меняется.
func New(log *slog.Logger, checkouts CheckoutAbandoner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.checkout.cancel.New"

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

		if err := checkouts.Abandon(req.SessionID); err != nil {
			if errors.Is(err, checkout.ErrNoFlow) {
				render.JSON(w, r, resp.Error("no active checkout"))

				return
			}

			log.Error("failed to cancel checkout", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to cancel checkout"))

			return
		}

		log.Info("checkout cancelled", slog.String("session_id", req.SessionID))

		render.JSON(w, r, resp.OK())
	}
}
