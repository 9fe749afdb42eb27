package back

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

type Response struct {
	resp.Response
	State checkout.State `json:"state"`
}

type FlowProvider interface {
	Flow(sessionID string) (*checkout.Flow, error)
}

// New возвращает обработчик возврата к вводу данных доставки.
// Возврат разрешен только с шага выбора способа оплаты.
func New(log *slog.Logger, checkouts FlowProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.checkout.back.New"

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

		flow, err := checkouts.Flow(req.SessionID)
		if errors.Is(err, checkout.ErrNoFlow) {
			render.JSON(w, r, resp.Error("no active checkout"))

			return
		}
		if err != nil {
			log.Error("failed to get checkout", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to get checkout"))

			return
		}

		if err := flow.Back(); err != nil {
			log.Error("failed to go back", sl.Err(err))

			render.JSON(w, r, resp.Error("can't go back at this step"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			State:    flow.State(),
		})
	}
}
