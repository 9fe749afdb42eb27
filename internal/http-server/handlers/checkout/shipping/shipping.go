package shipping

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/checkout"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

type Request struct {
	SessionID string              `json:"session_id" validate:"required"`
	Shipping  models.ShippingInfo `json:"shipping"`
}

type Response struct {
	resp.Response
	State checkout.State `json:"state"`
}

type FlowProvider interface {
	Flow(sessionID string) (*checkout.Flow, error)
}

func New(log *slog.Logger, checkouts FlowProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.checkout.shipping.New"

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

		// Вся валидация полей доставки, включая формат телефона для
		// выбранной страны, выполняется локально: до ее прохождения
		// никаких сетевых вызовов не делается, шаг не меняется.
		if err := models.NewValidator().Struct(req); err != nil {
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

		if err := flow.SubmitShipping(req.Shipping); err != nil {
			log.Error("failed to submit shipping", sl.Err(err))

			render.JSON(w, r, resp.Error("shipping can't be changed at this step"))

			return
		}

		log.Info("shipping submitted", slog.String("session_id", req.SessionID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			State:    flow.State(),
		})
	}
}
