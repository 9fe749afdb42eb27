package paymethod

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
	SessionID string `json:"session_id" validate:"required"`
	Method    string `json:"method" validate:"required,oneof=card wallet interbank banktransfer aggregator"`
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
		const fn = "handlers.checkout.paymethod.New"

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

		if err := flow.ChooseMethod(models.PaymentMethod(req.Method)); err != nil {
			log.Error("failed to choose method", sl.Err(err))

			render.JSON(w, r, resp.Error("payment method can't be chosen at this step"))

			return
		}

		log.Info("payment method chosen", slog.String("method", req.Method))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			State:    flow.State(),
		})
	}
}
