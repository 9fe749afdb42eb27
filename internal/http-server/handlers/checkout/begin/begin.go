package begin

import (
	"context"
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

type CheckoutStarter interface {
	Begin(ctx context.Context, sessionID string) (*checkout.Flow, error)
}

func New(log *slog.Logger, checkouts CheckoutStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.checkout.begin.New"

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

		flow, err := checkouts.Begin(r.Context(), req.SessionID)
		if errors.Is(err, checkout.ErrEmptyCart) {
			log.Info("empty cart", slog.String("session_id", req.SessionID))

			render.JSON(w, r, resp.Error("cart is empty"))

			return
		}
		if err != nil {
			log.Error("failed to begin checkout", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to begin checkout"))

			return
		}

		state := flow.State()

		log.Info("checkout started", slog.String("order_uid", state.OrderID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			State:    state,
		})
	}
}
