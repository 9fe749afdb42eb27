package submit

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/checkout"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

type Request struct {
	SessionID string        `json:"session_id" validate:"required"`
	Input     payment.Input `json:"input"`
}

type Response struct {
	resp.Response
	State checkout.State `json:"state"`
}

type FlowProvider interface {
	Flow(sessionID string) (*checkout.Flow, error)
}

// New возвращает обработчик отправки платежа. Ошибки разных классов
// сводятся к небольшому набору видимых пользователю сообщений;
// внутренние детали остаются только в логах.
func New(log *slog.Logger, checkouts FlowProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.checkout.submit.New"

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

		err = flow.SubmitPayment(r.Context(), req.Input)

		var rejection *checkout.RejectionError

		switch {
		case err == nil:

		case errors.Is(err, payment.ErrMalformedReference):
			log.Info("malformed transaction reference")

			render.JSON(w, r, resp.Error("transaction reference has a wrong format"))

			return

		case errors.As(err, &rejection):
			log.Info("payment rejected", slog.String("reason", rejection.Reason))

			render.JSON(w, r, Response{
				Response: resp.Error(rejection.Reason),
				State:    flow.State(),
			})

			return

		case errors.Is(err, checkout.ErrNetwork):
			log.Error("payment gateway unreachable", sl.Err(err))

			render.JSON(w, r, resp.Error("payment service is unreachable, please try again"))

			return

		case errors.Is(err, checkout.ErrWrongStep):
			render.JSON(w, r, resp.Error("payment can't be submitted at this step"))

			return

		default:
			log.Error("failed to submit payment", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to submit payment"))

			return
		}

		state := flow.State()

		log.Info("payment submitted",
			slog.String("order_uid", state.OrderID),
			slog.String("step", state.Step.String()),
		)

		render.JSON(w, r, Response{
			Response: resp.OK(),
			State:    state,
		})
	}
}
