package state

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/checkout"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/api/response"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

type Response struct {
	resp.Response
	State checkout.State `json:"state"`

	// ElapsedSeconds - прошедшее время опроса для индикатора прогресса.
	// Значение только для чтения и на решения автомата не влияет.
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

type FlowProvider interface {
	Flow(sessionID string) (*checkout.Flow, error)
}

func New(log *slog.Logger, checkouts FlowProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const fn = "handlers.checkout.state.New"

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

		flow, err := checkouts.Flow(sessionID)
		if errors.Is(err, checkout.ErrNoFlow) {
			render.JSON(w, r, resp.Error("no active checkout"))

			return
		}
		if err != nil {
			log.Error("failed to get checkout", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to get checkout"))

			return
		}

		flowState := flow.State()

		render.JSON(w, r, Response{
			Response:       resp.OK(),
			State:          flowState,
			ElapsedSeconds: flowState.Elapsed.Seconds(),
		})
	}
}
