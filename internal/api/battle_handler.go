package api

import (
	"net/http"

	"github.com/phrazzld/pokepc/internal/api/shared"
	"github.com/phrazzld/pokepc/internal/events"
	"github.com/phrazzld/pokepc/internal/platform/logger"
)

// BattleResultRequest reports the outcome of a battle between two users.
type BattleResultRequest struct {
	WinnerID string `json:"winnerId" validate:"required,numeric"`
	LoserID  string `json:"loserId" validate:"required,numeric,nefield=WinnerID"`
}

// BattleResultResponse acknowledges a queued battle result.
type BattleResultResponse struct {
	EventID string `json:"eventId"`
	Status  string `json:"status"`
}

// BattleHandler turns reported battle results into activity events.
type BattleHandler struct {
	emitter events.EventEmitter
}

// NewBattleHandler creates a BattleHandler.
func NewBattleHandler(emitter events.EventEmitter) *BattleHandler {
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	return &BattleHandler{emitter: emitter}
}

// ReportResult handles POST /battles. Processing is asynchronous, so a
// successful report answers 202.
func (h *BattleHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	var req BattleResultRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// Battle events are keyed by the winner; the loser's updates follow on
	// the same worker.
	event, err := events.NewActivityEvent(events.BattleFinished, req.WinnerID, events.BattlePayload{
		WinnerID: req.WinnerID,
		LoserID:  req.LoserID,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	logger.FromContext(r.Context()).Info("battle result queued",
		"event_id", event.ID.String(),
		"winner_id", req.WinnerID,
		"loser_id", req.LoserID)

	shared.RespondWithJSON(w, r, http.StatusAccepted, BattleResultResponse{
		EventID: event.ID.String(),
		Status:  "queued",
	})
}
