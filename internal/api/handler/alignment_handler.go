package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/newslens/alignment-notifier/internal/api/middleware"
	"github.com/newslens/alignment-notifier/internal/domain"
	"github.com/newslens/alignment-notifier/internal/metrics"
	"github.com/newslens/alignment-notifier/internal/service"
)

// AlignmentHandler receives alignment-change events from the scoring
// process and fans them out to the notification queue.
type AlignmentHandler struct {
	svc    *service.NotificationService
	m      *metrics.Metrics
	logger *zap.Logger
}

func NewAlignmentHandler(svc *service.NotificationService, m *metrics.Metrics, logger *zap.Logger) *AlignmentHandler {
	return &AlignmentHandler{svc: svc, m: m, logger: logger}
}

// QueueChange handles POST /api/v1/alignment-changes
//
// @Summary     Queue notifications for an alignment-score change
// @Tags        alignment
// @Accept      json
// @Produce     json
// @Param       body  body      domain.AlignmentChangeEvent  true  "Change event"
// @Success     202   {object}  map[string]int
// @Failure     422   {object}  map[string]string
// @Router      /api/v1/alignment-changes [post]
func (h *AlignmentHandler) QueueChange(w http.ResponseWriter, r *http.Request) {
	var event domain.AlignmentChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Callers that only track scores may omit the new label.
	if event.NewLabel == "" {
		event.NewLabel = domain.LabelForScore(event.NewScore)
	}

	queued, err := h.svc.QueueAlignmentChange(r.Context(), event)
	if err != nil {
		h.logger.Warn("queue alignment change failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("source_id", event.SourceID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	h.m.ObserveQueued(queued)
	respondJSON(w, http.StatusAccepted, map[string]int{"queued": queued})
}
