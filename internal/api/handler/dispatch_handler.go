package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/newslens/alignment-notifier/internal/service"
)

// DispatchHandler exposes on-demand dispatch, retry, and queue-stat
// endpoints. The same operations run on timers in internal/worker; these
// routes exist for operators and for deployments that drive the cycle from
// an external cron instead.
type DispatchHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewDispatchHandler(svc *service.NotificationService, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{svc: svc, logger: logger}
}

// Run handles POST /api/v1/dispatch/run
//
// @Summary  Process a batch of pending notifications now
// @Tags     dispatch
// @Produce  json
// @Param    batch_size  query     int  false  "Batch bound (default 50)"
// @Success  200         {object}  domain.DispatchResult
// @Router   /api/v1/dispatch/run [post]
func (h *DispatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	batchSize := queryInt(r, "batch_size")

	res, err := h.svc.ProcessPending(r.Context(), batchSize)
	if err != nil {
		h.logger.Error("on-demand dispatch failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "dispatch failed")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Retry handles POST /api/v1/dispatch/retry
//
// @Summary  Reset a bounded batch of failed notifications to pending
// @Tags     dispatch
// @Produce  json
// @Param    limit  query     int  false  "Reset bound (default 20)"
// @Success  200    {object}  map[string]int
// @Router   /api/v1/dispatch/retry [post]
func (h *DispatchHandler) Retry(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	requeued := h.svc.RetryFailed(r.Context(), limit)
	respondJSON(w, http.StatusOK, map[string]int{"requeued": requeued})
}

// Stats handles GET /api/v1/queue/stats
//
// @Summary  Queue depth by status
// @Tags     dispatch
// @Produce  json
// @Success  200  {object}  domain.QueueCounts
// @Router   /api/v1/queue/stats [get]
func (h *DispatchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.PendingCounts(r.Context()))
}

// queryInt returns the named query parameter as a positive int, or 0 when
// absent or invalid — the service substitutes its default for 0.
func queryInt(r *http.Request, name string) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return 0
}
