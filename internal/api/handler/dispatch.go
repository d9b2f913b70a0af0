package handler

import (
	"net/http"

	"github.com/ibadahth/salah-notify/internal/api/respond"
	"github.com/ibadahth/salah-notify/internal/metrics"
	"github.com/ibadahth/salah-notify/internal/notify"
)

// dispatchResponse is the trigger endpoints' summary shape.
type dispatchResponse struct {
	Success    bool           `json:"success"`
	Sent       int            `json:"sent"`
	Failed     int            `json:"failed,omitempty"`
	SentByType map[string]int `json:"sent_by_type,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// DispatchPrayer runs one prayer-reminder sweep. Invoked by the external
// scheduler every 5 minutes; auth is handled by the CronAuth middleware.
func (h *Handler) DispatchPrayer(w http.ResponseWriter, r *http.Request) {
	result := h.dispatcher.DispatchPrayers(r.Context())
	metrics.RecordDispatch("prayer", result)
	writeDispatchResult(w, result)
}

// DispatchScheduled runs one fixed-hour broadcast sweep. Invoked hourly.
func (h *Handler) DispatchScheduled(w http.ResponseWriter, r *http.Request) {
	result := h.dispatcher.DispatchScheduled(r.Context())
	metrics.RecordDispatch("scheduled", result)
	writeDispatchResult(w, result)
}

func writeDispatchResult(w http.ResponseWriter, result *notify.Result) {
	respond.WriteJSONObject(w, http.StatusOK, dispatchResponse{
		Success:    true,
		Sent:       result.Sent,
		Failed:     result.Failed,
		SentByType: result.SentByType,
		Errors:     result.Errors,
		DurationMS: result.Duration.Milliseconds(),
	})
}
