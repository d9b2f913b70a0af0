package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ibadahth/salah-notify/internal/api/respond"
	"github.com/ibadahth/salah-notify/internal/cache"
)

// GetPrayerTimes serves today's prayer times for a coordinate pair. Backs
// the website widget; responses are cached in memory with ETag support.
func (h *Handler) GetPrayerTimes(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	if err != nil || lat < -90 || lat > 90 {
		respond.WriteError(w, http.StatusBadRequest, "BAD_LATITUDE", "latitude must be between -90 and 90")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err != nil || lon < -180 || lon > 180 {
		respond.WriteError(w, http.StatusBadRequest, "BAD_LONGITUDE", "longitude must be between -180 and 180")
		return
	}

	today := time.Now().UTC()
	cacheKey := fmt.Sprintf("prayer:%.3f:%.3f:%s", lat, lon, today.Format("2006-01-02"))
	ttl := cache.TTLPrayerTimes

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	times, err := h.prayerAPI.Timings(r.Context(), today, lat, lon)
	if err != nil {
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Prayer time source unavailable")
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"date":      today.Format("2006-01-02"),
		"latitude":  lat,
		"longitude": lon,
		"timings": map[string]string{
			"fajr":    times.Fajr,
			"sunrise": times.Sunrise,
			"dhuhr":   times.Dhuhr,
			"asr":     times.Asr,
			"maghrib": times.Maghrib,
			"isha":    times.Isha,
		},
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "Could not encode response")
		return
	}

	etag := h.cache.Set(cacheKey, payload, ttl)
	respond.WriteJSON(w, payload, etag, ttl, false)
}
