package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ibadahth/salah-notify/internal/api/respond"
	"github.com/ibadahth/salah-notify/internal/notify"
)

// preferencesPayload is the PUT body for the preferences upsert. Validation
// mirrors the database constraints so bad input never reaches Postgres.
type preferencesPayload struct {
	PrayerFajr            bool    `json:"prayer_fajr"`
	PrayerDhuhr           bool    `json:"prayer_dhuhr"`
	PrayerAsr             bool    `json:"prayer_asr"`
	PrayerMaghrib         bool    `json:"prayer_maghrib"`
	PrayerIsha            bool    `json:"prayer_isha"`
	PrayerReminderMinutes int     `json:"prayer_reminder_minutes" validate:"gte=0,lte=60"`
	MorningAdhkar         bool    `json:"morning_adhkar"`
	DailyWisdom           bool    `json:"daily_wisdom"`
	EveningAdhkar         bool    `json:"evening_adhkar"`
	QuranReminder         bool    `json:"quran_reminder"`
	Latitude              float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude             float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Timezone              string  `json:"timezone" validate:"required,timezone"`
	LocationLabel         string  `json:"location_label" validate:"required,max=120"`
}

// GetPreferences returns a user's notification preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prefs, err := h.store.PreferencesFor(r.Context(), userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Could not load preferences")
		return
	}
	if prefs == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No preferences for user")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, preferencesView(prefs))
}

// PutPreferences upserts a user's notification preferences.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var payload preferencesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_PAYLOAD", "Malformed JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		respond.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
		return
	}

	prefs := &notify.Preferences{
		UserID:                userID,
		PrayerFajr:            payload.PrayerFajr,
		PrayerDhuhr:           payload.PrayerDhuhr,
		PrayerAsr:             payload.PrayerAsr,
		PrayerMaghrib:         payload.PrayerMaghrib,
		PrayerIsha:            payload.PrayerIsha,
		PrayerReminderMinutes: payload.PrayerReminderMinutes,
		MorningAdhkar:         payload.MorningAdhkar,
		DailyWisdom:           payload.DailyWisdom,
		EveningAdhkar:         payload.EveningAdhkar,
		QuranReminder:         payload.QuranReminder,
		Latitude:              payload.Latitude,
		Longitude:             payload.Longitude,
		Timezone:              payload.Timezone,
		LocationLabel:         payload.LocationLabel,
	}

	if err := h.store.UpsertPreferences(r.Context(), prefs); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Could not save preferences")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, preferencesView(prefs))
}

func preferencesView(p *notify.Preferences) map[string]interface{} {
	return map[string]interface{}{
		"user_id":                 p.UserID,
		"prayer_fajr":             p.PrayerFajr,
		"prayer_dhuhr":            p.PrayerDhuhr,
		"prayer_asr":              p.PrayerAsr,
		"prayer_maghrib":          p.PrayerMaghrib,
		"prayer_isha":             p.PrayerIsha,
		"prayer_reminder_minutes": p.PrayerReminderMinutes,
		"morning_adhkar":          p.MorningAdhkar,
		"daily_wisdom":            p.DailyWisdom,
		"evening_adhkar":          p.EveningAdhkar,
		"quran_reminder":          p.QuranReminder,
		"latitude":                p.Latitude,
		"longitude":               p.Longitude,
		"timezone":                p.Timezone,
		"location_label":          p.LocationLabel,
	}
}
