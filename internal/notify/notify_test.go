package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrayerNames(t *testing.T) {
	want := map[Prayer][2]string{
		Fajr:    {"fajr", "prayer_fajr"},
		Dhuhr:   {"dhuhr", "prayer_dhuhr"},
		Asr:     {"asr", "prayer_asr"},
		Maghrib: {"maghrib", "prayer_maghrib"},
		Isha:    {"isha", "prayer_isha"},
	}
	for p, w := range want {
		assert.Equal(t, w[0], p.String())
		assert.Equal(t, w[1], p.LogType())
	}
	assert.Len(t, Prayers, 5)
}

func TestBroadcastHours(t *testing.T) {
	want := map[Broadcast]struct {
		name string
		hour int
	}{
		MorningAdhkar: {"morning_adhkar", 6},
		DailyWisdom:   {"daily_wisdom", 8},
		EveningAdhkar: {"evening_adhkar", 17},
		QuranReminder: {"quran_reminder", 20},
	}
	for b, w := range want {
		assert.Equal(t, w.name, b.String())
		assert.Equal(t, w.hour, b.Hour())
	}
	assert.Len(t, Broadcasts, 4)
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences("u1")

	assert.Equal(t, "u1", p.UserID)
	for _, prayer := range Prayers {
		assert.True(t, p.PrayerEnabled(prayer), prayer.String())
	}
	for _, b := range Broadcasts {
		assert.False(t, p.BroadcastEnabled(b), b.String())
	}
	assert.Equal(t, 10, p.PrayerReminderMinutes)
	assert.Equal(t, "Asia/Bangkok", p.Timezone)
	assert.InDelta(t, 13.7563, p.Latitude, 1e-9)
	assert.InDelta(t, 100.5018, p.Longitude, 1e-9)
}

func TestClampOffset(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{30, 30},
		{60, 60},
		{61, 60},
		{500, 60},
	}
	for _, tt := range tests {
		p := Preferences{PrayerReminderMinutes: tt.in}
		p.ClampOffset()
		assert.Equal(t, tt.want, p.PrayerReminderMinutes)
	}
}

func TestPrayerTimesFor(t *testing.T) {
	assert.Equal(t, "05:00", standardTimes.For(Fajr))
	assert.Equal(t, "12:20", standardTimes.For(Dhuhr))
	assert.Equal(t, "15:40", standardTimes.For(Asr))
	assert.Equal(t, "18:30", standardTimes.For(Maghrib))
	assert.Equal(t, "19:45", standardTimes.For(Isha))
}
