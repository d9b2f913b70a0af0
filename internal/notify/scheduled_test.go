package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibadahth/salah-notify/internal/line"
)

func enableBroadcasts(p *Preferences) {
	p.MorningAdhkar = true
	p.DailyWisdom = true
	p.EveningAdhkar = true
	p.QuranReminder = true
}

func TestScheduledHourGate(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantType string
	}{
		{"06 local fires morning adhkar", utc(6, 0), "morning_adhkar"},
		{"06:59 still morning adhkar", utc(6, 59), "morning_adhkar"},
		{"08 local fires daily wisdom", utc(8, 30), "daily_wisdom"},
		{"17 local fires evening adhkar", utc(17, 5), "evening_adhkar"},
		{"20 local fires quran reminder", utc(20, 0), "quran_reminder"},
		{"07 local fires nothing", utc(7, 0), ""},
		{"21 local fires nothing", utc(21, 15), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.now)
			h.addUser("u1", enableBroadcasts)

			result := h.d.DispatchScheduled(context.Background())

			if tt.wantType == "" {
				assert.Zero(t, result.Sent)
				assert.Empty(t, h.sender.pushes)
				return
			}
			assert.Equal(t, 1, result.Sent)
			assert.Equal(t, map[string]int{tt.wantType: 1}, result.SentByType)
			require.Len(t, h.store.sent, 1)
			assert.Equal(t, "u1|"+tt.wantType+"|2026-09-01", h.store.sent[0])
		})
	}
}

func TestScheduledRespectsFlags(t *testing.T) {
	// Broadcasts default to off; the hour alone must not trigger a send.
	h := newHarness(utc(6, 0))
	h.addUser("u1", nil)

	result := h.d.DispatchScheduled(context.Background())

	assert.Zero(t, result.Sent)
	assert.Empty(t, h.sender.pushes)
}

func TestScheduledOncePerDay(t *testing.T) {
	h := newHarness(utc(6, 0))
	h.addUser("u1", enableBroadcasts)

	first := h.d.DispatchScheduled(context.Background())
	assert.Equal(t, 1, first.Sent)

	// The hourly loop can run again inside the same hour after a restart.
	h.setNow(utc(6, 40))
	second := h.d.DispatchScheduled(context.Background())
	assert.Zero(t, second.Sent)
	assert.Len(t, h.sender.pushes, 1)
}

func TestScheduledTimezoneHour(t *testing.T) {
	// 23:00 UTC is 06:00 in Bangkok: the morning adhkar fires on the user's
	// local clock, dated with the local day.
	now := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	h := newHarness(now)
	h.addUser("u1", func(p *Preferences) {
		p.Timezone = "Asia/Bangkok"
		enableBroadcasts(p)
	})

	result := h.d.DispatchScheduled(context.Background())

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, []string{"u1|morning_adhkar|2026-09-01"}, h.store.sent)
}

func TestScheduledSendFailure(t *testing.T) {
	h := newHarness(utc(17, 0))
	h.addUser("u1", enableBroadcasts)
	h.sender.err = errors.New("line: HTTP 429")

	result := h.d.DispatchScheduled(context.Background())

	assert.Zero(t, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, h.store.failed, 1)
	assert.Contains(t, h.store.failed[0], "line: HTTP 429")
}

// --------------------------------------------------------------------------
// Daily wisdom selection
// --------------------------------------------------------------------------

func TestWisdomPinnedDateWins(t *testing.T) {
	h := newHarness(utc(8, 0))
	h.store.pool = []Wisdom{{ID: 1, TextEN: "pool entry"}}
	h.store.pinned["2026-09-01"] = &Wisdom{ID: 9, TextEN: "pinned entry", Source: "Quran 13:28"}

	w, err := PreviewWisdom(context.Background(), h.store, utc(8, 0))

	require.NoError(t, err)
	assert.Equal(t, 9, w.ID)
	assert.Equal(t, "pinned entry", w.TextEN)
}

func TestWisdomRotationIsDeterministic(t *testing.T) {
	// Sept 1 2026 is day 244; with a pool of five, 244 mod 5 selects index 4.
	h := newHarness(utc(8, 0))
	h.store.pool = []Wisdom{
		{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5},
	}

	day := utc(8, 0)
	require.Equal(t, 244, day.YearDay())

	first, err := PreviewWisdom(context.Background(), h.store, day)
	require.NoError(t, err)
	assert.Equal(t, 5, first.ID)

	// Same day, later clock: same pick.
	again, err := PreviewWisdom(context.Background(), h.store, utc(8, 55))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	// Next day advances to the next entry.
	next, err := PreviewWisdom(context.Background(), h.store, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, next.ID)
}

func TestWisdomFallbackWhenTableEmpty(t *testing.T) {
	h := newHarness(utc(8, 0))

	w, err := PreviewWisdom(context.Background(), h.store, utc(8, 0))

	require.NoError(t, err)
	assert.Equal(t, fallbackWisdom.Source, w.Source)
	assert.NotEmpty(t, w.TextTH)
	assert.NotEmpty(t, w.TextEN)
}

func TestDailyWisdomBroadcastCarriesSelectedText(t *testing.T) {
	h := newHarness(utc(8, 0))
	h.addUser("u1", enableBroadcasts)
	h.store.pool = []Wisdom{{ID: 1, TextTH: "ข้อคิดประจำวัน", TextEN: "Reflection of the day", Source: "Quran 94:6"}}

	result := h.d.DispatchScheduled(context.Background())

	assert.Equal(t, 1, result.Sent)
	require.Len(t, h.sender.pushes, 1)
	require.NotEmpty(t, h.sender.pushes[0].msgs)
	text, ok := h.sender.pushes[0].msgs[0].(line.TextMessage)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Reflection of the day")
	assert.Contains(t, text.Text, "Quran 94:6")
}
