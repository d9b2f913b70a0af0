// Package notify implements the notification dispatch loops: prayer-time
// reminders evaluated against a per-user send window, and fixed-hour daily
// broadcasts (morning adhkar, daily wisdom, evening adhkar, Quran reminder).
//
// Each loop is a single sweep over active LINE connections: resolve
// preferences → resolve today's prayer times (cache or Aladhan fetch) →
// evaluate eligibility → claim a send slot in the log → push via LINE →
// record the outcome. Per-user failures are logged and accumulated; the
// sweep always continues.
package notify

import (
	"context"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// sendWindowMinutes is the tolerance after a reminder comes due during
	// which it is still sent. Matches the external scheduler's 5-minute
	// invocation interval.
	sendWindowMinutes = 5

	// maxReminderOffset bounds the user-configured reminder offset.
	maxReminderOffset = 60

	localDateLayout = "2006-01-02"
)

// Fixed local hours for the scheduled broadcasts.
const (
	morningAdhkarHour = 6
	dailyWisdomHour   = 8
	eveningAdhkarHour = 17
	quranReminderHour = 20
)

// --------------------------------------------------------------------------
// Prayer enum
// --------------------------------------------------------------------------

// Prayer identifies one of the five obligatory prayers.
type Prayer int

const (
	Fajr Prayer = iota
	Dhuhr
	Asr
	Maghrib
	Isha
)

// Prayers lists the five prayers in canonical order. Dispatch iterates this
// order; the prayers are independent so ordering carries no semantics.
var Prayers = []Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha}

// String returns the lowercase English name.
func (p Prayer) String() string {
	switch p {
	case Fajr:
		return "fajr"
	case Dhuhr:
		return "dhuhr"
	case Asr:
		return "asr"
	case Maghrib:
		return "maghrib"
	case Isha:
		return "isha"
	}
	return "unknown"
}

// LogType returns the notification type tag written to the log.
func (p Prayer) LogType() string {
	return "prayer_" + p.String()
}

// --------------------------------------------------------------------------
// Scheduled broadcast enum
// --------------------------------------------------------------------------

// Broadcast identifies one of the four fixed-hour daily notifications.
type Broadcast int

const (
	MorningAdhkar Broadcast = iota
	DailyWisdom
	EveningAdhkar
	QuranReminder
)

// Broadcasts lists the four scheduled broadcasts in dispatch order.
var Broadcasts = []Broadcast{MorningAdhkar, DailyWisdom, EveningAdhkar, QuranReminder}

// String returns the notification type tag written to the log.
func (b Broadcast) String() string {
	switch b {
	case MorningAdhkar:
		return "morning_adhkar"
	case DailyWisdom:
		return "daily_wisdom"
	case EveningAdhkar:
		return "evening_adhkar"
	case QuranReminder:
		return "quran_reminder"
	}
	return "unknown"
}

// Hour returns the local hour at which the broadcast fires.
func (b Broadcast) Hour() int {
	switch b {
	case MorningAdhkar:
		return morningAdhkarHour
	case DailyWisdom:
		return dailyWisdomHour
	case EveningAdhkar:
		return eveningAdhkarHour
	case QuranReminder:
		return quranReminderHour
	}
	return -1
}

// --------------------------------------------------------------------------
// Domain types
// --------------------------------------------------------------------------

// Connection pairs an internal user with a LINE user id. Only active rows
// are swept by the dispatch loops.
type Connection struct {
	UserID      string
	LineUserID  string
	Active      bool
	ConnectedAt time.Time
}

// Preferences is the per-user notification configuration. Exactly one row
// per user, created with defaults on first link.
type Preferences struct {
	UserID string

	PrayerFajr            bool
	PrayerDhuhr           bool
	PrayerAsr             bool
	PrayerMaghrib         bool
	PrayerIsha            bool
	PrayerReminderMinutes int // minutes before prayer time, 0–60

	MorningAdhkar bool
	DailyWisdom   bool
	EveningAdhkar bool
	QuranReminder bool

	Latitude      float64
	Longitude     float64
	Timezone      string
	LocationLabel string
}

// PrayerEnabled reports whether the reminder for a prayer is on.
func (pr *Preferences) PrayerEnabled(p Prayer) bool {
	switch p {
	case Fajr:
		return pr.PrayerFajr
	case Dhuhr:
		return pr.PrayerDhuhr
	case Asr:
		return pr.PrayerAsr
	case Maghrib:
		return pr.PrayerMaghrib
	case Isha:
		return pr.PrayerIsha
	}
	return false
}

// BroadcastEnabled reports whether a scheduled broadcast is on.
func (pr *Preferences) BroadcastEnabled(b Broadcast) bool {
	switch b {
	case MorningAdhkar:
		return pr.MorningAdhkar
	case DailyWisdom:
		return pr.DailyWisdom
	case EveningAdhkar:
		return pr.EveningAdhkar
	case QuranReminder:
		return pr.QuranReminder
	}
	return false
}

// ClampOffset bounds the reminder offset to the allowed range.
func (pr *Preferences) ClampOffset() {
	if pr.PrayerReminderMinutes < 0 {
		pr.PrayerReminderMinutes = 0
	}
	if pr.PrayerReminderMinutes > maxReminderOffset {
		pr.PrayerReminderMinutes = maxReminderOffset
	}
}

// DefaultPreferences returns the row created on first link: all prayers on,
// broadcasts off, Bangkok location.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:                userID,
		PrayerFajr:            true,
		PrayerDhuhr:           true,
		PrayerAsr:             true,
		PrayerMaghrib:         true,
		PrayerIsha:            true,
		PrayerReminderMinutes: 10,
		Latitude:              13.7563,
		Longitude:             100.5018,
		Timezone:              "Asia/Bangkok",
		LocationLabel:         "Bangkok",
	}
}

// PrayerTimes holds one day's clock times as HH:mm strings.
type PrayerTimes struct {
	Fajr    string
	Sunrise string
	Dhuhr   string
	Asr     string
	Maghrib string
	Isha    string
}

// For returns the clock time of a prayer.
func (t *PrayerTimes) For(p Prayer) string {
	switch p {
	case Fajr:
		return t.Fajr
	case Dhuhr:
		return t.Dhuhr
	case Asr:
		return t.Asr
	case Maghrib:
		return t.Maghrib
	case Isha:
		return t.Isha
	}
	return ""
}

// Wisdom is a daily-wisdom row: bilingual text, optionally pinned to a date.
type Wisdom struct {
	ID     int
	TextTH string
	TextEN string
	Source string
}

// Result summarizes one dispatch sweep.
type Result struct {
	Sent       int            `json:"sent"`
	Failed     int            `json:"failed"`
	SentByType map[string]int `json:"sent_by_type,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
	Duration   time.Duration  `json:"-"`
}

func newResult() *Result {
	return &Result{SentByType: make(map[string]int)}
}

// --------------------------------------------------------------------------
// Collaborator interfaces
// --------------------------------------------------------------------------

// Store is the persistence surface the dispatch loops need.
type Store interface {
	// ActiveConnections lists all currently linked users.
	ActiveConnections(ctx context.Context) ([]Connection, error)
	// PreferencesFor returns a user's preferences, or nil when the user has
	// no row (the user is skipped, not an error).
	PreferencesFor(ctx context.Context, userID string) (*Preferences, error)
	// CachedPrayerTimes returns the cached times for (user, local date), or
	// nil on a miss.
	CachedPrayerTimes(ctx context.Context, userID, localDate string) (*PrayerTimes, error)
	// SavePrayerTimes upserts a cache row keyed by (user, local date).
	SavePrayerTimes(ctx context.Context, userID, localDate string, t *PrayerTimes, lat, lon float64) error
	// ClaimSend atomically claims the (user, type, local date) send slot by
	// inserting a pending log row. Returns false when the slot is already
	// claimed or sent today.
	ClaimSend(ctx context.Context, userID, lineUserID, notificationType, localDate string) (bool, error)
	// MarkSent finalizes a claimed slot as delivered.
	MarkSent(ctx context.Context, userID, notificationType, localDate string) error
	// MarkFailed finalizes a claimed slot as failed with an error message,
	// releasing the slot for a later window.
	MarkFailed(ctx context.Context, userID, notificationType, localDate, reason string) error
	// WisdomPinned returns the wisdom row pinned to a local date, or nil.
	WisdomPinned(ctx context.Context, localDate string) (*Wisdom, error)
	// WisdomPool returns all undated wisdom rows ordered by id.
	WisdomPool(ctx context.Context) ([]Wisdom, error)
}

// TimesSource fetches one day's prayer times for a coordinate pair.
type TimesSource interface {
	Timings(ctx context.Context, day time.Time, lat, lon float64) (*PrayerTimes, error)
}
