package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ibadahth/salah-notify/internal/line"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeStore struct {
	mu sync.Mutex

	conns  []Connection
	prefs  map[string]*Preferences
	cached map[string]*PrayerTimes // userID|date

	savedTimes int

	claimed map[string]bool // user|type|date slots taken before the run
	pending map[string]bool
	sent    []string
	failed  []string

	pinned map[string]*Wisdom
	pool   []Wisdom

	prefsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prefs:   make(map[string]*Preferences),
		cached:  make(map[string]*PrayerTimes),
		claimed: make(map[string]bool),
		pending: make(map[string]bool),
		pinned:  make(map[string]*Wisdom),
	}
}

func (s *fakeStore) ActiveConnections(ctx context.Context) ([]Connection, error) {
	return s.conns, nil
}

func (s *fakeStore) PreferencesFor(ctx context.Context, userID string) (*Preferences, error) {
	if s.prefsErr != nil {
		return nil, s.prefsErr
	}
	return s.prefs[userID], nil
}

func (s *fakeStore) CachedPrayerTimes(ctx context.Context, userID, localDate string) (*PrayerTimes, error) {
	return s.cached[userID+"|"+localDate], nil
}

func (s *fakeStore) SavePrayerTimes(ctx context.Context, userID, localDate string, t *PrayerTimes, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached[userID+"|"+localDate] = t
	s.savedTimes++
	return nil
}

func slotKey(userID, notificationType, localDate string) string {
	return userID + "|" + notificationType + "|" + localDate
}

func (s *fakeStore) ClaimSend(ctx context.Context, userID, lineUserID, notificationType, localDate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey(userID, notificationType, localDate)
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	s.pending[key] = true
	return true, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, userID, notificationType, localDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, slotKey(userID, notificationType, localDate))
	s.sent = append(s.sent, slotKey(userID, notificationType, localDate))
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, userID, notificationType, localDate, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey(userID, notificationType, localDate)
	delete(s.pending, key)
	// Failed slots leave the unique index in the real store.
	delete(s.claimed, key)
	s.failed = append(s.failed, key+"|"+reason)
	return nil
}

func (s *fakeStore) WisdomPinned(ctx context.Context, localDate string) (*Wisdom, error) {
	return s.pinned[localDate], nil
}

func (s *fakeStore) WisdomPool(ctx context.Context) ([]Wisdom, error) {
	return s.pool, nil
}

type fakeTimes struct {
	times   *PrayerTimes
	err     error
	fetches int
}

func (f *fakeTimes) Timings(ctx context.Context, day time.Time, lat, lon float64) (*PrayerTimes, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.times, nil
}

type push struct {
	to   string
	msgs []line.Message
}

type fakeSender struct {
	pushes []push
	err    error
}

func (f *fakeSender) Push(ctx context.Context, to string, msgs []line.Message) error {
	if f.err != nil {
		return f.err
	}
	f.pushes = append(f.pushes, push{to: to, msgs: msgs})
	return nil
}

// --------------------------------------------------------------------------
// Test harness
// --------------------------------------------------------------------------

type harness struct {
	store  *fakeStore
	times  *fakeTimes
	sender *fakeSender
	d      *Dispatcher
}

func newHarness(now time.Time) *harness {
	h := &harness{
		store:  newFakeStore(),
		times:  &fakeTimes{},
		sender: &fakeSender{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.d = NewDispatcher(h.store, h.times, h.sender, logger)
	h.d.now = func() time.Time { return now }
	return h
}

func (h *harness) setNow(now time.Time) {
	h.d.now = func() time.Time { return now }
}

// addUser registers an active connection with UTC preferences so clock math
// in tests is transparent.
func (h *harness) addUser(userID string, mutate func(*Preferences)) {
	h.store.conns = append(h.store.conns, Connection{
		UserID:     userID,
		LineUserID: "U" + userID,
		Active:     true,
	})
	prefs := DefaultPreferences(userID)
	prefs.Timezone = "UTC"
	if mutate != nil {
		mutate(prefs)
	}
	h.store.prefs[userID] = prefs
}

func utc(hour, minute int) time.Time {
	return time.Date(2026, 9, 1, hour, minute, 0, 0, time.UTC)
}

var standardTimes = &PrayerTimes{
	Fajr:    "05:00",
	Sunrise: "06:15",
	Dhuhr:   "12:20",
	Asr:     "15:40",
	Maghrib: "18:30",
	Isha:    "19:45",
}

func (h *harness) cacheTimes(userID string, day time.Time, t *PrayerTimes) {
	h.store.cached[userID+"|"+day.Format(localDateLayout)] = t
}

func fmtSlot(userID string, p Prayer, day time.Time) string {
	return fmt.Sprintf("%s|%s|%s", userID, p.LogType(), day.Format(localDateLayout))
}
