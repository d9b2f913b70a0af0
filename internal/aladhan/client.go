// Package aladhan fetches daily prayer times from the Aladhan REST API.
package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ibadahth/salah-notify/internal/notify"
)

const (
	requestTimeout = 15 * time.Second
	dateLayout     = "02-01-2006" // DD-MM-YYYY path segment
)

// Client calls GET /v1/timings/{date} with coordinates and a calculation
// method. Implements notify.TimesSource.
type Client struct {
	baseURL    string
	method     int
	httpClient *http.Client
}

// NewClient creates an Aladhan client. method selects the calculation
// convention (3 = Muslim World League).
func NewClient(baseURL string, method int) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		method:  method,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// timingsResponse mirrors the subset of the Aladhan payload we read.
type timingsResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

// Timings fetches one day's prayer times for a coordinate pair.
func (c *Client) Timings(ctx context.Context, day time.Time, lat, lon float64) (*notify.PrayerTimes, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.6f", lat))
	params.Set("longitude", fmt.Sprintf("%.6f", lon))
	params.Set("method", fmt.Sprintf("%d", c.method))

	u := fmt.Sprintf("%s/v1/timings/%s?%s", c.baseURL, day.Format(dateLayout), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aladhan request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aladhan HTTP %d", resp.StatusCode)
	}

	var payload timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("aladhan decode: %w", err)
	}
	if payload.Code != http.StatusOK {
		return nil, fmt.Errorf("aladhan code %d: %s", payload.Code, payload.Status)
	}

	t := &notify.PrayerTimes{
		Fajr:    cleanClock(payload.Data.Timings["Fajr"]),
		Sunrise: cleanClock(payload.Data.Timings["Sunrise"]),
		Dhuhr:   cleanClock(payload.Data.Timings["Dhuhr"]),
		Asr:     cleanClock(payload.Data.Timings["Asr"]),
		Maghrib: cleanClock(payload.Data.Timings["Maghrib"]),
		Isha:    cleanClock(payload.Data.Timings["Isha"]),
	}
	if t.Fajr == "" || t.Dhuhr == "" || t.Asr == "" || t.Maghrib == "" || t.Isha == "" {
		return nil, fmt.Errorf("aladhan response missing timings")
	}
	return t, nil
}

// cleanClock strips the timezone suffix Aladhan appends, e.g.
// "04:55 (+07)" → "04:55".
func cleanClock(v string) string {
	clock, _, _ := strings.Cut(strings.TrimSpace(v), " ")
	return clock
}
