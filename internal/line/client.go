// Package line is a client for the LINE Messaging API: push and reply
// messages, profile lookup, and webhook signature verification.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.line.me"
	clientTimeout  = 10 * time.Second
)

// Client calls the LINE Messaging API with a channel access token.
type Client struct {
	baseURL       string
	channelToken  string
	channelSecret string
	httpClient    *http.Client
}

// New creates a LINE client. channelToken authenticates outbound calls;
// channelSecret verifies inbound webhook signatures.
func New(channelToken, channelSecret string) *Client {
	return &Client{
		baseURL:       defaultBaseURL,
		channelToken:  channelToken,
		channelSecret: channelSecret,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// IsConfigured reports whether a channel access token is set.
func (c *Client) IsConfigured() bool {
	return c.channelToken != ""
}

// Profile is a LINE user profile.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

// Push sends messages directly to a user by LINE user id.
func (c *Client) Push(ctx context.Context, to string, msgs []Message) error {
	body := struct {
		To       string    `json:"to"`
		Messages []Message `json:"messages"`
	}{To: to, Messages: msgs}
	return c.post(ctx, "/v2/bot/message/push", body)
}

// Reply answers a webhook event using its reply token.
func (c *Client) Reply(ctx context.Context, replyToken string, msgs []Message) error {
	body := struct {
		ReplyToken string    `json:"replyToken"`
		Messages   []Message `json:"messages"`
	}{ReplyToken: replyToken, Messages: msgs}
	return c.post(ctx, "/v2/bot/message/reply", body)
}

// Multicast sends the same messages to up to 500 users in one call.
// Present for parity with the API surface; the dispatch loops send per-user
// because message content varies with preferences.
func (c *Client) Multicast(ctx context.Context, to []string, msgs []Message) error {
	body := struct {
		To       []string  `json:"to"`
		Messages []Message `json:"messages"`
	}{To: to, Messages: msgs}
	return c.post(ctx, "/v2/bot/message/multicast", body)
}

// GetProfile fetches a user's LINE profile. Used at link time.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/bot/profile/"+userID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("line profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("line profile: HTTP %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("line profile decode: %w", err)
	}
	return &p, nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("line marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line %s: HTTP %d: %s", path, resp.StatusCode, detail)
	}
	return nil
}
