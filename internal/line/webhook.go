package line

import (
	"encoding/json"
	"fmt"
)

// Webhook event types delivered by the LINE platform.
const (
	EventFollow      = "follow"
	EventUnfollow    = "unfollow"
	EventTypeMessage = "message"
	EventPostback    = "postback"
	EventAccountLink = "accountLink"
)

// WebhookRequest is the body of an inbound webhook call: a batch of events.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single platform event.
type Event struct {
	Type       string        `json:"type"`
	Timestamp  int64         `json:"timestamp"`
	ReplyToken string        `json:"replyToken,omitempty"`
	Source     EventSource   `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
	Postback   *Postback     `json:"postback,omitempty"`
	Link       *AccountLink  `json:"link,omitempty"`
}

// EventSource identifies who triggered the event.
type EventSource struct {
	Type   string `json:"type"` // user, group, room
	UserID string `json:"userId"`
}

// EventMessage is the message payload of a message event.
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"` // text, sticker, image, ...
	Text string `json:"text,omitempty"`
}

// Postback is the payload of a postback event.
type Postback struct {
	Data string `json:"data"`
}

// AccountLink is the payload of an accountLink event.
type AccountLink struct {
	Result string `json:"result"` // ok or failed
	Nonce  string `json:"nonce"`
}

// ParseWebhook decodes a webhook request body.
func ParseWebhook(body []byte) (*WebhookRequest, error) {
	var req WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("parse webhook body: %w", err)
	}
	return &req, nil
}
