package line

import "encoding/json"

// Message is any LINE message object. The Messaging API accepts a
// heterogeneous list, so concrete message types share this marker.
type Message interface {
	message()
}

// TextMessage is a plain text message.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (TextMessage) message() {}

// NewText builds a text message.
func NewText(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// FlexMessage is a structured card message. Contents carries the raw flex
// container JSON unmodified.
type FlexMessage struct {
	Type     string          `json:"type"`
	AltText  string          `json:"altText"`
	Contents json.RawMessage `json:"contents"`
}

func (FlexMessage) message() {}

// NewFlex builds a flex message from a pre-built container.
func NewFlex(altText string, contents json.RawMessage) FlexMessage {
	return FlexMessage{Type: "flex", AltText: altText, Contents: contents}
}
