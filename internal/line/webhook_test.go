package line

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhook(t *testing.T) {
	body := []byte(`{
		"destination": "Udest",
		"events": [
			{
				"type": "message",
				"timestamp": 1756700000000,
				"replyToken": "rt-1",
				"source": {"type": "user", "userId": "U123"},
				"message": {"id": "m1", "type": "text", "text": "link abc123"}
			},
			{
				"type": "follow",
				"source": {"type": "user", "userId": "U456"}
			},
			{
				"type": "unfollow",
				"source": {"type": "user", "userId": "U789"}
			}
		]
	}`)

	req, err := ParseWebhook(body)
	require.NoError(t, err)

	assert.Equal(t, "Udest", req.Destination)
	require.Len(t, req.Events, 3)

	msg := req.Events[0]
	assert.Equal(t, EventMessage{ID: "m1", Type: "text", Text: "link abc123"}, *msg.Message)
	assert.Equal(t, "rt-1", msg.ReplyToken)
	assert.Equal(t, "U123", msg.Source.UserID)

	assert.Equal(t, EventFollow, req.Events[1].Type)
	assert.Nil(t, req.Events[1].Message)
	assert.Equal(t, EventUnfollow, req.Events[2].Type)
}

func TestParseWebhookBadBody(t *testing.T) {
	_, err := ParseWebhook([]byte("not json"))
	assert.Error(t, err)
}

func TestParseWebhookEmptyEvents(t *testing.T) {
	// LINE sends an empty batch as the webhook verification ping.
	req, err := ParseWebhook([]byte(`{"destination":"Udest","events":[]}`))
	require.NoError(t, err)
	assert.Empty(t, req.Events)
}
