package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifySignature checks an inbound webhook body against the
// X-Line-Signature header: base64(HMAC-SHA256(channel secret, body)).
func (c *Client) VerifySignature(body []byte, signature string) bool {
	return VerifySignature(c.channelSecret, body, signature)
}

// VerifySignature validates a webhook signature against a channel secret.
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	if channelSecret == "" || signature == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}
