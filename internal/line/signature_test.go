package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test-channel-secret"
	body := []byte(`{"destination":"xxx","events":[]}`)

	assert.True(t, VerifySignature(secret, body, sign(secret, body)))
	assert.False(t, VerifySignature(secret, body, sign("wrong-secret", body)))
	assert.False(t, VerifySignature(secret, []byte("tampered"), sign(secret, body)))
	assert.False(t, VerifySignature(secret, body, "not base64 !!!"))
	assert.False(t, VerifySignature(secret, body, ""))
	assert.False(t, VerifySignature("", body, sign("", body)))
}

func TestClientVerifySignature(t *testing.T) {
	c := New("token", "secret")
	body := []byte(`{"events":[]}`)

	assert.True(t, c.VerifySignature(body, sign("secret", body)))
	assert.False(t, c.VerifySignature(body, sign("other", body)))
}
