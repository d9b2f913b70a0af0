package line

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPush(t *testing.T) {
	var got struct {
		To       string `json:"to"`
		Messages []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/push", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("channel-token", "secret").WithBaseURL(srv.URL)
	err := c.Push(context.Background(), "U123", []Message{NewText("as-salamu alaykum")})

	require.NoError(t, err)
	assert.Equal(t, "Bearer channel-token", auth)
	assert.Equal(t, "U123", got.To)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "text", got.Messages[0].Type)
	assert.Equal(t, "as-salamu alaykum", got.Messages[0].Text)
}

func TestPushErrorIncludesResponseDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The user hasn't added the LINE Official Account as a friend"}`))
	}))
	defer srv.Close()

	c := New("channel-token", "secret").WithBaseURL(srv.URL)
	err := c.Push(context.Background(), "U123", []Message{NewText("hi")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "added the LINE Official Account")
}

func TestReply(t *testing.T) {
	var got struct {
		ReplyToken string `json:"replyToken"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/message/reply", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c := New("channel-token", "secret").WithBaseURL(srv.URL)
	require.NoError(t, c.Reply(context.Background(), "rt-1", []Message{NewText("ok")}))
	assert.Equal(t, "rt-1", got.ReplyToken)
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bot/profile/U123", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Profile{UserID: "U123", DisplayName: "Ahmad"})
	}))
	defer srv.Close()

	c := New("channel-token", "secret").WithBaseURL(srv.URL)
	p, err := c.GetProfile(context.Background(), "U123")

	require.NoError(t, err)
	assert.Equal(t, "U123", p.UserID)
	assert.Equal(t, "Ahmad", p.DisplayName)
}

func TestGetProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("channel-token", "secret").WithBaseURL(srv.URL)
	_, err := c.GetProfile(context.Background(), "Unope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, New("token", "").IsConfigured())
	assert.False(t, New("", "secret").IsConfigured())
}
