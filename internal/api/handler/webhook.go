package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ibadahth/salah-notify/internal/api/respond"
	"github.com/ibadahth/salah-notify/internal/line"
	"github.com/ibadahth/salah-notify/internal/notify"
)

const maxWebhookBody = 1 << 20 // LINE batches are small; 1 MiB is generous

// LineWebhook receives platform events. The signature is verified against
// the channel secret before anything is parsed; per-event failures are
// logged and the batch always returns 200 so the platform does not retry.
func (h *Handler) LineWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_BODY", "Could not read request body")
		return
	}

	if !h.lineClient.VerifySignature(body, r.Header.Get("X-Line-Signature")) {
		respond.WriteError(w, http.StatusUnauthorized, "BAD_SIGNATURE", "Signature verification failed")
		return
	}

	req, err := line.ParseWebhook(body)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_PAYLOAD", "Malformed webhook body")
		return
	}

	for _, event := range req.Events {
		if err := h.handleLineEvent(r.Context(), event); err != nil {
			slog.Warn("webhook event failed",
				"type", event.Type, "line_user_id", event.Source.UserID, "error", err)
		}
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleLineEvent(ctx context.Context, event line.Event) error {
	lineUserID := event.Source.UserID

	switch event.Type {
	case line.EventFollow:
		_ = h.store.LogEvent(ctx, "", lineUserID, "follow")
		return h.reply(ctx, event.ReplyToken, textGreeting)

	case line.EventUnfollow:
		// No reply token on unfollow; just deactivate.
		if err := h.store.DeactivateByLineID(ctx, lineUserID); err != nil {
			return err
		}
		return h.store.LogEvent(ctx, "", lineUserID, "unfollow")

	case line.EventTypeMessage:
		if event.Message == nil || event.Message.Type != "text" {
			return nil
		}
		return h.handleCommand(ctx, event, strings.TrimSpace(event.Message.Text))

	case line.EventAccountLink:
		if event.Link == nil || event.Link.Result != "ok" {
			return h.reply(ctx, event.ReplyToken, textLinkInvalid)
		}
		return h.linkWithToken(ctx, event, event.Link.Nonce)

	case line.EventPostback:
		// Postbacks carry no commands yet; acknowledged silently.
		return nil
	}
	return nil
}

// handleCommand dispatches the fixed command vocabulary. Thai aliases map
// onto the same commands.
func (h *Handler) handleCommand(ctx context.Context, event line.Event, text string) error {
	lineUserID := event.Source.UserID
	cmd, arg, _ := strings.Cut(text, " ")

	switch strings.ToLower(cmd) {
	case "link", "เชื่อมบัญชี":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			return h.reply(ctx, event.ReplyToken, textLinkUsage)
		}
		return h.linkWithToken(ctx, event, arg)

	case "unlink", "ยกเลิก":
		conn, err := h.store.ConnectionByLineID(ctx, lineUserID)
		if err != nil {
			return err
		}
		if conn == nil {
			return h.reply(ctx, event.ReplyToken, textNotLinked)
		}
		if err := h.store.DeactivateByLineID(ctx, lineUserID); err != nil {
			return err
		}
		_ = h.store.LogEvent(ctx, conn.UserID, lineUserID, "unlink")
		return h.reply(ctx, event.ReplyToken, textUnlinked)

	case "status", "สถานะ":
		return h.replyStatus(ctx, event)

	case "help", "ช่วยเหลือ":
		return h.reply(ctx, event.ReplyToken, textHelp)

	default:
		return h.reply(ctx, event.ReplyToken, textUnknownCommand)
	}
}

// linkWithToken redeems a link token, fetches the LINE profile, and
// activates the connection (deactivating any prior link on either side).
func (h *Handler) linkWithToken(ctx context.Context, event line.Event, token string) error {
	lineUserID := event.Source.UserID

	userID, err := h.store.ConsumeLinkToken(ctx, token)
	if errors.Is(err, notify.ErrLinkTokenInvalid) {
		return h.reply(ctx, event.ReplyToken, textLinkInvalid)
	}
	if err != nil {
		return err
	}

	// Profile fetch is best-effort context for the log; linking proceeds
	// even when it fails.
	if profile, err := h.lineClient.GetProfile(ctx, lineUserID); err != nil {
		slog.Warn("line profile fetch failed", "line_user_id", lineUserID, "error", err)
	} else {
		slog.Info("linking line account", "user_id", userID, "display_name", profile.DisplayName)
	}

	if err := h.store.ActivateConnection(ctx, userID, lineUserID); err != nil {
		return err
	}
	_ = h.store.LogEvent(ctx, userID, lineUserID, "link")
	return h.reply(ctx, event.ReplyToken, textLinked)
}

func (h *Handler) replyStatus(ctx context.Context, event line.Event) error {
	conn, err := h.store.ConnectionByLineID(ctx, event.Source.UserID)
	if err != nil {
		return err
	}
	if conn == nil {
		return h.reply(ctx, event.ReplyToken, textNotLinked)
	}

	prefs, err := h.store.PreferencesFor(ctx, conn.UserID)
	if err != nil {
		return err
	}

	status := fmt.Sprintf("เชื่อมต่อแล้ว ✅ Connected\n📍 %s", describeLocation(prefs))
	if prefs != nil {
		enabled := 0
		for _, p := range notify.Prayers {
			if prefs.PrayerEnabled(p) {
				enabled++
			}
		}
		status += fmt.Sprintf(
			"\n🕌 แจ้งเตือนละหมาด %d/5 เวลา (ล่วงหน้า %d นาที)\nPrayer reminders: %d/5 (%d min before)",
			enabled, prefs.PrayerReminderMinutes, enabled, prefs.PrayerReminderMinutes)
	}
	return h.reply(ctx, event.ReplyToken, status)
}

func describeLocation(prefs *notify.Preferences) string {
	if prefs == nil || prefs.LocationLabel == "" {
		return "-"
	}
	return prefs.LocationLabel
}

func (h *Handler) reply(ctx context.Context, replyToken, text string) error {
	if replyToken == "" {
		return nil
	}
	return h.lineClient.Reply(ctx, replyToken, []line.Message{line.NewText(text)})
}
