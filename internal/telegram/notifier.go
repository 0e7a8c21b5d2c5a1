// Package telegram notifies ward operators about complaints that the
// classifier held for manual review.
package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"go.uber.org/zap"
)

// Telegram limits photo captions to 1024 characters.
const maxCaptionLength = 1024

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts suspicious complaints to an operator chat.
type Notifier struct {
	Bot    Sender
	ChatID int64
	Logger *zap.Logger
}

// NewNotifier connects to the Bot API. With an empty token or chat ID the
// returned notifier is disabled and every call is a no-op.
func NewNotifier(token string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if token == "" || chatID == 0 {
		logger.Info("telegram notifications disabled")
		return &Notifier{Logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	bot.Debug = false
	logger.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &Notifier{Bot: bot, ChatID: chatID, Logger: logger}, nil
}

// Enabled reports whether notifications are sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.Bot != nil && n.ChatID != 0
}

// NotifySuspicious sends the complaint summary to the operator chat. A
// stored photo is attached by URL; an inline image is too large for a
// caption link, so only the text is sent.
func (n *Notifier) NotifySuspicious(ctx context.Context, complaint *models.Complaint) error {
	if !n.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := formatComplaint(complaint)

	var msg tgbotapi.Chattable
	if complaint.ImageURL != "" && !complaint.HasInlineImage() && len(text) <= maxCaptionLength {
		photo := tgbotapi.NewPhoto(n.ChatID, tgbotapi.FileURL(complaint.ImageURL))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		msg = photo
	} else {
		m := tgbotapi.NewMessage(n.ChatID, text)
		m.ParseMode = tgbotapi.ModeHTML
		msg = m
	}

	if _, err := n.Bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	n.logger().Debug("operators notified", zap.String("complaint_id", complaint.ID))
	return nil
}

func (n *Notifier) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

func formatComplaint(c *models.Complaint) string {
	var b strings.Builder
	b.WriteString("<b>Complaint held for review</b>\n")
	fmt.Fprintf(&b, "ID: <code>%s</code>\n", html.EscapeString(c.ID))
	if c.Ward != nil {
		fmt.Fprintf(&b, "Ward: %s %s\n", html.EscapeString(c.Ward.WardNumber), html.EscapeString(c.Ward.WardNameEn))
	} else {
		fmt.Fprintf(&b, "Ward: <code>%s</code>\n", html.EscapeString(c.WardID))
	}
	fmt.Fprintf(&b, "Location: %s\n", html.EscapeString(c.LocationDetails))
	if c.VerificationNotes != nil {
		fmt.Fprintf(&b, "Reason: %s\n", html.EscapeString(*c.VerificationNotes))
	}
	if len(c.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", html.EscapeString(strings.Join(c.MatchedKeywords, ", ")))
	}
	fmt.Fprintf(&b, "\n%s", html.EscapeString(c.ProblemDescription))
	return b.String()
}
