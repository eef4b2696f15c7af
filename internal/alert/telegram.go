package alert

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Link is one inline URL button under an alert message.
type Link struct {
	Label string
	URL   string
}

// Delivery sends one rendered alert to one recipient. Implementations
// classify failures: a permanent rejection means the recipient can never be
// reached again and should be unsubscribed rather than retried.
type Delivery interface {
	Send(chatID int64, text string, bannerPath string, links []Link) error
}

// DeliveryError wraps a delivery failure with its classification.
type DeliveryError struct {
	Permanent bool
	Err       error
}

func (e *DeliveryError) Error() string { return e.Err.Error() }
func (e *DeliveryError) Unwrap() error { return e.Err }

// IsPermanentRejection reports whether err marks the recipient as gone for
// good (bot blocked, account deactivated, kicked from the chat).
func IsPermanentRejection(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Permanent
}

// TelegramDelivery delivers alerts through the Bot API. Messages go out as a
// photo with caption when the banner file exists, as plain text otherwise.
type TelegramDelivery struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramDelivery(bot *tgbotapi.BotAPI) *TelegramDelivery {
	return &TelegramDelivery{bot: bot}
}

func (d *TelegramDelivery) Send(chatID int64, text string, bannerPath string, links []Link) error {
	keyboard := buildKeyboard(links)

	var err error
	if bannerPath != "" && fileExists(bannerPath) {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(bannerPath))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		if keyboard != nil {
			photo.ReplyMarkup = keyboard
		}
		_, err = d.bot.Send(photo)
	} else {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if keyboard != nil {
			msg.ReplyMarkup = keyboard
		}
		_, err = d.bot.Send(msg)
	}

	if err != nil {
		return classify(err)
	}
	return nil
}

func buildKeyboard(links []Link) *tgbotapi.InlineKeyboardMarkup {
	if len(links) == 0 {
		return nil
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(links))
	for _, link := range links {
		row = append(row, tgbotapi.NewInlineKeyboardButtonURL(link.Label, link.URL))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)
	return &keyboard
}

// classify maps a Bot API error to a DeliveryError. A 403 is authoritative;
// the message-text check is a fallback for transports that report the same
// conditions without a status code. Known wordings: "bot was blocked",
// "user is deactivated", "forbidden".
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return &DeliveryError{Permanent: true, Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"forbidden", "blocked", "deactivated"} {
		if strings.Contains(msg, marker) {
			return &DeliveryError{Permanent: true, Err: err}
		}
	}

	return &DeliveryError{Permanent: false, Err: fmt.Errorf("telegram send failed: %w", err)}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
