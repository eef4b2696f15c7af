package bots_monitor

// Telegram command handlers: subscription management and monitor status.

import (
	"context"
	"fmt"
	"strings"

	logging "highbuy-monitor/internal/infra/log"
	"highbuy-monitor/internal/subscribers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// StatusInfo is what /status reports about the running monitor.
type StatusInfo struct {
	RPCURL    string
	WSURL     string
	MinNative float64
	Symbol    string
}

// RunCommandHandler polls Telegram updates and serves the bot commands until
// ctx is cancelled. Runs alongside the stream pipeline; the registry is the
// shared state between them.
func RunCommandHandler(ctx context.Context, bot *tgbotapi.BotAPI, registry *subscribers.Registry, status StatusInfo) {
	if bot == nil {
		logging.LogWarn("Bot is nil, command handler not started")
		return
	}

	logging.LogInfo("Starting command handler", zap.String("bot", bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			handleCallback(bot, registry, status, update.CallbackQuery)
		case update.Message != nil && update.Message.IsCommand():
			handleCommand(bot, registry, status, update.Message)
		}
	}

	logging.LogInfo("Command handler stopped")
}

func handleCommand(bot *tgbotapi.BotAPI, registry *subscribers.Registry, status StatusInfo, message *tgbotapi.Message) {
	command := message.Command()

	logging.LogDebug("Received command",
		zap.String("command", command),
		zap.Int64("chatID", message.Chat.ID),
		zap.String("username", message.From.UserName))

	switch command {
	case "start":
		handleStartCommand(bot, status, message)
	case "stop":
		handleStopCommand(bot, message)
	case "status":
		handleStatusCommand(bot, registry, status, message)
	}
}

// handleStartCommand shows the welcome message with a Subscribe button.
func handleStartCommand(bot *tgbotapi.BotAPI, status StatusInfo, message *tgbotapi.Message) {
	text := strings.Join([]string{
		"🔍 <b>Welcome to HighBuy Monitor!</b>",
		"",
		"I monitor ZigChain for large swap events",
		"and send you real-time alerts.",
		"",
		fmt.Sprintf("💰 Min threshold: <b>%g %s</b>", status.MinNative, status.Symbol),
		"",
		"Tap the button below to subscribe:",
	}, "\n")

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Subscribe 🔔", "subscribe"),
		),
	)
	if _, err := bot.Send(msg); err != nil {
		logging.LogError("Failed to send /start message", zap.Error(err))
	}
}

// handleStopCommand shows the unsubscribe confirmation.
func handleStopCommand(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	text := strings.Join([]string{
		"⚠️ <b>Unsubscribe from alerts?</b>",
		"",
		"You will stop receiving high-buy notifications.",
		"You can always re-subscribe with /start.",
	}, "\n")

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Unsubscribe 🔕", "unsubscribe"),
		),
	)
	if _, err := bot.Send(msg); err != nil {
		logging.LogError("Failed to send /stop message", zap.Error(err))
	}
}

// handleStatusCommand reports the monitor configuration and subscriber count.
func handleStatusCommand(bot *tgbotapi.BotAPI, registry *subscribers.Registry, status StatusInfo, message *tgbotapi.Message) {
	text := strings.Join([]string{
		"🔍 <b>HighBuy Monitor Status</b>",
		"",
		fmt.Sprintf("🌐 RPC: <code>%s</code>", status.RPCURL),
		fmt.Sprintf("🔌 WS: <code>%s</code>", status.WSURL),
		fmt.Sprintf("💰 Min %s: <b>%g</b>", status.Symbol, status.MinNative),
		"📡 Mode: <b>WebSocket (real-time)</b>",
		fmt.Sprintf("👥 Subscribers: <b>%d</b>", registry.Len()),
	}, "\n")

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := bot.Send(msg); err != nil {
		logging.LogError("Failed to send /status message", zap.Error(err))
	}
}

func handleCallback(bot *tgbotapi.BotAPI, registry *subscribers.Registry, status StatusInfo, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	switch query.Data {
	case "subscribe":
		added := registry.Add(chatID)

		answer := "ℹ️ Already subscribed"
		if added {
			answer = "✅ Subscribed!"
			logging.LogSuccess("Subscriber added", zap.Int64("chatID", chatID))
		}
		if _, err := bot.Request(tgbotapi.NewCallback(query.ID, answer)); err != nil {
			logging.LogError("Failed to answer callback", zap.Error(err))
		}

		text := strings.Join([]string{
			"🔍 <b>HighBuy Monitor</b>",
			"",
			"✅ <b>You are subscribed!</b>",
			"",
			fmt.Sprintf("You'll receive alerts for swaps ≥ <b>%g %s</b>.", status.MinNative, status.Symbol),
			"",
			"Use /stop to unsubscribe.",
			"Use /status to check monitor health.",
		}, "\n")
		edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := bot.Send(edit); err != nil {
			logging.LogError("Failed to edit subscribe message", zap.Error(err))
		}

	case "unsubscribe":
		removed := registry.Remove(chatID)

		answer := "ℹ️ You weren't subscribed"
		if removed {
			answer = "🛑 Unsubscribed"
			logging.LogInfo("Subscriber removed", zap.Int64("chatID", chatID))
		}
		if _, err := bot.Request(tgbotapi.NewCallback(query.ID, answer)); err != nil {
			logging.LogError("Failed to answer callback", zap.Error(err))
		}

		text := strings.Join([]string{
			"🛑 <b>Unsubscribed</b>",
			"",
			"You will no longer receive high-buy alerts.",
			"Use /start to subscribe again anytime.",
		}, "\n")
		edit := tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := bot.Send(edit); err != nil {
			logging.LogError("Failed to edit unsubscribe message", zap.Error(err))
		}
	}
}
