package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-chat-stats/internal/infra/logging"
	"telegram-chat-stats/internal/infra/metrics"
)

// handleQuery serves inline button presses. The callback is always answered so the
// client stops its spinner; failures show a toast and a generic reply.
func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	toast := ""
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, toast)) }()

	chatID := query.From.ID
	chatType := "private"
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
		chatType = query.Message.Chat.Type
	}
	ctx = logging.WithChatID(logging.WithTgID(ctx, query.From.ID), chatID)
	metrics.IncTelegramUpdate("callback", chatType)

	data := strings.TrimSpace(query.Data)
	if !r.allow(ctx, query.From.ID, "cb", callbackLimit) {
		toast = r.facade.RateLimitedText()
		return nil
	}

	reply, err := r.facade.HandleCallback(ctx, chatID, data)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Str("data", data).Msg("callback failed")
		toast = r.facade.CallbackErrorText()
		return r.SendMessage(ctx, chatID, r.facade.ErrorText())
	}
	return r.editOrSend(ctx, chatID, query.Message, reply)
}
