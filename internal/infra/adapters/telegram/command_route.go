package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-chat-stats/internal/application"
	"telegram-chat-stats/internal/infra/logging"
	"telegram-chat-stats/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) (*application.Reply, error)

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"stats":   r.handleStatsCommand,
		"myrank":  r.handleMyRankCommand,
		"analyze": r.handleAnalyzeCommand,
	}
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	command := strings.ToLower(msg.Command())
	handler, ok := r.commandRoutes()[command]
	if !ok {
		return nil
	}
	metrics.IncTelegramCommand("/" + command)

	if !r.allow(ctx, msg.From.ID, command, commandLimit) {
		return r.SendMessage(ctx, msg.Chat.ID, r.facade.RateLimitedText())
	}

	reply, err := handler(ctx, msg)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Str("command", command).Msg("command failed")
		return r.SendMessage(ctx, msg.Chat.ID, r.facade.ErrorText())
	}
	return r.sendReply(ctx, msg.Chat.ID, reply)
}

func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, msg *tgbotapi.Message) (*application.Reply, error) {
	return r.facade.HandleStats(ctx, msg.Chat.ID, msg.CommandArguments())
}

func (r *RealTelegramBotAdapter) handleMyRankCommand(ctx context.Context, msg *tgbotapi.Message) (*application.Reply, error) {
	return r.facade.HandleMyRank(ctx, msg.Chat.ID, msg.From.ID, msg.Chat.IsPrivate())
}

func (r *RealTelegramBotAdapter) handleAnalyzeCommand(ctx context.Context, msg *tgbotapi.Message) (*application.Reply, error) {
	caller := toUser(msg.From)
	if caller == nil {
		return nil, fmt.Errorf("analyze: invalid caller %d", msg.From.ID)
	}
	req := application.AnalyzeRequest{
		ChatID:  msg.Chat.ID,
		Private: msg.Chat.IsPrivate(),
		Caller:  *caller,
		Args:    msg.CommandArguments(),
	}
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		req.ReplyTo = toUser(msg.ReplyToMessage.From)
	}
	return r.facade.HandleAnalyze(ctx, req)
}
