package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/application"
	"telegram-chat-stats/internal/config"
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/adapter"
	"telegram-chat-stats/internal/infra/logging"
	"telegram-chat-stats/internal/infra/metrics"
	red "telegram-chat-stats/internal/infra/redis"
	"telegram-chat-stats/internal/infra/worker"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// Facade is the part of application.BotFacade the adapter drives.
type Facade interface {
	HandleText(ctx context.Context, author *model.User, chatID int64, private bool, text string)
	HandleStats(ctx context.Context, chatID int64, args string) (*application.Reply, error)
	HandleCallback(ctx context.Context, chatID int64, data string) (*application.Reply, error)
	HandleMyRank(ctx context.Context, chatID, userID int64, private bool) (*application.Reply, error)
	HandleAnalyze(ctx context.Context, req application.AnalyzeRequest) (*application.Reply, error)
	ErrorText() string
	CallbackErrorText() string
	RateLimitedText() string
}

// RateLimiter is satisfied by *redis.RateLimiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// botAPI is the subset of *tgbotapi.BotAPI used here.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

const (
	commandLimit  = 20
	callbackLimit = 30
	limitWindow   = time.Minute
)

// RealTelegramBotAdapter polls updates and hands each one to the worker pool.
type RealTelegramBotAdapter struct {
	bot         botAPI
	facade      Facade
	rateLimiter RateLimiter
	pool        *worker.Pool
	log         *zerolog.Logger
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade Facade, rateLimiter RateLimiter, pool *worker.Pool, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("username", bot.Self.UserName).Msg("authorized on telegram")
	return newAdapter(bot, facade, rateLimiter, pool, logger)
}

func newAdapter(bot botAPI, facade Facade, rateLimiter RateLimiter, pool *worker.Pool, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}
	return &RealTelegramBotAdapter{
		bot:         bot,
		facade:      facade,
		rateLimiter: rateLimiter,
		pool:        pool,
		log:         logger,
	}, nil
}

// StartPolling blocks until ctx is cancelled or the update channel closes.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := r.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			if err := r.pool.Submit(ctx, func(ctx context.Context) error { return r.handleUpdate(ctx, up) }); err != nil {
				r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("update dropped")
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	r.bot.StopReceivingUpdates()
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if markup, ok := toMarkup(rows); ok {
		msg.ReplyMarkup = markup
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) sendReply(ctx context.Context, chatID int64, reply *application.Reply) error {
	if reply == nil {
		return nil
	}
	return r.SendButtons(ctx, chatID, reply.Text, reply.Buttons)
}

// editOrSend replaces the text of the message carrying the pressed button, or sends
// a new message when there is none.
func (r *RealTelegramBotAdapter) editOrSend(ctx context.Context, chatID int64, origin *tgbotapi.Message, reply *application.Reply) error {
	if origin == nil {
		return r.sendReply(ctx, chatID, reply)
	}
	var edit tgbotapi.EditMessageTextConfig
	if markup, ok := toMarkup(reply.Buttons); ok {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, origin.MessageID, reply.Text, markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, origin.MessageID, reply.Text)
	}
	_, err := r.bot.Send(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func toMarkup(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		out := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				out = append(out, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, out)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithNewTraceID(ctx)

	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}
	ctx = logging.WithChatID(logging.WithTgID(ctx, msg.From.ID), msg.Chat.ID)
	metrics.IncTelegramUpdate("message", msg.Chat.Type)

	// Commands posted in groups count as messages too, so ingest runs first.
	if msg.Text != "" {
		r.facade.HandleText(ctx, toUser(msg.From), msg.Chat.ID, msg.Chat.IsPrivate(), msg.Text)
	}
	if !msg.IsCommand() {
		return nil
	}
	return r.handleCommand(ctx, msg)
}

// allow reports whether the caller is within its rate limit. Limiter errors fail open.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, userID int64, key string, limit int) bool {
	if r.rateLimiter == nil {
		return true
	}
	ok, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, key), limit, limitWindow)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	return ok
}

func toUser(u *tgbotapi.User) *model.User {
	if u == nil {
		return nil
	}
	user, err := model.NewUser(u.ID, u.UserName, u.FirstName, u.LastName)
	if err != nil {
		return nil
	}
	return user
}
