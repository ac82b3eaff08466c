package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/adapter"
	"telegram-chat-stats/internal/usecase"
)

// Reply is a transport-neutral answer: text plus an optional inline keyboard.
type Reply struct {
	Text    string
	Buttons [][]adapter.InlineButton
}

// BotFacade composes usecases into high-level bot commands.
// Errors returned here are unexpected failures; expected outcomes (unknown user,
// nothing to analyze) come back as a normal Reply.
type BotFacade struct {
	Users   usecase.UserUseCase
	Stats   usecase.StatsUseCase
	Analyze usecase.AnalyzeUseCase
	Ingest  usecase.IngestUseCase

	tr usecase.Translator
}

func NewBotFacade(
	users usecase.UserUseCase,
	stats usecase.StatsUseCase,
	analyze usecase.AnalyzeUseCase,
	ingest usecase.IngestUseCase,
	tr usecase.Translator,
) *BotFacade {
	return &BotFacade{Users: users, Stats: stats, Analyze: analyze, Ingest: ingest, tr: tr}
}

// HandleText records a message posted in a group chat. Private chats are not tracked.
func (b *BotFacade) HandleText(ctx context.Context, author *model.User, chatID int64, private bool, text string) {
	if private {
		return
	}
	b.Ingest.Record(ctx, author, chatID, text)
}

// HandleStats serves /stats, or /stats @handle for a single user.
func (b *BotFacade) HandleStats(ctx context.Context, chatID int64, args string) (*Reply, error) {
	handle := firstArg(args)
	if !strings.HasPrefix(handle, "@") {
		return b.HandleRange(ctx, chatID, model.RangeAll)
	}

	u, err := b.Users.FindByHandle(ctx, handle)
	if errors.Is(err, domain.ErrNotFound) {
		return &Reply{Text: b.tr.T("user_not_found", handle)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", handle, err)
	}
	return b.HandleUserStats(ctx, chatID, u.ID, model.RangeAll)
}

// HandleRange renders the chat leaderboard for r.
func (b *BotFacade) HandleRange(ctx context.Context, chatID int64, r model.TimeRange) (*Reply, error) {
	report, err := b.Stats.LeaderboardReport(ctx, chatID, r)
	if err != nil {
		return nil, fmt.Errorf("leaderboard report: %w", err)
	}
	return &Reply{Text: report.Text, Buttons: b.leaderboardKeyboard(report)}, nil
}

// HandleUserList offers one button per leaderboard user.
func (b *BotFacade) HandleUserList(ctx context.Context, chatID int64, r model.TimeRange) (*Reply, error) {
	top, err := b.Stats.TopUsers(ctx, chatID, r)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	if len(top) == 0 {
		empty := &model.Report{Range: r, Ranges: model.FollowUpRanges}
		return &Reply{
			Text:    b.tr.T("stats_no_data", b.tr.T("range_"+r.String())),
			Buttons: b.leaderboardKeyboard(empty),
		}, nil
	}
	return &Reply{Text: b.tr.T("stats_pick_user"), Buttons: b.userListKeyboard(top, r)}, nil
}

// HandleUserStats renders one user's report for r.
func (b *BotFacade) HandleUserStats(ctx context.Context, chatID, userID int64, r model.TimeRange) (*Reply, error) {
	report, err := b.Stats.UserReport(ctx, chatID, userID, r)
	if err != nil {
		return nil, fmt.Errorf("user report: %w", err)
	}
	return &Reply{Text: report.Text, Buttons: b.userKeyboard(userID, report)}, nil
}

// HandleCallback dispatches decoded inline button data.
func (b *BotFacade) HandleCallback(ctx context.Context, chatID int64, data string) (*Reply, error) {
	cb, err := ParseCallback(data)
	if err != nil {
		return nil, fmt.Errorf("callback %q: %w", data, err)
	}
	switch cb.Kind {
	case CallbackRange:
		return b.HandleRange(ctx, chatID, cb.Range)
	case CallbackUserList:
		return b.HandleUserList(ctx, chatID, cb.Range)
	default:
		return b.HandleUserStats(ctx, chatID, cb.UserID, cb.Range)
	}
}

// HandleMyRank serves /myrank. Group chats only.
func (b *BotFacade) HandleMyRank(ctx context.Context, chatID, userID int64, private bool) (*Reply, error) {
	if private {
		return &Reply{Text: b.tr.T("groups_only")}, nil
	}
	rank, count, err := b.Stats.MyRank(ctx, chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("my rank: %w", err)
	}
	return &Reply{Text: b.tr.T("myrank", usecase.FormatRank(b.tr, rank), count)}, nil
}

// AnalyzeRequest describes an /analyze invocation.
type AnalyzeRequest struct {
	ChatID  int64
	Private bool
	Caller  model.User
	// ReplyTo is the author of the message the command replied to, if any.
	ReplyTo *model.User
	Args    string
}

// HandleAnalyze resolves the target (handle, then reply, then caller) and summarises their messages.
func (b *BotFacade) HandleAnalyze(ctx context.Context, req AnalyzeRequest) (*Reply, error) {
	target := req.Caller
	if req.ReplyTo != nil {
		target = *req.ReplyTo
	}

	handle := firstArg(req.Args)
	if strings.HasPrefix(handle, "@") {
		u, err := b.Users.FindByHandle(ctx, handle)
		if errors.Is(err, domain.ErrNotFound) {
			return &Reply{Text: b.tr.T("user_not_found", handle)}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("find user %s: %w", handle, err)
		}
		target = *u
	} else if req.ReplyTo == nil && req.Private {
		return &Reply{Text: b.tr.T("analyze_private_hint")}, nil
	}

	// A private chat has no group history of its own, so the search spans all chats.
	var scope *int64
	if !req.Private {
		chatID := req.ChatID
		scope = &chatID
	}

	label := target.DisplayName()
	summary, err := b.Analyze.Analyze(ctx, target.ID, scope)
	if errors.Is(err, domain.ErrNoMessages) {
		return &Reply{Text: b.tr.T("analyze_no_messages", label)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("analyze %d: %w", target.ID, err)
	}
	return &Reply{Text: b.tr.T("analyze_result", label, summary)}, nil
}

// ErrorText is the generic reply for failed handlers.
func (b *BotFacade) ErrorText() string { return b.tr.T("error_generic") }

// CallbackErrorText is shown in the callback toast for failed button presses.
func (b *BotFacade) CallbackErrorText() string { return b.tr.T("error_callback") }

// RateLimitedText is the reply for throttled commands.
func (b *BotFacade) RateLimitedText() string { return b.tr.T("rate_limited") }

func firstArg(args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
