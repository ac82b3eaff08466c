package application

import (
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/adapter"
)

// rangeRows lays out the follow-up ranges: the bounded windows on one row, "all" below.
func (b *BotFacade) rangeRows(ranges []model.TimeRange, data func(model.TimeRange) string) [][]adapter.InlineButton {
	var windowed, rest []adapter.InlineButton
	for _, r := range ranges {
		btn := adapter.InlineButton{Text: b.tr.T("btn_range_" + r.String()), Data: data(r)}
		if r == model.RangeAll {
			rest = append(rest, btn)
		} else {
			windowed = append(windowed, btn)
		}
	}
	var rows [][]adapter.InlineButton
	if len(windowed) > 0 {
		rows = append(rows, windowed)
	}
	if len(rest) > 0 {
		rows = append(rows, rest)
	}
	return rows
}

func (b *BotFacade) leaderboardKeyboard(report *model.Report) [][]adapter.InlineButton {
	rows := b.rangeRows(report.Ranges, RangeCallback)
	return append(rows, []adapter.InlineButton{
		{Text: b.tr.T("btn_user_stats"), Data: UserListCallback(report.Range)},
	})
}

func (b *BotFacade) userKeyboard(userID int64, report *model.Report) [][]adapter.InlineButton {
	rows := b.rangeRows(report.Ranges, func(r model.TimeRange) string { return UserCallback(userID, r) })
	return append(rows, []adapter.InlineButton{
		{Text: b.tr.T("btn_back_to_users"), Data: UserListCallback(report.Range)},
	})
}

func (b *BotFacade) userListKeyboard(top []model.UserCount, r model.TimeRange) [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(top)+1)
	for _, row := range top {
		rows = append(rows, []adapter.InlineButton{
			{Text: row.User.DisplayName(), Data: UserCallback(row.User.ID, r)},
		})
	}
	return append(rows, []adapter.InlineButton{
		{Text: b.tr.T("btn_back"), Data: RangeCallback(r)},
	})
}
