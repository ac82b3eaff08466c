package usecase

import "telegram-chat-stats/internal/domain/model"

// Translator renders localized text; satisfied by *i18n.Translator.
type Translator interface {
	T(key string, args ...interface{}) string
}

func rangeLabel(tr Translator, r model.TimeRange) string {
	return tr.T("range_" + r.String())
}

// FormatRank renders "r of N", or the "not ranked" text for users without messages.
func FormatRank(tr Translator, rank model.RankInfo) string {
	if !rank.Ranked() {
		return tr.T("rank_none")
	}
	return tr.T("rank_position", rank.Rank, rank.TotalUsers)
}
