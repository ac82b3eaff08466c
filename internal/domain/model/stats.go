package model

// UserCount is a single leaderboard row.
type UserCount struct {
	User  User
	Count int
}

// ChatTotals summarises a chat within a time window.
type ChatTotals struct {
	Messages int
	Users    int
}

// RankInfo is the 1-based position of a user within the full, uncapped ordering
// of a chat. Rank is zero when the user has no messages in the window.
type RankInfo struct {
	Rank       int
	TotalUsers int
}

func (r RankInfo) Ranked() bool { return r.Rank > 0 }

// Report is a rendered statistics payload plus the ranges a client may switch to.
type Report struct {
	Text   string
	Range  TimeRange
	Ranges []TimeRange
}
