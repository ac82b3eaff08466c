package model

import (
	"fmt"
	"strings"
)

const cacheNamespace = "stats"

// Report kinds used as the first key segment after the namespace.
const (
	ReportLeaderboard = "top"
	ReportUser        = "user"
)

func LeaderboardCacheKey(chatID int64, r TimeRange) string {
	return fmt.Sprintf("%s:%s:%d:%s", cacheNamespace, ReportLeaderboard, chatID, r)
}

func UserReportCacheKey(chatID, userID int64, r TimeRange) string {
	return fmt.Sprintf("%s:%s:%d:%d:%s", cacheNamespace, ReportUser, chatID, userID, r)
}

// ChatCachePatterns lists one glob per report kind covering every entry of a chat.
func ChatCachePatterns(chatID int64) []string {
	return []string{
		fmt.Sprintf("%s:%s:%d:*", cacheNamespace, ReportLeaderboard, chatID),
		fmt.Sprintf("%s:%s:%d:*", cacheNamespace, ReportUser, chatID),
	}
}

// AllCachePattern matches every statistics entry of every chat.
func AllCachePattern() string { return cacheNamespace + ":*" }

// ReportKind extracts the report kind segment of a cache key, or "" for foreign keys.
func ReportKind(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 || parts[0] != cacheNamespace {
		return ""
	}
	return parts[1]
}
