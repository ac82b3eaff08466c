//go:build !integration

package model

import (
	"errors"
	"path"
	"testing"
	"time"

	"telegram-chat-stats/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should strip the leading @ from the handle", func(t *testing.T) {
		user, err := NewUser(42, "@john", "John", "Doe")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.Username != "john" {
			t.Errorf("expected username 'john', got %q", user.Username)
		}
	})

	t.Run("should fail with zero id", func(t *testing.T) {
		user, err := NewUser(0, "john", "", "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if user != nil {
			t.Error("expected user to be nil on error")
		}
	})
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user User
		want string
	}{
		{"handle wins", User{ID: 1, Username: "john", FirstName: "John"}, "@john"},
		{"full name", User{ID: 1, FirstName: "John", LastName: "Doe"}, "John Doe"},
		{"first name only", User{ID: 1, FirstName: "John"}, "John"},
		{"unknown", User{ID: 1}, "Unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.DisplayName(); got != tc.want {
				t.Errorf("wanted %q, got %q", tc.want, got)
			}
		})
	}
}

// --- Message Model Tests ---

func TestNewMessage(t *testing.T) {
	if _, err := NewMessage(1, 2, "hello"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := NewMessage(1, 2, "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for blank text, got %v", err)
	}
	if _, err := NewMessage(1, 0, "hello"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero chat, got %v", err)
	}
}

// --- TimeRange Tests ---

func TestParseRange(t *testing.T) {
	for _, in := range []string{"all", "DAY", " week ", "Month"} {
		if _, err := ParseRange(in); err != nil {
			t.Errorf("ParseRange(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseRange("year"); !errors.Is(err, domain.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestTimeRangeStart(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, time.March, 31, 15, 30, 0, 0, loc)

	included := func(r TimeRange, at time.Time) bool {
		from := r.Start(now)
		return from == nil || !at.Before(*from)
	}

	t.Run("all has no lower bound", func(t *testing.T) {
		if RangeAll.Start(now) != nil {
			t.Fatal("expected nil start for all")
		}
	})

	t.Run("day starts at local midnight and includes it", func(t *testing.T) {
		midnight := time.Date(2024, time.March, 31, 0, 0, 0, 0, loc)
		if got := RangeDay.Start(now); !got.Equal(midnight) {
			t.Fatalf("expected %v, got %v", midnight, got)
		}
		if !included(RangeDay, midnight) {
			t.Error("a message at exactly midnight must be in the day window")
		}
		if included(RangeDay, midnight.Add(-time.Second)) {
			t.Error("a message before midnight must not be in the day window")
		}
	})

	t.Run("eight days ago is outside week but inside month and all", func(t *testing.T) {
		at := now.AddDate(0, 0, -8)
		if included(RangeWeek, at) {
			t.Error("week must exclude now-8d")
		}
		if !included(RangeMonth, at) {
			t.Error("month must include now-8d")
		}
		if !included(RangeAll, at) {
			t.Error("all must include now-8d")
		}
	})

	t.Run("month is one calendar month back", func(t *testing.T) {
		want := now.AddDate(0, -1, 0)
		if got := RangeMonth.Start(now); !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

// --- Cache Key Tests ---

func TestCacheKeysMatchChatPatterns(t *testing.T) {
	patterns := ChatCachePatterns(-100123)
	keys := []string{
		LeaderboardCacheKey(-100123, RangeWeek),
		UserReportCacheKey(-100123, 7, RangeAll),
	}
	for _, k := range keys {
		matched := false
		for _, p := range patterns {
			if ok, _ := path.Match(p, k); ok {
				matched = true
			}
		}
		if !matched {
			t.Errorf("key %q is not covered by chat patterns %v", k, patterns)
		}
	}

	other := LeaderboardCacheKey(-1001234, RangeWeek)
	for _, p := range patterns {
		if ok, _ := path.Match(p, other); ok {
			t.Errorf("pattern %q must not match another chat's key %q", p, other)
		}
	}
}

func TestReportKind(t *testing.T) {
	if got := ReportKind(LeaderboardCacheKey(1, RangeDay)); got != ReportLeaderboard {
		t.Errorf("expected %q, got %q", ReportLeaderboard, got)
	}
	if got := ReportKind(UserReportCacheKey(1, 2, RangeDay)); got != ReportUser {
		t.Errorf("expected %q, got %q", ReportUser, got)
	}
	if got := ReportKind("rate_limit:1:stats"); got != "" {
		t.Errorf("expected empty kind for foreign key, got %q", got)
	}
}
