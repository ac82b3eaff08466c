package application

import (
	"fmt"
	"strconv"
	"strings"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
)

// Callback kinds carried in inline button data.
const (
	CallbackRange    = "range"
	CallbackUserList = "userlist"
	CallbackUser     = "user"
)

const callbackPrefix = "stats"

// Callback is the decoded form of "stats:range:<r>", "stats:userlist:<r>" or "stats:user:<id>:<r>".
type Callback struct {
	Kind   string
	UserID int64
	Range  model.TimeRange
}

func RangeCallback(r model.TimeRange) string {
	return fmt.Sprintf("%s:%s:%s", callbackPrefix, CallbackRange, r)
}

func UserListCallback(r model.TimeRange) string {
	return fmt.Sprintf("%s:%s:%s", callbackPrefix, CallbackUserList, r)
}

func UserCallback(userID int64, r model.TimeRange) string {
	return fmt.Sprintf("%s:%s:%d:%s", callbackPrefix, CallbackUser, userID, r)
}

// ParseCallback decodes button data. Unknown shapes yield domain.ErrInvalidArgument.
func ParseCallback(data string) (Callback, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(data)), ":")
	if len(parts) < 3 || parts[0] != callbackPrefix {
		return Callback{}, domain.ErrInvalidArgument
	}

	switch parts[1] {
	case CallbackRange, CallbackUserList:
		if len(parts) != 3 {
			return Callback{}, domain.ErrInvalidArgument
		}
		r, err := model.ParseRange(parts[2])
		if err != nil {
			return Callback{}, err
		}
		return Callback{Kind: parts[1], Range: r}, nil
	case CallbackUser:
		if len(parts) != 4 {
			return Callback{}, domain.ErrInvalidArgument
		}
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || id <= 0 {
			return Callback{}, domain.ErrInvalidArgument
		}
		r, err := model.ParseRange(parts[3])
		if err != nil {
			return Callback{}, err
		}
		return Callback{Kind: CallbackUser, UserID: id, Range: r}, nil
	}
	return Callback{}, domain.ErrInvalidArgument
}
