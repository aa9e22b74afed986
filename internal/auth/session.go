package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// session values are stored in redis as "<userID>|<createdAtUnix>"
type session struct {
	UserID    string
	CreatedAt time.Time
}

func (s session) encode() string {
	return fmt.Sprintf("%s|%d", s.UserID, s.CreatedAt.Unix())
}

func decodeSession(raw string) (session, error) {
	parts := strings.SplitN(raw, "|", 2)
	if len(parts) != 2 {
		return session{}, fmt.Errorf("malformed session value: %s", raw)
	}

	createdAtUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return session{}, fmt.Errorf("malformed session timestamp: %w", err)
	}

	return session{
		UserID:    parts[0],
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}
