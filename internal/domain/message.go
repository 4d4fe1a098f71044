package domain

import "time"

// Message is a single transcript entry. Messages are immutable once created.
type Message struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	IsFromUser bool   `json:"isFromUser"`
	CreatedAt  int64  `json:"createdAt"` // epoch millis
}

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Sender names the side of the two-party conversation that wrote m.
func (m Message) Sender() string {
	if m.IsFromUser {
		return SenderUser
	}
	return SenderBot
}

// Time converts CreatedAt to a time.Time in UTC.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.CreatedAt).UTC()
}

// EpochMillis converts t to the CreatedAt representation.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
