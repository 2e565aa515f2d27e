package messagely

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record owned by the Directory
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	Username      string     `bun:"username,pk" json:"username"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name"`
	LastName      string     `bun:"last_name,notnull" json:"last_name"`
	Phone         string     `bun:"phone,notnull" json:"phone"`
	JoinAt        time.Time  `bun:"join_at,notnull" json:"join_at"`
	LastLoginAt   *time.Time `bun:"last_login_at" json:"last_login_at"`
}

// UserSummary is the public view of a user embedded in listings
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Summary returns the public fields of u, nil safe.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// Message is a short note from one user to another
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:msg"`
	ID            uuid.UUID  `bun:"id,pk" json:"id"`
	FromUsername  string     `bun:"from_username,notnull" json:"from_username"`
	FromUser      *User      `bun:"rel:belongs-to,join:from_username=username" json:"-"`
	ToUsername    string     `bun:"to_username,notnull" json:"to_username"`
	ToUser        *User      `bun:"rel:belongs-to,join:to_username=username" json:"-"`
	Body          string     `bun:"body,notnull" json:"body"`
	SentAt        time.Time  `bun:"sent_at,notnull" json:"sent_at"`
	ReadAt        *time.Time `bun:"read_at" json:"read_at"`
}

// IsRead reports whether the recipient has marked m as read.
func (m *Message) IsRead() bool {
	return m != nil && m.ReadAt != nil
}

// MessageDetail full message view with both parties
type MessageDetail struct {
	ID       uuid.UUID    `json:"id"`
	Body     string       `json:"body"`
	SentAt   time.Time    `json:"sent_at"`
	ReadAt   *time.Time   `json:"read_at"`
	FromUser *UserSummary `json:"from_user"`
	ToUser   *UserSummary `json:"to_user"`
}

// Detail projects m with both related users.
func (m *Message) Detail() MessageDetail {
	return MessageDetail{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
		FromUser: m.FromUser.Summary(),
		ToUser:   m.ToUser.Summary(),
	}
}

// InboxEntry is a message as listed for its recipient
type InboxEntry struct {
	ID       uuid.UUID    `json:"id"`
	Body     string       `json:"body"`
	SentAt   time.Time    `json:"sent_at"`
	ReadAt   *time.Time   `json:"read_at"`
	FromUser *UserSummary `json:"from_user"`
}

// OutboxEntry is a message as listed for its sender
type OutboxEntry struct {
	ID     uuid.UUID    `json:"id"`
	Body   string       `json:"body"`
	SentAt time.Time    `json:"sent_at"`
	ReadAt *time.Time   `json:"read_at"`
	ToUser *UserSummary `json:"to_user"`
}

// UserDetail is the private profile view, only shown to its owner
type UserDetail struct {
	UserSummary
	JoinAt      time.Time  `json:"join_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// Detail returns the owner view of u.
func (u *User) Detail() UserDetail {
	return UserDetail{
		UserSummary: *u.Summary(),
		JoinAt:      u.JoinAt,
		LastLoginAt: u.LastLoginAt,
	}
}
