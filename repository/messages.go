package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-messagely"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ messagely.MessageStore = (*Messages)(nil)

// Messages is the bun backed message store
type Messages struct {
	repository.Repository[*messagely.Message]
	db  bun.IDB
	now func() time.Time
}

type MessagesOption func(*Messages)

// WithMessagesClock overrides the clock used for sent and read timestamps
func WithMessagesClock(now func() time.Time) MessagesOption {
	return func(m *Messages) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMessageHandlers() repository.ModelHandlers[*messagely.Message] {
	return repository.ModelHandlers[*messagely.Message]{
		NewRecord: func() *messagely.Message {
			return &messagely.Message{}
		},
		GetID: func(record *messagely.Message) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *messagely.Message, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	}
}

func NewMessages(db bun.IDB, opts ...MessagesOption) *Messages {
	m := &Messages{
		Repository: repository.NewRepository[*messagely.Message](db, NewMessageHandlers()),
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Messages) Create(ctx context.Context, message *messagely.Message) (*messagely.Message, error) {
	return m.CreateTx(ctx, m.db, message)
}

// CreateTx stores message. The id is generated when missing and the send
// time defaults to now.
func (m *Messages) CreateTx(ctx context.Context, tx bun.IDB, message *messagely.Message) (*messagely.Message, error) {
	if message.SentAt.IsZero() {
		message.SentAt = m.now().UTC()
	}

	if _, err := m.Repository.CreateTx(ctx, tx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (m *Messages) Get(ctx context.Context, id uuid.UUID) (*messagely.Message, error) {
	return m.GetTx(ctx, m.db, id)
}

// GetTx loads the message with both related users.
func (m *Messages) GetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*messagely.Message, error) {
	record, err := m.Repository.GetByIDTx(ctx, tx, id.String(),
		repository.Relation("FromUser"),
		repository.Relation("ToUser"),
	)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, messagely.ErrMessageNotFound
		}
		return nil, err
	}
	return record, nil
}

// MarkRead stamps read_at the first time a message is read. Later calls
// keep the first timestamp.
func (m *Messages) MarkRead(ctx context.Context, id uuid.UUID) (*messagely.Message, error) {
	var record *messagely.Message
	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = m.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if record.ReadAt != nil {
			return nil
		}

		readAt := m.now().UTC()
		record.ReadAt = &readAt
		_, err = m.Repository.UpdateTx(ctx, tx, record, repository.UpdateColumns("read_at"))
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListTo returns the messages received by username, oldest first.
func (m *Messages) ListTo(ctx context.Context, username string) ([]*messagely.Message, error) {
	return m.list(ctx,
		repository.Relation("FromUser"),
		repository.SelectBy("to_username", "=", username),
	)
}

// ListFrom returns the messages sent by username, oldest first.
func (m *Messages) ListFrom(ctx context.Context, username string) ([]*messagely.Message, error) {
	return m.list(ctx,
		repository.Relation("ToUser"),
		repository.SelectBy("from_username", "=", username),
	)
}

func (m *Messages) list(ctx context.Context, criteria ...repository.SelectCriteria) ([]*messagely.Message, error) {
	criteria = append(criteria, repository.OrderBy("msg.sent_at ASC"), unpaginated())
	records, _, err := m.Repository.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	return records, nil
}
