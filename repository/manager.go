package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-messagely"
	"github.com/uptrace/bun"
)

// Manager exposes the repositories sharing a single bun DB
type Manager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() *Users
	Messages() *Messages
	Directory() messagely.Directory
	MessageStore() messagely.MessageStore
}

type mngr struct {
	db       bun.IDB
	users    *Users
	messages *Messages
}

func NewRepositoryManager(db bun.IDB, opts ...UsersOption) Manager {
	return &mngr{
		db:       db,
		users:    NewUsers(db, opts...),
		messages: NewMessages(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.messages == nil {
		return errors.New("repository messages should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() *Users {
	return m.users
}

func (m mngr) Messages() *Messages {
	return m.messages
}

func (m mngr) Directory() messagely.Directory {
	return m.users
}

func (m mngr) MessageStore() messagely.MessageStore {
	return m.messages
}
