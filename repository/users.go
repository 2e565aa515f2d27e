package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-messagely"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used when none is configured
const DefaultPasswordCost = 12

var _ messagely.Directory = (*Users)(nil)

// Users is the bun backed user directory. It owns password hashing.
type Users struct {
	repository.Repository[*messagely.User]
	db   bun.IDB
	cost int
	now  func() time.Time
}

type UsersOption func(*Users)

// WithPasswordCost sets the bcrypt work factor
func WithPasswordCost(cost int) UsersOption {
	return func(u *Users) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			u.cost = cost
		}
	}
}

// WithUsersClock overrides the clock used for join and login timestamps
func WithUsersClock(now func() time.Time) UsersOption {
	return func(u *Users) {
		if now != nil {
			u.now = now
		}
	}
}

// NewUserHandlers describes users to the generic repository. Users are keyed
// by username so there is no generated id.
func NewUserHandlers() repository.ModelHandlers[*messagely.User] {
	return repository.ModelHandlers[*messagely.User]{
		NewRecord: func() *messagely.User {
			return &messagely.User{}
		},
		GetID: func(*messagely.User) uuid.UUID {
			return uuid.Nil
		},
		SetID: func(*messagely.User, uuid.UUID) {},
		GetIdentifier: func() string {
			return "username"
		},
	}
}

func NewUsers(db bun.IDB, opts ...UsersOption) *Users {
	u := &Users{
		Repository: repository.NewRepository[*messagely.User](db, NewUserHandlers()),
		db:         db,
		cost:       DefaultPasswordCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	return u
}

// HashPassword hashes password with the configured work factor
func (u *Users) HashPassword(password string) (string, error) {
	return messagely.HashPassword(password, u.cost)
}

func (u *Users) Create(ctx context.Context, profile messagely.Profile) (*messagely.User, error) {
	return u.CreateTx(ctx, u.db, profile)
}

// CreateTx hashes the password and inserts the user. A taken username is
// reported as messagely.ErrDuplicateUsername.
func (u *Users) CreateTx(ctx context.Context, tx bun.IDB, profile messagely.Profile) (*messagely.User, error) {
	hash, err := u.HashPassword(profile.Password)
	if err != nil {
		return nil, err
	}

	record := &messagely.User{
		Username:     profile.Username,
		PasswordHash: hash,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Phone:        profile.Phone,
		JoinAt:       u.now().UTC(),
	}

	err = tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := u.Repository.GetTx(ctx, tx, byUsername(record.Username))
		if err == nil {
			return messagely.ErrDuplicateUsername
		}
		if !repository.IsRecordNotFound(err) {
			return err
		}

		if _, err := u.Repository.CreateTx(ctx, tx, record); err != nil {
			// lost a race with a concurrent insert
			if isUniqueViolation(err) {
				return messagely.ErrDuplicateUsername
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (u *Users) GetByUsername(ctx context.Context, username string) (*messagely.User, error) {
	return u.GetByUsernameTx(ctx, u.db, username)
}

func (u *Users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*messagely.User, error) {
	record, err := u.Repository.GetTx(ctx, tx, byUsername(username))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, messagely.ErrUserNotFound
		}
		return nil, err
	}
	return record, nil
}

// List returns all users ordered by username
func (u *Users) List(ctx context.Context) ([]*messagely.User, error) {
	records, _, err := u.Repository.List(ctx,
		repository.OrderBy("usr.username ASC"),
		unpaginated(),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (u *Users) TouchLastLogin(ctx context.Context, username string) error {
	return u.TouchLastLoginTx(ctx, u.db, username)
}

func (u *Users) TouchLastLoginTx(ctx context.Context, tx bun.IDB, username string) error {
	loginAt := u.now().UTC()
	record := &messagely.User{Username: username, LastLoginAt: &loginAt}

	_, err := u.Repository.UpdateTx(ctx, tx, record, repository.UpdateColumns("last_login_at"))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return messagely.ErrUserNotFound
		}
		return err
	}

	return nil
}

// VerifyPassword reports whether password matches the stored hash. Unknown
// users return messagely.ErrUserNotFound.
func (u *Users) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	record, err := u.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	return messagely.ComparePasswordAndHash(password, record.PasswordHash)
}

func byUsername(username string) repository.SelectCriteria {
	return repository.SelectBy("username", "=", username)
}

// unpaginated drops the default page size of List
func unpaginated() repository.SelectCriteria {
	return repository.Paginate(0, 0)
}
