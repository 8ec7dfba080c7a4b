package tasks

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the user repository
type Users interface {
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx inserts a new user. The unique email index is the only duplicate
// check; a violation surfaces as ErrDuplicateEmail regardless of which
// concurrent writer lost the race.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	user.Email = NormalizeEmail(user.Email)

	if _, err := tx.NewInsert().Model(user).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to register user")
	}

	return user, nil
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	return record, nil
}

// List returns every user, oldest first. Admin surface only.
func (a *users) List(ctx context.Context) ([]*User, error) {
	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Order("usr.id ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}

	return records, nil
}
