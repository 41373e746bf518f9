package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/travel-feed/domain"
)

// session wraps the gorm handle of one open transaction.
type session struct {
	ctx context.Context
	tx  *gorm.DB
}

func (s *session) Context() context.Context {
	return s.ctx
}

type transactor struct {
	DB *gorm.DB
}

var _ domain.Transactor = (*transactor)(nil)

// NewTransactor returns the primary store transaction runner.
func NewTransactor(db *gorm.DB) *transactor {
	return &transactor{db}
}

func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context, s domain.Session) error) error {
	return t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &session{ctx: ctx, tx: tx})
	})
}

// conn returns the handle a repository call runs on: the transaction of s,
// or the plain pool when s is nil.
func conn(ctx context.Context, db *gorm.DB, s domain.Session) *gorm.DB {
	if tx, ok := s.(*session); ok && tx != nil {
		return tx.tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func without(list []string, drop []string) []string {
	if len(drop) == 0 {
		return list
	}
	skip := make(map[string]struct{}, len(drop))
	for _, id := range drop {
		skip[id] = struct{}{}
	}
	out := make([]string, 0, len(list))
	for _, id := range list {
		if _, ok := skip[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
