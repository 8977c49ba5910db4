package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store gives transactional access to every repository.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Questions() QuestionRepository
	Notifications() NotificationRepository
	// WithinTx runs fn against a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Calling WithinTx on a transactional Store reuses the open transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStore struct {
	pool *pgxpool.Pool
	db   DBTX
	inTx bool
}

// NewStore returns a Postgres-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *pgStore) Projects() ProjectRepository {
	return &projectRepository{db: s.db}
}

func (s *pgStore) Questions() QuestionRepository {
	return &questionRepository{db: s.db}
}

func (s *pgStore) Notifications() NotificationRepository {
	return &notificationRepository{db: s.db}
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgStore{pool: s.pool, db: tx, inTx: true})
	})
}
