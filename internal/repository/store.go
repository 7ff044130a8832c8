package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type sqlStore struct {
	db *sqlx.DB
}

// NewStore wraps the connection pool in a Store.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Repos() Repos {
	return newRepos(s.db)
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

// newRepos binds every repository to the same executor, either the pool or a
// transaction.
func newRepos(ext sqlx.ExtContext) Repos {
	return Repos{
		Customers:    &customerRepository{ext: ext},
		Loans:        &loanRepository{ext: ext},
		Installments: &installmentRepository{ext: ext},
		AppLocks:     &loanApplicationLockRepository{ext: ext},
		PayLocks:     &installmentPaymentLockRepository{ext: ext},
	}
}
