package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/learnhub-backend/internal/application/command"
	"github.com/learnhub/learnhub-backend/internal/domain/achievement"
	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork implements command.UnitOfWork on a pgx transaction. Every port it
// hands out is bound to the same transaction; commit and rollback follow the
// error contract of Connection.WithTx.
type UnitOfWork struct {
	conn *Connection
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// WithinTx runs fn with repositories bound to a single transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ports command.TxPorts) error) error {
	return u.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(&txPorts{tx: tx})
	})
}

// txPorts bundles tx-bound repositories.
type txPorts struct {
	tx pgx.Tx
}

func (p *txPorts) Catalog() progress.Catalog {
	return NewCatalogRepository(p.tx)
}

func (p *txPorts) Progress() progress.Store {
	return NewProgressRepository(p.tx)
}

func (p *txPorts) Learners() learner.Repository {
	return NewLearnerRepository(p.tx)
}

func (p *txPorts) Accumulator() learner.ScoreAccumulator {
	return NewLearnerRepository(p.tx)
}

func (p *txPorts) Evaluator() achievement.Evaluator {
	return NewAchievementRepository(p.tx)
}
