package repository

import (
	"context"
	"fmt"
	"hash/fnv"

	"gamerit/domain/interfaces"
)

type jobLockRepository struct {
	q Queryable
}

func newJobLockRepositoryWithTx(tx Queryable) interfaces.JobLockRepository {
	return &jobLockRepository{q: tx}
}

// TryAcquire takes a transaction-scoped advisory lock keyed by the job name.
// Postgres releases it automatically at commit or rollback, so an instance
// that dies mid-job never leaves the lock stuck.
func (r *jobLockRepository) TryAcquire(ctx context.Context, job string) (bool, error) {
	h := fnv.New64a()
	h.Write([]byte(job))
	key := int64(h.Sum64())

	var acquired bool
	err := r.q.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1)`, key).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("failed to acquire job lock %q: %w", job, err)
	}
	return acquired, nil
}
