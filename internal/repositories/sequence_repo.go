package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopmart/internal/common"
)

// ErrAllocationConflict is returned when the counter upsert could not
// complete within the repository's bounded retries. Callers treat it as
// transient.
var ErrAllocationConflict = errors.New("sequence allocation conflict")

// SequenceRepository hands out the next integer for a named counter
// stream. NextValue is the only way counters are mutated: it is strictly
// increasing per scope key and never returns the same value twice, even
// under concurrent callers, because the increment happens inside a single
// atomic upsert. Reading a counter row and writing it back anywhere else
// would reintroduce the lost-update race this repository exists to close.
type SequenceRepository interface {
	NextValue(ctx context.Context, scopeKey string) (int, error)
}

type sequenceRepo struct {
	db     Database
	policy common.RetryPolicy
}

func NewSequenceRepo(db Database) SequenceRepository {
	return &sequenceRepo{
		db: db,
		policy: common.RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   50 * time.Millisecond,
			Multiplier:  2,
		},
	}
}

const nextValueQuery = `
		WITH upsert AS (
			INSERT INTO sequence_counters (scope_key, last_value)
			VALUES ($1, 1)
			ON CONFLICT (scope_key)
			DO UPDATE SET
				last_value = sequence_counters.last_value + 1,
				updated_at = NOW()
			RETURNING last_value
		)
		SELECT last_value FROM upsert;
	`

func (r *sequenceRepo) NextValue(ctx context.Context, scopeKey string) (int, error) {
	if scopeKey == "" {
		return 0, fmt.Errorf("scope key is required")
	}

	var value int
	err := common.Retry(ctx, r.policy, func(ctx context.Context) error {
		return r.db.QueryRow(ctx, nextValueQuery, scopeKey).Scan(&value)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: scope %s: %v", ErrAllocationConflict, scopeKey, err)
	}
	return value, nil
}
