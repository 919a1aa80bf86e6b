package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	errs "github.com/codedrop-dev/codedrop/internal/errors"
	"github.com/codedrop-dev/codedrop/internal/metrics"
)

// commitCodeAttempts bounds code regeneration on reservation collisions.
// A collision needs two identical 8-char draws, so one retry is already
// overkill.
const commitCodeAttempts = 5

type StagingStorage interface {
	// AppendPending appends the item to its owner's pending batch and
	// returns the new pending count for that owner.
	AppendPending(ctx context.Context, item domain.Item) (int, error)
	// CommitPending atomically reserves the code (errs.ErrCodeTaken on
	// collision), reads the global policy, moves every pending item of
	// the owner into committed rows stamped with that policy, and clears
	// the pending batch. Returns errs.ErrEmptyBatch when nothing is staged.
	CommitPending(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error)
	// ClearPending drops the owner's pending batch. No-op when empty.
	ClearPending(ctx context.Context, ownerID int64) error
}

// CodeGenerator produces candidate batch codes.
type CodeGenerator func() string

// Staging accumulates an uploader's in-flight items and commits them
// under a fresh code. Authorization is the caller's concern.
type Staging struct {
	storage  StagingStorage
	generate CodeGenerator
}

func NewStaging(storage StagingStorage, generate CodeGenerator) *Staging {
	return &Staging{storage: storage, generate: generate}
}

// Append stages one item and returns the owner's new pending count.
func (s *Staging) Append(ctx context.Context, item domain.Item) (int, error) {
	if !item.Kind.Storable() {
		return 0, &errs.ValidationError{Message: fmt.Sprintf("unsupported asset kind %q", item.Kind)}
	}
	n, err := s.storage.AppendPending(ctx, item)
	if err != nil {
		return 0, err
	}
	metrics.ItemsStaged.Inc()
	return n, nil
}

// Commit turns the owner's pending batch into a committed one and
// returns the minted code, the item count and the stamped policy.
func (s *Staging) Commit(ctx context.Context, ownerID int64) (string, int, domain.Policy, error) {
	now := time.Now().UTC()
	for range commitCodeAttempts {
		code := s.generate()
		n, policy, err := s.storage.CommitPending(ctx, ownerID, code, now)
		if errors.Is(err, errs.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return "", 0, domain.Policy{}, err
		}
		metrics.BatchesCommitted.Inc()
		return code, n, policy, nil
	}
	return "", 0, domain.Policy{}, fmt.Errorf("no unique code after %d attempts", commitCodeAttempts)
}

// Cancel drops the owner's pending batch. Idempotent.
func (s *Staging) Cancel(ctx context.Context, ownerID int64) error {
	return s.storage.ClearPending(ctx, ownerID)
}
