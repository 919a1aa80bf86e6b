package service

import (
	"context"

	"github.com/codedrop-dev/codedrop/internal/domain"
	"github.com/codedrop-dev/codedrop/internal/metrics"
)

type VaultStorage interface {
	// BatchSummaries returns the owner's most recent batches, newest first.
	BatchSummaries(ctx context.Context, ownerID int64, limit int) ([]domain.BatchSummary, error)
	// DeleteBatch removes every row of the batch, owner-scoped.
	// errs.ErrCodeNotFound when code+owner match nothing.
	DeleteBatch(ctx context.Context, ownerID int64, code string) error
	// OwnerHasCode reports whether the owner committed the batch.
	OwnerHasCode(ctx context.Context, ownerID int64, code string) (bool, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// Vault covers the owner-facing batch management operations: listing,
// explicit deletion, and service-wide stats.
type Vault struct {
	storage  VaultStorage
	pageSize int
}

func NewVault(storage VaultStorage, pageSize int) *Vault {
	return &Vault{storage: storage, pageSize: pageSize}
}

func (v *Vault) List(ctx context.Context, ownerID int64) ([]domain.BatchSummary, error) {
	return v.storage.BatchSummaries(ctx, ownerID, v.pageSize)
}

func (v *Vault) Delete(ctx context.Context, ownerID int64, code string) error {
	if err := v.storage.DeleteBatch(ctx, ownerID, code); err != nil {
		return err
	}
	metrics.BatchesDeleted.Inc()
	return nil
}

func (v *Vault) OwnsCode(ctx context.Context, ownerID int64, code string) (bool, error) {
	return v.storage.OwnerHasCode(ctx, ownerID, code)
}

func (v *Vault) Stats(ctx context.Context) (domain.Stats, error) {
	return v.storage.Stats(ctx)
}
