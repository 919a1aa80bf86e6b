package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	internal_errors "github.com/codedrop-dev/codedrop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitBatch(t *testing.T, ownerID int64, code string, committedAt time.Time, kinds ...domain.Kind) {
	t.Helper()
	stageItems(t, ownerID, kinds...)
	_, _, err := storage.CommitPending(context.Background(), ownerID, code, committedAt)
	require.NoError(t, err)
}

func TestBatchSummaries_NewestFirst(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	now := time.Now().UTC()

	commitBatch(t, 1, "older001", now.Add(-2*time.Hour), domain.KindPhoto, domain.KindPhoto)
	commitBatch(t, 1, "newer001", now.Add(-time.Hour), domain.KindVideo)
	commitBatch(t, 2, "other001", now, domain.KindDocument)

	summaries, err := storage.BatchSummaries(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "newer001", summaries[0].Code)
	assert.Equal(t, domain.KindVideo, summaries[0].Kind)
	assert.Equal(t, 1, summaries[0].ItemCount)
	assert.Equal(t, "older001", summaries[1].Code)
	assert.Equal(t, 2, summaries[1].ItemCount)
}

func TestBatchSummaries_RespectsLimit(t *testing.T) {
	mustReset(t)
	now := time.Now().UTC()

	for i := range 5 {
		commitBatch(t, 1, "code000"+string(rune('a'+i)), now.Add(time.Duration(i)*time.Minute), domain.KindPhoto)
	}

	summaries, err := storage.BatchSummaries(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
}

func TestDeleteBatch_OwnerScoped(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	commitBatch(t, 1, "abc12345", time.Now().UTC(), domain.KindPhoto)

	// wrong owner cannot delete
	err := storage.DeleteBatch(ctx, 2, "abc12345")
	assert.True(t, errors.Is(err, internal_errors.ErrCodeNotFound))

	require.NoError(t, storage.DeleteBatch(ctx, 1, "abc12345"))

	_, err = storage.ItemsByCode(ctx, "abc12345")
	assert.True(t, errors.Is(err, internal_errors.ErrCodeNotFound))

	// the code is free again
	commitBatch(t, 2, "abc12345", time.Now().UTC(), domain.KindVideo)
}

func TestOwnerHasCode(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	commitBatch(t, 1, "abc12345", time.Now().UTC(), domain.KindPhoto)

	owns, err := storage.OwnerHasCode(ctx, 1, "abc12345")
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = storage.OwnerHasCode(ctx, 2, "abc12345")
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestDeleteExpired_AbsoluteExpiry(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, storage.UpdateGlobalPolicy(ctx, boolPtr(true), intPtr(1)))

	commitBatch(t, 1, "expired1", now.Add(-2*time.Hour), domain.KindPhoto, domain.KindVideo)
	commitBatch(t, 1, "alive001", now, domain.KindPhoto)

	deleted, err := storage.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = storage.ItemsByCode(ctx, "expired1")
	assert.True(t, errors.Is(err, internal_errors.ErrCodeNotFound))
	_, err = storage.ItemsByCode(ctx, "alive001")
	assert.NoError(t, err)

	// the orphaned reservation is gone, the code is reusable
	owns, err := storage.OwnerHasCode(ctx, 1, "expired1")
	require.NoError(t, err)
	assert.False(t, owns)
}

func TestDeleteExpired_FallsBackToCommittedAt(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	now := time.Now().UTC()
	commitBatch(t, 1, "legacy01", now.Add(-3*time.Hour), domain.KindPhoto)

	// simulate a row stamped before absolute expiries existed
	_, err := storage.db.Exec(
		"UPDATE files SET auto_delete = TRUE, delete_after_hours = 2, delete_at = NULL WHERE code = $1",
		"legacy01")
	require.NoError(t, err)

	deleted, err := storage.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestDeleteExpired_SkipsAutoDeleteOff(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// default global policy keeps auto-delete off
	commitBatch(t, 1, "keeper01", now.Add(-100*24*time.Hour), domain.KindPhoto)

	deleted, err := storage.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestStats(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	now := time.Now().UTC()

	commitBatch(t, 1, "abc12345", now, domain.KindPhoto, domain.KindVideo)
	commitBatch(t, 2, "def12345", now, domain.KindDocument)
	require.NoError(t, storage.UpsertRecipient(ctx, domain.Recipient{UserID: 9, FirstSeen: now}))

	stats, err := storage.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalItems)
	assert.Equal(t, int64(2), stats.TotalBatches)
	assert.Equal(t, int64(1), stats.TotalRecipients)
}
