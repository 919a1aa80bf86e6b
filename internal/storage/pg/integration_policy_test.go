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

func TestUpdateGlobalPolicy_PartialUpdate(t *testing.T) {
	mustReset(t)
	ctx := context.Background()

	require.NoError(t, storage.UpdateGlobalPolicy(ctx, boolPtr(true), nil))
	policy, err := storage.GlobalPolicy(ctx)
	require.NoError(t, err)
	assert.True(t, policy.AutoDelete)
	assert.Equal(t, 24, policy.DeleteAfterHours, "hours keep their value on a nil field")

	require.NoError(t, storage.UpdateGlobalPolicy(ctx, nil, intPtr(72)))
	policy, err = storage.GlobalPolicy(ctx)
	require.NoError(t, err)
	assert.True(t, policy.AutoDelete)
	assert.Equal(t, 72, policy.DeleteAfterHours)
}

func TestUpdateCodePolicy_RecomputesExpiry(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	committedAt := time.Now().UTC().Truncate(time.Second)
	commitBatch(t, 1, "abc12345", committedAt, domain.KindPhoto, domain.KindVideo)

	require.NoError(t, storage.UpdateCodePolicy(ctx, "abc12345", boolPtr(true), intPtr(2)))

	policy, err := storage.CodePolicy(ctx, "abc12345")
	require.NoError(t, err)
	assert.True(t, policy.AutoDelete)
	assert.Equal(t, 2, policy.DeleteAfterHours)

	// every row of the batch expires at committed_at + 2h
	deleted, err := storage.DeleteExpired(ctx, committedAt.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestUpdateCodePolicy_DisableClearsExpiry(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, storage.UpdateGlobalPolicy(ctx, boolPtr(true), intPtr(1)))
	commitBatch(t, 1, "abc12345", now.Add(-2*time.Hour), domain.KindPhoto)

	require.NoError(t, storage.UpdateCodePolicy(ctx, "abc12345", boolPtr(false), nil))

	deleted, err := storage.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCodePolicy_NotFound(t *testing.T) {
	mustReset(t)

	_, err := storage.CodePolicy(context.Background(), "missing1")
	assert.True(t, errors.Is(err, internal_errors.ErrCodeNotFound))

	err = storage.UpdateCodePolicy(context.Background(), "missing1", boolPtr(true), nil)
	assert.True(t, errors.Is(err, internal_errors.ErrCodeNotFound))
}

func TestUpsertRecipient_KeepsFirstSeen(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	require.NoError(t, storage.UpsertRecipient(ctx, domain.Recipient{UserID: 9, Username: "old", FirstSeen: first}))
	require.NoError(t, storage.UpsertRecipient(ctx, domain.Recipient{UserID: 9, Username: "new", FirstSeen: time.Now().UTC()}))

	recipients, err := storage.Recipients(ctx)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "new", recipients[0].Username)
	assert.True(t, recipients[0].FirstSeen.Equal(first))
}

func TestRecipients_OldestFirst(t *testing.T) {
	mustReset(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, storage.UpsertRecipient(ctx, domain.Recipient{UserID: 2, FirstSeen: now}))
	require.NoError(t, storage.UpsertRecipient(ctx, domain.Recipient{UserID: 1, FirstSeen: now.Add(-time.Hour)}))

	recipients, err := storage.Recipients(ctx)
	require.NoError(t, err)
	require.Len(t, recipients, 2)
	assert.Equal(t, int64(1), recipients[0].UserID)
	assert.Equal(t, int64(2), recipients[1].UserID)
}
