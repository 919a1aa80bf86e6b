package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	errs "github.com/codedrop-dev/codedrop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock structs
type MockStagingStorage struct {
	AppendPendingFunc func(ctx context.Context, item domain.Item) (int, error)
	CommitPendingFunc func(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error)
	ClearPendingFunc  func(ctx context.Context, ownerID int64) error

	commitCodes []string
	clearCalls  int
}

func (m *MockStagingStorage) AppendPending(ctx context.Context, item domain.Item) (int, error) {
	if m.AppendPendingFunc != nil {
		return m.AppendPendingFunc(ctx, item)
	}
	return 1, nil
}

func (m *MockStagingStorage) CommitPending(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error) {
	m.commitCodes = append(m.commitCodes, code)
	if m.CommitPendingFunc != nil {
		return m.CommitPendingFunc(ctx, ownerID, code, now)
	}
	return 1, domain.Policy{}, nil
}

func (m *MockStagingStorage) ClearPending(ctx context.Context, ownerID int64) error {
	m.clearCalls++
	if m.ClearPendingFunc != nil {
		return m.ClearPendingFunc(ctx, ownerID)
	}
	return nil
}

func sequentialCodes() CodeGenerator {
	n := 0
	return func() string {
		n++
		return map[int]string{1: "code0001", 2: "code0002", 3: "code0003", 4: "code0004", 5: "code0005"}[n]
	}
}

func TestStagingAppend(t *testing.T) {
	storage := &MockStagingStorage{}
	staging := NewStaging(storage, sequentialCodes())

	storage.AppendPendingFunc = func(ctx context.Context, item domain.Item) (int, error) {
		return 7, nil
	}

	n, err := staging.Append(context.Background(), domain.Item{Kind: domain.KindPhoto, AssetRef: "ref", OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestStagingAppend_RejectsUnknownKind(t *testing.T) {
	storage := &MockStagingStorage{}
	staging := NewStaging(storage, sequentialCodes())

	_, err := staging.Append(context.Background(), domain.Item{Kind: "spreadsheet", OwnerID: 1})
	require.Error(t, err)
	assert.True(t, errs.Is[*errs.ValidationError](err))

	// text is a broadcast-only kind, never a stored one
	_, err = staging.Append(context.Background(), domain.Item{Kind: domain.KindText, OwnerID: 1})
	require.Error(t, err)
}

func TestStagingCommit(t *testing.T) {
	storage := &MockStagingStorage{}
	staging := NewStaging(storage, sequentialCodes())

	wantPolicy := domain.Policy{AutoDelete: true, DeleteAfterHours: 24}
	storage.CommitPendingFunc = func(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error) {
		assert.Equal(t, int64(42), ownerID)
		assert.False(t, now.IsZero())
		return 3, wantPolicy, nil
	}

	code, n, policy, err := staging.Commit(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "code0001", code)
	assert.Equal(t, 3, n)
	assert.Equal(t, wantPolicy, policy)
}

func TestStagingCommit_RegeneratesOnCollision(t *testing.T) {
	storage := &MockStagingStorage{}
	staging := NewStaging(storage, sequentialCodes())

	storage.CommitPendingFunc = func(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error) {
		if code == "code0001" {
			return 0, domain.Policy{}, errs.ErrCodeTaken
		}
		return 2, domain.Policy{}, nil
	}

	code, n, _, err := staging.Commit(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "code0002", code)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"code0001", "code0002"}, storage.commitCodes)
}

func TestStagingCommit_GivesUpAfterRepeatedCollisions(t *testing.T) {
	storage := &MockStagingStorage{}
	staging := NewStaging(storage, sequentialCodes())

	storage.CommitPendingFunc = func(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error) {
		return 0, domain.Policy{}, errs.ErrCodeTaken
	}

	_, _, _, err := staging.Commit(context.Background(), 42)
	require.Error(t, err)
	assert.Len(t, storage.commitCodes, commitCodeAttempts)
}

func TestStagingCommit_EmptyBatch(t *testing.T) {
	storage := &MockStagingStorage{}
	staging := NewStaging(storage, sequentialCodes())

	storage.CommitPendingFunc = func(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error) {
		return 0, domain.Policy{}, errs.ErrEmptyBatch
	}

	_, _, _, err := staging.Commit(context.Background(), 42)
	assert.True(t, errors.Is(err, errs.ErrEmptyBatch))
	// not-found is not a collision: no regeneration
	assert.Len(t, storage.commitCodes, 1)
}

func TestStagingCancel_Idempotent(t *testing.T) {
	storage := &MockStagingStorage{}
	staging := NewStaging(storage, sequentialCodes())

	require.NoError(t, staging.Cancel(context.Background(), 42))
	require.NoError(t, staging.Cancel(context.Background(), 42))
	assert.Equal(t, 2, storage.clearCalls)
}
