package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/codedrop-dev/codedrop/internal/domain"
	internal_errors "github.com/codedrop-dev/codedrop/internal/errors"

	_ "github.com/lib/pq"
)

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// GlobalPolicy returns the singleton default auto-delete policy.
func (s *Storage) GlobalPolicy(ctx context.Context) (domain.Policy, error) {
	var policy domain.Policy
	err := s.db.QueryRowContext(ctx,
		"SELECT auto_delete, delete_after_hours FROM global_policy WHERE id = 1").
		Scan(&policy.AutoDelete, &policy.DeleteAfterHours)
	return policy, err
}

// UpdateGlobalPolicy applies a partial update to the singleton policy.
// Nil fields keep their current value.
func (s *Storage) UpdateGlobalPolicy(ctx context.Context, autoDelete *bool, hours *int) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE global_policy SET
		auto_delete = COALESCE($1, auto_delete),
		delete_after_hours = COALESCE($2, delete_after_hours)
	WHERE id = 1`, nullBool(autoDelete), nullInt(hours))
	return err
}

// CodePolicy returns the policy stamped on the batch at commit time.
// All rows of a batch carry the same policy; reading one is enough.
//
// internal_errors.ErrCodeNotFound when the code matches nothing.
func (s *Storage) CodePolicy(ctx context.Context, code string) (domain.Policy, error) {
	var policy domain.Policy
	err := s.db.QueryRowContext(ctx,
		"SELECT auto_delete, delete_after_hours FROM files WHERE code = $1 LIMIT 1", code).
		Scan(&policy.AutoDelete, &policy.DeleteAfterHours)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Policy{}, internal_errors.ErrCodeNotFound
	}
	return policy, err
}

// UpdateCodePolicy applies a partial policy update to every row of one
// batch and recomputes the absolute expiry from the resulting values.
//
// internal_errors.ErrCodeNotFound when the code matches nothing.
func (s *Storage) UpdateCodePolicy(ctx context.Context, code string, autoDelete *bool, hours *int) error {
	result, err := s.db.ExecContext(ctx, `
	UPDATE files SET
		auto_delete = COALESCE($2, auto_delete),
		delete_after_hours = COALESCE($3, delete_after_hours),
		delete_at = CASE
			WHEN COALESCE($2, auto_delete)
			THEN committed_at + COALESCE($3, delete_after_hours) * interval '1 hour'
		END
	WHERE code = $1`, code, nullBool(autoDelete), nullInt(hours))
	if err != nil {
		return err
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return internal_errors.ErrCodeNotFound
	}
	return nil
}
