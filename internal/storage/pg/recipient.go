package pg

import (
	"context"

	"github.com/codedrop-dev/codedrop/internal/domain"

	_ "github.com/lib/pq"
)

// UpsertRecipient registers a user for broadcast targeting. Repeated
// contacts refresh the username and keep the original first_seen.
func (s *Storage) UpsertRecipient(ctx context.Context, r domain.Recipient) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO recipients(user_id, username, first_seen)
	VALUES($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username`,
		r.UserID, r.Username, r.FirstSeen)
	return err
}

// Recipients returns everyone ever seen, oldest first.
func (s *Storage) Recipients(ctx context.Context) ([]domain.Recipient, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, username, first_seen FROM recipients ORDER BY first_seen")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []domain.Recipient
	for rows.Next() {
		var r domain.Recipient
		if err := rows.Scan(&r.UserID, &r.Username, &r.FirstSeen); err != nil {
			return nil, err
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recipients, nil
}
