package sqlite

import (
	"context"
	"database/sql"

	"github.com/quollsoft/passgate/internal/server/domain"
	"github.com/quollsoft/passgate/internal/server/store"
)

type attemptsRepo struct {
	db *sql.DB
}

func (r *attemptsRepo) CreateAttempt(ctx context.Context, a domain.Attempt) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attempts (id, user_id, purpose, code_hash, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.Purpose), a.CodeHash, a.ExpiresAt)
	return mapConstraint(err)
}

func (r *attemptsRepo) GetAttempt(ctx context.Context, id string) (domain.Attempt, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, purpose, code_hash, failures, expires_at, created_at
		 FROM attempts WHERE id = ?`, id)

	var a domain.Attempt
	var purpose string
	err := row.Scan(&a.ID, &a.UserID, &purpose, &a.CodeHash, &a.Failures, &a.ExpiresAt, &a.CreatedAt)
	if err != nil {
		return domain.Attempt{}, mapNotFound(err)
	}
	a.Purpose = domain.AttemptPurpose(purpose)
	return a, nil
}

func (r *attemptsRepo) IncrementFailures(ctx context.Context, id string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE attempts SET failures = failures + 1 WHERE id = ?`, id)
	if err := affectedOrNotFound(res, err); err != nil {
		return 0, err
	}

	var failures int
	err = r.db.QueryRowContext(ctx, `SELECT failures FROM attempts WHERE id = ?`, id).Scan(&failures)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return failures, nil
}

func (r *attemptsRepo) DeleteAttempt(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attempts WHERE id = ?`, id)
	return err
}

func (r *attemptsRepo) DeleteExpiredAttempts(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attempts WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}

// affectedOrNotFound maps a zero-row UPDATE/DELETE to store.ErrNotFound.
func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
