package sqlite

import (
	"context"
	"database/sql"

	"github.com/quollsoft/passgate/internal/server/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, email, password_hash, requires_2fa, twofa_method, totp_secret, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var method string
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Requires2FA,
		&method, &u.TOTPSecret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.TwoFAMethod = domain.TwoFactorMethod(method)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, requires_2fa, twofa_method, totp_secret)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Requires2FA, string(u.TwoFAMethod), u.TOTPSecret)
	return mapConstraint(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newHash, userID)
	return affectedOrNotFound(res, err)
}

func (r *usersRepo) UpdateTwoFactor(
	ctx context.Context,
	userID string,
	requires bool,
	method domain.TwoFactorMethod,
	totpSecret string,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET requires_2fa = ?, twofa_method = ?, totp_secret = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		requires, string(method), totpSecret, userID)
	return affectedOrNotFound(res, err)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return affectedOrNotFound(res, err)
}
