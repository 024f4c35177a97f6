package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gossip/internal/domain"
)

const userCols = `id, name, email, hashed_password, is_online, otp_enabled, otp_verified, otp_auth_url, otp_secret, mfa_enabled, created_at, last_seen`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (name, email, hashed_password, is_online, created_at, last_seen)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.HashedPassword, false)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
}

func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) SetOnlineStatus(ctx context.Context, id int64, isOnline bool) error {
	query := `UPDATE users SET is_online = ?, last_seen = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, isOnline, id); err != nil {
		return fmt.Errorf("set online status: %w", err)
	}
	return nil
}

func (r *UserRepo) SaveTOTP(ctx context.Context, email, secret, authURL string) error {
	query := `UPDATE users SET otp_secret = ?, otp_auth_url = ? WHERE email = ?`
	res, err := r.db.ExecContext(ctx, query, secret, authURL, email)
	if err != nil {
		return fmt.Errorf("save totp: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) EnableMFA(ctx context.Context, id int64) error {
	query := `UPDATE users SET otp_enabled = TRUE, otp_verified = TRUE, mfa_enabled = TRUE WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("enable mfa: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUserRow(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (*domain.User, error) {
	var (
		u          domain.User
		otpAuthURL sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.IsOnline,
		&u.OTPEnabled, &u.OTPVerified, &otpAuthURL, &u.OTPSecret,
		&u.MFAEnabled, &u.CreatedAt, &u.LastSeen,
	)
	if err != nil {
		return nil, err
	}
	if otpAuthURL.Valid {
		u.OTPAuthURL = &otpAuthURL.String
	}
	return &u, nil
}
