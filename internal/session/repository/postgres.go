package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"medsupply/internal/session/domain"
)

const sessionColumns = `id, user_id, password_verified, mfa_verified, otp_hash, otp_expires_at,
	failed_otp_attempts, created_at, last_seen_at, expires_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	var otpHash sql.NullString
	var otpExpiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id).Scan(
		&s.ID, &s.UserID, &s.PasswordVerified, &s.MFAVerified, &otpHash, &otpExpiresAt,
		&s.FailedOTPAttempts, &s.CreatedAt, &s.LastSeenAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.OTPHash = otpHash.String
	s.OTPExpiresAt = nullTimeToPtr(otpExpiresAt)
	return &s, nil
}

// Create persists the session to the database. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.UserID, s.PasswordVerified, s.MFAVerified,
		stringToNull(s.OTPHash), timeToNullTime(s.OTPExpiresAt),
		s.FailedOTPAttempts, s.CreatedAt, s.LastSeenAt, s.ExpiresAt,
	)
	return err
}

// Update writes the mutable session fields for s.ID.
func (r *PostgresRepository) Update(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET password_verified = $2, mfa_verified = $3, otp_hash = $4, otp_expires_at = $5,
			failed_otp_attempts = $6, last_seen_at = $7, expires_at = $8
		WHERE id = $1`,
		s.ID, s.PasswordVerified, s.MFAVerified,
		stringToNull(s.OTPHash), timeToNullTime(s.OTPExpiresAt),
		s.FailedOTPAttempts, s.LastSeenAt, s.ExpiresAt,
	)
	return err
}

// Delete removes the session with the given id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes sessions that expired at or before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func stringToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
