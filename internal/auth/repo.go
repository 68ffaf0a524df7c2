package auth

import (
	"context"
	"database/sql"
	"errors"
)

// Credentials is a faculty login row.
type Credentials struct {
	FacultyID    int
	FirstName    string
	Email        string
	PasswordHash string
}

// PostgresCredentialStore looks up and updates faculty credentials.
type PostgresCredentialStore struct {
	db *sql.DB
}

// NewCredentialStore creates a store.
func NewCredentialStore(db *sql.DB) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

// CredentialsByEmail returns the login row for an email, or ErrUnknownEmail.
func (s *PostgresCredentialStore) CredentialsByEmail(ctx context.Context, email string) (Credentials, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT faculty_id, first_name, email, password_hash
		FROM faculty WHERE email = $1
	`, email)
	var c Credentials
	if err := row.Scan(&c.FacultyID, &c.FirstName, &c.Email, &c.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credentials{}, ErrUnknownEmail
		}
		return Credentials{}, err
	}
	return c, nil
}

// UpdatePasswordHash stores a new password hash for a faculty member.
func (s *PostgresCredentialStore) UpdatePasswordHash(ctx context.Context, facultyID int, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE faculty SET password_hash = $2 WHERE faculty_id = $1
	`, facultyID, hash)
	return err
}
