package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresRepository persists appointments in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// InTx runs fn against transaction-scoped queries. The transaction commits
// only when fn returns nil.
func (r *PostgresRepository) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(txQueries{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txQueries struct {
	tx *sql.Tx
}

func (q txQueries) ActiveCountByFacultyIP(ctx context.Context, facultyID int, ip string) (int, error) {
	var n int
	err := q.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE faculty_id = $1 AND ip_address = $2 AND status IN ('pending', 'approved')
	`, facultyID, ip).Scan(&n)
	return n, err
}

func (q txQueries) ActiveCountByFacultyEmail(ctx context.Context, facultyID int, email string) (int, error) {
	var n int
	err := q.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE faculty_id = $1 AND student_email = $2 AND status IN ('pending', 'approved')
	`, facultyID, email).Scan(&n)
	return n, err
}

func (q txQueries) ActiveCountByIPEmail(ctx context.Context, ip, email string) (int, error) {
	var n int
	err := q.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE ip_address = $1 AND student_email = $2 AND status IN ('pending', 'approved')
	`, ip, email).Scan(&n)
	return n, err
}

func (q txQueries) Insert(ctx context.Context, appt Appointment) (Appointment, error) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = StatusPending
	}
	row := q.tx.QueryRowContext(ctx, `
		INSERT INTO appointments (
			id, faculty_id, student_name, student_department, subgroup, reason,
			student_email, contact_number, slot_time, ip_address, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::time, $10, $11)
		RETURNING created_at
	`, appt.ID, appt.FacultyID, appt.StudentName, appt.StudentDepartment, appt.Subgroup,
		appt.Reason, appt.StudentEmail, appt.ContactNumber, appt.SlotTime+":00",
		appt.IPAddress, appt.Status)
	var created time.Time
	if err := row.Scan(&created); err != nil {
		return Appointment{}, err
	}
	appt.CreatedAt = created
	return appt, nil
}
