package dashboard

import (
	"context"
	"database/sql"

	"facultypool/internal/booking"
)

// PostgresRepository backs the dashboard with Postgres. All statements are
// parameterized; appointment mutations are guarded by the faculty id in the
// WHERE clause so foreign rows are never touched.
type PostgresRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ActiveByFaculty returns the faculty's pending and approved appointments.
func (r *PostgresRepository) ActiveByFaculty(ctx context.Context, facultyID int) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_name, student_email, contact_number, reason,
		       to_char(slot_time, 'HH24:MI'), status, created_at
		FROM appointments
		WHERE faculty_id = $1 AND status IN ($2, $3)
		ORDER BY slot_time ASC
	`, facultyID, booking.StatusPending, booking.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.StudentName, &row.StudentEmail, &row.ContactNumber,
			&row.Reason, &row.SlotTime, &row.Status, &row.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// Approve flips a pending appointment to approved and reports rows affected.
func (r *PostgresRepository) Approve(ctx context.Context, appointmentID string, facultyID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments SET status = $3
		WHERE id = $1 AND faculty_id = $2
	`, appointmentID, facultyID, booking.StatusApproved)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Decline cancels an appointment, recording the faculty's reason.
func (r *PostgresRepository) Decline(ctx context.Context, appointmentID string, facultyID int, reason string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments SET status = $3, decline_reason = $4
		WHERE id = $1 AND faculty_id = $2
	`, appointmentID, facultyID, booking.StatusCancelled, reason)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertAttendance appends one attendance row.
func (r *PostgresRepository) InsertAttendance(ctx context.Context, rec AttendanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, faculty_id, status, marked_on)
		VALUES ($1, $2, $3, $4::date)
	`, rec.ID, rec.FacultyID, rec.Status, rec.MarkedOn)
	return err
}
