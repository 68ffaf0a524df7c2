package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"facultypool/internal/metrics"
)

// Attendance statuses a faculty member can mark.
var allowedAttendance = map[string]bool{
	"Present":  true,
	"On Leave": true,
	"Sick":     true,
}

var (
	// ErrNoSuchAppointment reports an approve/decline that matched no row
	// owned by the acting faculty. Cross-faculty ids land here too, so the
	// caller cannot tell a foreign id from a missing one.
	ErrNoSuchAppointment = errors.New("appointment not found")

	// ErrReasonRequired reports a decline without a reason.
	ErrReasonRequired = errors.New("decline reason cannot be empty")

	// ErrInvalidAttendance reports an unknown attendance status.
	ErrInvalidAttendance = errors.New("invalid attendance status")

	// ErrAttendanceClosed reports a mark attempted at or after the daily cutoff.
	ErrAttendanceClosed = errors.New("attendance can only be marked before the daily cutoff")
)

// Row is a stored appointment as the dashboard repository returns it.
// SlotTime is the HH:MM value in storage time (UTC).
type Row struct {
	ID            string
	StudentName   string
	StudentEmail  string
	ContactNumber string
	Reason        string
	SlotTime      string
	Status        string
	CreatedAt     time.Time
}

// Entry is one displayed appointment, with the slot converted to the
// display time zone.
type Entry struct {
	ID            string `json:"id"`
	StudentName   string `json:"student_name"`
	StudentEmail  string `json:"student_email"`
	ContactNumber string `json:"contact_number"`
	Reason        string `json:"reason"`
	SlotTime      string `json:"slot_time"` // YYYY-MM-DD HH:MM in display zone
	Status        string `json:"status"`
}

// AttendanceRecord is one appended attendance row.
type AttendanceRecord struct {
	ID        string
	FacultyID int
	Status    string
	MarkedOn  string // YYYY-MM-DD in display zone
}

// Repository is the persistence surface the dashboard needs.
type Repository interface {
	ActiveByFaculty(ctx context.Context, facultyID int) ([]Row, error)
	Approve(ctx context.Context, appointmentID string, facultyID int) (int64, error)
	Decline(ctx context.Context, appointmentID string, facultyID int, reason string) (int64, error)
	InsertAttendance(ctx context.Context, rec AttendanceRecord) error
}

// Service produces a faculty member's dashboard view and applies its actions.
type Service struct {
	repo      Repository
	storageTZ *time.Location
	displayTZ *time.Location
	window    time.Duration
	cutoff    string // HH:MM in display zone
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a dashboard service. displayZone names the zone
// appointments are shown in and attendance is cut off in; window is the
// trailing period appointments stay visible for.
func NewService(repo Repository, displayZone, cutoff string, window time.Duration, logger *zap.Logger) (*Service, error) {
	loc, err := time.LoadLocation(displayZone)
	if err != nil {
		return nil, fmt.Errorf("load display zone %q: %w", displayZone, err)
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	if cutoff == "" {
		cutoff = "10:30"
	}
	return &Service{
		repo:      repo,
		storageTZ: time.UTC,
		displayTZ: loc,
		window:    window,
		cutoff:    cutoff,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// ListActive returns the faculty's pending and approved appointments from the
// trailing window, slot times converted to the display zone, oldest first.
func (s *Service) ListActive(ctx context.Context, facultyID int) ([]Entry, error) {
	rows, err := s.repo.ActiveByFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	horizon := s.now().Add(-s.window)
	type timed struct {
		at    time.Time
		entry Entry
	}
	var kept []timed
	for _, row := range rows {
		slot, err := s.slotInDisplayZone(row)
		if err != nil {
			s.logger.Warn("skipping appointment with unparseable slot time",
				zap.String("appointment_id", row.ID), zap.Error(err))
			continue
		}
		if slot.Before(horizon) {
			continue
		}
		kept = append(kept, timed{at: slot, entry: Entry{
			ID:            row.ID,
			StudentName:   row.StudentName,
			StudentEmail:  row.StudentEmail,
			ContactNumber: row.ContactNumber,
			Reason:        row.Reason,
			SlotTime:      slot.Format("2006-01-02 15:04"),
			Status:        row.Status,
		}})
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].at.Before(kept[j].at) })

	entries := make([]Entry, len(kept))
	for i, k := range kept {
		entries[i] = k.entry
	}
	return entries, nil
}

// slotInDisplayZone anchors the stored time-of-day to the booking date in
// storage time, then converts it to the display zone.
func (s *Service) slotInDisplayZone(row Row) (time.Time, error) {
	hm, err := time.Parse("15:04", row.SlotTime)
	if err != nil {
		return time.Time{}, err
	}
	created := row.CreatedAt.In(s.storageTZ)
	slot := time.Date(created.Year(), created.Month(), created.Day(),
		hm.Hour(), hm.Minute(), 0, 0, s.storageTZ)
	return slot.In(s.displayTZ), nil
}

// Approve marks the appointment approved, guarded by the acting faculty's id.
func (s *Service) Approve(ctx context.Context, facultyID int, appointmentID string) error {
	affected, err := s.repo.Approve(ctx, appointmentID, facultyID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoSuchAppointment
	}
	s.logger.Info("appointment approved",
		zap.String("appointment_id", appointmentID), zap.Int("faculty_id", facultyID))
	return nil
}

// Decline cancels the appointment and records the faculty's reason.
func (s *Service) Decline(ctx context.Context, facultyID int, appointmentID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	affected, err := s.repo.Decline(ctx, appointmentID, facultyID, reason)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoSuchAppointment
	}
	s.logger.Info("appointment declined",
		zap.String("appointment_id", appointmentID), zap.Int("faculty_id", facultyID))
	return nil
}

// MarkAttendance appends one attendance row. Every call before the cutoff
// inserts a new row; duplicates are expected, not deduplicated.
func (s *Service) MarkAttendance(ctx context.Context, facultyID int, status string) (AttendanceRecord, error) {
	if !allowedAttendance[status] {
		return AttendanceRecord{}, ErrInvalidAttendance
	}

	now := s.now().In(s.displayTZ)
	if now.Format("15:04") >= s.cutoff {
		return AttendanceRecord{}, ErrAttendanceClosed
	}

	rec := AttendanceRecord{
		ID:        uuid.NewString(),
		FacultyID: facultyID,
		Status:    status,
		MarkedOn:  now.Format("2006-01-02"),
	}
	if err := s.repo.InsertAttendance(ctx, rec); err != nil {
		return AttendanceRecord{}, err
	}
	metrics.AttendanceMarks.WithLabelValues(status).Inc()
	s.logger.Info("attendance marked",
		zap.Int("faculty_id", facultyID), zap.String("status", status), zap.String("date", rec.MarkedOn))
	return rec, nil
}
