package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"facultypool/internal/directory"
	"facultypool/internal/metrics"
)

// slotTimePattern accepts zero-padded 24h HH:MM values only, so that plain
// string comparison against the visiting-hours window is well defined.
var slotTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// FacultySource resolves the booking target. Satisfied by the directory
// repository.
type FacultySource interface {
	FacultyByID(ctx context.Context, id int) (directory.Faculty, error)
}

// Queries is the per-transaction query surface of the appointment store.
type Queries interface {
	ActiveCountByFacultyIP(ctx context.Context, facultyID int, ip string) (int, error)
	ActiveCountByFacultyEmail(ctx context.Context, facultyID int, email string) (int, error)
	ActiveCountByIPEmail(ctx context.Context, ip, email string) (int, error)
	Insert(ctx context.Context, appt Appointment) (Appointment, error)
}

// Repository runs a function against Queries inside one transaction, so the
// quota counts and the insert cannot interleave with a concurrent booking.
type Repository interface {
	InTx(ctx context.Context, fn func(q Queries) error) error
}

// Limits are the active-appointment quotas enforced per submission.
type Limits struct {
	PerFaculty int // per (faculty, IP) and per (faculty, email)
	Total      int // per (IP, email) across all faculty
}

// DefaultLimits matches the deployed rules: one active appointment per
// faculty per device/email, five in total.
var DefaultLimits = Limits{PerFaculty: 1, Total: 5}

// Service validates booking submissions and persists accepted ones.
type Service struct {
	faculty     FacultySource
	repo        Repository
	emailDomain string
	phoneRe     *regexp.Regexp
	phonePrefix string
	limits      Limits
	logger      *zap.Logger
}

// NewService creates a booking service. emailDomain is the required suffix
// for student emails and phonePrefix the required contact-number prefix.
func NewService(faculty FacultySource, repo Repository, emailDomain, phonePrefix string, limits Limits, logger *zap.Logger) *Service {
	if limits.PerFaculty <= 0 {
		limits.PerFaculty = DefaultLimits.PerFaculty
	}
	if limits.Total <= 0 {
		limits.Total = DefaultLimits.Total
	}
	return &Service{
		faculty:     faculty,
		repo:        repo,
		emailDomain: strings.ToLower(emailDomain),
		phoneRe:     regexp.MustCompile(`^` + regexp.QuoteMeta(phonePrefix) + `[0-9]{10}$`),
		phonePrefix: phonePrefix,
		limits:      limits,
		logger:      logger,
	}
}

// Book checks a submission against the format rules and the quota limits and
// inserts a pending appointment when everything passes. pageFacultyID is the
// faculty id from the URL the form was rendered for; a mismatch with the form
// body is a hard reject.
func (s *Service) Book(ctx context.Context, pageFacultyID int, req Request, ip string) (Appointment, error) {
	if req.FacultyID != pageFacultyID {
		metrics.Bookings.WithLabelValues("rejected_validation").Inc()
		return Appointment{}, ErrFacultyMismatch
	}

	fac, err := s.faculty.FacultyByID(ctx, pageFacultyID)
	if err != nil {
		return Appointment{}, err
	}

	if errs := s.validate(req, fac); len(errs) > 0 {
		metrics.Bookings.WithLabelValues("rejected_validation").Inc()
		return Appointment{}, errs
	}

	appt := Appointment{
		FacultyID:         req.FacultyID,
		StudentName:       strings.TrimSpace(req.StudentName),
		StudentDepartment: strings.TrimSpace(req.StudentDepartment),
		Subgroup:          strings.TrimSpace(req.Subgroup),
		Reason:            req.Reason,
		StudentEmail:      strings.ToLower(strings.TrimSpace(req.StudentEmail)),
		ContactNumber:     strings.TrimSpace(req.ContactNumber),
		SlotTime:          req.SlotTime,
		IPAddress:         ip,
		Status:            StatusPending,
	}

	err = s.repo.InTx(ctx, func(q Queries) error {
		if err := s.checkQuotas(ctx, q, appt); err != nil {
			return err
		}
		inserted, err := q.Insert(ctx, appt)
		if err != nil {
			return err
		}
		appt = inserted
		return nil
	})
	if err != nil {
		var quota *QuotaError
		if errors.As(err, &quota) {
			metrics.Bookings.WithLabelValues("rejected_quota").Inc()
		} else {
			metrics.Bookings.WithLabelValues("error").Inc()
		}
		return Appointment{}, err
	}

	metrics.Bookings.WithLabelValues("accepted").Inc()
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.Int("faculty_id", appt.FacultyID),
		zap.String("slot_time", appt.SlotTime),
	)
	return appt, nil
}

// validate runs the whole format pass and reports every failure it finds.
func (s *Service) validate(req Request, fac directory.Faculty) FieldErrors {
	var errs FieldErrors

	if strings.TrimSpace(req.StudentName) == "" {
		errs = append(errs, "student name is required")
	}
	if strings.TrimSpace(req.StudentDepartment) == "" {
		errs = append(errs, "department is required")
	}
	if strings.TrimSpace(req.Subgroup) == "" {
		errs = append(errs, "subgroup is required")
	}

	email := strings.ToLower(strings.TrimSpace(req.StudentEmail))
	if _, err := mail.ParseAddress(email); err != nil || !strings.HasSuffix(email, s.emailDomain) {
		errs = append(errs, fmt.Sprintf("student email is invalid or must end with %s", s.emailDomain))
	}

	if !s.phoneRe.MatchString(strings.TrimSpace(req.ContactNumber)) {
		errs = append(errs, fmt.Sprintf("contact number must be %s followed by 10 digits", s.phonePrefix))
	}

	switch {
	case req.SlotTime == "":
		errs = append(errs, "appointment time is required")
	case !slotTimePattern.MatchString(req.SlotTime):
		errs = append(errs, "appointment time is invalid, use HH:MM format")
	case req.SlotTime < fac.VisitingStart || req.SlotTime > fac.VisitingEnd:
		// Zero-padded HH:MM values compare correctly as strings.
		errs = append(errs, fmt.Sprintf("the selected time (%s) is outside the faculty's visiting hours: %s to %s",
			req.SlotTime, fac.VisitingStart, fac.VisitingEnd))
	}

	if !allowedReasons[req.Reason] {
		errs = append(errs, "please choose a valid reason")
	}

	return errs
}

// checkQuotas enforces the three active-appointment limits in order,
// stopping at the first violation.
func (s *Service) checkQuotas(ctx context.Context, q Queries, appt Appointment) error {
	n, err := q.ActiveCountByFacultyIP(ctx, appt.FacultyID, appt.IPAddress)
	if err != nil {
		return err
	}
	if n >= s.limits.PerFaculty {
		return quotaErrorf("attempts exceeded for now, try again later: an active appointment from this address already exists for this faculty member")
	}

	n, err = q.ActiveCountByFacultyEmail(ctx, appt.FacultyID, appt.StudentEmail)
	if err != nil {
		return err
	}
	if n >= s.limits.PerFaculty {
		return quotaErrorf("attempts exceeded for now, try again later: an active appointment with this email already exists for this faculty member")
	}

	n, err = q.ActiveCountByIPEmail(ctx, appt.IPAddress, appt.StudentEmail)
	if err != nil {
		return err
	}
	if n >= s.limits.Total {
		return quotaErrorf(fmt.Sprintf("appointment limit reached: %d active appointments across all faculty from this email/device combination", n))
	}

	return nil
}
