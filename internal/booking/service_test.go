package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"facultypool/internal/directory"
)

type stubFaculty struct {
	fac directory.Faculty
	err error
}

func (s *stubFaculty) FacultyByID(ctx context.Context, id int) (directory.Faculty, error) {
	return s.fac, s.err
}

// stubRepo counts quota queries against fixed values and records inserts.
type stubRepo struct {
	byFacultyIP    int
	byFacultyEmail int
	byIPEmail      int
	inserted       []Appointment
}

func (r *stubRepo) InTx(ctx context.Context, fn func(q Queries) error) error {
	return fn(r)
}

func (r *stubRepo) ActiveCountByFacultyIP(ctx context.Context, facultyID int, ip string) (int, error) {
	return r.byFacultyIP, nil
}

func (r *stubRepo) ActiveCountByFacultyEmail(ctx context.Context, facultyID int, email string) (int, error) {
	return r.byFacultyEmail, nil
}

func (r *stubRepo) ActiveCountByIPEmail(ctx context.Context, ip, email string) (int, error) {
	return r.byIPEmail, nil
}

func (r *stubRepo) Insert(ctx context.Context, appt Appointment) (Appointment, error) {
	appt.ID = "appt-1"
	r.inserted = append(r.inserted, appt)
	return appt, nil
}

func testFaculty() directory.Faculty {
	return directory.Faculty{
		ID:            7,
		FirstName:     "Asha",
		LastName:      "Verma",
		VisitingStart: "10:00",
		VisitingEnd:   "16:00",
	}
}

func validRequest() Request {
	return Request{
		FacultyID:         7,
		StudentName:       "Ravi Kumar",
		StudentDepartment: "CSED",
		Subgroup:          "3CO11",
		Reason:            "doubt related",
		StudentEmail:      "rkumar_be22@thapar.edu",
		ContactNumber:     "+919876543210",
		SlotTime:          "11:30",
	}
}

func newTestService(repo *stubRepo) *Service {
	return NewService(&stubFaculty{fac: testFaculty()}, repo, "@thapar.edu", "+91", DefaultLimits, zap.NewNop())
}

func TestBookAccepted(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	appt, err := svc.Book(context.Background(), 7, validRequest(), "10.1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.ID == "" {
		t.Error("expected an id on the returned appointment")
	}
	if appt.Status != StatusPending {
		t.Errorf("status = %q, want %q", appt.Status, StatusPending)
	}
	if appt.IPAddress != "10.1.2.3" {
		t.Errorf("ip = %q, want submitter address", appt.IPAddress)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d rows, want 1", len(repo.inserted))
	}
}

func TestBookFacultyMismatch(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	req := validRequest()
	req.FacultyID = 8

	_, err := svc.Book(context.Background(), 7, req, "10.1.2.3")
	if !errors.Is(err, ErrFacultyMismatch) {
		t.Fatalf("err = %v, want ErrFacultyMismatch", err)
	}
	if len(repo.inserted) != 0 {
		t.Error("mismatched request must not be inserted")
	}
}

func TestBookVisitingHours(t *testing.T) {
	// Visiting hours are 10:00 to 16:00, both ends bookable.
	cases := []struct {
		slot string
		ok   bool
	}{
		{"10:00", true},
		{"16:00", true},
		{"09:59", false},
		{"16:01", false},
		{"12:15", true},
		{"9:59", false},  // not zero padded
		{"25:00", false}, // not a clock time
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.slot, func(t *testing.T) {
			svc := newTestService(&stubRepo{})
			req := validRequest()
			req.SlotTime = tc.slot

			_, err := svc.Book(context.Background(), 7, req, "10.1.2.3")
			if tc.ok && err != nil {
				t.Fatalf("slot %q rejected: %v", tc.slot, err)
			}
			if !tc.ok {
				var fieldErrs FieldErrors
				if !errors.As(err, &fieldErrs) {
					t.Fatalf("slot %q: err = %v, want field errors", tc.slot, err)
				}
			}
		})
	}
}

func TestBookEmailValidation(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"rkumar_be22@thapar.edu", true},
		{"RKumar_BE22@Thapar.edu", true}, // lowercased before checking
		{"someone@gmail.com", false},
		{"not-an-email", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			svc := newTestService(&stubRepo{})
			req := validRequest()
			req.StudentEmail = tc.email

			_, err := svc.Book(context.Background(), 7, req, "10.1.2.3")
			if tc.ok && err != nil {
				t.Fatalf("email %q rejected: %v", tc.email, err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("email %q accepted", tc.email)
			}
		})
	}
}

func TestBookPhoneValidation(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"+919876543210", true},
		{"+91987654321", false},   // 9 digits
		{"+9198765432100", false}, // 11 digits
		{"9876543210", false},     // missing prefix
		{"+91abcdefghij", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			svc := newTestService(&stubRepo{})
			req := validRequest()
			req.ContactNumber = tc.phone

			_, err := svc.Book(context.Background(), 7, req, "10.1.2.3")
			if tc.ok && err != nil {
				t.Fatalf("phone %q rejected: %v", tc.phone, err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("phone %q accepted", tc.phone)
			}
		})
	}
}

func TestBookReasonEnum(t *testing.T) {
	for _, reason := range []string{"paper related", "doubt related", "project related", "other"} {
		t.Run(reason, func(t *testing.T) {
			svc := newTestService(&stubRepo{})
			req := validRequest()
			req.Reason = reason
			if _, err := svc.Book(context.Background(), 7, req, "10.1.2.3"); err != nil {
				t.Fatalf("reason %q rejected: %v", reason, err)
			}
		})
	}

	t.Run("unknown reason", func(t *testing.T) {
		svc := newTestService(&stubRepo{})
		req := validRequest()
		req.Reason = "vibes"
		if _, err := svc.Book(context.Background(), 7, req, "10.1.2.3"); err == nil {
			t.Fatal("unknown reason accepted")
		}
	})
}

func TestBookCollectsAllFieldErrors(t *testing.T) {
	svc := newTestService(&stubRepo{})

	req := Request{FacultyID: 7} // everything else missing
	_, err := svc.Book(context.Background(), 7, req, "10.1.2.3")

	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("err = %v, want field errors", err)
	}
	// name, department, subgroup, email, phone, slot, reason
	if len(fieldErrs) != 7 {
		t.Errorf("collected %d errors, want 7: %v", len(fieldErrs), fieldErrs)
	}
}

func TestBookQuotaPerFacultyIP(t *testing.T) {
	repo := &stubRepo{byFacultyIP: 1}
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), 7, validRequest(), "10.1.2.3")
	var quota *QuotaError
	if !errors.As(err, &quota) {
		t.Fatalf("err = %v, want quota error", err)
	}
	if !strings.Contains(quota.Error(), "this address") {
		t.Errorf("message %q should name the address rule", quota.Error())
	}
	if len(repo.inserted) != 0 {
		t.Error("over-quota request must not be inserted")
	}
}

func TestBookQuotaPerFacultyEmail(t *testing.T) {
	repo := &stubRepo{byFacultyEmail: 1}
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), 7, validRequest(), "10.1.2.3")
	var quota *QuotaError
	if !errors.As(err, &quota) {
		t.Fatalf("err = %v, want quota error", err)
	}
	if !strings.Contains(quota.Error(), "this email") {
		t.Errorf("message %q should name the email rule", quota.Error())
	}
}

func TestBookQuotaTotal(t *testing.T) {
	t.Run("under the limit", func(t *testing.T) {
		repo := &stubRepo{byIPEmail: 4}
		svc := newTestService(repo)
		if _, err := svc.Book(context.Background(), 7, validRequest(), "10.1.2.3"); err != nil {
			t.Fatalf("fourth active appointment should be bookable: %v", err)
		}
	})

	t.Run("at the limit", func(t *testing.T) {
		repo := &stubRepo{byIPEmail: 5}
		svc := newTestService(repo)
		_, err := svc.Book(context.Background(), 7, validRequest(), "10.1.2.3")
		var quota *QuotaError
		if !errors.As(err, &quota) {
			t.Fatalf("err = %v, want quota error", err)
		}
		if len(repo.inserted) != 0 {
			t.Error("over-quota request must not be inserted")
		}
	})
}

func TestBookNormalizesFields(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	req := validRequest()
	req.StudentName = "  Ravi Kumar  "
	req.StudentEmail = "RKumar_BE22@Thapar.edu"

	appt, err := svc.Book(context.Background(), 7, req, "10.1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.StudentName != "Ravi Kumar" {
		t.Errorf("name = %q, want trimmed", appt.StudentName)
	}
	if appt.StudentEmail != "rkumar_be22@thapar.edu" {
		t.Errorf("email = %q, want lowercased", appt.StudentEmail)
	}
}
