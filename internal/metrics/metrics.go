package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Bookings counts appointment submissions by outcome
	// (accepted, rejected_validation, rejected_quota, error).
	Bookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facultypool_bookings_total",
		Help: "Appointment booking submissions by outcome.",
	}, []string{"outcome"})

	// Logins counts faculty login attempts by result (ok, denied, error).
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facultypool_logins_total",
		Help: "Faculty login attempts by result.",
	}, []string{"result"})

	// AttendanceMarks counts attendance rows written, by status.
	AttendanceMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "facultypool_attendance_marks_total",
		Help: "Attendance marks recorded, by status.",
	}, []string{"status"})
)
