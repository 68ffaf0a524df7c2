package directory

import (
	"context"
	"errors"
	"strings"
)

// ErrMissingSelection reports that the student portal flow was asked for
// courses without both a department and a semester.
var ErrMissingSelection = errors.New("department and semester are required")

// Repo is the query surface the service needs; satisfied by *Repository.
type Repo interface {
	Departments(ctx context.Context) ([]Department, error)
	DepartmentByID(ctx context.Context, id int) (Department, error)
	CoursesByDepartment(ctx context.Context, departmentID int) ([]Course, error)
	DepartmentIDByName(ctx context.Context, name string) (int, error)
	CoursesForSemester(ctx context.Context, departmentID int, semester string) ([]Course, error)
	ListFaculty(ctx context.Context, searchName string) ([]Faculty, error)
	ExpertsForCourse(ctx context.Context, departmentID int, courseName, courseCode string) ([]Faculty, error)
	FacultyByID(ctx context.Context, id int) (Faculty, error)
}

// Service answers the browse/search queries of the public site.
type Service struct {
	repo Repo
}

// NewService creates a directory service.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Departments lists all departments.
func (s *Service) Departments(ctx context.Context) ([]Department, error) {
	return s.repo.Departments(ctx)
}

// DepartmentCourses returns a department with its courses grouped by semester.
func (s *Service) DepartmentCourses(ctx context.Context, departmentID int) (Department, []SemesterCourses, error) {
	dept, err := s.repo.DepartmentByID(ctx, departmentID)
	if err != nil {
		return Department{}, nil, err
	}
	courses, err := s.repo.CoursesByDepartment(ctx, departmentID)
	if err != nil {
		return Department{}, nil, err
	}
	return dept, groupBySemester(courses), nil
}

// CoursesForSelection resolves the student portal's department-name/semester
// pair to a course list.
func (s *Service) CoursesForSelection(ctx context.Context, departmentName, semester string) ([]Course, error) {
	departmentName = strings.TrimSpace(departmentName)
	semester = strings.TrimSpace(semester)
	if departmentName == "" || semester == "" {
		return nil, ErrMissingSelection
	}
	deptID, err := s.repo.DepartmentIDByName(ctx, departmentName)
	if err != nil {
		return nil, err
	}
	return s.repo.CoursesForSemester(ctx, deptID, semester)
}

// ListFaculty lists faculty, optionally filtered by name.
func (s *Service) ListFaculty(ctx context.Context, searchName string) ([]Faculty, error) {
	return s.repo.ListFaculty(ctx, searchName)
}

// ExpertsForCourse finds the faculty qualified to be booked for a course.
func (s *Service) ExpertsForCourse(ctx context.Context, departmentID int, courseName, courseCode string) ([]Faculty, error) {
	if strings.TrimSpace(courseName) == "" || departmentID <= 0 {
		return nil, ErrMissingSelection
	}
	if _, err := s.repo.DepartmentByID(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.repo.ExpertsForCourse(ctx, departmentID, courseName, courseCode)
}

// FacultyByID returns a single profile.
func (s *Service) FacultyByID(ctx context.Context, id int) (Faculty, error) {
	return s.repo.FacultyByID(ctx, id)
}

func groupBySemester(courses []Course) []SemesterCourses {
	var grouped []SemesterCourses
	for _, c := range courses {
		if n := len(grouped); n > 0 && grouped[n-1].Semester == c.Semester {
			grouped[n-1].Courses = append(grouped[n-1].Courses, c)
			continue
		}
		grouped = append(grouped, SemesterCourses{Semester: c.Semester, Courses: []Course{c}})
	}
	return grouped
}
