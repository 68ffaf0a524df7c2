package directory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ErrNotFound reports a missing department, course, or faculty row.
var ErrNotFound = errors.New("not found")

// Repository runs the read-only directory queries against Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Departments returns all departments ordered by id.
func (r *Repository) Departments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, department_name FROM departments ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// DepartmentByID returns one department or ErrNotFound.
func (r *Repository) DepartmentByID(ctx context.Context, id int) (Department, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, department_name FROM departments WHERE id = $1
	`, id)
	var d Department
	if err := row.Scan(&d.ID, &d.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Department{}, ErrNotFound
		}
		return Department{}, err
	}
	return d, nil
}

// CoursesByDepartment returns a department's courses ordered by semester then code.
func (r *Repository) CoursesByDepartment(ctx context.Context, departmentID int) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT course_code, course_name, semester
		FROM courses
		WHERE department_id = $1
		ORDER BY semester ASC, course_code ASC
	`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.Code, &c.Name, &c.Semester); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// DepartmentIDByName resolves a department id from a (possibly partial) name.
func (r *Repository) DepartmentIDByName(ctx context.Context, name string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id FROM departments WHERE department_name ILIKE $1 ORDER BY id ASC LIMIT 1
	`, "%"+strings.TrimSpace(name)+"%")
	var id int
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// CoursesForSemester returns the courses of a department for one semester.
func (r *Repository) CoursesForSemester(ctx context.Context, departmentID int, semester string) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT course_code, course_name, semester
		FROM courses
		WHERE department_id = $1 AND semester = $2
		ORDER BY course_code ASC
	`, departmentID, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.Code, &c.Name, &c.Semester); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

const facultyColumns = `
	faculty_id, first_name, last_name, department, expertise, image_url, email,
	to_char(svh_start, 'HH24:MI'), to_char(svh_end, 'HH24:MI')
`

func scanFaculty(scan func(dest ...any) error) (Faculty, error) {
	var f Faculty
	err := scan(&f.ID, &f.FirstName, &f.LastName, &f.Department, &f.Expertise,
		&f.ImageURL, &f.Email, &f.VisitingStart, &f.VisitingEnd)
	return f, err
}

// ListFaculty returns all faculty, optionally filtered by a name search that
// matches "first last" or the last name alone, case-insensitively.
func (r *Repository) ListFaculty(ctx context.Context, searchName string) ([]Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculty`
	args := []any{}
	if s := strings.TrimSpace(searchName); s != "" {
		query += ` WHERE (first_name || ' ' || last_name) ILIKE $1 OR last_name ILIKE $1`
		args = append(args, "%"+s+"%")
	}
	query += ` ORDER BY department ASC, last_name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Faculty
	for rows.Next() {
		f, err := scanFaculty(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

// ExpertsForCourse returns faculty in a department whose expertise matches the
// course name or whose taught-course codes match the course code.
func (r *Repository) ExpertsForCourse(ctx context.Context, departmentID int, courseName, courseCode string) ([]Faculty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+facultyColumns+`
		FROM faculty
		WHERE department_id = $1
		  AND (expertise ILIKE $2 OR taught_courses ILIKE $3)
		ORDER BY first_name ASC
	`, departmentID, expertisePattern(courseName), "%"+strings.TrimSpace(courseCode)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Faculty
	for rows.Next() {
		f, err := scanFaculty(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

// FacultyByID returns a single faculty profile or ErrNotFound.
func (r *Repository) FacultyByID(ctx context.Context, id int) (Faculty, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+facultyColumns+` FROM faculty WHERE faculty_id = $1
	`, id)
	f, err := scanFaculty(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Faculty{}, ErrNotFound
		}
		return Faculty{}, err
	}
	return f, nil
}

// expertisePattern widens a course name into an ILIKE pattern. Punctuation
// that course names carry but expertise blurbs usually drop is collapsed
// into wildcards so partial matches still hit.
func expertisePattern(courseName string) string {
	repl := strings.NewReplacer("(", "%", ")", "%", "&", "%", "/", "%", "-", "%")
	return "%" + repl.Replace(strings.TrimSpace(courseName)) + "%"
}
