package directory

// Department is static reference data.
type Department struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Course belongs to a department and a semester.
type Course struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Semester string `json:"semester"`
}

// SemesterCourses groups a department's courses for display.
type SemesterCourses struct {
	Semester string   `json:"semester"`
	Courses  []Course `json:"courses"`
}

// Faculty is a directory listing entry. VisitingStart/VisitingEnd are the
// student visiting hours as zero-padded HH:MM strings.
type Faculty struct {
	ID            int    `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Department    string `json:"department"`
	Expertise     string `json:"expertise"`
	ImageURL      string `json:"image_url,omitempty"`
	Email         string `json:"email"`
	VisitingStart string `json:"visiting_start"`
	VisitingEnd   string `json:"visiting_end"`
}

// FullName joins the stored name parts.
func (f Faculty) FullName() string {
	return f.FirstName + " " + f.LastName
}
