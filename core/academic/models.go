package academic

import (
	"github.com/nmutua/gradepoint/core"
)

// Request payloads carry the identifiers in the body, matching the
// dashboard's wire contract.

// NewSemester contains information needed to create a Semester.
type NewSemester struct {
	SemesterName string `json:"semesterName" validate:"required"`
}

func (ns *NewSemester) Validate() error {
	ns.SemesterName = core.CleanString(ns.SemesterName)
	return core.Validate.Struct(ns)
}

// RenameSemester identifies a Semester and carries its new name.
type RenameSemester struct {
	SemesterID      string `json:"semesterId" validate:"required"`
	NewSemesterName string `json:"newSemesterName" validate:"required"`
}

func (rs *RenameSemester) Validate() error {
	rs.NewSemesterName = core.CleanString(rs.NewSemesterName)
	return core.Validate.Struct(rs)
}

// DeleteSemester identifies a Semester to remove (courses cascade).
type DeleteSemester struct {
	SemesterID string `json:"semesterId" validate:"required"`
}

func (ds *DeleteSemester) Validate() error {
	return core.Validate.Struct(ds)
}

// NewCourse contains information needed to create a Course within its
// parent Semester.
type NewCourse struct {
	SemesterID string `json:"semesterId" validate:"required"`
	CourseName string `json:"courseName" validate:"required"`
	Credits    int    `json:"credits" validate:"required,min=1"`
	Grade      string `json:"grade" validate:"required"`
}

func (nc *NewCourse) Validate() error {
	nc.CourseName = core.CleanString(nc.CourseName)
	return core.Validate.Struct(nc)
}

// UpdateCourse identifies a Course through its parent Semester and
// carries the fields to overwrite. Zero-valued fields are left
// untouched, so a request may change just the grade.
type UpdateCourse struct {
	SemesterID string `json:"semesterId" validate:"required"`
	CourseID   string `json:"courseId" validate:"required"`
	CourseName string `json:"courseName"`
	Credits    int    `json:"credits" validate:"omitempty,min=1"`
	Grade      string `json:"grade"`
}

func (uc *UpdateCourse) Validate() error {
	uc.CourseName = core.CleanString(uc.CourseName)
	return core.Validate.Struct(uc)
}

// DeleteCourse identifies a Course through its parent Semester.
type DeleteCourse struct {
	SemesterID string `json:"semesterId" validate:"required"`
	CourseID   string `json:"courseId" validate:"required"`
}

func (dc *DeleteCourse) Validate() error {
	return core.Validate.Struct(dc)
}

// SemesterSummary is one row of the dashboard's SGPA trend series.
type SemesterSummary struct {
	ID           string `json:"id"`
	SemesterName string `json:"semesterName"`
	SGPA         string `json:"sgpa"`
	Credits      int    `json:"credits"`
}

// Summary feeds the dashboard's stat cards and charts.
type Summary struct {
	CGPA              string            `json:"cgpa"`
	TotalCredits      int               `json:"totalCredits"`
	Semesters         []SemesterSummary `json:"semesters"`
	GradeDistribution map[string]int    `json:"gradeDistribution"`
}
