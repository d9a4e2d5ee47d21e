package academic

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/nmutua/gradepoint/core/gpa"
	"github.com/nmutua/gradepoint/core/user"
)

const transcriptSheet = "Transcript"

// Transcript renders the user's full academic record as an xlsx
// workbook: one block per semester (courses, credits, grade, points)
// followed by that semester's SGPA, closed by the cumulative figures.
// Returns the file content and a suggested filename.
func Transcript(table gpa.Table, usr user.User) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", transcriptSheet)

	set := func(col string, row int, value interface{}) error {
		return f.SetCellValue(transcriptSheet, fmt.Sprintf("%s%d", col, row), value)
	}

	_ = f.SetColWidth(transcriptSheet, "A", "A", 36)
	_ = f.SetColWidth(transcriptSheet, "B", "D", 12)

	row := 1
	if err := set("A", row, "Academic Transcript"); err != nil {
		return nil, "", errors.Wrap(err, "writing title")
	}
	row++
	_ = set("A", row, usr.Email)
	row += 2

	all := make([]gpa.Course, 0)
	for _, sem := range usr.Semesters {
		_ = set("A", row, sem.SemesterName)
		row++
		_ = set("A", row, "Course")
		_ = set("B", row, "Credits")
		_ = set("C", row, "Grade")
		_ = set("D", row, "Points")
		row++

		for _, crs := range sem.Courses {
			_ = set("A", row, crs.CourseName)
			_ = set("B", row, crs.Credits)
			_ = set("C", row, crs.Grade)
			_ = set("D", row, table.PointsOf(crs.Grade))
			row++
		}

		courses := engineCourses(sem.Courses)
		all = append(all, courses...)
		_ = set("A", row, "SGPA")
		_ = set("B", row, gpa.ComputeAverage(table, courses))
		row += 2
	}

	_ = set("A", row, "Total Credits")
	_ = set("B", row, gpa.TotalCredits(all))
	row++
	_ = set("A", row, "CGPA")
	_ = set("B", row, gpa.ComputeAverage(table, all))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", errors.Wrap(err, "writing workbook")
	}
	filename := fmt.Sprintf("transcript-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	return buf, filename, nil
}
