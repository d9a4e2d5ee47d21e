package academic_test

import (
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nmutua/gradepoint/core/academic"
	"github.com/nmutua/gradepoint/core/user"
)

func Test_Transcript(t *testing.T) {
	usr := user.User{
		Email: "t@test.test",
		Semesters: []user.Semester{
			{
				ID:           "s1",
				SemesterName: "Fall 2025",
				Courses: []user.Course{
					{ID: "c1", CourseName: "Calculus I", Credits: 4, Grade: "A"},
					{ID: "c2", CourseName: "Physics", Credits: 2, Grade: "B+"},
				},
			},
			{
				ID:           "s2",
				SemesterName: "Spring 2026",
				Courses: []user.Course{
					{ID: "c3", CourseName: "Chemistry", Credits: 3, Grade: "C"},
				},
			},
		},
	}

	buf, filename, err := academic.Transcript(testTable, usr)
	if err != nil {
		t.Fatalf("Transcript(): %v", err)
	}
	wantName := "transcript-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	if filename != wantName {
		t.Errorf("filename = %q; want %q", filename, wantName)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("excelize.OpenReader(): %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Transcript")
	if err != nil {
		t.Fatalf("GetRows(): %v", err)
	}

	var flat []string
	for _, row := range rows {
		flat = append(flat, row...)
	}
	content := strings.Join(flat, "|")

	for _, want := range []string{
		"Academic Transcript", "t@test.test",
		"Fall 2025", "Calculus I", "Physics",
		"Spring 2026", "Chemistry",
		"SGPA", "3.77", "2.00",
		"Total Credits", "9",
		"CGPA", "3.18",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("transcript missing %q", want)
		}
	}
}

func Test_Transcript_emptyAggregate(t *testing.T) {
	usr := user.User{Email: "t@test.test", Semesters: []user.Semester{}}

	buf, _, err := academic.Transcript(testTable, usr)
	if err != nil {
		t.Fatalf("Transcript(): %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("excelize.OpenReader(): %v", err)
	}
	defer f.Close()

	cgpa, err := f.GetCellValue("Transcript", "B5")
	if err != nil {
		t.Fatalf("GetCellValue(): %v", err)
	}
	if cgpa != "0.00" {
		t.Errorf("CGPA cell = %q; want %q", cgpa, "0.00")
	}
}
