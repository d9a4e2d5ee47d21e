// Package academic implements semester and course bookkeeping on the
// User aggregate.
//
// All operations follow the same protocol: take the caller's already
// resolved aggregate, locate the target by id, apply one in-memory
// change and write the whole aggregate back. Course lookups are always
// scoped through the declared parent semester and never search
// globally; course ids are only unique within their parent, so a
// mismatched (semesterId, courseId) pair must fail with NotFound
// rather than touch a sibling semester's course.
package academic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nmutua/gradepoint/core/gpa"
	"github.com/nmutua/gradepoint/core/user"
)

var (
	// errors
	ErrSemesterNotFound = errors.New("semester not found")
	ErrCourseNotFound   = errors.New("course not found")
)

type (
	Service interface {
		GetSemester(usr user.User, semesterID string) (user.Semester, error)
		AddSemester(ctx context.Context, usr user.User, ns NewSemester) (user.Semester, error)
		RenameSemester(ctx context.Context, usr user.User, rs RenameSemester) (user.Semester, error)
		DeleteSemester(ctx context.Context, usr user.User, ds DeleteSemester) error
		AddCourse(ctx context.Context, usr user.User, nc NewCourse) (user.Course, error)
		UpdateCourse(ctx context.Context, usr user.User, uc UpdateCourse) (user.Course, error)
		DeleteCourse(ctx context.Context, usr user.User, dc DeleteCourse) error
		Summary(usr user.User) Summary
		GradeTable() gpa.Table
	}

	service struct {
		repo  user.Repository
		table gpa.Table
	}
)

func NewService(repo user.Repository, table gpa.Table) Service {
	return &service{repo: repo, table: table}
}

func (svc *service) GradeTable() gpa.Table {
	return svc.table
}

// GetSemester finds one semester in the aggregate by id.
func (svc *service) GetSemester(usr user.User, semesterID string) (user.Semester, error) {
	for _, sem := range usr.Semesters {
		if sem.ID == semesterID {
			return sem, nil
		}
	}
	return user.Semester{}, ErrSemesterNotFound
}

// AddSemester appends a new empty semester to the end of the user's
// list; insertion order is display order.
func (svc *service) AddSemester(ctx context.Context, usr user.User, ns NewSemester) (user.Semester, error) {
	usr = usr.Clone()
	sem := user.Semester{
		ID:           uuid.New().String(),
		SemesterName: ns.SemesterName,
		Courses:      []user.Course{},
	}
	usr.Semesters = append(usr.Semesters, sem)
	if err := svc.save(ctx, usr); err != nil {
		return user.Semester{}, err
	}
	return sem, nil
}

func (svc *service) RenameSemester(ctx context.Context, usr user.User, rs RenameSemester) (user.Semester, error) {
	usr = usr.Clone()
	sem := findSemester(&usr, rs.SemesterID)
	if sem == nil {
		return user.Semester{}, ErrSemesterNotFound
	}
	sem.SemesterName = rs.NewSemesterName
	if err := svc.save(ctx, usr); err != nil {
		return user.Semester{}, err
	}
	return *sem, nil
}

// DeleteSemester removes the semester and, with it, every course it
// owns; courses have no life outside their parent.
func (svc *service) DeleteSemester(ctx context.Context, usr user.User, ds DeleteSemester) error {
	usr = usr.Clone()
	for i, sem := range usr.Semesters {
		if sem.ID == ds.SemesterID {
			usr.Semesters = append(usr.Semesters[:i], usr.Semesters[i+1:]...)
			return svc.save(ctx, usr)
		}
	}
	return ErrSemesterNotFound
}

func (svc *service) AddCourse(ctx context.Context, usr user.User, nc NewCourse) (user.Course, error) {
	usr = usr.Clone()
	sem := findSemester(&usr, nc.SemesterID)
	if sem == nil {
		return user.Course{}, ErrSemesterNotFound
	}
	crs := user.Course{
		ID:         uuid.New().String(),
		CourseName: nc.CourseName,
		Credits:    nc.Credits,
		Grade:      nc.Grade,
	}
	sem.Courses = append(sem.Courses, crs)
	if err := svc.save(ctx, usr); err != nil {
		return user.Course{}, err
	}
	return crs, nil
}

func (svc *service) UpdateCourse(ctx context.Context, usr user.User, uc UpdateCourse) (user.Course, error) {
	usr = usr.Clone()
	sem := findSemester(&usr, uc.SemesterID)
	if sem == nil {
		return user.Course{}, ErrSemesterNotFound
	}
	crs := findCourse(sem, uc.CourseID)
	if crs == nil {
		return user.Course{}, ErrCourseNotFound
	}
	if uc.CourseName != "" {
		crs.CourseName = uc.CourseName
	}
	if uc.Credits != 0 {
		crs.Credits = uc.Credits
	}
	if uc.Grade != "" {
		crs.Grade = uc.Grade
	}
	if err := svc.save(ctx, usr); err != nil {
		return user.Course{}, err
	}
	return *crs, nil
}

func (svc *service) DeleteCourse(ctx context.Context, usr user.User, dc DeleteCourse) error {
	usr = usr.Clone()
	sem := findSemester(&usr, dc.SemesterID)
	if sem == nil {
		return ErrSemesterNotFound
	}
	for i, crs := range sem.Courses {
		if crs.ID == dc.CourseID {
			sem.Courses = append(sem.Courses[:i], sem.Courses[i+1:]...)
			return svc.save(ctx, usr)
		}
	}
	return ErrCourseNotFound
}

// Summary computes every figure the dashboard shows. The CGPA is
// credit-weighted over the flattened course list, not an average of
// the per-semester SGPAs.
func (svc *service) Summary(usr user.User) Summary {
	all := make([]gpa.Course, 0)
	semesters := make([]SemesterSummary, 0, len(usr.Semesters))

	for _, sem := range usr.Semesters {
		courses := engineCourses(sem.Courses)
		all = append(all, courses...)
		semesters = append(semesters, SemesterSummary{
			ID:           sem.ID,
			SemesterName: sem.SemesterName,
			SGPA:         gpa.ComputeAverage(svc.table, courses),
			Credits:      gpa.TotalCredits(courses),
		})
	}

	return Summary{
		CGPA:              gpa.ComputeAverage(svc.table, all),
		TotalCredits:      gpa.TotalCredits(all),
		Semesters:         semesters,
		GradeDistribution: gpa.Distribution(all),
	}
}

// save stamps and persists the whole aggregate. There is no
// finer-grained write: two concurrent mutations of the same user race
// at document granularity and the last write wins.
func (svc *service) save(ctx context.Context, usr user.User) error {
	usr.UpdatedAt = time.Now().UTC()
	_, err := svc.repo.UpdateUser(ctx, usr)
	return err
}

func findSemester(usr *user.User, id string) *user.Semester {
	for i := range usr.Semesters {
		if usr.Semesters[i].ID == id {
			return &usr.Semesters[i]
		}
	}
	return nil
}

func findCourse(sem *user.Semester, id string) *user.Course {
	for i := range sem.Courses {
		if sem.Courses[i].ID == id {
			return &sem.Courses[i]
		}
	}
	return nil
}

func engineCourses(courses []user.Course) []gpa.Course {
	out := make([]gpa.Course, len(courses))
	for i, c := range courses {
		out[i] = gpa.Course{Grade: c.Grade, Credits: c.Credits}
	}
	return out
}
