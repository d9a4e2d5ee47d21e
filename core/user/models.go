package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/nmutua/gradepoint/core"
)

// Course is owned exclusively by one Semester. Its id is unique within
// the parent semester's course list only, never globally.
type Course struct {
	ID         string `json:"id"`
	CourseName string `json:"courseName"`
	Credits    int    `json:"credits"`
	Grade      string `json:"grade"`
}

// Semester is owned exclusively by one User. Insertion order is display
// order; there is no explicit ranking field.
type Semester struct {
	ID           string   `json:"id"`
	SemesterName string   `json:"semesterName"`
	Courses      []Course `json:"courses"`
}

// User is the root aggregate and the only independently persisted
// entity. Semesters and courses are reachable only through it and are
// read and written as part of the whole document.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	IsActive     *bool      `json:"is_active"`
	PasswordHash []byte     `json:"-"`
	Semesters    []Semester `json:"semesters"`
	CreatedAt    time.Time  `json:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at"` // UTC
	LastLogin    time.Time  `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) {
	u.IsActive = &active
}

// Clone deep-copies the aggregate so callers can mutate semesters and
// courses without aliasing stored state.
func (u User) Clone() User {
	cp := u
	if u.PasswordHash != nil {
		cp.PasswordHash = append([]byte(nil), u.PasswordHash...)
	}
	if u.Semesters != nil {
		cp.Semesters = make([]Semester, len(u.Semesters))
		for i, sem := range u.Semesters {
			cp.Semesters[i] = sem
			if sem.Courses != nil {
				cp.Semesters[i].Courses = append([]Course(nil), sem.Courses...)
			}
		}
	}
	return cp
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, svc Service) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// LoginUser carries login credentials.
type LoginUser struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lu *LoginUser) Validate() error {
	lu.Email = core.CleanString(lu.Email, true /* lower */)
	return core.Validate.Struct(lu)
}

// PasswordReset carries a password reset request.
type PasswordReset struct {
	Email string `json:"email" validate:"required,email"`
}

func (pr *PasswordReset) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}

// ResetUserPassword carries a password reset confirmation.
type ResetUserPassword struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate() error {
	return core.Validate.Struct(rp)
}

func init() {
	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.Validate.RegisterStructValidation(resetPasswordStructValidation, ResetUserPassword{})
}

func newUserStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok {
		validatePassword(nu.Password, nu.Email, sl)
	}
}

func resetPasswordStructValidation(sl validator.StructLevel) {
	if rp, ok := sl.Current().Interface().(ResetUserPassword); ok {
		validatePassword(rp.Password, "", sl)
	}
}
