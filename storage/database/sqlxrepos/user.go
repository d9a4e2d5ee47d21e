// Package sqlxrepos implements the user.Repository against Postgres.
//
// The aggregate maps to a single users row: scalar columns for the
// account fields and one JSONB column holding the entire semesters
// document. Every write replaces the whole document; there is no
// per-semester or per-course storage identity.
package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/nmutua/gradepoint/core/user"
)

type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	PasswordHash []byte         `db:"password_hash"`
	Semesters    types.JSONText `db:"semesters"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo userRepository) pack(usr user.User) (userRow, error) {
	semesters := usr.Semesters
	if semesters == nil {
		semesters = []user.Semester{}
	}
	doc, err := json.Marshal(semesters)
	if err != nil {
		return userRow{}, errors.Wrap(err, "marshaling semesters")
	}
	row := userRow{
		ID:           usr.ID,
		Email:        usr.Email,
		IsActive:     usr.IsActive == nil || *usr.IsActive,
		PasswordHash: usr.PasswordHash,
		Semesters:    doc,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
	}
	if !usr.LastLogin.IsZero() {
		row.LastLogin = sql.NullTime{Time: usr.LastLogin.UTC(), Valid: true}
	}
	return row, nil
}

func (repo userRepository) unpack(row userRow) (user.User, error) {
	usr := user.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Semesters:    []user.Semester{},
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	usr.SetActive(row.IsActive)
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time
	}
	if len(row.Semesters) > 0 {
		if err := json.Unmarshal(row.Semesters, &usr.Semesters); err != nil {
			return user.User{}, errors.Wrap(err, "unmarshaling semesters")
		}
	}
	return usr, nil
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`
	args := []interface{}{email}

	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		var err error
		query, args, err = sqlx.In(`SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND id NOT IN (?))`, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row, err := repo.pack(usr)
	if err != nil {
		return user.User{}, err
	}

	const query = `
		INSERT INTO users (id, email, is_active, password_hash, semesters, created_at, updated_at)
		VALUES (:id, :email, :is_active, :password_hash, :semesters, :created_at, :updated_at)`
	if _, err = repo.db.NamedExecContext(ctx, query, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return repo.unpack(row)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return repo.unpack(row)
}

// UpdateUser replaces the stored aggregate: scalar account fields and
// the whole semesters document in one statement. Email and created_at
// are immutable and never touched.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row, err := repo.pack(usr)
	if err != nil {
		return user.User{}, err
	}

	const query = `
		UPDATE users
		SET is_active = :is_active,
			password_hash = :password_hash,
			semesters = :semesters,
			updated_at = :updated_at,
			last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	updated, err := repo.UpdateUser(ctx, usr)
	if err == user.ErrNotFound {
		return repo.CreateUser(ctx, usr)
	}
	return updated, err
}
