// Package inmemdb provides a map-backed user.Repository. It backs the
// test suites and the admin CLI's dry runs; production wiring uses the
// sqlx repository instead.
package inmemdb

import (
	"sync"

	"github.com/nmutua/gradepoint/core/user"
)

type DB struct {
	mutex sync.RWMutex
	users map[string]*user.User
}

func NewDB() *DB {
	return &DB{users: make(map[string]*user.User)}
}
