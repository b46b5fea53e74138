// Package store maps forum operations onto the document database. Each
// repository wraps one collection; composite consistency (author name copies,
// like counters) is handled here in transactions where it matters.
package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store groups the repositories over one database handle.
type Store struct {
	db *gorm.DB

	Users         *Users
	Publications  *Publications
	Comments      *Comments
	Likes         *Likes
	Friendships   *Friendships
	Notifications *Notifications
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         &Users{db: db},
		Publications:  &Publications{db: db},
		Comments:      &Comments{db: db},
		Likes:         &Likes{db: db},
		Friendships:   &Friendships{db: db},
		Notifications: &Notifications{db: db},
	}
}

// DB exposes the handle for collaborators sharing the database (identity).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// translate turns driver errors into the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}
