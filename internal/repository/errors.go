// Package repository holds the MySQL data access code.  Lookups that find
// nothing return one of the ErrXxxNotFound sentinels below; constraint
// violations are mapped onto ErrDuplicate, ErrEmailExists or ErrConflict.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrBuildingNotFound    = errors.New("building not found")
	ErrClassroomNotFound   = errors.New("classroom not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
)

// ErrEmailExists is returned when a user is created or renamed with an
// email that another account already uses.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert collides with an existing
// primary key.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is returned when a delete cannot be performed because
// dependent rows still reference the record, such as deleting a
// classroom that still has reservations.
var ErrConflict = errors.New("conflict")

const (
	mysqlDupEntry     = 1062
	mysqlRowReference = 1451
)

// mapErr translates MySQL constraint errors.  dup is returned for
// duplicate-key violations so callers can pick the most specific
// sentinel.
func mapErr(err error, dup error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDupEntry:
		return dup
	case mysqlRowReference:
		return ErrConflict
	}
	return err
}
