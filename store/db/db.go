// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/internal/profile"
	"github.com/elijahnzeli1/smartnote-backend/store"
	"github.com/elijahnzeli1/smartnote-backend/store/db/postgres"
	"github.com/elijahnzeli1/smartnote-backend/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
}
