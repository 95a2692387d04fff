// Package storetest provides an in-memory store for tests.
package storetest

import (
	"context"
	"testing"

	"github.com/couchcryptid/well-registry/internal/adapter/postgres"
	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/lookup"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated store backed by a private in-memory SQLite database.
// The database is closed when the test ends.
func New(t testing.TB) *postgres.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every statement on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	store := postgres.New(db)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Lookups is the reference data loaded by Seed.
var Lookups = lookup.Source{
	Agencies: []domain.Agency{
		{Code: "USGS", Name: "U.S. Geological Survey"},
		{Code: "ADWR", Name: "Arizona Department of Water Resources"},
		{Code: "MBMG", Name: "Montana Bureau of Mines and Geology"},
	},
	Countries: []domain.Country{{Code: "US", Name: "United States of America"}},
	States: []domain.State{
		{CountryCode: "US", Code: "55", Name: "Wisconsin"},
		{CountryCode: "US", Code: "27", Name: "Minnesota"},
		{CountryCode: "US", Code: "04", Name: "Arizona"},
	},
	Counties: []domain.County{
		{CountryCode: "US", StateCode: "55", Code: "025", Name: "Dane County"},
		{CountryCode: "US", StateCode: "27", Code: "123", Name: "Ramsey County"},
		{CountryCode: "US", StateCode: "04", Code: "013", Name: "Maricopa County"},
	},
	HorizontalDatums: []domain.HorizontalDatum{
		{Code: "NAD83", Description: "North American Datum of 1983"},
		{Code: "NAD27", Description: "North American Datum of 1927"},
	},
	AltitudeDatums: []domain.AltitudeDatum{
		{Code: "NAVD88", Description: "North American Vertical Datum of 1988"},
		{Code: "NGVD29", Description: "National Geodetic Vertical Datum of 1929"},
	},
	NationalAquifers: []domain.NationalAquifer{
		{Code: "N100GLCIAL", Description: "Glacial aquifer system"},
		{Code: "S100BSNRGB", Description: "Basin and Range basin-fill aquifers"},
	},
	Units: []domain.Unit{{ID: 1, Description: "ft"}, {ID: 2, Description: "m"}},
}

// Seed loads Lookups into store.
func Seed(t testing.TB, store *postgres.Store) {
	t.Helper()
	_, err := store.UpsertLookups(context.Background(), Lookups)
	require.NoError(t, err)
}

// NewSeeded returns a store from New with Lookups loaded.
func NewSeeded(t testing.TB) *postgres.Store {
	t.Helper()
	store := New(t)
	Seed(t, store)
	return store
}
