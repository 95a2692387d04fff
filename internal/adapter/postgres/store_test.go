package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/well-registry/internal/adapter/postgres/storetest"
	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/lookup"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(i int) *int { return &i }

func location(agency, siteNo string) domain.MonitoringLocation {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.MonitoringLocation{
		AgencyCode:     agency,
		SiteNo:         siteNo,
		SiteName:       "Test well " + siteNo,
		CountryCode:    "US",
		StateCode:      "55",
		CountyCode:     "025",
		DecLatVa:       dec("43.0731"),
		DecLongVa:      dec("-89.4012"),
		HorzDatumCode:  "NAD83",
		AltVa:          dec("850.5"),
		AltUnits:       intp(1),
		AltDatumCode:   "NAVD88",
		WellDepth:      dec("1070"),
		WellDepthUnits: intp(1),
		NatAqfrCode:    "N100GLCIAL",
		SiteType:       domain.SiteTypeWell,
		AquiferType:    domain.AquiferConfined,
		InsertUser:     "tester",
		UpdateUser:     "tester",
		InsertDate:     now,
		UpdateDate:     now,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()

	loc := location("USGS", "430406089232901")
	require.NoError(t, store.Create(ctx, &loc))
	require.NotEqual(t, uuid.Nil, loc.ID)

	got, err := store.Get(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, loc.SiteNo, got.SiteNo)
	assert.Equal(t, "025", got.CountyCode)
	require.NotNil(t, got.WellDepth)
	assert.True(t, got.WellDepth.Equal(decimal.NewFromInt(1070)))
	assert.Equal(t, 1, *got.AltUnits)
	assert.Equal(t, loc.InsertDate, got.InsertDate)

	bySite, err := store.FindBySite(ctx, "USGS", "430406089232901")
	require.NoError(t, err)
	assert.Equal(t, loc.ID, bySite.ID)
}

func TestStore_GetMissing(t *testing.T) {
	store := storetest.NewSeeded(t)
	_, err := store.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.FindBySite(context.Background(), "USGS", "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_BlankReferencesStoredAsNull(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()

	loc := location("USGS", "1")
	loc.CountyCode = ""
	loc.WellDepth, loc.WellDepthUnits = nil, nil
	require.NoError(t, store.Create(ctx, &loc))

	got, err := store.Get(ctx, loc.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CountyCode)
	assert.Nil(t, got.WellDepth)
	assert.Nil(t, got.WellDepthUnits)
}

func TestStore_UniqueSitePerAgency(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()

	first := location("USGS", "12345")
	require.NoError(t, store.Create(ctx, &first))

	dup := location("USGS", "12345")
	err := store.Create(ctx, &dup)
	require.ErrorIs(t, err, domain.ErrConflict)

	other := location("ADWR", "12345")
	require.NoError(t, store.Create(ctx, &other), "same site number under another agency is allowed")
}

func TestStore_UnknownReferenceIsConflict(t *testing.T) {
	store := storetest.NewSeeded(t)
	loc := location("NOPE", "1")
	err := store.Create(context.Background(), &loc)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_CountyMustBelongToState(t *testing.T) {
	store := storetest.NewSeeded(t)
	loc := location("USGS", "1")
	loc.StateCode = "27" // Dane County is in Wisconsin
	err := store.Create(context.Background(), &loc)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_CreateBatchIsAllOrNothing(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()

	batch := []domain.MonitoringLocation{location("USGS", "1"), location("USGS", "2"), location("USGS", "1")}
	require.ErrorIs(t, store.CreateBatch(ctx, batch), domain.ErrConflict)

	_, total, err := store.List(ctx, domain.Scope{All: true}, domain.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	batch = batch[:2]
	require.NoError(t, store.CreateBatch(ctx, batch))
	for _, loc := range batch {
		assert.NotEqual(t, uuid.Nil, loc.ID)
	}
	_, total, err = store.List(ctx, domain.Scope{All: true}, domain.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestStore_ListScopedByAgency(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()
	for _, l := range []domain.MonitoringLocation{location("USGS", "1"), location("ADWR", "2"), location("MBMG", "3")} {
		require.NoError(t, store.Create(ctx, &l))
	}

	got, total, err := store.List(ctx, domain.Scope{AgencyCodes: []string{"ADWR", "MBMG"}}, domain.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "ADWR", got[0].AgencyCode)
	assert.Equal(t, "MBMG", got[1].AgencyCode)

	_, total, err = store.List(ctx, domain.Scope{}, domain.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "empty scope sees nothing")

	_, total, err = store.List(ctx, domain.Scope{All: true}, domain.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestStore_ListFiltersAndPages(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()
	for _, n := range []string{"3", "1", "2"} {
		l := location("USGS", n)
		l.DisplayFlag = n != "2"
		require.NoError(t, store.Create(ctx, &l))
	}

	shown := true
	got, total, err := store.List(ctx, domain.Scope{All: true}, domain.ListFilter{DisplayFlag: &shown, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].SiteNo)
}

func TestStore_SiteNumbers(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()
	for _, l := range []domain.MonitoringLocation{
		location("USGS", "4301"), location("ADWR", "4301"), location("USGS", "4302"),
		location("USGS", "5000"), location("ADWR", "43_9"),
	} {
		require.NoError(t, store.Create(ctx, &l))
	}

	got, err := store.SiteNumbers(ctx, domain.Scope{All: true}, "430", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"4301", "4302"}, got)

	got, err = store.SiteNumbers(ctx, domain.Scope{AgencyCodes: []string{"ADWR"}}, "43", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"4301", "43_9"}, got)

	got, err = store.SiteNumbers(ctx, domain.Scope{All: true}, "43_", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"43_9"}, got)
}

func TestStore_Update(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()
	loc := location("USGS", "1")
	require.NoError(t, store.Create(ctx, &loc))

	changed := loc
	changed.SiteName = "Renamed"
	changed.Link = ""
	changed.DisplayFlag = false
	changed.WellDepth, changed.WellDepthUnits = nil, nil
	changed.InsertUser = "someone-else"
	changed.UpdateUser = "editor"
	require.NoError(t, store.Update(ctx, &changed))

	got, err := store.Get(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.SiteName)
	assert.Nil(t, got.WellDepth)
	assert.Equal(t, "tester", got.InsertUser)
	assert.Equal(t, "editor", got.UpdateUser)

	missing := location("USGS", "2")
	missing.ID = uuid.New()
	require.ErrorIs(t, store.Update(ctx, &missing), domain.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()
	loc := location("USGS", "1")
	require.NoError(t, store.Create(ctx, &loc))

	require.NoError(t, store.Delete(ctx, loc.ID))
	require.ErrorIs(t, store.Delete(ctx, loc.ID), domain.ErrNotFound)
}

func TestStore_InTxRollsBack(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(tx domain.Repository) error {
		loc := location("USGS", "1")
		require.NoError(t, tx.Create(ctx, &loc))
		return domain.ErrForbidden
	})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = store.FindBySite(ctx, "USGS", "1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Lookups(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()

	county, err := store.County(ctx, "US", "55", "025")
	require.NoError(t, err)
	assert.Equal(t, "Dane County", county.Name)

	_, err = store.County(ctx, "US", "27", "025")
	require.ErrorIs(t, err, domain.ErrNotFound, "county lookups are scoped by state")

	state, err := store.StateByName(ctx, "US", "  wisconsin ")
	require.NoError(t, err)
	assert.Equal(t, "55", state.Code)

	county, err = store.CountyByName(ctx, "US", "04", "MARICOPA COUNTY")
	require.NoError(t, err)
	assert.Equal(t, "013", county.Code)

	_, err = store.CountyByName(ctx, "US", "55", "Maricopa County")
	require.ErrorIs(t, err, domain.ErrNotFound)

	unit, err := store.UnitByDescription(ctx, "FT")
	require.NoError(t, err)
	assert.Equal(t, 1, unit.ID)

	country, err := store.CountryByName(ctx, "united states of america")
	require.NoError(t, err)
	assert.Equal(t, "US", country.Code)

	_, err = store.Agency(ctx, "XYZ")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_UpsertLookupsUpdatesInPlace(t *testing.T) {
	store := storetest.NewSeeded(t)
	ctx := context.Background()

	counts, err := store.UpsertLookups(ctx, lookup.Source{
		Agencies: []domain.Agency{{Code: "USGS", Name: "USGS renamed"}, {Code: "IGS", Name: "Iowa Geological Survey"}},
	})
	require.NoError(t, err)
	assert.Equal(t, lookup.Counts{"agency_lookups": 2}, counts)

	a, err := store.Agency(ctx, "USGS")
	require.NoError(t, err)
	assert.Equal(t, "USGS renamed", a.Name)

	_, err = store.Agency(ctx, "IGS")
	require.NoError(t, err)
	_, err = store.Agency(ctx, "ADWR")
	require.NoError(t, err, "rows absent from the source are kept")
}

func TestStore_CheckReadiness(t *testing.T) {
	store := storetest.New(t)
	require.NoError(t, store.CheckReadiness(context.Background()))
}
