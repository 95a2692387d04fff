package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/domain/mocks"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(i int) *int { return &i }

func formInput(agency, siteNo string) domain.MonitoringLocation {
	return domain.MonitoringLocation{
		AgencyCode:     agency,
		SiteNo:         siteNo,
		SiteName:       "Form well " + siteNo,
		CountryCode:    "US",
		StateCode:      "04",
		CountyCode:     "013",
		DecLatVa:       dec("33.4484"),
		DecLongVa:      dec("-112.074"),
		HorzDatumCode:  "NAD83",
		AltVa:          dec("1086"),
		AltUnits:       intp(1),
		AltDatumCode:   "NAVD88",
		WellDepth:      dec("400"),
		WellDepthUnits: intp(1),
		NatAqfrCode:    "S100BSNRGB",
		SiteType:       domain.SiteTypeWell,
		AquiferType:    domain.AquiferUnconfined,
	}
}

func TestService_CreateDefaultsAgencyAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockChangePublisher(ctrl)
	svc, store := newTestService(t, Options{Publisher: publisher})
	ctx := context.Background()

	publisher.EXPECT().
		PublishChanges(gomock.Any(), gomock.Len(1)).
		DoAndReturn(func(_ context.Context, changes []domain.LocationChange) error {
			want := domain.LocationChange{
				Action: domain.ActionCreated, AgencyCode: "ADWR", SiteNo: "AZ-1",
				Source: domain.SourceForm, User: "adwr-user", OccurredAt: testNow,
			}
			assert.Empty(t, cmp.Diff(want, changes[0], cmpopts.IgnoreFields(domain.LocationChange{}, "ID")))
			return nil
		})

	input := formInput("", "AZ-1")
	input.InsertUser = "spoofed"
	loc, err := svc.Create(ctx, member("ADWR"), input)
	require.NoError(t, err)
	assert.Equal(t, "ADWR", loc.AgencyCode)
	assert.Equal(t, "adwr-user", loc.InsertUser)

	stored, err := store.Get(ctx, loc.ID)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(loc, stored, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })))
}

func TestService_CreateOutsideAgencyForbidden(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	_, err := svc.Create(context.Background(), member("ADWR"), formInput("USGS", "1"))
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestService_CreateInvalidReturnsViolations(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockChangePublisher(ctrl) // no calls expected
	svc, _ := newTestService(t, Options{Publisher: publisher})

	input := formInput("ADWR", "AZ-1")
	input.AquiferType = ""
	input.WellDepthUnits = nil
	_, err := svc.Create(context.Background(), superuser(), input)

	v, ok := AsViolations(err)
	require.True(t, ok, "got %v", err)
	assert.True(t, v.Has("aqfr_type"))
	assert.True(t, v.Has("well_depth_units"))
}

func TestService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockChangePublisher(ctrl)
	publisher.EXPECT().PublishChanges(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	svc, store := newTestService(t, Options{Publisher: publisher})

	loc, err := svc.Create(context.Background(), superuser(), formInput("ADWR", "AZ-1"))
	require.NoError(t, err)
	_, err = store.Get(context.Background(), loc.ID)
	require.NoError(t, err)
}

func TestService_UpdateKeepsAgencyForNonSuperuser(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	adwr := member("ADWR")

	loc, err := svc.Create(ctx, adwr, formInput("ADWR", "AZ-1"))
	require.NoError(t, err)

	input := loc
	input.AgencyCode = "USGS"
	input.SiteName = "Renamed"
	updated, err := svc.Update(ctx, adwr, loc.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "ADWR", updated.AgencyCode)
	assert.Equal(t, "Renamed", updated.SiteName)

	moved, err := svc.Update(ctx, superuser(), loc.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "USGS", moved.AgencyCode)
	assert.Equal(t, "adwr-user", moved.InsertUser)
	assert.Equal(t, "admin", moved.UpdateUser)
}

func TestService_ScopeHidesOtherAgencies(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	var usgsID uuid.UUID
	for _, in := range []domain.MonitoringLocation{formInput("ADWR", "1"), formInput("ADWR", "2"), formInput("USGS", "3")} {
		loc, err := svc.Create(ctx, superuser(), in)
		require.NoError(t, err)
		if loc.AgencyCode == "USGS" {
			usgsID = loc.ID
		}
	}

	adwr := member("ADWR")
	page, err := svc.List(ctx, adwr, domain.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, loc := range page.Items {
		assert.Equal(t, "ADWR", loc.AgencyCode)
	}

	page, err = svc.List(ctx, superuser(), domain.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	_, err = svc.Get(ctx, adwr, usgsID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Update(ctx, adwr, usgsID, formInput("USGS", "3"))
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, adwr, usgsID), domain.ErrNotFound)

	detail, err := svc.Get(ctx, superuser(), usgsID)
	require.NoError(t, err)
	assert.Contains(t, detail.EditableFields, "agency_cd")
}

func TestService_GetEditableFields(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	loc, err := svc.Create(ctx, superuser(), formInput("ADWR", "1"))
	require.NoError(t, err)

	detail, err := svc.Get(ctx, member("ADWR"), loc.ID)
	require.NoError(t, err)
	assert.NotContains(t, detail.EditableFields, "agency_cd")
	assert.Contains(t, detail.EditableFields, "site_name")

	viewer := groups.Resolve(domain.Principal{Username: "v", Groups: []string{"adwr"}, Permissions: []domain.Permission{domain.PermView}})
	detail, err = svc.Get(ctx, viewer, loc.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.EditableFields)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockChangePublisher(ctrl)
	svc, store := newTestService(t, Options{Publisher: publisher})
	ctx := context.Background()

	publisher.EXPECT().PublishChanges(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	loc, err := svc.Create(ctx, superuser(), formInput("ADWR", "1"))
	require.NoError(t, err)

	viewer := groups.Resolve(domain.Principal{Username: "v", Groups: []string{"adwr"}, Permissions: []domain.Permission{domain.PermView}})
	require.ErrorIs(t, svc.Delete(ctx, viewer, loc.ID), domain.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, member("ADWR"), loc.ID))
	_, err = store.Get(ctx, loc.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ListClampsPageSize(t *testing.T) {
	svc, _ := newTestService(t, Options{PageSizeMax: 2})
	ctx := context.Background()
	for _, n := range []string{"1", "2", "3"} {
		_, err := svc.Create(ctx, superuser(), formInput("ADWR", n))
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, superuser(), domain.ListFilter{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Limit)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 3, page.Total)
}

func TestService_PublicListOnlyDisplayed(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	shown := formInput("ADWR", "9000")
	shown.DisplayFlag = true
	_, err := svc.Create(ctx, superuser(), shown)
	require.NoError(t, err)
	_, err = svc.Create(ctx, superuser(), formInput("USGS", "9001"))
	require.NoError(t, err)

	hidden := false
	for _, filter := range []domain.ListFilter{{}, {DisplayFlag: &hidden}, {SiteNo: "9001"}} {
		page, err := svc.PublicList(ctx, filter)
		require.NoError(t, err)
		for _, item := range page.Items {
			assert.True(t, item.DisplayFlag, "site %s is not displayed", item.SiteNo)
		}
		assert.NotContains(t, siteNumbers(page.Items), "9001")
	}

	page, err := svc.PublicList(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"9000"}, siteNumbers(page.Items))
}

func siteNumbers(locs []domain.MonitoringLocation) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.SiteNo)
	}
	return out
}

func TestService_SiteNumbers(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	for _, in := range []domain.MonitoringLocation{formInput("ADWR", "3301"), formInput("USGS", "3302")} {
		_, err := svc.Create(ctx, superuser(), in)
		require.NoError(t, err)
	}

	got, err := svc.SiteNumbers(ctx, member("ADWR"), "33", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"3301"}, got)

	_, err = svc.SiteNumbers(ctx, domain.AccessContext{Username: "nobody"}, "33", 0)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
