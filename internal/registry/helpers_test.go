package registry

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/well-registry/internal/adapter/postgres"
	"github.com/couchcryptid/well-registry/internal/adapter/postgres/storetest"
	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freezeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	fake := clockwork.NewFakeClockAt(testNow)
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })
	return fake
}

func newTestService(t *testing.T, opts Options) (*Service, *postgres.Store) {
	t.Helper()
	freezeClock(t)
	store := storetest.NewSeeded(t)
	return New(store, opts, discardLogger(), observability.NewMetricsForTesting()), store
}

var groups = domain.NewAgencyGroups(nil)

func superuser() domain.AccessContext {
	return groups.Resolve(domain.Principal{Username: "admin", Superuser: true})
}

func member(agency string) domain.AccessContext {
	return groups.Resolve(domain.Principal{
		Username:    strings.ToLower(agency) + "-user",
		Groups:      []string{strings.ToLower(agency)},
		Permissions: domain.AllPermissions,
	})
}

// uploadRow returns a valid 39 column upload row with the given cells replaced.
func uploadRow(siteNo string, overrides map[int]string) []string {
	row := make([]string, uploadColumns)
	row[colAgency] = "USGS"
	row[colSiteNo] = siteNo
	row[colSiteName] = "Well " + siteNo
	row[colLat] = "43.0731"
	row[colLong] = "-89.4012"
	row[colHorzDatum] = "NAD83"
	row[colAlt] = "850.5"
	row[colAltUnits] = "ft"
	row[colAltDatum] = "NAVD88"
	row[colNatAqfr] = "N100GLCIAL"
	row[colCountry] = "United States of America"
	row[colState] = "Wisconsin"
	row[colCounty] = "Dane County"
	row[colWellDepth] = "120"
	row[colWellDepthUnits] = "ft"
	row[colSiteType] = "WELL"
	row[colAqfrType] = "CONFINED"
	row[colDisplayFlag] = "Yes"
	row[colQWSnFlag] = "No"
	row[colQWBaselineFlag] = "No"
	row[colWLSnFlag] = "No"
	row[colWLBaselineFlag] = "No"
	for i, v := range overrides {
		row[i] = v
	}
	return row
}

// uploadCSV renders rows as an upload file with a header.
func uploadCSV(t *testing.T, rows ...[]string) string {
	t.Helper()
	var b strings.Builder
	w := csv.NewWriter(&b)
	require.NoError(t, w.Write(LayoutUpload.Header()))
	require.NoError(t, w.WriteAll(rows))
	return b.String()
}

func readUpload(t *testing.T, content string) []Row {
	t.Helper()
	rows, err := ReadRows(strings.NewReader(content), "upload.csv")
	require.NoError(t, err)
	return rows
}
