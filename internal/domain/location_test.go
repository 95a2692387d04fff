package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestTouch_SetsInsertFieldsOnce(t *testing.T) {
	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := clockwork.NewFakeClockAt(first)
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })

	loc := MonitoringLocation{}
	loc.Touch("alice")
	assert.Equal(t, "alice", loc.InsertUser)
	assert.Equal(t, first, loc.InsertDate)
	assert.Equal(t, first, loc.UpdateDate)

	fake.Advance(time.Hour)
	loc.Touch("bob")
	assert.Equal(t, "alice", loc.InsertUser)
	assert.Equal(t, "bob", loc.UpdateUser)
	assert.Equal(t, first, loc.InsertDate)
	assert.Equal(t, first.Add(time.Hour), loc.UpdateDate)
}

func TestSiteID(t *testing.T) {
	loc := MonitoringLocation{AgencyCode: "USGS", SiteNo: "443053094591001"}
	assert.Equal(t, "USGS:443053094591001", loc.SiteID())
}
