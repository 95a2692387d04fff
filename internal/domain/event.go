package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeAction is the kind of write a LocationChange records.
type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// ChangeSource identifies the write path that produced a change.
type ChangeSource string

const (
	SourceForm ChangeSource = "form"
	SourceBulk ChangeSource = "bulk"
	SourceNWIS ChangeSource = "nwis"
)

// LocationChange is emitted after a monitoring location write commits.
type LocationChange struct {
	Action     ChangeAction `json:"action"`
	ID         uuid.UUID    `json:"id"`
	AgencyCode string       `json:"agency_cd"`
	SiteNo     string       `json:"site_no"`
	Source     ChangeSource `json:"source"`
	User       string       `json:"user"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewLocationChange builds a change event for loc stamped with the package clock.
func NewLocationChange(action ChangeAction, source ChangeSource, user string, loc MonitoringLocation) LocationChange {
	return LocationChange{
		Action:     action,
		ID:         loc.ID,
		AgencyCode: loc.AgencyCode,
		SiteNo:     loc.SiteNo,
		Source:     source,
		User:       user,
		OccurredAt: Now(),
	}
}
