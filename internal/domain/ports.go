package domain

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks ChangePublisher,SiteFetcher

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a monitoring location listing.
type ListFilter struct {
	AgencyCode  string
	SiteNo      string
	DisplayFlag *bool
	Limit       int
	Offset      int
}

// Repository persists monitoring locations and serves lookups. Callers that
// need several operations to commit together use InTx.
type Repository interface {
	NameLookups
	SiteIndex

	Get(ctx context.Context, id uuid.UUID) (MonitoringLocation, error)
	List(ctx context.Context, scope Scope, filter ListFilter) ([]MonitoringLocation, int64, error)
	SiteNumbers(ctx context.Context, scope Scope, prefix string, limit int) ([]string, error)
	Create(ctx context.Context, loc *MonitoringLocation) error
	CreateBatch(ctx context.Context, locs []MonitoringLocation) error
	Update(ctx context.Context, loc *MonitoringLocation) error
	Delete(ctx context.Context, id uuid.UUID) error

	// InTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Repository) error) error
}

// ChangePublisher delivers committed changes to downstream consumers.
type ChangePublisher interface {
	PublishChanges(ctx context.Context, changes []LocationChange) error
}

// SiteFetcher retrieves one site record from an external site service as raw
// column values. It returns ErrSiteNotFound when the service has no such
// site and *UpstreamError for any other failure.
type SiteFetcher interface {
	FetchSite(ctx context.Context, siteNo string) (map[string]string, error)
}
