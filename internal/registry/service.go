// Package registry implements the monitoring location workflows: direct
// editing, NWIS fetch-and-merge, bulk ingestion and export. Every entry point
// takes the caller's AccessContext and enforces agency scope itself.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/lookup"
	"github.com/couchcryptid/well-registry/internal/observability"
	"github.com/google/uuid"
)

const (
	defaultPageSize  = 100
	defaultSiteLimit = 20
)

// Options carries the optional collaborators and settings of a Service.
type Options struct {
	Fetcher     domain.SiteFetcher
	Aquifers    *lookup.LocalAquifers
	Publisher   domain.ChangePublisher
	NWISAgency  string
	PageSizeMax int
}

// Service coordinates the repository, validator and access policy.
type Service struct {
	repo        domain.Repository
	fetcher     domain.SiteFetcher
	aquifers    *lookup.LocalAquifers
	publisher   domain.ChangePublisher
	nwisAgency  string
	pageSizeMax int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Service. A nil Publisher disables change events.
func New(repo domain.Repository, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	nwisAgency := strings.ToUpper(strings.TrimSpace(opts.NWISAgency))
	if nwisAgency == "" {
		nwisAgency = "USGS"
	}
	pageSizeMax := opts.PageSizeMax
	if pageSizeMax <= 0 {
		pageSizeMax = 1000
	}
	return &Service{
		repo:        repo,
		fetcher:     opts.Fetcher,
		aquifers:    opts.Aquifers,
		publisher:   opts.Publisher,
		nwisAgency:  nwisAgency,
		pageSizeMax: pageSizeMax,
		logger:      logger,
		metrics:     metrics,
	}
}

// Page is one slice of a listing.
type Page struct {
	Items  []domain.MonitoringLocation `json:"items"`
	Total  int64                       `json:"total"`
	Limit  int                         `json:"limit"`
	Offset int                         `json:"offset"`
}

// Detail is a single record together with the fields the caller may edit.
type Detail struct {
	Location       domain.MonitoringLocation `json:"location"`
	EditableFields []string                  `json:"editable_fields"`
}

// List returns the records visible to ac.
func (s *Service) List(ctx context.Context, ac domain.AccessContext, filter domain.ListFilter) (Page, error) {
	if !ac.Has(domain.PermView) {
		return Page{}, domain.ErrForbidden
	}
	return s.list(ctx, domain.VisibleScope(ac), filter)
}

// PublicList returns displayed records across all agencies for the public
// API. Records with display_flag unset are never returned, whatever the
// filter asks for.
func (s *Service) PublicList(ctx context.Context, filter domain.ListFilter) (Page, error) {
	displayed := true
	filter.DisplayFlag = &displayed
	return s.list(ctx, domain.Scope{All: true}, filter)
}

func (s *Service) list(ctx context.Context, scope domain.Scope, filter domain.ListFilter) (Page, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = min(defaultPageSize, s.pageSizeMax)
	case filter.Limit > s.pageSizeMax:
		filter.Limit = s.pageSizeMax
	}
	filter.Offset = max(filter.Offset, 0)

	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Get returns one record. Records outside the caller's scope are reported as
// not found.
func (s *Service) Get(ctx context.Context, ac domain.AccessContext, id uuid.UUID) (Detail, error) {
	loc, err := s.visible(ctx, s.repo, ac, id)
	if err != nil {
		return Detail{}, err
	}
	if !domain.CanView(ac, &loc) {
		return Detail{}, domain.ErrForbidden
	}
	return Detail{Location: loc, EditableFields: domain.EditableFields(ac, &loc)}, nil
}

func (s *Service) visible(ctx context.Context, repo domain.Repository, ac domain.AccessContext, id uuid.UUID) (domain.MonitoringLocation, error) {
	loc, err := repo.Get(ctx, id)
	if err != nil {
		return domain.MonitoringLocation{}, err
	}
	if !domain.VisibleScope(ac).Contains(loc.AgencyCode) {
		return domain.MonitoringLocation{}, fmt.Errorf("monitoring location %s: %w", id, domain.ErrNotFound)
	}
	return loc, nil
}

// Create validates and stores a new record entered directly by ac.
func (s *Service) Create(ctx context.Context, ac domain.AccessContext, input domain.MonitoringLocation) (domain.MonitoringLocation, error) {
	if !domain.CanAdd(ac) {
		return domain.MonitoringLocation{}, domain.ErrForbidden
	}
	loc := input
	loc.ID = uuid.Nil
	loc.InsertUser, loc.UpdateUser = "", ""
	loc.InsertDate, loc.UpdateDate = time.Time{}, time.Time{}
	loc.AgencyCode = strings.ToUpper(strings.TrimSpace(loc.AgencyCode))
	domain.ApplyDefaultAgency(ac, &loc)
	if !ac.Superuser && !ac.InAgency(loc.AgencyCode) {
		return domain.MonitoringLocation{}, domain.ErrForbidden
	}
	loc.Touch(ac.Username)

	err := s.repo.InTx(ctx, func(tx domain.Repository) error {
		if err := s.check(ctx, tx, &loc, domain.SourceForm); err != nil {
			return err
		}
		return tx.Create(ctx, &loc)
	})
	if err != nil {
		return domain.MonitoringLocation{}, err
	}
	s.committed(ctx, domain.SourceForm, ac.Username, domain.ActionCreated, loc)
	return loc, nil
}

// Update applies the fields ac may edit from input to the stored record.
func (s *Service) Update(ctx context.Context, ac domain.AccessContext, id uuid.UUID, input domain.MonitoringLocation) (domain.MonitoringLocation, error) {
	var merged domain.MonitoringLocation
	err := s.repo.InTx(ctx, func(tx domain.Repository) error {
		existing, err := s.visible(ctx, tx, ac, id)
		if err != nil {
			return err
		}
		if !domain.CanChange(ac, &existing) {
			return domain.ErrForbidden
		}
		merged = domain.MergeEditable(ac, existing, input)
		domain.ApplyDefaultAgency(ac, &merged)
		merged.Touch(ac.Username)
		if err := s.check(ctx, tx, &merged, domain.SourceForm); err != nil {
			return err
		}
		return tx.Update(ctx, &merged)
	})
	if err != nil {
		return domain.MonitoringLocation{}, err
	}
	s.committed(ctx, domain.SourceForm, ac.Username, domain.ActionUpdated, merged)
	return merged, nil
}

// Delete removes a record. Only the administrative surface deletes.
func (s *Service) Delete(ctx context.Context, ac domain.AccessContext, id uuid.UUID) error {
	var deleted domain.MonitoringLocation
	err := s.repo.InTx(ctx, func(tx domain.Repository) error {
		existing, err := s.visible(ctx, tx, ac, id)
		if err != nil {
			return err
		}
		if !domain.CanDelete(ac, &existing) {
			return domain.ErrForbidden
		}
		deleted = existing
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.committed(ctx, domain.SourceForm, ac.Username, domain.ActionDeleted, deleted)
	return nil
}

// SiteNumbers suggests site numbers beginning with term from the caller's scope.
func (s *Service) SiteNumbers(ctx context.Context, ac domain.AccessContext, term string, limit int) ([]string, error) {
	if !ac.Has(domain.PermView) {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 || limit > s.pageSizeMax {
		limit = defaultSiteLimit
	}
	return s.repo.SiteNumbers(ctx, domain.VisibleScope(ac), term, limit)
}

// check runs the validator against repo and returns the violations as an error.
func (s *Service) check(ctx context.Context, repo domain.Repository, loc *domain.MonitoringLocation, source domain.ChangeSource) error {
	violations, err := domain.NewValidator(repo, repo).Validate(ctx, loc)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		s.metrics.ValidationFailures.WithLabelValues(string(source)).Inc()
		s.logger.Warn("monitoring location rejected",
			"agency_cd", loc.AgencyCode, "site_no", loc.SiteNo, "source", source, "violations", len(violations))
		return violations
	}
	return nil
}

// committed records metrics and publishes change events for writes that
// have already committed. Publish failures are logged, never returned.
func (s *Service) committed(ctx context.Context, source domain.ChangeSource, user string, action domain.ChangeAction, locs ...domain.MonitoringLocation) {
	s.metrics.LocationWrites.WithLabelValues(string(source), string(action)).Add(float64(len(locs)))
	if len(locs) == 1 {
		s.logger.Info("monitoring location "+string(action),
			"agency_cd", locs[0].AgencyCode, "site_no", locs[0].SiteNo, "source", source, "user", user)
	}
	if s.publisher == nil {
		return
	}
	changes := make([]domain.LocationChange, len(locs))
	for i, loc := range locs {
		changes[i] = domain.NewLocationChange(action, source, user, loc)
	}
	if err := s.publisher.PublishChanges(ctx, changes); err != nil {
		s.metrics.EventPublishErrors.Inc()
		s.logger.Error("publish change events", "count", len(changes), "error", err)
		return
	}
	s.metrics.EventsPublished.Add(float64(len(changes)))
}

// AsViolations extracts validation violations from err.
func AsViolations(err error) (domain.Violations, bool) {
	var v domain.Violations
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
