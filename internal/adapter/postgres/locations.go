package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const batchSize = 200

func (s *Store) Get(ctx context.Context, id uuid.UUID) (domain.MonitoringLocation, error) {
	var row locationRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return domain.MonitoringLocation{}, notFound(err, "monitoring location %s", id)
	}
	return row.toDomain(), nil
}

// FindBySite looks up a location by its natural key.
func (s *Store) FindBySite(ctx context.Context, agencyCode, siteNo string) (domain.MonitoringLocation, error) {
	var row locationRow
	err := s.db.WithContext(ctx).
		Where("agency_cd = ? AND site_no = ?", strings.TrimSpace(agencyCode), strings.TrimSpace(siteNo)).
		Take(&row).Error
	if err != nil {
		return domain.MonitoringLocation{}, notFound(err, "monitoring location %s:%s", agencyCode, siteNo)
	}
	return row.toDomain(), nil
}

// List returns one page of the locations in scope and the total number of
// matching rows. Rows are ordered by agency then site number.
func (s *Store) List(ctx context.Context, scope domain.Scope, filter domain.ListFilter) ([]domain.MonitoringLocation, int64, error) {
	q := scoped(s.db.WithContext(ctx).Model(&locationRow{}), scope)
	if filter.AgencyCode != "" {
		q = q.Where("agency_cd = ?", strings.ToUpper(strings.TrimSpace(filter.AgencyCode)))
	}
	if filter.SiteNo != "" {
		q = q.Where("site_no = ?", strings.TrimSpace(filter.SiteNo))
	}
	if filter.DisplayFlag != nil {
		q = q.Where("display_flag = ?", *filter.DisplayFlag)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count monitoring locations: %w", err)
	}

	page := q.Order("agency_cd, site_no")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	var rows []locationRow
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list monitoring locations: %w", err)
	}

	out := make([]domain.MonitoringLocation, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, total, nil
}

// SiteNumbers returns distinct site numbers in scope starting with prefix.
func (s *Store) SiteNumbers(ctx context.Context, scope domain.Scope, prefix string, limit int) ([]string, error) {
	q := scoped(s.db.WithContext(ctx).Model(&locationRow{}), scope).
		Distinct("site_no").
		Where(`site_no LIKE ? ESCAPE '\'`, escapeLike(strings.TrimSpace(prefix))+"%").
		Order("site_no")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []string
	if err := q.Pluck("site_no", &out).Error; err != nil {
		return nil, fmt.Errorf("site numbers: %w", err)
	}
	return out, nil
}

// Create inserts loc, assigning an ID when it has none.
func (s *Store) Create(ctx context.Context, loc *domain.MonitoringLocation) error {
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	row := toRow(*loc)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create %s: %w", loc.SiteID(), translate(err))
	}
	return nil
}

// CreateBatch inserts every location or none of them. Assigned IDs are
// written back into locs.
func (s *Store) CreateBatch(ctx context.Context, locs []domain.MonitoringLocation) error {
	if len(locs) == 0 {
		return nil
	}
	rows := make([]locationRow, len(locs))
	for i := range locs {
		if locs[i].ID == uuid.Nil {
			locs[i].ID = uuid.New()
		}
		rows[i] = toRow(locs[i])
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
			return fmt.Errorf("create batch of %d: %w", len(rows), translate(err))
		}
		return nil
	})
}

// Update overwrites every column of loc except its identity and insert
// provenance.
func (s *Store) Update(ctx context.Context, loc *domain.MonitoringLocation) error {
	row := toRow(*loc)
	res := s.db.WithContext(ctx).Model(&locationRow{ID: loc.ID}).
		Select("*").
		Omit("id", "insert_user", "insert_date").
		Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", loc.SiteID(), translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("monitoring location %s: %w", loc.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&locationRow{})
	if res.Error != nil {
		return fmt.Errorf("delete monitoring location %s: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("monitoring location %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// scoped restricts q to the agencies in scope. An empty non-All scope
// matches nothing.
func scoped(q *gorm.DB, scope domain.Scope) *gorm.DB {
	if scope.All {
		return q
	}
	if len(scope.AgencyCodes) == 0 {
		return q.Where("1 = 0")
	}
	return q.Where("agency_cd IN ?", scope.AgencyCodes)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
