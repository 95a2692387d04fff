package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/lookup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) Agency(ctx context.Context, code string) (domain.Agency, error) {
	var row agencyRow
	if err := s.db.WithContext(ctx).Where("agency_cd = ?", strings.TrimSpace(code)).Take(&row).Error; err != nil {
		return domain.Agency{}, notFound(err, "agency %q", code)
	}
	return domain.Agency{Code: row.Code, Name: row.Name, Medium: row.Medium}, nil
}

func (s *Store) Country(ctx context.Context, code string) (domain.Country, error) {
	var row countryRow
	if err := s.db.WithContext(ctx).Where("country_cd = ?", strings.TrimSpace(code)).Take(&row).Error; err != nil {
		return domain.Country{}, notFound(err, "country %q", code)
	}
	return domain.Country{Code: row.Code, Name: row.Name}, nil
}

func (s *Store) State(ctx context.Context, countryCode, stateCode string) (domain.State, error) {
	var row stateRow
	err := s.db.WithContext(ctx).
		Where("country_cd = ? AND state_cd = ?", strings.TrimSpace(countryCode), strings.TrimSpace(stateCode)).
		Take(&row).Error
	if err != nil {
		return domain.State{}, notFound(err, "state %q in country %q", stateCode, countryCode)
	}
	return row.toDomain(), nil
}

func (s *Store) County(ctx context.Context, countryCode, stateCode, countyCode string) (domain.County, error) {
	var row countyRow
	err := s.db.WithContext(ctx).
		Where("country_cd = ? AND state_cd = ? AND county_cd = ?",
			strings.TrimSpace(countryCode), strings.TrimSpace(stateCode), strings.TrimSpace(countyCode)).
		Take(&row).Error
	if err != nil {
		return domain.County{}, notFound(err, "county %q in state %q", countyCode, stateCode)
	}
	return row.toDomain(), nil
}

func (s *Store) HorizontalDatum(ctx context.Context, code string) (domain.HorizontalDatum, error) {
	var row horizontalDatumRow
	if err := s.db.WithContext(ctx).Where("hdatum_cd = ?", strings.TrimSpace(code)).Take(&row).Error; err != nil {
		return domain.HorizontalDatum{}, notFound(err, "horizontal datum %q", code)
	}
	return domain.HorizontalDatum{Code: row.Code, Description: row.Description}, nil
}

func (s *Store) AltitudeDatum(ctx context.Context, code string) (domain.AltitudeDatum, error) {
	var row altitudeDatumRow
	if err := s.db.WithContext(ctx).Where("adatum_cd = ?", strings.TrimSpace(code)).Take(&row).Error; err != nil {
		return domain.AltitudeDatum{}, notFound(err, "altitude datum %q", code)
	}
	return domain.AltitudeDatum{Code: row.Code, Description: row.Description}, nil
}

func (s *Store) NationalAquifer(ctx context.Context, code string) (domain.NationalAquifer, error) {
	var row nationalAquiferRow
	if err := s.db.WithContext(ctx).Where("nat_aqfr_cd = ?", strings.TrimSpace(code)).Take(&row).Error; err != nil {
		return domain.NationalAquifer{}, notFound(err, "national aquifer %q", code)
	}
	return domain.NationalAquifer{Code: row.Code, Description: row.Description}, nil
}

func (s *Store) Unit(ctx context.Context, id int) (domain.Unit, error) {
	var row unitRow
	if err := s.db.WithContext(ctx).Where("unit_id = ?", id).Take(&row).Error; err != nil {
		return domain.Unit{}, notFound(err, "unit %d", id)
	}
	return domain.Unit{ID: row.ID, Description: row.Description}, nil
}

// Name resolution is case-insensitive and ignores surrounding whitespace.

func (s *Store) CountryByName(ctx context.Context, name string) (domain.Country, error) {
	var row countryRow
	if err := s.db.WithContext(ctx).Where("LOWER(country_nm) = ?", normName(name)).Take(&row).Error; err != nil {
		return domain.Country{}, notFound(err, "country named %q", name)
	}
	return domain.Country{Code: row.Code, Name: row.Name}, nil
}

func (s *Store) StateByName(ctx context.Context, countryCode, name string) (domain.State, error) {
	var row stateRow
	err := s.db.WithContext(ctx).
		Where("country_cd = ? AND LOWER(state_nm) = ?", countryCode, normName(name)).
		Take(&row).Error
	if err != nil {
		return domain.State{}, notFound(err, "state named %q", name)
	}
	return row.toDomain(), nil
}

func (s *Store) CountyByName(ctx context.Context, countryCode, stateCode, name string) (domain.County, error) {
	var row countyRow
	err := s.db.WithContext(ctx).
		Where("country_cd = ? AND state_cd = ? AND LOWER(county_nm) = ?", countryCode, stateCode, normName(name)).
		Take(&row).Error
	if err != nil {
		return domain.County{}, notFound(err, "county named %q", name)
	}
	return row.toDomain(), nil
}

func (s *Store) UnitByDescription(ctx context.Context, description string) (domain.Unit, error) {
	var row unitRow
	if err := s.db.WithContext(ctx).Where("LOWER(unit_desc) = ?", normName(description)).Take(&row).Error; err != nil {
		return domain.Unit{}, notFound(err, "unit %q", description)
	}
	return domain.Unit{ID: row.ID, Description: row.Description}, nil
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r stateRow) toDomain() domain.State {
	return domain.State{CountryCode: r.CountryCode, Code: r.Code, Name: r.Name}
}

func (r countyRow) toDomain() domain.County {
	return domain.County{CountryCode: r.CountryCode, StateCode: r.StateCode, Code: r.Code, Name: r.Name}
}

// UpsertLookups writes every row of src in one transaction, updating rows
// whose natural key exists and inserting the rest. Rows absent from src are
// left untouched.
func (s *Store) UpsertLookups(ctx context.Context, src lookup.Source) (lookup.Counts, error) {
	counts := lookup.Counts{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			n     int
			run   func() error
		}{
			{"agency_lookups", len(src.Agencies), func() error {
				return upsert(tx, mapRows(src.Agencies, func(a domain.Agency) agencyRow {
					return agencyRow{Code: a.Code, Name: a.Name, Medium: a.Medium}
				}), []string{"agency_cd"}, []string{"agency_nm", "agency_med"})
			}},
			{"country_lookups", len(src.Countries), func() error {
				return upsert(tx, mapRows(src.Countries, func(c domain.Country) countryRow {
					return countryRow{Code: c.Code, Name: c.Name}
				}), []string{"country_cd"}, []string{"country_nm"})
			}},
			{"state_lookups", len(src.States), func() error {
				return upsert(tx, mapRows(src.States, func(st domain.State) stateRow {
					return stateRow{CountryCode: st.CountryCode, Code: st.Code, Name: st.Name}
				}), []string{"country_cd", "state_cd"}, []string{"state_nm"})
			}},
			{"county_lookups", len(src.Counties), func() error {
				return upsert(tx, mapRows(src.Counties, func(c domain.County) countyRow {
					return countyRow{CountryCode: c.CountryCode, StateCode: c.StateCode, Code: c.Code, Name: c.Name}
				}), []string{"country_cd", "state_cd", "county_cd"}, []string{"county_nm"})
			}},
			{"horizontal_datum_lookups", len(src.HorizontalDatums), func() error {
				return upsert(tx, mapRows(src.HorizontalDatums, func(d domain.HorizontalDatum) horizontalDatumRow {
					return horizontalDatumRow{Code: d.Code, Description: d.Description}
				}), []string{"hdatum_cd"}, []string{"hdatum_desc"})
			}},
			{"altitude_datum_lookups", len(src.AltitudeDatums), func() error {
				return upsert(tx, mapRows(src.AltitudeDatums, func(d domain.AltitudeDatum) altitudeDatumRow {
					return altitudeDatumRow{Code: d.Code, Description: d.Description}
				}), []string{"adatum_cd"}, []string{"adatum_desc"})
			}},
			{"nat_aqfr_lookups", len(src.NationalAquifers), func() error {
				return upsert(tx, mapRows(src.NationalAquifers, func(a domain.NationalAquifer) nationalAquiferRow {
					return nationalAquiferRow{Code: a.Code, Description: a.Description}
				}), []string{"nat_aqfr_cd"}, []string{"nat_aqfr_desc"})
			}},
			{"units_lookups", len(src.Units), func() error {
				return upsert(tx, mapRows(src.Units, func(u domain.Unit) unitRow {
					return unitRow{ID: u.ID, Description: u.Description}
				}), []string{"unit_id"}, []string{"unit_desc"})
			}},
		}
		for _, step := range steps {
			if step.n == 0 {
				continue
			}
			if err := step.run(); err != nil {
				return fmt.Errorf("upsert %s: %w", step.table, translate(err))
			}
			counts[step.table] = step.n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func upsert[T any](tx *gorm.DB, rows []T, keys, updates []string) error {
	cols := make([]clause.Column, len(keys))
	for i, k := range keys {
		cols[i] = clause.Column{Name: k}
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(updates),
	}).CreateInBatches(rows, 500).Error
}

func mapRows[S, T any](in []S, f func(S) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
