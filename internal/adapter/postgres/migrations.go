package postgres

import (
	"context"
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

var lookupTables = []string{
	`CREATE TABLE agency_lookups (
		agency_cd  VARCHAR(50)  PRIMARY KEY,
		agency_nm  VARCHAR(150) NOT NULL,
		agency_med VARCHAR(200) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE country_lookups (
		country_cd VARCHAR(2)  PRIMARY KEY,
		country_nm VARCHAR(48) NOT NULL
	)`,
	`CREATE TABLE state_lookups (
		country_cd VARCHAR(2)  NOT NULL REFERENCES country_lookups (country_cd),
		state_cd   VARCHAR(2)  NOT NULL,
		state_nm   VARCHAR(53) NOT NULL,
		PRIMARY KEY (country_cd, state_cd)
	)`,
	`CREATE TABLE county_lookups (
		country_cd VARCHAR(2)  NOT NULL,
		state_cd   VARCHAR(2)  NOT NULL,
		county_cd  VARCHAR(3)  NOT NULL,
		county_nm  VARCHAR(48) NOT NULL,
		PRIMARY KEY (country_cd, state_cd, county_cd),
		FOREIGN KEY (country_cd, state_cd) REFERENCES state_lookups (country_cd, state_cd)
	)`,
	`CREATE TABLE horizontal_datum_lookups (
		hdatum_cd   VARCHAR(10)  PRIMARY KEY,
		hdatum_desc VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE altitude_datum_lookups (
		adatum_cd   VARCHAR(10)  PRIMARY KEY,
		adatum_desc VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE nat_aqfr_lookups (
		nat_aqfr_cd   VARCHAR(10)  PRIMARY KEY,
		nat_aqfr_desc VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE units_lookups (
		unit_id   INTEGER     PRIMARY KEY,
		unit_desc VARCHAR(20) NOT NULL
	)`,
}

var locationTable = []string{
	`CREATE TABLE monitoring_locations (
		id                    UUID          PRIMARY KEY,
		agency_cd             VARCHAR(50)   NOT NULL REFERENCES agency_lookups (agency_cd),
		site_no               VARCHAR(16)   NOT NULL,
		site_name             VARCHAR(300)  NOT NULL,
		country_cd            VARCHAR(2)    REFERENCES country_lookups (country_cd),
		state_cd              VARCHAR(2),
		county_cd             VARCHAR(3),
		dec_lat_va            NUMERIC(11,8),
		dec_long_va           NUMERIC(11,8),
		horz_datum_cd         VARCHAR(10)   REFERENCES horizontal_datum_lookups (hdatum_cd),
		horz_method           VARCHAR(300)  NOT NULL DEFAULT '',
		horz_acy              VARCHAR(300)  NOT NULL DEFAULT '',
		alt_va                NUMERIC(10,6),
		alt_units             INTEGER       REFERENCES units_lookups (unit_id),
		alt_datum_cd          VARCHAR(10)   REFERENCES altitude_datum_lookups (adatum_cd),
		alt_method            VARCHAR(300)  NOT NULL DEFAULT '',
		alt_acy               VARCHAR(300)  NOT NULL DEFAULT '',
		well_depth            NUMERIC(11,3),
		well_depth_units      INTEGER       REFERENCES units_lookups (unit_id),
		nat_aqfr_cd           VARCHAR(10)   REFERENCES nat_aqfr_lookups (nat_aqfr_cd),
		local_aquifer_name    VARCHAR(100)  NOT NULL DEFAULT '',
		site_type             VARCHAR(10)   NOT NULL,
		aqfr_type             VARCHAR(10)   NOT NULL DEFAULT '',
		display_flag          BOOLEAN       NOT NULL DEFAULT FALSE,
		wl_sn_flag            BOOLEAN       NOT NULL DEFAULT FALSE,
		wl_network_name       VARCHAR(50)   NOT NULL DEFAULT '',
		wl_baseline_flag      BOOLEAN       NOT NULL DEFAULT FALSE,
		wl_well_type          VARCHAR(32)   NOT NULL DEFAULT '',
		wl_well_chars         VARCHAR(32)   NOT NULL DEFAULT '',
		wl_well_purpose       VARCHAR(32)   NOT NULL DEFAULT '',
		wl_well_purpose_notes VARCHAR(4000) NOT NULL DEFAULT '',
		qw_sn_flag            BOOLEAN       NOT NULL DEFAULT FALSE,
		qw_network_name       VARCHAR(50)   NOT NULL DEFAULT '',
		qw_baseline_flag      BOOLEAN       NOT NULL DEFAULT FALSE,
		qw_well_type          VARCHAR(32)   NOT NULL DEFAULT '',
		qw_well_chars         VARCHAR(32)   NOT NULL DEFAULT '',
		qw_well_purpose       VARCHAR(32)   NOT NULL DEFAULT '',
		qw_well_purpose_notes VARCHAR(4000) NOT NULL DEFAULT '',
		link                  VARCHAR(500)  NOT NULL DEFAULT '',
		insert_user           VARCHAR(150)  NOT NULL DEFAULT '',
		update_user           VARCHAR(150)  NOT NULL DEFAULT '',
		insert_date           TIMESTAMP     NOT NULL,
		update_date           TIMESTAMP     NOT NULL,
		CONSTRAINT monitoring_locations_site_agency_key UNIQUE (site_no, agency_cd),
		FOREIGN KEY (country_cd, state_cd) REFERENCES state_lookups (country_cd, state_cd),
		FOREIGN KEY (country_cd, state_cd, county_cd) REFERENCES county_lookups (country_cd, state_cd, county_cd)
	)`,
	`CREATE INDEX monitoring_locations_agency_idx ON monitoring_locations (agency_cd)`,
	`CREATE INDEX monitoring_locations_display_idx ON monitoring_locations (display_flag)`,
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID:      "0001_create_lookup_tables",
			Migrate: execAll(lookupTables),
			Rollback: dropAll("units_lookups", "nat_aqfr_lookups", "altitude_datum_lookups",
				"horizontal_datum_lookups", "county_lookups", "state_lookups", "country_lookups", "agency_lookups"),
		},
		{
			ID:       "0002_create_monitoring_locations",
			Migrate:  execAll(locationTable),
			Rollback: dropAll("monitoring_locations"),
		},
	}
}

// Migrate applies every pending schema migration.
func (s *Store) Migrate(ctx context.Context) error {
	m := gormigrate.New(s.db.WithContext(ctx), gormigrate.DefaultOptions, migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// RollbackLast reverts the most recent migration.
func (s *Store) RollbackLast(ctx context.Context) error {
	m := gormigrate.New(s.db.WithContext(ctx), gormigrate.DefaultOptions, migrations())
	return m.RollbackLast()
}

func execAll(stmts []string) gormigrate.MigrateFunc {
	return func(tx *gorm.DB) error {
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	}
}

func dropAll(tables ...string) gormigrate.RollbackFunc {
	return func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := tx.Migrator().DropTable(t); err != nil {
				return err
			}
		}
		return nil
	}
}
