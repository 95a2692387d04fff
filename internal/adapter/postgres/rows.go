package postgres

import (
	"strings"
	"time"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type locationRow struct {
	ID             uuid.UUID           `gorm:"column:id;primaryKey"`
	AgencyCode     string              `gorm:"column:agency_cd"`
	SiteNo         string              `gorm:"column:site_no"`
	SiteName       string              `gorm:"column:site_name"`
	CountryCode    *string             `gorm:"column:country_cd"`
	StateCode      *string             `gorm:"column:state_cd"`
	CountyCode     *string             `gorm:"column:county_cd"`
	DecLatVa       decimal.NullDecimal `gorm:"column:dec_lat_va"`
	DecLongVa      decimal.NullDecimal `gorm:"column:dec_long_va"`
	HorzDatumCode  *string             `gorm:"column:horz_datum_cd"`
	HorzMethod     string              `gorm:"column:horz_method"`
	HorzAcy        string              `gorm:"column:horz_acy"`
	AltVa          decimal.NullDecimal `gorm:"column:alt_va"`
	AltUnits       *int                `gorm:"column:alt_units"`
	AltDatumCode   *string             `gorm:"column:alt_datum_cd"`
	AltMethod      string              `gorm:"column:alt_method"`
	AltAcy         string              `gorm:"column:alt_acy"`
	WellDepth      decimal.NullDecimal `gorm:"column:well_depth"`
	WellDepthUnits *int                `gorm:"column:well_depth_units"`
	NatAqfrCode    *string             `gorm:"column:nat_aqfr_cd"`
	LocalAquifer   string              `gorm:"column:local_aquifer_name"`
	SiteType       string              `gorm:"column:site_type"`
	AquiferType    string              `gorm:"column:aqfr_type"`
	DisplayFlag    bool                `gorm:"column:display_flag"`

	WLSnFlag           bool   `gorm:"column:wl_sn_flag"`
	WLNetworkName      string `gorm:"column:wl_network_name"`
	WLBaselineFlag     bool   `gorm:"column:wl_baseline_flag"`
	WLWellType         string `gorm:"column:wl_well_type"`
	WLWellChars        string `gorm:"column:wl_well_chars"`
	WLWellPurpose      string `gorm:"column:wl_well_purpose"`
	WLWellPurposeNotes string `gorm:"column:wl_well_purpose_notes"`
	QWSnFlag           bool   `gorm:"column:qw_sn_flag"`
	QWNetworkName      string `gorm:"column:qw_network_name"`
	QWBaselineFlag     bool   `gorm:"column:qw_baseline_flag"`
	QWWellType         string `gorm:"column:qw_well_type"`
	QWWellChars        string `gorm:"column:qw_well_chars"`
	QWWellPurpose      string `gorm:"column:qw_well_purpose"`
	QWWellPurposeNotes string `gorm:"column:qw_well_purpose_notes"`

	Link       string    `gorm:"column:link"`
	InsertUser string    `gorm:"column:insert_user"`
	UpdateUser string    `gorm:"column:update_user"`
	InsertDate time.Time `gorm:"column:insert_date"`
	UpdateDate time.Time `gorm:"column:update_date"`
}

func (locationRow) TableName() string { return "monitoring_locations" }

func toRow(l domain.MonitoringLocation) locationRow {
	return locationRow{
		ID:             l.ID,
		AgencyCode:     strings.TrimSpace(l.AgencyCode),
		SiteNo:         strings.TrimSpace(l.SiteNo),
		SiteName:       l.SiteName,
		CountryCode:    nullString(l.CountryCode),
		StateCode:      nullString(l.StateCode),
		CountyCode:     nullString(l.CountyCode),
		DecLatVa:       nullDecimal(l.DecLatVa),
		DecLongVa:      nullDecimal(l.DecLongVa),
		HorzDatumCode:  nullString(l.HorzDatumCode),
		HorzMethod:     l.HorzMethod,
		HorzAcy:        l.HorzAcy,
		AltVa:          nullDecimal(l.AltVa),
		AltUnits:       l.AltUnits,
		AltDatumCode:   nullString(l.AltDatumCode),
		AltMethod:      l.AltMethod,
		AltAcy:         l.AltAcy,
		WellDepth:      nullDecimal(l.WellDepth),
		WellDepthUnits: l.WellDepthUnits,
		NatAqfrCode:    nullString(l.NatAqfrCode),
		LocalAquifer:   l.LocalAquiferName,
		SiteType:       string(l.SiteType),
		AquiferType:    string(l.AquiferType),
		DisplayFlag:    l.DisplayFlag,

		WLSnFlag:           l.WLSnFlag,
		WLNetworkName:      l.WLNetworkName,
		WLBaselineFlag:     l.WLBaselineFlag,
		WLWellType:         string(l.WLWellType),
		WLWellChars:        string(l.WLWellChars),
		WLWellPurpose:      string(l.WLWellPurpose),
		WLWellPurposeNotes: l.WLWellPurposeNotes,
		QWSnFlag:           l.QWSnFlag,
		QWNetworkName:      l.QWNetworkName,
		QWBaselineFlag:     l.QWBaselineFlag,
		QWWellType:         string(l.QWWellType),
		QWWellChars:        string(l.QWWellChars),
		QWWellPurpose:      string(l.QWWellPurpose),
		QWWellPurposeNotes: l.QWWellPurposeNotes,

		Link:       l.Link,
		InsertUser: l.InsertUser,
		UpdateUser: l.UpdateUser,
		InsertDate: l.InsertDate.UTC(),
		UpdateDate: l.UpdateDate.UTC(),
	}
}

func (r locationRow) toDomain() domain.MonitoringLocation {
	return domain.MonitoringLocation{
		ID:               r.ID,
		AgencyCode:       r.AgencyCode,
		SiteNo:           r.SiteNo,
		SiteName:         r.SiteName,
		CountryCode:      deref(r.CountryCode),
		StateCode:        deref(r.StateCode),
		CountyCode:       deref(r.CountyCode),
		DecLatVa:         fromNullDecimal(r.DecLatVa),
		DecLongVa:        fromNullDecimal(r.DecLongVa),
		HorzDatumCode:    deref(r.HorzDatumCode),
		HorzMethod:       r.HorzMethod,
		HorzAcy:          r.HorzAcy,
		AltVa:            fromNullDecimal(r.AltVa),
		AltUnits:         r.AltUnits,
		AltDatumCode:     deref(r.AltDatumCode),
		AltMethod:        r.AltMethod,
		AltAcy:           r.AltAcy,
		WellDepth:        fromNullDecimal(r.WellDepth),
		WellDepthUnits:   r.WellDepthUnits,
		NatAqfrCode:      deref(r.NatAqfrCode),
		LocalAquiferName: r.LocalAquifer,
		SiteType:         domain.SiteType(r.SiteType),
		AquiferType:      domain.AquiferType(r.AquiferType),
		DisplayFlag:      r.DisplayFlag,

		WLSnFlag:           r.WLSnFlag,
		WLNetworkName:      r.WLNetworkName,
		WLBaselineFlag:     r.WLBaselineFlag,
		WLWellType:         domain.WellType(r.WLWellType),
		WLWellChars:        domain.WellCharacteristics(r.WLWellChars),
		WLWellPurpose:      domain.WellPurpose(r.WLWellPurpose),
		WLWellPurposeNotes: r.WLWellPurposeNotes,
		QWSnFlag:           r.QWSnFlag,
		QWNetworkName:      r.QWNetworkName,
		QWBaselineFlag:     r.QWBaselineFlag,
		QWWellType:         domain.WellType(r.QWWellType),
		QWWellChars:        domain.WellCharacteristics(r.QWWellChars),
		QWWellPurpose:      domain.WellPurpose(r.QWWellPurpose),
		QWWellPurposeNotes: r.QWWellPurposeNotes,

		Link:       r.Link,
		InsertUser: r.InsertUser,
		UpdateUser: r.UpdateUser,
		InsertDate: r.InsertDate.UTC(),
		UpdateDate: r.UpdateDate.UTC(),
	}
}

func nullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

// Lookup rows.

type agencyRow struct {
	Code   string `gorm:"column:agency_cd;primaryKey"`
	Name   string `gorm:"column:agency_nm"`
	Medium string `gorm:"column:agency_med"`
}

func (agencyRow) TableName() string { return "agency_lookups" }

type countryRow struct {
	Code string `gorm:"column:country_cd;primaryKey"`
	Name string `gorm:"column:country_nm"`
}

func (countryRow) TableName() string { return "country_lookups" }

type stateRow struct {
	CountryCode string `gorm:"column:country_cd;primaryKey"`
	Code        string `gorm:"column:state_cd;primaryKey"`
	Name        string `gorm:"column:state_nm"`
}

func (stateRow) TableName() string { return "state_lookups" }

type countyRow struct {
	CountryCode string `gorm:"column:country_cd;primaryKey"`
	StateCode   string `gorm:"column:state_cd;primaryKey"`
	Code        string `gorm:"column:county_cd;primaryKey"`
	Name        string `gorm:"column:county_nm"`
}

func (countyRow) TableName() string { return "county_lookups" }

type horizontalDatumRow struct {
	Code        string `gorm:"column:hdatum_cd;primaryKey"`
	Description string `gorm:"column:hdatum_desc"`
}

func (horizontalDatumRow) TableName() string { return "horizontal_datum_lookups" }

type altitudeDatumRow struct {
	Code        string `gorm:"column:adatum_cd;primaryKey"`
	Description string `gorm:"column:adatum_desc"`
}

func (altitudeDatumRow) TableName() string { return "altitude_datum_lookups" }

type nationalAquiferRow struct {
	Code        string `gorm:"column:nat_aqfr_cd;primaryKey"`
	Description string `gorm:"column:nat_aqfr_desc"`
}

func (nationalAquiferRow) TableName() string { return "nat_aqfr_lookups" }

type unitRow struct {
	ID          int    `gorm:"column:unit_id;primaryKey;autoIncrement:false"`
	Description string `gorm:"column:unit_desc"`
}

func (unitRow) TableName() string { return "units_lookups" }
