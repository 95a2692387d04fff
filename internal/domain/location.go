package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SiteType distinguishes wells from springs.
type SiteType string

const (
	SiteTypeWell   SiteType = "WELL"
	SiteTypeSpring SiteType = "SPRING"
)

// AquiferType is the confinement of the aquifer a well is completed in.
type AquiferType string

const (
	AquiferConfined   AquiferType = "CONFINED"
	AquiferUnconfined AquiferType = "UNCONFINED"
)

// WellType classifies a site's role in a subnetwork.
type WellType string

const (
	WellTypeTrend        WellType = "Trend"
	WellTypeSurveillance WellType = "Surveillance"
	WellTypeSpecial      WellType = "Special"
)

// WellCharacteristics describes expected anthropogenic influence on a site.
type WellCharacteristics string

const (
	WellCharsBackground WellCharacteristics = "Background"
	WellCharsSuspected  WellCharacteristics = "Suspected/Anticipated Changes"
	WellCharsKnown      WellCharacteristics = "Known Changes"
)

// WellPurpose describes why a well exists.
type WellPurpose string

const (
	WellPurposeDedicated WellPurpose = "Dedicated Monitoring/Observation"
	WellPurposeOther     WellPurpose = "Other"
)

// MonitoringLocation is a registered groundwater site. Lookup references hold
// natural codes; decimal and unit fields are nil when unset.
type MonitoringLocation struct {
	ID         uuid.UUID `json:"id"`
	AgencyCode string    `json:"agency_cd"`
	SiteNo     string    `json:"site_no" validate:"max=16"`
	SiteName   string    `json:"site_name" validate:"max=300"`

	CountryCode   string           `json:"country_cd"`
	StateCode     string           `json:"state_cd"`
	CountyCode    string           `json:"county_cd"`
	DecLatVa      *decimal.Decimal `json:"dec_lat_va"`
	DecLongVa     *decimal.Decimal `json:"dec_long_va"`
	HorzDatumCode string           `json:"horz_datum_cd"`
	HorzMethod    string           `json:"horz_method" validate:"max=300"`
	HorzAcy       string           `json:"horz_acy" validate:"max=300"`

	AltVa        *decimal.Decimal `json:"alt_va"`
	AltUnits     *int             `json:"alt_units"`
	AltDatumCode string           `json:"alt_datum_cd"`
	AltMethod    string           `json:"alt_method" validate:"max=300"`
	AltAcy       string           `json:"alt_acy" validate:"max=300"`

	WellDepth        *decimal.Decimal `json:"well_depth"`
	WellDepthUnits   *int             `json:"well_depth_units"`
	NatAqfrCode      string           `json:"nat_aqfr_cd"`
	LocalAquiferName string           `json:"local_aquifer_name" validate:"max=100"`
	SiteType         SiteType         `json:"site_type" validate:"omitempty,oneof=WELL SPRING"`
	AquiferType      AquiferType      `json:"aqfr_type" validate:"omitempty,oneof=CONFINED UNCONFINED"`

	DisplayFlag bool   `json:"display_flag"`
	Link        string `json:"link" validate:"omitempty,max=500,http_url"`

	WLSnFlag           bool                `json:"wl_sn_flag"`
	WLNetworkName      string              `json:"wl_network_name" validate:"max=50"`
	WLBaselineFlag     bool                `json:"wl_baseline_flag"`
	WLWellType         WellType            `json:"wl_well_type" validate:"omitempty,oneof=Trend Surveillance Special"`
	WLWellChars        WellCharacteristics `json:"wl_well_chars" validate:"omitempty,oneof=Background 'Suspected/Anticipated Changes' 'Known Changes'"`
	WLWellPurpose      WellPurpose         `json:"wl_well_purpose" validate:"omitempty,oneof='Dedicated Monitoring/Observation' Other"`
	WLWellPurposeNotes string              `json:"wl_well_purpose_notes" validate:"max=4000"`

	QWSnFlag           bool                `json:"qw_sn_flag"`
	QWNetworkName      string              `json:"qw_network_name" validate:"max=50"`
	QWBaselineFlag     bool                `json:"qw_baseline_flag"`
	QWWellType         WellType            `json:"qw_well_type" validate:"omitempty,oneof=Trend Surveillance Special"`
	QWWellChars        WellCharacteristics `json:"qw_well_chars" validate:"omitempty,oneof=Background 'Suspected/Anticipated Changes' 'Known Changes'"`
	QWWellPurpose      WellPurpose         `json:"qw_well_purpose" validate:"omitempty,oneof='Dedicated Monitoring/Observation' Other"`
	QWWellPurposeNotes string              `json:"qw_well_purpose_notes" validate:"max=4000"`

	InsertUser string    `json:"insert_user"`
	UpdateUser string    `json:"update_user"`
	InsertDate time.Time `json:"insert_date"`
	UpdateDate time.Time `json:"update_date"`
}

// subnetwork is a read-only view over the WL or QW fields, keyed by the
// column prefix used in field names.
type subnetwork struct {
	prefix      string
	enrolled    bool
	baseline    bool
	wellType    WellType
	wellChars   WellCharacteristics
	wellPurpose WellPurpose
}

func (l *MonitoringLocation) subnetworks() []subnetwork {
	return []subnetwork{
		{"wl", l.WLSnFlag, l.WLBaselineFlag, l.WLWellType, l.WLWellChars, l.WLWellPurpose},
		{"qw", l.QWSnFlag, l.QWBaselineFlag, l.QWWellType, l.QWWellChars, l.QWWellPurpose},
	}
}

// SiteID is the display identifier "AGENCY:site_no".
func (l *MonitoringLocation) SiteID() string {
	return fmt.Sprintf("%s:%s", l.AgencyCode, l.SiteNo)
}

// Touch records provenance for a write by user. Insert fields are set only
// the first time.
func (l *MonitoringLocation) Touch(user string) {
	now := Now()
	if l.InsertUser == "" {
		l.InsertUser = user
	}
	if l.InsertDate.IsZero() {
		l.InsertDate = now
	}
	l.UpdateUser = user
	l.UpdateDate = now
}
