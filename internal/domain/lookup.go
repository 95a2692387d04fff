package domain

import "context"

// Agency is an organization that owns monitoring locations.
type Agency struct {
	Code   string `json:"agency_cd"`
	Name   string `json:"agency_nm"`
	Medium string `json:"agency_med"`
}

// Country is a top-level geographic lookup.
type Country struct {
	Code string `json:"country_cd"`
	Name string `json:"country_nm"`
}

// State is scoped by its country.
type State struct {
	CountryCode string `json:"country_cd"`
	Code        string `json:"state_cd"`
	Name        string `json:"state_nm"`
}

// County is scoped by its country and state.
type County struct {
	CountryCode string `json:"country_cd"`
	StateCode   string `json:"state_cd"`
	Code        string `json:"county_cd"`
	Name        string `json:"county_nm"`
}

// HorizontalDatum is a coordinate reference datum such as NAD83.
type HorizontalDatum struct {
	Code        string `json:"hdatum_cd"`
	Description string `json:"hdatum_desc"`
}

// AltitudeDatum is a vertical reference datum such as NAVD88.
type AltitudeDatum struct {
	Code        string `json:"adatum_cd"`
	Description string `json:"adatum_desc"`
}

// NationalAquifer is a principal aquifer from the national aquifer list.
type NationalAquifer struct {
	Code        string `json:"nat_aqfr_cd"`
	Description string `json:"nat_aqfr_desc"`
}

// Unit is a measurement unit for altitude and well depth.
type Unit struct {
	ID          int    `json:"unit_id"`
	Description string `json:"unit_desc"`
}

// Lookups resolves lookup references by natural key. Every method returns an
// error wrapping ErrNotFound when no row matches, including when a state or
// county exists but under a different parent scope.
type Lookups interface {
	Agency(ctx context.Context, code string) (Agency, error)
	Country(ctx context.Context, code string) (Country, error)
	State(ctx context.Context, countryCode, stateCode string) (State, error)
	County(ctx context.Context, countryCode, stateCode, countyCode string) (County, error)
	HorizontalDatum(ctx context.Context, code string) (HorizontalDatum, error)
	AltitudeDatum(ctx context.Context, code string) (AltitudeDatum, error)
	NationalAquifer(ctx context.Context, code string) (NationalAquifer, error)
	Unit(ctx context.Context, id int) (Unit, error)
}

// NameLookups resolves the free-text names used in bulk upload files.
type NameLookups interface {
	Lookups
	CountryByName(ctx context.Context, name string) (Country, error)
	StateByName(ctx context.Context, countryCode, name string) (State, error)
	CountyByName(ctx context.Context, countryCode, stateCode, name string) (County, error)
	UnitByDescription(ctx context.Context, description string) (Unit, error)
}
