package domain

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const msgRequired = "This field is required."

// Violation is a single field-attributed validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is an ordered list of validation failures. A non-empty value is
// returned as an error by write operations.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, len(v))
	for i, viol := range v {
		parts[i] = viol.Field + ": " + viol.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any violation is attributed to field.
func (v Violations) Has(field string) bool {
	for _, viol := range v {
		if viol.Field == field {
			return true
		}
	}
	return false
}

// Rule is one independent check evaluated against a fully populated record.
type Rule struct {
	Field    string
	Message  string
	Violated func(l *MonitoringLocation) bool
}

// SiteIndex finds records by their natural key (agency code, site number).
type SiteIndex interface {
	FindBySite(ctx context.Context, agencyCode, siteNo string) (MonitoringLocation, error)
}

// Validator runs the record rules, lookup resolution, and the uniqueness
// check. It never writes.
type Validator struct {
	lookups Lookups
	sites   SiteIndex
	rules   []Rule
}

// NewValidator creates a Validator. sites may be nil to skip the uniqueness check.
func NewValidator(lookups Lookups, sites SiteIndex) *Validator {
	return &Validator{lookups: lookups, sites: sites, rules: Rules()}
}

// Validate returns every violation found on l: rules first, then the
// per-field constraints declared in struct tags, then lookups and uniqueness.
// The error is non-nil only for lookup or storage failures other than not
// found.
func (v *Validator) Validate(ctx context.Context, l *MonitoringLocation) (Violations, error) {
	var out Violations
	for _, r := range v.rules {
		if r.Violated(l) {
			out = append(out, Violation{Field: r.Field, Message: r.Message})
		}
	}

	fieldViolations, err := checkFields(l)
	if err != nil {
		return nil, err
	}
	out = append(out, fieldViolations...)

	lookupViolations, err := v.checkLookups(ctx, l)
	if err != nil {
		return nil, err
	}
	out = append(out, lookupViolations...)

	if v.sites != nil && !blank(l.AgencyCode) && !blank(l.SiteNo) {
		existing, err := v.sites.FindBySite(ctx, l.AgencyCode, l.SiteNo)
		switch {
		case err == nil && existing.ID != l.ID:
			out = append(out, Violation{
				Field:   "site_no",
				Message: fmt.Sprintf("Monitoring location with site number %s and agency %s already exists.", l.SiteNo, l.AgencyCode),
			})
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("check site uniqueness: %w", err)
		}
	}
	return out, nil
}

// checkLookups resolves every non-blank lookup reference. Blank references
// are reported by the required-field rules instead.
func (v *Validator) checkLookups(ctx context.Context, l *MonitoringLocation) (Violations, error) {
	var out Violations
	check := func(field, label, value string, resolve func() error) error {
		if blank(value) {
			return nil
		}
		err := resolve()
		if errors.Is(err, ErrNotFound) {
			out = append(out, Violation{Field: field, Message: fmt.Sprintf("Invalid %s %q.", label, value)})
			return nil
		}
		if err != nil {
			return fmt.Errorf("resolve %s: %w", label, err)
		}
		return nil
	}

	checks := []struct {
		field, label, value string
		resolve             func() error
	}{
		{"agency_cd", "agency", l.AgencyCode, func() error { _, err := v.lookups.Agency(ctx, l.AgencyCode); return err }},
		{"country_cd", "country", l.CountryCode, func() error { _, err := v.lookups.Country(ctx, l.CountryCode); return err }},
		{"state_cd", "state", l.StateCode, func() error {
			_, err := v.lookups.State(ctx, l.CountryCode, l.StateCode)
			return err
		}},
		{"county_cd", "county", l.CountyCode, func() error {
			_, err := v.lookups.County(ctx, l.CountryCode, l.StateCode, l.CountyCode)
			return err
		}},
		{"horz_datum_cd", "horizontal datum", l.HorzDatumCode, func() error {
			_, err := v.lookups.HorizontalDatum(ctx, l.HorzDatumCode)
			return err
		}},
		{"alt_datum_cd", "altitude datum", l.AltDatumCode, func() error {
			_, err := v.lookups.AltitudeDatum(ctx, l.AltDatumCode)
			return err
		}},
		{"nat_aqfr_cd", "national aquifer", l.NatAqfrCode, func() error {
			_, err := v.lookups.NationalAquifer(ctx, l.NatAqfrCode)
			return err
		}},
	}
	for _, c := range checks {
		if err := check(c.field, c.label, c.value, c.resolve); err != nil {
			return nil, err
		}
	}

	units := []struct {
		field string
		id    *int
	}{
		{"alt_units", l.AltUnits},
		{"well_depth_units", l.WellDepthUnits},
	}
	for _, u := range units {
		if u.id == nil {
			continue
		}
		id := *u.id
		if err := check(u.field, "unit", fmt.Sprint(id), func() error {
			_, err := v.lookups.Unit(ctx, id)
			return err
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Rules returns the record rules in evaluation order: required fields,
// decimal precision, then the cross-field invariants.
func Rules() []Rule {
	var rules []Rule

	requiredText := []struct {
		field string
		get   func(*MonitoringLocation) string
	}{
		{"agency_cd", func(l *MonitoringLocation) string { return l.AgencyCode }},
		{"site_no", func(l *MonitoringLocation) string { return l.SiteNo }},
		{"site_name", func(l *MonitoringLocation) string { return l.SiteName }},
		{"country_cd", func(l *MonitoringLocation) string { return l.CountryCode }},
		{"state_cd", func(l *MonitoringLocation) string { return l.StateCode }},
		{"county_cd", func(l *MonitoringLocation) string { return l.CountyCode }},
		{"horz_datum_cd", func(l *MonitoringLocation) string { return l.HorzDatumCode }},
		{"alt_datum_cd", func(l *MonitoringLocation) string { return l.AltDatumCode }},
		{"nat_aqfr_cd", func(l *MonitoringLocation) string { return l.NatAqfrCode }},
		{"site_type", func(l *MonitoringLocation) string { return string(l.SiteType) }},
	}
	for _, f := range requiredText {
		get := f.get
		rules = append(rules, Rule{Field: f.field, Message: msgRequired, Violated: func(l *MonitoringLocation) bool {
			return blank(get(l))
		}})
	}

	rules = append(rules,
		Rule{"dec_lat_va", msgRequired, func(l *MonitoringLocation) bool { return l.DecLatVa == nil }},
		Rule{"dec_long_va", msgRequired, func(l *MonitoringLocation) bool { return l.DecLongVa == nil }},
		Rule{"alt_va", msgRequired, func(l *MonitoringLocation) bool { return l.AltVa == nil }},
		Rule{"alt_units", msgRequired, func(l *MonitoringLocation) bool { return l.AltUnits == nil }},
	)

	rules = append(rules, precisionRules()...)

	// Invariant: wells must declare an aquifer type.
	rules = append(rules, Rule{"aqfr_type", "Aquifer type is required when the site type is WELL.", func(l *MonitoringLocation) bool {
		return l.SiteType == SiteTypeWell && blank(string(l.AquiferType))
	}})

	// Invariant: well depth and its units are set together or not at all.
	rules = append(rules,
		Rule{"well_depth_units", "Well depth units are required when a well depth is given.", func(l *MonitoringLocation) bool {
			return l.WellDepth != nil && l.WellDepthUnits == nil
		}},
		Rule{"well_depth_units", "Well depth units must be blank when no well depth is given.", func(l *MonitoringLocation) bool {
			return l.WellDepth == nil && l.WellDepthUnits != nil
		}},
	)

	for _, sn := range []string{"wl", "qw"} {
		rules = append(rules, subnetworkRules(sn)...)
	}
	return rules
}

func subnetworkRules(prefix string) []Rule {
	view := func(l *MonitoringLocation) subnetwork {
		for _, s := range l.subnetworks() {
			if s.prefix == prefix {
				return s
			}
		}
		return subnetwork{}
	}
	label := strings.ToUpper(prefix)

	return []Rule{
		{prefix + "_well_type", label + " well type is required for a displayed site in the " + label + " subnetwork.", func(l *MonitoringLocation) bool {
			s := view(l)
			return l.DisplayFlag && s.enrolled && blank(string(s.wellType))
		}},
		{prefix + "_well_purpose", label + " well purpose is required for a displayed site in the " + label + " subnetwork.", func(l *MonitoringLocation) bool {
			s := view(l)
			return l.DisplayFlag && s.enrolled && blank(string(s.wellPurpose))
		}},
		{prefix + "_well_chars", label + " well characteristics are required for a displayed baseline site in the " + label + " subnetwork.", func(l *MonitoringLocation) bool {
			s := view(l)
			return l.DisplayFlag && s.enrolled && s.baseline && blank(string(s.wellChars))
		}},
	}
}

func precisionRules() []Rule {
	fields := []struct {
		field          string
		digits, places int32
		get            func(*MonitoringLocation) *decimal.Decimal
	}{
		{"dec_lat_va", 11, 8, func(l *MonitoringLocation) *decimal.Decimal { return l.DecLatVa }},
		{"dec_long_va", 11, 8, func(l *MonitoringLocation) *decimal.Decimal { return l.DecLongVa }},
		{"alt_va", 10, 6, func(l *MonitoringLocation) *decimal.Decimal { return l.AltVa }},
		{"well_depth", 11, 3, func(l *MonitoringLocation) *decimal.Decimal { return l.WellDepth }},
	}
	var rules []Rule
	for _, f := range fields {
		get, maxWhole, maxPlaces := f.get, int64(f.digits-f.places), int64(f.places)
		rules = append(rules,
			Rule{f.field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", maxPlaces), func(l *MonitoringLocation) bool {
				d := get(l)
				if d == nil {
					return false
				}
				_, places := digitCounts(*d)
				return places > maxPlaces
			}},
			Rule{f.field, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxWhole), func(l *MonitoringLocation) bool {
				d := get(l)
				if d == nil {
					return false
				}
				whole, _ := digitCounts(*d)
				return whole > maxWhole
			}},
		)
	}
	return rules
}

// digitCounts returns the digits before the decimal point and the
// significant digits after it. It works from the coefficient and exponent and
// never expands the value.
func digitCounts(d decimal.Decimal) (whole, places int64) {
	coef := d.Coefficient()
	digits := coef.Abs(coef).String()
	if digits == "0" {
		return 0, 0
	}
	trimmed := strings.TrimRight(digits, "0")
	exp := int64(d.Exponent()) + int64(len(digits)-len(trimmed))
	if exp < 0 {
		places = -exp
	}
	return max(int64(len(trimmed))+exp, 0), places
}

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkFields runs the length, URL, and choice constraints declared on
// MonitoringLocation and reports them against the json field names.
func checkFields(l *MonitoringLocation) (Violations, error) {
	err := fieldValidator.Struct(l)
	if err == nil {
		return nil, nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil, fmt.Errorf("check fields: %w", err)
	}
	out := make(Violations, 0, len(errs))
	for _, fe := range errs {
		out = append(out, Violation{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "http_url":
		return "Enter a valid URL."
	case "oneof":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	default:
		return fmt.Sprintf("Failed the %q constraint.", fe.Tag())
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
