package domain

import "slices"

// Field names of every user-editable monitoring location attribute, in form order.
var editable = []string{
	"agency_cd", "site_no", "site_name",
	"country_cd", "state_cd", "county_cd", "dec_lat_va", "dec_long_va",
	"horz_datum_cd", "horz_method", "horz_acy",
	"alt_va", "alt_units", "alt_datum_cd", "alt_method", "alt_acy",
	"well_depth", "well_depth_units", "nat_aqfr_cd", "local_aquifer_name",
	"site_type", "aqfr_type", "display_flag",
	"wl_sn_flag", "wl_network_name", "wl_baseline_flag", "wl_well_type",
	"wl_well_chars", "wl_well_purpose", "wl_well_purpose_notes",
	"qw_sn_flag", "qw_network_name", "qw_baseline_flag", "qw_well_type",
	"qw_well_chars", "qw_well_purpose", "qw_well_purpose_notes",
	"link",
}

// EditableFields returns the fields ac may set on loc (nil for a new record).
// Only superusers may set or reassign the agency. The result is empty when
// ac may not write loc at all.
func EditableFields(ac AccessContext, loc *MonitoringLocation) []string {
	allowed := CanAdd(ac)
	if loc != nil {
		allowed = CanChange(ac, loc)
	}
	if !allowed {
		return nil
	}
	if ac.Superuser {
		return slices.Clone(editable)
	}
	out := make([]string, 0, len(editable)-1)
	for _, f := range editable {
		if f != "agency_cd" {
			out = append(out, f)
		}
	}
	return out
}

// MergeEditable copies the fields ac may edit from input onto existing and
// returns the result. Identity and provenance always come from existing.
func MergeEditable(ac AccessContext, existing, input MonitoringLocation) MonitoringLocation {
	merged := input
	merged.ID = existing.ID
	merged.InsertUser = existing.InsertUser
	merged.InsertDate = existing.InsertDate
	merged.UpdateUser = existing.UpdateUser
	merged.UpdateDate = existing.UpdateDate
	if !slices.Contains(EditableFields(ac, &existing), "agency_cd") {
		merged.AgencyCode = existing.AgencyCode
	}
	return merged
}
