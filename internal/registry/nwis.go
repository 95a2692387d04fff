package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Overwrite is the caller's answer to "replace the existing record?".
type Overwrite string

const (
	OverwriteUnset Overwrite = ""
	OverwriteYes   Overwrite = "y"
	OverwriteNo    Overwrite = "n"
)

// ParseOverwrite accepts y/yes/n/no in any case; anything else is unset.
func ParseOverwrite(s string) Overwrite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true":
		return OverwriteYes
	case "n", "no", "false":
		return OverwriteNo
	}
	return OverwriteUnset
}

// FetchStatus is the terminal state of a fetch request.
type FetchStatus string

const (
	// FetchRedirect means the caller should continue at the record's edit page.
	FetchRedirect FetchStatus = "redirect"
	// FetchNeedsOverwriteChoice means the site exists and no choice was given.
	FetchNeedsOverwriteChoice FetchStatus = "needs_overwrite_choice"
	// FetchFailed means the site could not be imported; Message says why.
	FetchFailed FetchStatus = "failed"
)

// FetchOutcome is the result of FetchFromNWIS.
type FetchOutcome struct {
	Status     FetchStatus       `json:"status"`
	ID         uuid.UUID         `json:"id,omitempty"`
	Message    string            `json:"message,omitempty"`
	Violations domain.Violations `json:"errors,omitempty"`
}

func failed(format string, args ...any) FetchOutcome {
	return FetchOutcome{Status: FetchFailed, Message: fmt.Sprintf(format, args...)}
}

// NWIS aquifer type codes.
var nwisAquiferTypes = map[string]domain.AquiferType{
	"C": domain.AquiferConfined,
	"M": domain.AquiferConfined,
	"X": domain.AquiferConfined,
	"N": domain.AquiferUnconfined,
	"U": domain.AquiferUnconfined,
}

// FetchFromNWIS imports site siteNo from NWIS, creating a record or, when
// overwrite is yes, updating the existing one in place. Problems the user can
// act on are reported in the outcome; the error is reserved for access
// denial and infrastructure failures.
func (s *Service) FetchFromNWIS(ctx context.Context, ac domain.AccessContext, siteNo string, overwrite Overwrite) (FetchOutcome, error) {
	siteNo = strings.TrimSpace(siteNo)
	if siteNo == "" {
		return FetchOutcome{Status: FetchFailed, Violations: domain.Violations{{Field: "site_no", Message: "This field is required."}}}, nil
	}
	if len(siteNo) > 16 {
		return FetchOutcome{Status: FetchFailed, Violations: domain.Violations{{Field: "site_no", Message: "Ensure this value has at most 16 characters."}}}, nil
	}
	if !domain.CanFetchFromNWIS(ac, s.nwisAgency) {
		return FetchOutcome{}, domain.ErrForbidden
	}

	existing, err := s.repo.FindBySite(ctx, s.nwisAgency, siteNo)
	exists := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return FetchOutcome{}, err
	}
	switch {
	case exists && overwrite == OverwriteUnset:
		return FetchOutcome{Status: FetchNeedsOverwriteChoice, ID: existing.ID}, nil
	case exists && overwrite == OverwriteNo:
		return FetchOutcome{Status: FetchRedirect, ID: existing.ID}, nil
	}

	site, err := s.fetcher.FetchSite(ctx, siteNo)
	if err != nil {
		return s.fetchFailure(siteNo, err)
	}
	if msg := checkSite(site); msg != "" {
		return failed("%s", msg), nil
	}

	var (
		loc    domain.MonitoringLocation
		action = domain.ActionCreated
	)
	err = s.repo.InTx(ctx, func(tx domain.Repository) error {
		agency := field(site, "agency_cd")
		if agency == "" {
			agency = s.nwisAgency
		}
		current, err := tx.FindBySite(ctx, agency, field(site, "site_no"))
		switch {
		case err == nil:
			if !domain.CanChange(ac, &current) {
				return domain.ErrForbidden
			}
			loc, action = current, domain.ActionUpdated
		case errors.Is(err, domain.ErrNotFound):
			loc = domain.MonitoringLocation{AgencyCode: agency, SiteNo: field(site, "site_no")}
		default:
			return err
		}

		if v := s.applySite(&loc, site); len(v) > 0 {
			return v
		}
		loc.Touch(ac.Username)
		if err := s.check(ctx, tx, &loc, domain.SourceNWIS); err != nil {
			return err
		}
		if action == domain.ActionUpdated {
			return tx.Update(ctx, &loc)
		}
		return tx.Create(ctx, &loc)
	})
	if v, ok := AsViolations(err); ok {
		return FetchOutcome{Status: FetchFailed, Message: fmt.Sprintf("Site %s failed validation", siteNo), Violations: v}, nil
	}
	if err != nil {
		return FetchOutcome{}, err
	}

	s.committed(ctx, domain.SourceNWIS, ac.Username, action, loc)
	return FetchOutcome{Status: FetchRedirect, ID: loc.ID}, nil
}

func (s *Service) fetchFailure(siteNo string, err error) (FetchOutcome, error) {
	if errors.Is(err, domain.ErrSiteNotFound) {
		return failed("No site exists for %s", siteNo), nil
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.StatusCode != 0 {
			return failed("Service request to NWIS failed with status %d", upstream.StatusCode), nil
		}
		return failed("Service request to NWIS failed"), nil
	}
	if errors.Is(err, context.Canceled) {
		return FetchOutcome{}, err
	}
	s.logger.Error("nwis fetch", "site_no", siteNo, "error", err)
	return failed("Service request to NWIS failed"), nil
}

// checkSite rejects sites the registry does not track.
func checkSite(site map[string]string) string {
	switch field(site, "site_tp_cd") {
	case "GW", "SP":
	default:
		return "Site is not a Well or Spring (site_tp_cd is not GW or SP)"
	}
	if field(site, "well_depth_va") == "" {
		return "Site is missing a well depth"
	}
	return ""
}

// applySite copies the NWIS columns onto loc. Registry-only attributes such
// as the display and subnetwork flags are left as they are.
func (s *Service) applySite(loc *domain.MonitoringLocation, site map[string]string) domain.Violations {
	var v domain.Violations
	number := func(name, column string) *decimal.Decimal {
		raw := field(site, column)
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			v = append(v, domain.Violation{Field: name, Message: fmt.Sprintf("Invalid Value '%s'", raw)})
			return nil
		}
		return &d
	}
	feet := 1

	loc.SiteName = field(site, "station_nm")
	loc.CountryCode = field(site, "country_cd")
	loc.StateCode = field(site, "state_cd")
	loc.CountyCode = field(site, "county_cd")
	loc.DecLatVa = number("dec_lat_va", "dec_lat_va")
	loc.DecLongVa = number("dec_long_va", "dec_long_va")
	loc.HorzDatumCode = field(site, "dec_coord_datum_cd")
	loc.HorzMethod = field(site, "coord_meth_cd")
	loc.HorzAcy = field(site, "coord_acy_cd")
	loc.AltVa = number("alt_va", "alt_va")
	loc.AltUnits = &feet
	loc.AltDatumCode = field(site, "alt_datum_cd")
	loc.AltMethod = field(site, "alt_meth_cd")
	loc.AltAcy = field(site, "alt_acy_va")
	loc.WellDepth = number("well_depth", "well_depth_va")
	loc.WellDepthUnits = &feet
	loc.NatAqfrCode = field(site, "nat_aqfr_cd")
	loc.LocalAquiferName = s.aquifers.Name(field(site, "aqfr_cd"), loc.StateCode)
	loc.SiteType = domain.SiteTypeWell
	if field(site, "site_tp_cd") == "SP" {
		loc.SiteType = domain.SiteTypeSpring
	}
	loc.AquiferType = nwisAquiferTypes[strings.ToUpper(field(site, "aqfr_type_cd"))]
	return v
}

func field(site map[string]string, column string) string {
	return strings.TrimSpace(site[column])
}
