package registry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportPageSize = 500

// Export writes every record visible to ac as CSV in the given layout.
// Lookup references are written as the names the upload expects.
func (s *Service) Export(ctx context.Context, ac domain.AccessContext, w io.Writer, layout Layout) (int, error) {
	if !ac.Has(domain.PermView) {
		return 0, domain.ErrForbidden
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(layout.Header()); err != nil {
		return 0, err
	}

	names := newNameCache(s.repo)
	scope := domain.VisibleScope(ac)
	written := 0
	for offset := 0; ; offset += exportPageSize {
		items, _, err := s.repo.List(ctx, scope, domain.ListFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return written, err
		}
		for i := range items {
			row, err := exportRow(ctx, names, &items[i])
			if err != nil {
				return written, err
			}
			if err := cw.Write(layout.project(row)); err != nil {
				return written, err
			}
			written++
		}
		if len(items) < exportPageSize {
			break
		}
	}
	cw.Flush()
	return written, cw.Error()
}

func exportRow(ctx context.Context, names *nameCache, l *domain.MonitoringLocation) ([]string, error) {
	country, err := names.country(ctx, l.CountryCode)
	if err != nil {
		return nil, err
	}
	state, err := names.state(ctx, l.CountryCode, l.StateCode)
	if err != nil {
		return nil, err
	}
	county, err := names.county(ctx, l.CountryCode, l.StateCode, l.CountyCode)
	if err != nil {
		return nil, err
	}
	altUnits, err := names.unit(ctx, l.AltUnits)
	if err != nil {
		return nil, err
	}
	depthUnits, err := names.unit(ctx, l.WellDepthUnits)
	if err != nil {
		return nil, err
	}

	row := make([]string, uploadColumns)
	row[colAgency] = l.AgencyCode
	row[colSiteNo] = l.SiteNo
	row[colSiteName] = l.SiteName
	row[colLat] = decimalString(l.DecLatVa)
	row[colLong] = decimalString(l.DecLongVa)
	row[colHorzDatum] = l.HorzDatumCode
	row[colHorzMethod] = l.HorzMethod
	row[colHorzAcy] = l.HorzAcy
	row[colAlt] = decimalString(l.AltVa)
	row[colAltUnits] = altUnits
	row[colAltDatum] = l.AltDatumCode
	row[colAltMethod] = l.AltMethod
	row[colAltAcy] = l.AltAcy
	row[colNatAqfr] = l.NatAqfrCode
	row[colLocalAquiferName] = l.LocalAquiferName
	row[colCountry] = country
	row[colState] = state
	row[colCounty] = county
	row[colWellDepth] = decimalString(l.WellDepth)
	row[colWellDepthUnits] = depthUnits
	row[colSiteType] = string(l.SiteType)
	row[colAqfrType] = string(l.AquiferType)
	row[colDisplayFlag] = yesNo(l.DisplayFlag)
	row[colQWSnFlag] = yesNo(l.QWSnFlag)
	row[colQWBaselineFlag] = yesNo(l.QWBaselineFlag)
	row[colQWWellChars] = string(l.QWWellChars)
	row[colQWWellType] = string(l.QWWellType)
	row[colQWWellPurpose] = string(l.QWWellPurpose)
	row[colQWWellPurposeNotes] = l.QWWellPurposeNotes
	row[colQWNetworkName] = l.QWNetworkName
	row[colWLSnFlag] = yesNo(l.WLSnFlag)
	row[colWLBaselineFlag] = yesNo(l.WLBaselineFlag)
	row[colWLWellChars] = string(l.WLWellChars)
	row[colWLWellType] = string(l.WLWellType)
	row[colWLWellPurpose] = string(l.WLWellPurpose)
	row[colWLWellPurposeNotes] = l.WLWellPurposeNotes
	row[colWLNetworkName] = l.WLNetworkName
	row[colLink] = l.Link
	return row, nil
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// nameCache memoizes lookup names for one export.
type nameCache struct {
	lookups domain.Lookups
	names   map[string]string
}

func newNameCache(lookups domain.Lookups) *nameCache {
	return &nameCache{lookups: lookups, names: make(map[string]string)}
}

func (c *nameCache) get(ctx context.Context, key string, load func(context.Context) (string, error)) (string, error) {
	if name, ok := c.names[key]; ok {
		return name, nil
	}
	name, err := load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		name, err = "", nil
	}
	if err != nil {
		return "", err
	}
	c.names[key] = name
	return name, nil
}

func (c *nameCache) country(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", nil
	}
	return c.get(ctx, "country/"+code, func(ctx context.Context) (string, error) {
		v, err := c.lookups.Country(ctx, code)
		return v.Name, err
	})
}

func (c *nameCache) state(ctx context.Context, country, code string) (string, error) {
	if code == "" {
		return "", nil
	}
	return c.get(ctx, "state/"+country+"/"+code, func(ctx context.Context) (string, error) {
		v, err := c.lookups.State(ctx, country, code)
		return v.Name, err
	})
}

func (c *nameCache) county(ctx context.Context, country, state, code string) (string, error) {
	if code == "" {
		return "", nil
	}
	return c.get(ctx, "county/"+country+"/"+state+"/"+code, func(ctx context.Context) (string, error) {
		v, err := c.lookups.County(ctx, country, state, code)
		return v.Name, err
	})
}

func (c *nameCache) unit(ctx context.Context, id *int) (string, error) {
	if id == nil {
		return "", nil
	}
	return c.get(ctx, "unit/"+strconv.Itoa(*id), func(ctx context.Context) (string, error) {
		v, err := c.lookups.Unit(ctx, *id)
		return v.Description, err
	})
}

const templateSheet = "Monitoring Locations"

// WriteTemplate writes an empty bulk upload workbook with the upload header
// and drop-down lists for the enumerated columns.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return err
	}
	header := LayoutUpload.Header()
	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(templateSheet, "A1", last+"1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(templateSheet, "A", last, 18); err != nil {
		return err
	}
	if err := f.SetPanes(templateSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	yesNoList := []string{"Yes", "No"}
	lists := map[int][]string{
		colSiteType:       {string(domain.SiteTypeWell), string(domain.SiteTypeSpring)},
		colAqfrType:       {string(domain.AquiferConfined), string(domain.AquiferUnconfined)},
		colDisplayFlag:    yesNoList,
		colQWSnFlag:       yesNoList,
		colQWBaselineFlag: yesNoList,
		colWLSnFlag:       yesNoList,
		colWLBaselineFlag: yesNoList,
		colQWWellType:     wellTypes(),
		colWLWellType:     wellTypes(),
		colQWWellPurpose:  wellPurposes(),
		colWLWellPurpose:  wellPurposes(),
		colQWWellChars:    wellChars(),
		colWLWellChars:    wellChars(),
	}
	for col, values := range lists {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s1048576", name, name)
		if err := dv.SetDropList(values); err != nil {
			return err
		}
		if err := f.AddDataValidation(templateSheet, dv); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func wellTypes() []string {
	return []string{string(domain.WellTypeTrend), string(domain.WellTypeSurveillance), string(domain.WellTypeSpecial)}
}

func wellPurposes() []string {
	return []string{string(domain.WellPurposeDedicated), string(domain.WellPurposeOther)}
}

func wellChars() []string {
	return []string{string(domain.WellCharsBackground), string(domain.WellCharsSuspected), string(domain.WellCharsKnown)}
}
