package registry

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	msgColumnCount = "Does not contain the correct number of columns"
	fieldFile      = "file_error"
)

// Row is one data row of a bulk file. Number is the row as the user sees it
// in a spreadsheet; the header is row 1. Malformed is set, and Cells left
// empty, when the row could not be parsed.
type Row struct {
	Number    int
	Cells     []string
	Malformed string
}

// RowIssues groups the messages reported for one row.
type RowIssues struct {
	Row      int               `json:"row"`
	Messages domain.Violations `json:"messages"`
}

// IngestResult reports a bulk upload. Warnings are only reported when the
// batch has no errors.
type IngestResult struct {
	Inserted int         `json:"inserted"`
	Errors   []RowIssues `json:"errors,omitempty"`
	Warnings []RowIssues `json:"warnings,omitempty"`
	DryRun   bool        `json:"dry_run,omitempty"`
}

// OK reports whether the batch was accepted.
func (r IngestResult) OK() bool { return len(r.Errors) == 0 }

var zipMagic = []byte("PK\x03\x04")

// ReadRows parses a bulk upload as CSV, or as an Excel workbook when the
// name ends in .xlsx or the content is a zip archive. The header row is
// dropped.
func ReadRows(r io.Reader, name string) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if strings.EqualFold(filepath.Ext(name), ".xlsx") || bytes.HasPrefix(data, zipMagic) {
		return readWorkbook(data)
	}
	return readCSV(data)
}

func readCSV(data []byte) ([]Row, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []Row
	header := true
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		// Rows are numbered by record, so quoted line breaks inside a cell
		// do not shift the rows after it.
		row := Row{Number: len(rows) + 2, Cells: cells}
		if parseErr != nil {
			row.Cells = nil
			row.Malformed = fmt.Sprintf("Could not read line %d: %v", parseErr.StartLine, parseErr.Err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readWorkbook(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	// Spreadsheets drop trailing empty cells, so short rows are padded to the
	// header width.
	width := len(all[0])
	var rows []Row
	for i, cells := range all[1:] {
		if len(cells) == 0 {
			continue
		}
		if len(cells) < width {
			cells = append(cells, make([]string, width-len(cells))...)
		}
		rows = append(rows, Row{Number: i + 2, Cells: cells})
	}
	return rows, nil
}

// Ingest validates every row and, when none has an error, inserts them all
// in one transaction. With dryRun nothing is written.
func (s *Service) Ingest(ctx context.Context, ac domain.AccessContext, rows []Row, dryRun bool) (IngestResult, error) {
	if !domain.CanAdd(ac) {
		return IngestResult{}, domain.ErrForbidden
	}

	var (
		result IngestResult
		locs   []domain.MonitoringLocation
	)
	result.DryRun = dryRun
	err := s.repo.InTx(ctx, func(tx domain.Repository) error {
		validator := domain.NewValidator(tx, tx)
		seen := make(map[string]int, len(rows))
		for _, row := range rows {
			if row.Malformed != "" {
				result.Errors = append(result.Errors, RowIssues{
					Row:      row.Number,
					Messages: domain.Violations{{Field: fieldFile, Message: row.Malformed}},
				})
				continue
			}
			if len(row.Cells) < uploadColumns {
				result.Errors = append(result.Errors, RowIssues{
					Row:      row.Number,
					Messages: domain.Violations{{Field: fieldFile, Message: msgColumnCount}},
				})
				continue
			}

			loc, rowErrs, warnings, err := s.buildRow(ctx, tx, ac, row.Cells)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.Number, err)
			}
			if len(warnings) > 0 {
				result.Warnings = append(result.Warnings, RowIssues{Row: row.Number, Messages: warnings})
			}

			violations, err := validator.Validate(ctx, &loc)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.Number, err)
			}
			for _, v := range violations {
				if !rowErrs.Has(v.Field) {
					rowErrs = append(rowErrs, v)
				}
			}

			key := loc.AgencyCode + ":" + loc.SiteNo
			if first, dup := seen[key]; dup && !rowErrs.Has("site_no") {
				rowErrs = append(rowErrs, domain.Violation{
					Field:   "site_no",
					Message: fmt.Sprintf("Site %s is also in row %d of this file.", key, first),
				})
			} else if !dup {
				seen[key] = row.Number
			}

			if len(rowErrs) > 0 {
				result.Errors = append(result.Errors, RowIssues{Row: row.Number, Messages: rowErrs})
				continue
			}
			locs = append(locs, loc)
		}

		if len(result.Errors) > 0 || dryRun {
			return nil
		}
		return tx.CreateBatch(ctx, locs)
	})
	if err != nil {
		s.metrics.BulkUploads.WithLabelValues("failed").Inc()
		return IngestResult{}, err
	}

	s.metrics.BulkRows.WithLabelValues("error").Add(float64(len(result.Errors)))
	s.metrics.BulkRows.WithLabelValues("warning").Add(float64(len(result.Warnings)))
	if !result.OK() {
		result.Warnings = nil
		s.metrics.BulkUploads.WithLabelValues("rejected").Inc()
		s.metrics.ValidationFailures.WithLabelValues(string(domain.SourceBulk)).Add(float64(len(result.Errors)))
		s.logger.Warn("bulk upload rejected", "rows", len(rows), "error_rows", len(result.Errors), "user", ac.Username)
		return result, nil
	}
	if dryRun {
		result.Inserted = 0
		return result, nil
	}

	result.Inserted = len(locs)
	s.metrics.BulkUploads.WithLabelValues("committed").Inc()
	s.metrics.BulkRows.WithLabelValues("inserted").Add(float64(len(locs)))
	s.logger.Info("bulk upload committed", "rows", len(locs), "warning_rows", len(result.Warnings), "user", ac.Username)
	if len(locs) > 0 {
		s.committed(ctx, domain.SourceBulk, ac.Username, domain.ActionCreated, locs...)
	}
	return result, nil
}

// buildRow turns the cells of one upload row into a candidate record.
// Names that do not resolve are returned as row errors; unparseable numbers
// as warnings with the field left unset.
func (s *Service) buildRow(ctx context.Context, repo domain.NameLookups, ac domain.AccessContext, cells []string) (domain.MonitoringLocation, domain.Violations, domain.Violations, error) {
	var errs, warnings domain.Violations
	cell := func(i int) string { return strings.TrimSpace(cells[i]) }
	number := func(field string, i int) *decimal.Decimal {
		raw := cell(i)
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			warnings = append(warnings, domain.Violation{Field: field, Message: fmt.Sprintf("Invalid Value '%s'", cells[i])})
			return nil
		}
		return &d
	}
	yes := func(i int) bool { return cell(i) == "Yes" }

	loc := domain.MonitoringLocation{
		AgencyCode:    strings.ToUpper(cell(colAgency)),
		SiteNo:        cell(colSiteNo),
		SiteName:      cell(colSiteName),
		DecLatVa:      number("dec_lat_va", colLat),
		DecLongVa:     number("dec_long_va", colLong),
		HorzDatumCode: cell(colHorzDatum),
		HorzMethod:    cell(colHorzMethod),
		HorzAcy:       cell(colHorzAcy),
		AltVa:         number("alt_va", colAlt),
		AltDatumCode:  cell(colAltDatum),
		AltMethod:     cell(colAltMethod),
		AltAcy:        cell(colAltAcy),
		NatAqfrCode:   cell(colNatAqfr),
		WellDepth:     number("well_depth", colWellDepth),
		SiteType:      domain.SiteType(cell(colSiteType)),
		AquiferType:   domain.AquiferType(cell(colAqfrType)),
		DisplayFlag:   yes(colDisplayFlag),

		QWSnFlag:           yes(colQWSnFlag),
		QWBaselineFlag:     yes(colQWBaselineFlag),
		QWWellChars:        domain.WellCharacteristics(cell(colQWWellChars)),
		QWWellType:         domain.WellType(cell(colQWWellType)),
		QWWellPurpose:      domain.WellPurpose(cell(colQWWellPurpose)),
		QWWellPurposeNotes: cell(colQWWellPurposeNotes),
		QWNetworkName:      cell(colQWNetworkName),
		WLSnFlag:           yes(colWLSnFlag),
		WLBaselineFlag:     yes(colWLBaselineFlag),
		WLWellChars:        domain.WellCharacteristics(cell(colWLWellChars)),
		WLWellType:         domain.WellType(cell(colWLWellType)),
		WLWellPurpose:      domain.WellPurpose(cell(colWLWellPurpose)),
		WLWellPurposeNotes: cell(colWLWellPurposeNotes),
		WLNetworkName:      cell(colWLNetworkName),
		Link:               cell(colLink),
	}
	loc.LocalAquiferName = cell(colLocalAquiferName)
	if code := cell(colLocalAquiferCode); code != "" {
		loc.LocalAquiferName += " (" + code + ")"
	}

	resolve := func(field, label, value string, fn func() error) error {
		if value == "" {
			return nil
		}
		err := fn()
		if errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, domain.Violation{Field: field, Message: fmt.Sprintf("Invalid %s %q.", label, value)})
			return nil
		}
		return err
	}
	steps := []struct {
		field, label string
		col          int
		fn           func() error
	}{
		{"country_cd", "country name", colCountry, func() error {
			c, err := repo.CountryByName(ctx, cell(colCountry))
			loc.CountryCode = c.Code
			return err
		}},
		{"state_cd", "state name", colState, func() error {
			if loc.CountryCode == "" {
				return domain.ErrNotFound
			}
			st, err := repo.StateByName(ctx, loc.CountryCode, cell(colState))
			loc.StateCode = st.Code
			return err
		}},
		{"county_cd", "county name", colCounty, func() error {
			if loc.StateCode == "" {
				return domain.ErrNotFound
			}
			c, err := repo.CountyByName(ctx, loc.CountryCode, loc.StateCode, cell(colCounty))
			loc.CountyCode = c.Code
			return err
		}},
		{"alt_units", "unit", colAltUnits, func() error {
			u, err := repo.UnitByDescription(ctx, cell(colAltUnits))
			if err == nil {
				loc.AltUnits = &u.ID
			}
			return err
		}},
		{"well_depth_units", "unit", colWellDepthUnits, func() error {
			u, err := repo.UnitByDescription(ctx, cell(colWellDepthUnits))
			if err == nil {
				loc.WellDepthUnits = &u.ID
			}
			return err
		}},
	}
	for _, st := range steps {
		if err := resolve(st.field, st.label, cell(st.col), st.fn); err != nil {
			return domain.MonitoringLocation{}, nil, nil, err
		}
	}

	domain.ApplyDefaultAgency(ac, &loc)
	if !ac.Superuser && loc.AgencyCode != "" && !ac.InAgency(loc.AgencyCode) {
		errs = append(errs, domain.Violation{
			Field:   "agency_cd",
			Message: fmt.Sprintf("You may not add sites for agency %s.", loc.AgencyCode),
		})
	}
	loc.Touch(ac.Username)
	return loc, errs, warnings, nil
}
