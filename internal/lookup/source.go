// Package lookup loads lookup reference data from its canonical CSV sources.
package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/couchcryptid/well-registry/internal/domain"
)

// Source holds one full refresh of every lookup table.
type Source struct {
	Agencies         []domain.Agency
	Countries        []domain.Country
	States           []domain.State
	Counties         []domain.County
	HorizontalDatums []domain.HorizontalDatum
	AltitudeDatums   []domain.AltitudeDatum
	NationalAquifers []domain.NationalAquifer
	Units            []domain.Unit
}

// Counts reports how many rows a refresh upserted per table.
type Counts map[string]int

// Canonical file names, in load order. Parents precede children so a
// refresh can upsert them in sequence.
const (
	AgencyFile          = "agency.csv"
	CountryFile         = "country.csv"
	StateFile           = "state.csv"
	CountyFile          = "county.csv"
	HorizontalDatumFile = "horizontal_datum.csv"
	AltitudeDatumFile   = "altitude_datum.csv"
	NationalAquiferFile = "nat_aqfr.csv"
	UnitsFile           = "units.csv"
)

// Load reads every canonical file present in fsys. Missing files leave the
// corresponding table empty.
func Load(fsys fs.FS) (Source, error) {
	var src Source
	loaders := []struct {
		name    string
		columns int
		add     func(row []string) error
	}{
		{AgencyFile, 3, func(r []string) error {
			src.Agencies = append(src.Agencies, domain.Agency{Code: r[0], Name: r[1], Medium: r[2]})
			return nil
		}},
		{CountryFile, 2, func(r []string) error {
			src.Countries = append(src.Countries, domain.Country{Code: r[0], Name: r[1]})
			return nil
		}},
		{StateFile, 3, func(r []string) error {
			src.States = append(src.States, domain.State{CountryCode: r[0], Code: r[1], Name: r[2]})
			return nil
		}},
		{CountyFile, 4, func(r []string) error {
			src.Counties = append(src.Counties, domain.County{CountryCode: r[0], StateCode: r[1], Code: r[2], Name: r[3]})
			return nil
		}},
		{HorizontalDatumFile, 2, func(r []string) error {
			src.HorizontalDatums = append(src.HorizontalDatums, domain.HorizontalDatum{Code: r[0], Description: r[1]})
			return nil
		}},
		{AltitudeDatumFile, 2, func(r []string) error {
			src.AltitudeDatums = append(src.AltitudeDatums, domain.AltitudeDatum{Code: r[0], Description: r[1]})
			return nil
		}},
		{NationalAquiferFile, 2, func(r []string) error {
			src.NationalAquifers = append(src.NationalAquifers, domain.NationalAquifer{Code: r[0], Description: r[1]})
			return nil
		}},
		{UnitsFile, 2, func(r []string) error {
			id, err := strconv.Atoi(r[0])
			if err != nil {
				return fmt.Errorf("invalid unit_id %q", r[0])
			}
			src.Units = append(src.Units, domain.Unit{ID: id, Description: r[1]})
			return nil
		}},
	}

	for _, l := range loaders {
		f, err := fsys.Open(l.name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Source{}, fmt.Errorf("open %s: %w", l.name, err)
		}
		err = readRows(f, l.columns, l.add)
		f.Close()
		if err != nil {
			return Source{}, fmt.Errorf("%s: %w", l.name, err)
		}
	}
	return src, nil
}

// readRows skips the header row and passes each trimmed data row to add.
func readRows(r io.Reader, columns int, add func([]string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	line := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line++
		if line == 1 {
			continue
		}
		if len(row) < columns {
			return fmt.Errorf("line %d: want %d columns, got %d", line, columns, len(row))
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if err := add(row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

// Total returns the number of rows across every table.
func (s Source) Total() int {
	return len(s.Agencies) + len(s.Countries) + len(s.States) + len(s.Counties) +
		len(s.HorizontalDatums) + len(s.AltitudeDatums) + len(s.NationalAquifers) + len(s.Units)
}
