package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LocalAquifers resolves an NWIS local aquifer code within a state to its
// name. It is loaded once at startup and read-only afterwards. A nil
// *LocalAquifers resolves nothing.
type LocalAquifers struct {
	names map[aquiferKey]string
}

type aquiferKey struct {
	code  string
	state string
}

// Required header columns of the local aquifer CSV.
const (
	colAquiferCode = "Aqfr_Cd"
	colAquiferName = "Aqfr_Nm"
	colStateCode   = "State_Cd"
)

// OpenLocalAquifers loads the local aquifer CSV at path.
func OpenLocalAquifers(path string) (*LocalAquifers, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local aquifer lookup: %w", err)
	}
	defer f.Close()
	return LoadLocalAquifers(f)
}

// LoadLocalAquifers parses a CSV with Aqfr_Cd, Aqfr_Nm, and State_Cd header
// columns in any order.
func LoadLocalAquifers(r io.Reader) (*LocalAquifers, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read local aquifer header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{colAquiferCode, colAquiferName, colStateCode} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("local aquifer lookup missing column %s", col)
		}
	}

	la := &LocalAquifers{names: make(map[aquiferKey]string)}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return la, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read local aquifer lookup: %w", err)
		}
		get := func(col string) string {
			if i := idx[col]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		key := aquiferKey{code: get(colAquiferCode), state: get(colStateCode)}
		if _, dup := la.names[key]; !dup {
			la.names[key] = get(colAquiferName)
		}
	}
}

// Name returns the local aquifer name for code in state, or "" if unknown.
func (la *LocalAquifers) Name(code, stateCode string) string {
	if la == nil {
		return ""
	}
	return la.names[aquiferKey{code: strings.TrimSpace(code), state: strings.TrimSpace(stateCode)}]
}

// Len returns the number of known local aquifers.
func (la *LocalAquifers) Len() int {
	if la == nil {
		return 0
	}
	return len(la.names)
}
