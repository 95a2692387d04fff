package rdb

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, input string) ([]Record, error) {
	t.Helper()
	var out []Record
	for rec, err := range Records(strings.NewReader(input)) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func TestRecords_SingleRecord(t *testing.T) {
	got, err := collect(t, "#\nA\tB\n1s\t1s\nx\ty\n")
	require.NoError(t, err)
	if diff := cmp.Diff([]Record{{"A": "x", "B": "y"}}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRecords_OnlyComments(t *testing.T) {
	_, err := collect(t, "#\n# just comments\n#\n")
	assert.ErrorIs(t, err, ErrHeadersNotFound)
}

func TestRecords_EmptyInput(t *testing.T) {
	_, err := collect(t, "")
	assert.ErrorIs(t, err, ErrHeadersNotFound)
}

func TestRecords_HeaderAndTypeRowOnly(t *testing.T) {
	got, err := collect(t, "# comment\nA\tB\n5s\t5s\n")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecords_HeaderWithoutTypeRow(t *testing.T) {
	got, err := collect(t, "A\tB")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecords_SkipsBlankLines(t *testing.T) {
	got, err := collect(t, "A\tB\n1s\t1s\nx\ty\n\n   \nz\tw\n\n")
	require.NoError(t, err)
	want := []Record{{"A": "x", "B": "y"}, {"A": "z", "B": "w"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRecords_TypeRowNotValidated(t *testing.T) {
	got, err := collect(t, "A\tB\nthis is not a type row\nx\ty\n")
	require.NoError(t, err)
	assert.Equal(t, []Record{{"A": "x", "B": "y"}}, got)
}

func TestRecords_PreservesWhitespaceInValues(t *testing.T) {
	got, err := collect(t, "alt_va\tname\n8s\t5s\n 972.47\tA B\n")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, " 972.47", got[0]["alt_va"])
	assert.Equal(t, "A B", got[0]["name"])
}

func TestRecords_PositionalZipTruncates(t *testing.T) {
	got, err := collect(t, "A\tB\tC\n1s\t1s\t1s\nx\ty\nx\ty\tz\textra\n")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Record{"A": "x", "B": "y"}, got[0])
	assert.Equal(t, Record{"A": "x", "B": "y", "C": "z"}, got[1])
}

func TestRecords_HandlesCRLF(t *testing.T) {
	got, err := collect(t, "#\r\nA\tB\r\n1s\t1s\r\nx\ty\r\n")
	require.NoError(t, err)
	assert.Equal(t, []Record{{"A": "x", "B": "y"}}, got)
}

func TestRecords_StopsEarly(t *testing.T) {
	n := 0
	for range Records(strings.NewReader("A\n1s\n1\n2\n3\n")) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestFirst_DoesNotRequireWholeInput(t *testing.T) {
	rec, ok, err := First(strings.NewReader("#\nsite_no\n15s\n0001\n0002\n"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0001", rec["site_no"])

	_, ok, err = First(strings.NewReader("site_no\n15s\n"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = First(strings.NewReader("#\n"))
	assert.True(t, errors.Is(err, ErrHeadersNotFound))
}

func TestReader_Header(t *testing.T) {
	r := NewReader(strings.NewReader("A\tB\n1s\t1s\n"))
	assert.Nil(t, r.Header())
	_, err := r.Read()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"A", "B"}, r.Header())
}
