// Package dataset reads and writes the enriched bank table as CSV.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/bankcap/banketl/internal/model"
)

// IndexHeader names the leading row-position column. It is blank rather than
// "index", matching the unnamed index column pandas writes, so files stay
// interchangeable with ones produced by pandas' to_csv.
const IndexHeader = ""

const (
	numFields = 6
	colIndex  = 0
	colName   = 1
	colUSD    = 2
	colGBP    = 3
	colEUR    = 4
	colINR    = 5
)

// Header returns the CSV header row.
func Header() []string {
	return append([]string{IndexHeader}, model.Columns()...)
}

// WriteDataset writes the dataset with a header row and a 0-based index column.
func WriteDataset(w io.Writer, ds model.Dataset) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range ds {
		if err := cw.Write(MarshalRecord(i, rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDataset reads a file written by WriteDataset. Rows must be in index order.
func ReadDataset(r io.Reader) (model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset CSV: %w: %w", model.ErrParse, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	ds := make(model.Dataset, 0, len(records)-1)
	for i, rec := range records[1:] {
		idx, out, err := UnmarshalRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if idx != i {
			return nil, fmt.Errorf("row %d: index %d out of order: %w", i+2, idx, model.ErrParse)
		}
		ds = append(ds, out)
	}
	return ds, nil
}

// MarshalRecord converts a record at position index to a CSV row.
func MarshalRecord(index int, rec model.EnrichedBankRecord) []string {
	row := make([]string, numFields)
	row[colIndex] = strconv.Itoa(index)
	row[colName] = rec.Name
	copy(row[colUSD:], rec.FormattedAmounts())
	return row
}

// UnmarshalRecord converts a CSV row to its index and record.
func UnmarshalRecord(row []string) (int, model.EnrichedBankRecord, error) {
	if len(row) != numFields {
		return 0, model.EnrichedBankRecord{}, fmt.Errorf("expected %d fields, got %d: %w", numFields, len(row), model.ErrParse)
	}

	idx, err := strconv.Atoi(row[colIndex])
	if err != nil {
		return 0, model.EnrichedBankRecord{}, fmt.Errorf("parsing index %q: %w: %w", row[colIndex], model.ErrParse, err)
	}

	amounts := make([]decimal.Decimal, 0, 4)
	for _, col := range []int{colUSD, colGBP, colEUR, colINR} {
		d, err := decimal.NewFromString(row[col])
		if err != nil {
			return 0, model.EnrichedBankRecord{}, fmt.Errorf("parsing amount %q: %w: %w", row[col], model.ErrParse, err)
		}
		amounts = append(amounts, d)
	}

	return idx, model.EnrichedBankRecord{
		BankRecord:   model.BankRecord{Name: row[colName], MarketCapUSD: amounts[0]},
		MarketCapGBP: amounts[1],
		MarketCapEUR: amounts[2],
		MarketCapINR: amounts[3],
	}, nil
}

// Save writes the dataset to path, replacing any existing file.
func Save(path string, ds model.Dataset) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w: %w", model.ErrIO, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w: %w", path, model.ErrIO, err)
	}
	if err := WriteDataset(f, ds); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w: %w", path, model.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w: %w", path, model.ErrIO, err)
	}
	return nil
}

// Load reads a dataset file from path.
func Load(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", path, model.ErrIO, err)
	}
	defer f.Close()

	return ReadDataset(f)
}
