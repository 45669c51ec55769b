// Package rates loads the exchange-rate reference table. A rate converts one
// USD into the named currency.
package rates

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankcap/banketl/internal/model"
)

// Rate is one row of the reference file.
type Rate struct {
	Currency string
	Rate     decimal.Decimal
}

// Defaults are the reference rates written by banketl init.
func Defaults() []Rate {
	return []Rate{
		{Currency: model.EUR, Rate: decimal.RequireFromString("0.93")},
		{Currency: model.GBP, Rate: decimal.RequireFromString("0.8")},
		{Currency: model.INR, Rate: decimal.RequireFromString("82.95")},
	}
}

// Table is a read-only lookup over a set of rates.
type Table struct {
	rates  []Rate
	byCode map[string]decimal.Decimal
}

// NewTable builds a Table. A later row for the same code wins.
func NewTable(rates []Rate) *Table {
	byCode := make(map[string]decimal.Decimal, len(rates))
	for _, r := range rates {
		byCode[r.Currency] = r.Rate
	}
	return &Table{rates: rates, byCode: byCode}
}

// Load reads the reference file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rates file: %w: %w", model.ErrConfig, err)
	}
	defer f.Close()

	rates, err := ReadRates(f)
	if err != nil {
		return nil, fmt.Errorf("reading rates file %s: %w", path, err)
	}
	return NewTable(rates), nil
}

// Save writes rates to path, replacing any existing file.
func Save(path string, rates []Rate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating rates file: %w: %w", model.ErrIO, err)
	}
	defer f.Close()

	if err := WriteRates(f, rates); err != nil {
		return fmt.Errorf("writing rates file: %w: %w", model.ErrIO, err)
	}
	return nil
}

// All returns the rates in file order. Only tests and tooling enumerate the
// table; the transformer looks codes up with Rate.
func (t *Table) All() []Rate {
	return t.rates
}

// Rate returns the rate for a currency code.
func (t *Table) Rate(code string) (decimal.Decimal, bool) {
	r, ok := t.byCode[code]
	return r, ok
}

// Exists reports whether a currency code has a rate.
func (t *Table) Exists(code string) bool {
	_, ok := t.byCode[code]
	return ok
}

// Require fails with model.ErrConfig naming every code that has no rate.
func (t *Table) Require(codes ...string) error {
	var missing []string
	for _, c := range codes {
		if !t.Exists(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing exchange rate for %s: %w", strings.Join(missing, ", "), model.ErrConfig)
	}
	return nil
}
