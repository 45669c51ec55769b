package rates

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankcap/banketl/internal/model"
)

const (
	headerCurrency = "Currency"
	headerRate     = "Rate"
)

// ReadRates reads an exchange-rate CSV with a Currency,Rate header. Columns are
// located by header name; extra columns are ignored.
func ReadRates(r io.Reader) ([]Rate, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rates CSV: %w: %w", model.ErrConfig, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("rates CSV is empty: %w", model.ErrConfig)
	}

	colCode, colRate := -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case headerCurrency:
			colCode = i
		case headerRate:
			colRate = i
		}
	}
	if colCode < 0 || colRate < 0 {
		return nil, fmt.Errorf("rates CSV header %q must contain %s and %s: %w",
			strings.Join(records[0], ","), headerCurrency, headerRate, model.ErrConfig)
	}

	var rates []Rate
	for i, rec := range records[1:] {
		rate, err := unmarshalRate(rec, colCode, colRate)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

// WriteRates writes rates in the format ReadRates accepts.
func WriteRates(w io.Writer, rates []Rate) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{headerCurrency, headerRate}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rates {
		if err := cw.Write([]string{r.Currency, r.Rate.String()}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func unmarshalRate(rec []string, colCode, colRate int) (Rate, error) {
	code := strings.TrimSpace(rec[colCode])
	if code == "" {
		return Rate{}, fmt.Errorf("empty currency code: %w", model.ErrConfig)
	}
	raw := strings.TrimSpace(rec[colRate])
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return Rate{}, fmt.Errorf("parsing rate %q for %s: %w: %w", raw, code, model.ErrConfig, err)
	}
	return Rate{Currency: code, Rate: rate}, nil
}
