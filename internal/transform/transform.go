// Package transform derives the GBP, EUR and INR market-cap columns from the
// scraped USD figures.
package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bankcap/banketl/internal/model"
	"github.com/bankcap/banketl/internal/rates"
)

// places is the number of decimal places every derived amount is rounded to.
const places = 2

// Rounding selects how a derived amount is rounded at the half cent.
type Rounding string

const (
	// HalfEven rounds ties to the even neighbour (banker's rounding).
	HalfEven Rounding = "half_even"
	// HalfUp rounds ties away from zero.
	HalfUp Rounding = "half_up"
)

// ParseRounding validates a configured rounding mode. Empty means HalfEven.
func ParseRounding(s string) (Rounding, error) {
	switch Rounding(s) {
	case "", HalfEven:
		return HalfEven, nil
	case HalfUp:
		return HalfUp, nil
	default:
		return "", fmt.Errorf("unknown rounding mode %q (want %s or %s): %w", s, HalfEven, HalfUp, model.ErrConfig)
	}
}

func (r Rounding) round(d decimal.Decimal) decimal.Decimal {
	if r == HalfUp {
		return d.Round(places)
	}
	return d.RoundBank(places)
}

// Convert returns usd * rate rounded to two places.
func (r Rounding) Convert(usd, rate decimal.Decimal) decimal.Decimal {
	return r.round(usd.Mul(rate))
}

// Apply enriches every record with its converted market caps. It fails with
// model.ErrConfig before producing any output if the table lacks a target
// currency. Output order and length match the input.
func Apply(records []model.BankRecord, table *rates.Table, rounding Rounding) (model.Dataset, error) {
	if err := table.Require(model.TargetCurrencies...); err != nil {
		return nil, err
	}
	gbp, _ := table.Rate(model.GBP)
	eur, _ := table.Rate(model.EUR)
	inr, _ := table.Rate(model.INR)

	out := make(model.Dataset, len(records))
	for i, rec := range records {
		out[i] = model.EnrichedBankRecord{
			BankRecord:   rec,
			MarketCapGBP: rounding.Convert(rec.MarketCapUSD, gbp),
			MarketCapEUR: rounding.Convert(rec.MarketCapUSD, eur),
			MarketCapINR: rounding.Convert(rec.MarketCapUSD, inr),
		}
	}
	return out, nil
}
