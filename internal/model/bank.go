package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Column names shared by the CSV file and the database table.
const (
	ColName = "Name"
	ColUSD  = "MC_USD_Billion"
	ColGBP  = "MC_GBP_Billion"
	ColEUR  = "MC_EUR_Billion"
	ColINR  = "MC_INR_Billion"
)

// Currency codes the transformer derives columns for.
const (
	GBP = "GBP"
	EUR = "EUR"
	INR = "INR"
)

// TargetCurrencies lists the derived currencies in column order.
var TargetCurrencies = []string{GBP, EUR, INR}

// Columns returns the enriched column names in output order.
func Columns() []string {
	return []string{ColName, ColUSD, ColGBP, ColEUR, ColINR}
}

// BankRecord is one bank scraped from the source table.
type BankRecord struct {
	Name         string
	MarketCapUSD decimal.Decimal // billions
}

// Validate checks the record invariants: non-empty name, non-negative market cap.
func (r BankRecord) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: ColName, Description: "bank name is empty"}
	}
	if r.MarketCapUSD.IsNegative() {
		return &ValidationError{
			Field:       ColUSD,
			Bank:        r.Name,
			Description: fmt.Sprintf("market cap %s is negative", r.MarketCapUSD),
		}
	}
	return nil
}

// EnrichedBankRecord is a BankRecord with its market cap converted into the
// target currencies.
type EnrichedBankRecord struct {
	BankRecord
	MarketCapGBP decimal.Decimal
	MarketCapEUR decimal.Decimal
	MarketCapINR decimal.Decimal
}

// Amounts returns the four monetary columns in output order.
func (r EnrichedBankRecord) Amounts() []decimal.Decimal {
	return []decimal.Decimal{r.MarketCapUSD, r.MarketCapGBP, r.MarketCapEUR, r.MarketCapINR}
}

// FormattedAmounts renders Amounts for output. The scraped USD value keeps
// every digit it was read with (at least two places); derived columns are
// already rounded and print with exactly two.
func (r EnrichedBankRecord) FormattedAmounts() []string {
	usd := r.MarketCapUSD.StringFixed(2)
	if r.MarketCapUSD.Exponent() < -2 {
		usd = r.MarketCapUSD.String()
	}
	return []string{
		usd,
		r.MarketCapGBP.StringFixed(2),
		r.MarketCapEUR.StringFixed(2),
		r.MarketCapINR.StringFixed(2),
	}
}

// Dataset is the ordered output of the pipeline. Order matches the source table.
type Dataset []EnrichedBankRecord
