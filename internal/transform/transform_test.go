package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcap/banketl/internal/model"
	"github.com/bankcap/banketl/internal/rates"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func table(pairs ...string) *rates.Table {
	var rs []rates.Rate
	for i := 0; i+1 < len(pairs); i += 2 {
		rs = append(rs, rates.Rate{Currency: pairs[i], Rate: dec(pairs[i+1])})
	}
	return rates.NewTable(rs)
}

func TestApply_SingleBank(t *testing.T) {
	tbl := table("GBP", "0.8", "EUR", "0.93", "INR", "82.9")
	records := []model.BankRecord{{Name: "Bank A", MarketCapUSD: dec("100.0")}}

	got, err := Apply(records, tbl, HalfEven)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Bank A", got[0].Name)
	assert.True(t, got[0].MarketCapUSD.Equal(dec("100")))
	assert.True(t, got[0].MarketCapGBP.Equal(dec("80")), "GBP: %s", got[0].MarketCapGBP)
	assert.True(t, got[0].MarketCapEUR.Equal(dec("93")), "EUR: %s", got[0].MarketCapEUR)
	assert.True(t, got[0].MarketCapINR.Equal(dec("8290")), "INR: %s", got[0].MarketCapINR)
}

func TestApply_PreservesOrderAndLength(t *testing.T) {
	tbl := table("GBP", "0.8", "EUR", "0.93", "INR", "82.95")
	records := []model.BankRecord{
		{Name: "JPMorgan Chase", MarketCapUSD: dec("432.92")},
		{Name: "Bank of America", MarketCapUSD: dec("231.52")},
		{Name: "Industrial and Commercial Bank of China", MarketCapUSD: dec("194.56")},
	}

	got, err := Apply(records, tbl, HalfEven)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i].Name, got[i].Name)
	}

	// 432.92 * 0.8 = 346.336, 432.92 * 0.93 = 402.6156, 432.92 * 82.95 = 35910.714
	assert.Equal(t, "346.34", got[0].MarketCapGBP.StringFixed(2))
	assert.Equal(t, "402.62", got[0].MarketCapEUR.StringFixed(2))
	assert.Equal(t, "35910.71", got[0].MarketCapINR.StringFixed(2))
}

func TestApply_DerivedIsRoundedProduct(t *testing.T) {
	tbl := table("GBP", "0.79", "EUR", "0.917", "INR", "83.123")
	for _, usd := range []string{"0", "0.01", "1.5", "77.77", "999.99", "1234.56"} {
		records := []model.BankRecord{{Name: "Bank", MarketCapUSD: dec(usd)}}
		got, err := Apply(records, tbl, HalfEven)
		require.NoError(t, err)

		v := dec(usd)
		assert.True(t, got[0].MarketCapGBP.Equal(v.Mul(dec("0.79")).RoundBank(2)), "GBP for %s", usd)
		assert.True(t, got[0].MarketCapEUR.Equal(v.Mul(dec("0.917")).RoundBank(2)), "EUR for %s", usd)
		assert.True(t, got[0].MarketCapINR.Equal(v.Mul(dec("83.123")).RoundBank(2)), "INR for %s", usd)
	}
}

func TestApply_MissingCurrency(t *testing.T) {
	tbl := table("GBP", "0.8", "EUR", "0.93")
	records := []model.BankRecord{{Name: "Bank A", MarketCapUSD: dec("100")}}

	got, err := Apply(records, tbl, HalfEven)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
	assert.Contains(t, err.Error(), "INR")
	assert.Nil(t, got, "no partial columns on failure")
}

func TestApply_Empty(t *testing.T) {
	got, err := Apply(nil, table("GBP", "1", "EUR", "1", "INR", "1"), HalfEven)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRoundingModes(t *testing.T) {
	tests := []struct {
		usd, rate  string
		even, away string
	}{
		{"1.25", "0.1", "0.12", "0.13"},
		{"1.35", "0.1", "0.14", "0.14"},
		{"0.5", "0.05", "0.02", "0.03"},
		{"10", "0.8", "8.00", "8.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.even, HalfEven.Convert(dec(tt.usd), dec(tt.rate)).StringFixed(2), "half_even %s*%s", tt.usd, tt.rate)
		assert.Equal(t, tt.away, HalfUp.Convert(dec(tt.usd), dec(tt.rate)).StringFixed(2), "half_up %s*%s", tt.usd, tt.rate)
	}
}

func TestParseRounding(t *testing.T) {
	r, err := ParseRounding("")
	require.NoError(t, err)
	assert.Equal(t, HalfEven, r)

	r, err = ParseRounding("half_up")
	require.NoError(t, err)
	assert.Equal(t, HalfUp, r)

	_, err = ParseRounding("ceiling")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
}
