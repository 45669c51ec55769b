package rates

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcap/banketl/internal/model"
)

func TestReadRates(t *testing.T) {
	in := "Currency,Rate\nEUR,0.93\nGBP,0.8\nINR,82.95\n"

	got, err := ReadRates(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "EUR", got[0].Currency)
	assert.True(t, got[0].Rate.Equal(decimal.RequireFromString("0.93")))
	assert.Equal(t, "INR", got[2].Currency)
	assert.True(t, got[2].Rate.Equal(decimal.RequireFromString("82.95")))
}

func TestReadRates_ColumnsByHeader(t *testing.T) {
	in := "Rate,Source,Currency\n0.8,BoE,GBP\n"

	got, err := ReadRates(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GBP", got[0].Currency)
	assert.True(t, got[0].Rate.Equal(decimal.RequireFromString("0.8")))
}

func TestReadRates_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"missing header", "Code,Value\nGBP,0.8\n"},
		{"bad rate", "Currency,Rate\nGBP,abc\n"},
		{"empty code", "Currency,Rate\n,0.8\n"},
		{"ragged", "Currency,Rate\nGBP\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRates(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrConfig)
		})
	}
}

func TestTableRequire(t *testing.T) {
	table := NewTable([]Rate{
		{Currency: "GBP", Rate: decimal.RequireFromString("0.8")},
		{Currency: "EUR", Rate: decimal.RequireFromString("0.93")},
	})

	assert.NoError(t, table.Require("GBP", "EUR"))

	err := table.Require("GBP", "EUR", "INR", "JPY")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
	assert.Contains(t, err.Error(), "INR, JPY")

	rate, ok := table.Rate("GBP")
	assert.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.8")))
	_, ok = table.Rate("INR")
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exchange_rate.csv")
	require.NoError(t, Save(path, Defaults()))

	table, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, table.Require(model.TargetCurrencies...))
	assert.Len(t, table.All(), 3)

	inr, _ := table.Rate(model.INR)
	assert.Equal(t, "82.95", inr.String())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestWriteRatesFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRates(&buf, Defaults()))
	assert.Equal(t, "Currency,Rate\nEUR,0.93\nGBP,0.8\nINR,82.95\n", buf.String())
}
