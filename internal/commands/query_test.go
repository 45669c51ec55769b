package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcap/banketl/internal/model"
	"github.com/bankcap/banketl/internal/store"
)

func loadedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Banks.db")
	s, err := store.Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Replace(context.Background(), "Largest_banks", model.Dataset{{
		BankRecord:   model.BankRecord{Name: "Bank A", MarketCapUSD: decimal.NewFromInt(100)},
		MarketCapGBP: decimal.NewFromInt(80),
		MarketCapEUR: decimal.NewFromInt(93),
		MarketCapINR: decimal.NewFromInt(8290),
	}}))
	return path
}

func TestRunQuery_ClosesOnSuccessAndFailure(t *testing.T) {
	path := loadedDatabase(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runQuery(ctx, &out, path, []string{"SELECT Name FROM Largest_banks"}))
	assert.Contains(t, out.String(), "Bank A")

	err := runQuery(ctx, &out, path, []string{"SELECT * FROM nowhere"})
	require.ErrorIs(t, err, model.ErrQuery)

	// Both connections were released: a writer can still replace the table.
	s, err := store.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, "Largest_banks", nil))
	assert.NoError(t, s.Close())
}

func TestRunQuery_MissingDatabase(t *testing.T) {
	err := runQuery(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "Banks.db"), nil)
	assert.ErrorIs(t, err, model.ErrIO)
}
