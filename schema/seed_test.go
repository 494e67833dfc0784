package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSeedDimDate(t *testing.T) {
	ctx := context.Background()
	db := bootstrap(t)

	from := time.Date(2018, time.January, 1, 15, 30, 0, 0, time.UTC)
	to := time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC)
	n, err := SeedDimDate(ctx, db, from, to)
	require.NoError(t, err)
	require.Equal(t, 730, n)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT count(*) FROM DimDate"))
	require.Equal(t, 730, count)

	var feb int
	require.NoError(t, db.GetContext(ctx, &feb, "SELECT count(*) FROM DimDate WHERE Year = 2018 AND Month = 2"))
	require.Equal(t, 28, feb)

	var last DimDate
	require.NoError(t, db.GetContext(ctx, &last, "SELECT * FROM DimDate ORDER BY Year DESC, Month DESC, Day DESC LIMIT 1"))
	require.Equal(t, DimDate{Year: 2019, Month: 12, Day: 31}, last)

	_, err = SeedDimDate(ctx, db, to, from)
	require.Error(t, err)
}

func TestFixture_Load(t *testing.T) {
	ctx := context.Background()
	db := bootstrap(t)

	b, err := os.ReadFile(filepath.Join("testdata", "seed.json"))
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2020, time.February, 3, 4, 5, 6, 0, time.UTC) }
	counts, err := NewFixture(WithAuditUser("seeder"), WithClock(clock)).Load(ctx, db, b)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"Customer": 2, "DimTransactionType": 1, "Transactions": 1}, counts)

	var customers []Customer
	require.NoError(t, db.SelectContext(ctx, &customers, "SELECT * FROM Customer ORDER BY CustomerID"))
	require.Len(t, customers, 2)
	require.Equal(t, "loader", customers[0].CreateUser)
	require.Equal(t, "seeder", customers[1].CreateUser)
	require.Equal(t, "2020-02-03 04:05:06", customers[1].CreateDate)
	require.Equal(t, "00501", customers[0].Zip.String)
	require.InDelta(t, 2500.5, customers[1].CreditLimit.Float64, 1e-9)

	var tx Transaction
	require.NoError(t, db.GetContext(ctx, &tx, "SELECT * FROM Transactions"))
	require.Equal(t, int64(10), tx.TransactionID)
	require.InDelta(t, 12.5, tx.Amount.Float64, 1e-9)
	require.Equal(t, "seeder", tx.CreateUser)
}

func TestFixture_Rejects(t *testing.T) {
	ctx := context.Background()
	db := bootstrap(t)

	f := NewFixture()
	cases := map[string]struct {
		doc string
		is  error
	}{
		"invalid json":   {doc: `{"Customer": [`},
		"not an object":  {doc: `[1, 2]`},
		"unknown table":  {doc: `{"Orders": []}`, is: ErrUnknownTable},
		"unknown column": {doc: `{"Customer": [{"CustomerID": 1, "Name": "x"}]}`, is: ErrUnknownColumn},
		"not an array":   {doc: `{"Customer": {"CustomerID": 1}}`},
		"constraint":     {doc: `{"Customer": [{"CustomerID": 1}]}`},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.Load(ctx, db, []byte(c.doc))
			require.Error(t, err)
			if c.is != nil {
				require.ErrorIs(t, err, c.is)
			}
		})
	}

	// a failed load leaves nothing behind
	var n int
	require.NoError(t, db.GetContext(ctx, &n, "SELECT count(*) FROM Customer"))
	require.Zero(t, n)
}
