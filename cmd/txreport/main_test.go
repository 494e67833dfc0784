package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/kcmvp/txreport/app"
	"github.com/kcmvp/txreport/cmd/internal"
	"github.com/kcmvp/txreport/store"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), buf.String())
	return buf.String()
}

func TestCLI_EndToEnd(t *testing.T) {
	store.Configure("cli", store.DataSource{Driver: "sqlite3", DB: filepath.Join(t.TempDir(), "cli.db")})
	t.Cleanup(func() {
		internal.DataSource = store.DefaultDSName
		_ = store.CloseAllDataSources()
	})

	out := run(t, "--datasource", "cli")
	require.Contains(t, out, `store "cli" recreated`)

	out = run(t, "--datasource", "cli", "seed", "fixture", filepath.Join("..", "..", "report", "testdata", "warehouse.json"))
	require.Contains(t, out, "Customer")
	require.Contains(t, out, "Transactions")

	out = run(t, "--datasource", "cli", "report", "orphans")
	require.Contains(t, out, "TRANSACTION_TYPE_ID")
	require.Contains(t, out, "3\n4\n")

	// application_test.yml buckets by TransactionDate
	out = run(t, "--datasource", "cli", "report", "amount", "--month", "2018-03")
	require.Contains(t, out, "85.75")
	require.Contains(t, out, "100.00")

	out = run(t, "--datasource", "cli", "report", "activity", "--ref", "2018-03-31", "--months", "2")
	require.Contains(t, out, "2018-02")
	require.Contains(t, out, "2018-03")

	out = run(t, "--datasource", "cli", "report", "zip")
	require.Contains(t, out, "3 customers normalized")

	out = run(t, "--datasource", "cli", "seed", "dimdate", "--from", "2018-01-01", "--to", "2018-01-31")
	require.Contains(t, out, "31 DimDate rows inserted")
}

func TestDefaultDataSource_AnchoredAtConfigDir(t *testing.T) {
	cfg := app.Config().MustGet()
	ds, err := store.Lookup(store.DefaultDSName)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(cfg.ConfigFileUsed()), "txreport_test.db"), ds.File())
}

func TestCLI_SchemaShow(t *testing.T) {
	out := run(t, "schema", "show", "Dim*")
	require.Contains(t, out, "CREATE TABLE DimDate")
	require.Contains(t, out, "CREATE TABLE DimTransactionType")
	require.NotContains(t, out, "CREATE TABLE Customer")
}
