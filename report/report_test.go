package report

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
	ctx  context.Context
	name string
	db   store.DB
}

func TestReportTestSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (s *ReportTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.name = s.T().Name()
	s.db = s.bootstrap(s.name, "report.db")

	b, err := os.ReadFile(filepath.Join("testdata", "warehouse.json"))
	s.Require().NoError(err)
	clock := func() time.Time { return time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC) }
	_, err = schema.NewFixture(schema.WithClock(clock)).Load(s.ctx, s.db, b)
	s.Require().NoError(err)
}

func (s *ReportTestSuite) TearDownTest() {
	s.Require().NoError(store.CloseDataSource(s.name))
}

func (s *ReportTestSuite) bootstrap(name, file string) store.DB {
	store.Configure(name, store.DataSource{Driver: "sqlite3", DB: filepath.Join(s.T().TempDir(), file)})
	db, err := schema.NewInitializer(name).Bootstrap(s.ctx)
	s.Require().NoError(err)
	return db
}

func (s *ReportTestSuite) exec(query string) {
	_, err := s.db.ExecContext(s.ctx, query)
	s.Require().NoError(err)
}

func (s *ReportTestSuite) runner(opts ...Option) *Runner {
	r, err := NewRunner(s.db, opts...)
	s.Require().NoError(err)
	return r
}

func (s *ReportTestSuite) TestOrphanTransactionTypes() {
	ids, err := s.runner().OrphanTransactionTypes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]TypeID{{int64(3)}, {int64(4)}}, ids)
}

func (s *ReportTestSuite) TestOrphanTransactionTypes_NonIntegerIDs() {
	s.exec("INSERT INTO Transactions (TransactionID, CustomerID, TransactionTypeID, TransactionDate, CreateUser) " +
		"VALUES (201, 1, 3.5, '2018-03-01', 't'), (202, 1, 'X', '2018-03-01', 't'), (203, 1, 1, '2018-03-01', 't')")
	ids, err := s.runner().OrphanTransactionTypes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]TypeID{{int64(3)}, {3.5}, {int64(4)}, {"X"}}, ids)
	s.Equal([]string{"3", "3.5", "4", "X"}, lo.Map(ids, func(id TypeID, _ int) string { return id.String() }))

	n, ok := ids[0].Int()
	s.True(ok)
	s.Equal(int64(3), n)
	_, ok = ids[1].Int()
	s.False(ok)
}

func (s *ReportTestSuite) TestOrphanTransactionTypes_AllKnown() {
	_, err := s.db.ExecContext(s.ctx,
		"INSERT INTO DimTransactionType (TransactionTypeID, TransactionName, CreateDate, CreateUser) VALUES (3, 'Fee', '2018-01-01', 't'), (4, 'Chargeback', '2018-01-01', 't')")
	s.Require().NoError(err)
	ids, err := s.runner().OrphanTransactionTypes(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *ReportTestSuite) TestAmountByState() {
	rows, err := s.runner().AmountByState(s.ctx, Month{Year: 2018, Month: time.March})
	s.Require().NoError(err)
	s.Require().Len(rows, 3)

	s.Equal("", rows[0].State)
	s.True(rows[0].Amount.IsZero(), rows[0].Amount.String())
	s.Equal("CA", rows[1].State)
	s.True(decimal.RequireFromString("100").Equal(rows[1].Amount), rows[1].Amount.String())
	s.Equal("NY", rows[2].State)
	s.True(decimal.RequireFromString("35.75").Equal(rows[2].Amount), rows[2].Amount.String())

	// the result is materialized
	var n int
	s.Require().NoError(s.db.GetContext(s.ctx, &n, "SELECT count(*) FROM ReportingTable"))
	s.Equal(3, n)
}

func (s *ReportTestSuite) TestAmountByState_ExactDecimalSum() {
	s.exec("INSERT INTO Customer (CustomerID, CustomerName, State, CreateDate, CreateUser) VALUES (7, 'Golf', 'WA', '2018-01-01', 't')")
	s.exec("INSERT INTO Transactions (TransactionID, CustomerID, TransactionTypeID, TransactionDate, Amount, CreateDate, CreateUser) " +
		"VALUES (301, 7, 1, '2018-03-07', 0.1, '2018-03-07', 't'), (302, 7, 1, '2018-03-08', 0.2, '2018-03-08', 't')")

	rows, err := s.runner().AmountByState(s.ctx, Month{Year: 2018, Month: time.March})
	s.Require().NoError(err)
	s.Require().Len(rows, 4)
	s.Equal("WA", rows[3].State)
	s.Equal("0.3", rows[3].Amount.String())

	var stored string
	s.Require().NoError(s.db.GetContext(s.ctx, &stored, "SELECT Amount FROM ReportingTable WHERE State = 'WA'"))
	s.Equal("0.3", stored)
}

func (s *ReportTestSuite) TestNullAndEmptyStateShareOneGroup() {
	// customer 6 has a NULL State, customer 8 an empty one
	s.exec("INSERT INTO Customer (CustomerID, CustomerName, State, CreateDate, CreateUser) VALUES (8, 'Hotel', '', '2018-01-01', 't')")
	s.exec("INSERT INTO Transactions (TransactionID, CustomerID, TransactionTypeID, TransactionDate, Amount, CreateDate, CreateUser) " +
		"VALUES (401, 8, 1, '2018-03-08', 1.5, '2018-03-08', 't')")
	march := Month{Year: 2018, Month: time.March}

	rows, err := s.runner().AmountByState(s.ctx, march)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal("", rows[0].State)
	s.Equal("1.5", rows[0].Amount.String())

	res, err := s.runner().CustomerActivity(s.ctx, []Month{march})
	s.Require().NoError(err)
	s.Equal([]CustomerActivity{
		{State: "", CustomerID: 6, Transactions: 1},
		{State: "", CustomerID: 8, Transactions: 1},
	}, res[0].Customers[:2])
	s.Equal(StateActivity{State: "", Customers: 2, Transactions: 2}, res[0].States[0])
	s.Len(res[0].States, 3)
}

func (s *ReportTestSuite) TestAmountByState_ReplacesPreviousRun() {
	r := s.runner(WithTable("MonthlyTotals"))
	_, err := r.AmountByState(s.ctx, Month{Year: 2018, Month: time.March})
	s.Require().NoError(err)

	rows, err := r.AmountByState(s.ctx, Month{Year: 2018, Month: time.April})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("CA", rows[0].State)
	s.True(decimal.NewFromInt(7).Equal(rows[0].Amount))

	var n int
	s.Require().NoError(s.db.GetContext(s.ctx, &n, "SELECT count(*) FROM MonthlyTotals"))
	s.Equal(1, n)
}

func (s *ReportTestSuite) TestAmountByState_TransactionDate() {
	rows, err := s.runner(WithDateColumn("TransactionDate")).AmountByState(s.ctx, Month{Year: 2018, Month: time.March})
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal("NY", rows[2].State)
	s.True(decimal.RequireFromString("85.75").Equal(rows[2].Amount), rows[2].Amount.String())
}

func (s *ReportTestSuite) TestAmountByState_EmptyMonth() {
	rows, err := s.runner().AmountByState(s.ctx, Month{Year: 2001, Month: time.January})
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *ReportTestSuite) TestCustomerActivity_March() {
	res, err := s.runner().CustomerActivity(s.ctx, []Month{{2018, time.March}})
	s.Require().NoError(err)
	s.Require().Len(res, 1)

	s.Equal([]CustomerActivity{
		{State: "", CustomerID: 6, Transactions: 1},
		{State: "CA", CustomerID: 3, Transactions: 1},
		{State: "NY", CustomerID: 1, Transactions: 2},
		{State: "NY", CustomerID: 2, Transactions: 1},
	}, res[0].Customers)
	s.Equal([]StateActivity{
		{State: "", Customers: 1, Transactions: 1},
		{State: "CA", Customers: 1, Transactions: 1},
		{State: "NY", Customers: 2, Transactions: 3},
	}, res[0].States)
}

func (s *ReportTestSuite) TestActivityWindow() {
	ref := time.Date(2018, time.May, 20, 0, 0, 0, 0, time.UTC)
	res, err := s.runner().ActivityWindow(s.ctx, ref, DefaultWindow)
	s.Require().NoError(err)
	s.Require().Len(res, 18)
	s.Equal(Month{2016, time.December}, res[0].Month)
	s.Equal(Month{2018, time.May}, res[17].Month)

	byMonth := map[string][]CustomerActivity{}
	var total int64
	for _, m := range res {
		byMonth[m.Month.String()] = m.Customers
		seen := map[[2]any]bool{}
		for _, c := range m.Customers {
			key := [2]any{c.State, c.CustomerID}
			s.False(seen[key], "duplicate row %v in %s", key, m.Month)
			seen[key] = true
			total += c.Transactions
		}
	}
	s.Equal([]CustomerActivity{{State: "CA", CustomerID: 4, Transactions: 1}}, byMonth["2018-02"])
	s.Equal([]CustomerActivity{{State: "CA", CustomerID: 3, Transactions: 1}}, byMonth["2018-04"])
	s.Equal([]CustomerActivity{{State: "NY", CustomerID: 1, Transactions: 1}}, byMonth["2018-05"])
	s.Empty(byMonth["2018-01"])
	// everything except the December 2019 transaction falls in the window
	s.Equal(int64(8), total)

	_, err = s.runner().ActivityWindow(s.ctx, ref, 0)
	s.Error(err)
}

func (s *ReportTestSuite) TestNormalizeZipCodes() {
	n, err := s.runner().NormalizeZipCodes(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), n)

	var zips []struct {
		CustomerID int64          `db:"CustomerID"`
		Zip        sql.NullString `db:"Zip"`
	}
	s.Require().NoError(s.db.SelectContext(s.ctx, &zips, "SELECT CustomerID, Zip FROM Customer ORDER BY CustomerID"))
	got := map[int64]sql.NullString{}
	for _, z := range zips {
		got[z.CustomerID] = z.Zip
	}
	s.Equal(sql.NullString{String: "00501", Valid: true}, got[1])
	s.False(got[2].Valid)
	s.Equal(sql.NullString{String: "94105", Valid: true}, got[3])
	s.False(got[4].Valid)
	s.False(got[5].Valid)
	s.False(got[6].Valid)

	// idempotent
	n, err = s.runner().NormalizeZipCodes(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ReportTestSuite) TestReportsOnEmptyStore() {
	name := s.name + "/empty"
	db := s.bootstrap(name, "empty.db")
	defer func() { _ = store.CloseDataSource(name) }()

	r, err := NewRunner(db)
	s.Require().NoError(err)
	ids, err := r.OrphanTransactionTypes(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
	n, err := r.NormalizeZipCodes(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
	res, err := r.ActivityWindow(s.ctx, time.Now(), DefaultWindow)
	s.Require().NoError(err)
	s.Len(res, DefaultWindow)
}

func TestNewRunner_Options(t *testing.T) {
	_, err := NewRunner(nil, WithDateColumn("ModifyDate"))
	require.ErrorIs(t, err, ErrInvalidDateColumn)

	_, err = NewRunner(nil, WithTable("Reporting; DROP TABLE Customer"))
	require.ErrorIs(t, err, ErrInvalidTable)

	_, err = NewRunner(nil, WithTable("Customer"))
	require.ErrorIs(t, err, ErrInvalidTable)

	r, err := NewRunner(nil, WithDateColumn(""), WithTable(""))
	require.NoError(t, err)
	require.Equal(t, "CreateDate", r.dateCol.Name())
	require.Equal(t, DefaultTable, r.table)
}

func TestValidZip(t *testing.T) {
	valid := []string{"00501", "99999", "0", "501", " 12345 ", "000000"}
	invalid := []string{"", "   ", "ABCDE", "123456", "-1", "+123", "12.5", "1e3", "12 34", "99999999999999999999999"}
	for _, z := range valid {
		require.True(t, ValidZip(z), z)
	}
	for _, z := range invalid {
		require.False(t, ValidZip(z), z)
	}
}
