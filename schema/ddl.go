package schema

import (
	"errors"

	"github.com/kcmvp/txreport/entity"
	"github.com/samber/lo"
	"github.com/tidwall/match"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)

// Table is one entry of the DDL catalogue.
type Table struct {
	Name    string
	Columns []string
	DDL     string
}

// Has reports whether col is a column of t.
func (t Table) Has(col string) bool {
	return lo.Contains(t.Columns, col)
}

// ModifyDate and CreateDate of Transactions default to CURRENT_TIMESTAMP
// (UTC, "YYYY-MM-DD HH:MM:SS"). Explicit values always win.
const transactionsDDL = `
CREATE TABLE Transactions (
	TransactionID NUM DEFAULT 1 PRIMARY KEY ASC UNIQUE NOT NULL,
	CustomerID NUM NOT NULL,
	TransactionTypeID NUM NOT NULL,
	TransactionDate TEXT NOT NULL,
	Amount REAL,
	ModifyDate TEXT DEFAULT CURRENT_TIMESTAMP,
	ModifyUser TEXT,
	CreateDate TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CreateUser TEXT NOT NULL
)`

const customerDDL = `
CREATE TABLE Customer (
	CustomerID NUM DEFAULT 10 PRIMARY KEY ASC UNIQUE NOT NULL,
	CustomerName TEXT NOT NULL,
	Street TEXT,
	City TEXT,
	State TEXT,
	Country TEXT,
	Zip TEXT,
	CreditLimit REAL,
	ModifyDate TEXT,
	ModifyUser TEXT,
	CreateDate TEXT NOT NULL,
	CreateUser TEXT NOT NULL
)`

const dimDateDDL = `
CREATE TABLE DimDate (
	Year NUM,
	Month NUM,
	Day NUM,
	Hour NUM DEFAULT 0,
	Minute NUM DEFAULT 0,
	Second NUM DEFAULT 0
)`

const dimTransactionTypeDDL = `
CREATE TABLE DimTransactionType (
	TransactionTypeID NUM NOT NULL,
	TransactionName TEXT NOT NULL,
	StartDate TEXT DEFAULT '1900-01-01',
	EndDate TEXT DEFAULT '2500-01-01',
	ModifyDate TEXT,
	ModifyUser TEXT,
	CreateDate TEXT NOT NULL,
	CreateUser TEXT NOT NULL
)`

// Tables is the DDL catalogue. Order matters only for fixture loading; no
// foreign keys are declared.
var Tables = []Table{
	{
		Name: entity.Table[Customer](),
		Columns: entity.Names(Customers.CustomerID, Customers.CustomerName, Customers.Street, Customers.City,
			Customers.State, Customers.Country, Customers.Zip, Customers.CreditLimit,
			Customers.ModifyDate, Customers.ModifyUser, Customers.CreateDate, Customers.CreateUser),
		DDL: customerDDL,
	},
	{
		Name: entity.Table[TransactionType](),
		Columns: entity.Names(TransactionTypes.TransactionTypeID, TransactionTypes.TransactionName,
			TransactionTypes.StartDate, TransactionTypes.EndDate, TransactionTypes.ModifyDate,
			TransactionTypes.ModifyUser, TransactionTypes.CreateDate, TransactionTypes.CreateUser),
		DDL: dimTransactionTypeDDL,
	},
	{
		Name: entity.Table[Transaction](),
		Columns: entity.Names(Transactions.TransactionID, Transactions.CustomerID, Transactions.TransactionTypeID,
			Transactions.TransactionDate, Transactions.Amount, Transactions.ModifyDate, Transactions.ModifyUser,
			Transactions.CreateDate, Transactions.CreateUser),
		DDL: transactionsDDL,
	},
	{
		Name:    entity.Table[DimDate](),
		Columns: entity.Names(Dates.Year, Dates.Month, Dates.Day, Dates.Hour, Dates.Minute, Dates.Second),
		DDL:     dimDateDDL,
	},
}

// Lookup finds a catalogue table by exact name.
func Lookup(name string) (Table, bool) {
	return lo.Find(Tables, func(t Table) bool { return t.Name == name })
}

// Match returns the catalogue tables whose names match the glob pattern.
// An empty pattern matches everything.
func Match(pattern string) []Table {
	if pattern == "" {
		return Tables
	}
	return lo.Filter(Tables, func(t Table, _ int) bool {
		return match.Match(t.Name, pattern)
	})
}
