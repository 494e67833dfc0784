package schema

import (
	"database/sql"

	"github.com/kcmvp/txreport/entity"
)

// Transaction is a row of the Transactions fact table.
type Transaction struct {
	TransactionID     int64           `db:"TransactionID"`
	CustomerID        int64           `db:"CustomerID"`
	TransactionTypeID int64           `db:"TransactionTypeID"`
	TransactionDate   string          `db:"TransactionDate"`
	Amount            sql.NullFloat64 `db:"Amount"`
	ModifyDate        sql.NullString  `db:"ModifyDate"`
	ModifyUser        sql.NullString  `db:"ModifyUser"`
	CreateDate        string          `db:"CreateDate"`
	CreateUser        string          `db:"CreateUser"`
}

func (Transaction) Table() string { return "Transactions" }

// Customer is a row of the Customer dimension.
type Customer struct {
	CustomerID   int64           `db:"CustomerID"`
	CustomerName string          `db:"CustomerName"`
	Street       sql.NullString  `db:"Street"`
	City         sql.NullString  `db:"City"`
	State        sql.NullString  `db:"State"`
	Country      sql.NullString  `db:"Country"`
	Zip          sql.NullString  `db:"Zip"`
	CreditLimit  sql.NullFloat64 `db:"CreditLimit"`
	ModifyDate   sql.NullString  `db:"ModifyDate"`
	ModifyUser   sql.NullString  `db:"ModifyUser"`
	CreateDate   string          `db:"CreateDate"`
	CreateUser   string          `db:"CreateUser"`
}

func (Customer) Table() string { return "Customer" }

// DimDate is a calendar row. Time-of-day parts default to zero.
type DimDate struct {
	Year   int `db:"Year"`
	Month  int `db:"Month"`
	Day    int `db:"Day"`
	Hour   int `db:"Hour"`
	Minute int `db:"Minute"`
	Second int `db:"Second"`
}

func (DimDate) Table() string { return "DimDate" }

// TransactionType is a row of DimTransactionType. TransactionTypeID is not unique.
type TransactionType struct {
	TransactionTypeID int64          `db:"TransactionTypeID"`
	TransactionName   string         `db:"TransactionName"`
	StartDate         string         `db:"StartDate"`
	EndDate           string         `db:"EndDate"`
	ModifyDate        sql.NullString `db:"ModifyDate"`
	ModifyUser        sql.NullString `db:"ModifyUser"`
	CreateDate        string         `db:"CreateDate"`
	CreateUser        string         `db:"CreateUser"`
}

func (TransactionType) Table() string { return "DimTransactionType" }

// Transactions holds the columns of the Transactions table.
var Transactions = struct {
	TransactionID, CustomerID, TransactionTypeID, TransactionDate, Amount entity.Column[Transaction]
	ModifyDate, ModifyUser, CreateDate, CreateUser                        entity.Column[Transaction]
}{
	TransactionID:     entity.Field[Transaction]("TransactionID"),
	CustomerID:        entity.Field[Transaction]("CustomerID"),
	TransactionTypeID: entity.Field[Transaction]("TransactionTypeID"),
	TransactionDate:   entity.Field[Transaction]("TransactionDate"),
	Amount:            entity.Field[Transaction]("Amount"),
	ModifyDate:        entity.Field[Transaction]("ModifyDate"),
	ModifyUser:        entity.Field[Transaction]("ModifyUser"),
	CreateDate:        entity.Field[Transaction]("CreateDate"),
	CreateUser:        entity.Field[Transaction]("CreateUser"),
}

// Customers holds the columns of the Customer table.
var Customers = struct {
	CustomerID, CustomerName, Street, City, State, Country, Zip, CreditLimit entity.Column[Customer]
	ModifyDate, ModifyUser, CreateDate, CreateUser                           entity.Column[Customer]
}{
	CustomerID:   entity.Field[Customer]("CustomerID"),
	CustomerName: entity.Field[Customer]("CustomerName"),
	Street:       entity.Field[Customer]("Street"),
	City:         entity.Field[Customer]("City"),
	State:        entity.Field[Customer]("State"),
	Country:      entity.Field[Customer]("Country"),
	Zip:          entity.Field[Customer]("Zip"),
	CreditLimit:  entity.Field[Customer]("CreditLimit"),
	ModifyDate:   entity.Field[Customer]("ModifyDate"),
	ModifyUser:   entity.Field[Customer]("ModifyUser"),
	CreateDate:   entity.Field[Customer]("CreateDate"),
	CreateUser:   entity.Field[Customer]("CreateUser"),
}

// Dates holds the columns of the DimDate table.
var Dates = struct {
	Year, Month, Day, Hour, Minute, Second entity.Column[DimDate]
}{
	Year:   entity.Field[DimDate]("Year"),
	Month:  entity.Field[DimDate]("Month"),
	Day:    entity.Field[DimDate]("Day"),
	Hour:   entity.Field[DimDate]("Hour"),
	Minute: entity.Field[DimDate]("Minute"),
	Second: entity.Field[DimDate]("Second"),
}

// TransactionTypes holds the columns of the DimTransactionType table.
var TransactionTypes = struct {
	TransactionTypeID, TransactionName, StartDate, EndDate entity.Column[TransactionType]
	ModifyDate, ModifyUser, CreateDate, CreateUser         entity.Column[TransactionType]
}{
	TransactionTypeID: entity.Field[TransactionType]("TransactionTypeID"),
	TransactionName:   entity.Field[TransactionType]("TransactionName"),
	StartDate:         entity.Field[TransactionType]("StartDate"),
	EndDate:           entity.Field[TransactionType]("EndDate"),
	ModifyDate:        entity.Field[TransactionType]("ModifyDate"),
	ModifyUser:        entity.Field[TransactionType]("ModifyUser"),
	CreateDate:        entity.Field[TransactionType]("CreateDate"),
	CreateUser:        entity.Field[TransactionType]("CreateUser"),
}
