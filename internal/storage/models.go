package storage

import "database/sql"

// Row types mirror the table columns one to one.

type User struct {
	Username     string
	PasswordHash string
	Email        sql.NullString
	Name         string
	Surname      string
	TotalCents   int64
}

type Category struct {
	ID          string
	Description sql.NullString
	PicID       int64
}

type Item struct {
	ID          int64
	PriceCents  int64
	Name        sql.NullString
	Amount      sql.NullInt64
	IsConfirmed int64
	CategoryID  string
}

type Income struct {
	ID         int64
	ValueCents int64
	DateIncome sql.NullString
	CategoryID string
	UserID     string
}

type WishList struct {
	ID          int64
	Name        string
	Description sql.NullString
	IsConfirmed int64
}

type Purchase struct {
	ID     int64
	DateP  sql.NullString
	TimeP  sql.NullString
	UserID string
	ItemID int64
	ListID sql.NullInt64
}

type PurchasedItemRow struct {
	ItemID     int64
	Name       sql.NullString
	PriceCents int64
	Amount     sql.NullInt64
	PicID      int64
}

type IncomeRow struct {
	ID         int64
	ValueCents int64
	DateIncome sql.NullString
	PicID      int64
}

type WishListSummaryRow struct {
	WishList
	TotalCents int64
}

type WishListItemRow struct {
	Item
	PicID int64
}
