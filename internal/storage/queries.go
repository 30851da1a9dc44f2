package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Users

const createUser = `INSERT INTO users (username, password_hash, email, name, surname, total_cents)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Email        sql.NullString
	Name         string
	Surname      string
	TotalCents   int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.Username, arg.PasswordHash, arg.Email, arg.Name, arg.Surname, arg.TotalCents)
	return err
}

const getUser = `SELECT username, password_hash, email, name, surname, total_cents
FROM users WHERE username = ?`

func (q *Queries) GetUser(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUser, username).Scan(
		&u.Username, &u.PasswordHash, &u.Email, &u.Name, &u.Surname, &u.TotalCents)
	return u, err
}

const listUsers = `SELECT username, password_hash, email, name, surname, total_cents
FROM users ORDER BY username`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Email, &u.Name, &u.Surname, &u.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const updateUserTotal = `UPDATE users SET total_cents = ? WHERE username = ?`

func (q *Queries) UpdateUserTotal(ctx context.Context, totalCents int64, username string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserTotal, totalCents, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Categories

const createCategory = `INSERT INTO categories (id, description, pic_id) VALUES (?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, createCategory, arg.ID, arg.Description, arg.PicID)
	return err
}

const listCategories = `SELECT id, description, pic_id FROM categories ORDER BY pic_id, id`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Description, &c.PicID); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Items

const createItem = `INSERT INTO items (price_cents, name, amount, is_confirmed, category_id)
VALUES (?, ?, ?, ?, ?)`

type CreateItemParams struct {
	PriceCents  int64
	Name        sql.NullString
	Amount      int64
	IsConfirmed int64
	CategoryID  string
}

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createItem,
		arg.PriceCents, arg.Name, arg.Amount, arg.IsConfirmed, arg.CategoryID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getItem = `SELECT id, price_cents, name, amount, is_confirmed, category_id FROM items WHERE id = ?`

func (q *Queries) GetItem(ctx context.Context, id int64) (Item, error) {
	var i Item
	err := q.db.QueryRowContext(ctx, getItem, id).Scan(
		&i.ID, &i.PriceCents, &i.Name, &i.Amount, &i.IsConfirmed, &i.CategoryID)
	return i, err
}

const listItems = `SELECT id, price_cents, name, amount, is_confirmed, category_id FROM items ORDER BY id`

func (q *Queries) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, listItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.PriceCents, &i.Name, &i.Amount, &i.IsConfirmed, &i.CategoryID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const setItemConfirmed = `UPDATE items SET is_confirmed = ? WHERE id = ?`

func (q *Queries) SetItemConfirmed(ctx context.Context, confirmed int64, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, setItemConfirmed, confirmed, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateItemInfo = `UPDATE items SET price_cents = ?, amount = ? WHERE id = ?`

func (q *Queries) UpdateItemInfo(ctx context.Context, priceCents, amount, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateItemInfo, priceCents, amount, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteItem = `DELETE FROM items WHERE id = ?`

func (q *Queries) DeleteItem(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteItem, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const itemCost = `SELECT price_cents * COALESCE(amount, 0) AS cost FROM items WHERE id = ?`

func (q *Queries) ItemCost(ctx context.Context, id int64) (int64, error) {
	var cost int64
	err := q.db.QueryRowContext(ctx, itemCost, id).Scan(&cost)
	return cost, err
}

const confirmListItems = `UPDATE items SET is_confirmed = 1
WHERE id IN (SELECT item_id FROM purchases WHERE list_id = ?)`

func (q *Queries) ConfirmListItems(ctx context.Context, listID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, confirmListItems, listID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Incomes

const createIncome = `INSERT INTO incomes (value_cents, date_income, category_id, user_id) VALUES (?, ?, ?, ?)`

type CreateIncomeParams struct {
	ValueCents int64
	DateIncome sql.NullString
	CategoryID string
	UserID     string
}

func (q *Queries) CreateIncome(ctx context.Context, arg CreateIncomeParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createIncome, arg.ValueCents, arg.DateIncome, arg.CategoryID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getIncome = `SELECT id, value_cents, date_income, category_id, user_id FROM incomes WHERE id = ?`

func (q *Queries) GetIncome(ctx context.Context, id int64) (Income, error) {
	var in Income
	err := q.db.QueryRowContext(ctx, getIncome, id).Scan(
		&in.ID, &in.ValueCents, &in.DateIncome, &in.CategoryID, &in.UserID)
	return in, err
}

const listIncomes = `SELECT id, value_cents, date_income, category_id, user_id FROM incomes ORDER BY id`

func (q *Queries) ListIncomes(ctx context.Context) ([]Income, error) {
	rows, err := q.db.QueryContext(ctx, listIncomes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Income
	for rows.Next() {
		var in Income
		if err := rows.Scan(&in.ID, &in.ValueCents, &in.DateIncome, &in.CategoryID, &in.UserID); err != nil {
			return nil, err
		}
		items = append(items, in)
	}
	return items, rows.Err()
}

const deleteIncome = `DELETE FROM incomes WHERE id = ?`

func (q *Queries) DeleteIncome(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteIncome, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const incomeValue = `SELECT value_cents FROM incomes WHERE id = ?`

func (q *Queries) IncomeValue(ctx context.Context, id int64) (int64, error) {
	var v int64
	err := q.db.QueryRowContext(ctx, incomeValue, id).Scan(&v)
	return v, err
}

const countIncomesByUser = `SELECT COUNT(*) FROM incomes WHERE user_id = ?`

func (q *Queries) CountIncomesByUser(ctx context.Context, username string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countIncomesByUser, username).Scan(&n)
	return n, err
}

const sumIncomes = `SELECT COALESCE(SUM(incomes.value_cents), 0)
FROM incomes JOIN users ON users.username = incomes.user_id
WHERE users.username = ?`

func (q *Queries) SumIncomes(ctx context.Context, username string) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, sumIncomes, username).Scan(&sum)
	return sum, err
}

const incomeRowsByUser = `SELECT incomes.id, incomes.value_cents, incomes.date_income, categories.pic_id
FROM incomes JOIN categories ON incomes.category_id = categories.id
WHERE incomes.user_id = ?
ORDER BY incomes.date_income DESC, incomes.id DESC`

func (q *Queries) IncomeRowsByUser(ctx context.Context, username string) ([]IncomeRow, error) {
	rows, err := q.db.QueryContext(ctx, incomeRowsByUser, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []IncomeRow
	for rows.Next() {
		var r IncomeRow
		if err := rows.Scan(&r.ID, &r.ValueCents, &r.DateIncome, &r.PicID); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// Wish lists

const createWishList = `INSERT INTO wish_lists (name, description, is_confirmed) VALUES (?, ?, ?)`

type CreateWishListParams struct {
	Name        string
	Description sql.NullString
	IsConfirmed int64
}

func (q *Queries) CreateWishList(ctx context.Context, arg CreateWishListParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createWishList, arg.Name, arg.Description, arg.IsConfirmed)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getWishList = `SELECT id, name, description, is_confirmed FROM wish_lists WHERE id = ?`

func (q *Queries) GetWishList(ctx context.Context, id int64) (WishList, error) {
	var w WishList
	err := q.db.QueryRowContext(ctx, getWishList, id).Scan(&w.ID, &w.Name, &w.Description, &w.IsConfirmed)
	return w, err
}

const listWishLists = `SELECT id, name, description, is_confirmed FROM wish_lists ORDER BY id`

func (q *Queries) ListWishLists(ctx context.Context) ([]WishList, error) {
	rows, err := q.db.QueryContext(ctx, listWishLists)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WishList
	for rows.Next() {
		var w WishList
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.IsConfirmed); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

const setWishListConfirmed = `UPDATE wish_lists SET is_confirmed = ? WHERE id = ?`

func (q *Queries) SetWishListConfirmed(ctx context.Context, confirmed int64, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, setWishListConfirmed, confirmed, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteWishList = `DELETE FROM wish_lists WHERE id = ?`

func (q *Queries) DeleteWishList(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteWishList, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const wishListSummaries = `SELECT wish_lists.id, wish_lists.name, wish_lists.description, wish_lists.is_confirmed,
       COALESCE(SUM(items.price_cents * COALESCE(items.amount, 0)), 0) AS total
FROM purchases
JOIN wish_lists ON purchases.list_id = wish_lists.id
JOIN items ON items.id = purchases.item_id
JOIN categories ON categories.id = items.category_id
JOIN users ON users.username = purchases.user_id
WHERE users.username = ? AND wish_lists.is_confirmed = ?
GROUP BY wish_lists.id
ORDER BY wish_lists.id`

func (q *Queries) WishListSummaries(ctx context.Context, username string, confirmed int64) ([]WishListSummaryRow, error) {
	rows, err := q.db.QueryContext(ctx, wishListSummaries, username, confirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WishListSummaryRow
	for rows.Next() {
		var r WishListSummaryRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsConfirmed, &r.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const wishListItems = `SELECT items.id, items.price_cents, items.name, items.amount, items.is_confirmed,
       items.category_id, categories.pic_id
FROM purchases
JOIN wish_lists ON purchases.list_id = wish_lists.id
JOIN items ON items.id = purchases.item_id
JOIN categories ON categories.id = items.category_id
WHERE wish_lists.id = ?
ORDER BY items.id`

func (q *Queries) WishListItems(ctx context.Context, listID int64) ([]WishListItemRow, error) {
	rows, err := q.db.QueryContext(ctx, wishListItems, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WishListItemRow
	for rows.Next() {
		var r WishListItemRow
		if err := rows.Scan(&r.ID, &r.PriceCents, &r.Name, &r.Amount, &r.IsConfirmed, &r.CategoryID, &r.PicID); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// Purchases

const createPurchase = `INSERT INTO purchases (date_p, time_p, user_id, item_id, list_id) VALUES (?, ?, ?, ?, ?)`

type CreatePurchaseParams struct {
	DateP  sql.NullString
	TimeP  sql.NullString
	UserID string
	ItemID int64
	ListID sql.NullInt64
}

func (q *Queries) CreatePurchase(ctx context.Context, arg CreatePurchaseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createPurchase, arg.DateP, arg.TimeP, arg.UserID, arg.ItemID, arg.ListID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getPurchase = `SELECT id, date_p, time_p, user_id, item_id, list_id FROM purchases WHERE id = ?`

func (q *Queries) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	var p Purchase
	err := q.db.QueryRowContext(ctx, getPurchase, id).Scan(&p.ID, &p.DateP, &p.TimeP, &p.UserID, &p.ItemID, &p.ListID)
	return p, err
}

const listPurchases = `SELECT id, date_p, time_p, user_id, item_id, list_id FROM purchases ORDER BY id`

func (q *Queries) ListPurchases(ctx context.Context) ([]Purchase, error) {
	rows, err := q.db.QueryContext(ctx, listPurchases)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.DateP, &p.TimeP, &p.UserID, &p.ItemID, &p.ListID); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const deletePurchase = `DELETE FROM purchases WHERE id = ?`

func (q *Queries) DeletePurchase(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePurchase, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const setPurchaseTime = `UPDATE purchases SET date_p = ?, time_p = ? WHERE id = ?`

func (q *Queries) SetPurchaseTime(ctx context.Context, dateP, timeP string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, setPurchaseTime, dateP, timeP, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const backfillListPurchases = `UPDATE purchases SET date_p = ?, time_p = ?
WHERE list_id = ? AND date_p IS NULL`

func (q *Queries) BackfillListPurchases(ctx context.Context, dateP, timeP string, listID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, backfillListPurchases, dateP, timeP, listID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const plannedListItemIDs = `SELECT item_id FROM purchases WHERE list_id = ? AND date_p IS NULL ORDER BY id`

func (q *Queries) PlannedListItemIDs(ctx context.Context, listID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, plannedListItemIDs, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const deletePlannedListPurchases = `DELETE FROM purchases WHERE list_id = ? AND date_p IS NULL`

func (q *Queries) DeletePlannedListPurchases(ctx context.Context, listID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePlannedListPurchases, listID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const purchaseIDByItem = `SELECT purchases.id FROM purchases JOIN items ON purchases.item_id = items.id
WHERE purchases.item_id = ?`

func (q *Queries) PurchaseIDByItem(ctx context.Context, itemID int64) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, purchaseIDByItem, itemID).Scan(&id)
	return id, err
}

const countListPurchases = `SELECT COUNT(*) FROM purchases WHERE list_id = ?`

func (q *Queries) CountListPurchases(ctx context.Context, listID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countListPurchases, listID).Scan(&n)
	return n, err
}

const countSimplePurchasesByUser = `SELECT COUNT(*) FROM purchases WHERE user_id = ? AND list_id IS NULL`

func (q *Queries) CountSimplePurchasesByUser(ctx context.Context, username string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countSimplePurchasesByUser, username).Scan(&n)
	return n, err
}

const sumPurchases = `SELECT COALESCE(SUM(items.price_cents * COALESCE(items.amount, 0)), 0)
FROM items
JOIN purchases ON purchases.item_id = items.id
JOIN users ON users.username = purchases.user_id
WHERE items.is_confirmed = ? AND users.username = ?`

func (q *Queries) SumPurchases(ctx context.Context, confirmed int64, username string) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, sumPurchases, confirmed, username).Scan(&sum)
	return sum, err
}

// A list id of 0 selects simple purchases. LIMIT -1 means no limit in SQLite.
const purchasedItems = `SELECT items.id, items.name, items.price_cents, items.amount, categories.pic_id
FROM items
JOIN categories ON categories.id = items.category_id
JOIN purchases ON purchases.item_id = items.id
JOIN users ON users.username = purchases.user_id
WHERE ((? = 0 AND purchases.list_id IS NULL) OR purchases.list_id = ?)
  AND users.username = ?
ORDER BY items.id DESC
LIMIT ?`

type PurchasedItemsParams struct {
	ListID   int64
	Username string
	Limit    int64
}

func (q *Queries) PurchasedItems(ctx context.Context, arg PurchasedItemsParams) ([]PurchasedItemRow, error) {
	rows, err := q.db.QueryContext(ctx, purchasedItems, arg.ListID, arg.ListID, arg.Username, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PurchasedItemRow
	for rows.Next() {
		var r PurchasedItemRow
		if err := rows.Scan(&r.ItemID, &r.Name, &r.PriceCents, &r.Amount, &r.PicID); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// CountRows counts the rows of a table. The name must be one of Tables.
func (q *Queries) CountRows(ctx context.Context, table string) (int64, error) {
	if !knownTable(table) {
		return 0, ErrUnknownTable
	}
	var n int64
	err := q.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	return n, err
}
