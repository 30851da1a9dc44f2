package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"keepmoney/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	tx      *sql.Tx
	queries *Queries
}

// DSN builds the connection string for dbPath. Foreign keys and the busy
// timeout are pragmas so every pooled connection gets them. Transactions take
// the write lock at BEGIN, so a transaction that reads before writing waits on
// the busy timeout instead of failing with SQLITE_BUSY.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. Nested
// calls reuse the outer transaction.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(tx *SQLiteRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txRepo := &SQLiteRepository{db: r.db, tx: tx, queries: r.queries.WithTx(tx)}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}

// Users

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.NewUser) error {
	if err := u.Validate(); err != nil {
		return err
	}
	err := r.queries.CreateUser(ctx, CreateUserParams{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        nullString(u.Email),
		Name:         u.Name,
		Surname:      u.Surname,
		TotalCents:   u.Total.Cents,
	})
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, mapError(err))
	}

	slog.InfoContext(ctx, "User saved to SQLite", "username", u.Username)
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, username string) (core.User, error) {
	u, err := r.queries.GetUser(ctx, username)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", username, mapError(err))
	}
	return userFromRow(u), nil
}

// UserCredentials returns the stored password hash for username.
func (r *SQLiteRepository) UserCredentials(ctx context.Context, username string) (string, error) {
	u, err := r.queries.GetUser(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get credentials for %s: %w", username, mapError(err))
	}
	return u.PasswordHash, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", mapError(err))
	}
	users := make([]core.User, len(rows))
	for i, u := range rows {
		users[i] = userFromRow(u)
	}
	return users, nil
}

// Usernames returns every registered username in order.
func (r *SQLiteRepository) Usernames(ctx context.Context) ([]string, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list usernames: %w", mapError(err))
	}
	names := make([]string, len(rows))
	for i, u := range rows {
		names[i] = u.Username
	}
	return names, nil
}

func (r *SQLiteRepository) UpdateUserTotal(ctx context.Context, username string, total core.Money) error {
	n, err := r.queries.UpdateUserTotal(ctx, total.Cents, username)
	if err != nil {
		return fmt.Errorf("update total for %s: %w", username, mapError(err))
	}
	if n == 0 {
		return fmt.Errorf("update total for %s: %w", username, ErrNotFound)
	}
	slog.DebugContext(ctx, "User total updated", "username", username, "total_cents", total.Cents)
	return nil
}

// Categories

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	err := r.queries.CreateCategory(ctx, Category{
		ID:          c.ID,
		Description: nullString(c.Description),
		PicID:       int64(c.PicID),
	})
	if err != nil {
		return fmt.Errorf("create category %s: %w", c.ID, mapError(err))
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "id", c.ID, "pic_id", c.PicID)
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", mapError(err))
	}
	cats := make([]core.Category, len(rows))
	for i, c := range rows {
		cats[i] = core.Category{ID: c.ID, Description: c.Description.String, PicID: int(c.PicID)}
	}
	return cats, nil
}

// Items

func (r *SQLiteRepository) CreateItem(ctx context.Context, it core.Item) (int64, error) {
	if err := it.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateItem(ctx, CreateItemParams{
		PriceCents:  it.Price.Cents,
		Name:        nullString(it.Name),
		Amount:      int64(it.Amount),
		IsConfirmed: boolToInt(it.Confirmed),
		CategoryID:  it.CategoryID,
	})
	if err != nil {
		return 0, fmt.Errorf("create item: %w", mapError(err))
	}
	slog.DebugContext(ctx, "Item saved to SQLite", "id", id, "price_cents", it.Price.Cents, "amount", it.Amount)
	return id, nil
}

func (r *SQLiteRepository) GetItem(ctx context.Context, id int64) (core.Item, error) {
	it, err := r.queries.GetItem(ctx, id)
	if err != nil {
		return core.Item{}, fmt.Errorf("get item %d: %w", id, mapError(err))
	}
	return itemFromRow(it), nil
}

func (r *SQLiteRepository) ListItems(ctx context.Context) ([]core.Item, error) {
	rows, err := r.queries.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", mapError(err))
	}
	items := make([]core.Item, len(rows))
	for i, it := range rows {
		items[i] = itemFromRow(it)
	}
	return items, nil
}

func (r *SQLiteRepository) SetItemConfirmed(ctx context.Context, id int64, confirmed bool) error {
	n, err := r.queries.SetItemConfirmed(ctx, boolToInt(confirmed), id)
	return affected(fmt.Sprintf("set item %d confirmed", id), n, err)
}

// UpdateItemInfo changes the price and amount of an item.
func (r *SQLiteRepository) UpdateItemInfo(ctx context.Context, id int64, price core.Money, amount int) error {
	if err := price.Validate(); err != nil {
		return err
	}
	if amount < 1 {
		return core.ErrInvalidQuantity
	}
	n, err := r.queries.UpdateItemInfo(ctx, price.Cents, int64(amount), id)
	return affected(fmt.Sprintf("update item %d", id), n, err)
}

// ItemCost returns price times amount for one item.
func (r *SQLiteRepository) ItemCost(ctx context.Context, id int64) (core.Money, error) {
	cost, err := r.queries.ItemCost(ctx, id)
	if err != nil {
		return core.Money{}, fmt.Errorf("get cost of item %d: %w", id, mapError(err))
	}
	return core.Money{Cents: cost}, nil
}

// Incomes

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateIncome(ctx, CreateIncomeParams{
		ValueCents: in.Value.Cents,
		DateIncome: nullString(in.Date.String()),
		CategoryID: in.CategoryID,
		UserID:     in.Username,
	})
	if err != nil {
		return 0, fmt.Errorf("create income: %w", mapError(err))
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", id,
		"username", in.Username,
		"value_cents", in.Value.Cents,
		"date", in.Date.String())
	return id, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	in, err := r.queries.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, fmt.Errorf("get income %d: %w", id, mapError(err))
	}
	return incomeFromRow(in)
}

// RemoveIncome deletes one income and returns the number of rows removed.
func (r *SQLiteRepository) RemoveIncome(ctx context.Context, id int64) (int64, error) {
	n, err := r.queries.DeleteIncome(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("remove income %d: %w", id, mapError(err))
	}
	slog.InfoContext(ctx, "Income removed", "id", id, "rows", n)
	return n, nil
}

func (r *SQLiteRepository) IncomeValue(ctx context.Context, id int64) (core.Money, error) {
	v, err := r.queries.IncomeValue(ctx, id)
	if err != nil {
		return core.Money{}, fmt.Errorf("get income value %d: %w", id, mapError(err))
	}
	return core.Money{Cents: v}, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.queries.ListIncomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", mapError(err))
	}
	incomes := make([]core.Income, len(rows))
	for i, in := range rows {
		if incomes[i], err = incomeFromRow(in); err != nil {
			return nil, err
		}
	}
	return incomes, nil
}

func (r *SQLiteRepository) CountIncomes(ctx context.Context, username string) (int64, error) {
	n, err := r.queries.CountIncomesByUser(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("count incomes for %s: %w", username, mapError(err))
	}
	return n, nil
}

func (r *SQLiteRepository) SumIncomes(ctx context.Context, username string) (core.Money, error) {
	sum, err := r.queries.SumIncomes(ctx, username)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incomes for %s: %w", username, mapError(err))
	}
	return core.Money{Cents: sum}, nil
}

// IncomeRows returns the incomes of username with their category picture,
// newest first.
func (r *SQLiteRepository) IncomeRows(ctx context.Context, username string) ([]core.IncomeRow, error) {
	rows, err := r.queries.IncomeRowsByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get income rows for %s: %w", username, mapError(err))
	}
	out := make([]core.IncomeRow, len(rows))
	for i, row := range rows {
		d, err := incomeDate(row.ID, row.DateIncome)
		if err != nil {
			return nil, err
		}
		out[i] = core.IncomeRow{
			ID:    row.ID,
			Value: core.Money{Cents: row.ValueCents},
			Date:  d,
			PicID: int(row.PicID),
		}
	}
	return out, nil
}

// Wish lists

func (r *SQLiteRepository) CreateWishList(ctx context.Context, w core.WishList) (int64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	id, err := r.queries.CreateWishList(ctx, CreateWishListParams{
		Name:        w.Name,
		Description: nullString(w.Description),
		IsConfirmed: boolToInt(w.Confirmed),
	})
	if err != nil {
		return 0, fmt.Errorf("create wishlist %q: %w", w.Name, mapError(err))
	}
	slog.InfoContext(ctx, "Wishlist saved to SQLite", "id", id, "name", w.Name)
	return id, nil
}

func (r *SQLiteRepository) GetWishList(ctx context.Context, id int64) (core.WishList, error) {
	w, err := r.queries.GetWishList(ctx, id)
	if err != nil {
		return core.WishList{}, fmt.Errorf("get wishlist %d: %w", id, mapError(err))
	}
	return wishListFromRow(w), nil
}

func (r *SQLiteRepository) ListWishLists(ctx context.Context) ([]core.WishList, error) {
	rows, err := r.queries.ListWishLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", mapError(err))
	}
	lists := make([]core.WishList, len(rows))
	for i, w := range rows {
		lists[i] = wishListFromRow(w)
	}
	return lists, nil
}

func (r *SQLiteRepository) SetWishListConfirmed(ctx context.Context, id int64, confirmed bool) error {
	n, err := r.queries.SetWishListConfirmed(ctx, boolToInt(confirmed), id)
	return affected(fmt.Sprintf("set wishlist %d confirmed", id), n, err)
}

// ConfirmWishList flags the list and its items as confirmed and stamps every
// planned purchase of the list with at.
func (r *SQLiteRepository) ConfirmWishList(ctx context.Context, listID int64, at time.Time) error {
	at = at.UTC()
	return r.WithTx(ctx, func(tx *SQLiteRepository) error {
		if err := tx.SetWishListConfirmed(ctx, listID, true); err != nil {
			return err
		}
		if _, err := tx.queries.ConfirmListItems(ctx, listID); err != nil {
			return fmt.Errorf("confirm items of wishlist %d: %w", listID, mapError(err))
		}
		n, err := tx.queries.BackfillListPurchases(ctx, at.Format(core.DateLayout), at.Format(core.TimeLayout), listID)
		if err != nil {
			return fmt.Errorf("date purchases of wishlist %d: %w", listID, mapError(err))
		}
		slog.InfoContext(ctx, "Wishlist confirmed", "id", listID, "purchases", n)
		return nil
	})
}

// DeleteWishList removes a list together with its planned purchases and their
// items. Purchases already confirmed stay and become simple purchases.
func (r *SQLiteRepository) DeleteWishList(ctx context.Context, listID int64) error {
	return r.WithTx(ctx, func(tx *SQLiteRepository) error {
		itemIDs, err := tx.queries.PlannedListItemIDs(ctx, listID)
		if err != nil {
			return fmt.Errorf("get planned items of wishlist %d: %w", listID, mapError(err))
		}
		if _, err := tx.queries.DeletePlannedListPurchases(ctx, listID); err != nil {
			return fmt.Errorf("delete planned purchases of wishlist %d: %w", listID, mapError(err))
		}
		for _, id := range itemIDs {
			if _, err := tx.queries.DeleteItem(ctx, id); err != nil {
				return fmt.Errorf("delete item %d: %w", id, mapError(err))
			}
		}
		n, err := tx.queries.DeleteWishList(ctx, listID)
		if err := affected(fmt.Sprintf("delete wishlist %d", listID), n, err); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Wishlist deleted", "id", listID, "planned_items", len(itemIDs))
		return nil
	})
}

// WishListSummaries returns the lists holding purchases of username with the
// summed cost of their items.
func (r *SQLiteRepository) WishListSummaries(ctx context.Context, username string, confirmed bool) ([]core.WishListSummary, error) {
	rows, err := r.queries.WishListSummaries(ctx, username, boolToInt(confirmed))
	if err != nil {
		return nil, fmt.Errorf("get wishlists of %s: %w", username, mapError(err))
	}
	out := make([]core.WishListSummary, len(rows))
	for i, row := range rows {
		out[i] = core.WishListSummary{
			WishList: wishListFromRow(row.WishList),
			Total:    core.Money{Cents: row.TotalCents},
		}
	}
	return out, nil
}

func (r *SQLiteRepository) WishListItems(ctx context.Context, listID int64) ([]core.WishListItem, error) {
	rows, err := r.queries.WishListItems(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("get items of wishlist %d: %w", listID, mapError(err))
	}
	out := make([]core.WishListItem, len(rows))
	for i, row := range rows {
		out[i] = core.WishListItem{Item: itemFromRow(row.Item), PicID: int(row.PicID)}
	}
	return out, nil
}

// Purchases

// CreatePurchase inserts a purchase. A zero At stores a planned purchase and a
// zero WishListID a simple one.
func (r *SQLiteRepository) CreatePurchase(ctx context.Context, p core.Purchase) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	params := CreatePurchaseParams{
		UserID: p.Username,
		ItemID: p.ItemID,
	}
	if !p.Planned() {
		at := p.At.UTC()
		params.DateP = nullString(at.Format(core.DateLayout))
		params.TimeP = nullString(at.Format(core.TimeLayout))
	}
	if !p.Simple() {
		params.ListID = sql.NullInt64{Int64: p.WishListID, Valid: true}
	}

	id, err := r.queries.CreatePurchase(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("create purchase: %w", mapError(err))
	}

	slog.InfoContext(ctx, "Purchase saved to SQLite",
		"id", id,
		"username", p.Username,
		"item_id", p.ItemID,
		"list_id", p.WishListID,
		"planned", p.Planned())
	return id, nil
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, id int64) (core.Purchase, error) {
	p, err := r.queries.GetPurchase(ctx, id)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("get purchase %d: %w", id, mapError(err))
	}
	return purchaseFromRow(p), nil
}

func (r *SQLiteRepository) ListPurchases(ctx context.Context) ([]core.Purchase, error) {
	rows, err := r.queries.ListPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", mapError(err))
	}
	out := make([]core.Purchase, len(rows))
	for i, p := range rows {
		out[i] = purchaseFromRow(p)
	}
	return out, nil
}

// RemovePurchase deletes a purchase and its item, returning the total number
// of rows removed.
func (r *SQLiteRepository) RemovePurchase(ctx context.Context, itemID, purchaseID int64) (int64, error) {
	var total int64
	err := r.WithTx(ctx, func(tx *SQLiteRepository) error {
		n, err := tx.queries.DeletePurchase(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("remove purchase %d: %w", purchaseID, mapError(err))
		}
		total += n
		n, err = tx.queries.DeleteItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("remove item %d: %w", itemID, mapError(err))
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Purchase removed", "purchase_id", purchaseID, "item_id", itemID, "rows", total)
	return total, nil
}

func (r *SQLiteRepository) SetPurchaseTime(ctx context.Context, id int64, at time.Time) error {
	at = at.UTC()
	n, err := r.queries.SetPurchaseTime(ctx, at.Format(core.DateLayout), at.Format(core.TimeLayout), id)
	return affected(fmt.Sprintf("set time of purchase %d", id), n, err)
}

func (r *SQLiteRepository) PurchaseIDByItem(ctx context.Context, itemID int64) (int64, error) {
	id, err := r.queries.PurchaseIDByItem(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("get purchase of item %d: %w", itemID, mapError(err))
	}
	return id, nil
}

// CountListPurchases counts the purchases, planned or confirmed, still
// attached to listID.
func (r *SQLiteRepository) CountListPurchases(ctx context.Context, listID int64) (int64, error) {
	n, err := r.queries.CountListPurchases(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("count purchases of wishlist %d: %w", listID, mapError(err))
	}
	return n, nil
}

func (r *SQLiteRepository) CountSimplePurchases(ctx context.Context, username string) (int64, error) {
	n, err := r.queries.CountSimplePurchasesByUser(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("count purchases for %s: %w", username, mapError(err))
	}
	return n, nil
}

// SumPurchases sums price times amount over the purchases of username whose
// item has the given confirmation state.
func (r *SQLiteRepository) SumPurchases(ctx context.Context, username string, confirmed bool) (core.Money, error) {
	sum, err := r.queries.SumPurchases(ctx, boolToInt(confirmed), username)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum purchases for %s: %w", username, mapError(err))
	}
	return core.Money{Cents: sum}, nil
}

// PurchasedItems lists the items bought by username, newest first. listID 0
// selects simple purchases; limit <= 0 returns every row.
func (r *SQLiteRepository) PurchasedItems(ctx context.Context, username string, listID int64, limit int) ([]core.ItemRow, error) {
	lim := int64(limit)
	if lim <= 0 {
		lim = -1
	}
	rows, err := r.queries.PurchasedItems(ctx, PurchasedItemsParams{
		ListID:   listID,
		Username: username,
		Limit:    lim,
	})
	if err != nil {
		return nil, fmt.Errorf("get purchased items for %s: %w", username, mapError(err))
	}
	out := make([]core.ItemRow, len(rows))
	for i, row := range rows {
		out[i] = core.ItemRow{
			ItemID: row.ItemID,
			Name:   row.Name.String,
			Price:  core.Money{Cents: row.PriceCents},
			Amount: int(row.Amount.Int64),
			PicID:  int(row.PicID),
		}
	}
	return out, nil
}

// CountRows counts the rows of one of Tables.
func (r *SQLiteRepository) CountRows(ctx context.Context, table string) (int64, error) {
	n, err := r.queries.CountRows(ctx, strings.ToLower(strings.TrimSpace(table)))
	if err != nil {
		if errors.Is(err, ErrUnknownTable) {
			return 0, fmt.Errorf("count rows of %q: %w", table, err)
		}
		return 0, fmt.Errorf("count rows of %s: %w", table, mapError(err))
	}
	return n, nil
}

func affected(op string, n int64, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func userFromRow(u User) core.User {
	return core.User{
		Username: u.Username,
		Name:     u.Name,
		Surname:  u.Surname,
		Email:    u.Email.String,
		Total:    core.Money{Cents: u.TotalCents},
	}
}

func itemFromRow(it Item) core.Item {
	return core.Item{
		ID:         it.ID,
		Price:      core.Money{Cents: it.PriceCents},
		Name:       it.Name.String,
		Amount:     int(it.Amount.Int64),
		Confirmed:  it.IsConfirmed == 1,
		CategoryID: it.CategoryID,
	}
}

// incomeDate parses a stored income date. NULL is the zero date.
func incomeDate(id int64, raw sql.NullString) (core.Date, error) {
	if !raw.Valid {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(raw.String)
	if err != nil {
		return core.Date{}, fmt.Errorf("income %d has invalid date %q: %w", id, raw.String, err)
	}
	return d, nil
}

func incomeFromRow(in Income) (core.Income, error) {
	d, err := incomeDate(in.ID, in.DateIncome)
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		ID:         in.ID,
		Value:      core.Money{Cents: in.ValueCents},
		Date:       d,
		CategoryID: in.CategoryID,
		Username:   in.UserID,
	}, nil
}

func wishListFromRow(w WishList) core.WishList {
	return core.WishList{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description.String,
		Confirmed:   w.IsConfirmed == 1,
	}
}

func purchaseFromRow(p Purchase) core.Purchase {
	out := core.Purchase{
		ID:         p.ID,
		Username:   p.UserID,
		ItemID:     p.ItemID,
		WishListID: p.ListID.Int64,
	}
	if p.DateP.Valid {
		if at, err := time.Parse(core.DateLayout+" "+core.TimeLayout, p.DateP.String+" "+p.TimeP.String); err == nil {
			out.At = at
		}
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
