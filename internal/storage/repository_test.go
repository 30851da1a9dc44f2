package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"keepmoney/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, username string) {
	t.Helper()
	err := repo.CreateUser(context.Background(), core.NewUser{
		Username:     username,
		PasswordHash: "hash",
		Name:         "Mario",
		Surname:      "Rossi",
		Email:        username + "@example.com",
	})
	require.NoError(t, err)
}

func buy(t *testing.T, repo *SQLiteRepository, username string, cents int64, amount int, listID int64, at time.Time) (itemID, purchaseID int64) {
	t.Helper()
	ctx := context.Background()
	itemID, err := repo.CreateItem(ctx, core.Item{
		Price:      core.Money{Cents: cents},
		Name:       "thing",
		Amount:     amount,
		Confirmed:  !at.IsZero(),
		CategoryID: "food",
	})
	require.NoError(t, err)
	purchaseID, err = repo.CreatePurchase(ctx, core.Purchase{
		At:         at,
		Username:   username,
		ItemID:     itemID,
		WishListID: listID,
	})
	require.NoError(t, err)
	return itemID, purchaseID
}

func TestMigrationsSeedCategories(t *testing.T) {
	repo := newTestRepo(t)
	cats, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	ids := make(map[string]bool)
	for _, c := range cats {
		ids[c.ID] = true
	}
	assert.True(t, ids["food"])
	assert.True(t, ids["salary"])
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	first, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	u, err := repo.GetUser(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, "Mario", u.Name)
	assert.Equal(t, "mario@example.com", u.Email)
	assert.Equal(t, int64(0), u.Total.Cents)

	hash, err := repo.UserCredentials(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)

	require.NoError(t, repo.UpdateUserTotal(ctx, "mario", core.Money{Cents: 1234}))
	u, err = repo.GetUser(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), u.Total.Cents)

	err = repo.UpdateUserTotal(ctx, "ghost", core.Money{Cents: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserDuplicateIsConflict(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	err := repo.CreateUser(context.Background(), core.NewUser{
		Username: "mario", PasswordHash: "x", Name: "a", Surname: "b",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUsernames(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "luigi")
	seedUser(t, repo, "anna")

	names, err := repo.Usernames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"anna", "luigi"}, names)
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateCategory(ctx, core.Category{ID: "pets", Description: "Pets", PicID: 42}))
	err := repo.CreateCategory(ctx, core.Category{ID: "pets", PicID: 43})
	assert.ErrorIs(t, err, ErrConflict)

	err = repo.CreateCategory(ctx, core.Category{ID: "waytoolong", PicID: 1})
	assert.ErrorIs(t, err, core.ErrInvalidCategoryID)
}

func TestItemForeignKeyIsConflict(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.CreateItem(context.Background(), core.Item{
		Price: core.Money{Cents: 100}, Amount: 1, CategoryID: "nope",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateItemTargetsOneRow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")
	first, _ := buy(t, repo, "mario", 100, 1, 0, time.Now())
	second, _ := buy(t, repo, "mario", 200, 1, 0, time.Now())

	require.NoError(t, repo.UpdateItemInfo(ctx, first, core.Money{Cents: 350}, 4))
	require.NoError(t, repo.SetItemConfirmed(ctx, first, false))

	got, err := repo.GetItem(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(350), got.Price.Cents)
	assert.Equal(t, 4, got.Amount)
	assert.False(t, got.Confirmed)

	other, err := repo.GetItem(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, int64(200), other.Price.Cents)
	assert.True(t, other.Confirmed)

	cost, err := repo.ItemCost(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1400), cost.Cents)

	assert.ErrorIs(t, repo.UpdateItemInfo(ctx, 999, core.Money{Cents: 1}, 1), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateItemInfo(ctx, first, core.Money{Cents: 1}, 0), core.ErrInvalidQuantity)
}

func TestIncomes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")
	seedUser(t, repo, "luigi")

	id, err := repo.CreateIncome(ctx, core.Income{
		Value: core.Money{Cents: 150000}, Date: core.NewDate(2025, 1, 27), CategoryID: "salary", Username: "mario",
	})
	require.NoError(t, err)
	_, err = repo.CreateIncome(ctx, core.Income{
		Value: core.Money{Cents: 5000}, Date: core.NewDate(2025, 2, 3), CategoryID: "bonus", Username: "mario",
	})
	require.NoError(t, err)
	_, err = repo.CreateIncome(ctx, core.Income{
		Value: core.Money{Cents: 999}, Date: core.NewDate(2025, 2, 3), CategoryID: "salary", Username: "luigi",
	})
	require.NoError(t, err)

	v, err := repo.IncomeValue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), v.Cents)

	n, err := repo.CountIncomes(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	sum, err := repo.SumIncomes(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, int64(155000), sum.Cents)

	rows, err := repo.IncomeRows(ctx, "mario")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-02-03", rows[0].Date.String())
	assert.Equal(t, 10, rows[0].PicID)

	removed, err := repo.RemoveIncome(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.RemoveIncome(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	_, err = repo.IncomeValue(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.CreateIncome(ctx, core.Income{
		Value: core.Money{Cents: 1}, Date: core.NewDate(2025, 1, 1), CategoryID: "salary", Username: "ghost",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPurchasesAndSums(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	listID, err := repo.CreateWishList(ctx, core.WishList{Name: "holiday"})
	require.NoError(t, err)

	buy(t, repo, "mario", 250, 2, 0, now)
	lastSimple, purchaseID := buy(t, repo, "mario", 100, 1, 0, now)
	buy(t, repo, "mario", 1000, 3, listID, time.Time{})

	confirmed, err := repo.SumPurchases(ctx, "mario", true)
	require.NoError(t, err)
	assert.Equal(t, int64(600), confirmed.Cents)

	planned, err := repo.SumPurchases(ctx, "mario", false)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), planned.Cents)

	n, err := repo.CountSimplePurchases(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	simple, err := repo.PurchasedItems(ctx, "mario", 0, 0)
	require.NoError(t, err)
	require.Len(t, simple, 2)
	assert.Equal(t, lastSimple, simple[0].ItemID)
	assert.Equal(t, 1, simple[0].PicID)

	limited, err := repo.PurchasedItems(ctx, "mario", 0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	inList, err := repo.PurchasedItems(ctx, "mario", listID, 0)
	require.NoError(t, err)
	require.Len(t, inList, 1)
	assert.Equal(t, int64(3000), inList[0].Cost().Cents)

	got, err := repo.PurchaseIDByItem(ctx, lastSimple)
	require.NoError(t, err)
	assert.Equal(t, purchaseID, got)

	p, err := repo.GetPurchase(ctx, purchaseID)
	require.NoError(t, err)
	assert.True(t, p.At.Equal(now))
	assert.True(t, p.Simple())

	later := now.Add(time.Hour)
	require.NoError(t, repo.SetPurchaseTime(ctx, purchaseID, later))
	p, err = repo.GetPurchase(ctx, purchaseID)
	require.NoError(t, err)
	assert.True(t, p.At.Equal(later))

	removed, err := repo.RemovePurchase(ctx, lastSimple, purchaseID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = repo.GetItem(ctx, lastSimple)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemovePurchaseRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")
	itemID, purchaseID := buy(t, repo, "mario", 100, 1, 0, time.Now())
	otherItem, _ := buy(t, repo, "mario", 100, 1, 0, time.Now())

	// otherItem is still referenced by its purchase, so deleting it fails
	// and the first delete must be undone.
	_, err := repo.RemovePurchase(ctx, otherItem, purchaseID)
	require.ErrorIs(t, err, ErrConflict)

	_, err = repo.GetPurchase(ctx, purchaseID)
	require.NoError(t, err)
	_, err = repo.GetItem(ctx, itemID)
	require.NoError(t, err)
}

func TestConfirmWishList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	listID, err := repo.CreateWishList(ctx, core.WishList{Name: "birthday", Description: "gifts"})
	require.NoError(t, err)
	itemID, purchaseID := buy(t, repo, "mario", 500, 2, listID, time.Time{})
	buy(t, repo, "mario", 300, 1, listID, time.Time{})

	open, err := repo.WishListSummaries(ctx, "mario", false)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "birthday", open[0].Name)
	assert.Equal(t, int64(1300), open[0].Total.Cents)

	at := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ConfirmWishList(ctx, listID, at))

	w, err := repo.GetWishList(ctx, listID)
	require.NoError(t, err)
	assert.True(t, w.Confirmed)

	items, err := repo.WishListItems(ctx, listID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.True(t, it.Confirmed)
	}
	assert.Equal(t, itemID, items[0].ID)

	p, err := repo.GetPurchase(ctx, purchaseID)
	require.NoError(t, err)
	assert.False(t, p.Planned())
	assert.True(t, p.At.Equal(at))

	done, err := repo.WishListSummaries(ctx, "mario", true)
	require.NoError(t, err)
	assert.Len(t, done, 1)

	assert.ErrorIs(t, repo.ConfirmWishList(ctx, 999, at), ErrNotFound)
}

func TestDeleteWishListResetsConfirmedPurchases(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	listID, err := repo.CreateWishList(ctx, core.WishList{Name: "tools"})
	require.NoError(t, err)
	_, confirmedPurchase := buy(t, repo, "mario", 700, 1, listID, time.Now())
	plannedItem, plannedPurchase := buy(t, repo, "mario", 100, 1, listID, time.Time{})

	require.NoError(t, repo.DeleteWishList(ctx, listID))

	p, err := repo.GetPurchase(ctx, confirmedPurchase)
	require.NoError(t, err)
	assert.True(t, p.Simple())

	_, err = repo.GetPurchase(ctx, plannedPurchase)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetItem(ctx, plannedItem)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetWishList(ctx, listID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteWishList(ctx, listID), ErrNotFound)
}

func TestCountRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	n, err := repo.CountRows(ctx, TableUsers)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountRows(ctx, " Purchases ")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = repo.CountRows(ctx, "users; DROP TABLE users")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestListAllTables(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")
	_, err := repo.CreateWishList(ctx, core.WishList{Name: "l"})
	require.NoError(t, err)
	buy(t, repo, "mario", 100, 1, 0, time.Now())
	_, err = repo.CreateIncome(ctx, core.Income{
		Value: core.Money{Cents: 1}, Date: core.NewDate(2025, 1, 1), CategoryID: "salary", Username: "mario",
	})
	require.NoError(t, err)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	incomes, err := repo.ListIncomes(ctx)
	require.NoError(t, err)
	assert.Len(t, incomes, 1)
	lists, err := repo.ListWishLists(ctx)
	require.NoError(t, err)
	assert.Len(t, lists, 1)
	purchases, err := repo.ListPurchases(ctx)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.WithTx(ctx, func(tx *SQLiteRepository) error {
		if err := tx.CreateCategory(ctx, core.Category{ID: "temp", PicID: 99}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	cats, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		assert.NotEqual(t, "temp", c.ID)
	}
}

func TestDSNTakesWriteLockAtBegin(t *testing.T) {
	dsn := DSN("/tmp/x.db")
	assert.True(t, strings.HasPrefix(dsn, "file:/tmp/x.db?"))
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "busy_timeout(5000)")
}

func TestConcurrentWritersWaitForLock(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	const n = 20
	lists := make([]int64, n)
	for i := range lists {
		id, err := repo.CreateWishList(ctx, core.WishList{Name: "list"})
		require.NoError(t, err)
		buy(t, repo, "mario", 100, 1, id, time.Time{})
		lists[i] = id
	}

	var g errgroup.Group
	for _, id := range lists {
		g.Go(func() error {
			return repo.DeleteWishList(ctx, id)
		})
		g.Go(func() error {
			return repo.WithTx(ctx, func(tx *SQLiteRepository) error {
				itemID, err := tx.CreateItem(ctx, core.Item{Price: core.Money{Cents: 250}, Amount: 1, Confirmed: true, CategoryID: "food"})
				if err != nil {
					return err
				}
				_, err = tx.CreatePurchase(ctx, core.Purchase{At: time.Now(), Username: "mario", ItemID: itemID})
				return err
			})
		})
	}
	require.NoError(t, g.Wait())

	left, err := repo.CountRows(ctx, TableWishLists)
	require.NoError(t, err)
	assert.Zero(t, left)
	simple, err := repo.CountSimplePurchases(ctx, "mario")
	require.NoError(t, err)
	assert.Equal(t, int64(n), simple)
}

func TestCountListPurchases(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	listID, err := repo.CreateWishList(ctx, core.WishList{Name: "l"})
	require.NoError(t, err)
	buy(t, repo, "mario", 100, 1, listID, time.Time{})
	buy(t, repo, "mario", 100, 1, listID, time.Now())
	buy(t, repo, "mario", 100, 1, 0, time.Now())

	n, err := repo.CountListPurchases(ctx, listID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCorruptIncomeDateIsReported(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedUser(t, repo, "mario")

	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO incomes (value_cents, date_income, category_id, user_id) VALUES (100, NULL, 'salary', 'mario')`)
	require.NoError(t, err)
	incomes, err := repo.ListIncomes(ctx)
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.True(t, incomes[0].Date.IsZero())

	res, err := repo.db.ExecContext(ctx,
		`INSERT INTO incomes (value_cents, date_income, category_id, user_id) VALUES (100, '31/12/2024', 'salary', 'mario')`)
	require.NoError(t, err)
	badID, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = repo.GetIncome(ctx, badID)
	assert.ErrorContains(t, err, "invalid date")
	_, err = repo.ListIncomes(ctx)
	assert.ErrorContains(t, err, "invalid date")
	_, err = repo.IncomeRows(ctx, "mario")
	assert.ErrorContains(t, err, "invalid date")
}
