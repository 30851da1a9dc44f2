package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"keepmoney/internal/amqp"
	"keepmoney/internal/core"
	"keepmoney/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyWishList      = errors.New("wishlist needs at least one item")
)

// BalancePublisher hands balance recalculation off to the worker.
type BalancePublisher interface {
	PublishBalanceRecalc(ctx context.Context, username, reason string) error
}

// LedgerService orchestrates the multi-table writes of the ledger and keeps
// the stored user totals current, either inline or through the worker.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	publisher  BalancePublisher
	now        func() time.Time
	bcryptCost int
}

// NewLedgerService builds the service. A nil publisher makes every write
// recompute the user total inline.
func NewLedgerService(storage *storage.SQLiteRepository, publisher BalancePublisher) *LedgerService {
	return &LedgerService{
		storage:    storage,
		publisher:  publisher,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Counts holds the per-user row counts shown on the summary screens.
type Counts struct {
	Incomes         int64 `json:"incomes"`
	SimplePurchases int64 `json:"simple_purchases"`
}

// RegisterUser hashes the password and stores a new account.
func (s *LedgerService) RegisterUser(ctx context.Context, username, password, name, surname, email string) (core.User, error) {
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	nu := core.NewUser{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Surname:      strings.TrimSpace(surname),
		Email:        strings.TrimSpace(email),
	}
	if err := s.storage.CreateUser(ctx, nu); err != nil {
		return core.User{}, fmt.Errorf("register user: %w", err)
	}

	return core.User{Username: nu.Username, Name: nu.Name, Surname: nu.Surname, Email: nu.Email}, nil
}

// Login checks the password of username. Unknown users and wrong passwords
// both return ErrInvalidCredentials.
func (s *LedgerService) Login(ctx context.Context, username, password string) (core.User, error) {
	hash, err := s.storage.UserCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}
	return s.storage.GetUser(ctx, username)
}

func (s *LedgerService) User(ctx context.Context, username string) (core.User, error) {
	return s.storage.GetUser(ctx, username)
}

// Usernames lists every registered user.
func (s *LedgerService) Usernames(ctx context.Context) ([]string, error) {
	return s.storage.Usernames(ctx)
}

func (s *LedgerService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) error {
	return s.storage.CreateCategory(ctx, c)
}

// RecordIncome stores an income for in.Username.
func (s *LedgerService) RecordIncome(ctx context.Context, in core.Income) (int64, error) {
	id, err := s.storage.CreateIncome(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("record income: %w", err)
	}
	s.balanceChanged(ctx, in.Username, amqp.ReasonIncome)
	return id, nil
}

// RemoveIncome deletes an income owned by username.
func (s *LedgerService) RemoveIncome(ctx context.Context, username string, id int64) error {
	in, err := s.storage.GetIncome(ctx, id)
	if err != nil {
		return fmt.Errorf("remove income: %w", err)
	}
	if in.Username != username {
		return fmt.Errorf("remove income %d: %w", id, storage.ErrNotFound)
	}
	if _, err := s.storage.RemoveIncome(ctx, id); err != nil {
		return fmt.Errorf("remove income: %w", err)
	}
	s.balanceChanged(ctx, username, amqp.ReasonIncome)
	return nil
}

func (s *LedgerService) Incomes(ctx context.Context, username string) ([]core.IncomeRow, error) {
	return s.storage.IncomeRows(ctx, username)
}

// RecordPurchase stores a confirmed item and a dated simple purchase in one
// transaction. A zero at means now.
func (s *LedgerService) RecordPurchase(ctx context.Context, username string, item core.Item, at time.Time) (itemID, purchaseID int64, err error) {
	if at.IsZero() {
		at = s.now()
	}
	item.Confirmed = true

	err = s.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		var err error
		itemID, err = tx.CreateItem(ctx, item)
		if err != nil {
			return err
		}
		purchaseID, err = tx.CreatePurchase(ctx, core.Purchase{At: at, Username: username, ItemID: itemID})
		return err
	})
	if err != nil {
		return 0, 0, fmt.Errorf("record purchase: %w", err)
	}

	s.balanceChanged(ctx, username, amqp.ReasonPurchase)
	return itemID, purchaseID, nil
}

// RemovePurchase deletes the purchase of itemID together with the item. A
// wishlist left without purchases is deleted too.
func (s *LedgerService) RemovePurchase(ctx context.Context, username string, itemID int64) error {
	purchaseID, err := s.storage.PurchaseIDByItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("remove purchase: %w", err)
	}
	p, err := s.storage.GetPurchase(ctx, purchaseID)
	if err != nil {
		return fmt.Errorf("remove purchase: %w", err)
	}
	if p.Username != username {
		return fmt.Errorf("remove purchase of item %d: %w", itemID, storage.ErrNotFound)
	}
	err = s.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		if _, err := tx.RemovePurchase(ctx, itemID, purchaseID); err != nil {
			return err
		}
		if p.WishListID == 0 {
			return nil
		}
		// Lists are owned through their purchases; an empty list goes too.
		left, err := tx.CountListPurchases(ctx, p.WishListID)
		if err != nil || left > 0 {
			return err
		}
		return tx.DeleteWishList(ctx, p.WishListID)
	})
	if err != nil {
		return fmt.Errorf("remove purchase: %w", err)
	}
	s.balanceChanged(ctx, username, amqp.ReasonPurchase)
	return nil
}

// Purchases lists purchased items of username, newest first. listID 0 selects
// simple purchases and limit <= 0 returns every row.
func (s *LedgerService) Purchases(ctx context.Context, username string, listID int64, limit int) ([]core.ItemRow, error) {
	return s.storage.PurchasedItems(ctx, username, listID, limit)
}

// CreateWishList stores the list, its unconfirmed items and one planned
// purchase per item in a single transaction.
func (s *LedgerService) CreateWishList(ctx context.Context, username string, list core.WishList, items []core.Item) (int64, error) {
	if len(items) == 0 {
		return 0, ErrEmptyWishList
	}
	list.Confirmed = false

	var listID int64
	err := s.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		var err error
		listID, err = tx.CreateWishList(ctx, list)
		if err != nil {
			return err
		}
		for _, it := range items {
			it.Confirmed = false
			itemID, err := tx.CreateItem(ctx, it)
			if err != nil {
				return err
			}
			if _, err := tx.CreatePurchase(ctx, core.Purchase{Username: username, ItemID: itemID, WishListID: listID}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create wishlist: %w", err)
	}

	slog.InfoContext(ctx, "Wishlist created", "id", listID, "username", username, "items", len(items))
	s.balanceChanged(ctx, username, amqp.ReasonWishList)
	return listID, nil
}

// UpdateWishListItem changes price and amount of an item owned by username.
func (s *LedgerService) UpdateWishListItem(ctx context.Context, username string, itemID int64, price core.Money, amount int) error {
	purchaseID, err := s.storage.PurchaseIDByItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	p, err := s.storage.GetPurchase(ctx, purchaseID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if p.Username != username {
		return fmt.Errorf("update item %d: %w", itemID, storage.ErrNotFound)
	}
	if err := s.storage.UpdateItemInfo(ctx, itemID, price, amount); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	s.balanceChanged(ctx, username, amqp.ReasonWishList)
	return nil
}

// ConfirmWishList marks the list and its items bought now.
func (s *LedgerService) ConfirmWishList(ctx context.Context, username string, listID int64) error {
	if err := s.checkWishListOwner(ctx, username, listID); err != nil {
		return err
	}
	if err := s.storage.ConfirmWishList(ctx, listID, s.now()); err != nil {
		return fmt.Errorf("confirm wishlist: %w", err)
	}
	s.balanceChanged(ctx, username, amqp.ReasonWishList)
	return nil
}

// DeleteWishList drops the list and its planned purchases. Purchases already
// confirmed are kept as simple purchases.
func (s *LedgerService) DeleteWishList(ctx context.Context, username string, listID int64) error {
	if err := s.checkWishListOwner(ctx, username, listID); err != nil {
		return err
	}
	if err := s.storage.DeleteWishList(ctx, listID); err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	s.balanceChanged(ctx, username, amqp.ReasonWishList)
	return nil
}

func (s *LedgerService) WishLists(ctx context.Context, username string, confirmed bool) ([]core.WishListSummary, error) {
	return s.storage.WishListSummaries(ctx, username, confirmed)
}

// WishListItems lists the items of a list owned by username.
func (s *LedgerService) WishListItems(ctx context.Context, username string, listID int64) ([]core.WishListItem, error) {
	if err := s.checkWishListOwner(ctx, username, listID); err != nil {
		return nil, err
	}
	return s.storage.WishListItems(ctx, listID)
}

func (s *LedgerService) checkWishListOwner(ctx context.Context, username string, listID int64) error {
	if listID <= 0 {
		return fmt.Errorf("wishlist %d: %w", listID, storage.ErrNotFound)
	}
	rows, err := s.storage.PurchasedItems(ctx, username, listID, 1)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("wishlist %d of %s: %w", listID, username, storage.ErrNotFound)
	}
	return nil
}

// Balance computes incomes, confirmed and planned purchases of username
// concurrently.
func (s *LedgerService) Balance(ctx context.Context, username string) (core.Balance, error) {
	var incomes, bought, planned core.Money

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = s.storage.SumIncomes(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		bought, err = s.storage.SumPurchases(gctx, username, true)
		return err
	})
	g.Go(func() error {
		var err error
		planned, err = s.storage.SumPurchases(gctx, username, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Balance{}, fmt.Errorf("balance of %s: %w", username, err)
	}

	return core.NewBalance(username, incomes, bought, planned), nil
}

// RecomputeTotal writes the current balance total into the user row.
func (s *LedgerService) RecomputeTotal(ctx context.Context, username string) (core.Balance, error) {
	b, err := s.Balance(ctx, username)
	if err != nil {
		return core.Balance{}, err
	}
	if err := s.storage.UpdateUserTotal(ctx, username, b.Total); err != nil {
		return core.Balance{}, fmt.Errorf("recompute total: %w", err)
	}
	return b, nil
}

func (s *LedgerService) Counts(ctx context.Context, username string) (Counts, error) {
	var c Counts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c.Incomes, err = s.storage.CountIncomes(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		c.SimplePurchases, err = s.storage.CountSimplePurchases(gctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		return Counts{}, fmt.Errorf("counts of %s: %w", username, err)
	}
	return c, nil
}

// CountRows counts the rows of one table.
func (s *LedgerService) CountRows(ctx context.Context, table string) (int64, error) {
	return s.storage.CountRows(ctx, table)
}

// balanceChanged publishes a recalculation request, falling back to an inline
// recompute when no publisher is set or publishing fails. The write that
// triggered it has already succeeded, so failures are only logged.
func (s *LedgerService) balanceChanged(ctx context.Context, username, reason string) {
	if s.publisher != nil {
		err := s.publisher.PublishBalanceRecalc(ctx, username, reason)
		if err == nil {
			return
		}
		slog.ErrorContext(ctx, "Failed to publish balance recalc message",
			"username", username, "reason", reason, "error", err)
	}

	if _, err := s.RecomputeTotal(ctx, username); err != nil {
		slog.ErrorContext(ctx, "Failed to recompute user total",
			"username", username, "reason", reason, "error", err)
	}
}

// Ping reports whether the database answers.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// Close closes the underlying storage.
func (s *LedgerService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close ledger service: %w", err)
		}
	}
	return nil
}
