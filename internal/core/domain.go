package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	MaxUsernameLength     = 100
	MaxCategoryIDLength   = 8
	MaxWishListNameLength = 80
	MaxDescriptionLength  = 255
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is a registered account. The password hash never leaves storage.
	User struct {
		Username string
		Name     string
		Surname  string
		Email    string // optional
		Total    Money
	}

	// NewUser carries the fields needed to insert a user row.
	NewUser struct {
		Username     string
		PasswordHash string
		Name         string
		Surname      string
		Email        string
		Total        Money
	}

	Category struct {
		ID          string
		Description string
		PicID       int
	}

	Item struct {
		ID         int64
		Price      Money
		Name       string // optional
		Amount     int
		Confirmed  bool
		CategoryID string
	}

	Income struct {
		ID         int64
		Value      Money
		Date       Date
		CategoryID string
		Username   string
	}

	WishList struct {
		ID          int64
		Name        string
		Description string
		Confirmed   bool
	}

	// Purchase links a user to an item. A zero At marks a planned purchase
	// waiting for its wishlist to be confirmed; WishListID 0 marks a simple
	// purchase that belongs to no list.
	Purchase struct {
		ID         int64
		At         time.Time
		Username   string
		ItemID     int64
		WishListID int64
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptyPassword      = errors.New("empty password")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptySurname       = errors.New("empty surname")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidCategoryID  = errors.New("invalid category id")
	ErrDescriptionTooLong = errors.New("description too long (max 255 characters)")
	ErrNameTooLong        = errors.New("name too long")
	ErrInvalidReference   = errors.New("invalid reference")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Times returns m multiplied by n.
func (m Money) Times(n int) Money {
	return Money{Cents: m.Cents * int64(n)}
}

func (u NewUser) Validate() error {
	if err := validateUsername(u.Username); err != nil {
		return err
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		return ErrEmptyPassword
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(u.Surname) == "" {
		return ErrEmptySurname
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateCategoryID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(id) > MaxCategoryIDLength {
		return ErrInvalidCategoryID
	}
	return nil
}

func (c Category) Validate() error {
	if err := validateCategoryID(c.ID); err != nil {
		return err
	}
	if utf8.RuneCountInString(c.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (i Item) Validate() error {
	if err := i.Price.Validate(); err != nil {
		return err
	}
	if i.Amount < 1 {
		return ErrInvalidQuantity
	}
	if utf8.RuneCountInString(i.Name) > MaxDescriptionLength {
		return ErrNameTooLong
	}
	return validateCategoryID(i.CategoryID)
}

// Cost is price times amount.
func (i Item) Cost() Money {
	return i.Price.Times(i.Amount)
}

func (in Income) Validate() error {
	if err := in.Value.Validate(); err != nil {
		return err
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if err := validateCategoryID(in.CategoryID); err != nil {
		return err
	}
	return validateUsername(in.Username)
}

func (w WishList) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(w.Name) > MaxWishListNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(w.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (p Purchase) Validate() error {
	if err := validateUsername(p.Username); err != nil {
		return err
	}
	if p.ItemID <= 0 || p.WishListID < 0 {
		return ErrInvalidReference
	}
	return nil
}

// Planned reports whether the purchase is still waiting for confirmation.
func (p Purchase) Planned() bool {
	return p.At.IsZero()
}

// Simple reports whether the purchase belongs to no wishlist.
func (p Purchase) Simple() bool {
	return p.WishListID == 0
}
