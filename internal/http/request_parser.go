// Package http provides the JSON API of the ledger.
//
// This file holds the request bodies and the helpers that turn path, query
// and body values into domain types.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"keepmoney/internal/core"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks malformed input that never reached validation.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type categoryRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	PicID       int    `json:"pic_id"`
}

type incomeRequest struct {
	Value      string `json:"value"`
	Date       string `json:"date"` // YYYY-MM-DD, today when empty
	CategoryID string `json:"category_id"`
}

type itemRequest struct {
	Name       string `json:"name"`
	Price      string `json:"price"`
	Amount     int    `json:"amount"`
	CategoryID string `json:"category_id"`
}

type purchaseRequest struct {
	itemRequest
	Date string `json:"date"`
	Time string `json:"time"`
}

type wishListRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Items       []itemRequest `json:"items"`
}

type itemUpdateRequest struct {
	Price  string `json:"price"`
	Amount int    `json:"amount"`
}

// decodeJSON reads one JSON object into dst, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty body")
		}
		return badRequest("invalid JSON: %v", err)
	}
	if dec.More() {
		return badRequest("body must contain a single JSON object")
	}
	return nil
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest("invalid %s %q", name, raw)
	}
	return v, nil
}

// parseMoney maps parse failures to the validation error so they answer 422.
func parseMoney(s string) (core.Money, error) {
	m, err := core.ParseMoney(s)
	if err != nil {
		return core.Money{}, core.ErrInvalidAmount
	}
	return m, nil
}

func (req itemRequest) toItem() (core.Item, error) {
	price, err := parseMoney(req.Price)
	if err != nil {
		return core.Item{}, err
	}
	it := core.Item{
		Name:       strings.TrimSpace(req.Name),
		Price:      price,
		Amount:     req.Amount,
		CategoryID: strings.TrimSpace(req.CategoryID),
	}
	if it.Amount == 0 {
		it.Amount = 1
	}
	return it, it.Validate()
}

func (req incomeRequest) toIncome(username string, now time.Time) (core.Income, error) {
	value, err := parseMoney(req.Value)
	if err != nil {
		return core.Income{}, err
	}
	date := core.Date{Time: now.UTC().Truncate(24 * time.Hour)}
	if strings.TrimSpace(req.Date) != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			return core.Income{}, badRequest("invalid date %q", req.Date)
		}
	}
	in := core.Income{
		Value:      value,
		Date:       date,
		CategoryID: strings.TrimSpace(req.CategoryID),
		Username:   username,
	}
	return in, in.Validate()
}

// when combines the optional date and time of a purchase. A missing date
// leaves the zero time so the service stamps it; a missing time means
// midnight.
func (req purchaseRequest) when() (time.Time, error) {
	if strings.TrimSpace(req.Date) == "" {
		if strings.TrimSpace(req.Time) != "" {
			return time.Time{}, badRequest("time given without date")
		}
		return time.Time{}, nil
	}
	clock := strings.TrimSpace(req.Time)
	if clock == "" {
		clock = "00:00:00"
	}
	at, err := time.ParseInLocation(core.DateLayout+" "+core.TimeLayout, strings.TrimSpace(req.Date)+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, badRequest("invalid date/time %q %q", req.Date, req.Time)
	}
	return at, nil
}

func (req wishListRequest) toWishList() (core.WishList, []core.Item, error) {
	list := core.WishList{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := list.Validate(); err != nil {
		return core.WishList{}, nil, err
	}
	items := make([]core.Item, 0, len(req.Items))
	for i, ir := range req.Items {
		it, err := ir.toItem()
		if err != nil {
			return core.WishList{}, nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, it)
	}
	return list, items, nil
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
