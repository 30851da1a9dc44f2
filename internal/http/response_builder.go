// Package http provides the JSON API of the ledger.
//
// This file implements the builder for JSON responses and the view records
// sent to clients.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"keepmoney/internal/core"
	applog "keepmoney/internal/log"
	"keepmoney/internal/services"
	"keepmoney/internal/storage"
)

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Error sets an {"error": msg} body.
func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	b.body = errorResponse{Error: msg}
	return b
}

// Write sends the response. A 204 or nil body sends no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

var (
	errUnauthorized = errors.New("missing or invalid token")
	errForbidden    = errors.New("token does not grant access to this user")
)

// validationErrors answer 422.
var validationErrors = []error{
	core.ErrInvalidDay,
	core.ErrInvalidMonth,
	core.ErrInvalidAmount,
	core.ErrInvalidQuantity,
	core.ErrEmptyUsername,
	core.ErrEmptyPassword,
	core.ErrEmptyName,
	core.ErrEmptySurname,
	core.ErrInvalidEmail,
	core.ErrEmptyCategory,
	core.ErrInvalidCategoryID,
	core.ErrDescriptionTooLong,
	core.ErrNameTooLong,
	core.ErrInvalidReference,
	services.ErrEmptyWishList,
}

// statusFor maps an error to its HTTP status and error type.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, applog.ErrorTypeValidation
	case errors.Is(err, errUnauthorized), errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, applog.ErrorTypeAuth
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, applog.ErrorTypeAuth
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrUnknownTable):
		return http.StatusNotFound, applog.ErrorTypeNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, applog.ErrorTypeConflict
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity, applog.ErrorTypeValidation
		}
	}
	return http.StatusInternalServerError, applog.ErrorTypeInternal
}

// writeError answers with the status of err. Internal errors are logged and
// their text is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.NewFields().
				WithError(err).
				WithErrorType(kind).
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
				ToSlice()...)
		msg = http.StatusText(status)
	}
	NewJSONResponse().Status(status).Error(msg).Write(w)
}

type moneyView struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func newMoneyView(m core.Money) moneyView {
	return moneyView{Cents: m.Cents, Formatted: m.String()}
}

type userView struct {
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Surname  string    `json:"surname"`
	Email    string    `json:"email,omitempty"`
	Total    moneyView `json:"total"`
}

func newUserView(u core.User) userView {
	return userView{
		Username: u.Username,
		Name:     u.Name,
		Surname:  u.Surname,
		Email:    u.Email,
		Total:    newMoneyView(u.Total),
	}
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userView  `json:"user"`
}

type categoryView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	PicID       int    `json:"pic_id"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type purchaseCreatedResponse struct {
	ItemID     int64 `json:"item_id"`
	PurchaseID int64 `json:"purchase_id"`
}

type incomeView struct {
	ID    int64     `json:"id"`
	Value moneyView `json:"value"`
	Date  string    `json:"date"`
	PicID int       `json:"pic_id"`
}

type itemRowView struct {
	ItemID int64     `json:"item_id"`
	Name   string    `json:"name"`
	Price  moneyView `json:"price"`
	Amount int       `json:"amount"`
	Cost   moneyView `json:"cost"`
	PicID  int       `json:"pic_id"`
}

type wishListView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Confirmed   bool      `json:"confirmed"`
	Total       moneyView `json:"total"`
}

type wishListItemView struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Price      moneyView `json:"price"`
	Amount     int       `json:"amount"`
	Cost       moneyView `json:"cost"`
	Confirmed  bool      `json:"confirmed"`
	CategoryID string    `json:"category_id"`
	PicID      int       `json:"pic_id"`
}

type balanceView struct {
	Username  string    `json:"username"`
	Incomes   moneyView `json:"incomes"`
	Purchases moneyView `json:"purchases"`
	Planned   moneyView `json:"planned"`
	Total     moneyView `json:"total"`
}

func newBalanceView(b core.Balance) balanceView {
	return balanceView{
		Username:  b.Username,
		Incomes:   newMoneyView(b.Incomes),
		Purchases: newMoneyView(b.Purchases),
		Planned:   newMoneyView(b.Planned),
		Total:     newMoneyView(b.Total),
	}
}

func categoryViews(cs []core.Category) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryView{ID: c.ID, Description: c.Description, PicID: c.PicID})
	}
	return out
}

func incomeViews(rows []core.IncomeRow) []incomeView {
	out := make([]incomeView, 0, len(rows))
	for _, r := range rows {
		out = append(out, incomeView{ID: r.ID, Value: newMoneyView(r.Value), Date: r.Date.String(), PicID: r.PicID})
	}
	return out
}

func itemRowViews(rows []core.ItemRow) []itemRowView {
	out := make([]itemRowView, 0, len(rows))
	for _, r := range rows {
		out = append(out, itemRowView{
			ItemID: r.ItemID,
			Name:   r.Name,
			Price:  newMoneyView(r.Price),
			Amount: r.Amount,
			Cost:   newMoneyView(r.Cost()),
			PicID:  r.PicID,
		})
	}
	return out
}

func wishListViews(lists []core.WishListSummary) []wishListView {
	out := make([]wishListView, 0, len(lists))
	for _, l := range lists {
		out = append(out, wishListView{
			ID:          l.ID,
			Name:        l.Name,
			Description: l.Description,
			Confirmed:   l.Confirmed,
			Total:       newMoneyView(l.Total),
		})
	}
	return out
}

func wishListItemViews(items []core.WishListItem) []wishListItemView {
	out := make([]wishListItemView, 0, len(items))
	for _, it := range items {
		out = append(out, wishListItemView{
			ID:         it.ID,
			Name:       it.Name,
			Price:      newMoneyView(it.Price),
			Amount:     it.Amount,
			Cost:       newMoneyView(it.Cost()),
			Confirmed:  it.Confirmed,
			CategoryID: it.CategoryID,
			PicID:      it.PicID,
		})
	}
	return out
}
