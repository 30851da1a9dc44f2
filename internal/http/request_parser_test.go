package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keepmoney/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"username":"mario","password":"x"}`, false},
		{"empty", ``, true},
		{"unknown field", `{"username":"mario","admin":true}`, true},
		{"trailing object", `{"username":"a"}{"username":"b"}`, true},
		{"not json", `username=mario`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var req loginRequest
			err := decodeJSON(httptest.NewRecorder(), r, &req)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "mario", req.Username)
		})
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.SetPathValue("id", "42")
	id, err := pathID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "x1"} {
		r.SetPathValue("id", raw)
		_, err := pathID(r, "id")
		assert.ErrorIs(t, err, errBadRequest, raw)
	}
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=5&confirmed=true&bad=x", nil)

	v, err := queryInt(r, "limit", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = queryInt(r, "list_id", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	_, err = queryInt(r, "bad", 0)
	assert.ErrorIs(t, err, errBadRequest)

	b, err := queryBool(r, "confirmed")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = queryBool(r, "bad")
	assert.ErrorIs(t, err, errBadRequest)
}

func TestItemRequestToItem(t *testing.T) {
	it, err := itemRequest{Name: " milk ", Price: "1,20", CategoryID: "food"}.toItem()
	require.NoError(t, err)
	assert.Equal(t, "milk", it.Name)
	assert.Equal(t, int64(120), it.Price.Cents)
	assert.Equal(t, 1, it.Amount, "missing amount means one")

	_, err = itemRequest{Price: "1", Amount: -1, CategoryID: "food"}.toItem()
	assert.ErrorIs(t, err, core.ErrInvalidQuantity)

	_, err = itemRequest{Price: "-1", CategoryID: "food"}.toItem()
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestIncomeRequestDefaultsToToday(t *testing.T) {
	now := time.Date(2025, 7, 9, 18, 30, 0, 0, time.UTC)
	in, err := incomeRequest{Value: "10", CategoryID: "salary"}.toIncome("mario", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-09", in.Date.String())
	assert.Equal(t, "mario", in.Username)
}

func TestPurchaseRequestWhen(t *testing.T) {
	at, err := purchaseRequest{Date: "2025-01-02", Time: "03:04:05"}.when()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), at)

	at, err = purchaseRequest{Date: "2025-01-02"}.when()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), at)

	at, err = purchaseRequest{}.when()
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	_, err = purchaseRequest{Date: "2025-13-01"}.when()
	assert.True(t, errors.Is(err, errBadRequest))
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "bearer abc")
	tok, ok := bearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(r)
	assert.False(t, ok)
}
