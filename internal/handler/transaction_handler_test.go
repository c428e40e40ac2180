package handler_test

import (
	"net/http"
	"testing"

	"posapp/internal/domain/model"
	"posapp/internal/handler"
	"posapp/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSales_CreateFinalize(t *testing.T) {
	a := newApp(t)
	a.seed(t, "p1", "2.50", 10)

	rec := a.do(t, "alice", http.MethodPost, "/sales/transaction", lines{"products": {item("p1", 3)}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[usecase.TransactionEditOutput](t, rec)
	assert.Equal(t, model.TransactionStatusPending, created.Transaction.Status)
	assert.Equal(t, "u-staff", created.Transaction.SellerID)
	assert.True(t, decimal.RequireFromString("7.50").Equal(created.Transaction.Total))
	assert.Empty(t, created.Adjustments)

	id := created.Transaction.ID
	rec = a.do(t, "alice", http.MethodPost, "/sales/transaction/"+id+"/finalize", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[usecase.TransactionView](t, rec)
	assert.Equal(t, model.TransactionStatusCompleted, done.Status)
	assert.Equal(t, int64(7), a.stock(t, "p1"))

	rec = a.do(t, "alice", http.MethodGet, "/sales/transaction/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TransactionStatusCompleted, decode[usecase.TransactionView](t, rec).Status)

	// 確定済みのキャンセルは409
	rec = a.do(t, "dave", http.MethodPost, "/sales/transaction/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int64(7), a.stock(t, "p1"))
}

func TestSales_InsufficientStockResponse(t *testing.T) {
	a := newApp(t)
	a.seed(t, "p1", "1.00", 2)

	rec := a.do(t, "alice", http.MethodPost, "/sales/transaction", lines{"products": {item("p1", 5)}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[usecase.TransactionEditOutput](t, rec)
	require.Len(t, first.Adjustments, 1)
	assert.True(t, first.Adjustments[0].Clamped)
	assert.Equal(t, int64(2), first.Adjustments[0].Applied)

	rec = a.do(t, "bob", http.MethodPost, "/sales/transaction", lines{"products": {item("p1", 1)}})
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[usecase.TransactionEditOutput](t, rec)
	rec = a.do(t, "bob", http.MethodPost, "/sales/transaction/"+second.Transaction.ID+"/finalize", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, "alice", http.MethodPost, "/sales/transaction/"+first.Transaction.ID+"/finalize", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "p1", body.ProductID)
	assert.Equal(t, int64(2), body.Requested)
	require.NotNil(t, body.Available)
	assert.Equal(t, int64(1), *body.Available)
	assert.True(t, body.Retryable)
}

func TestSales_LineEditing(t *testing.T) {
	a := newApp(t)
	a.seed(t, "p1", "1.00", 10)
	a.seed(t, "p2", "2.00", 10)

	rec := a.do(t, "alice", http.MethodPost, "/sales/transaction", lines{"products": {item("p1", 1)}})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[usecase.TransactionEditOutput](t, rec).Transaction.ID

	rec = a.do(t, "alice", http.MethodPost, "/sales/transaction/"+id+"/items", item("p2", 2))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edit := decode[usecase.LineEditOutput](t, rec)
	require.Len(t, edit.Transaction.Items, 2)
	assert.True(t, decimal.RequireFromString("5.00").Equal(edit.Transaction.Total))

	rec = a.do(t, "alice", http.MethodDelete, "/sales/transaction/"+id+"/items/p2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[usecase.TransactionView](t, rec).Items, 1)

	rec = a.do(t, "alice", http.MethodDelete, "/sales/transaction/"+id+"/items/p2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, "alice", http.MethodPut, "/sales/transaction/"+id+"/items", lines{"products": {item("p2", 4)}})
	require.Equal(t, http.StatusOK, rec.Code)
	replaced := decode[usecase.TransactionEditOutput](t, rec)
	require.Len(t, replaced.Transaction.Items, 1)
	assert.Equal(t, "p2", replaced.Transaction.Items[0].ProductID)

	rec = a.do(t, "alice", http.MethodPut, "/sales/transaction/"+id+"/items", lines{"products": {item("p2", 0)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 他のstaffは403
	rec = a.do(t, "bob", http.MethodPost, "/sales/transaction/"+id+"/items", item("p1", 1))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, "bob", http.MethodPost, "/sales/transaction/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// managerは他人の取引も操作できる
	rec = a.do(t, "carol", http.MethodPost, "/sales/transaction/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TransactionStatusCancelled, decode[usecase.TransactionView](t, rec).Status)
}

func TestSales_BadRequests(t *testing.T) {
	a := newApp(t)
	a.seed(t, "p1", "1.00", 10)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"empty", lines{"products": {}}, http.StatusBadRequest},
		{"zeroQuantity", lines{"products": {item("p1", 0)}}, http.StatusBadRequest},
		{"missingProductID", lines{"products": {item("", 1)}}, http.StatusBadRequest},
		{"unknownProduct", lines{"products": {item("nope", 1)}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, "alice", http.MethodPost, "/sales/transaction", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := a.do(t, "alice", http.MethodGet, "/sales/transaction/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, "alice", http.MethodGet, "/sales/transactions?status=paid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(t, "alice", http.MethodGet, "/sales/transactions?page=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSales_ListAndAuth(t *testing.T) {
	a := newApp(t)
	a.seed(t, "p1", "1.00", 10)

	for _, who := range []string{"alice", "bob"} {
		rec := a.do(t, who, http.MethodPost, "/sales/transaction", lines{"products": {item("p1", 1)}})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := a.do(t, "carol", http.MethodGet, "/sales/transactions?seller_id=u-staff&status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[usecase.TransactionListOutput](t, rec)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 20, out.Limit)

	rec = a.do(t, "", http.MethodGet, "/sales/transactions", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
