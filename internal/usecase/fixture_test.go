package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"posapp/internal/domain/model"
	"posapp/internal/domain/policy"
	"posapp/internal/infra/memory"
	"posapp/internal/usecase"
	"posapp/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) NewID() string { return fmt.Sprintf("id-%d", g.n.Add(1)) }

// 消されたキーを覚えておくキャッシュ
type recordingCache struct {
	mu      sync.Mutex
	items   map[string]model.Product
	deleted []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{items: map[string]model.Product{}}
}

func (c *recordingCache) Get(_ context.Context, id string) (model.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	return p, ok
}

func (c *recordingCache) Set(_ context.Context, p model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = p
}

func (c *recordingCache) Delete(_ context.Context, ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
		c.deleted = append(c.deleted, id)
	}
}

func (c *recordingCache) Deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

type fixture struct {
	store        *memory.Store
	cache        *recordingCache
	engine       *usecase.StockReconciler
	products     *usecase.ProductUsecase
	transactions *usecase.TransactionUsecase
}

var (
	seller  = policy.Caller{ID: "u1", Username: "alice", Role: model.RoleStaff}
	other   = policy.Caller{ID: "u2", Username: "bob", Role: model.RoleStaff}
	manager = policy.Caller{ID: "u3", Username: "carol", Role: model.RoleManager}
	admin   = policy.Caller{ID: "u4", Username: "dave", Role: model.RoleAdmin}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	ids := &seqIDs{}
	c := newRecordingCache()
	retry := usecase.DefaultRetryPolicy()

	engine := usecase.NewStockReconciler(store, ids, c, retry)
	return &fixture{
		store:        store,
		cache:        c,
		engine:       engine,
		products:     usecase.NewProductUsecase(store.Products(), engine, ids, c),
		transactions: usecase.NewTransactionUsecase(store, store.Transactions(), store.Products(), engine, ids, c, retry, logger.Nop()),
	}
}

func (f *fixture) seed(t *testing.T, id string, price string, stock int64) {
	t.Helper()
	_, err := f.store.Products().Create(context.Background(), model.Product{
		ID:    id,
		Name:  "product " + id,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) create(t *testing.T, caller policy.Caller, lines ...usecase.LineInput) usecase.TransactionView {
	t.Helper()
	out, err := f.transactions.Create(context.Background(), caller, lines)
	require.NoError(t, err)
	return out.Transaction
}

func line(productID string, qty int64) usecase.LineInput {
	return usecase.LineInput{ProductID: productID, Quantity: qty}
}

func quantities(v usecase.TransactionView) map[string]int64 {
	out := map[string]int64{}
	for _, li := range v.Items {
		out[li.ProductID] = li.Quantity
	}
	return out
}
