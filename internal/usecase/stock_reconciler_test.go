package usecase_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"posapp/internal/domain/model"
	"posapp/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuantity(t *testing.T) {
	f := newFixture(t)
	p := model.Product{ID: "p1", Stock: 5}

	cases := []struct {
		name      string
		requested int64
		want      usecase.QuantityDecision
	}{
		{"within stock", 3, usecase.QuantityDecision{Requested: 3, Applied: 3}},
		{"exactly stock", 5, usecase.QuantityDecision{Requested: 5, Applied: 5}},
		{"above stock is clamped", 9, usecase.QuantityDecision{Requested: 9, Applied: 5, Clamped: true}},
		{"zero removes", 0, usecase.QuantityDecision{Requested: 0, Remove: true}},
		{"negative removes", -2, usecase.QuantityDecision{Requested: -2, Remove: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.engine.ValidateQuantity(p, tc.requested)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateQuantity_OutOfStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ValidateQuantity(model.Product{ID: "p1", Stock: 0}, 1)
	require.ErrorIs(t, err, usecase.ErrInsufficientStock)

	var se *usecase.InsufficientStockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "p1", se.ProductID)
}

func TestAdjustStock_IncreaseAndSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "p1", "1.00", 4)

	p, err := f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionIncrease, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock)

	p, err = f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionSet, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Stock)

	adjs := f.store.Adjustments()
	require.Len(t, adjs, 2)
	assert.Equal(t, int64(4), adjs[0].Before)
	assert.Equal(t, int64(10), adjs[0].After)
	assert.Equal(t, model.StockActionSet, adjs[1].Action)
	assert.Equal(t, int64(0), adjs[1].After)

	assert.Equal(t, []string{"p1", "p1"}, f.cache.Deleted())
}

func TestAdjustStock_RejectsNegativeResults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "p1", "1.00", 4)

	_, err := f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionIncrease, -5)
	assert.ErrorIs(t, err, usecase.ErrInvalidQuantity)

	_, err = f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionIncrease, 0)
	assert.ErrorIs(t, err, usecase.ErrInvalidQuantity)

	_, err = f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionSet, -1)
	assert.ErrorIs(t, err, usecase.ErrInvalidQuantity)

	_, err = f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockAction("remove"), 1)
	assert.ErrorIs(t, err, usecase.ErrValidation)

	assert.Equal(t, int64(4), f.stock(t, "p1"))
	assert.Empty(t, f.store.Adjustments())
}

func TestAdjustStock_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.AdjustStock(context.Background(), manager.ID, "nope", model.StockActionSet, 3)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestValidateChange(t *testing.T) {
	f := newFixture(t)
	empty := model.Product{ID: "p1", Stock: 0}

	cases := []struct {
		name    string
		p       model.Product
		current int64
		target  int64
		want    usecase.QuantityDecision
		wantErr error
	}{
		{"decrease ignores stock", empty, 3, 2, usecase.QuantityDecision{Requested: 2, Applied: 2}, nil},
		{"unchanged ignores stock", empty, 3, 3, usecase.QuantityDecision{Requested: 3, Applied: 3}, nil},
		{"to zero removes", empty, 3, 0, usecase.QuantityDecision{Requested: 0, Remove: true}, nil},
		{"increase without stock", empty, 3, 4, usecase.QuantityDecision{}, usecase.ErrInsufficientStock},
		{"increase is clamped", model.Product{ID: "p1", Stock: 5}, 2, 9, usecase.QuantityDecision{Requested: 9, Applied: 5, Clamped: true}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.engine.ValidateChange(tc.p, tc.current, tc.target)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// bigintに届く量は弾く（ストア実装によらず同じ結果）
func TestAdjustStock_Bounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "p1", "1.00", 5)

	_, err := f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionIncrease, math.MaxInt64)
	assert.ErrorIs(t, err, usecase.ErrInvalidQuantity)
	_, err = f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionIncrease, usecase.MaxStock)
	assert.ErrorIs(t, err, usecase.ErrInvalidQuantity)
	_, err = f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionSet, usecase.MaxStock+1)
	assert.ErrorIs(t, err, usecase.ErrInvalidQuantity)
	assert.Equal(t, int64(5), f.stock(t, "p1"))

	p, err := f.engine.AdjustStock(ctx, manager.ID, "p1", model.StockActionIncrease, usecase.MaxStock-5)
	require.NoError(t, err)
	assert.Equal(t, usecase.MaxStock, p.Stock)
}
