package usecase

import (
	"context"
	"strings"

	"posapp/internal/domain/model"
	"posapp/internal/domain/policy"
	repo "posapp/internal/repository"
	"posapp/pkg/e"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	engine      *StockReconciler
	idGen       IDGenerator
	cache       ProductCache
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	engine *StockReconciler,
	idGen IDGenerator,
	cache ProductCache,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		engine:      engine,
		idGen:       idGen,
		cache:       cache,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page  int
	Limit int
	Name  string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	const op = "ProductUsecase.ListProducts"

	if in.Page < 1 {
		return ProductListOutput{}, e.Wrap(op, invalid("invalid page"))
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, e.Wrap(op, invalid("invalid limit"))
	}
	if len(in.Name) > 100 {
		return ProductListOutput{}, e.Wrap(op, invalid("name too long"))
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Name:  strings.TrimSpace(in.Name),
	})
	if err != nil {
		return ProductListOutput{}, e.Wrap(op, fromRepo(err))
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 詳細はキャッシュ優先。
// 在庫変更のDeleteより後にここのSetが走ると古い値が残るが、表示専用なのでTTL(PRODUCT_CACHE_TTL)で消えるのを待つ。
// 在庫の判定は常にストアを見る。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	const op = "ProductUsecase.GetProductDetail"

	if strings.TrimSpace(productID) == "" {
		return model.Product{}, e.Wrap(op, invalid("invalid product id"))
	}
	if p, ok := u.cache.Get(ctx, productID); ok {
		return p, nil
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, e.Wrap(op, fromRepo(err))
	}
	u.cache.Set(ctx, p)
	return p, nil
}

type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int64
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, caller policy.Caller, in CreateProductInput) (model.Product, error) {
	const op = "ProductUsecase.CreateProduct"

	if !policy.CanManageCatalog(caller) {
		return model.Product{}, e.Wrap(op, ErrUnauthorized)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, e.Wrap(op, invalid("name required"))
	}
	if len(name) > 255 {
		return model.Product{}, e.Wrap(op, invalid("name too long"))
	}
	if in.Price.IsNegative() {
		return model.Product{}, e.Wrap(op, invalid("price must be >= 0"))
	}
	if in.Stock < 0 || in.Stock > MaxStock {
		return model.Product{}, e.Wrap(op, invalid("stock out of range"))
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		ID:    u.idGen.NewID(),
		Name:  name,
		Price: in.Price.Round(2),
		Stock: in.Stock,
	})
	if err != nil {
		return model.Product{}, e.Wrap(op, fromRepo(err))
	}
	return p, nil
}

// 在庫の加算（入荷）
func (u *ProductUsecase) IncreaseStock(ctx context.Context, caller policy.Caller, productID string, qty int64) (model.Product, error) {
	return u.adjust(ctx, caller, productID, model.StockActionIncrease, qty)
}

// 在庫の上書き（棚卸し）
func (u *ProductUsecase) SetStock(ctx context.Context, caller policy.Caller, productID string, qty int64) (model.Product, error) {
	return u.adjust(ctx, caller, productID, model.StockActionSet, qty)
}

func (u *ProductUsecase) adjust(ctx context.Context, caller policy.Caller, productID string, action model.StockAction, qty int64) (model.Product, error) {
	const op = "ProductUsecase.adjust"

	if !policy.CanManageCatalog(caller) {
		return model.Product{}, e.Wrap(op, ErrUnauthorized)
	}
	p, err := u.engine.AdjustStock(ctx, caller.ID, productID, action, qty)
	if err != nil {
		return model.Product{}, e.Wrap(op, err)
	}
	return p, nil
}
