package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"posapp/internal/config"
	"posapp/internal/domain/model"
	"posapp/internal/handler"
	"posapp/internal/infra/cache"
	"posapp/internal/infra/memory"
	"posapp/internal/server"
	"posapp/internal/usecase"
	auth "posapp/internal/usecase/auth_usecase"
	"posapp/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type uuidIDs struct{}

func (uuidIDs) NewID() string { return uuid.NewString() }

type app struct {
	e      *echo.Echo
	store  *memory.Store
	issuer *auth.JWTIssuer
	tokens map[string]string
}

// memoryストアで全ルートを組み立てる
func newApp(t *testing.T) *app {
	t.Helper()

	cfg := config.Config{JWTSecret: "handler-test-secret", AccessTokenTTL: time.Hour}
	store := memory.NewStore()
	ids := uuidIDs{}
	productCache := cache.Nop{}
	retry := usecase.DefaultRetryPolicy()

	engine := usecase.NewStockReconciler(store, ids, productCache, retry)
	productUC := usecase.NewProductUsecase(store.Products(), engine, ids, productCache)
	transactionUC := usecase.NewTransactionUsecase(store, store.Transactions(), store.Products(), engine, ids, productCache, retry, logger.Nop())

	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	loginUC := auth.NewLoginUsecase(store.Users(), auth.NewBcryptPasswordVerifier(), issuer, realClock{})
	usersUC := auth.NewUserAdminUsecase(store.Users(), auth.NewBcryptPasswordHasher(4), ids)

	e := server.New(logger.Nop(), 5*time.Second,
		handler.NewAuthHandler(cfg, store.Users(), loginUC, usersUC),
		handler.NewAdminUserHandler(cfg, store.Users(), usersUC),
		handler.NewProductHandler(cfg, store.Users(), productUC),
		handler.NewTransactionHandler(cfg, store.Users(), transactionUC),
	)

	a := &app{e: e, store: store, issuer: issuer, tokens: map[string]string{}}
	a.addUser(t, "u-staff", "alice", model.RoleStaff)
	a.addUser(t, "u-staff2", "bob", model.RoleStaff)
	a.addUser(t, "u-manager", "carol", model.RoleManager)
	a.addUser(t, "u-admin", "dave", model.RoleAdmin)
	return a
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (a *app) addUser(t *testing.T, id, username string, role model.Role) {
	t.Helper()
	hasher := auth.NewBcryptPasswordHasher(4)
	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)

	u := &model.User{ID: id, Username: username, PasswordHash: hash, Role: role}
	require.NoError(t, a.store.Users().Create(context.Background(), u))

	tok, _, err := a.issuer.Issue(*u, time.Now())
	require.NoError(t, err)
	a.tokens[username] = tok
}

func (a *app) seed(t *testing.T, id, price string, stock int64) {
	t.Helper()
	_, err := a.store.Products().Create(context.Background(), model.Product{
		ID:    id,
		Name:  "product " + id,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
}

func (a *app) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := a.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

// as が空なら Authorization なし
func (a *app) do(t *testing.T, as, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if as != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.tokens[as])
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type lines = map[string][]map[string]any

func item(productID string, qty int64) map[string]any {
	return map[string]any{"product_id": productID, "quantity": qty}
}
