package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"posapp/internal/config"
	"posapp/internal/handler"
	"posapp/internal/infra/cache"
	"posapp/internal/infra/db"
	"posapp/internal/infra/memory"
	infraRepo "posapp/internal/infra/repository"
	"posapp/internal/repository"
	"posapp/internal/server"
	"posapp/internal/usecase"
	auth "posapp/internal/usecase/auth_usecase"
	"posapp/pkg/closer"
	"posapp/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// ストアの実装一式
type stores struct {
	txm          repository.TransactionManager
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	users        repository.UserRepository
}

func main() {
	//.envはあれば読む
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Errorf(err, "server stopped with error")
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cl := closer.New(cfg.ShutdownTimeout)

	st, err := openStores(cfg, cl, log)
	if err != nil {
		return err
	}

	//商品キャッシュ（REDIS_ADDRがなければ使わない）
	var productCache usecase.ProductCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 3 * time.Second,
			Timeout:     time.Second,
		})
		if err != nil {
			return err
		}
		cl.Add(func(ctx context.Context) error { return client.Close() })
		productCache = cache.NewProductCache(client, cfg.ProductCacheTTL, log)
		log.Infof("product cache enabled at %s", cfg.RedisAddr)
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	retry := usecase.DefaultRetryPolicy()
	retry.MaxRetries = cfg.FinalizeMaxRetries

	//bcrypt（ユーザー作成：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	engine := usecase.NewStockReconciler(st.txm, idGen, productCache, retry)
	productUC := usecase.NewProductUsecase(st.products, engine, idGen, productCache)
	transactionUC := usecase.NewTransactionUsecase(st.txm, st.transactions, st.products, engine, idGen, productCache, retry, log)
	loginUC := auth.NewLoginUsecase(st.users, verifier, issuer, clock)
	usersUC := auth.NewUserAdminUsecase(st.users, hasher, idGen)

	//初期admin
	if cfg.AdminUsername != "" {
		created, err := usersUC.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Infof("bootstrap admin %q created", cfg.AdminUsername)
		}
	}

	//Handler生成
	e := server.New(log, cfg.RequestTimeout,
		handler.NewAuthHandler(cfg, st.users, loginUC, usersUC),
		handler.NewAdminUserHandler(cfg, st.users, usersUC),
		handler.NewProductHandler(cfg, st.users, productUC),
		handler.NewTransactionHandler(cfg, st.users, transactionUC),
	)
	cl.Add(func(ctx context.Context) error { return server.Shutdown(ctx, e) })

	//Server起動
	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s (storage=%s)", cfg.Addr(), cfg.StorageDriver)
		errCh <- server.Start(e, cfg.Addr())
	}()

	select {
	case <-ctx.Done():
		log.Infof("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Errorf(err, "server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return cl.Close(shutdownCtx)
}

func openStores(cfg config.Config, cl *closer.Closer, log logger.Logger) (stores, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		log.Warnf("using in-memory storage, data is lost on restart")
		mem := memory.NewStore()
		return stores{
			txm:          mem,
			products:     mem.Products(),
			transactions: mem.Transactions(),
			users:        mem.Users(),
		}, nil
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return stores{}, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return stores{}, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return stores{}, err
	}
	cl.Add(func(ctx context.Context) error { return sqlDB.Close() })

	//Repository（GORM実装）生成
	return stores{
		txm:          infraRepo.NewTxManagerGorm(gormDB),
		products:     infraRepo.NewProductGormRepository(gormDB),
		transactions: infraRepo.NewTransactionGormRepository(gormDB),
		users:        infraRepo.NewUserGormRepository(gormDB),
	}, nil
}
