package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Closer は登録されたリソースを LIFO で閉じる。
type Closer struct {
	funcs         []Func
	mu            sync.Mutex
	once          sync.Once
	forcedTimeout time.Duration
}

// Func はリソースを閉じる関数
type Func func(ctx context.Context) error

// New は Closer を作る。forcedTimeout はctx切れ後に残りを強制終了する時間。
func New(forcedTimeout time.Duration) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = 2 * time.Second
	}
	return &Closer{forcedTimeout: forcedTimeout}
}

// Add は閉じる関数を登録する
func (c *Closer) Add(f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = append(c.funcs, f)
}

// Close は登録の逆順で閉じる。2回目以降は何もしない。
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.mu.Unlock()

		stopIdx, errs := c.gracefulClose(ctx, funcs)
		if stopIdx < 0 {
			if len(errs) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(errs, "\n"))
			}
			return
		}

		// ctxが切れたので残りは並列で強制的に閉じる
		errs = append(errs, c.forcedClose(funcs[:stopIdx+1])...)
		err = fmt.Errorf("shutdown interrupted after %d/%d funcs:\n%s",
			len(funcs)-1-stopIdx, len(funcs), strings.Join(errs, "\n"))
	})
	return err
}

func (c *Closer) gracefulClose(ctx context.Context, funcs []Func) (int, []string) {
	var errs []string
	for i := len(funcs) - 1; i >= 0; i-- {
		f := funcs[i]
		done := make(chan error, 1)
		go func() { done <- f(ctx) }()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Sprintf("[!] %v", err))
			}
		case <-ctx.Done():
			return i, errs
		}
	}
	return -1, errs
}

func (c *Closer) forcedClose(funcs []Func) []string {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []string
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, f := range funcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("[FORCED] %v", err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs
}
