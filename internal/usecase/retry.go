package usecase

import (
	"context"
	"errors"
	"time"

	repo "posapp/internal/repository"
	"posapp/pkg/jitter"
)

// RetryPolicy はDBの直列化失敗・デッドロックをやり直す回数と間隔
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 10 * time.Millisecond, MaxDelay: 200 * time.Millisecond}
}

// fn が repo.ErrConflict を返す間だけやり直す。
// 回数を使い切ったら ErrConcurrentUpdate。
func (p RetryPolicy) do(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if !errors.Is(err, repo.ErrConflict) {
			return err
		}
		if attempt >= p.MaxRetries {
			return errors.Join(ErrConcurrentUpdate, err)
		}

		wait := jitter.ExponentialBackoff(p.BaseDelay, p.MaxDelay, attempt, jitter.DefaultJitter)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// repositoryのエラーをusecaseのエラーに寄せる
func fromRepo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return ErrConflict
	}
	return err
}
