// Package jitter はリトライ間隔にゆらぎを加える。
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter は標準のゆらぎ係数（50%）
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration は [d, d*(1+jitterFactor)] の範囲の待ち時間を返す
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	j := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(j)
}

// ExponentialBackoff は attempt（0始まり）回目の待ち時間を返す。
// base から倍々に伸ばし max で頭打ちにする。
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}
