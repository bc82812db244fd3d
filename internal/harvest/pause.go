// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"time"
)

// minKeyedPause is the shortest wait between terms when an API key is set.
const minKeyedPause = time.Second

// EffectivePause returns the wait between terms. With an API key the
// pause drops to a third of pause in whole seconds, and never below one
// second.
func EffectivePause(pause time.Duration, apiKey string) time.Duration {
	if apiKey == "" {
		return pause
	}
	reduced := time.Duration(int64(pause/time.Second)/3) * time.Second
	if reduced < minKeyedPause {
		return minKeyedPause
	}
	return reduced
}

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// ContextSleep waits for d, returning ctx.Err() if ctx ends first.
func ContextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
