// Package goroutine provides utilities for safely launching goroutines with panic recovery.
package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/orris-inc/paypoint/internal/shared/logger"
)

// SafeGo launches fn in a goroutine; a panic is logged with its stack instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}

// SafeGoWithTimeout is SafeGo with a detached context bounded by timeout.
// The request context is not reused because the request finishes first.
func SafeGoWithTimeout(log logger.Interface, name string, timeout time.Duration, fn func(ctx context.Context)) {
	SafeGo(log, name, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	})
}
