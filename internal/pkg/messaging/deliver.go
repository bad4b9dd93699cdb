package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/gofactor/internal/pkg/stacktrace"
)

// responder makes Ack and Nack idempotent for every driver.
type responder struct {
	done *atomic.Bool
}

func newResponder() responder {
	return responder{done: atomic.NewBool(false)}
}

// claim reports whether the caller is the first to respond.
func (r responder) claim() bool {
	return !r.done.Swap(true)
}

func (r responder) responded() bool {
	return r.done.Load()
}

type deliverable interface {
	Message
	responded() bool
}

// deliver runs handler on msg, turning panics into errors and applying auto ack.
func deliver(ctx context.Context, driver string, msg deliverable, handler Handler, autoAck bool) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "topic", msg.Topic(), "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "topic", msg.Topic(), "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
		if !autoAck || msg.responded() {
			return
		}
		if err == nil {
			err = msg.Ack(ctx)
			return
		}
		if nerr := msg.Nack(ctx); nerr != nil {
			slog.WarnContext(ctx, "failed to nack message", "driver", driver, "topic", msg.Topic(), "error", nerr)
		}
	}()

	return handler(ctx, msg)
}
