package middleware

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Recovery creates a middleware that turns a panicking target into a
// *RecoveryError.
func Recovery(options ...MiddlewareOption) Middleware {
	return RecoveryWithWriter(os.Stderr, options...)
}

// RecoveryWithWriter is Recovery printing stack traces to w.
func RecoveryWithWriter(w io.Writer, options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				recoveryErr := &RecoveryError{
					Panic:   r,
					Command: getCommandName(ctx),
					Stack:   captureStack(config),
				}
				if config.PrintStack && len(recoveryErr.Stack) > 0 {
					fmt.Fprintf(w, "PANIC in command '%s': %v\n", recoveryErr.Command, r)
					fmt.Fprintf(w, "Stack trace:\n%s\n", recoveryErr.Stack)
				}
				err = recoveryErr
			}()

			return next(ctx)
		}
	}
}

// RecoveryWithHandler creates a recovery middleware with a custom panic handler
func RecoveryWithHandler(
	handler func(panicVal any, command string, stack []byte) error,
	options ...MiddlewareOption,
) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = handler(r, getCommandName(ctx), captureStack(config))
				}
			}()

			return next(ctx)
		}
	}
}

// RecoveryToError converts panics to errors without printing stack traces.
func RecoveryToError() Middleware {
	return Recovery(WithStackTrace(false))
}

// NoopRecovery lets panics through, for development.
func NoopRecovery() Middleware {
	return func(next ActionFunc) ActionFunc {
		return next
	}
}

// SafeRecovery captures the stack without printing it and stores panic
// details in the context metadata under "panic_stack" and "panic_value".
func SafeRecovery() Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := captureStack(&MiddlewareConfig{PrintStack: true, StackSize: 4096})
					err = &RecoveryError{
						Panic:   r,
						Command: getCommandName(ctx),
						Stack:   stack,
					}
					ctx.Set("panic_stack", string(stack))
					ctx.Set("panic_value", r)
				}
			}()

			return next(ctx)
		}
	}
}

func captureStack(config *MiddlewareConfig) []byte {
	if !config.PrintStack {
		return nil
	}
	stack := make([]byte, config.StackSize)
	return stack[:runtime.Stack(stack, false)]
}
