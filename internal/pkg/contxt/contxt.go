package contxt

import (
	"context"
	"os"
	"time"
)

// NewContext returns a context bounded by timeout for callers that cannot hold
// on to a cancel func, such as reader notification callbacks.
func NewContext(timeout time.Duration) context.Context {
	if os.Getenv("LINKY_CONTEXT_NO_TIMEOUT") != "" {
		return context.Background()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	context.AfterFunc(ctx, cancel)
	return ctx
}
