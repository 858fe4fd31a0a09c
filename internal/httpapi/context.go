package httpapi

import (
	"context"
)

// serverBaseCtx is the process-wide parent for handler work. Shutdown cancels
// it so an in-flight comparison or model pull unwinds instead of outliving
// the server. Background until SetBaseContext is called.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context; nil resets to
// Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context that ends when either parent does. Handlers
// pair the request context with serverBaseCtx so a client disconnect and a
// server shutdown both stop the work. The cancel func must be called when the
// handler returns to release the watcher goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
