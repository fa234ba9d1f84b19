package wizard

import "context"

// SessionProvider reports when the caller's session is usable. The wizard
// waits for it before its first load instead of reaching for ambient state.
type SessionProvider interface {
	AwaitReady(ctx context.Context) error
}

// ReadySession is a SessionProvider that is always ready, for callers that
// resolve authentication before constructing the wizard.
type ReadySession struct{}

func (ReadySession) AwaitReady(context.Context) error { return nil }
