package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if user, ok := a.session.CurrentUserID(context.Background()); ok {
		s = user + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run probes connectivity, reconciles with the cloud when a session exists,
// starts the connectivity watcher, and blocks in the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to PocketLibrary (type 'help' for commands)")

	a.checkConnectivity(ctx)
	a.syncSession(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
