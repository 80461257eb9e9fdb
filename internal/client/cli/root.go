package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) getStatus() string {
	s := ""
	if login := a.authService.CurrentLogin(); login != "" {
		s = login + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores a saved session and runs the REPL on a.reader.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to the Sundaram CLI (type 'help' for commands)")

	s, err := a.authService.Restore(ctx)
	switch {
	case err != nil:
		log.Printf("could not restore session: %v", err)
	case s != nil:
		log.Printf("Restored session of %s", s.Login)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
