package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/client/client"
	"github.com/dmitrijs2005/sundaram/internal/client/config"
	"github.com/dmitrijs2005/sundaram/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sundaram/internal/client/services"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	api         client.Client
	db          *sql.DB
	reader      *bufio.Reader
	out         io.Writer

	mu   sync.RWMutex
	Mode Mode
}

func newClient(c *config.Config) (client.Client, error) {
	if c.Transport == config.TransportGRPC {
		return client.NewGRPCClient(c.GRPCAddr)
	}
	return client.NewHTTPClient(c.HTTPAddr, c.RequestTimeout), nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := newClient(c)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:      c,
		authService: services.NewAuthService(apiClient, metadata.NewSQLiteRepository(db)),
		api:         apiClient,
		db:          db,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Mode
}

func (a *App) isLoggedIn() bool {
	return a.authService.CurrentLogin() != ""
}

// Run restores the saved session, starts the connectivity watcher and blocks
// in the REPL.
func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.authService.Close(ctx)
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
