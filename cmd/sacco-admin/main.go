// sacco-admin is a full-screen terminal client for the sacco backend:
// member advances, group performance forms, advance credits,
// notifications, and history, driven entirely by the remote REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bidii/sacco-admin/internal/api"
	"github.com/bidii/sacco-admin/internal/app"
	"github.com/bidii/sacco-admin/internal/bus"
	"github.com/bidii/sacco-admin/internal/model"
	"github.com/bidii/sacco-admin/internal/session"
	"github.com/bidii/sacco-admin/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sess := session.New(session.KeyringStore{})

	client := api.NewClient(
		cfg.Server.BaseURL,
		sess,
		time.Duration(cfg.Server.TimeoutSec)*time.Second,
	)

	// The snapshot cache is optional: a missing or unwritable database
	// only costs the offline restore.
	cache, err := snapshot.Open(model.DefaultSnapshotPath())
	if err == nil {
		defer cache.Close()
		if id, cerr := cache.ClientID(context.Background()); cerr == nil {
			client.SetClientID(id)
		}
	} else {
		cache = nil
	}

	root := app.New(client, bus.New(), sess, cache)

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
