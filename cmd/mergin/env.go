package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/merginmaps/mergin-go/internal/config"
	"github.com/merginmaps/mergin-go/internal/mergin"
	"github.com/merginmaps/mergin-go/internal/sync"
	"github.com/merginmaps/mergin-go/internal/utils"
)

// appEnv wires the config, the API client and the sync engine together for
// one command invocation.
type appEnv struct {
	cfg         *config.Config
	client      *mergin.Client
	registry    *sync.Registry
	coordinator *sync.Coordinator
}

// loadEnv builds the environment from the persisted config. With probe set
// the server version check runs first, refusing incompatible servers before
// any project call goes out.
func loadEnv(ctx context.Context, probe bool) (*appEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	client := mergin.New(cfg.APIRoot)
	if cfg.HasAuthData() {
		client.SetCredentials(cfg.Username, cfg.Password)
	}
	if cfg.Token != "" {
		client.RestoreSession(cfg.UserID, cfg.Token, cfg.Expire)
	}

	// keep the config in step with the session, including the credential
	// wipe after a rejected login
	client.OnAuthChanged = func(auth mergin.AuthState) {
		cfg.Username = auth.Username
		cfg.Password = auth.Password
		cfg.UserID = auth.UserID
		cfg.Token = auth.Token
		cfg.Expire = auth.Expire
		if err := cfg.Save(); err != nil {
			slog.Warn("config save failed", "path", cfg.Path, "error", err)
		}
	}

	if probe {
		if err := client.CheckVersion(ctx); err != nil {
			return nil, err
		}
	}

	registry, err := sync.OpenRegistry(filepath.Join(cfg.DataDir, ".mergin", "projects.db"))
	if err != nil {
		return nil, err
	}

	env := &appEnv{cfg: cfg, client: client, registry: registry}
	env.coordinator = sync.NewCoordinator(client, registry, cfg.DataDir, consoleEvents())
	return env, nil
}

func (e *appEnv) close() {
	if err := e.registry.Close(); err != nil {
		slog.Warn("registry close failed", "error", err)
	}
}

// consoleEvents renders transfer progress on the terminal and prints each
// successful sync and each storage-limit failure.
func consoleEvents() *sync.Events {
	tty := isatty.IsTerminal(os.Stdout.Fd())

	return &sync.Events{
		OnProgress: func(project sync.ProjectID, transferred, total int64) {
			if !tty || total <= 0 || transferred < 0 {
				return
			}
			fmt.Printf("\r%s  %s / %s", project, humanize.Bytes(uint64(transferred)), humanize.Bytes(uint64(total)))
			if transferred >= total {
				fmt.Println()
			}
		},
		OnFinished: func(result sync.Result) {
			if result.Success() {
				fmt.Printf("%s %s at version v%d\n", green("synced"), result.Project, result.Version)
				return
			}
			if result.ShowAsDialog {
				fmt.Printf("%s: %s\n", red("STORAGE LIMIT"), result.Err)
			}
		},
	}
}

// resolveProjectDir turns a command argument into the absolute project
// directory, defaulting to the working directory.
func resolveProjectDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	return utils.ResolvePath(dir)
}
