package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/gorilla/websocket"
	sshproxy "github.com/imjasonh/ssh-proxy"

	"github.com/imjasonh/chesslaw/internal/chess"
	"github.com/imjasonh/chesslaw/internal/storage"
)

func main() {
	var (
		sshPort   = flag.Int("port", getenvInt("CHESSH_PORT", 2222), "SSH server port")
		local     = flag.Bool("local", false, "run in local mode (generates/uses local host key instead of Secret Manager)")
		dbDir     = flag.String("db", getenv("CHESSH_DB", ""), "game database directory (default: platform data dir)")
		ephemeral = flag.Bool("ephemeral", false, "keep recorded games in memory only")
		rulesName = flag.String("rules", getenv("CHESSH_RULES", chess.RulesStrict.String()), "king safety rules: classic or strict")
		hotseat   = flag.Bool("hotseat", false, "play both colors in this terminal instead of serving SSH")
		list      = flag.Bool("list", false, "print recorded games and exit")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "chessh",
	})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	rules, err := chess.ParseRules(*rulesName)
	if err != nil {
		logger.Fatal("bad -rules", "err", err)
	}

	if *hotseat {
		if _, err := tea.NewProgram(initialModel(rules, lipgloss.DefaultRenderer()), tea.WithAltScreen()).Run(); err != nil {
			logger.Fatal("hotseat game failed", "err", err)
		}
		return
	}

	store, err := openStore(*dbDir, *ephemeral, logger)
	if err != nil {
		logger.Fatal("failed to open game database", "err", err)
	}
	defer store.Close()

	if *list {
		if err := listGames(store); err != nil {
			logger.Fatal("failed to list games", "err", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var hostKey []byte
	if *local {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Fatal("failed to get user home directory", "err", err)
		}
		hostKey, err = localHostKey(filepath.Join(homeDir, ".chessh", "host_key"), logger)
		if err != nil {
			logger.Fatal("host key", "err", err)
		}
		logger.Info("running in local mode")
	} else {
		hostKey, err = secretHostKey(ctx, os.Getenv("SSH_HOST_KEY_SECRET"))
		if err != nil {
			logger.Fatal("host key", "err", err)
		}
		logger.Info("running in cloud mode with Secret Manager")
	}

	manager := NewGameManager(rules, store, logger)
	s, err := newServer(*sshPort, hostKey, manager, logger)
	if err != nil {
		logger.Fatal("failed to create SSH server", "err", err)
	}
	go func() {
		logger.Info("starting SSH chess server", "port", *sshPort, "rules", rules)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("SSH server error", "err", err)
		}
	}()

	if httpPort := os.Getenv("PORT"); httpPort != "" {
		go func() {
			logger.Info("starting WebSocket to SSH proxy", "port", httpPort)
			http.HandleFunc("/ssh", sshproxy.ProxyWebSocketToSSH(fmt.Sprintf(":%d", *sshPort), websocket.Upgrader{
				CheckOrigin: func(r *http.Request) bool {
					return true // Allow connections from any origin for now
				},
			}))
			if err := http.ListenAndServe(fmt.Sprintf(":%s", httpPort), nil); err != nil {
				logger.Fatal("HTTP server error", "err", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("stopping SSH server")

	tctx, tcancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer tcancel()
	if err := s.Shutdown(tctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		logger.Error("shutdown", "err", err)
	}
}

func openStore(dir string, ephemeral bool, logger *log.Logger) (*storage.Store, error) {
	if ephemeral {
		return storage.Open("", logger)
	}
	if dir == "" {
		var err error
		if dir, err = storage.DefaultDir(); err != nil {
			return nil, err
		}
	}
	logger.Info("recording games", "dir", dir)
	return storage.Open(dir, logger)
}

func listGames(store *storage.Store) error {
	recs, err := store.ListGames()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		result := string(rec.Result)
		if rec.Result == storage.ResultOngoing {
			result = "ongoing"
		}
		status := "ok"
		if _, err := rec.Replay(); err != nil {
			status = err.Error()
		}
		fmt.Printf("%s\t%s vs %s\t%s\t%d moves\t%s\t%s\n",
			rec.ID, rec.White, rec.Black, rec.Rules, len(rec.Moves), result, status)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
