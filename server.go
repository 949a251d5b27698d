package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/keygen"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
)

// localHostKey loads the ED25519 host key at keyPath, generating it first if
// needed.
func localHostKey(keyPath string, logger *log.Logger) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	_, statErr := os.Stat(keyPath)
	kp, err := keygen.New(keyPath, keygen.WithKeyType(keygen.Ed25519), keygen.WithWrite())
	if err != nil {
		return nil, fmt.Errorf("failed to generate/load host key: %w", err)
	}
	if os.IsNotExist(statErr) {
		logger.Info("generated new SSH host key", "path", keyPath)
	}
	return kp.RawPrivateKey(), nil
}

// secretHostKey reads the host key PEM from a Secret Manager secret version.
func secretHostKey(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("SSH_HOST_KEY_SECRET is not set")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access secret version: %w", err)
	}
	return resp.Payload.Data, nil
}

func newServer(port int, hostKey []byte, manager *GameManager, logger *log.Logger) (*ssh.Server, error) {
	return wish.NewServer(
		wish.WithAddress(fmt.Sprintf(":%d", port)),
		wish.WithHostKeyPEM(hostKey),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(manager, logger)),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
	)
}

// teaHandler queues every new session for matchmaking and drops it from the
// manager once the connection closes.
func teaHandler(manager *GameManager, logger *log.Logger) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		player := &Player{
			ID:         fmt.Sprintf("player_%d", time.Now().UnixNano()),
			Session:    s,
			Name:       s.User(),
			Connected:  true,
			UpdateChan: make(chan GameUpdate, 10),
		}

		m := initialModelWithPlayer(manager, player, bubbletea.MakeRenderer(s))
		manager.AddPlayer(player)

		go func() {
			<-s.Context().Done()
			logger.Debug("session closed", "player", player.Name, "id", player.ID)
			manager.RemovePlayer(player.ID)
		}()

		return m, []tea.ProgramOption{tea.WithAltScreen()}
	}
}
