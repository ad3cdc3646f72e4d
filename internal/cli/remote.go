package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"suma/internal/service"
)

// remoteOptions select a running server for console commands
type remoteOptions struct {
	server   string
	username string
	password string
}

func (r *remoteOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.server, "server", "", "Base URL of a running suma server")
	cmd.Flags().StringVar(&r.username, "username", "", "Console username (default ADMIN_USERNAME)")
	cmd.Flags().StringVar(&r.password, "password", "", "Console password (default ADMIN_PASSWORD)")
}

// call signs in and performs one authenticated request, returning the body
func (r *remoteOptions) call(ctx context.Context, a *app, method, path string) ([]byte, error) {
	client, err := service.NewSessionClient(r.server, &http.Client{Timeout: 30 * time.Second}, a.logger)
	if err != nil {
		return nil, err
	}

	username, password := r.username, r.password
	if username == "" {
		username = a.cfg.Auth.Username
	}
	if password == "" {
		password = a.cfg.Auth.Password
	}
	if err := client.Login(ctx, username, password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	resp, err := client.Do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, body)
	}
	return body, nil
}
