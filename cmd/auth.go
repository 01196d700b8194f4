package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/fretsheet/internal/server"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/desertthunder/fretsheet/internal/sheets"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the browser authorization flow and saves the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config := r.ensureConfig(cmd)
	addr := cmd.String("addr")
	noBrowser := cmd.Bool("no-browser")

	oauthConfig, err := sheets.LoadOAuthConfig(config.Spreadsheet.CredentialsFile)
	if err != nil {
		return err
	}

	token, err := server.RunFlow(ctx, oauthConfig, server.FlowOptions{
		Addr:   addr,
		Logger: r.logger,
		OnAuthURL: func(url string) {
			r.writePlain("Open this URL to authorize spreadsheet access:\n\n  %s\n\n", url)
			if noBrowser {
				return
			}
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "error", err)
			}
		},
	})
	if err != nil {
		return err
	}

	if err := sheets.SaveToken(config.Spreadsheet.TokenFile, token); err != nil {
		return err
	}

	r.logger.Info("token saved", "path", config.Spreadsheet.TokenFile)
	return r.writePlain("✓ Authorization successful\n")
}

// AuthStatus reports whether a saved token exists and whether it is still valid.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.ensureConfig(cmd)

	token, err := sheets.LoadToken(config.Spreadsheet.TokenFile)
	if err != nil {
		r.writePlain("✗ Not authorized\n")
		return r.writePlain("Run `fretsheet auth login` to connect your sheet\n")
	}

	r.writePlain("✓ Token found at %s\n", config.Spreadsheet.TokenFile)
	if token.Valid() {
		r.writePlain("Status: valid until %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
	} else if token.RefreshToken != "" {
		r.writePlain("Status: expired, will refresh on next use\n")
	} else {
		r.writePlain("Status: expired with no refresh token, run `fretsheet auth login`\n")
	}
	return nil
}

// AuthLogout removes the saved token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	config := r.ensureConfig(cmd)

	if err := os.Remove(config.Spreadsheet.TokenFile); err != nil {
		if os.IsNotExist(err) {
			return r.writePlain("No saved token to remove\n")
		}
		return fmt.Errorf("failed to remove token: %w", err)
	}

	r.logger.Info("token removed", "path", config.Spreadsheet.TokenFile)
	return r.writePlain("✓ Logged out\n")
}
