package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/lng-shipment-tracker/internal/cli"
	"github.com/Veraticus/lng-shipment-tracker/internal/config"
	"github.com/Veraticus/lng-shipment-tracker/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Sheets using OAuth2",
		Long: `Run the interactive OAuth2 flow for the Google Sheets ledger.

The refresh token is saved to the token file (default:
$HOME/.config/lngtrack/token.json) and picked up by later runs. Deployments
using a service account do not need this.`,
		RunE: runAuth,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("callback-addr", sheets.DefaultCallbackAddr, "address of the local OAuth callback server")

	return cmd
}

func runAuth(cmd *cobra.Command, _ []string) error {
	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found: set sheets.client_id and sheets.client_secret or use --client-id and --client-secret")
	}

	callbackAddr, _ := cmd.Flags().GetString("callback-addr")
	tokenFile := config.TokenFile()
	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackAddr: callbackAddr,
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("authentication returned no refresh token; revoke the app's access and try again")
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Authentication successful; token saved to "+tokenFile))
	return nil
}
