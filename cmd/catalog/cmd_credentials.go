package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bazarromero/catalog/pkg/auth"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var defaultProductionOrigins = []string{
	"http://localhost:3000",
	"https://localhost:3000",
	"https://bazarromero.com",
	"https://www.bazarromero.com",
}

type credentials struct {
	JWTSecret      string
	Username       string
	Password       string
	AllowedOrigins string
}

func generateCredentials(origins []string) (credentials, error) {
	secret, err := auth.RandomHex(64)
	if err != nil {
		return credentials{}, err
	}
	user, err := randomBase36(6)
	if err != nil {
		return credentials{}, err
	}
	pass, err := randomBase36(4)
	if err != nil {
		return credentials{}, err
	}
	return credentials{
		JWTSecret:      secret,
		Username:       "bazar_" + user,
		Password:       "MiTienda" + pass + "2025!",
		AllowedOrigins: strings.Join(origins, ","),
	}, nil
}

func randomBase36(n int) (string, error) {
	max := big.NewInt(int64(len(base36)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random: %w", err)
		}
		b[i] = base36[idx.Int64()]
	}
	return string(b), nil
}

// envFile renders c as a .env document.
func (c credentials) envFile() string {
	var b strings.Builder
	b.WriteString("# Catalog production settings\n\n")
	b.WriteString("PORT=3000\n")
	b.WriteString("APP_ENV=production\n\n")
	fmt.Fprintf(&b, "JWT_SECRET=%s\n\n", c.JWTSecret)
	fmt.Fprintf(&b, "ALLOWED_ORIGINS=%s\n\n", c.AllowedOrigins)
	fmt.Fprintf(&b, "ADMIN_USERNAME=%s\n", c.Username)
	fmt.Fprintf(&b, "ADMIN_PASSWORD=%s\n", c.Password)
	return b.String()
}

var (
	credentialsOut     string
	credentialsOrigins []string
)

// catalog credentials
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Generate a JWT secret and admin credentials for production",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := generateCredentials(credentialsOrigins)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, creds.envFile())

		if credentialsOut == "" {
			return nil
		}
		if err := os.WriteFile(credentialsOut, []byte(creds.envFile()), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", credentialsOut, err)
		}
		fmt.Fprintf(out, "Saved to %s. Keep it out of version control.\n", credentialsOut)
		return nil
	},
}

func init() {
	credentialsCmd.Flags().StringVarP(&credentialsOut, "out", "o", "", "also write the settings to this .env file")
	credentialsCmd.Flags().StringSliceVar(&credentialsOrigins, "origins", defaultProductionOrigins, "allowed CORS origins")
}
