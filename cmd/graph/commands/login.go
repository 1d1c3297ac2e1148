package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/noverloop/koala/internal/constants"
	"github.com/noverloop/koala/pkg/graph"
	"github.com/noverloop/koala/pkg/graphclient"
)

// cliConfig is the persisted shape of ~/.graph/config.yml.
type cliConfig struct {
	API        string `yaml:"api,omitempty"`
	Token      string `yaml:"token,omitempty"`
	AppSecret  string `yaml:"app_secret,omitempty"`
	APIVersion string `yaml:"api_version,omitempty"`
}

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		token     string
		appSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Long: `Validate an access token against the configured endpoint and store it in
the CLI config file. The token is prompted without echo when not given as a
flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = viper.GetString("token")
			}

			if token == "" {
				fmt.Fprint(os.Stderr, "Access token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				fmt.Fprintln(os.Stderr)

				token = strings.TrimSpace(string(byteToken))
			}

			if token == "" {
				return ErrAccessTokenRequired
			}

			if appSecret == "" {
				appSecret = viper.GetString("app_secret")
			}

			client, err := graphclient.New(&graph.Config{
				APIEndpoint: viper.GetString("api"),
				AccessToken: token,
				AppSecret:   appSecret,
				APIVersion:  viper.GetString("api_version"),
			})
			if err != nil {
				return fmt.Errorf("creating client: %w", err)
			}

			// Validate the token before persisting it.
			object, err := client.GetObject(cmd.Context(), "me", nil)
			if err != nil {
				return fmt.Errorf("token validation failed: %w", err)
			}

			path, err := saveCLIConfig(cliConfig{
				API:        viper.GetString("api"),
				Token:      token,
				AppSecret:  appSecret,
				APIVersion: viper.GetString("api_version"),
			})
			if err != nil {
				return err
			}

			name, _ := object["name"].(string)
			if name == "" {
				name, _ = object["id"].(string)
			}

			fmt.Fprintf(os.Stdout, "Logged in as %s; token saved to %s\n", name, path)

			return nil
		},
	}

	cmd.Flags().StringVar(&token, "with-token", "", "access token (prompted when omitted)")
	cmd.Flags().StringVar(&appSecret, "with-app-secret", "", "app secret to store alongside the token")

	return cmd
}

// saveCLIConfig writes the config file with owner-only permissions and
// returns its path.
func saveCLIConfig(config cliConfig) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	configDir := filepath.Join(home, ".graph")
	if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	payload, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}

	path := filepath.Join(configDir, "config.yml")
	if err := os.WriteFile(path, payload, constants.ConfigFilePerm); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return path, nil
}
