package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/pkg/client"
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("39"))

var errNotLoggedIn = errors.New("Not logged in. Run 'merovian auth login' first.")

// app is the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	format  string

	in           *bufio.Reader
	readPassword func() (string, error)
}

func newApp() *app {
	return &app{
		v:  viper.New(),
		in: bufio.NewReader(os.Stdin),
		readPassword: func() (string, error) {
			fd := int(syscall.Stdin)
			if !term.IsTerminal(fd) {
				return "", errors.New("password prompt needs a terminal, pass --password-stdin")
			}
			b, err := term.ReadPassword(fd)
			return string(b), err
		},
	}
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "merovian",
		Short: "Merovian - crypto brokerage from your terminal",
		Long: titleStyle.Render("Merovian CLI") + `

Manage your brokerage account: balance, deposits, withdrawals,
identity verification and support tickets.

Get started:
  merovian auth signup      Create an account
  merovian auth login       Sign in
  merovian profile          Show balance and performance
  merovian --help           Show all commands`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.merovian/config.yaml)")
	root.PersistentFlags().StringVarP(&a.format, "format", "f", "", "output format: table, json")

	root.AddCommand(
		newAuthCmd(a),
		newProfileCmd(a),
		newDepositCmd(a),
		newWithdrawCmd(a),
		newTransactionsCmd(a),
		newKYCCmd(a),
		newTicketsCmd(a),
		newMarketCmd(a),
		newAdminCmd(a),
		newConfigCmd(a),
	)
	return root
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		output.Error(err.Error())
	}
	return err
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".merovian", "config.yaml"), nil
}

func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	return defaultConfigPath()
}

func (a *app) initConfig() error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	a.v.SetConfigFile(path)
	a.v.SetConfigType("yaml")

	a.v.SetDefault("api_url", "http://localhost:8080")
	a.v.SetDefault("format", "table")

	a.v.SetEnvPrefix("MEROVIAN")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

func (a *app) saveConfig() error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := a.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return os.Chmod(path, 0600)
}

func (a *app) jsonOutput() bool {
	if a.format != "" {
		return a.format == "json"
	}
	return a.v.GetString("format") == "json"
}

func (a *app) credentials() client.Credentials {
	var creds client.Credentials
	_ = a.v.UnmarshalKey("auth", &creds)
	return creds
}

func (a *app) storeCredentials(creds client.Credentials) error {
	a.v.Set("auth", map[string]string{
		"access_token":  creds.AccessToken,
		"refresh_token": creds.RefreshToken,
		"session_id":    creds.SessionID,
	})
	return a.saveConfig()
}

func (a *app) client() (*client.Client, error) {
	c, err := client.New(a.v.GetString("api_url"))
	if err != nil {
		return nil, err
	}
	c.SetCredentials(a.credentials())
	return c, nil
}

// authedClient refuses to run without stored credentials.
func (a *app) authedClient() (*client.Client, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	if c.Credentials().Empty() {
		return nil, errNotLoggedIn
	}
	return c, nil
}

// session loads identity and profile for commands that need the cached
// balance. An expired token is renewed first.
func (a *app) session(ctx context.Context, c *client.Client) (*client.Session, error) {
	if err := a.withRefresh(ctx, c, func() error { _, err := c.User(ctx); return err }); err != nil {
		return nil, err
	}
	s := client.NewSession(c)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	if s.Identity() == nil {
		return nil, errNotLoggedIn
	}
	return s, nil
}

func (a *app) prompt(label string) string {
	fmt.Fprintf(output.Stdout, "%s: ", label)
	text, _ := a.in.ReadString('\n')
	return strings.TrimSpace(text)
}

func (a *app) promptSecret(label string, fromStdin bool) (string, error) {
	if fromStdin {
		text, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(text, "\r\n"), nil
	}
	fmt.Fprintf(output.Stdout, "%s: ", label)
	secret, err := a.readPassword()
	output.Blank()
	return secret, err
}

// withRefresh runs fn and, when a token login was rejected as expired,
// trades the refresh token once and retries.
func (a *app) withRefresh(ctx context.Context, c *client.Client, fn func() error) error {
	err := fn()
	if !client.IsStatus(err, 401) || c.Credentials().RefreshToken == "" {
		return err
	}
	if rerr := c.Refresh(ctx); rerr != nil {
		return err
	}
	if serr := a.storeCredentials(c.Credentials()); serr != nil {
		output.Warning("Could not save refreshed credentials: " + serr.Error())
	}
	return fn()
}
