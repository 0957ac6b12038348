package cmd

import (
	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/client"
)

func newAuthCmd(a *app) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  "Manage your Merovian account authentication - signup, login, logout.",
	}

	var (
		email         string
		fullName      string
		useSession    bool
		passwordStdin bool
	)

	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.prompt("Email")
			}
			if fullName == "" && !passwordStdin {
				fullName = a.prompt("Full name (optional)")
			}
			password, err := a.promptSecret("Password (min 8 characters)", passwordStdin)
			if err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Signup(cmd.Context(), entities.SignupInput{Email: email, Password: password, FullName: fullName})
			if err != nil {
				return err
			}
			return a.finishLogin(c, resp, "Account created!")
		},
	}
	signupCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	signupCmd.Flags().StringVarP(&fullName, "name", "n", "", "full name")
	signupCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your account",
		Long: `Sign in with email and password.

With --session the server keeps the tokens and the CLI stores only a
session id. Live updates (profile --watch, tickets watch) need a token
login.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.prompt("Email")
			}
			password, err := a.promptSecret("Password", passwordStdin)
			if err != nil {
				return err
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Login(cmd.Context(), entities.LoginInput{Email: email, Password: password, UseSession: useSession})
			if err != nil {
				return err
			}
			return a.finishLogin(c, resp, "Logged in successfully!")
		},
	}
	loginCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	loginCmd.Flags().BoolVar(&useSession, "session", false, "use a server side session instead of tokens")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if !c.Credentials().Empty() {
				if err := c.Logout(cmd.Context()); err != nil {
					output.Warning("Server logout failed: " + err.Error())
				}
			}
			if err := a.storeCredentials(client.Credentials{}); err != nil {
				return err
			}
			output.Success("Logged out successfully")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if c.Credentials().Empty() {
				if a.jsonOutput() {
					return output.JSON(map[string]interface{}{"loggedIn": false})
				}
				output.Info("Not logged in")
				output.Info("Run 'merovian auth login' to login")
				return nil
			}

			var user *entities.Identity
			err = a.withRefresh(cmd.Context(), c, func() (err error) {
				user, err = c.User(cmd.Context())
				return err
			})
			if client.IsStatus(err, 401) {
				output.Warning("Session expired")
				output.Info("Run 'merovian auth login' to login again")
				return nil
			}
			if err != nil {
				return err
			}

			mode := "token"
			if c.Credentials().SessionID != "" {
				mode = "session"
			}
			if a.jsonOutput() {
				return output.JSON(map[string]interface{}{"loggedIn": true, "user": user, "mode": mode})
			}
			output.Success("Logged in")
			output.Blank()
			output.KeyValue([][]string{
				{"User ID", user.ID.String()},
				{"Email", user.Email},
				{"Mode", mode},
			})
			return nil
		},
	}

	authCmd.AddCommand(signupCmd, loginCmd, logoutCmd, statusCmd)
	return authCmd
}

func (a *app) finishLogin(c *client.Client, resp *entities.AuthResponse, msg string) error {
	if err := a.storeCredentials(c.Credentials()); err != nil {
		output.Warning("Could not save credentials: " + err.Error())
	}
	if a.jsonOutput() {
		return output.JSON(resp.User)
	}
	output.Success(msg)
	if resp.User != nil {
		output.Blank()
		output.KeyValue([][]string{
			{"User ID", resp.User.ID.String()},
			{"Email", resp.User.Email},
		})
	}
	return nil
}
