package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marguberk/findmypet"
)

const (
	passwordMinLen = 6
	passwordMaxLen = 70
)

// validatePassword enforces the password rules the gateway itself does not
// re-check: length bounds and matching confirmation.
func validatePassword(password, confirmation string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters", passwordMinLen)
	}
	if len(password) > passwordMaxLen {
		return fmt.Errorf("password must be at most %d characters", passwordMaxLen)
	}
	if password != confirmation {
		return errors.New("passwords do not match")
	}
	return nil
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			result, err := client.Auth.Login(cmd.Context(), findmypet.Credentials{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			name := email
			if result.User != nil && result.User.Username != "" {
				name = result.User.Username
			}
			fmt.Printf("Logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func registerCmd() *cobra.Command {
	var username, email, password, confirmation, phone string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" || password == "" {
				return errors.New("--username, --email and --password are required")
			}
			if confirmation == "" {
				confirmation = password
			}
			if err := validatePassword(password, confirmation); err != nil {
				return err
			}
			result, err := client.Auth.Register(cmd.Context(), findmypet.Registration{
				Username: username,
				Email:    email,
				Password: password,
				Phone:    phone,
			})
			if err != nil {
				return err
			}
			name := username
			if result.User != nil && result.User.Username != "" {
				name = result.User.Username
			}
			fmt.Printf("Registered and logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&confirmation, "confirm", "", "password confirmation (defaults to --password)")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone (optional)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Auth.Logout()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.Session().IsAuthenticated() {
				fmt.Println("Not logged in")
				return nil
			}
			user, err := client.Auth.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(user, func() error {
				fmt.Printf("ID:       %d\n", user.ID)
				fmt.Printf("Email:    %s\n", user.Email)
				if user.Username != "" {
					fmt.Printf("Username: %s\n", user.Username)
				}
				if user.Phone != "" {
					fmt.Printf("Phone:    %s\n", user.Phone)
				}
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server reachability and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			reachable := true
			if err := client.Pets.Ping(cmd.Context()); err != nil {
				reachable = false
			}

			type status struct {
				API           string `json:"api" yaml:"api"`
				Reachable     bool   `json:"reachable" yaml:"reachable"`
				Authenticated bool   `json:"authenticated" yaml:"authenticated"`
				TokenSubject  string `json:"token_subject,omitempty" yaml:"token_subject,omitempty"`
				TokenExpires  string `json:"token_expires,omitempty" yaml:"token_expires,omitempty"`
			}
			st := status{
				API:           client.BaseURL(),
				Reachable:     reachable,
				Authenticated: client.Session().IsAuthenticated(),
			}
			if st.Authenticated {
				if claims, err := client.Auth.TokenClaims(); err == nil {
					st.TokenSubject = claims.Subject
					if !claims.ExpiresAt.IsZero() {
						st.TokenExpires = claims.ExpiresAt.Format(time.RFC3339)
					}
				}
			}

			return printResult(st, func() error {
				fmt.Printf("API:           %s\n", st.API)
				fmt.Printf("Reachable:     %v\n", st.Reachable)
				fmt.Printf("Authenticated: %v\n", st.Authenticated)
				if st.TokenSubject != "" {
					fmt.Printf("Token subject: %s\n", st.TokenSubject)
				}
				if st.TokenExpires != "" {
					fmt.Printf("Token expires: %s\n", st.TokenExpires)
				}
				return nil
			})
		},
	}
}
