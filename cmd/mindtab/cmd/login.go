package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mindtab/mindtab/internal/client"
	"github.com/spf13/cobra"
)

func LoginCmd(opts *Options) *cobra.Command {
	var email string

	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password and store the API token",
		Long:  "Reads the password from MINDTAB_PASSWORD or the first line of stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}

			password := os.Getenv("MINDTAB_PASSWORD")
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			server, _, err := opts.resolve(cmd.Context())
			if err != nil {
				return err
			}

			token, expiresAt, err := client.New(server, "").Login(cmd.Context(), email, password)
			if errors.Is(err, client.ErrUnauthorized) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return err
			}

			kv, err := opts.credentials()
			if err != nil {
				return err
			}
			err = kv.Save(cmd.Context(), map[string]string{
				credentialServer: server,
				credentialToken:  token,
			})
			if err != nil {
				return fmt.Errorf("store credentials: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s until %s\n", server, expiresAt.Local().Format(time.DateTime))
			return nil
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")

	return login
}
