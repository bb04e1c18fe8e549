package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gastos/internal/client"
	"gastos/internal/core"
)

var errNotLoggedIn = errors.New("not logged in, run 'gastos login'")

func (a *app) readToken() string {
	data, err := os.ReadFile(a.v.GetString("token_file"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (a *app) saveToken(token string) error {
	path := a.v.GetString("token_file")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (a *app) clearToken() error {
	err := os.Remove(a.v.GetString("token_file"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// requireLogin gates every data command. A stored token only counts once the
// server has accepted it.
func (a *app) requireLogin(ctx context.Context) (core.User, error) {
	c := a.client()
	if c.Token() == "" {
		return core.User{}, errNotLoggedIn
	}
	u, err := c.Auth().Me(ctx)
	if isUnauthorized(err) {
		return core.User{}, errNotLoggedIn
	}
	return u, err
}

func isUnauthorized(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func (a *app) reader(cmd *cobra.Command) *bufio.Reader {
	if a.stdin == nil {
		a.stdin = bufio.NewReader(cmd.InOrStdin())
	}
	return a.stdin
}

func (a *app) readLine(cmd *cobra.Command) (string, error) {
	line, err := a.reader(cmd).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword prompts on stderr and reads without echo when stdin is a
// terminal.
func (a *app) readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	pw, err := a.readLine(cmd)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

func (a *app) confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [s/N] ", prompt)
	answer, err := a.readLine(cmd)
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func (a *app) registerCmd() *cobra.Command {
	var nome, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			senha, err := a.readPassword(cmd, "Senha: ")
			if err != nil {
				return err
			}
			u, err := a.client().Auth().Register(cmd.Context(), core.UserInput{
				Nome: &nome, Email: &email, Senha: &senha,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s> (id %d)\n", u.Nome, u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nome, "nome", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login e-mail")
	_ = cmd.MarkFlagRequired("nome")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session and store its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			senha, err := a.readPassword(cmd, "Senha: ")
			if err != nil {
				return err
			}
			s, err := a.client().Auth().Login(cmd.Context(), email, senha)
			if err != nil {
				return err
			}
			if err := a.saveToken(s.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s> until %s\n",
				s.Usuario.Nome, s.Usuario.Email, s.ExpiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login e-mail")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.client()
			if c.Token() == "" {
				return errNotLoggedIn
			}
			err := c.Auth().Logout(cmd.Context())
			if clearErr := a.clearToken(); clearErr != nil {
				return clearErr
			}
			if err != nil && !isUnauthorized(err) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user behind the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.requireLogin(cmd.Context())
			if err != nil {
				return err
			}
			return renderOne(a, cmd, u, usersHeader, userRow)
		},
	}
}
