package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gastos/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every command of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	c          *client.Client
	stdin      *bufio.Reader
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "gastos",
		Short:         "Manage users, categories, movement types and movements of a gastos server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $HOME/.gastos.yaml)")
	flags.String("api-url", "", "API base URL (env GASTOS_API_URL)")
	flags.String("token-file", "", "where the session token is kept (env GASTOS_TOKEN_FILE)")
	flags.Bool("json", false, "print JSON instead of tables")
	_ = a.v.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("token_file", flags.Lookup("token-file"))
	_ = a.v.BindPFlag("json", flags.Lookup("json"))

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		resourceCmd(a, usersResource(a)),
		resourceCmd(a, categoriesResource()),
		resourceCmd(a, movementTypesResource()),
		resourceCmd(a, movementsResource()),
	)
	return root
}

// loadConfig resolves settings from flags, GASTOS_* variables and the
// optional config file, in that order of precedence.
func (a *app) loadConfig() error {
	home, _ := os.UserHomeDir()
	a.v.SetEnvPrefix("GASTOS")
	a.v.AutomaticEnv()
	a.v.SetDefault("api_url", "http://localhost:8080")
	a.v.SetDefault("token_file", filepath.Join(home, ".gastos", "token"))

	if a.configPath != "" {
		a.v.SetConfigFile(a.configPath)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	a.v.AddConfigPath(home)
	a.v.SetConfigName(".gastos")
	a.v.SetConfigType("yaml")
	var notFound viper.ConfigFileNotFoundError
	if err := a.v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) client() *client.Client {
	if a.c == nil {
		a.c = client.New(a.v.GetString("api_url"), client.WithToken(a.readToken()))
	}
	return a.c
}
