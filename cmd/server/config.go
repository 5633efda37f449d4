package main

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"quizler/internal/game"
	"quizler/internal/server"
)

// Config holds all configuration values for the quiz server.
type Config struct {
	bind    string
	port    int
	verbose bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZLER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizler",
		Short:         "Real-time multiplayer quiz server.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZLER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 80, "port to listen on (env: QUIZLER_PORT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display per-request output (env: QUIZLER_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quizler v{{.Version}}\n")

	return cmd
}

// run builds the registry, starts the prepared-quiz sweeper and serves
// until the listener fails.
func run(cfg *Config) error {
	if !cfg.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	games := game.NewGames()
	games.StartSweeper()

	srv := server.New(games)
	router := srv.Router()

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	log.Printf("Starting Quizler on %s (v%s)", addr, releaseVersion)

	return router.Run(addr)
}
