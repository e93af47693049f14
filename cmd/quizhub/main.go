package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"quizhub/internal/app"
	"quizhub/internal/config"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

// newCmd builds the root command. Every flag can also be set through a
// QUIZHUB_ environment variable; flags win over the environment, which
// wins over defaults.
func newCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("QUIZHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizhub",
		Short:         "Real-time multiplayer trivia coordinator.",
		Args:          cobra.ExactArgs(0),
		Version:       app.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.HTTP.Host, "bind", "b", cfg.HTTP.Host, "address to bind to (env: QUIZHUB_BIND)")
	fs.IntVarP(&cfg.HTTP.Port, "port", "p", cfg.HTTP.Port, "port to listen on (env: QUIZHUB_PORT)")
	fs.StringVar(&cfg.Database.Path, "database", cfg.Database.Path, "path to the question database (env: QUIZHUB_DATABASE)")
	fs.IntVarP(&cfg.Game.QuestionCount, "questions", "n", cfg.Game.QuestionCount, "default questions per game (env: QUIZHUB_QUESTIONS)")
	fs.DurationVar(&cfg.Game.RoundCountdown, "countdown", cfg.Game.RoundCountdown, "answer window per question (env: QUIZHUB_COUNTDOWN)")
	fs.DurationVar(&cfg.Game.PreGameDelay, "pregame-delay", cfg.Game.PreGameDelay, "delay between game start and the first question (env: QUIZHUB_PREGAME_DELAY)")
	fs.DurationVar(&cfg.Game.ResultDelay, "result-delay", cfg.Game.ResultDelay, "time results stay on screen between rounds (env: QUIZHUB_RESULT_DELAY)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quizhub v{{.Version}}\n")

	return cmd
}

// run starts the application and blocks until a shutdown signal or a
// startup failure.
func run(cfg *config.Config) error {
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	appErrCh := make(chan error, 1)
	go func() {
		if err := application.Start(ctx); err != nil {
			appErrCh <- err
		}
	}()

	select {
	case err := <-appErrCh:
		return fmt.Errorf("application error: %w", err)
	case <-signalCh:
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return application.Stop(shutdownCtx)
	}
}
