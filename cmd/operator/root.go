package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ui-operator/internal/application/port/output"
	"ui-operator/internal/di"
	"ui-operator/internal/infrastructure/config"
	"ui-operator/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"mode":      "browser.mode",
	"headless":  "browser.headless",
	"max-steps": "agent.max_steps",
	"start-url": "target.start_url",
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "operator",
		Short:         "Drive a chat-style web app with an LLM until it produces an answer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./operator.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("mode", config.BrowserModeBrowserbase, "browser mode: browserbase or local")
	root.PersistentFlags().Bool("headless", true, "run the local browser headless")

	root.AddCommand(newRunCmd(&cfgFile))
	return root
}

func newRunCmd(cfgFile *string) *cobra.Command {
	var answers []string

	cmd := &cobra.Command{
		Use:   "run [goal...]",
		Short: "Run one goal against the target app and print the final answer",
		Long: `Run acquires a browser session, signs in to the target app when needed and
lets the model operate the page until it reports a final answer.

The goal is taken from the arguments. Without arguments it is read from stdin.
Questions the model asks are answered on the console, or from --answer in order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, args, answers)
		},
	}

	cmd.Flags().Int("max-steps", 0, "stop after this many decision steps (0 means unlimited)")
	cmd.Flags().String("start-url", "", "override the page the run starts on")
	cmd.Flags().StringArrayVar(&answers, "answer", nil, "scripted answer for a model question, may be repeated")
	return cmd
}

func loadConfig(path string, flags *pflag.FlagSet) (*config.Config, error) {
	config.LoadDotEnv()

	v, err := config.NewViper(path)
	if err != nil {
		return nil, err
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindFlags overrides config keys only with flags that were set explicitly.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, args, answers []string) error {
	var ui output.UserInteractionPort
	console := userinteraction.NewConsoleUserInteraction()
	if len(answers) > 0 {
		ui = userinteraction.Scripted(ctx, answers)
	} else {
		ui = console
	}

	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" {
		line, err := console.Prompt(ctx, "prompt")
		if err != nil {
			return fmt.Errorf("read goal: %w", err)
		}
		goal = strings.TrimSpace(line)
	}
	if goal == "" {
		return fmt.Errorf("goal must not be empty")
	}

	container, err := di.NewContainer(ctx, cfg, ui)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer container.Close()

	container.Logger.Info("Task started", "goal", goal)

	result, err := container.TaskExecutor.Execute(ctx, goal)
	if err != nil {
		container.Logger.Error("Task failed", "error", err)
		return err
	}

	container.Logger.Info("Task completed", "run_id", result.RunID, "steps", result.Steps, "reachability", result.Reachability)
	fmt.Fprintln(os.Stdout, result.FinalAnswer)
	return nil
}
