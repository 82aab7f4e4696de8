package main

import (
	"fmt"
	"time"

	"github.com/amir-mohammad-HP/adbreboot/internal/app"
	"github.com/amir-mohammad-HP/adbreboot/internal/config"
	"github.com/amir-mohammad-HP/adbreboot/internal/schedule"
	"github.com/amir-mohammad-HP/adbreboot/internal/types"
	"github.com/amir-mohammad-HP/adbreboot/pkg/logger"
	"github.com/spf13/cobra"
)

var configPath string

// reportedError marks failures that were already logged
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func report(log logger.Logger, err error) error {
	log.Error("%s", err.Error())
	return reportedError{err}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "adbreboot",
		Short:         "Reboot Android devices over ADB on a cron schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDaemon,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("configuration file (default %s)", config.DefaultConfigPath))

	root.AddCommand(newNextCmd(), newValidateCmd(), newInitCmd())
	return root
}

// loadConfig loads the configuration, reporting failures on stderr
func loadConfig() (*types.Config, error) {
	path := config.ResolvePath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, report(logger.New("error"), err)
	}
	return cfg, nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewWithConfig(&cfg.Logger)
	defer log.Close()

	ctx := cmd.Context()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return report(log, err)
	}

	if err := application.Run(ctx); err != nil {
		return report(log, fmt.Errorf("application failed: %w", err))
	}
	return nil
}

func newNextCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the upcoming reboot times for every configured device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			now := time.Now()
			out := cmd.OutOrStdout()
			for _, entry := range cfg.Reboot {
				// entries were validated by Load
				times, _ := schedule.Upcoming(entry.Cron, now, count)
				fmt.Fprintf(out, "%s (%s)\n", entry.Host, entry.Cron)
				for _, t := range times {
					fmt.Fprintf(out, "  %s\n", t.Format("2006-01-02 15:04:05 MST"))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "number of upcoming runs to show per device")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: %d reboot schedule(s)\n", len(cfg.Reboot))
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfig(path); err != nil {
				return report(logger.New("error"), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sample configuration written")
			return nil
		},
	}
}
