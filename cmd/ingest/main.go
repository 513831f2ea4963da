// ingest 一次性执行比赛或积分榜合并，输出同步统计，供 cron 或手工补数使用
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"SportsSync/internal/bootstrap"
	"SportsSync/internal/config"
	"SportsSync/internal/model"

	jsoniter "github.com/json-iterator/go"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	ConfigDir string
	Format    string // "json" | "text"
	Verbose   bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Reconcile live sports data into the stores",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "json" && opts.Format != "text" {
				return fmt.Errorf("invalid format %q: must be json or text", opts.Format)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config", "./config", "directory containing config.yaml")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newGamesCommand(opts), newTeamsCommand(opts))
	return cmd
}

func newGamesCommand(opts *rootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Fetch and reconcile games for one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			var day *time.Time
			if date != "" {
				d, err := model.ParseGameDay(date)
				if err != nil {
					return err
				}
				day = &d
			}
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) (interface{}, error) {
				return app.Reconcile.SyncGames(cmd.Context(), day)
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "game day (2006-01-02), defaults to today UTC")
	return cmd
}

func newTeamsCommand(opts *rootOptions) *cobra.Command {
	var conference string
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Fetch and reconcile standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if conference != "" {
				if _, ok := model.ParseConference(conference); !ok {
					return fmt.Errorf("%w: %s", model.ErrUnknownConference, conference)
				}
			}
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) (interface{}, error) {
				return app.Reconcile.SyncTeams(cmd.Context(), conference)
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&conference, "conference", "", "east/west, empty for all")
	return cmd
}

func withApp(ctx context.Context, opts *rootOptions, run func(*bootstrap.App) (interface{}, error), out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = godotenv.Load()
	cfg, err := config.LoadConfigFrom(opts.ConfigDir)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.InfoLevel)
	}

	app, err := bootstrap.Build(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer app.Close(logger)

	res, err := run(app)
	if err != nil {
		return err
	}
	return printResult(out, opts.Format, res)
}

func printResult(out io.Writer, format string, res interface{}) error {
	if format == "json" {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintf(out, "%+v\n", res)
	return err
}
