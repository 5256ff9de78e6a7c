package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-bazi/backend/internal/analysis/narrative"
	"github.com/zhouzirui/z-bazi/backend/internal/config"
	"github.com/zhouzirui/z-bazi/backend/internal/handler/reading"
	"github.com/zhouzirui/z-bazi/backend/internal/service/ai"
	"github.com/zhouzirui/z-bazi/backend/internal/service/chart"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
)

type readingOptions struct {
	request   reading.BirthRequest
	chartFile string
	timeout   time.Duration
	asJSON    bool
	verbose   bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "bazicli",
		Short:         "Compute and interpret Four Pillars readings from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newReadingCmd(), newStructureCmd())
	return root
}

func newReadingCmd() *cobra.Command {
	opts := &readingOptions{}

	cmd := &cobra.Command{
		Use:   "reading",
		Short: "Run the full pipeline for one birth moment",
		Example: `  bazicli reading --date 2001-05-17 --time 08:30 --timezone Asia/Shanghai --gender female
  bazicli reading --birth-iso 2001-05-17T08:30:00 --timezone Asia/Shanghai --gender male --chart-file chart.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReading(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.request.Date, "date", "", "birth date, yyyy-MM-dd or RFC 3339")
	flags.StringVar(&opts.request.Time, "time", "", "birth time, HH:mm[:ss] or RFC 3339")
	flags.StringVar(&opts.request.BirthISO, "birth-iso", "", "birth moment as yyyy-MM-ddTHH:mm:ss (overrides --date/--time)")
	flags.StringVar(&opts.request.Timezone, "timezone", "", "IANA timezone of the birth place")
	flags.StringVar(&opts.request.DeviceTimezone, "device-timezone", "", "zone the date/time values were entered in (default --timezone)")
	flags.StringVar(&opts.request.Gender, "gender", "", "male or female")
	flags.StringVar(&opts.chartFile, "chart-file", "", "recorded chart computation result (JSON); default uses CHART_SERVICE_URL")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall time limit")
	flags.BoolVar(&opts.asJSON, "json", false, "print updates as JSON lines")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")
	_ = cmd.MarkFlagRequired("timezone")
	_ = cmd.MarkFlagRequired("gender")

	return cmd
}

func runReading(cmd *cobra.Command, opts *readingOptions) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	inputs, err := opts.request.Inputs()
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if opts.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
			Level(cfg.Log.Level).With().Timestamp().Logger()
	}

	ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), opts.timeout)
	defer cancel()

	var computer chart.Computer
	switch {
	case opts.chartFile != "":
		computer = chart.FileComputer{Path: opts.chartFile}
	case cfg.Chart.Enabled():
		computer = chart.NewHTTPComputer(cfg.Chart.ServiceURL, cfg.Chart.Timeout)
	default:
		return fmt.Errorf("no chart source: pass --chart-file or set CHART_SERVICE_URL")
	}

	var narrator pipeline.Narrator
	if cfg.AI.Enabled() {
		svc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			return fmt.Errorf("init AI service: %w", err)
		}
		narrator = svc
	} else {
		logger.Warn().Msg("Ark credentials not configured, narratives will use fallback text")
	}

	out := cmd.OutOrStdout()
	runner := pipeline.NewRunner(computer, narrator)
	for update := range runner.Start(ctx, inputs) {
		if opts.asJSON {
			if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out).Encode(update); err != nil {
				return err
			}
			continue
		}
		renderUpdate(out, update)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reading interrupted: %w", err)
	}
	return nil
}

func newStructureCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Sanitize generated text and split it into sections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data []byte
				err  error
			)
			if file == "" || file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			renderSections(cmd.OutOrStdout(), narrative.Structure(strings.TrimRight(string(data), "\n")))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "text file to structure, - for stdin")
	return cmd
}
