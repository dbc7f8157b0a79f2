package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aouyang1/go-paysynth"
	"github.com/aouyang1/go-paysynth/config"
	"github.com/aouyang1/go-paysynth/errs"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	formatJSON  = "json"
	formatTable = "table"

	profileAll = "all"
)

var ErrUnknownFormat = fmt.Errorf("unknown output format, %w", errs.ErrConfiguration)

type runFlags struct {
	profile  string
	config   string
	seed     uint64
	format   string
	plot     string
	logLevel string
	limit    int
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "paysynth",
		Short:         "Synthesize, forecast and attribute payment platform metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newProfilesCmd(), newRunCmd())
	return rootCmd
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the analysis profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range paysynth.Profiles() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one or all analysis profiles, or a request file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyses(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}
	cmd.Flags().StringVarP(&flags.profile, "profile", "p", paysynth.ProfileOverview.String(),
		"profile to run: "+strings.Join(profileNames(), "|")+"|"+profileAll)
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "yaml request file, overrides --profile and --seed")
	cmd.Flags().Uint64Var(&flags.seed, "seed", paysynth.DefaultSeed, "random seed")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatJSON, "output format: json|table")
	cmd.Flags().StringVar(&flags.plot, "plot", "", "write an html chart page to this path")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	cmd.Flags().IntVar(&flags.limit, "limit", paysynth.DefaultBatchLimit, "analyses run at once")
	return cmd
}

func profileNames() []string {
	profiles := paysynth.Profiles()
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.String()
	}
	return names
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q, %w", level, errs.ErrConfiguration)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func buildRequests(flags *runFlags) ([]*paysynth.Request, error) {
	if flags.config != "" {
		f, err := config.Load(flags.config)
		if err != nil {
			return nil, err
		}
		req, err := f.ToRequest()
		if err != nil {
			return nil, err
		}
		return []*paysynth.Request{req}, nil
	}

	var profiles []paysynth.Profile
	if strings.EqualFold(strings.TrimSpace(flags.profile), profileAll) {
		profiles = paysynth.Profiles()
	} else {
		p, err := paysynth.ParseProfile(flags.profile)
		if err != nil {
			return nil, err
		}
		profiles = []paysynth.Profile{p}
	}

	reqs := make([]*paysynth.Request, 0, len(profiles))
	for _, p := range profiles {
		req, err := paysynth.NewRequest(p, flags.seed)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func writeReport(w io.Writer, report *paysynth.Report, format string) error {
	switch format {
	case formatJSON:
		return report.WriteJSON(w)
	case formatTable:
		return report.WriteTable(w)
	}
	return fmt.Errorf("%q, %w", format, ErrUnknownFormat)
}

// plotPath suffixes the profile name when several reports are plotted
func plotPath(path string, total int, p paysynth.Profile) string {
	if total == 1 {
		return path
	}
	ext := ".html"
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", base, p, ext)
}

func writePlot(path string, report *paysynth.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Plot(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func runAnalyses(ctx context.Context, out, errOut io.Writer, flags *runFlags) error {
	logger, err := newLogger(errOut, flags.logLevel)
	if err != nil {
		return err
	}
	if flags.format != formatJSON && flags.format != formatTable {
		return fmt.Errorf("%q, %w", flags.format, ErrUnknownFormat)
	}
	logger = logger.With("run_id", uuid.New().String())
	slog.SetDefault(logger)

	reqs, err := buildRequests(flags)
	if err != nil {
		return err
	}

	logger.Info("running analyses", "count", len(reqs), "limit", flags.limit)
	reports, err := paysynth.RunBatch(ctx, reqs, flags.limit)
	if err != nil {
		return err
	}

	for _, report := range reports {
		if err := writeReport(out, report, flags.format); err != nil {
			return err
		}
		if flags.plot == "" {
			continue
		}
		path := plotPath(flags.plot, len(reports), report.Profile)
		if err := writePlot(path, report); err != nil {
			return err
		}
		logger.Info("wrote plot", "profile", report.Profile.String(), "path", path)
	}
	return nil
}
