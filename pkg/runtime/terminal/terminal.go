package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/de-tools/jyotish-atlas/pkg/services/orchestrator"
	"github.com/de-tools/jyotish-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

// Runner executes analyses for the CLI.
type Runner interface {
	Run(ctx context.Context, req orchestrator.Request) (domain.AnalysisResponse, error)
	Profile(ctx context.Context, person domain.BirthDetails) (domain.Profile, error)
}

// CLI represents the command-line interface
type CLI struct {
	runner   Runner
	reporter *Reporter
	rootCmd  *cobra.Command
	now      func() time.Time
}

// Options contain configuration for the CLI
type Options struct {
	Runner Runner
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		runner:   opts.Runner,
		reporter: NewReporter(opts.Output),
		now:      time.Now,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Command exposes the root command so callers can attach persistent flags.
func (cli *CLI) Command() *cobra.Command {
	return cli.rootCmd
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jyotish",
		Short:         "Vedic astrology chart analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(cli.newAnalyzeCmd())
	cmd.AddCommand(cli.newProfileCmd())
	cmd.AddCommand(cli.newModulesCmd())
	cmd.AddCommand(cli.newShowCmd())

	return cmd
}

type analyzeFlags struct {
	name, date, clock, location string
	offset                      float64
	modules                     []string
	format                      string
	gender                      string

	partnerName, partnerDate, partnerTime, partnerLocation string
	partnerOffset                                          float64
}

func (cli *CLI) newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute a chart and print module analyses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cli.runner == nil {
				return fmt.Errorf("no analysis runner configured")
			}

			format, err := domain.ParseReportFormat(f.format)
			if err != nil {
				return err
			}
			gender, err := domain.ParseGender(f.gender)
			if err != nil {
				return err
			}

			req := orchestrator.Request{
				Person: domain.BirthDetails{
					Name:      f.name,
					BirthDate: f.date,
					BirthTime: f.clock,
					Location:  f.location,
					UTCOffset: f.offset,
				},
				Partner: partnerFromFlags(cmd, &f),
				Modules: f.modules,
				Entry:   orchestrator.EntryModules,
				Format:  format,
				Gender:  gender,
			}
			if req.Partner.Name != nil {
				req.Entry = orchestrator.EntryAnalyze
			}

			resp, err := cli.runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			return cli.reporter.Handle(consoleReport(req.Person, resp, cli.now()), resp.ReportPath)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "person's name")
	flags.StringVar(&f.date, "date", "", "birth date, YYYY-MM-DD")
	flags.StringVar(&f.clock, "time", "", "birth time, HH:MM or HH:MM:SS (24h)")
	flags.StringVar(&f.location, "location", "", "birth place name or \"lat,lon\"")
	flags.Float64Var(&f.offset, "offset", 0, "UTC offset in hours, e.g. 5.5")
	flags.StringSliceVar(&f.modules, "module", nil, "module to run (repeatable); default all single-chart modules")
	flags.StringVar(&f.format, "format", "json", "also export a report: docx or pdf")
	flags.StringVar(&f.gender, "gender", "", "male, female, non_binary or prefer_not_to_say")
	flags.StringVar(&f.partnerName, "partner-name", "", "partner's name (enables Compatibility)")
	flags.StringVar(&f.partnerDate, "partner-date", "", "partner's birth date")
	flags.StringVar(&f.partnerTime, "partner-time", "", "partner's birth time")
	flags.StringVar(&f.partnerLocation, "partner-location", "", "partner's birth place")
	flags.Float64Var(&f.partnerOffset, "partner-offset", 0, "partner's UTC offset in hours")

	for _, name := range []string{"name", "date", "time", "location", "offset"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// partnerFromFlags keeps only the partner flags that were actually set.
func partnerFromFlags(cmd *cobra.Command, f *analyzeFlags) orchestrator.Partner {
	var p orchestrator.Partner
	changed := cmd.Flags().Changed
	if changed("partner-name") {
		p.Name = &f.partnerName
	}
	if changed("partner-date") {
		p.BirthDate = &f.partnerDate
	}
	if changed("partner-time") {
		p.BirthTime = &f.partnerTime
	}
	if changed("partner-location") {
		p.Location = &f.partnerLocation
	}
	if changed("partner-offset") {
		p.UTCOffset = &f.partnerOffset
	}
	return p
}

func consoleReport(person domain.BirthDetails, resp domain.AnalysisResponse, now time.Time) *domain.Report {
	sections := make([]domain.ReportSection, 0, len(resp.Results))
	for _, r := range resp.Results {
		sections = append(sections, domain.ReportSection{Title: r.Module.String(), Body: r.Analysis})
	}
	birth := fmt.Sprintf("%s %s (UTC%+.1f), Location: %s",
		person.BirthDate, person.BirthTime, person.UTCOffset, person.Location)

	return &domain.Report{
		Title:        "Astrological Report for " + resp.Name,
		GeneratedAt:  now,
		BirthDetails: birth,
		Sections:     sections,
	}
}

func (cli *CLI) newProfileCmd() *cobra.Command {
	var person domain.BirthDetails

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the Venus, Mars and Moon attraction profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cli.runner == nil {
				return fmt.Errorf("no analysis runner configured")
			}
			p, err := cli.runner.Profile(cmd.Context(), person)
			if err != nil {
				return err
			}
			return cli.reporter.Profile(p)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&person.Name, "name", "", "person's name")
	flags.StringVar(&person.BirthDate, "date", "", "birth date, YYYY-MM-DD")
	flags.StringVar(&person.BirthTime, "time", "", "birth time, HH:MM or HH:MM:SS (24h)")
	flags.StringVar(&person.Location, "location", "", "birth place name or \"lat,lon\"")
	flags.Float64Var(&person.UTCOffset, "offset", 0, "UTC offset in hours, e.g. 5.5")
	for _, name := range []string{"name", "date", "time", "location", "offset"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (cli *CLI) newModulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List analysis modules",
		RunE: func(*cobra.Command, []string) error {
			return cli.reporter.Modules(domain.AllModules)
		},
	}
}

func (cli *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <report-file>",
		Short: "Print the text of an exported report",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			text, err := report.ReadBack(args[0])
			if err != nil {
				return err
			}
			return cli.reporter.Text(text)
		},
	}
}
