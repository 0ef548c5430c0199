// olsd opens the Ontology Lookup Service dialog in the terminal and prints
// the term the user picks.
//
// Interactive mode (default): the dialog is drawn on the terminal and the
// chosen term is written to stdout in the --format encoding. When stdout is
// redirected the dialog draws on stderr, so the selection can be piped.
//
// Robot mode (any --robot-* flag): a single query is run against the
// service and its result printed, without a terminal UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/compomics/ols-dialog/pkg/config"
	"github.com/compomics/ols-dialog/pkg/errlog"
	"github.com/compomics/ols-dialog/pkg/hierarchy"
	"github.com/compomics/ols-dialog/pkg/lookup"
	"github.com/compomics/ols-dialog/pkg/model"
	"github.com/compomics/ols-dialog/pkg/ols"
	"github.com/compomics/ols-dialog/pkg/ontology"
	"github.com/compomics/ols-dialog/pkg/ui"
	"github.com/compomics/ols-dialog/pkg/updater"
	"github.com/compomics/ols-dialog/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// exitError ends the program with a status code and an optional message.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func (e *exitError) ExitCode() int { return e.code }

// errCancelled is returned when the dialog closed without a selection.
var errCancelled = &exitError{code: 1}

// options holds the parsed command line.
type options struct {
	configPath string
	ontology   string
	term       string
	mode       string
	mass       string
	accuracy   float64
	massType   string
	field      string
	row        int
	mappedTerm string
	preselect  []string
	format     string
	endpoint   string

	showVersion bool
	checkUpdate bool

	robot robotFlags
}

func newFlagSet(o *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("olsd", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "configuration file (default: $"+config.EnvConfig+" or "+config.DefaultPath()+")")
	fs.StringVar(&o.ontology, "ontology", "", "ontology label or key selected on open")
	fs.StringVar(&o.term, "term", "", "initial term name, or term ID with --mode term-id")
	fs.StringVar(&o.mode, "mode", "term-name", "tab to open: term-name, term-id, mass or browse")
	fs.StringVar(&o.mass, "mass", "", "modification mass for --mode mass")
	fs.Float64Var(&o.accuracy, "accuracy", 0, "mass accuracy (default from configuration)")
	fs.StringVar(&o.massType, "mass-type", string(model.MassDiffMono), "mass type: DiffAvg, DiffMono, MassAvg or MassMono")
	fs.StringVar(&o.field, "field", "", "host field the term is for, echoed in the output")
	fs.IntVar(&o.row, "row", -1, "host row being modified, -1 for a new row")
	fs.StringVar(&o.mappedTerm, "mapped-term", "", "host term being mapped, echoed in the output")
	fs.StringArrayVar(&o.preselect, "preselect", nil, "restrict ontologies: KEY or KEY=TERM_ID,TERM_ID (repeatable)")
	fs.StringVar(&o.format, "format", "json", "output format: json, yaml or text")
	fs.StringVar(&o.endpoint, "endpoint", "", "OLS SOAP endpoint (overrides the configuration)")
	fs.BoolVar(&o.showVersion, "version", false, "print version information and exit")
	fs.BoolVar(&o.checkUpdate, "check-update", false, "check for a newer release and exit")
	fs.BoolP("help", "h", false, "show help")
	o.robot.addFlags(fs)
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := newFlagSet(&o, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(fs, stderr)
			return nil
		}
		return &exitError{code: 2, msg: err.Error()}
	}
	if help, _ := fs.GetBool("help"); help {
		printHelp(fs, stderr)
		return nil
	}
	if fs.NArg() > 0 {
		return &exitError{code: 2, msg: "unexpected argument: " + fs.Arg(0)}
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.Full())
		return nil
	}
	if o.checkUpdate {
		return checkUpdate(ctx, stdout)
	}
	if err := validateFormat(o.format); err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.endpoint != "" {
		cfg.Endpoint = o.endpoint
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	pre, err := parsePreselect(o.preselect, cfg.Preselected)
	if err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}
	if o.ontology == "" {
		o.ontology = cfg.DefaultOntology
	}
	if !fs.Changed("accuracy") {
		o.accuracy = cfg.DefaultAccuracy
	}

	robot := o.robot.active()
	logger, closeLog := openLogger(cfg, robot, stderr)
	defer closeLog()

	client := ols.NewClient(
		ols.WithEndpoint(cfg.Endpoint),
		ols.WithTimeout(cfg.TimeoutDuration()),
		ols.WithUserAgent("ols-dialog/"+version.Version),
	)
	svc := lookup.NewService(client,
		lookup.WithLogger(logger),
		lookup.WithMinWordLength(cfg.MinWordLength),
	)
	req := lookup.Request{Field: o.field, ModifiedRow: o.row, MappedTerm: o.mappedTerm}

	if robot {
		return o.robot.run(ctx, svc, robotInput{
			pre:      pre,
			ontology: o.ontology,
			mass:     o.mass,
			accuracy: o.accuracy,
			massType: o.massType,
			request:  req,
		}, o.format, stdout)
	}

	mode, err := model.ParseSearchMode(o.mode)
	if err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}
	massType, err := model.ParseMassType(o.massType)
	if err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}

	graphs := hierarchy.NewFetcher(
		hierarchy.WithBaseURL(cfg.HierarchyURL),
		hierarchy.WithTimeout(cfg.TimeoutDuration()),
	)
	sel, err := runDialog(ctx, ui.Options{
		Lookup:       svc,
		Graphs:       graphs,
		Logger:       logger,
		Preselected:  pre,
		Ontology:     o.ontology,
		Mode:         mode,
		Term:         o.term,
		Mass:         o.mass,
		Accuracy:     o.accuracy,
		MassType:     massType,
		Request:      req,
		GlamourStyle: cfg.GlamourStyle,
		Endpoint:     cfg.Endpoint,
	})
	if err != nil {
		return err
	}
	return writeOutput(stdout, o.format, sel)
}

// runDialog draws the dialog on the terminal. The dialog goes to stderr when
// stdout is not a terminal.
func runDialog(ctx context.Context, opts ui.Options) (model.Selection, error) {
	out := os.Stdout
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		out = os.Stderr
	}
	opts.Theme = ui.DefaultTheme(lipgloss.NewRenderer(out))

	m := ui.New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(out), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return model.Selection{}, fmt.Errorf("running dialog: %w", err)
	}
	if err := m.Err(); err != nil {
		return model.Selection{}, lookupExit(err)
	}
	sel, ok := m.Selection()
	if !ok {
		return model.Selection{}, errCancelled
	}
	return sel, nil
}

// openLogger opens the error log. Robot modes also report warnings on
// stderr; the dialog never writes logs to the terminal.
func openLogger(cfg *config.Config, robot bool, stderr io.Writer) (*slog.Logger, func()) {
	file, closer, err := errlog.OpenHandler(cfg.ErrorLog, cfg.Level())
	if err != nil {
		fmt.Fprintf(stderr, "warning: %v; logging disabled\n", err)
		if robot {
			return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})), func() {}
		}
		return errlog.Discard(), func() {}
	}
	if !robot {
		return slog.New(file), closer
	}
	console := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	return slog.New(errlog.Fanout{file, console}), closer
}

// parsePreselect merges --preselect values over the configured restriction.
func parsePreselect(values []string, configured map[string][]string) (ontology.Preselected, error) {
	if len(values) == 0 {
		if len(configured) == 0 {
			return nil, nil
		}
		return ontology.Preselected(configured), nil
	}
	pre := make(ontology.Preselected, len(values))
	for _, v := range values {
		key, ids, hasIDs := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid --preselect %q: missing ontology key", v)
		}
		if !hasIDs {
			pre[key] = nil
			continue
		}
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				pre[key] = append(pre[key], id)
			}
		}
	}
	return pre, nil
}

func checkUpdate(ctx context.Context, stdout io.Writer) error {
	rel, err := updater.NewChecker().Check(ctx)
	if err != nil {
		return err
	}
	if rel == nil {
		fmt.Fprintf(stdout, "ols-dialog %s is up to date\n", version.Version)
		return nil
	}
	fmt.Fprintf(stdout, "ols-dialog %s is available: %s\n", rel.TagName, rel.HTMLURL)
	return nil
}

func printHelp(fs *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `olsd - look up ontology terms in the Ontology Lookup Service.

Opens a dialog to search terms by name, by accession, by PSI-MOD
modification mass, or by browsing an ontology tree. The chosen term is
printed on stdout.

Usage:
  olsd [flags]

Examples:
  # Search the Gene Ontology by name
  olsd --ontology GO --term apoptosis

  # Find modifications of about 80 Da
  olsd --mode mass --mass 79.97 --accuracy 0.05

  # Offer only two ontologies, one of them rooted at a term
  olsd --preselect NEWT --preselect GO=GO:0008150

  # Non-interactive lookup
  olsd --robot-search-name apoptosis --ontology GO

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
