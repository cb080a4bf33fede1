package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/grademark/internal/config"
	"github.com/example/grademark/internal/logging"
	"github.com/example/grademark/internal/notify"
	"github.com/example/grademark/internal/style"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	config       *config.Config
	notifier     *notify.Notifier
	stdout       io.Writer
	verbose      bool
	apiBase      string
	token        string
	draftDir     string
	styleName    string
	activeStyle  *style.Style
	submitAlerts bool
	renderAlerts bool
	copyAlerts   bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func (r *root) out() io.Writer {
	if r == nil || r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
		cfg.ApplyEnv(os.Getenv)
	}
	return newRootWith(cfg, notify.New(notify.LoadPreferences(os.Getenv)))
}

func newRootWith(cfg *config.Config, n *notify.Notifier) *root {
	r := &root{
		fs:       flag.NewFlagSet("grademark", flag.ExitOnError),
		program:  "grademark",
		config:   cfg,
		notifier: n,
	}
	r.fs.BoolVar(&r.verbose, "v", false, "log debug output to stderr")
	r.fs.StringVar(&r.apiBase, "api", cfg.APIBase, "base URL of the grading API")
	r.fs.StringVar(&r.token, "token", cfg.Token, "bearer token for the grading API")
	r.fs.StringVar(&r.draftDir, "drafts", cfg.DraftPath(), "directory holding annotation drafts")
	// Precedence: CLI > Env > Config > Default. Env and config are already
	// merged into cfg by the loader.
	r.fs.StringVar(&r.styleName, "style", cfg.Style, "annotation colour preset (default, dark, highcontrast or a .style file)")
	r.fs.BoolVar(&r.submitAlerts, "notify-submit", cfg.Notify.Submit, "show a desktop notification after a grade is recorded")
	r.fs.BoolVar(&r.renderAlerts, "notify-render", cfg.Notify.Render, "show a desktop notification after a page is rendered to a file")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(r.program + " " + name)
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.installLogger(os.Stderr)
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSubmit, r.submitAlerts)
		r.notifier.Enable(notify.EventRender, r.renderAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeStyle = r.loadStyle()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "pages":
		cmd, err = parsePagesCmd(subArgs, r)
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "drafts":
		cmd, err = parseDraftsCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "submit":
		cmd, err = parseSubmitCmd(subArgs, r)
	case "archive":
		cmd, err = parseArchiveCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) installLogger(w io.Writer) {
	level := slog.LevelWarn
	if r.verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func (r *root) loadStyle() *style.Style {
	if r.styleName == "" || strings.EqualFold(r.styleName, "default") {
		return style.Default()
	}
	s, err := style.NewLoader(r.config.Styles).Load(r.styleName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load style '%s': %v. using default.\n", r.styleName, err)
		return style.Default()
	}
	return s
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
