package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"os"
	"sync"
	"text/template"

	"github.com/example/grademark/internal/logging"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				arg, usage := flag.UnquoteUsage(f)
				info := flagInfo{Name: f.Name, Arg: arg, Usage: usage}
				if !isZeroDefault(f) {
					info.DefValue = f.DefValue
				}
				result = append(result, info)
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name string
	// Arg names the flag's value, empty for boolean flags.
	Arg      string
	DefValue string
	Usage    string
}

// isZeroDefault reports whether the default is the zero value of the
// flag's type, which the help pages leave out.
func isZeroDefault(f *flag.Flag) bool {
	switch f.DefValue {
	case "", "0", "false":
		return true
	}
	return false
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	if err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of); err != nil {
		logging.Logger().Error("help template", "template", e.of.Template(), "err", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc prints the command's help page; it is installed as the flag
// set's Usage.
func usageFunc(h HelpData) func() {
	return func() {
		fmt.Fprint(os.Stderr, (&UsageError{of: h}).Error())
	}
}

func (r *root) Template() string        { return "root.txt" }
func (p *pagesCmd) Template() string    { return "pages.txt" }
func (a *annotateCmd) Template() string { return "annotate.txt" }
func (d *drawCmd) Template() string     { return "draw.txt" }
func (d *draftsCmd) Template() string   { return "drafts.txt" }
func (c *renderCmd) Template() string   { return "render.txt" }
func (s *submitCmd) Template() string   { return "submit.txt" }
func (a *archiveCmd) Template() string  { return "archive.txt" }
func (c *configCmd) Template() string   { return "config.txt" }
func (v *versionCmd) Template() string  { return "version.txt" }
