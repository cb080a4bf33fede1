package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/example/grademark/internal/clipboard"
	"github.com/example/grademark/internal/export"
	"github.com/example/grademark/internal/gradeapi"
	"github.com/example/grademark/internal/logging"
	"github.com/example/grademark/internal/navigator"
)

// commentPresets are the quick comments offered next to the score.
var commentPresets = map[string]string{
	"good": "Great work! Keep it up.",
	"fix":  "Some answers are wrong, remember to correct them.",
	"redo": "This was not done carefully, please redo it.",
}

var readClipboardText = clipboard.ReadText

func presetNames() string {
	names := make([]string, 0, len(commentPresets))
	for name := range commentPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

type detailer interface {
	Detail(ctx context.Context, ref navigator.Ref) (gradeapi.Detail, error)
}

// commentFlags collects the ways a grading comment can be given.
type commentFlags struct {
	text          string
	preset        string
	fromClipboard bool
}

func (f *commentFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.text, "comment", "", "comment recorded with the score")
	fs.StringVar(&f.preset, "comment-preset", "", "use a prepared comment ("+presetNames()+")")
	fs.BoolVar(&f.fromClipboard, "comment-from-clipboard", false, "read the comment from the clipboard")
}

func (f *commentFlags) validate() error {
	sources := 0
	if f.text != "" {
		sources++
	}
	if f.preset != "" {
		sources++
		if _, ok := commentPresets[f.preset]; !ok {
			return fmt.Errorf("unknown comment preset %q (want %s)", f.preset, presetNames())
		}
	}
	if f.fromClipboard {
		sources++
	}
	if sources > 1 {
		return errors.New("use only one of -comment, -comment-preset and -comment-from-clipboard")
	}
	return nil
}

// resolve returns the comment to record. Without any comment flag the
// comment of a previous grade is kept.
func (f *commentFlags) resolve(ctx context.Context, d detailer, ref navigator.Ref) (string, error) {
	switch {
	case f.text != "":
		return f.text, nil
	case f.preset != "":
		return commentPresets[f.preset], nil
	case f.fromClipboard:
		text, err := readClipboardText()
		if err != nil {
			return "", fmt.Errorf("read comment from clipboard: %w", err)
		}
		return strings.TrimSpace(text), nil
	}
	if d == nil {
		return "", nil
	}
	det, err := d.Detail(ctx, ref)
	if err != nil {
		logging.Logger().Warn("previous comment unavailable", "submission", ref.String(), "err", err)
		return "", nil
	}
	return det.Comment, nil
}

func validScore(score int) error {
	if score < 0 || score > export.MaxScore {
		return fmt.Errorf("%w: %d", export.ErrInvalidScore, score)
	}
	return nil
}

// submitCmd uploads every annotated page and records the grade.
type submitCmd struct {
	cmdBase
	sub     refFlag
	score   int
	retries int
	comment commentFlags
}

func parseSubmitCmd(args []string, r *root) (*submitCmd, error) {
	c := &submitCmd{cmdBase: newBase(r, "submit")}
	c.fs.Usage = usageFunc(c)
	c.fs.Var(&c.sub, "submission", "submission to grade as `class/lesson/student`")
	c.fs.IntVar(&c.score, "score", export.MaxScore, "score to record (0-100)")
	c.fs.IntVar(&c.retries, "retries", 1, "times to retry recording the grade after the pages were uploaded")
	c.comment.register(c.fs)
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	if !c.sub.set || c.fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if err := validScore(c.score); err != nil {
		return nil, err
	}
	if err := c.comment.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *submitCmd) Run() error {
	ctx := context.Background()
	ref := c.sub.ref
	s, err := c.openSession(ctx, ref)
	if err != nil {
		return err
	}
	comment, err := c.comment.resolve(ctx, s.client, ref)
	if err != nil {
		return err
	}
	orch := export.New(s.nav, s.bg, s.client, s.client, c.exportOptions())
	res, err := orch.Submit(ctx, c.score, comment)
	var fin *export.FinalizeError
	for i := 0; i < c.retries && errors.As(err, &fin); i++ {
		logging.Logger().Warn("recording grade failed, retrying", "submission", ref.String(), "attempt", i+1, "err", err)
		res, err = orch.RetryFinalize(ctx)
	}
	if err != nil {
		if errors.Is(err, export.ErrNothingToUpload) {
			return fmt.Errorf("submit %s: %w: annotate at least one page first", ref, err)
		}
		return fmt.Errorf("submit %s: %w", ref, err)
	}
	fmt.Fprintf(c.out(), "graded %s: score %d, %d page(s) uploaded (run %s)\n", ref, c.score, len(res.Pages), res.RunID)
	if c.notifier != nil {
		c.notifier.Submitted(ref.String(), len(res.Pages), nil)
	}
	return nil
}
