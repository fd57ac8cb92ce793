package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/consult"
	"github.com/aretw0/consult/internal/presentation/markdown"
	"github.com/aretw0/consult/internal/presentation/tui"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/schema"
	"github.com/aretw0/consult/pkg/session"
)

const walkHelp = `Commands:
  <n>             choose option n
  <enter>         continue (info) or fill the form (input)
  b               go back
  r               start over
  j <node>        jump to a node of this tree
  d <drug> [hint] show a drug monograph
  i <page>        show an info page
  c <calculator>  fill in a risk calculator
  t               show the answers so far
  h               show this help
  q               quit`

// Walker drives a session from a line-oriented terminal.
type Walker struct {
	Engine  *consult.Engine
	Render  func(string) (string, error)
	Palette tui.Palette

	// MaxInput bounds one line of input; zero uses the schema default.
	MaxInput int

	in  *bufio.Reader
	out io.Writer
}

// NewWalker creates a walker reading commands from in and writing to out.
// A plain walker writes raw Markdown without colours.
func NewWalker(engine *consult.Engine, in io.Reader, out io.Writer, plain bool, width int) (*Walker, error) {
	w := &Walker{
		Engine:  engine,
		Render:  tui.PlainRenderer(),
		Palette: tui.PlainPalette(),
		in:      bufio.NewReader(in),
		out:     out,
	}
	if !plain {
		render, err := tui.NewRenderer(width)
		if err != nil {
			return nil, err
		}
		w.Render = render
		w.Palette = tui.NewPalette()
	}
	return w, nil
}

// Run walks the stored session sessionID until the user quits or input ends.
// It returns the last persisted state of the session.
func (w *Walker) Run(ctx context.Context, sessionID string) (*domain.TreeSession, error) {
	sessions := w.Engine.Sessions()
	sess, err := sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	redraw := true
	for {
		if err := ctx.Err(); err != nil {
			return sess, err
		}

		view, err := w.Engine.Render(ctx, sess)
		if err != nil {
			return sess, err
		}
		if redraw {
			if err := w.show(view); err != nil {
				return sess, err
			}
		}

		line, err := w.readLine("> ")
		if errors.Is(err, schema.ErrInputTooLarge) || errors.Is(err, schema.ErrInvalidUTF8) {
			fmt.Fprintln(w.out, w.Palette.Error("! "+err.Error()))
			redraw = false
			continue
		}
		if err != nil {
			return sess, err
		}

		next, cmd, err := w.dispatch(ctx, sessions, sess, view, line)
		switch {
		case errors.Is(err, errQuit):
			return sess, nil
		case isInterrupted(err):
			return sess, err
		case err != nil:
			w.reportError(err)
			redraw = false
			continue
		}
		redraw = cmd == cmdMoved
		if next != nil {
			sess = next
		}
	}
}

var errQuit = errors.New("quit")

type command int

const (
	cmdMoved command = iota
	cmdShown
)

func (w *Walker) dispatch(ctx context.Context, sessions *session.Manager, sess *domain.TreeSession, view *domain.RenderedNode, line string) (*domain.TreeSession, command, error) {
	update := func(fn session.UpdateFunc) (*domain.TreeSession, command, error) {
		next, err := sessions.Update(ctx, sess.ID, fn)
		return next, cmdMoved, err
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		switch view.Type {
		case domain.NodeTypeInfo:
			return update(w.Engine.Advance)
		case domain.NodeTypeInput:
			values, err := w.fillForm(view.Inputs)
			if err != nil {
				return nil, cmdShown, err
			}
			return update(func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
				return w.Engine.SubmitInput(ctx, cur, values)
			})
		}
		return nil, cmdShown, nil
	}

	if n, err := strconv.Atoi(fields[0]); err == nil {
		return update(func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
			return w.Engine.SelectOption(ctx, cur, n-1)
		})
	}

	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return nil, cmdShown, errQuit
	case "b", "back":
		return update(w.Engine.GoBack)
	case "r", "reset":
		return update(w.Engine.Reset)
	case "j", "jump":
		if arg == "" {
			return nil, cmdShown, errors.New("usage: j <node>")
		}
		return update(func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
			return w.Engine.JumpToNode(ctx, cur, arg)
		})
	case "d", "drug":
		if len(fields) < 2 {
			return nil, cmdShown, errors.New("usage: d <drug> [hint]")
		}
		drug, err := w.Engine.Content().GetDrug(fields[1])
		if err != nil {
			return nil, cmdShown, err
		}
		return nil, cmdShown, w.print(markdown.Drug(drug, strings.Join(fields[2:], " ")))
	case "i", "info":
		if arg == "" {
			return nil, cmdShown, errors.New("usage: i <page>")
		}
		page, err := w.Engine.Content().GetInfoPage(arg)
		if err != nil {
			return nil, cmdShown, err
		}
		return nil, cmdShown, w.print(markdown.InfoPage(page))
	case "c", "calc":
		if arg == "" {
			return nil, cmdShown, errors.New("usage: c <calculator>")
		}
		return nil, cmdShown, w.calculate(ctx, arg)
	case "t", "transcript":
		tree, err := w.Engine.Content().GetTree(sess.TreeID)
		if err != nil {
			return nil, cmdShown, err
		}
		return nil, cmdShown, w.print(markdown.Transcript(tree, w.Engine.AnswerHistory(sess), nil))
	case "h", "help", "?":
		fmt.Fprintln(w.out, walkHelp)
		return nil, cmdShown, nil
	}
	return nil, cmdShown, fmt.Errorf("unknown command %q (h for help)", fields[0])
}

// show prints a node: the body through the renderer, then options and links.
func (w *Walker) show(view *domain.RenderedNode) error {
	body := *view
	body.Options = nil
	if err := w.print(markdown.Node(&body)); err != nil {
		return err
	}

	for i, opt := range view.Options {
		fmt.Fprintln(w.out, w.Palette.Option(i+1, opt))
	}

	if links := intentHints(view.Intents); len(links) > 0 {
		fmt.Fprintln(w.out, w.Palette.Dim("Links: "+strings.Join(links, "  ")))
	}

	switch {
	case view.Terminal:
		fmt.Fprintln(w.out, w.Palette.Dim("End of pathway. b to go back, r to start over, q to quit."))
	case view.Type == domain.NodeTypeInfo:
		fmt.Fprintln(w.out, w.Palette.Dim("Press enter to continue."))
	case view.Type == domain.NodeTypeInput:
		fmt.Fprintln(w.out, w.Palette.Dim("Press enter to fill in the form."))
	}
	return nil
}

// reportError prints err, one line per refused form field when it has several.
func (w *Walker) reportError(err error) {
	fields := schema.Fields(err)
	if len(fields) < 2 {
		fmt.Fprintln(w.out, w.Palette.Error("! "+err.Error()))
		return
	}
	for _, f := range fields {
		fmt.Fprintln(w.out, w.Palette.Error("! "+f.Error()))
	}
}

func (w *Walker) print(md string) error {
	out, err := w.Render(md)
	if err != nil {
		return err
	}
	fmt.Fprint(w.out, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(w.out)
	}
	return nil
}

// fillForm prompts for every field. Blank answers are left out.
func (w *Walker) fillForm(fields []domain.InputField) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		prompt := f.Label
		if f.Unit != "" {
			prompt += " (" + f.Unit + ")"
		}
		if len(f.Options) > 0 {
			choices := make([]string, len(f.Options))
			for i, o := range f.Options {
				choices[i] = o.Value
			}
			sep := "/"
			if f.Type == domain.InputCheckbox {
				sep = ","
			}
			prompt += " [" + strings.Join(choices, sep) + "]"
		}

		line, err := w.readLine(prompt + ": ")
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}
		values[f.Name] = line
	}
	return values, nil
}

func (w *Walker) readLine(prompt string) (string, error) {
	fmt.Fprint(w.out, prompt)
	line, err := w.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return schema.Sanitize(strings.TrimSpace(line), w.MaxInput)
}

func intentHints(intents []domain.Intent) []string {
	var out []string
	for _, in := range intents {
		switch in.Kind {
		case domain.IntentShowDrug:
			out = append(out, "d "+in.Target)
		case domain.IntentShowInfo:
			out = append(out, "i "+in.Target)
		case domain.IntentShowCalculator:
			out = append(out, "c "+in.Target)
		case domain.IntentNavigateToNode:
			out = append(out, "j "+in.Target)
		case domain.IntentNavigateToTree:
			out = append(out, "walk "+in.Target)
		case domain.IntentScrollToCitation:
		}
	}
	return out
}
