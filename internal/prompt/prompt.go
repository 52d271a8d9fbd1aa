// Package prompt asks the user for the git identity of a variant.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/variant-dev/variant/internal/cache"
)

// ErrAborted is returned when the user cancels the prompt or input ends early.
var ErrAborted = errors.New("aborted")

var isTerminalFn = term.IsTerminal

// Provider asks for a name and email on the terminal. It satisfies
// identity.Provider.
type Provider struct {
	// In is read for answers. A terminal gets the interactive form; anything
	// else is read line by line.
	In io.Reader

	// Out receives the prompts.
	Out io.Writer

	// Suggest holds values accepted when an answer is left empty.
	Suggest cache.Metadata
}

// NewProvider prompts on stdin and writes to stderr, keeping stdout for
// command output.
func NewProvider(suggest cache.Metadata) *Provider {
	return &Provider{In: os.Stdin, Out: os.Stderr, Suggest: suggest}
}

// Resolve asks for the identity of username.
func (p *Provider) Resolve(ctx context.Context, username string) (cache.Metadata, error) {
	if f, ok := p.In.(*os.File); ok && isTerminalFn(int(f.Fd())) {
		return p.runForm(ctx, username)
	}
	return p.readLines(username)
}

func (p *Provider) runForm(ctx context.Context, username string) (cache.Metadata, error) {
	model := newFormModel(username, p.Suggest)
	prog := tea.NewProgram(model,
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
		tea.WithContext(ctx),
	)

	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return cache.Metadata{}, ErrAborted
		}
		return cache.Metadata{}, fmt.Errorf("running prompt: %w", err)
	}

	fm, ok := final.(formModel)
	if !ok || fm.aborted || !fm.done {
		return cache.Metadata{}, ErrAborted
	}
	return fm.metadata(), nil
}

// readLines is the non-interactive path used for pipes and redirected input.
func (p *Provider) readLines(username string) (cache.Metadata, error) {
	r := bufio.NewReader(p.In)
	values := make([]string, len(fields))

	for i, f := range fields {
		label := f.label
		if s := f.suggestion(p.Suggest); s != "" {
			label = fmt.Sprintf("%s [%s]", label, s)
		}
		fmt.Fprintf(p.Out, "%s ", label)

		line, err := r.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return cache.Metadata{}, fmt.Errorf("reading %s: %w", f.key, err)
			}
			if line == "" {
				return cache.Metadata{}, fmt.Errorf("%w: input ended before %s", ErrAborted, f.key)
			}
		}

		value := strings.TrimSpace(line)
		if value == "" {
			value = f.suggestion(p.Suggest)
		}
		if err := f.validate(value); err != nil {
			return cache.Metadata{}, err
		}
		values[i] = value
	}

	return cache.Metadata{Name: values[0], Email: values[1], Username: username}, nil
}
