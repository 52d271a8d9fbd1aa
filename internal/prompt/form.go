package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/style"
)

// field is one question in the form.
type field struct {
	key        string
	label      string
	suggestion func(cache.Metadata) string
	validate   func(string) error
}

var fields = []field{
	{
		key:        "name",
		label:      "git metadata name to set in config (e.g. John Doe)?",
		suggestion: func(m cache.Metadata) string { return m.Name },
		validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: name is empty", cache.ErrInvalidMetadata)
			}
			return nil
		},
	},
	{
		key:        "email",
		label:      "git metadata email to set in config (e.g. john.doe@example.com)?",
		suggestion: func(m cache.Metadata) string { return m.Email },
		validate: func(s string) error {
			if !strings.Contains(s, "@") {
				return fmt.Errorf("%w: email %q has no @", cache.ErrInvalidMetadata, s)
			}
			return nil
		},
	},
}

// formModel is the bubbletea model behind the interactive prompt.
type formModel struct {
	username string
	suggest  cache.Metadata
	inputs   []textinput.Model
	focus    int
	err      error
	done     bool
	aborted  bool
}

func newFormModel(username string, suggest cache.Metadata) formModel {
	m := formModel{username: username, suggest: suggest}
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 256
		ti.Placeholder = f.suggestion(suggest)
		if i == 0 {
			ti.Focus()
		}
		m.inputs = append(m.inputs, ti)
	}
	return m
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the focused field and moves on, or finishes on the last one.
func (m formModel) submit() (tea.Model, tea.Cmd) {
	value := m.value(m.focus)
	if err := fields[m.focus].validate(value); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil

	if m.focus == len(m.inputs)-1 {
		m.done = true
		return m, tea.Quit
	}

	m.inputs[m.focus].Blur()
	m.focus++
	return m, m.inputs[m.focus].Focus()
}

// value is the trimmed answer for field i, falling back to the suggestion.
func (m formModel) value(i int) string {
	v := strings.TrimSpace(m.inputs[i].Value())
	if v == "" {
		v = fields[i].suggestion(m.suggest)
	}
	return v
}

func (m formModel) metadata() cache.Metadata {
	return cache.Metadata{
		Name:     m.value(0),
		Email:    m.value(1),
		Username: m.username,
	}
}

func (m formModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", style.Heading.Render("No identity cached for variant"), style.Variant.Render(m.username))
	for i, f := range fields {
		if i > m.focus {
			break
		}
		fmt.Fprintf(&b, "%s\n%s\n", f.label, m.inputs[i].View())
	}
	if m.err != nil {
		fmt.Fprintf(&b, "\n%s %v\n", style.ErrorPrefix, m.err)
	}
	fmt.Fprintf(&b, "\n%s\n", style.Hint.Render("enter to confirm, esc to cancel"))
	return b.String()
}
