package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/variant-dev/variant/internal/cache"
)

func TestResolve_Lines(t *testing.T) {
	var out bytes.Buffer
	p := &Provider{In: strings.NewReader("Jane Doe\njane@x\n"), Out: &out}

	m, err := p.Resolve(context.Background(), "work")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := cache.Metadata{Name: "Jane Doe", Email: "jane@x", Username: "work"}
	if m != want {
		t.Errorf("Resolve = %+v, want %+v", m, want)
	}
	if !strings.Contains(out.String(), "e.g. John Doe") {
		t.Errorf("prompt not written, got %q", out.String())
	}
}

func TestResolve_LinesWithoutTrailingNewline(t *testing.T) {
	p := &Provider{In: strings.NewReader("Jane\njane@x"), Out: &bytes.Buffer{}}

	m, err := p.Resolve(context.Background(), "work")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Email != "jane@x" {
		t.Errorf("email = %q", m.Email)
	}
}

func TestResolve_LinesUseSuggestion(t *testing.T) {
	var out bytes.Buffer
	p := &Provider{
		In:      strings.NewReader("\nother@x\n"),
		Out:     &out,
		Suggest: cache.Metadata{Name: "Jane", Email: "jane@x"},
	}

	m, err := p.Resolve(context.Background(), "work")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Name != "Jane" || m.Email != "other@x" {
		t.Errorf("Resolve = %+v", m)
	}
	if !strings.Contains(out.String(), "[Jane]") {
		t.Errorf("suggestion not shown, got %q", out.String())
	}
}

func TestResolve_LinesErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "no input", input: "", wantErr: ErrAborted},
		{name: "missing email", input: "Jane\n", wantErr: ErrAborted},
		{name: "empty name", input: "\njane@x\n", wantErr: cache.ErrInvalidMetadata},
		{name: "bad email", input: "Jane\njane\n", wantErr: cache.ErrInvalidMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Provider{In: strings.NewReader(tt.input), Out: &bytes.Buffer{}}
			_, err := p.Resolve(context.Background(), "work")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func press(m tea.Model, k tea.KeyType) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

func TestFormModel_Completes(t *testing.T) {
	var m tea.Model = newFormModel("work", cache.Metadata{})

	m = typeText(m, "Jane")
	m, _ = press(m, tea.KeyEnter)
	if fm := m.(formModel); fm.focus != 1 {
		t.Fatalf("focus = %d, want 1 after first enter", fm.focus)
	}

	m = typeText(m, "jane@x")
	m, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	fm := m.(formModel)
	if !fm.done {
		t.Fatal("form should be done")
	}
	want := cache.Metadata{Name: "Jane", Email: "jane@x", Username: "work"}
	if got := fm.metadata(); got != want {
		t.Errorf("metadata = %+v, want %+v", got, want)
	}
	if fm.View() != "" {
		t.Error("finished form should render nothing")
	}
}

func TestFormModel_ValidationKeepsFocus(t *testing.T) {
	var m tea.Model = newFormModel("work", cache.Metadata{})

	m, _ = press(m, tea.KeyEnter)
	fm := m.(formModel)
	if fm.focus != 0 {
		t.Errorf("focus moved past an empty name")
	}
	if !errors.Is(fm.err, cache.ErrInvalidMetadata) {
		t.Errorf("err = %v, want ErrInvalidMetadata", fm.err)
	}
	if !strings.Contains(fm.View(), "name is empty") {
		t.Errorf("view should show the validation error:\n%s", fm.View())
	}
}

func TestFormModel_SuggestionOnEmpty(t *testing.T) {
	var m tea.Model = newFormModel("work", cache.Metadata{Name: "Jane", Email: "jane@x"})

	m, _ = press(m, tea.KeyEnter)
	m, _ = press(m, tea.KeyEnter)

	fm := m.(formModel)
	if !fm.done {
		t.Fatalf("form should accept suggestions, err = %v", fm.err)
	}
	if got := fm.metadata(); got.Name != "Jane" || got.Email != "jane@x" {
		t.Errorf("metadata = %+v", got)
	}
}

func TestFormModel_Abort(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		var m tea.Model = newFormModel("work", cache.Metadata{})
		m, cmd := press(m, k)
		if cmd == nil {
			t.Errorf("%v: expected quit command", k)
		}
		if !m.(formModel).aborted {
			t.Errorf("%v: form should be aborted", k)
		}
	}
}
