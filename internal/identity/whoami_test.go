package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/variant-dev/variant/internal/shell"
	"github.com/variant-dev/variant/internal/variant"
)

const configList = "user.name=A\ncore.editor=vim\nuser.email=b@c\n"

func TestWhoami_Filtered(t *testing.T) {
	runner := shell.NewRecorder()
	runner.Responses["git config --list"] = &shell.Result{Stdout: []byte(configList)}
	s := NewSwitcher(runner, nil, Tools{})

	out, err := s.Whoami(context.Background(), false)
	if err != nil {
		t.Fatalf("Whoami: %v", err)
	}
	if got, want := string(out), "\nuser.name=A\nuser.email=b@c"; got != want {
		t.Errorf("Whoami = %q, want %q", got, want)
	}
}

func TestWhoami_Verbose(t *testing.T) {
	runner := shell.NewRecorder()
	runner.Responses["git config --list"] = &shell.Result{Stdout: []byte(configList)}
	s := NewSwitcher(runner, nil, Tools{})

	out, err := s.Whoami(context.Background(), true)
	if err != nil {
		t.Fatalf("Whoami: %v", err)
	}
	if string(out) != configList {
		t.Errorf("verbose output = %q, want raw listing", out)
	}
}

func TestWhoami_ProcessFailed(t *testing.T) {
	runner := shell.NewRecorder()
	runner.Responses["git config --list"] = &shell.Result{ExitCode: 128, Stdout: []byte("fatal: not a repo")}
	s := NewSwitcher(runner, nil, Tools{})

	_, err := s.Whoami(context.Background(), false)
	if !errors.Is(err, ErrProcessFailed) {
		t.Fatalf("expected ErrProcessFailed, got: %v", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || string(stepErr.Output) != "fatal: not a repo" {
		t.Errorf("expected raw output on StepError, got %v", err)
	}
}

func TestWhoami_ProcessFailedStderr(t *testing.T) {
	runner := shell.NewRecorder()
	runner.Responses["git config --list"] = &shell.Result{ExitCode: 1, Stderr: []byte("fatal: unable to read config file")}
	s := NewSwitcher(runner, nil, Tools{})

	_, err := s.Whoami(context.Background(), false)
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got: %v", err)
	}
	if string(stepErr.Output) != "fatal: unable to read config file" {
		t.Errorf("output = %q, want git's stderr", stepErr.Output)
	}
}

func TestFilterIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "none", in: "core.editor=vim\n", want: ""},
		{name: "signing key", in: "user.signingkey=/k.pub\n", want: "\nuser.signingkey=/k.pub"},
		{name: "case sensitive", in: "User.Name=X\n", want: ""},
		{name: "prefix only", in: "alias.user.name=x\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(FilterIdentity([]byte(tt.in))); got != tt.want {
				t.Errorf("FilterIdentity(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCurrentAndActive(t *testing.T) {
	runner := shell.NewRecorder()
	runner.Responses["git config --get user.name"] = &shell.Result{Stdout: []byte("Jane\n")}
	runner.Responses["git config --get user.email"] = &shell.Result{Stdout: []byte("jane@x\n")}
	runner.Responses["git config --get user.signingkey"] = &shell.Result{Stdout: []byte("/h/.ssh/work/k.pub\n")}
	s := NewSwitcher(runner, nil, Tools{})

	cur := s.Current(context.Background())
	if cur.Name != "Jane" || cur.Email != "jane@x" {
		t.Errorf("Current = %+v", cur)
	}

	variants := []variant.Variant{
		{Name: "personal", Keys: variant.KeyPair{Public: "/h/.ssh/personal/k.pub"}},
		{Name: "work", Keys: variant.KeyPair{Public: "/h/.ssh/work/k.pub"}},
	}
	active := s.Active(context.Background(), variants)
	if active == nil || active.Name != "work" {
		t.Errorf("Active = %+v, want work", active)
	}
}

func TestActive_Unset(t *testing.T) {
	runner := shell.NewRecorder()
	runner.Responses["git config --get user.signingkey"] = &shell.Result{ExitCode: 1}
	s := NewSwitcher(runner, nil, Tools{})

	variants := []variant.Variant{{Name: "work", Keys: variant.KeyPair{Public: ""}}}
	if active := s.Active(context.Background(), variants); active != nil {
		t.Errorf("Active = %+v, want nil", active)
	}
}
