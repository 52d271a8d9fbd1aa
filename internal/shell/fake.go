package shell

import (
	"context"
	"strings"
	"sync"
)

// Call records one invocation seen by a Recorder.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a command line, e.g. "ssh-add -D".
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Recorder is a Runner that records calls and answers from canned responses.
// It is used by tests across packages.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// Responses maps a command line (Call.String) or a bare command name to
	// its result. Lookups try the full line first.
	Responses map[string]*Result

	// Errors maps a command line or name to a start failure.
	Errors map[string]error
}

// NewRecorder returns a Recorder where every command succeeds with no output.
func NewRecorder() *Recorder {
	return &Recorder{
		Responses: make(map[string]*Result),
		Errors:    make(map[string]error),
	}
}

// Run implements Runner.
func (r *Recorder) Run(_ context.Context, name string, args ...string) (*Result, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)

	line := call.String()
	if err, ok := r.Errors[line]; ok {
		return nil, err
	}
	if err, ok := r.Errors[name]; ok {
		return nil, err
	}
	if res, ok := r.Responses[line]; ok {
		return res, nil
	}
	if res, ok := r.Responses[name]; ok {
		return res, nil
	}
	return &Result{}, nil
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Lines returns the recorded calls rendered with Call.String.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}
