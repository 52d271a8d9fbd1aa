package identity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownVariant indicates no variant directory matches the name.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrAgentUnavailable indicates ssh-agent could not be started or cleared.
	ErrAgentUnavailable = errors.New("ssh agent unavailable")

	// ErrKeyRegistrationFailed indicates ssh-add rejected the private key.
	ErrKeyRegistrationFailed = errors.New("key registration failed")

	// ErrMetadataUnavailable indicates the provider could not supply metadata.
	ErrMetadataUnavailable = errors.New("identity metadata unavailable")

	// ErrConfigCommitFailed indicates git config refused a value.
	ErrConfigCommitFailed = errors.New("git config commit failed")

	// ErrProcessFailed indicates a query command exited unsuccessfully.
	ErrProcessFailed = errors.New("external process failed")
)

// Step names the stage of a switch or query that failed.
type Step string

const (
	StepLocate          Step = "locate"
	StepStartAgent      Step = "start-agent"
	StepClearIdentities Step = "clear-identities"
	StepRegisterKey     Step = "register-key"
	StepResolveMetadata Step = "resolve-metadata"
	StepCommitConfig    Step = "commit-config"
	StepListConfig      Step = "list-config"
)

// StepError is an external command failure. Kind is one of the Err*
// sentinels above; Output is the command's raw output.
type StepError struct {
	Step    Step
	Command string
	Kind    error
	Output  []byte
	Err     error // start failure, nil when the command ran and exited non-zero
}

func (e *StepError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Step, e.Kind)
	if e.Command != "" {
		fmt.Fprintf(&b, " (%s)", e.Command)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		fmt.Fprintf(&b, ": %s", out)
	}
	return b.String()
}

// Unwrap exposes both the kind and the start failure to errors.Is.
func (e *StepError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
