// Package doctor checks that the ssh directory, keys, tools and cache are in
// a state variant can switch with.
package doctor

import (
	"os/exec"

	"github.com/variant-dev/variant/internal/identity"
)

// Status is the outcome of a check.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// CheckContext carries the resolved paths and tools to every check.
type CheckContext struct {
	SSHRoot   string
	CachePath string
	Tools     identity.Tools
}

// CheckResult is what a check found.
type CheckResult struct {
	Name    string
	Status  Status
	Message string
	Details []string
	FixHint string
}

// Check is one diagnostic.
type Check interface {
	Name() string
	Description() string
	Run(ctx *CheckContext) *CheckResult
}

// Fixer is a Check that can repair what it finds.
type Fixer interface {
	Check
	Fix(ctx *CheckContext) error
}

// BaseCheck provides Name and Description.
type BaseCheck struct {
	CheckName        string
	CheckDescription string
}

func (b *BaseCheck) Name() string        { return b.CheckName }
func (b *BaseCheck) Description() string { return b.CheckDescription }

// lookPathFn is swapped in tests.
var lookPathFn = exec.LookPath

// DefaultChecks returns the checks run by `variant doctor`.
func DefaultChecks() []Check {
	return []Check{
		NewSSHRootCheck(),
		NewKeyPairCheck(),
		NewToolsCheck(),
		NewCacheCheck(),
	}
}

// Run executes checks in order. With fix set, a failing Fixer is repaired
// and run again so the result reflects the repair.
func Run(ctx *CheckContext, checks []Check, fix bool) []*CheckResult {
	results := make([]*CheckResult, 0, len(checks))
	for _, c := range checks {
		res := c.Run(ctx)
		if fix && res.Status != StatusOK {
			if f, ok := c.(Fixer); ok {
				if err := f.Fix(ctx); err != nil {
					res.Details = append(res.Details, "fix failed: "+err.Error())
				} else {
					res = c.Run(ctx)
				}
			}
		}
		results = append(results, res)
	}
	return results
}

// Worst returns the most severe status in results.
func Worst(results []*CheckResult) Status {
	worst := StatusOK
	for _, r := range results {
		if r.Status > worst {
			worst = r.Status
		}
	}
	return worst
}
