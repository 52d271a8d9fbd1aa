package doctor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/variant"
)

// privateKeyPerm is what ssh-add accepts without complaint.
const privateKeyPerm = 0600

// SSHRootCheck verifies the convention root exists.
type SSHRootCheck struct {
	BaseCheck
}

// NewSSHRootCheck creates a new ssh root check.
func NewSSHRootCheck() *SSHRootCheck {
	return &SSHRootCheck{BaseCheck{
		CheckName:        "ssh-root",
		CheckDescription: "Verify the ssh directory exists",
	}}
}

// Run checks that ctx.SSHRoot is a directory.
func (c *SSHRootCheck) Run(ctx *CheckContext) *CheckResult {
	info, err := os.Stat(ctx.SSHRoot)
	if err != nil || !info.IsDir() {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%s is not a directory", ctx.SSHRoot),
			FixHint: "Create it and add one subdirectory per variant holding a key pair",
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: ctx.SSHRoot,
	}
}

// KeyPairCheck verifies every variant has a usable private key. Discovery
// only looks at the ".pub" file, so a missing or world-readable private key
// would otherwise show up as an ssh-add failure mid-switch.
type KeyPairCheck struct {
	BaseCheck
}

// NewKeyPairCheck creates a new key pair check.
func NewKeyPairCheck() *KeyPairCheck {
	return &KeyPairCheck{BaseCheck{
		CheckName:        "key-pairs",
		CheckDescription: "Verify each variant has a private key with safe permissions",
	}}
}

// Run scans variants and inspects each private key.
func (c *KeyPairCheck) Run(ctx *CheckContext) *CheckResult {
	variants, err := variant.Scan(ctx.SSHRoot)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Variant discovery failed",
			Details: []string{err.Error()},
			FixHint: "Each variant directory needs exactly one <key>/<key>.pub pair",
		}
	}
	if len(variants) == 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "No variants found",
			FixHint: fmt.Sprintf("Create %s/<name>/ with a key pair", ctx.SSHRoot),
		}
	}

	var missing, open []string
	for _, v := range variants {
		info, err := os.Stat(v.Keys.Private)
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, fmt.Sprintf("%s: %s is missing", v.Name, filepath.Base(v.Keys.Private)))
			continue
		}
		if info.Mode().Perm()&0077 != 0 {
			open = append(open, fmt.Sprintf("%s: %s has mode %04o", v.Name, filepath.Base(v.Keys.Private), info.Mode().Perm()))
		}
	}

	switch {
	case len(missing) > 0:
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%d variant(s) without a private key", len(missing)),
			Details: append(missing, open...),
			FixHint: "Put the private key next to its .pub file",
		}
	case len(open) > 0:
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d private key(s) readable by others", len(open)),
			Details: open,
			FixHint: "Run 'variant doctor --fix' to chmod them 0600",
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d variant(s) with usable keys", len(variants)),
	}
}

// Fix restricts private keys to their owner.
func (c *KeyPairCheck) Fix(ctx *CheckContext) error {
	variants, err := variant.Scan(ctx.SSHRoot)
	if err != nil {
		return err
	}
	for _, v := range variants {
		info, err := os.Stat(v.Keys.Private)
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0077 != 0 {
			if err := os.Chmod(v.Keys.Private, privateKeyPerm); err != nil {
				return fmt.Errorf("chmod %s: %w", v.Keys.Private, err)
			}
		}
	}
	return nil
}

// ToolsCheck verifies git, ssh-agent and ssh-add can be found.
type ToolsCheck struct {
	BaseCheck
}

// NewToolsCheck creates a new tools check.
func NewToolsCheck() *ToolsCheck {
	return &ToolsCheck{BaseCheck{
		CheckName:        "tools",
		CheckDescription: "Verify git, ssh-agent and ssh-add are installed",
	}}
}

// Run looks each tool up on PATH.
func (c *ToolsCheck) Run(ctx *CheckContext) *CheckResult {
	var missing []string
	for _, tool := range []string{ctx.Tools.Git, ctx.Tools.SSHAgent, ctx.Tools.SSHAdd} {
		if _, err := lookPathFn(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Required tools not found",
			Details: missing,
			FixHint: "Install git and OpenSSH, or set [commands] in the config file",
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: "git, ssh-agent and ssh-add found",
	}
}

// CacheCheck verifies the metadata cache is readable.
type CacheCheck struct {
	BaseCheck
}

// NewCacheCheck creates a new cache check.
func NewCacheCheck() *CacheCheck {
	return &CacheCheck{BaseCheck{
		CheckName:        "cache",
		CheckDescription: "Verify the metadata cache parses",
	}}
}

// Run reads the cache without creating it and flags entries with no variant.
func (c *CacheCheck) Run(ctx *CheckContext) *CheckResult {
	if _, err := os.Stat(ctx.CachePath); os.IsNotExist(err) {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusOK,
			Message: "No cache file (will be created on first switch)",
		}
	}

	list, err := cache.Open(ctx.CachePath).ReadAll()
	if err != nil {
		hint := "Check the file permissions"
		if errors.Is(err, cache.ErrCorrupt) {
			hint = fmt.Sprintf("Fix or delete %s; identities will be asked for again", ctx.CachePath)
		}
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Cache is unreadable",
			Details: []string{err.Error()},
			FixHint: hint,
		}
	}

	known := map[string]bool{}
	if variants, err := variant.Scan(ctx.SSHRoot); err == nil {
		for _, v := range variants {
			known[v.Name] = true
		}
	}
	var orphans []string
	for _, m := range list {
		if !known[m.Username] {
			orphans = append(orphans, m.Username)
		}
	}
	if len(orphans) > 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d cached identities without a variant directory", len(orphans)),
			Details: orphans,
		}
	}

	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d cached identities", len(list)),
	}
}
