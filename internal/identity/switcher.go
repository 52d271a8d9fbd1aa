// Package identity switches the active ssh key and git identity between
// variants and reports the identity git is currently using.
package identity

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/shell"
	"github.com/variant-dev/variant/internal/variant"
)

// Git configuration keys written on every switch.
const (
	KeyUserName   = "user.name"
	KeyUserEmail  = "user.email"
	KeySigningKey = "user.signingkey"
)

// Environment exported by ssh-agent -s.
const (
	EnvAuthSock = "SSH_AUTH_SOCK"
	EnvAgentPID = "SSH_AGENT_PID"
)

var (
	getenvFn = os.Getenv
	setenvFn = os.Setenv
)

// Scope selects which git configuration file receives the identity.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
)

// ParseScope accepts "global" or "local".
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeLocal:
		return ScopeLocal, nil
	default:
		return "", fmt.Errorf("unknown scope %q: must be global or local", s)
	}
}

// Flag returns the git config flag for the scope.
func (s Scope) Flag() string {
	if s == ScopeLocal {
		return "--local"
	}
	return "--global"
}

// Tools names the external binaries the switcher invokes.
type Tools struct {
	Git      string
	SSHAgent string
	SSHAdd   string
}

// DefaultTools resolves the binaries from PATH.
func DefaultTools() Tools {
	return Tools{Git: "git", SSHAgent: "ssh-agent", SSHAdd: "ssh-add"}
}

// Locator finds a variant by name.
type Locator interface {
	FindByName(name string) (*variant.Variant, error)
}

// Switcher drives ssh-agent, ssh-add and git config to activate a variant.
type Switcher struct {
	runner   shell.Runner
	variants Locator
	tools    Tools
}

// NewSwitcher returns a Switcher. Empty tool names fall back to DefaultTools.
func NewSwitcher(runner shell.Runner, variants Locator, tools Tools) *Switcher {
	def := DefaultTools()
	if tools.Git == "" {
		tools.Git = def.Git
	}
	if tools.SSHAgent == "" {
		tools.SSHAgent = def.SSHAgent
	}
	if tools.SSHAdd == "" {
		tools.SSHAdd = def.SSHAdd
	}
	return &Switcher{runner: runner, variants: variants, tools: tools}
}

// Apply activates the named variant. Steps run in order and the first
// failure returns immediately; side effects of earlier steps stay in place.
//
//  1. locate the variant directory
//  2. ssh-agent -s
//  3. ssh-add -D
//  4. ssh-add <private key>
//  5. metadata from the cache, or from p (then written to the cache)
//  6. git config user.name, user.email, user.signingkey at scope
func (s *Switcher) Apply(ctx context.Context, name string, c MetadataCache, p Provider, scope Scope) error {
	logger := log.With().Str("variant", name).Str("scope", string(scope)).Logger()

	v, err := s.variants.FindByName(name)
	if err != nil {
		if errors.Is(err, variant.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrUnknownVariant, err)
		}
		return err
	}
	logger.Debug().Str("step", string(StepLocate)).Str("private", v.Keys.Private).Msg("variant located")

	res, err := s.run(ctx, StepStartAgent, ErrAgentUnavailable, s.tools.SSHAgent, "-s")
	if err != nil {
		return err
	}
	adoptAgentEnv(res.Stdout)
	logger.Debug().Str("step", string(StepStartAgent)).Msg("agent started")

	if _, err := s.run(ctx, StepClearIdentities, ErrAgentUnavailable, s.tools.SSHAdd, "-D"); err != nil {
		return err
	}
	logger.Debug().Str("step", string(StepClearIdentities)).Msg("agent identities cleared")

	if _, err := s.run(ctx, StepRegisterKey, ErrKeyRegistrationFailed, s.tools.SSHAdd, v.Keys.Private); err != nil {
		return err
	}
	logger.Debug().Str("step", string(StepRegisterKey)).Str("path", v.Keys.Private).Msg("key registered")

	meta, err := resolveMetadata(ctx, v.Name, c, p)
	if err != nil {
		return err
	}
	logger.Debug().Str("step", string(StepResolveMetadata)).Str("email", meta.Email).Msg("metadata resolved")

	pairs := [][2]string{
		{KeyUserName, meta.Name},
		{KeyUserEmail, meta.Email},
		{KeySigningKey, v.Keys.Public},
	}
	for _, kv := range pairs {
		if _, err := s.run(ctx, StepCommitConfig, ErrConfigCommitFailed, s.tools.Git, "config", scope.Flag(), kv[0], kv[1]); err != nil {
			return err
		}
		logger.Debug().Str("step", string(StepCommitConfig)).Str("key", kv[0]).Msg("config committed")
	}

	return nil
}

// resolveMetadata prefers the cache. Provider results are written to the
// cache before they are used.
func resolveMetadata(ctx context.Context, username string, c MetadataCache, p Provider) (cache.Metadata, error) {
	cached, err := c.ReadOne(username)
	if err != nil {
		return cache.Metadata{}, err
	}
	if cached != nil {
		return *cached, nil
	}

	if p == nil {
		return cache.Metadata{}, fmt.Errorf("%w: no cached metadata for %s and no provider", ErrMetadataUnavailable, username)
	}

	meta, err := p.Resolve(ctx, username)
	if err != nil {
		return cache.Metadata{}, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}
	meta.Username = username

	if err := c.Write(meta); err != nil {
		return cache.Metadata{}, err
	}
	return meta, nil
}

// run invokes one external command and maps any failure to a StepError.
func (s *Switcher) run(ctx context.Context, step Step, kind error, name string, args ...string) (*shell.Result, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))

	res, err := s.runner.Run(ctx, name, args...)
	if err != nil {
		return nil, &StepError{Step: step, Command: line, Kind: kind, Err: err}
	}
	if !res.Success() {
		return nil, &StepError{Step: step, Command: line, Kind: kind, Output: res.Output()}
	}
	return res, nil
}

// adoptAgentEnv exports the socket and pid printed by ssh-agent -s when this
// process has no agent yet, so the ssh-add calls that follow reach it.
func adoptAgentEnv(out []byte) {
	if getenvFn(EnvAuthSock) != "" {
		return
	}
	for key, value := range parseAgentEnv(out) {
		if err := setenvFn(key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("exporting agent environment")
		}
	}
}

// parseAgentEnv reads Bourne shell output such as
//
//	SSH_AUTH_SOCK=/tmp/ssh-abc/agent.42; export SSH_AUTH_SOCK;
//	SSH_AGENT_PID=43; export SSH_AGENT_PID;
func parseAgentEnv(out []byte) map[string]string {
	env := map[string]string{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		stmt, _, _ := strings.Cut(sc.Text(), ";")
		key, value, ok := strings.Cut(strings.TrimSpace(stmt), "=")
		if !ok {
			continue
		}
		if key == EnvAuthSock || key == EnvAgentPID {
			env[key] = value
		}
	}
	return env
}
