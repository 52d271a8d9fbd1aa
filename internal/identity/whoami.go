package identity

import (
	"bytes"
	"context"
	"strings"

	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/variant"
)

// identityKeys are the git config entries whoami keeps.
var identityKeys = [][]byte{
	[]byte(KeyUserName),
	[]byte(KeyUserEmail),
	[]byte(KeySigningKey),
}

// Whoami lists the git configuration. Unless verbose, only the user.name,
// user.email and user.signingkey lines are kept, each preceded by a newline.
func (s *Switcher) Whoami(ctx context.Context, verbose bool) ([]byte, error) {
	res, err := s.runner.Run(ctx, s.tools.Git, "config", "--list")
	if err != nil {
		return nil, &StepError{Step: StepListConfig, Command: s.tools.Git + " config --list", Kind: ErrProcessFailed, Err: err}
	}
	if !res.Success() {
		return nil, &StepError{Step: StepListConfig, Command: s.tools.Git + " config --list", Kind: ErrProcessFailed, Output: res.Output()}
	}

	if verbose {
		return res.Stdout, nil
	}
	return FilterIdentity(res.Stdout), nil
}

// FilterIdentity keeps the lines of a `git config --list` dump that start
// with one of the identity keys. Matching is a case-sensitive byte prefix.
func FilterIdentity(list []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(list, []byte("\n")) {
		for _, key := range identityKeys {
			if bytes.HasPrefix(line, key) {
				out = append(out, '\n')
				out = append(out, line...)
				break
			}
		}
	}
	return out
}

// Current reads the effective user.name and user.email from git. Missing
// keys are left empty.
func (s *Switcher) Current(ctx context.Context) cache.Metadata {
	return cache.Metadata{
		Name:  s.configValue(ctx, KeyUserName),
		Email: s.configValue(ctx, KeyUserEmail),
	}
}

// Active returns the variant whose public key is the effective
// user.signingkey, or nil when none matches.
func (s *Switcher) Active(ctx context.Context, variants []variant.Variant) *variant.Variant {
	key := s.configValue(ctx, KeySigningKey)
	if key == "" {
		return nil
	}
	for i := range variants {
		if variants[i].Keys.Public == key {
			return &variants[i]
		}
	}
	return nil
}

// configValue returns the trimmed value of key, or "" if git has none.
func (s *Switcher) configValue(ctx context.Context, key string) string {
	res, err := s.runner.Run(ctx, s.tools.Git, "config", "--get", key)
	if err != nil || !res.Success() {
		return ""
	}
	return strings.TrimSpace(string(res.Stdout))
}
