// Package cache persists the git identity bound to each variant.
package cache

import (
	"fmt"
	"strings"
)

// FileName is the cache file created in the home directory.
const FileName = ".variant"

// Metadata is the human identity committed to git for a variant.
type Metadata struct {
	// Name is the full name, e.g. "Jane Doe".
	Name string `json:"name"`

	// Email is the address written to user.email.
	Email string `json:"email"`

	// Username is the variant name this identity belongs to.
	Username string `json:"username"`
}

// Validate checks that m is complete enough to commit to git.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.Username) == "" {
		return ErrInvalidUsername
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidMetadata)
	}
	if !strings.Contains(m.Email, "@") {
		return fmt.Errorf("%w: email %q has no @", ErrInvalidMetadata, m.Email)
	}
	return nil
}
