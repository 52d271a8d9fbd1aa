package cmd

import (
	"os"

	"github.com/variant-dev/variant/internal/cache"
	"github.com/variant-dev/variant/internal/config"
	"github.com/variant-dev/variant/internal/identity"
	"github.com/variant-dev/variant/internal/prompt"
	"github.com/variant-dev/variant/internal/shell"
	"github.com/variant-dev/variant/internal/variant"
)

// Seams replaced by tests.
var (
	newRunner = func() shell.Runner {
		return &shell.ExecRunner{Stdin: os.Stdin, Stderr: os.Stderr}
	}
	newProvider = func(suggest cache.Metadata) identity.Provider {
		return prompt.NewProvider(suggest)
	}
)

// env is what the commands need, resolved from cfg.
type env struct {
	sshRoot    string
	cachePath  string
	tools      identity.Tools
	discoverer *variant.Discoverer
	switcher   *identity.Switcher
}

func newEnv() (*env, error) {
	sshRoot, err := config.ExpandHome(cfg.SSHRoot)
	if err != nil {
		return nil, err
	}
	cachePath, err := config.ExpandHome(cfg.CachePath)
	if err != nil {
		return nil, err
	}

	tools := identity.Tools{
		Git:      cfg.Commands.Git,
		SSHAgent: cfg.Commands.SSHAgent,
		SSHAdd:   cfg.Commands.SSHAdd,
	}
	discoverer := variant.NewDiscoverer(sshRoot)

	return &env{
		sshRoot:    sshRoot,
		cachePath:  cachePath,
		tools:      tools,
		discoverer: discoverer,
		switcher:   identity.NewSwitcher(newRunner(), discoverer, tools),
	}, nil
}
