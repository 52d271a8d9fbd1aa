// Package variant discovers git identity profiles from the ssh directory.
//
// Every immediate subdirectory of ~/.ssh is a variant named after the
// directory. It holds one key pair: a private key file and its ".pub"
// sibling. A file named "config" and OpenSSH certificates ("-cert.pub") are
// ignored.
//
//	~/.ssh/
//	  work/
//	    id_ed25519
//	    id_ed25519.pub
//	    config
//	  personal/
//	    id_rsa
//	    id_rsa.pub
package variant

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

const (
	// ConfigFileName is skipped when looking for keys.
	ConfigFileName = "config"

	// PublicKeySuffix marks the public half of a key pair.
	PublicKeySuffix = ".pub"

	// CertificateSuffix marks an OpenSSH certificate next to a key pair.
	// Certificates are skipped like config.
	CertificateSuffix = "-cert.pub"

	// RootDirName is the convention root under the home directory.
	RootDirName = ".ssh"
)

var (
	// ErrNoHome indicates the home directory cannot be resolved.
	ErrNoHome = errors.New("cannot find home directory")

	// ErrNoRoot indicates the ssh directory is missing or not a directory.
	ErrNoRoot = errors.New("cannot find ssh config directory")

	// ErrInvalidName indicates a variant directory name is not valid UTF-8.
	ErrInvalidName = errors.New("invalid variant directory name")

	// ErrNoPrivateKey indicates a variant directory has no ".pub" file.
	ErrNoPrivateKey = errors.New("cannot find private key")

	// ErrAmbiguousKeyPair indicates a variant directory holds more than one key pair.
	ErrAmbiguousKeyPair = errors.New("more than one key pair found")

	// ErrNotFound indicates no variant has the requested name.
	ErrNotFound = errors.New("variant not found")
)

// userHomeDir is swapped in tests.
var userHomeDir = os.UserHomeDir

// KeyPair holds the absolute paths of a variant's keys.
type KeyPair struct {
	Public  string
	Private string
}

// Variant is one git identity profile.
type Variant struct {
	// Name is the directory name under the ssh root.
	Name string

	// Dir is the absolute path of the variant directory.
	Dir string

	// Keys is the variant's key pair.
	Keys KeyPair
}

// DefaultRoot returns <home>/.ssh.
func DefaultRoot() (string, error) {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return "", ErrNoHome
	}
	return filepath.Join(home, RootDirName), nil
}

// Discoverer scans a convention root for variants. Nothing is cached between
// scans.
type Discoverer struct {
	// Root overrides the convention root. Empty means <home>/.ssh.
	Root string
}

// NewDiscoverer returns a Discoverer for root. An empty root resolves to
// <home>/.ssh at scan time.
func NewDiscoverer(root string) *Discoverer {
	return &Discoverer{Root: root}
}

func (d *Discoverer) root() (string, error) {
	if d == nil || d.Root == "" {
		return DefaultRoot()
	}
	return filepath.Abs(d.Root)
}

// DiscoverAll returns every variant under the root. A single malformed
// variant directory fails the whole scan.
func (d *Discoverer) DiscoverAll() ([]Variant, error) {
	root, err := d.root()
	if err != nil {
		return nil, err
	}
	return Scan(root)
}

// FindByName returns the variant with the given name. An exact match wins.
// Otherwise names are compared after NFC normalization, so a decomposed name
// from the filesystem matches the same name typed on the command line.
func (d *Discoverer) FindByName(name string) (*Variant, error) {
	variants, err := d.DiscoverAll()
	if err != nil {
		return nil, err
	}

	for i := range variants {
		if variants[i].Name == name {
			return &variants[i], nil
		}
	}

	want := norm.NFC.String(name)
	for i := range variants {
		if norm.NFC.String(variants[i].Name) == want {
			return &variants[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Scan enumerates the immediate subdirectories of root. Symlinked
// directories count as variants.
func Scan(root string) ([]Variant, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoRoot, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	variants := []Variant{}
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		name := entry.Name()
		if !utf8.ValidString(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}

		keys, err := ResolveKeyPair(dir)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", name, err)
		}

		log.Debug().Str("variant", name).Str("private", keys.Private).Msg("discovered variant")
		variants = append(variants, Variant{Name: name, Dir: dir, Keys: keys})
	}

	return variants, nil
}

// ResolveKeyPair finds the key pair in dir. The ".pub" file names the pair;
// the private key is the same path without the suffix. The private key's
// existence is not checked here: a missing file surfaces when ssh-add runs.
func ResolveKeyPair(dir string) (KeyPair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return KeyPair{}, fmt.Errorf("reading %s: %w", dir, err)
	}

	var found []string
	for _, entry := range entries {
		name := entry.Name()
		if name == ConfigFileName || strings.HasSuffix(name, CertificateSuffix) {
			continue
		}
		if name == PublicKeySuffix || !strings.HasSuffix(name, PublicKeySuffix) {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		found = append(found, path)
	}

	switch len(found) {
	case 0:
		return KeyPair{}, fmt.Errorf("%w in %s", ErrNoPrivateKey, dir)
	case 1:
		return KeyPair{
			Public:  found[0],
			Private: strings.TrimSuffix(found[0], PublicKeySuffix),
		}, nil
	default:
		return KeyPair{}, fmt.Errorf("%w in %s: %s", ErrAmbiguousKeyPair, dir, strings.Join(baseNames(found), ", "))
	}
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
