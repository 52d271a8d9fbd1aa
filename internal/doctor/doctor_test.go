package doctor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/variant-dev/variant/internal/identity"
)

// writeVariant creates root/name/id_ed25519{,.pub} with the given private key mode.
func writeVariant(t *testing.T, root, name string, perm os.FileMode) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	priv := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(priv, []byte("private"), perm); err != nil {
		t.Fatal(err)
	}
	// WriteFile is subject to umask; set the mode explicitly.
	if err := os.Chmod(priv, perm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(priv+".pub", []byte("public"), 0644); err != nil {
		t.Fatal(err)
	}
	return priv
}

func newContext(t *testing.T) *CheckContext {
	t.Helper()
	return &CheckContext{
		SSHRoot:   t.TempDir(),
		CachePath: filepath.Join(t.TempDir(), ".variant"),
		Tools:     identity.DefaultTools(),
	}
}

func TestSSHRootCheck(t *testing.T) {
	ctx := newContext(t)
	if res := NewSSHRootCheck().Run(ctx); res.Status != StatusOK {
		t.Errorf("existing root: status = %v, want ok", res.Status)
	}

	ctx.SSHRoot = filepath.Join(ctx.SSHRoot, "missing")
	res := NewSSHRootCheck().Run(ctx)
	if res.Status != StatusError {
		t.Errorf("missing root: status = %v, want error", res.Status)
	}
	if res.FixHint == "" {
		t.Error("missing root should carry a fix hint")
	}
}

func TestKeyPairCheck(t *testing.T) {
	t.Run("no variants", func(t *testing.T) {
		ctx := newContext(t)
		if res := NewKeyPairCheck().Run(ctx); res.Status != StatusWarning {
			t.Errorf("status = %v, want warning", res.Status)
		}
	})

	t.Run("usable", func(t *testing.T) {
		ctx := newContext(t)
		writeVariant(t, ctx.SSHRoot, "work", 0600)
		writeVariant(t, ctx.SSHRoot, "home", 0400)
		res := NewKeyPairCheck().Run(ctx)
		if res.Status != StatusOK {
			t.Errorf("status = %v (%s), want ok", res.Status, res.Message)
		}
	})

	t.Run("readable by others", func(t *testing.T) {
		ctx := newContext(t)
		writeVariant(t, ctx.SSHRoot, "work", 0644)
		res := NewKeyPairCheck().Run(ctx)
		if res.Status != StatusWarning {
			t.Errorf("status = %v, want warning", res.Status)
		}
		if len(res.Details) != 1 {
			t.Errorf("details = %v, want one entry", res.Details)
		}
	})

	t.Run("private key missing", func(t *testing.T) {
		ctx := newContext(t)
		priv := writeVariant(t, ctx.SSHRoot, "work", 0600)
		if err := os.Remove(priv); err != nil {
			t.Fatal(err)
		}
		if res := NewKeyPairCheck().Run(ctx); res.Status != StatusError {
			t.Errorf("status = %v, want error", res.Status)
		}
	})

	t.Run("discovery fails", func(t *testing.T) {
		ctx := newContext(t)
		if err := os.MkdirAll(filepath.Join(ctx.SSHRoot, "empty"), 0700); err != nil {
			t.Fatal(err)
		}
		res := NewKeyPairCheck().Run(ctx)
		if res.Status != StatusError || len(res.Details) == 0 {
			t.Errorf("result = %+v, want error with details", res)
		}
	})
}

func TestRun_FixRestrictsKeys(t *testing.T) {
	ctx := newContext(t)
	priv := writeVariant(t, ctx.SSHRoot, "work", 0644)

	results := Run(ctx, []Check{NewKeyPairCheck()}, true)
	if results[0].Status != StatusOK {
		t.Errorf("status after fix = %v (%v), want ok", results[0].Status, results[0].Details)
	}

	info, err := os.Stat(priv)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %04o, want 0600", info.Mode().Perm())
	}
}

func TestRun_WithoutFixLeavesKeys(t *testing.T) {
	ctx := newContext(t)
	priv := writeVariant(t, ctx.SSHRoot, "work", 0644)

	results := Run(ctx, []Check{NewKeyPairCheck()}, false)
	if results[0].Status != StatusWarning {
		t.Errorf("status = %v, want warning", results[0].Status)
	}
	info, err := os.Stat(priv)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %04o, want unchanged 0644", info.Mode().Perm())
	}
}

func TestToolsCheck(t *testing.T) {
	orig := lookPathFn
	t.Cleanup(func() { lookPathFn = orig })

	ctx := newContext(t)

	lookPathFn = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	if res := NewToolsCheck().Run(ctx); res.Status != StatusOK {
		t.Errorf("all found: status = %v, want ok", res.Status)
	}

	lookPathFn = func(file string) (string, error) {
		if file == "ssh-agent" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + file, nil
	}
	res := NewToolsCheck().Run(ctx)
	if res.Status != StatusError {
		t.Errorf("missing tool: status = %v, want error", res.Status)
	}
	if len(res.Details) != 1 || res.Details[0] != "ssh-agent" {
		t.Errorf("details = %v, want [ssh-agent]", res.Details)
	}
}

func TestCacheCheck(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		ctx := newContext(t)
		if res := NewCacheCheck().Run(ctx); res.Status != StatusOK {
			t.Errorf("status = %v, want ok", res.Status)
		}
		if _, err := os.Stat(ctx.CachePath); !os.IsNotExist(err) {
			t.Error("check must not create the cache file")
		}
	})

	t.Run("corrupt", func(t *testing.T) {
		ctx := newContext(t)
		if err := os.WriteFile(ctx.CachePath, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		if res := NewCacheCheck().Run(ctx); res.Status != StatusError {
			t.Errorf("status = %v, want error", res.Status)
		}
	})

	t.Run("orphans", func(t *testing.T) {
		ctx := newContext(t)
		writeVariant(t, ctx.SSHRoot, "work", 0600)
		data := `[{"name":"A","email":"a@x.io","username":"work"},{"name":"B","email":"b@x.io","username":"gone"}]`
		if err := os.WriteFile(ctx.CachePath, []byte(data), 0600); err != nil {
			t.Fatal(err)
		}
		res := NewCacheCheck().Run(ctx)
		if res.Status != StatusWarning {
			t.Errorf("status = %v, want warning", res.Status)
		}
		if len(res.Details) != 1 || res.Details[0] != "gone" {
			t.Errorf("details = %v, want [gone]", res.Details)
		}
	})
}

func TestWorst(t *testing.T) {
	results := []*CheckResult{{Status: StatusOK}, {Status: StatusWarning}}
	if got := Worst(results); got != StatusWarning {
		t.Errorf("Worst = %v, want warning", got)
	}
	results = append(results, &CheckResult{Status: StatusError})
	if got := Worst(results); got != StatusError {
		t.Errorf("Worst = %v, want error", got)
	}
	if got := Worst(nil); got != StatusOK {
		t.Errorf("Worst(nil) = %v, want ok", got)
	}
}

func TestDefaultChecks(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range DefaultChecks() {
		if seen[c.Name()] {
			t.Errorf("duplicate check %q", c.Name())
		}
		seen[c.Name()] = true
		if c.Description() == "" {
			t.Errorf("check %q has no description", c.Name())
		}
	}
	if len(seen) != 4 {
		t.Errorf("got %d checks, want 4", len(seen))
	}
}
