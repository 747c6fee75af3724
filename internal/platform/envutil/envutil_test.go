package envutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CATALOGUE_TEST_A=from-file\nCATALOGUE_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CATALOGUE_TEST_A", "from-env")
	t.Setenv("CATALOGUE_TEST_B", "")
	os.Unsetenv("CATALOGUE_TEST_B")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := String("CATALOGUE_TEST_A", ""); got != "from-env" {
		t.Fatalf("A=%q", got)
	}
	if got := String("CATALOGUE_TEST_B", ""); got != "from-file" {
		t.Fatalf("B=%q", got)
	}
	if got := String("CATALOGUE_TEST_UNSET", "def"); got != "def" {
		t.Fatalf("default=%q", got)
	}
}

func TestLoadDotEnvWithoutFiles(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("missing files should be ignored: %v", err)
	}
}
