package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CASHBOOK_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CASHBOOK_TEST_VALUE", "")
	os.Unsetenv("CASHBOOK_TEST_VALUE")

	LoadEnvFile(path)

	if got := os.Getenv("CASHBOOK_TEST_VALUE"); got != "from-file" {
		t.Fatalf("value = %q, want from-file", got)
	}
}

func TestLoadEnvFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CASHBOOK_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CASHBOOK_TEST_VALUE", "from-env")

	LoadEnvFile(path)

	if got := os.Getenv("CASHBOOK_TEST_VALUE"); got != "from-env" {
		t.Fatalf("value = %q, want from-env", got)
	}
}

func TestLoadEnvFileMissingIsIgnored(t *testing.T) {
	LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
}

func TestSetupLoggerUnknownLevel(t *testing.T) {
	if l := SetupLogger("chatty", "test"); l.Component() != "test" {
		t.Fatalf("component = %q", l.Component())
	}
}
