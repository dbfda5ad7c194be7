package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	content := `# Storage
TB_DB_HOST=localhost
TB_DB_PORT=3306

# Quoted values
TB_SECRET="my-secret-value"
TB_SINGLE='single-quoted'
`

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"TB_DB_HOST", "TB_DB_PORT", "TB_SECRET", "TB_SINGLE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key, want string
	}{
		{"TB_DB_HOST", "localhost"},
		{"TB_DB_PORT", "3306"},
		{"TB_SECRET", "my-secret-value"},
		{"TB_SINGLE", "single-quoted"},
	}

	for _, tt := range tests {
		got := os.Getenv(tt.key)
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadDotenvNoOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(`TB_EXISTING=new-value`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TB_EXISTING", "original")

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TB_EXISTING"); got != "original" {
		t.Errorf("expected existing var to be preserved, got %q", got)
	}

	if err := ReloadDotenv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TB_EXISTING"); got != "new-value" {
		t.Errorf("expected reload to override, got %q", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv("/nonexistent/.env"); err != nil {
		t.Errorf("missing file should be silently ignored, got: %v", err)
	}
	if err := ReloadDotenv("/nonexistent/.env"); err != nil {
		t.Errorf("missing file should be silently ignored on reload, got: %v", err)
	}
}
