package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
)

func TestSetEntry_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := SetEntry(path, "API_KEY", "secret123"); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if !strings.Contains(string(data), "API_KEY=secret123") {
		t.Errorf("expected API_KEY=secret123, got:\n%s", data)
	}
}

func TestSetEntry_UpdateExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	initial := "# comment\nFOO=bar\nBAZ=qux\n"
	if err := os.WriteFile(path, []byte(initial), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := SetEntry(path, "FOO", "updated"); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "FOO=updated") {
		t.Errorf("expected FOO=updated, got:\n%s", content)
	}
	if !strings.Contains(content, "# comment") {
		t.Error("comment was lost")
	}
	if !strings.Contains(content, "BAZ=qux") {
		t.Error("other entries were lost")
	}
}

func TestSetEntry_AppendsNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	initial := "EXISTING=value\n"
	if err := os.WriteFile(path, []byte(initial), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := SetEntry(path, "NEW_KEY", "new_value"); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "EXISTING=value") {
		t.Error("existing entry was lost")
	}
	if !strings.Contains(content, "NEW_KEY=new_value") {
		t.Errorf("new entry not found, got:\n%s", content)
	}
}

func TestSetEntry_QuotesSpecialChars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := SetEntry(path, "TOKEN", "value with spaces"); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if !strings.Contains(string(data), `TOKEN='value with spaces'`) {
		t.Errorf("expected quoted value, got:\n%s", data)
	}
}

func TestSetEntry_Permissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := SetEntry(path, "KEY", "val"); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestSetEntry_RoundTripsThroughLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	values := map[string]string{
		"PLAIN":  "age1abc",
		"DOLLAR": "pa$$word",
		"QUOTE":  `it's "quoted" here`,
		"EMPTY":  "",
	}
	for k, v := range values {
		if err := SetEntry(path, k, v); err != nil {
			t.Fatalf("SetEntry %s: %v", k, err)
		}
	}

	got, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for k, v := range values {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestSetEntry_RefusesValueTheLoaderCannotRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := SetEntry(path, "KEEP", "me"); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	// Both quote kinds force double quotes, and godotenv drops a
	// trailing escaped quote.
	if err := SetEntry(path, "QUOTE", `it's "quoted"`); err == nil {
		t.Fatal("expected error for a value that does not round-trip")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "KEEP=me\n" {
		t.Errorf("file changed after refused write:\n%s", data)
	}
}

func TestSetEntry_KeepsExportPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("export TASKBOARD_BACKUP_RECIPIENT=old\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := SetEntry(path, RecipientEnv, "age1new"); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "export TASKBOARD_BACKUP_RECIPIENT=age1new\n" {
		t.Errorf("unexpected content:\n%s", data)
	}
}

func TestSetEntry_RejectsBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	for _, key := range []string{"", "A B", "A=B"} {
		if err := SetEntry(path, key, "v"); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected keys should not create the file")
	}
}
