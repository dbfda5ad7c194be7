package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// SetEntry sets key to value in the .env file at path, creating the file if
// needed. Comments, blank lines and the order of other entries are kept; an
// existing "export KEY=" line keeps its export prefix.
func SetEntry(path, key, value string) error {
	if strings.ContainsAny(key, "= \t\n#") || key == "" {
		return fmt.Errorf("invalid env key %q", key)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read dotenv: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	entry := key + "=" + quoteValue(value)
	replaced := false
	for i, line := range lines {
		name, export, ok := entryKey(line)
		if !ok || name != key {
			continue
		}
		if export {
			lines[i] = "export " + entry
		} else {
			lines[i] = entry
		}
		replaced = true
		break
	}
	if !replaced {
		lines = append(lines, entry)
	}

	content := strings.Join(lines, "\n") + "\n"

	// Never leave behind a file the loader can't read back.
	parsed, err := godotenv.Unmarshal(content)
	if err != nil {
		return fmt.Errorf("dotenv would not parse: %w", err)
	}
	if parsed[key] != value {
		return fmt.Errorf("dotenv value for %s does not round-trip", key)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dotenv directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

// entryKey returns the key assigned on line, if any.
func entryKey(line string) (key string, export bool, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false, false
	}
	if rest, found := strings.CutPrefix(trimmed, "export "); found {
		trimmed, export = strings.TrimSpace(rest), true
	}
	k, _, found := strings.Cut(trimmed, "=")
	if !found {
		return "", false, false
	}
	return strings.TrimSpace(k), export, true
}

// quoteValue quotes values the dotenv parser would otherwise split or
// expand. Single quotes are literal; double quotes need escaping.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\"'\\#$=\n") {
		return v
	}
	if !strings.ContainsAny(v, "'\n") {
		return "'" + v + "'"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, `$`, `\$`)
	return `"` + r.Replace(v) + `"`
}
