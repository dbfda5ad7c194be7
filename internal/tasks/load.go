package tasks

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/tasks.schema.json
var snapshotSchemaJSON []byte

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("tasks.schema.json", bytes.NewReader(snapshotSchemaJSON)); err != nil {
			snapshotSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile("tasks.schema.json")
	})
	return snapshotSchema, snapshotSchemaErr
}

// Source tells where the startup collection came from.
type Source string

const (
	SourcePersisted Source = "persisted"
	SourceSeed      Source = "seed"
)

// DecodeSnapshot parses a persisted snapshot. It fails unless data is a
// non-empty, schema-valid JSON array of tasks with unique ids.
func DecodeSnapshot(data []byte) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	schema, err := compiledSnapshotSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("validate snapshot: %s", schemaMessage(err))
	}

	var out []Task
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}

	seen := make(map[int64]struct{}, len(out))
	for _, t := range out {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return out, nil
}

// schemaMessage flattens a validation error into its leaf messages.
func schemaMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}

// Load returns the persisted collection when it is valid and non-empty,
// and seed otherwise. Storage problems never fail startup.
func Load(p Persister, seed []Task) ([]Task, Source) {
	if p == nil {
		return seed, SourceSeed
	}
	data, err := p.Load()
	if err != nil {
		slog.Warn("load persisted tasks", "error", err)
		return seed, SourceSeed
	}
	if data == nil {
		slog.Debug("no persisted tasks, using seed")
		return seed, SourceSeed
	}
	tasks, err := DecodeSnapshot(data)
	if err != nil {
		slog.Debug("persisted tasks unusable, using seed", "error", err)
		return seed, SourceSeed
	}
	return tasks, SourcePersisted
}

// seedFile is the YAML layout of a custom seed list.
type seedFile struct {
	Tasks []Task `yaml:"tasks"`
}

// LoadSeedFile reads a YAML seed list. An empty path returns the built-in seed.
func LoadSeedFile(path string) ([]Task, error) {
	if path == "" {
		return Seed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("unmarshal seed file: %w", err)
	}
	if len(sf.Tasks) == 0 {
		return nil, fmt.Errorf("seed file %s has no tasks", path)
	}

	seen := make(map[int64]struct{}, len(sf.Tasks))
	for i, t := range sf.Tasks {
		if !t.Priority.Valid() {
			return nil, fmt.Errorf("seed task %d: %w: %q", i, ErrInvalidPriority, t.Priority)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("seed task %d: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return sf.Tasks, nil
}
