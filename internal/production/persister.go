package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/exceptx/internal/primitives"
)

// Persister stores and loads traces by id.
type Persister interface {
	Save(ctx context.Context, trace primitives.Trace) error
	Load(ctx context.Context, traceID string) (primitives.Trace, error)
}

// NewPersister returns a file persister for format "json" or "yaml".
func NewPersister(dir, format string) (Persister, error) {
	switch format {
	case "json", "":
		return NewJSONPersister(dir)
	case "yaml", "yml":
		return NewYAMLPersister(dir)
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
}

// JSONPersister is a file-based persister using JSON serialization.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, trace primitives.Trace) error {
	if trace.ID == "" {
		return errors.New("trace id is required")
	}
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	fn := filepath.Join(p.dir, trace.ID+".json")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *JSONPersister) Load(ctx context.Context, traceID string) (primitives.Trace, error) {
	fn := filepath.Join(p.dir, traceID+".json")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return primitives.Trace{}, fmt.Errorf("trace %q: %w", traceID, os.ErrNotExist)
		}
		return primitives.Trace{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var trace primitives.Trace
	if err := json.Unmarshal(data, &trace); err != nil {
		return primitives.Trace{}, fmt.Errorf("json unmarshal: %w", err)
	}
	trace.ID = traceID
	return trace, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, trace primitives.Trace) error {
	if trace.ID == "" {
		return errors.New("trace id is required")
	}
	data, err := yaml.Marshal(trace)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	fn := filepath.Join(p.dir, trace.ID+".yaml")
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *YAMLPersister) Load(ctx context.Context, traceID string) (primitives.Trace, error) {
	fn := filepath.Join(p.dir, traceID+".yaml")
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return primitives.Trace{}, fmt.Errorf("trace %q: %w", traceID, os.ErrNotExist)
		}
		return primitives.Trace{}, fmt.Errorf("read %s: %w", fn, err)
	}

	var trace primitives.Trace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return primitives.Trace{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	trace.ID = traceID
	if len(trace.Kinds) > 0 {
		if _, err := primitives.NewKindTable(trace.Kinds...); err != nil {
			return primitives.Trace{}, fmt.Errorf("kind table validation after load: %w", err)
		}
	}
	return trace, nil
}
