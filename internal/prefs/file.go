package prefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileKV stores preferences in a YAML file, e.g. ~/.config/mindtab/prefs.yaml.
type FileKV struct {
	path string
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// DefaultPath is prefs.yaml under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mindtab", "prefs.yaml"), nil
}

// Load returns an empty map when the file does not exist yet.
func (kv *FileKV) Load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(kv.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	err = yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", kv.path, err)
	}
	return values, nil
}

// Save merges values into the file, writing through a temp file and rename.
func (kv *FileKV) Save(ctx context.Context, values map[string]string) error {
	current, err := kv.Load(ctx)
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}

	data, err := yaml.Marshal(current)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(kv.path), 0o755)
	if err != nil {
		return err
	}

	tmp := kv.path + ".tmp"
	err = os.WriteFile(tmp, data, 0o600)
	if err != nil {
		return err
	}
	return os.Rename(tmp, kv.path)
}
