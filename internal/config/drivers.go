package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"gopkg.in/yaml.v3"
)

// NewDriver picks the encoding from the file extension. Anything but .json is YAML.
func NewDriver[T any](filePath string, defaults T) Driver[T] {
	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		return NewJSON(filePath, defaults)
	}
	return NewYAML(filePath, defaults)
}

type decoder interface {
	Decode(v any) error
}

type encoder interface {
	Encode(v any) error
}

type file[T any] struct {
	filePath string
	defaults T
}

func (f file[T]) Exists() (bool, error) {
	return core.FileExists(f.filePath)
}

func (f file[T]) read(newDecoder func(io.Reader) decoder) (T, error) {
	fd, err := os.Open(f.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f.defaults, nil
		}
		return f.defaults, err
	}
	defer fd.Close()

	value := f.defaults
	if err := newDecoder(fd).Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			return f.defaults, nil
		}
		return f.defaults, fmt.Errorf("%s: %w", f.filePath, err)
	}
	return value, nil
}

func (f file[T]) write(value T, newEncoder func(io.Writer) encoder) error {
	if err := os.MkdirAll(filepath.Dir(f.filePath), 0755); err != nil {
		return err
	}

	filePathTmp := f.filePath + ".tmp"
	fd, err := os.OpenFile(filePathTmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	enc := newEncoder(fd)
	if err := enc.Encode(value); err != nil {
		fd.Close()
		return err
	}
	if closer, ok := enc.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			fd.Close()
			return err
		}
	}
	if err := fd.Close(); err != nil {
		return err
	}

	return os.Rename(filePathTmp, f.filePath)
}

func NewYAML[T any](filePath string, defaults T) YAML[T] {
	return YAML[T]{file[T]{filePath: filePath, defaults: defaults}}
}

type YAML[T any] struct {
	file[T]
}

func (y YAML[T]) Read() (T, error) {
	return y.read(func(r io.Reader) decoder { return yaml.NewDecoder(r) })
}

func (y YAML[T]) Write(value T) error {
	return y.write(value, func(w io.Writer) encoder { return yaml.NewEncoder(w) })
}

func NewJSON[T any](filePath string, defaults T) JSON[T] {
	return JSON[T]{file[T]{filePath: filePath, defaults: defaults}}
}

type JSON[T any] struct {
	file[T]
}

func (j JSON[T]) Read() (T, error) {
	return j.read(func(r io.Reader) decoder { return json.NewDecoder(r) })
}

func (j JSON[T]) Write(value T) error {
	return j.write(value, func(w io.Writer) encoder {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc
	})
}

// Memory keeps the value in memory, for tests and dry runs.
type Memory[T any] struct {
	mu     sync.RWMutex
	value  T
	exists bool
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{}
}

func (m *Memory[T]) Exists() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists, nil
}

func (m *Memory[T]) Read() (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, nil
}

func (m *Memory[T]) Write(value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.exists = true
	return nil
}
