package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/facecost/internal/engine"
)

func hasYAMLExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// readDocument decodes the file at path, or stdin when path is empty or "-",
// into v. YAML is accepted for .yaml/.yml files, JSON otherwise.
func readDocument(path string, stdin io.Reader, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return engine.DecodeError(fmt.Errorf("input is empty"))
	}

	if hasYAMLExt(path) {
		if err := yaml.Unmarshal(data, v); err != nil {
			return engine.DecodeError(err)
		}
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return engine.DecodeError(err)
	}
	return nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// fail writes the structured payload of err to w and returns errReported.
func fail(w io.Writer, err error) error {
	_ = writeJSON(w, "", engine.Classify(err))
	return errReported
}
