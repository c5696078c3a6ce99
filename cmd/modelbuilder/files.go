package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"visit-model-service/internal/adapters/source"
	"visit-model-service/internal/domain"
)

func readVisits(path string) ([]domain.VisitRecord, []source.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read visits: %w", err)
	}
	defer f.Close()

	recs, rowErrs, err := source.ReadVisits(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read visits %q: %w", path, err)
	}
	logRowErrors(path, rowErrs)
	return recs, rowErrs, nil
}

func readEmployees(path string) ([]domain.EmployeeRecord, []source.RowError, error) {
	if path == "" {
		return nil, nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read employees: %w", err)
	}
	defer f.Close()

	rows, rowErrs, err := source.ReadEmployees(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read employees %q: %w", path, err)
	}
	logRowErrors(path, rowErrs)
	return rows, rowErrs, nil
}

func logRowErrors(path string, rowErrs []source.RowError) {
	for _, e := range rowErrs {
		log.Printf("source row rejected file=%s line=%d err=%v", path, e.Line, e.Err)
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %q: %w", path, err)
	}
	return nil
}

// writeJSON writes v indented to path, or to stdout when path is "-".
func writeJSON(stdout io.Writer, path string, v any) error {
	if path == "-" || path == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write %q: %w", path, err)
		}
	}
	// Readers never observe a partially written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
