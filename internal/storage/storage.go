package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Tiliavir/enats/internal/model"
)

// ErrNoLedger is returned when a month has not been processed yet.
var ErrNoLedger = errors.New("no ledger for month")

// BaseDir returns the default data directory (~/.enats).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".enats"), nil
}

// ledgerFilePath returns the path of the month's ledger JSON file.
func ledgerFilePath(base string, month time.Time) string {
	return filepath.Join(base, "ledger", month.Format("2006"), month.Format("01")+".json")
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never see a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// LoadLedger loads the ledger of the given month. It returns ErrNoLedger if
// the month was never processed.
func LoadLedger(base string, month time.Time) (model.Ledger, error) {
	path := ledgerFilePath(base, month)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.Ledger{}, fmt.Errorf("%w %s", ErrNoLedger, month.Format("2006-01"))
	}
	if err != nil {
		return model.Ledger{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var l model.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.Ledger{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return l, nil
}

// SaveLedger atomically writes the ledger of the given month, replacing any
// earlier run.
func SaveLedger(base string, month time.Time, l model.Ledger) (string, error) {
	path := ledgerFilePath(base, month)
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := WriteFileAtomic(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Months lists the months that have a ledger, most recent first.
func Months(base string) ([]time.Time, error) {
	matches, err := filepath.Glob(filepath.Join(base, "ledger", "*", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("storage error listing ledgers: %w", err)
	}
	var months []time.Time
	for _, m := range matches {
		year := filepath.Base(filepath.Dir(m))
		month := filepath.Base(m)
		month = month[:len(month)-len(".json")]
		t, err := time.Parse("2006-01", year+"-"+month)
		if err != nil {
			continue
		}
		months = append(months, t)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })
	return months, nil
}
