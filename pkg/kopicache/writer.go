// Package kopicache implements the durable cache writer described in
// spec.md §4.9/§8 (S5): temp-write → fsync → atomic rename, with retry on
// transient sharing violations, orphan-temp cleanup, and a schema_version
// envelope so future format changes can be detected safely by readers.
//
// The writer MUST only be invoked while the caller holds the
// kopilock.CacheWriterScope() lock; readers never acquire a lock and rely
// entirely on the atomic rename for correctness (§4.9 last paragraph).
package kopicache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/kopi-vm/kopi/pkg/kopilock"
)

// Envelope wraps an arbitrary payload with a schema_version so readers can
// detect format changes instead of guessing (SPEC_FULL.md's Durable Cache
// Writer supplement; spec.md's Non-goals exclude cache-format redesign,
// not payload-evolution safety).
type Envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// Writer performs the write path for a single cache file.
type Writer struct {
	Hygiene *kopilock.Hygiene
	Retry   *kopilock.Backoff
}

// NewWriter builds a Writer with the documented default hygiene policy
// and the distinct rename-retry backoff schedule (50ms/2x/1s) §4.9
// mandates for the Windows sharing-violation path.
func NewWriter() *Writer {
	return &Writer{Hygiene: kopilock.NewHygiene(), Retry: kopilock.NewRenameRetryBackoff()}
}

// SaveJSON marshals payload wrapped in an Envelope and durably writes it
// to path, retrying transient rename failures bounded by budget.
func (w *Writer) SaveJSON(path string, schemaVersion int, payload any, budget kopilock.Budget) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal cache payload")
	}
	data, err := json.MarshalIndent(Envelope{SchemaVersion: schemaVersion, Payload: raw}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal cache envelope")
	}
	return w.Save(path, data, budget)
}

// Save durably writes data to path: create a sibling temp file with
// owner-only permissions, write the full payload, fsync it, then
// atomically rename it onto path. Before starting, it best-effort removes
// orphaned temp siblings older than the hygiene threshold (§4.9 "Orphan
// cleanup").
func (w *Writer) Save(path string, data []byte, budget kopilock.Budget) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "create cache directory %q", dir)
	}

	resolvedTimeout, finite := budget.Value().Duration()
	if !finite {
		resolvedTimeout = w.Hygiene.Floor
	}
	w.Hygiene.SweepOrphanTemps(dir, base, w.Hygiene.Threshold(resolvedTimeout))

	tmp, err := os.CreateTemp(dir, base+".tmp")
	if err != nil {
		return &kopilock.CachePersistError{Path: path, Cause: errors.Wrap(err, "create temp file")}
	}
	tmpPath := tmp.Name()
	cleanupTemp := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanupTemp()
		return &kopilock.CachePersistError{Path: path, Cause: errors.Wrap(err, "write temp file")}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanupTemp()
		return &kopilock.CachePersistError{Path: path, Cause: errors.Wrap(err, "fsync temp file")}
	}
	if err := tmp.Close(); err != nil {
		cleanupTemp()
		return &kopilock.CachePersistError{Path: path, Cause: errors.Wrap(err, "close temp file")}
	}

	if err := w.renameWithRetry(tmpPath, path, budget); err != nil {
		cleanupTemp()
		return &kopilock.CachePersistError{Path: path, Cause: err}
	}
	return nil
}

// renameWithRetry performs the atomic rename, retrying only transient
// sharing violations (observed on Windows SMB/UNC paths) with the 50ms/2x
// backoff, bounded by budget's remaining time. Non-transient failures
// (including any on non-Windows platforms, where renameErrorIsTransient
// always returns false) fail immediately.
func (w *Writer) renameWithRetry(tmpPath, finalPath string, budget kopilock.Budget) error {
	for {
		err := os.Rename(tmpPath, finalPath)
		if err == nil {
			return nil
		}
		if !renameErrorIsTransient(err) {
			return errors.Wrap(err, "rename temp file onto cache file")
		}
		remaining, finite := budget.Remaining()
		if finite && remaining <= 0 {
			return errors.Wrap(err, "rename temp file onto cache file: exhausted retry budget")
		}
		sleep := w.Retry.NextClamped(budget)
		if sleep <= 0 {
			return errors.Wrap(err, "rename temp file onto cache file: exhausted retry budget")
		}
		klog.V(2).Infof("kopicache: transient rename failure for %q, retrying in %s: %v", finalPath, sleep, err)
		time.Sleep(sleep)
	}
}

// stripExt is retained for callers that want the cache "name" (without
// extension) for labeling, e.g. in log messages.
func stripExt(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base))
}
