package kopilock

import (
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"
)

// Hygiene implements the best-effort cleanup of stale fallback-backend
// marker files and orphaned cache temp siblings described in §4.6/§4.9.
// One implementation serves both call sites, since both are
// "age-threshold-based best-effort deletion of a well-known filename
// pattern" — see SPEC_FULL.md's Hygiene Runner module.
//
// Hygiene errors are logged at WARN and never propagated as user-facing
// failures (§7).
type Hygiene struct {
	// SafetyFactor and Floor together compute the age threshold beyond
	// which a marker/temp file is considered abandoned:
	// threshold = max(resolvedTimeout * SafetyFactor, Floor).
	//
	// SafetyFactor defaults to 3: a marker has to be at least three times
	// older than whatever timeout the CURRENT waiter resolved before
	// hygiene will touch it, so a legitimate holder that is merely slow
	// (but within a few multiples of a typical timeout) is never at risk
	// of having its marker pruned out from under it. Floor defaults to
	// 30s so a very short resolved timeout (e.g. Finite(0) contention
	// probes) can never produce a near-zero threshold that races a
	// genuinely fast, legitimate holder.
	SafetyFactor float64
	Floor        time.Duration
}

// NewHygiene builds a Hygiene runner with the documented default policy.
func NewHygiene() *Hygiene {
	return &Hygiene{SafetyFactor: 3, Floor: 30 * time.Second}
}

// Threshold computes the age beyond which a marker associated with the
// given resolved timeout is considered stale.
func (h *Hygiene) Threshold(resolvedTimeout time.Duration) time.Duration {
	t := time.Duration(float64(resolvedTimeout) * h.SafetyFactor)
	if t < h.Floor {
		return h.Floor
	}
	return t
}

// staleByAge reports whether path's mtime age exceeds threshold. A
// missing file is not stale (nothing to clean up); stat errors other
// than not-exist are surfaced so callers can log them.
func staleByAge(path string, threshold time.Duration) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return time.Since(info.ModTime()) > threshold, nil
}

// RemoveStaleMarker removes path if its age exceeds the threshold derived
// from resolvedTimeout. It MUST only be called once the caller has already
// concluded a normal wait (e.g. after pollLoop returns a TimeoutError),
// never speculatively during an in-progress retry loop, per §4.6.
func (h *Hygiene) RemoveStaleMarker(path string, resolvedTimeout time.Duration) (removed bool, err error) {
	stale, err := staleByAge(path, h.Threshold(resolvedTimeout))
	if err != nil {
		klog.Warningf("kopilock: hygiene could not stat fallback marker %q: %v", path, err)
		return false, err
	}
	if !stale {
		return false, nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		klog.Warningf("kopilock: hygiene could not remove stale fallback marker %q: %v", path, err)
		return false, err
	}
	klog.Warningf("kopilock: hygiene removed stale fallback marker %q (older than %s)", path, h.Threshold(resolvedTimeout))
	return true, nil
}

// SweepOrphanTemps removes siblings of base matching base+".tmpXXXX" in
// dir whose age exceeds threshold, used by the durable cache writer
// before starting a new write (§4.9) and by any periodic hygiene pass.
func (h *Hygiene) SweepOrphanTemps(dir, base string, threshold time.Duration) {
	matches, err := filepath.Glob(filepath.Join(dir, base+".tmp*"))
	if err != nil {
		klog.Warningf("kopilock: hygiene could not glob orphan temps for %q: %v", base, err)
		return
	}
	for _, m := range matches {
		stale, err := staleByAge(m, threshold)
		if err != nil {
			klog.Warningf("kopilock: hygiene could not stat orphan temp %q: %v", m, err)
			continue
		}
		if !stale {
			continue
		}
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			klog.Warningf("kopilock: hygiene could not remove orphan temp %q: %v", m, err)
			continue
		}
		klog.V(2).Infof("kopilock: hygiene removed orphan cache temp %q", m)
	}
}
