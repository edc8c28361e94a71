package kopilock

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// markerPayload is written into a fallback marker file when it is
// created, so a human (or the hygiene runner's WARN log) inspecting a
// stuck marker can identify which process and attempt it belonged to.
// PIDs recycle, so CorrelationID — not PID — is the stable identity.
type markerPayload struct {
	PID           int       `json:"pid"`
	StartedAt     time.Time `json:"started_at"`
	CorrelationID string    `json:"correlation_id"`
}

// acquireFallback implements §4.6: atomic os.OpenFile(O_CREATE|O_EXCL) on
// the marker path as the acquisition primitive, generalising the
// teacher's pkg/filelock/filelock.go (NewLock/TryLock/IsLocked/Unlock) to
// the shared pollLoop retry/backoff/cancellation/timeout contract, plus
// hygiene-driven removal of abandoned markers once a wait has concluded.
func acquireFallback(path string, req Request, hygiene *Hygiene) (*Acquisition, error) {
	try := func() (bool, func() error, error) {
		return createMarker(path)
	}

	acq, err := pollLoop(req.Scope, req, BackendFallback, try)
	if err == nil {
		return acq, nil
	}

	// Hygiene only acts once the wait has already concluded (here: a
	// genuine timeout), never during the normal retry loop above, per
	// §4.6 step 4. Success here is a one-shot second chance, not a new
	// wait: the original budget is already exhausted.
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) && hygiene != nil {
		resolvedTimeout, _ := req.Budget.Value().Duration()
		if removed, _ := hygiene.RemoveStaleMarker(path, resolvedTimeout); removed {
			if ok, release, createErr := createMarker(path); createErr == nil && ok {
				return &Acquisition{backend: BackendFallback, budget: req.Budget, release: release}, nil
			}
		}
	}
	return nil, err
}

// createMarker performs one non-blocking create_new attempt against path,
// writing markerPayload on success. ok=false,err=nil means the marker
// already exists (contention, not failure).
func createMarker(path string) (ok bool, release func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil, nil
		}
		return false, nil, err
	}
	payload := markerPayload{PID: os.Getpid(), StartedAt: time.Now(), CorrelationID: uuid.NewString()}
	enc := json.NewEncoder(f)
	if encErr := enc.Encode(payload); encErr != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return false, nil, encErr
	}
	if closeErr := f.Close(); closeErr != nil {
		_ = os.Remove(path)
		return false, nil, closeErr
	}
	release = func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return true, release, nil
}

// readMarker parses a fallback marker's payload, for diagnostics.
func readMarker(path string) (markerPayload, error) {
	var p markerPayload
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	return p, nil
}
