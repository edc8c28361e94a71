// Package kopijdk implements the installed-scope resolver (spec.md
// §4.10): deriving the same LockScope an install used, from an already
// installed JDK directory, so uninstall of that JDK serialises against
// any concurrent install/uninstall of the same coordinate.
package kopijdk

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Metadata is the strict JSON document written to <jdks>/<slug>/.meta.json
// at install time: distribution, version, build identifiers, platform
// tuple, and install provenance, per spec.md §6.
type Metadata struct {
	Distribution      string `json:"distribution"`
	Version           string `json:"version"`
	BuildIdentifier   string `json:"build_identifier,omitempty"`
	OS                string `json:"os,omitempty"`
	Arch              string `json:"arch,omitempty"`
	Libc              string `json:"libc,omitempty"`
	InstallProvenance string `json:"install_provenance,omitempty"`
}

// ErrCorrupt is wrapped into the returned error when .meta.json exists
// but fails strict parsing; callers treat it identically to "missing"
// (§4.10: "Corrupt metadata is treated as absent; the resolver never
// mutates or repairs files").
var ErrCorrupt = errors.New("jdk metadata is corrupt")

// ReadMetadata strictly parses path: unknown fields are rejected, since
// spec.md §3 requires ".meta.json" to be "strictly parsed."
func ReadMetadata(path string) (Metadata, error) {
	var m Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err // callers distinguish os.IsNotExist themselves
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return m, errors.Wrapf(ErrCorrupt, "%s: %v", path, err)
	}
	if m.Distribution == "" || m.Version == "" {
		return m, errors.Wrapf(ErrCorrupt, "%s: missing required distribution/version fields", path)
	}
	return m, nil
}
