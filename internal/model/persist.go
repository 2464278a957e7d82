package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the on-disk model format: the fitted pipeline plus the
// cross-validation scores recorded when it was trained.
type Artifact struct {
	Pipeline *Pipeline `json:"pipeline"`
	CV       *CVResult `json:"cv,omitempty"`
}

// Save writes the artifact as indented JSON. The file is written via a
// temp file and rename so a crashed run never leaves a truncated
// model.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %v", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace model file: %v", err)
	}
	return nil
}

// Load reads a model artifact and checks it is usable for prediction.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %v", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %v", err)
	}
	if a.Pipeline == nil || a.Pipeline.Scaler == nil {
		return nil, fmt.Errorf("model file %s has no fitted pipeline", path)
	}
	if len(a.Pipeline.Weights) != len(a.Pipeline.Features) {
		return nil, fmt.Errorf("model file %s is inconsistent: %d weights for %d features",
			path, len(a.Pipeline.Weights), len(a.Pipeline.Features))
	}
	return &a, nil
}
