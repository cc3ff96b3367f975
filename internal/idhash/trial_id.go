package idhash

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"lightcurve-lab/internal/domain"
)

// ComputeTrialID computes a deterministic trial_id.
// Formula: SHA256(run_id|trial_index|canonical_params_json)
// Returns the base58-encoded hash.
func ComputeTrialID(runID string, index int, params domain.Params) (string, error) {
	// encoding/json sorts map keys, so equal params encode equally.
	canonical, err := json.Marshal(params.Printable())
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	data := fmt.Sprintf("%s|%d|%s", runID, index, canonical)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:]), nil
}
