package blob

import "encoding/json"

// JobDescription is one sub-job entry in a meta-job's job-description
// metadata list: `{name, trust_id, seed_id, algo_id, params}`. The richer
// shape (name + params map) is adopted over the simpler
// `(alpha, trust_id, seed_id)` variant seen in the original source —
// Alpha/Delta live inside Params, see pkg/algorithm.
type JobDescription struct {
	Name    string            `json:"name"`
	TrustID string            `json:"trust_id"`
	SeedID  string            `json:"seed_id"`
	AlgoID  uint32            `json:"algo_id"`
	Params  map[string]string `json:"params"`
}

// JobResult is one sub-job entry in a meta-job's job-result metadata
// list: `{scores_id, commitment}`.
type JobResult struct {
	ScoresID   string `json:"scores_id"`
	Commitment string `json:"commitment"`
}

// EncodeJobDescriptions marshals a job-description list.
func EncodeJobDescriptions(jobs []JobDescription) ([]byte, error) {
	return json.Marshal(jobs)
}

// DecodeJobDescriptions unmarshals a job-description list.
func DecodeJobDescriptions(data []byte) ([]JobDescription, error) {
	var jobs []JobDescription
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// EncodeJobResults marshals a job-result list.
func EncodeJobResults(results []JobResult) ([]byte, error) {
	return json.Marshal(results)
}

// DecodeJobResults unmarshals a job-result list.
func DecodeJobResults(data []byte) ([]JobResult, error) {
	var results []JobResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return results, nil
}
