// Package proto defines the shared message types used for internal RPC
// communication between services in the Ranking Evaluation Platform.
//
// These types mirror the Protocol Buffer definitions in api/proto/ and are
// hand-written for zero-dependency usage. To regenerate from .proto files:
//
//	protoc --go_out=. --go-grpc_out=. api/proto/**/*.proto
//
// The hand-written types use JSON struct tags for serialization over the
// platform's lightweight JSON-over-TCP RPC layer (see pkg/grpc).
package proto

// ---------- Common ----------

// HealthCheckResponse mirrors the gRPC health check spec.
type HealthCheckResponse struct {
	Status string `json:"status"` // SERVING, NOT_SERVING, UNKNOWN
}

// ---------- Compare ----------

// CompareRequest is the input to the Evaluator.Compare RPC. S and T are
// rankings given best-first; each must be free of duplicates.
type CompareRequest struct {
	S           []string `json:"s"`
	T           []string `json:"t"`
	Measure     string   `json:"measure,omitempty"`
	Depth       int32    `json:"depth,omitempty"`
	Persistence float64  `json:"persistence,omitempty"`
	Extrapolate bool     `json:"extrapolate,omitempty"`
}

// CompareResponse is the output of the Evaluator.Compare RPC.
type CompareResponse struct {
	Measure      string  `json:"measure"`
	Score        float64 `json:"score"`
	SLength      int32   `json:"s_length"`
	TLength      int32   `json:"t_length"`
	Common       int32   `json:"common"`
	SCoverage    float64 `json:"s_coverage"`
	TCoverage    float64 `json:"t_coverage"`
	Depth        int32   `json:"depth,omitempty"`
	Persistence  float64 `json:"persistence,omitempty"`
	Extrapolated bool    `json:"extrapolated,omitempty"`
	LatencyMs    int64   `json:"latency_ms"`
}

// ---------- Snapshots ----------

// SnapshotCompareRequest is the input to the Evaluator.CompareSnapshots RPC.
// Baseline and Candidate name captured ranking variants for the query.
type SnapshotCompareRequest struct {
	Query       string  `json:"query"`
	Baseline    string  `json:"baseline"`
	Candidate   string  `json:"candidate"`
	Measure     string  `json:"measure,omitempty"`
	Depth       int32   `json:"depth,omitempty"`
	Persistence float64 `json:"persistence,omitempty"`
	Extrapolate bool    `json:"extrapolate,omitempty"`
}

// VariantsRequest is the input to the Evaluator.Variants RPC.
type VariantsRequest struct {
	Query string `json:"query"`
}

// VariantsResponse lists the variants with a captured snapshot for a query.
type VariantsResponse struct {
	Query    string   `json:"query"`
	Variants []string `json:"variants"`
}
