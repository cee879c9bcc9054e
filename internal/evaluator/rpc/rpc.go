// Package rpc exposes the evaluator over the platform's internal RPC layer
// so sibling services can score rankings without going through HTTP.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/proto"
)

// SnapshotSource loads captured rankings for snapshot comparisons.
type SnapshotSource interface {
	Ranking(ctx context.Context, variant, query string) ([]string, error)
	Variants(ctx context.Context, query string) ([]string, error)
}

// Service implements the Evaluator RPC methods.
type Service struct {
	eval      *evaluator.Evaluator
	snapshots SnapshotSource
	logger    *slog.Logger
}

func NewService(eval *evaluator.Evaluator, snapshots SnapshotSource) *Service {
	return &Service{
		eval:      eval,
		snapshots: snapshots,
		logger:    slog.Default().With("component", "evaluator-rpc"),
	}
}

// Register wires the service methods onto the RPC server.
func (s *Service) Register(server *grpc.Server) {
	server.Register("Evaluator.Compare", s.handleCompare)
	server.Register("Evaluator.CompareSnapshots", s.handleCompareSnapshots)
	server.Register("Evaluator.Variants", s.handleVariants)
	server.Register("Evaluator.Health", s.handleHealth)
}

func (s *Service) handleCompare(ctx context.Context, raw json.RawMessage) (any, error) {
	var req proto.CompareRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decoding compare request: %w", err)
	}

	result, err := s.eval.Compare(ctx, evaluator.Request{
		S:           evaluator.FromStrings(req.S),
		T:           evaluator.FromStrings(req.T),
		Measure:     evaluator.Measure(req.Measure),
		Depth:       int(req.Depth),
		Persistence: req.Persistence,
		Extrapolate: req.Extrapolate,
	})
	if err != nil {
		return nil, err
	}
	return toCompareResponse(result), nil
}

func (s *Service) handleCompareSnapshots(ctx context.Context, raw json.RawMessage) (any, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("snapshot store is not configured")
	}
	var req proto.SnapshotCompareRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decoding snapshot compare request: %w", err)
	}
	if req.Query == "" || req.Baseline == "" || req.Candidate == "" {
		return nil, fmt.Errorf("query, baseline and candidate are required")
	}

	sDocs, err := s.snapshots.Ranking(ctx, req.Baseline, req.Query)
	if err != nil {
		return nil, err
	}
	tDocs, err := s.snapshots.Ranking(ctx, req.Candidate, req.Query)
	if err != nil {
		return nil, err
	}

	result, err := s.eval.Compare(ctx, evaluator.Request{
		S:           evaluator.FromStrings(sDocs),
		T:           evaluator.FromStrings(tDocs),
		Measure:     evaluator.Measure(req.Measure),
		Depth:       int(req.Depth),
		Persistence: req.Persistence,
		Extrapolate: req.Extrapolate,
	})
	if err != nil {
		return nil, err
	}
	return toCompareResponse(result), nil
}

func (s *Service) handleVariants(ctx context.Context, raw json.RawMessage) (any, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("snapshot store is not configured")
	}
	var req proto.VariantsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decoding variants request: %w", err)
	}
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	variants, err := s.snapshots.Variants(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	return &proto.VariantsResponse{Query: req.Query, Variants: variants}, nil
}

func (s *Service) handleHealth(ctx context.Context, raw json.RawMessage) (any, error) {
	return &proto.HealthCheckResponse{Status: "SERVING"}, nil
}

func toCompareResponse(result *evaluator.Result) *proto.CompareResponse {
	return &proto.CompareResponse{
		Measure:      string(result.Measure),
		Score:        result.Score,
		SLength:      int32(result.SLength),
		TLength:      int32(result.TLength),
		Common:       int32(result.Common),
		SCoverage:    result.SCoverage,
		TCoverage:    result.TCoverage,
		Depth:        int32(result.Depth),
		Persistence:  result.Persistence,
		Extrapolated: result.Extrapolated,
		LatencyMs:    result.LatencyMs,
	}
}
