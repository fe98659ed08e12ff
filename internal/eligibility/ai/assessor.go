// Package ai calls the optional AI reviewer for a second opinion on an
// eligibility decision. The reviewer is advisory: any failure - network,
// timeout, bad response, missing configuration - degrades to an unknown
// opinion and never blocks the deterministic decision path.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/pkg/config"
	"github.com/talentflow/talentflow-backend/pkg/logger"
)

// Assessor requests an independent eligibility opinion from a remote model
// endpoint.
type Assessor struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewAssessor creates an assessor. Returns nil when no endpoint is
// configured; callers treat a nil assessor as permanently unavailable.
func NewAssessor(cfg *config.AIConfig, log *logger.Logger) *Assessor {
	if !cfg.Enabled() {
		return nil
	}
	return &Assessor{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("ai-assessor"),
	}
}

// assessRequest is the wire request for the model endpoint.
type assessRequest struct {
	Facts        domain.PermitFacts `json:"facts"`
	EvidenceText string             `json:"evidence_text,omitempty"`
}

// assessResponse is the wire response from the model endpoint.
type assessResponse struct {
	Status      string   `json:"status"`
	Explanation string   `json:"explanation"`
	MissingInfo []string `json:"missing_info"`
}

// Assess requests an opinion on the given facts. It never returns an error:
// every failure mode collapses to the unknown opinion, logged for operators.
func (a *Assessor) Assess(ctx context.Context, facts domain.PermitFacts, evidenceText string) domain.AiOpinion {
	if a == nil {
		return domain.UnknownOpinion()
	}

	opinion, err := a.assess(ctx, facts, evidenceText)
	if err != nil {
		a.logger.Warn().Err(err).Msg("AI assessment unavailable, continuing with rules only")
		return domain.UnknownOpinion()
	}
	return opinion
}

func (a *Assessor) assess(ctx context.Context, facts domain.PermitFacts, evidenceText string) (domain.AiOpinion, error) {
	body, err := json.Marshal(assessRequest{Facts: facts, EvidenceText: evidenceText})
	if err != nil {
		return domain.AiOpinion{}, fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/v1/assess", bytes.NewReader(body))
	if err != nil {
		return domain.AiOpinion{}, fmt.Errorf("ai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.AiOpinion{}, fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AiOpinion{}, fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.AiOpinion{}, fmt.Errorf("ai: endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed assessResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.AiOpinion{}, fmt.Errorf("ai: parse response: %w", err)
	}

	status := domain.Status(parsed.Status)
	switch status {
	case domain.StatusEligible, domain.StatusNotEligible, domain.StatusNeedsReview:
	default:
		return domain.AiOpinion{}, fmt.Errorf("ai: unexpected status %q", parsed.Status)
	}

	return domain.AiOpinion{
		Status:      status,
		Explanation: parsed.Explanation,
		MissingInfo: parsed.MissingInfo,
	}, nil
}
