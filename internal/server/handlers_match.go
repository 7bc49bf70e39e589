package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/cache"
	"github.com/jonathan/job-matcher/internal/corpus"
	"github.com/jonathan/job-matcher/internal/experience"
	"github.com/jonathan/job-matcher/internal/logger"
	"github.com/jonathan/job-matcher/internal/matching"
	"github.com/jonathan/job-matcher/internal/types"
)

// MatchRequest is the wire shape of one match call.
type MatchRequest struct {
	CandidateText  string   `json:"candidate_text" validate:"required,min=1"`
	RequiredSkills []string `json:"required_skills,omitempty"`

	Method string `json:"method,omitempty" validate:"omitempty,oneof=transformer tfidf hybrid"`

	// FastMode trades tail recall for latency on large corpora.
	FastMode bool `json:"fast_mode,omitempty"`

	CheckSkills     bool   `json:"check_skills,omitempty"`
	CheckLocation   bool   `json:"check_location,omitempty"`
	CheckExperience bool   `json:"check_experience,omitempty"`
	Location        string `json:"location,omitempty"`
	Category        string `json:"category,omitempty"`
	Level           string `json:"level,omitempty" validate:"omitempty,oneof=intern junior mid senior"`

	FusionWeights *types.Weights `json:"fusion_weights,omitempty"`

	Page    int `json:"page,omitempty" validate:"omitempty,min=1"`
	PerPage int `json:"per_page,omitempty" validate:"omitempty,min=1,max=100"`

	// UserID drives the saved-job annotation; optional.
	UserID string `json:"user_id,omitempty"`
}

// Validate validates the MatchRequest using the validator. Failures come
// back as *ErrValidation naming the first offending field.
func (r *MatchRequest) Validate() error {
	validate := validator.New()
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		f := invalid[0]
		return &ErrValidation{Field: f.Field(), Message: fmt.Sprintf("failed on the '%s' rule", f.Tag())}
	}
	return err
}

// Pagination describes the returned slice of the ranked list.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// MatchResponse is the wire shape of a match result page.
type MatchResponse struct {
	RequestID  string              `json:"request_id"`
	CVInfo     experience.Info     `json:"cv_info"`
	Results    []types.MatchResult `json:"results"`
	Pagination Pagination          `json:"pagination"`
	// HybridInfo is present on freshly computed hybrid responses; cache
	// hits serve the ranked list without recomputing it.
	HybridInfo *types.HybridInfo `json:"hybrid_info,omitempty"`
	Cached     bool              `json:"cached"`
}

// handleMatch runs the matching pipeline for one candidate against the
// live corpus, serving repeated queries from the result cache.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	method := req.Method
	if method == "" {
		method = matching.MethodHybrid
	}
	requestID := uuid.NewString()
	reqLogger := logger.WithRequest(s.logger, requestID, method)

	query := cache.Query{
		Skills:          req.RequiredSkills,
		Location:        req.Location,
		Category:        req.Category,
		Level:           req.Level,
		ReviewText:      req.CandidateText,
		Method:          method,
		CheckSkills:     req.CheckSkills,
		CheckLocation:   req.CheckLocation,
		CheckExperience: req.CheckExperience,
	}

	var hybridInfo *types.HybridInfo
	full, hit, err := s.results.GetOrCompute(r.Context(), query.Key(), func(ctx context.Context) ([]types.MatchResult, error) {
		jobs, err := s.provider.Jobs(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		reqLogger.Debug("scoring corpus",
			zap.Int(logger.FieldJobs, len(jobs)),
			zap.String("candidate", logger.TruncateForLog(req.CandidateText, 80)))

		resp, err := s.engine.Match(ctx, matching.Request{
			CandidateText:  req.CandidateText,
			RequiredSkills: req.RequiredSkills,
			Jobs:           jobs,
			Options: matching.Options{
				Method:          method,
				FastMode:        req.FastMode,
				CheckSkills:     req.CheckSkills,
				CheckLocation:   req.CheckLocation,
				CheckExperience: req.CheckExperience,
				Location:        req.Location,
				Category:        req.Category,
				Level:           req.Level,
				Weights:         s.effectiveWeights(req.FusionWeights),
			},
		})
		if err != nil {
			return nil, err
		}
		hybridInfo = resp.HybridInfo
		return resp.JobMatches, nil
	})
	if err != nil {
		reqLogger.Error("match failed", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = s.cfg.DefaultPerPage
	}
	results := cache.Page(full, page, perPage)
	if results == nil {
		results = []types.MatchResult{}
	}

	// Saved-job flags reflect the caller's live list even on cache hits.
	if req.UserID != "" {
		saved, err := s.provider.SavedJobIDs(r.Context(), req.UserID)
		if err != nil {
			reqLogger.Warn("saved-jobs lookup failed", zap.Error(err))
		} else {
			corpus.AnnotateSaved(results, saved)
		}
	}

	s.jsonResponse(w, http.StatusOK, MatchResponse{
		RequestID:  requestID,
		CVInfo:     experience.Extract(req.CandidateText),
		Results:    results,
		Pagination: Pagination{Page: page, PerPage: perPage, Total: len(full)},
		HybridInfo: hybridInfo,
		Cached:     hit,
	})
}

// effectiveWeights resolves request weights over the service-wide override.
func (s *Server) effectiveWeights(reqWeights *types.Weights) *types.Weights {
	if reqWeights != nil {
		return reqWeights
	}
	return s.cfg.Weights
}
