package service

import (
	"context"
	"log/slog"
	"strings"

	"suma/internal/cache"
	"suma/internal/model"
)

// CommentKey derives the cache key for a comment request.
// A task id wins over the text, so identical text under two task ids is
// fetched twice. ok is false when the text is blank.
func CommentKey(taskID, assignmentText string) (key, normalized string, ok bool) {
	normalized = strings.TrimSpace(assignmentText)
	if normalized == "" {
		return "", "", false
	}
	if taskID != "" {
		return "task:" + taskID, normalized, true
	}
	return "text:" + normalized, normalized, true
}

// CommentService resolves AI comments through a value memo over the analysis client.
// Concurrent misses on the same key are not coalesced.
type CommentService struct {
	cache     cache.CommentCache
	client    AnalysisClient
	formatter *CommentFormatter
	logger    *slog.Logger
}

// NewCommentService creates a comment service
func NewCommentService(c cache.CommentCache, client AnalysisClient, formatter *CommentFormatter, logger *slog.Logger) *CommentService {
	return &CommentService{
		cache:     c,
		client:    client,
		formatter: formatter,
		logger:    logger.With("component", "comment_service"),
	}
}

// Formatter exposes the formatter used for labels and messages
func (s *CommentService) Formatter() *CommentFormatter {
	return s.formatter
}

// Resolve returns the comment state for a request.
// The returned error is non-nil only when ctx was cancelled before the
// analysis finished; the state must then be discarded.
func (s *CommentService) Resolve(ctx context.Context, req model.CommentRequest) (model.CommentState, error) {
	key, normalized, ok := CommentKey(string(req.TaskID), req.AssignmentText)
	if !ok {
		return model.CommentState{}, nil
	}

	if comment, hit := s.cached(ctx, key); hit {
		return model.CommentState{Comment: &comment}, nil
	}

	comment, err := s.fetch(ctx, key, normalized)
	if ctx.Err() != nil {
		return model.CommentState{}, ctx.Err()
	}
	if err != nil {
		msg := s.formatter.AnalysisFailed()
		return model.CommentState{Error: &msg}, nil
	}
	return model.CommentState{Comment: &comment}, nil
}

// Lookup probes the cache without touching the network
func (s *CommentService) Lookup(ctx context.Context, taskID, assignmentText string) (string, bool) {
	key, _, ok := CommentKey(taskID, assignmentText)
	if !ok {
		return "", false
	}
	return s.cached(ctx, key)
}

func (s *CommentService) cached(ctx context.Context, key string) (string, bool) {
	comment, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("comment cache read failed", "key", key, "error", err)
		return "", false
	}
	return comment, hit
}

// fetch issues exactly one analysis call and memoizes the formatted result.
// Failures are not cached, so the next request for the key retries.
func (s *CommentService) fetch(ctx context.Context, key, normalized string) (string, error) {
	report, err := s.client.CheckHighOccurrence(ctx, normalized)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("analysis failed", "key", key, "error", err)
		}
		return "", err
	}

	comment := s.formatter.Format(report)
	if err := s.cache.Set(context.WithoutCancel(ctx), key, comment); err != nil {
		s.logger.Warn("comment cache write failed", "key", key, "error", err)
	}
	return comment, nil
}
