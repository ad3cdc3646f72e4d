package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TextbookCoverage summarizes textbook cross-references found for an assignment
type TextbookCoverage struct {
	MatchesFound *int `json:"matches_found,omitempty"`
}

// AnalysisReport is the high-occurrence report returned by the analysis endpoint
type AnalysisReport struct {
	IsHighOccurrence bool              `json:"is_high_occurrence"`
	TextbookCoverage *TextbookCoverage `json:"textbook_coverage,omitempty"`
	QuizSimilarity   *float64          `json:"quiz_similarity"`
	Confidence       *float64          `json:"confidence"`
}

// Matches returns the textbook match count, 0 when the service omitted it
func (r *AnalysisReport) Matches() int {
	if r == nil || r.TextbookCoverage == nil || r.TextbookCoverage.MatchesFound == nil {
		return 0
	}
	return *r.TextbookCoverage.MatchesFound
}

// AnalysisRequest is the body sent to the high-occurrence endpoint
type AnalysisRequest struct {
	AssignmentText string   `json:"assignment_text"`
	QuizTexts      []string `json:"quiz_texts,omitempty"`
}

// TaskID identifies an assignment. Dashboards send it as a JSON string or
// number; numbers are kept in decimal form and 0 or null mean no task.
type TaskID string

// UnmarshalJSON accepts a string, a number or null
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("taskId must be a string or a number: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("taskId must be a string or a number: %w", err)
	}
	if f == 0 {
		*id = ""
		return nil
	}
	if i, err := n.Int64(); err == nil {
		*id = TaskID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = TaskID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// CommentRequest asks for the AI comment of an assignment.
// TaskID is optional; when set it takes precedence over the text for caching.
type CommentRequest struct {
	TaskID         TaskID `json:"taskId"`
	AssignmentText string `json:"assignmentText"`
}

// CommentState mirrors what a comment chip renders
type CommentState struct {
	Comment *string `json:"comment"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

const (
	// CommentLoadingLabel is shown while the analysis is in flight
	CommentLoadingLabel = "AI 分析中..."
	// CommentUnavailableLabel is shown when no annotation could be produced
	CommentUnavailableLabel = "AI 無法取得分析"
)

// Label returns the chip text for the state
func (s CommentState) Label() string {
	switch {
	case s.Loading:
		return CommentLoadingLabel
	case s.Error != nil:
		return CommentUnavailableLabel
	case s.Comment != nil && *s.Comment != "":
		return *s.Comment
	default:
		return CommentUnavailableLabel
	}
}

// CommentResponse is the REST/WS view of a CommentState
type CommentResponse struct {
	CommentState
	Label string `json:"label"`
}

// NewCommentResponse attaches the derived label to a state
func NewCommentResponse(s CommentState) CommentResponse {
	return CommentResponse{CommentState: s, Label: s.Label()}
}
