package handler

import (
	"net/http"

	"suma/internal/model"
	"suma/internal/service"
)

// CommentHandler serves AI comments for assignments
type CommentHandler struct {
	commentSvc *service.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentSvc *service.CommentService) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

// Resolve handles POST /v1/ai/comment.
// A failed analysis is still a 200: the chip renders the error state.
func (h *CommentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req model.CommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := h.commentSvc.Resolve(r.Context(), req)
	if err != nil {
		// client went away; nothing to publish
		return
	}
	writeJSON(w, http.StatusOK, model.NewCommentResponse(state))
}
