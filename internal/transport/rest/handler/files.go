package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"suma/internal/service"
)

// FileHandler serves course documents
type FileHandler struct {
	files *service.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Get handles GET /files/{path}
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.files.Open(mux.Vars(r)["path"])
	switch {
	case errors.Is(err, service.ErrFileNotSpecified):
		writeError(w, http.StatusBadRequest, "File not specified")
		return
	case errors.Is(err, service.ErrPathOutsideBase):
		writeError(w, http.StatusNotFound, "Not found")
		return
	case err != nil:
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+f.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}
