package service

import (
	"os"
	"path/filepath"
	"strings"
)

// FileService serves course documents from a base directory
type FileService struct {
	baseDir string
}

// NewFileService creates a file service rooted at baseDir
func NewFileService(baseDir string) (*FileService, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	return &FileService{baseDir: abs}, nil
}

// File is a resolved document ready to be written to a response
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Open resolves the slash-separated path under the base directory
func (s *FileService) Open(relative string) (*File, error) {
	segments := splitSegments(relative)
	if len(segments) == 0 {
		return nil, ErrFileNotSpecified
	}

	resolved := filepath.Clean(filepath.Join(s.baseDir, filepath.Join(segments...)))
	if resolved != s.baseDir && !strings.HasPrefix(resolved, s.baseDir+string(filepath.Separator)) {
		return nil, ErrPathOutsideBase
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, ErrFileNotFound
	}

	contentType := "application/octet-stream"
	if strings.ToLower(filepath.Ext(resolved)) == ".pdf" {
		contentType = "application/pdf"
	}
	return &File{
		Name:        segments[len(segments)-1],
		ContentType: contentType,
		Data:        data,
	}, nil
}

func splitSegments(relative string) []string {
	var out []string
	for _, seg := range strings.Split(relative, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
