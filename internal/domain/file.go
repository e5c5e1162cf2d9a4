package domain

import "path/filepath"

type FileInfo struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Format string `json:"format,omitempty"`
}

func NewFileInfo(path string) FileInfo {
	return FileInfo{
		Path: path,
		Name: filepath.Base(path),
	}
}

func (f FileInfo) HasDimensions() bool {
	return f.Width > 0 && f.Height > 0
}
