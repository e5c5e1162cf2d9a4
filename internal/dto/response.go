package dto

import (
	"time"

	"github.com/imageopt/imageopt/internal/domain"
)

type JobResponse struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Status     string             `json:"status"`
	Current    int                `json:"current"`
	Total      int                `json:"total"`
	Percent    int                `json:"percent"`
	Log        []string           `json:"log"`
	Report     *domain.Report     `json:"report,omitempty"`
	Files      []domain.FileInfo  `json:"files,omitempty"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func MapJobToResponse(snap domain.JobSnapshot) *JobResponse {
	percent := 0
	if snap.Total > 0 {
		percent = snap.Current * 100 / snap.Total
	}
	return &JobResponse{
		ID:         snap.ID,
		Kind:       string(snap.Kind),
		Status:     string(snap.Status),
		Current:    snap.Current,
		Total:      snap.Total,
		Percent:    percent,
		Log:        snap.Log,
		Report:     snap.Report,
		Files:      snap.Files,
		Error:      snap.Error,
		StartedAt:  snap.StartedAt,
		FinishedAt: snap.FinishedAt,
	}
}
