package dto

import "github.com/fadilmartias/ats-portal/internal/model"

type StatusUpdateRequest struct {
	Status model.ResumeStatus `json:"status"`
}

type BatchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ParsedResume is what /api/extract-text/ returns and what the verify step
// sends back to /api/resume/{id}/.
type ParsedResume struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Skills     []string `json:"skills"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
	Projects   []string `json:"projects,omitempty"`
}
