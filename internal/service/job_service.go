package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fadilmartias/ats-portal/internal/dto"
	"github.com/fadilmartias/ats-portal/internal/model"
)

type JobQuery struct {
	Search string
	Page   int
	// PageURL is a server supplied next/previous reference. When set the
	// other fields are ignored.
	PageURL string
}

type JobServiceInterface interface {
	List(ctx context.Context, q JobQuery) (*model.Page[model.Job], error)
	Get(ctx context.Context, id int64) (*model.Job, error)
	Create(ctx context.Context, payload dto.JobPayload) (*model.Job, error)
	Update(ctx context.Context, id int64, payload dto.JobPayload) (*model.Job, error)
	Delete(ctx context.Context, id int64) error
}

type JobService struct {
	backend *Backend
}

func NewJobService(b *Backend) *JobService {
	return &JobService{backend: b}
}

func (s *JobService) List(ctx context.Context, q JobQuery) (*model.Page[model.Job], error) {
	r := s.backend.request(ctx, true)
	url := q.PageURL
	if url == "" {
		url = "/api/jobs/"
		if q.Search != "" {
			r.SetQueryParam("search", q.Search)
		}
		if q.Page > 1 {
			r.SetQueryParam("page", strconv.Itoa(q.Page))
		}
	}
	resp, err := s.backend.execute(r, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	return model.DecodePage[model.Job](resp.Body())
}

func (s *JobService) Get(ctx context.Context, id int64) (*model.Job, error) {
	resp, err := s.backend.execute(s.backend.request(ctx, true), http.MethodGet, jobPath(id))
	if err != nil {
		return nil, err
	}
	var job model.Job
	if err := decode(resp, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) Create(ctx context.Context, payload dto.JobPayload) (*model.Job, error) {
	r := s.backend.request(ctx, true).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	resp, err := s.backend.execute(r, http.MethodPost, "/api/jobs/")
	if err != nil {
		return nil, err
	}
	var job model.Job
	if err := decode(resp, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Update replaces the whole posting.
func (s *JobService) Update(ctx context.Context, id int64, payload dto.JobPayload) (*model.Job, error) {
	r := s.backend.request(ctx, true).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	resp, err := s.backend.execute(r, http.MethodPut, jobPath(id))
	if err != nil {
		return nil, err
	}
	job := model.Job{ID: id, Title: payload.Title, Description: payload.Description}
	if len(resp.Body()) > 0 {
		if err := decode(resp, &job); err != nil {
			return nil, err
		}
	}
	return &job, nil
}

func (s *JobService) Delete(ctx context.Context, id int64) error {
	resp, err := s.backend.execute(s.backend.request(ctx, true), http.MethodDelete, jobPath(id))
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusNoContent {
		return &APIError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("unexpected status %d deleting job posting", resp.StatusCode()),
		}
	}
	return nil
}

func jobPath(id int64) string {
	return fmt.Sprintf("/api/jobs/%d/", id)
}
