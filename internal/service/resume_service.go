package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fadilmartias/ats-portal/internal/dto"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/util"
)

type ResumeQuery struct {
	JobID    int64
	SortBy   string
	Page     int
	Search   string
	Category string
	// PageURL is a server supplied next/previous reference. When set the
	// other fields are ignored.
	PageURL string
}

func (q ResumeQuery) params() map[string]string {
	p := map[string]string{}
	if q.JobID > 0 {
		p["job_id"] = strconv.FormatInt(q.JobID, 10)
	}
	if q.SortBy != "" {
		p["sort_by"] = q.SortBy
	}
	if q.Page > 0 {
		p["page"] = strconv.Itoa(q.Page)
	}
	if q.Search != "" {
		p["search"] = q.Search
	}
	if q.Category != "" {
		p["category"] = q.Category
	}
	return p
}

// Download is binary content fetched with the session credential.
type Download struct {
	Name        string
	ContentType string
	Data        []byte
}

type ResumeServiceInterface interface {
	List(ctx context.Context, q ResumeQuery) (*model.Page[model.Resume], error)
	UpdateStatus(ctx context.Context, id int64, status model.ResumeStatus) (*model.Resume, error)
	DeleteBatch(ctx context.Context, ids []int64) error
	UpdateDetails(ctx context.Context, details dto.ParsedResume) (string, error)
	Download(ctx context.Context, url string) (*Download, error)
}

type ResumeService struct {
	backend *Backend
}

func NewResumeService(b *Backend) *ResumeService {
	return &ResumeService{backend: b}
}

func (s *ResumeService) List(ctx context.Context, q ResumeQuery) (*model.Page[model.Resume], error) {
	r := s.backend.request(ctx, true)
	url := q.PageURL
	if url == "" {
		url = "/api/resumes/"
		r.SetQueryParams(q.params())
	}
	resp, err := s.backend.execute(r, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	return model.DecodePage[model.Resume](resp.Body())
}

func (s *ResumeService) UpdateStatus(ctx context.Context, id int64, status model.ResumeStatus) (*model.Resume, error) {
	if !status.Valid() {
		return nil, util.NewFormError("invalid status", map[string]string{"status": string(status)})
	}
	r := s.backend.request(ctx, true).
		SetHeader("Content-Type", "application/json").
		SetBody(dto.StatusUpdateRequest{Status: status})
	resp, err := s.backend.execute(r, http.MethodPatch, fmt.Sprintf("/api/resumes/%d/update-status/", id))
	if err != nil {
		return nil, err
	}
	var updated model.Resume
	if err := decode(resp, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ResumeService) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return util.NewFormError("no resumes selected", nil)
	}
	r := s.backend.request(ctx, true).
		SetHeader("Content-Type", "application/json").
		SetBody(dto.BatchDeleteRequest{IDs: ids})
	_, err := s.backend.execute(r, http.MethodPost, "/api/resumes/delete/")
	return err
}

// UpdateDetails saves the verified fields of a freshly parsed resume.
func (s *ResumeService) UpdateDetails(ctx context.Context, details dto.ParsedResume) (string, error) {
	if details.ID == 0 {
		return "", util.NewFormError("No data to save.", nil)
	}
	r := s.backend.request(ctx, true).
		SetHeader("Content-Type", "application/json").
		SetBody(details)
	resp, err := s.backend.execute(r, http.MethodPut, fmt.Sprintf("/api/resume/%d/", details.ID))
	if err != nil {
		return "", err
	}
	var out dto.MessageResponse
	if len(resp.Body()) > 0 {
		if err := decode(resp, &out); err != nil {
			return "", err
		}
	}
	if out.Message == "" {
		out.Message = "Details saved successfully!"
	}
	return out.Message, nil
}

// Download fetches an original CV. url is the reference the backend put in
// original_cv; the token is only sent when it points at the backend.
func (s *ResumeService) Download(ctx context.Context, url string) (*Download, error) {
	auth := s.backend.Owns(url) || strings.HasPrefix(url, "/") && !strings.HasPrefix(url, "//")
	r := s.backend.request(ctx, auth).SetHeader("Accept", "*/*")
	resp, err := s.backend.execute(r, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	return &Download{
		Name:        util.DownloadName(url),
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}, nil
}
