package service

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/fadilmartias/ats-portal/internal/dto"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/tidwall/gjson"
)

type ApplicationServiceInterface interface {
	Analyze(ctx context.Context, jobID int64, doc model.Document) error
	ExtractText(ctx context.Context, doc model.Document) (*dto.ParsedResume, error)
}

type ApplicationService struct {
	backend *Backend
}

func NewApplicationService(b *Backend) *ApplicationService {
	return &ApplicationService{backend: b}
}

// Analyze submits a resume for a job. The endpoint is public.
func (s *ApplicationService) Analyze(ctx context.Context, jobID int64, doc model.Document) error {
	r := s.backend.request(ctx, false).
		SetMultipartField("file", doc.Name, doc.ContentType, bytes.NewReader(doc.Data)).
		SetMultipartFormData(map[string]string{
			"job_description_id": strconv.FormatInt(jobID, 10),
		})
	_, err := s.backend.execute(r, http.MethodPost, "/api/analyze-resume/")
	return err
}

func (s *ApplicationService) ExtractText(ctx context.Context, doc model.Document) (*dto.ParsedResume, error) {
	r := s.backend.request(ctx, false).
		SetMultipartField("file", doc.Name, doc.ContentType, bytes.NewReader(doc.Data))
	resp, err := s.backend.execute(r, http.MethodPost, "/api/extract-text/")
	if err != nil {
		return nil, err
	}
	body := resp.Body()
	parsed := &dto.ParsedResume{
		ID:         gjson.GetBytes(body, "id").Int(),
		Name:       gjson.GetBytes(body, "name").String(),
		Email:      gjson.GetBytes(body, "email").String(),
		Phone:      gjson.GetBytes(body, "phone").String(),
		Skills:     stringList(gjson.GetBytes(body, "skills")),
		Education:  stringList(gjson.GetBytes(body, "education")),
		Experience: stringList(gjson.GetBytes(body, "experience")),
		Projects:   stringList(gjson.GetBytes(body, "projects")),
	}
	return parsed, nil
}

// stringList reads a field that is either a list or a single string.
func stringList(res gjson.Result) []string {
	out := []string{}
	if !res.Exists() || res.Type == gjson.Null {
		return out
	}
	if !res.IsArray() {
		if s := res.String(); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, v := range res.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
