package service

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

type CategoryServiceInterface interface {
	List(ctx context.Context) ([]string, error)
}

type CategoryService struct {
	backend *Backend
}

func NewCategoryService(b *Backend) *CategoryService {
	return &CategoryService{backend: b}
}

// List returns category names. Items may be plain strings or objects with a
// name field.
func (s *CategoryService) List(ctx context.Context) ([]string, error) {
	resp, err := s.backend.execute(s.backend.request(ctx, true), http.MethodGet, "/api/categories/")
	if err != nil {
		return nil, err
	}
	root := gjson.ParseBytes(resp.Body())
	if !root.IsArray() {
		root = root.Get("results")
	}
	names := []string{}
	for _, item := range root.Array() {
		name := item.String()
		if item.IsObject() {
			name = item.Get("name").String()
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
