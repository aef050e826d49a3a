package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/fadilmartias/ats-portal/internal/dto"
)

var ErrEmptyToken = errors.New("backend returned an empty token")

type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthService struct {
	backend *Backend
}

func NewAuthService(b *Backend) *AuthService {
	return &AuthService{backend: b}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	r := s.backend.request(ctx, false).
		SetHeader("Content-Type", "application/json").
		SetBody(dto.LoginRequest{Username: username, Password: password})
	resp, err := s.backend.execute(r, http.MethodPost, "/api/api-token-auth/")
	if err != nil {
		return "", err
	}
	var out dto.LoginResponse
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrEmptyToken
	}
	return out.Token, nil
}
