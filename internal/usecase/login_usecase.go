package usecase

import (
	"context"
	"strings"

	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/session"
	"github.com/fadilmartias/ats-portal/internal/util"
	"go.uber.org/zap"
)

const (
	MsgInvalidCredentials = "Invalid username or password."
	// AfterLoginPath is where an authenticated visitor of the login page is
	// sent.
	AfterLoginPath = "/dashboard"
)

type LoginPage struct {
	auth service.AuthServiceInterface
	sess *session.Session
	log  *zap.Logger
	err  string
}

func NewLoginPage(auth service.AuthServiceInterface, sess *session.Session, log *zap.Logger) *LoginPage {
	return &LoginPage{auth: auth, sess: sess, log: logger.OrNop(log)}
}

// Redirect returns the path to leave the login page for, or "" to show it.
func (p *LoginPage) Redirect() string {
	if p.sess.IsAuthenticated() {
		return AfterLoginPath
	}
	return ""
}

// Submit exchanges credentials for a token. The session is only touched
// when the backend accepts them.
func (p *LoginPage) Submit(ctx context.Context, username, password string) error {
	p.err = ""
	username = strings.TrimSpace(username)
	if formErr := util.Required(map[string]string{"username": username, "password": password}); formErr != nil {
		p.err = formErr.Message
		return formErr
	}

	token, err := p.auth.Login(ctx, username, password)
	if err != nil {
		p.log.Info("login rejected", zap.String("username", username), zap.Error(err))
		p.err = MsgInvalidCredentials
		return &PageError{Message: MsgInvalidCredentials, Err: err}
	}
	if err := p.sess.Login(ctx, token); err != nil {
		p.log.Error("persist session failed", zap.String("username", username), zap.Error(err))
		p.err = err.Error()
		return err
	}
	p.log.Info("login succeeded", zap.String("username", username))
	return nil
}

func (p *LoginPage) ErrorMessage() string {
	return p.err
}
