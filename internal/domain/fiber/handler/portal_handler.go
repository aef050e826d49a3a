package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/middleware"
	"github.com/fadilmartias/ats-portal/internal/modal"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/usecase"
	"github.com/fadilmartias/ats-portal/internal/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const loginPath = "/login"

type PortalHandler struct {
	backend *service.Backend
	ui      *config.UIConfig
	appName string
	log     *zap.Logger
	pages   map[string]*template.Template
}

func NewPortalHandler(backend *service.Backend, app *config.AppConfig, ui *config.UIConfig, log *zap.Logger) (*PortalHandler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &PortalHandler{
		backend: backend,
		ui:      ui,
		appName: app.Name,
		log:     logger.OrNop(log),
		pages:   pages,
	}, nil
}

func (h *PortalHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/healthz", h.Health)

	app.Get("/", h.PublicJobs)
	app.Get("/apply/:jobId", h.ApplicationForm)
	app.Post("/apply/:jobId", middleware.RateLimiter(5, 1*time.Minute), h.Apply)
	app.Get("/login", h.LoginForm)
	app.Post("/login", middleware.RateLimiter(10, 1*time.Minute), h.Login)
	app.Post("/logout", h.Logout)

	protected := app.Group("", middleware.RequireAuth(loginPath))
	protected.Get("/dashboard", h.Dashboard)
	protected.Get("/dashboard/job/:jobId/candidates", h.Candidates)
	protected.Post("/dashboard/job/:jobId/candidates/delete", h.DeleteCandidates)
	protected.Post("/dashboard/job/:jobId/candidates/:resumeId/status", h.ChangeStatus)
	protected.Get("/dashboard/job/:jobId/candidates/:resumeId/cv", h.CandidateCV)
	protected.Get("/manage-jobs", h.NewJobForm)
	protected.Post("/manage-jobs", h.CreateJob)
	protected.Get("/jobs/:jobId/edit", h.EditJobForm)
	protected.Post("/jobs/:jobId/edit", h.UpdateJob)
	protected.Post("/jobs/:jobId/delete", h.DeleteJob)
	protected.Get("/resumes", h.Resumes)
	protected.Post("/resumes/delete", h.DeleteResumes)
	protected.Get("/resumes/:resumeId/cv", h.ResumeCV)
	protected.Get("/upload", h.UploadForm)
	protected.Post("/upload", h.ParseResume)
	protected.Post("/upload/save", h.SaveResume)
}

// services binds the backend to the caller's browser session.
func (h *PortalHandler) services(c *fiber.Ctx) *service.Services {
	if sess := middleware.SessionFrom(c); sess != nil {
		return service.NewServices(h.backend.WithTokens(sess))
	}
	return service.NewServices(h.backend)
}

func (h *PortalHandler) pageOptions(confirm usecase.ConfirmFunc) usecase.PageOptions {
	return usecase.PageOptions{UI: h.ui, Confirm: confirm, Logger: h.log}
}

// render executes a page inside the shared layout.
func (h *PortalHandler) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	tmpl, ok := h.pages[name]
	if !ok {
		return fiber.NewError(fiber.StatusInternalServerError, "unknown page "+name)
	}
	if data == nil {
		data = fiber.Map{}
	}
	data["AppName"] = h.appName
	data["Path"] = c.Path()
	if sess := middleware.SessionFrom(c); sess != nil {
		data["Authenticated"] = sess.IsAuthenticated()
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log.Error("render page failed", zap.String("page", name), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not render page")
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func (h *PortalHandler) sendDownload(c *fiber.Ctx, d *service.Download) error {
	ct := d.ContentType
	if ct == "" {
		ct = model.ContentTypePDF
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", d.Name))
	return c.Send(d.Data)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Page Not Found!")
	}
	return id, nil
}

// pageRequest reads list parameters from the query string, or from the
// form for POST requests. A page reference pointing away from the backend
// is dropped so the session token never leaves it.
func (h *PortalHandler) pageRequest(c *fiber.Ctx) usecase.PageRequest {
	get := c.Query
	if c.Method() == fiber.MethodPost {
		get = func(key string, def ...string) string { return c.FormValue(key, def...) }
	}
	page, _ := strconv.Atoi(get("page"))
	ref := get("ref")
	if ref != "" && !h.backend.Owns(ref) {
		h.log.Warn("foreign page reference dropped", zap.String("ref", ref))
		ref = ""
	}
	return usecase.PageRequest{
		Search:   strings.TrimSpace(get("search")),
		SortBy:   get("sort"),
		Category: get("category"),
		Page:     page,
		Ref:      strings.Clone(ref),
	}
}

// message is the text shown on the page for err.
func message(err error, fallback string) string {
	var pageErr *usecase.PageError
	var formErr *util.FormError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pageErr):
		return pageErr.Message
	case errors.As(err, &formErr):
		return formErr.Message
	default:
		return service.Message(err, fallback)
	}
}

// renderModal renders the open overlay of a presenter with the named
// template block, or nothing when it is closed.
func renderModal[T any](h *PortalHandler, page, block string, p *modal.Presenter[T]) (template.HTML, error) {
	tmpl, ok := h.pages[page]
	if !ok {
		return "", fmt.Errorf("unknown page %s", page)
	}
	var buf bytes.Buffer
	err := p.Render(&buf, func(w io.Writer, item T) error {
		return tmpl.ExecuteTemplate(w, block, item)
	})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// confirmPage asks for the answer of a destructive action with a form that
// posts back to action with fields and confirm=yes.
func (h *PortalHandler) confirmPage(c *fiber.Ctx, prompt, action, cancel string, fields url.Values) error {
	return h.render(c, fiber.StatusOK, "confirm", fiber.Map{
		"Title":  "Please confirm",
		"Prompt": prompt,
		"Action": action,
		"Fields": fields,
		"Cancel": cancel,
	})
}

func (h *PortalHandler) notFound(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusNotFound, "error", fiber.Map{
		"Title":   "Page Not Found!",
		"Message": "The page you are looking for does not exist.",
	})
}

// selectedIDs reads the checked ids of a batch form.
func selectedIDs(c *fiber.Ctx) []int64 {
	args := c.Request().PostArgs()
	var ids []int64
	for _, raw := range args.PeekMulti("ids") {
		if id, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func confirmed(c *fiber.Ctx) bool {
	return c.FormValue("confirm") == "yes"
}

// listQuery rebuilds the query string of a list page for links.
func listQuery(req usecase.PageRequest, page int, ref string) string {
	v := url.Values{}
	if req.Search != "" {
		v.Set("search", req.Search)
	}
	if req.SortBy != "" {
		v.Set("sort", req.SortBy)
	}
	if req.Category != "" {
		v.Set("category", req.Category)
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if ref != "" {
		v.Set("ref", ref)
	}
	return v.Encode()
}

var funcs = template.FuncMap{
	// Job descriptions are HTML written by employers in the rich text
	// editor and are shown as authored.
	"trusted":  func(s string) template.HTML { return template.HTML(s) },
	"statuses": func() []model.ResumeStatus { return model.ResumeStatuses },
	"sorts":    func() []usecase.SortOption { return usecase.CandidateSortOptions },
	"join":     strings.Join,
	"add":      func(a, b int) int { return a + b },
	"seconds":  func(d time.Duration) int { return int(d.Seconds()) },
	"fields": func(q template.URL) url.Values {
		v, _ := url.ParseQuery(string(q))
		return v
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	},
}

func parseTemplates() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := map[string]*template.Template{}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		pages[strings.TrimSuffix(base, ".html")] = t
	}
	return pages, nil
}
