package handler

import (
	"errors"
	"html/template"
	"io"

	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/submission"
	"github.com/fadilmartias/ats-portal/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// maxUploadSize bounds a resume upload.
const maxUploadSize = 5 * 1024 * 1024

// PublicJobs lists open positions. ?view=<id> opens the detail overlay of a
// job on the current page.
func (h *PortalHandler) PublicJobs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	svc := h.services(c)
	page := usecase.NewPublicJobsPage(ctx, svc.Jobs, h.pageOptions(nil))
	defer page.Close()

	req := h.pageRequest(c)
	loadErr := page.Load(ctx, req)

	if view := c.QueryInt("view"); view > 0 && loadErr == nil {
		if err := page.View(int64(view)); err != nil {
			h.log.Debug("job detail not on page", zap.Int("job_id", view))
		}
	}
	overlay, err := renderModal(h, "jobs", "job-detail", &page.Detail)
	if err != nil {
		h.log.Error("render job detail failed", zap.Error(err))
	}

	st := page.List.Snapshot()
	return h.render(c, fiber.StatusOK, "jobs", fiber.Map{
		"Title":    "Open Positions",
		"State":    st,
		"Error":    message(loadErr, usecase.MsgJobsUnavailable),
		"Empty":    page.EmptyMessage(),
		"Modal":    overlay,
		"Request":  req,
		"Query":    template.URL(listQuery(req, st.Page, req.Ref)),
		"NextHref": "/?" + listQuery(req, st.Page+1, st.Next),
		"PrevHref": "/?" + listQuery(req, st.Page-1, st.Previous),
		"Close":    "/?" + listQuery(req, st.Page, ""),
	})
}

func (h *PortalHandler) ApplicationForm(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	svc := h.services(c)
	form := submission.NewApplicationForm(jobID, svc.Jobs, svc.Applications, h.log)
	_ = form.Load(c.UserContext())
	return h.renderApplication(c, fiber.StatusOK, form)
}

// Apply submits the uploaded resume. A rejected file is reported without
// contacting the backend.
func (h *PortalHandler) Apply(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	svc := h.services(c)
	form := submission.NewApplicationForm(jobID, svc.Jobs, svc.Applications, h.log)
	if err := form.Load(ctx); err != nil {
		return h.renderApplication(c, fiber.StatusNotFound, form)
	}

	doc, err := uploadedDocument(c, "resume")
	if err != nil {
		h.log.Warn("read uploaded resume failed", zap.Error(err))
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return h.renderApplication(c, fe.Code, form, fe.Message)
		}
	}
	if doc != nil {
		if err := form.SelectFile(doc); err != nil {
			return h.renderApplication(c, fiber.StatusUnprocessableEntity, form)
		}
	}
	if err := form.Submit(ctx); err != nil {
		return h.renderApplication(c, fiber.StatusUnprocessableEntity, form)
	}
	return h.renderApplication(c, fiber.StatusOK, form)
}

func (h *PortalHandler) renderApplication(c *fiber.Ctx, status int, form *submission.ApplicationForm, override ...string) error {
	st := form.State()
	if len(override) > 0 {
		st.Error = override[0]
	}
	title := "Apply"
	if st.JobTitle != "" {
		title = "Apply for " + st.JobTitle
	}
	return h.render(c, status, "apply", fiber.Map{
		"Title":     title,
		"State":     st,
		"Succeeded": st.Phase == submission.Succeeded,
	})
}

// uploadedDocument reads a multipart file field. A missing field is not an
// error and yields nil.
func uploadedDocument(c *fiber.Ctx, field string) (*model.Document, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > maxUploadSize {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "file size is too large (max 5MB)")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return submission.NewDocument(fh.Filename, fh.Header.Get(fiber.HeaderContentType), data), nil
}
