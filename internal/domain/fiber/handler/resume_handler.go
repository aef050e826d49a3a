package handler

import (
	"errors"
	"html/template"
	"strconv"
	"strings"

	"github.com/fadilmartias/ats-portal/internal/dto"
	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/submission"
	"github.com/fadilmartias/ats-portal/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const msgSelectResumes = "Please select at least one resume."

func (h *PortalHandler) Resumes(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := usecase.NewResumesPage(ctx, h.services(c).Resumes, h.pageOptions(nil))
	defer page.Close()

	req := h.pageRequest(c)
	err := page.Load(ctx, req)
	return h.renderResumes(c, page, req, message(err, usecase.MsgResumesUnavailable))
}

func (h *PortalHandler) renderResumes(c *fiber.Ctx, page *usecase.ResumesPage, req usecase.PageRequest, errMsg string) error {
	st := page.List.Snapshot()
	if errMsg == "" {
		errMsg = st.Error
	}
	return h.render(c, fiber.StatusOK, "resumes", fiber.Map{
		"Title":    "All Resumes",
		"State":    st,
		"Error":    errMsg,
		"Empty":    usecase.MsgNoResumes,
		"Request":  req,
		"Query":    template.URL(listQuery(req, st.Page, req.Ref)),
		"NextHref": "/resumes?" + listQuery(req, st.Page+1, st.Next),
		"PrevHref": "/resumes?" + listQuery(req, st.Page-1, st.Previous),
	})
}

// DeleteResumes deletes the checked resumes after confirmation. They are
// dropped from the page as it was, without a refetch.
func (h *PortalHandler) DeleteResumes(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var prompt string
	page := usecase.NewResumesPage(ctx, h.services(c).Resumes, h.pageOptions(func(p string) bool {
		prompt = p
		return confirmed(c)
	}))
	defer page.Close()

	req := h.pageRequest(c)
	if err := page.Load(ctx, req); err != nil {
		return h.renderResumes(c, page, req, message(err, usecase.MsgResumesUnavailable))
	}
	ids := selectedIDs(c)
	for _, id := range ids {
		page.List.ToggleSelect(id)
	}
	_, err := page.List.DeleteSelected(ctx)
	switch {
	case errors.Is(err, listing.ErrNotConfirmed):
		return h.confirmPage(c, prompt, "/resumes/delete", "/resumes?"+listQuery(req, req.Page, req.Ref), batchFields(req, ids))
	case errors.Is(err, listing.ErrNothingSelected):
		return h.renderResumes(c, page, req, msgSelectResumes)
	case err != nil:
		return h.renderResumes(c, page, req, message(err, usecase.MsgResumesDeleteFail))
	}
	return h.renderResumes(c, page, req, "")
}

func (h *PortalHandler) ResumeCV(c *fiber.Ctx) error {
	resumeID, err := paramID(c, "resumeId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	page := usecase.NewResumesPage(ctx, h.services(c).Resumes, h.pageOptions(nil))
	defer page.Close()

	req := h.pageRequest(c)
	if err := page.Load(ctx, req); err != nil {
		return h.renderResumes(c, page, req, message(err, usecase.MsgResumesUnavailable))
	}
	d, err := page.Download(ctx, resumeID)
	if err != nil {
		return h.renderResumes(c, page, req, message(err, usecase.MsgDownloadFailed))
	}
	return h.sendDownload(c, d)
}

func (h *PortalHandler) parseForm(c *fiber.Ctx) *submission.ParseForm {
	svc := h.services(c)
	return submission.NewParseForm(svc.Applications, svc.Resumes, h.log)
}

func (h *PortalHandler) UploadForm(c *fiber.Ctx) error {
	return h.renderUpload(c, fiber.StatusOK, h.parseForm(c).State())
}

// ParseResume uploads a resume for extraction and shows the result for
// correction.
func (h *PortalHandler) ParseResume(c *fiber.Ctx) error {
	form := h.parseForm(c)
	doc, err := uploadedDocument(c, "resume")
	if err != nil {
		h.log.Warn("read uploaded resume failed", zap.Error(err))
		var fe *fiber.Error
		if errors.As(err, &fe) {
			st := form.State()
			st.Error = fe.Message
			return h.renderUpload(c, fe.Code, st)
		}
	}
	if doc != nil {
		if err := form.SelectFile(doc); err != nil {
			return h.renderUpload(c, fiber.StatusUnprocessableEntity, form.State())
		}
	}
	if _, err := form.Parse(c.UserContext()); err != nil {
		return h.renderUpload(c, fiber.StatusUnprocessableEntity, form.State())
	}
	return h.renderUpload(c, fiber.StatusOK, form.State())
}

// SaveResume sends the corrected fields. The parse result travels with the
// form since nothing is kept between requests.
func (h *PortalHandler) SaveResume(c *fiber.Ctx) error {
	form := h.parseForm(c)
	id, _ := strconv.ParseInt(c.FormValue("id"), 10, 64)
	if id > 0 {
		form.Restore(dto.ParsedResume{ID: id, Projects: splitLines(c.FormValue("projects"))})
		for _, name := range submission.ParseFields {
			if err := form.EditField(name, c.FormValue(name)); err != nil {
				h.log.Warn("edit parsed field failed", zap.String("field", name), zap.Error(err))
			}
		}
	}
	if _, err := form.Save(c.UserContext()); err != nil {
		return h.renderUpload(c, fiber.StatusUnprocessableEntity, form.State())
	}
	return h.renderUpload(c, fiber.StatusOK, form.State())
}

func (h *PortalHandler) renderUpload(c *fiber.Ctx, status int, st submission.ParseState) error {
	return h.render(c, status, "upload", fiber.Map{
		"Title":  "Upload & Verify Resume",
		"State":  st,
		"Fields": submission.ParseFields,
	})
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
