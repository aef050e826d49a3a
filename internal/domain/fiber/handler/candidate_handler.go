package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/url"

	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const msgSelectApplicants = "Please select at least one applicant."

func candidatesPath(jobID int64) string {
	return fmt.Sprintf("/dashboard/job/%d/candidates", jobID)
}

// Candidates lists the applicants of a job. ?scorecard=<id> opens the
// scorecard overlay of an applicant on the current page.
func (h *PortalHandler) Candidates(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	page := usecase.NewCandidateListPage(ctx, jobID, h.services(c), h.pageOptions(nil))
	defer page.Close()

	req := h.pageRequest(c)
	loadErr := page.Load(ctx, req)
	if id := c.QueryInt("scorecard"); id > 0 && loadErr == nil {
		if err := page.ShowScorecard(int64(id)); err != nil {
			h.log.Debug("scorecard not on page", zap.Int("resume_id", id))
		}
	}
	return h.renderCandidates(c, fiber.StatusOK, page, req, message(loadErr, usecase.MsgCandidatesUnavailable))
}

func (h *PortalHandler) renderCandidates(c *fiber.Ctx, status int, page *usecase.CandidateListPage, req usecase.PageRequest, errMsg string) error {
	overlay, err := renderModal(h, "candidates", "scorecard", &page.Scorecard)
	if err != nil {
		h.log.Error("render scorecard failed", zap.Error(err))
	}
	st := page.List.Snapshot()
	if errMsg == "" {
		errMsg = st.Error
	}
	// The sort actually applied replaces an invalid one from the URL.
	req.SortBy = st.SortBy
	base := candidatesPath(page.JobID)
	title := "Candidates"
	if jobTitle := page.JobTitle(); jobTitle != "" {
		title = "Candidates for " + jobTitle
	}
	return h.render(c, status, "candidates", fiber.Map{
		"Title":      title,
		"JobID":      page.JobID,
		"JobTitle":   page.JobTitle(),
		"Base":       base,
		"State":      st,
		"Error":      errMsg,
		"Empty":      page.EmptyMessage(),
		"Categories": page.Categories(),
		"Modal":      overlay,
		"Request":    req,
		"Query":      template.URL(listQuery(req, st.Page, req.Ref)),
		"NextHref":   base + "?" + listQuery(req, st.Page+1, st.Next),
		"PrevHref":   base + "?" + listQuery(req, st.Page-1, st.Previous),
		"Close":      base + "?" + listQuery(req, st.Page, ""),
	})
}

// DeleteCandidates deletes the checked applicants after confirmation and
// shows the refetched page.
func (h *PortalHandler) DeleteCandidates(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	var prompt string
	page := usecase.NewCandidateListPage(ctx, jobID, h.services(c), h.pageOptions(func(p string) bool {
		prompt = p
		return confirmed(c)
	}))
	defer page.Close()

	req := h.pageRequest(c)
	if err := page.Load(ctx, req); err != nil {
		return h.renderCandidates(c, fiber.StatusOK, page, req, message(err, usecase.MsgCandidatesUnavailable))
	}
	ids := selectedIDs(c)
	for _, id := range ids {
		page.List.ToggleSelect(id)
	}
	base := candidatesPath(jobID)
	_, err = page.List.DeleteSelected(ctx)
	switch {
	case errors.Is(err, listing.ErrNotConfirmed):
		return h.confirmPage(c, prompt, base+"/delete", base+"?"+listQuery(req, req.Page, req.Ref), batchFields(req, ids))
	case errors.Is(err, listing.ErrNothingSelected):
		return h.renderCandidates(c, fiber.StatusOK, page, req, msgSelectApplicants)
	case err != nil:
		return h.renderCandidates(c, fiber.StatusOK, page, req, message(err, usecase.MsgCandidatesDeleteFail))
	}
	st := page.List.Snapshot()
	return c.Redirect(base+"?"+listQuery(req, st.Page, ""), fiber.StatusSeeOther)
}

// ChangeStatus updates the status of one applicant and renders the page
// with the applicant replaced in place.
func (h *PortalHandler) ChangeStatus(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	resumeID, err := paramID(c, "resumeId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	page := usecase.NewCandidateListPage(ctx, jobID, h.services(c), h.pageOptions(nil))
	defer page.Close()

	req := h.pageRequest(c)
	if err := page.Load(ctx, req); err != nil {
		return h.renderCandidates(c, fiber.StatusOK, page, req, message(err, usecase.MsgCandidatesUnavailable))
	}
	status := model.ResumeStatus(c.FormValue("status"))
	if !status.Valid() {
		return h.renderCandidates(c, fiber.StatusUnprocessableEntity, page, req, usecase.MsgStatusUpdateFailed)
	}
	if _, err := page.ChangeStatus(ctx, resumeID, status); err != nil {
		return h.renderCandidates(c, fiber.StatusOK, page, req, message(err, usecase.MsgStatusUpdateFailed))
	}
	return h.renderCandidates(c, fiber.StatusOK, page, req, "")
}

func (h *PortalHandler) CandidateCV(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	resumeID, err := paramID(c, "resumeId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	page := usecase.NewCandidateListPage(ctx, jobID, h.services(c), h.pageOptions(nil))
	defer page.Close()

	req := h.pageRequest(c)
	if err := page.Load(ctx, req); err != nil {
		return h.renderCandidates(c, fiber.StatusOK, page, req, message(err, usecase.MsgCandidatesUnavailable))
	}
	d, err := page.Download(ctx, resumeID)
	if err != nil {
		return h.renderCandidates(c, fiber.StatusOK, page, req, message(err, usecase.MsgDownloadFailed))
	}
	return h.sendDownload(c, d)
}

// batchFields carries the list parameters and the checked ids into the
// confirmation form.
func batchFields(req usecase.PageRequest, ids []int64) url.Values {
	fields, _ := url.ParseQuery(listQuery(req, req.Page, req.Ref))
	for _, id := range ids {
		fields.Add("ids", fmt.Sprint(id))
	}
	return fields
}
