package handler

import (
	"errors"
	"html/template"
	"net/url"
	"strconv"

	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/usecase"
	"github.com/gofiber/fiber/v2"
)

func (h *PortalHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := usecase.NewDashboardPage(ctx, h.services(c).Jobs, h.pageOptions(nil))
	defer page.Close()

	req := h.pageRequest(c)
	err := page.Load(ctx, req)
	return h.renderDashboard(c, page, req, message(err, usecase.MsgPostingsUnavailable))
}

func (h *PortalHandler) renderDashboard(c *fiber.Ctx, page *usecase.DashboardPage, req usecase.PageRequest, errMsg string) error {
	st := page.List.Snapshot()
	if errMsg == "" {
		errMsg = st.Error
	}
	return h.render(c, fiber.StatusOK, "dashboard", fiber.Map{
		"Title":    "Employer Dashboard",
		"State":    st,
		"Error":    errMsg,
		"Empty":    page.EmptyMessage(),
		"Request":  req,
		"Query":    template.URL(listQuery(req, st.Page, req.Ref)),
		"NextHref": "/dashboard?" + listQuery(req, st.Page+1, st.Next),
		"PrevHref": "/dashboard?" + listQuery(req, st.Page-1, st.Previous),
	})
}

// DeleteJob asks for confirmation with the posting's title before the
// posting is removed.
func (h *PortalHandler) DeleteJob(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	var prompt string
	page := usecase.NewDashboardPage(ctx, h.services(c).Jobs, h.pageOptions(func(p string) bool {
		prompt = p
		return confirmed(c)
	}))
	defer page.Close()

	req := h.pageRequest(c)
	if err := page.Load(ctx, req); err != nil {
		return h.renderDashboard(c, page, req, message(err, usecase.MsgPostingsUnavailable))
	}
	err = page.DeletePosting(ctx, jobID)
	switch {
	case errors.Is(err, listing.ErrNotConfirmed):
		fields, _ := url.ParseQuery(listQuery(req, req.Page, req.Ref))
		return h.confirmPage(c, prompt, "/jobs/"+strconv.FormatInt(jobID, 10)+"/delete", "/dashboard?"+listQuery(req, req.Page, req.Ref), fields)
	case err != nil:
		return h.renderDashboard(c, page, req, message(err, usecase.MsgPostingDeleteFailed))
	}
	return c.Redirect("/dashboard?"+listQuery(req, req.Page, ""), fiber.StatusSeeOther)
}

func (h *PortalHandler) NewJobForm(c *fiber.Ctx) error {
	page := usecase.NewJobCreatePage(h.services(c).Jobs, nil, h.pageOptions(nil))
	defer page.Close()
	return h.renderJobForm(c, fiber.StatusOK, page)
}

func (h *PortalHandler) CreateJob(c *fiber.Ctx) error {
	page := usecase.NewJobCreatePage(h.services(c).Jobs, nil, h.pageOptions(nil))
	defer page.Close()
	return h.submitJob(c, page)
}

func (h *PortalHandler) EditJobForm(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	page := usecase.NewJobEditorPage(h.services(c).Jobs, jobID, nil, h.pageOptions(nil))
	defer page.Close()
	if err := page.Load(c.UserContext()); err != nil {
		return h.renderJobForm(c, fiber.StatusNotFound, page)
	}
	return h.renderJobForm(c, fiber.StatusOK, page)
}

func (h *PortalHandler) UpdateJob(c *fiber.Ctx) error {
	jobID, err := paramID(c, "jobId")
	if err != nil {
		return err
	}
	page := usecase.NewJobEditorPage(h.services(c).Jobs, jobID, nil, h.pageOptions(nil))
	defer page.Close()
	if err := page.Load(c.UserContext()); err != nil {
		return h.renderJobForm(c, fiber.StatusNotFound, page)
	}
	return h.submitJob(c, page)
}

// submitJob replaces the draft with the posted fields and sends it. The
// success page refreshes to the dashboard after the redirect delay.
func (h *PortalHandler) submitJob(c *fiber.Ctx, page *usecase.JobEditorPage) error {
	if err := page.SetFields(c.FormValue("title"), c.FormValue("description")); err != nil {
		return h.renderJobForm(c, fiber.StatusNotFound, page)
	}
	if _, err := page.Submit(c.UserContext()); err != nil {
		return h.renderJobForm(c, fiber.StatusUnprocessableEntity, page)
	}
	return h.renderJobForm(c, fiber.StatusOK, page)
}

func (h *PortalHandler) renderJobForm(c *fiber.Ctx, status int, page *usecase.JobEditorPage) error {
	st := page.Snapshot()
	title, action := "Edit Job Posting", c.Path()
	if page.CreateMode() {
		title, action = "Create a New Job Posting", "/manage-jobs"
	}
	data := fiber.Map{
		"Title":  title,
		"State":  st,
		"Action": action,
		"Create": page.CreateMode(),
	}
	if st.Success != "" {
		data["Refresh"] = h.ui.RedirectDelay
		data["RefreshTo"] = "/dashboard"
	}
	return h.render(c, status, "job_form", data)
}
