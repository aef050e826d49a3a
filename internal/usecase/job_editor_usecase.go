package usecase

import (
	"context"
	"strings"

	"github.com/fadilmartias/ats-portal/internal/detail"
	"github.com/fadilmartias/ats-portal/internal/dto"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/util"
)

const (
	MsgJobUpdated      = "Job posting updated successfully! Redirecting..."
	MsgJobCreated      = "Job posting created successfully! Redirecting to dashboard..."
	MsgJobUpdateFailed = "Failed to update job posting."
	MsgJobCreateFailed = "Failed to create job posting."
)

// JobEditorPage edits an existing posting when id is set and creates a new
// one otherwise. onRedirect runs after the confirmation delay.
type JobEditorPage struct {
	*detail.Fetcher[model.Job]
}

func NewJobEditorPage(jobs service.JobServiceInterface, id int64, onRedirect func(model.Job), opts PageOptions) *JobEditorPage {
	ui := opts.ui()
	return &JobEditorPage{detail.New(detail.Options[model.Job]{
		ID: id,
		Load: func(ctx context.Context, id int64) (*model.Job, error) {
			return jobs.Get(ctx, id)
		},
		Save: func(ctx context.Context, id int64, draft model.Job) (*model.Job, error) {
			return jobs.Update(ctx, id, jobPayload(draft))
		},
		Create: func(ctx context.Context, draft model.Job) (*model.Job, error) {
			return jobs.Create(ctx, jobPayload(draft))
		},
		Validate:      validateJob,
		Messages:      jobMessages(id),
		OnRedirect:    onRedirect,
		RedirectDelay: ui.RedirectDelay,
		Logger:        opts.Logger,
	})}
}

// NewJobCreatePage is the editor in create mode.
func NewJobCreatePage(jobs service.JobServiceInterface, onRedirect func(model.Job), opts PageOptions) *JobEditorPage {
	return NewJobEditorPage(jobs, 0, onRedirect, opts)
}

// SetFields replaces both editable fields of the draft.
func (p *JobEditorPage) SetFields(title, description string) error {
	return p.Edit(func(j *model.Job) {
		j.Title = title
		j.Description = description
	})
}

func jobMessages(id int64) detail.Messages {
	if id == 0 {
		return detail.Messages{SaveFailed: MsgJobCreateFailed, Saved: MsgJobCreated}
	}
	return detail.Messages{
		LoadFailed: MsgJobDetailsUnavailable,
		SaveFailed: MsgJobUpdateFailed,
		Saved:      MsgJobUpdated,
	}
}

func jobPayload(j model.Job) dto.JobPayload {
	return dto.JobPayload{Title: strings.TrimSpace(j.Title), Description: j.Description}
}

func validateJob(j model.Job) error {
	if formErr := util.Required(map[string]string{
		"title":       strings.TrimSpace(j.Title),
		"description": strings.TrimSpace(j.Description),
	}); formErr != nil {
		return formErr
	}
	return nil
}
