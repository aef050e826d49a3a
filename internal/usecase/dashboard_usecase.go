package usecase

import (
	"context"

	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"go.uber.org/zap"
)

const (
	MsgPostingsUnavailable = "Failed to fetch job postings."
	MsgPostingDeleteFailed = "Failed to delete job posting."
	MsgNoPostings          = "You have not created any job postings yet."
)

// DashboardPage lists the employer's job postings. A posting is deleted on
// its own, never in batch.
type DashboardPage struct {
	List    *listing.Controller[model.Job]
	jobs    service.JobServiceInterface
	confirm ConfirmFunc
	log     *zap.Logger
}

func NewDashboardPage(ctx context.Context, jobs service.JobServiceInterface, opts PageOptions) *DashboardPage {
	ui := opts.ui()
	return &DashboardPage{
		List: listing.New(ctx, listing.Options[model.Job]{
			Fetch:    fetchJobs(jobs, MsgPostingsUnavailable),
			ID:       model.Job.Key,
			PageSize: ui.PageSize,
			Debounce: ui.SearchDebounce,
			Logger:   opts.Logger,
		}),
		jobs:    jobs,
		confirm: opts.Confirm,
		log:     logger.OrNop(opts.Logger),
	}
}

func (p *DashboardPage) Load(ctx context.Context, req PageRequest) error {
	return p.List.Restore(ctx, req.query())
}

func DeletePostingPrompt(title string) string {
	return "Are you sure you want to delete the job posting \"" + title + "\"? This cannot be undone."
}

// DeletePosting removes one posting after confirmation and drops it from
// the page.
func (p *DashboardPage) DeletePosting(ctx context.Context, id int64) error {
	title := ""
	if job, ok := p.List.Find(id); ok {
		title = job.Title
	}
	if p.confirm == nil || !p.confirm(DeletePostingPrompt(title)) {
		return listing.ErrNotConfirmed
	}
	if err := p.jobs.Delete(ctx, id); err != nil {
		p.log.Warn("delete job posting failed", zap.Int64("job_id", id), zap.Error(err))
		err = pageError(err, MsgPostingDeleteFailed)
		p.List.SetError(err)
		return err
	}
	p.log.Info("job posting deleted", zap.Int64("job_id", id))
	p.List.Remove(id)
	return nil
}

func (p *DashboardPage) EmptyMessage() string {
	if search := p.List.Snapshot().Search; search != "" {
		return "No job postings match \"" + search + "\"."
	}
	return MsgNoPostings
}

func (p *DashboardPage) Close() {
	p.List.Close()
}
