package usecase

import (
	"context"
	"fmt"

	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/modal"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
)

const (
	MsgJobsUnavailable = "Could not fetch job postings. Please try again later."
	MsgNoOpenPositions = "No open positions at the moment. Please check back later!"
)

// PublicJobsPage lists open positions for applicants. Authentication is
// optional.
type PublicJobsPage struct {
	List   *listing.Controller[model.Job]
	Detail modal.Presenter[model.Job]
}

func NewPublicJobsPage(ctx context.Context, jobs service.JobServiceInterface, opts PageOptions) *PublicJobsPage {
	ui := opts.ui()
	return &PublicJobsPage{
		List: listing.New(ctx, listing.Options[model.Job]{
			Fetch:    fetchJobs(jobs, MsgJobsUnavailable),
			ID:       model.Job.Key,
			PageSize: ui.PageSize,
			Debounce: ui.JobSearchDebounce,
			Logger:   opts.Logger,
		}),
	}
}

func (p *PublicJobsPage) Load(ctx context.Context, req PageRequest) error {
	return p.List.Restore(ctx, req.query())
}

// View opens the detail overlay for a job on the current page.
func (p *PublicJobsPage) View(id int64) error {
	job, ok := p.List.Find(id)
	if !ok {
		return ErrNotFound
	}
	p.Detail.Open(job)
	return nil
}

func (p *PublicJobsPage) EmptyMessage() string {
	if search := p.List.Snapshot().Search; search != "" {
		return fmt.Sprintf("No jobs found for \"%s\".", search)
	}
	return MsgNoOpenPositions
}

func (p *PublicJobsPage) Close() {
	p.List.Close()
}

func fetchJobs(jobs service.JobServiceInterface, fallback string) listing.FetchFunc[model.Job] {
	return func(ctx context.Context, q listing.Query) (*model.Page[model.Job], error) {
		page, err := jobs.List(ctx, service.JobQuery{Search: q.Search, Page: q.Page, PageURL: q.PageURL})
		if err != nil {
			return nil, pageError(err, fallback)
		}
		return page, nil
	}
}
