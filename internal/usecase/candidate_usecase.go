package usecase

import (
	"context"
	"sync"

	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/modal"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"go.uber.org/zap"
)

const (
	MsgCandidatesUnavailable = "Failed to fetch candidates."
	MsgJobDetailsUnavailable = "Failed to fetch job details."
	MsgStatusUpdateFailed    = "Failed to update status."
	MsgCandidatesDeleteFail  = "Failed to delete applicants."
	MsgNoApplicants          = "No applicants for this job yet."
	deleteApplicantsPrompt   = "Are you sure you want to delete %d applicant(s)?"

	DefaultCandidateSort = "-score"
)

type SortOption struct {
	Key   string
	Label string
}

var CandidateSortOptions = []SortOption{
	{Key: "-score", Label: "Highest Score"},
	{Key: "-uploaded_on", Label: "Newest First"},
	{Key: "name", Label: "Name (A-Z)"},
}

func ValidSort(key string) bool {
	for _, o := range CandidateSortOptions {
		if o.Key == key {
			return true
		}
	}
	return false
}

// CandidateListPage shows the applicants of one job. A batch delete
// refetches the current page.
type CandidateListPage struct {
	JobID     int64
	List      *listing.Controller[model.Resume]
	Scorecard modal.Presenter[model.Resume]

	jobs       service.JobServiceInterface
	resumes    service.ResumeServiceInterface
	categories service.CategoryServiceInterface
	log        *zap.Logger

	mu            sync.Mutex
	jobTitle      string
	categoryNames []string
}

func NewCandidateListPage(ctx context.Context, jobID int64, svc *service.Services, opts PageOptions) *CandidateListPage {
	ui := opts.ui()
	return &CandidateListPage{
		JobID: jobID,
		List: listing.New(ctx, listing.Options[model.Resume]{
			Fetch:       fetchResumes(svc.Resumes, jobID, MsgCandidatesUnavailable),
			ID:          model.Resume.Key,
			Delete:      deleteResumes(svc.Resumes, MsgCandidatesDeleteFail),
			Confirm:     opts.confirm(deleteApplicantsPrompt),
			AfterDelete: listing.Refetch,
			PageSize:    ui.PageSize,
			Debounce:    ui.SearchDebounce,
			SortBy:      DefaultCandidateSort,
			Logger:      opts.Logger,
		}),
		jobs:       svc.Jobs,
		resumes:    svc.Resumes,
		categories: svc.Categories,
		log:        logger.OrNop(opts.Logger),
	}
}

// Load fetches the candidates, then the job title and the category filter
// values. Only a candidate fetch failure is returned; the others are logged
// and the page renders without them.
func (p *CandidateListPage) Load(ctx context.Context, req PageRequest) error {
	if !ValidSort(req.SortBy) {
		req.SortBy = DefaultCandidateSort
	}
	if err := p.List.Restore(ctx, req.query()); err != nil {
		return err
	}

	p.mu.Lock()
	needTitle := p.jobTitle == ""
	p.mu.Unlock()
	if needTitle {
		job, err := p.jobs.Get(ctx, p.JobID)
		if err != nil {
			p.log.Warn("job title lookup failed", zap.Int64("job_id", p.JobID), zap.Error(err))
			p.List.SetError(&PageError{Message: MsgJobDetailsUnavailable, Err: err})
		} else {
			p.mu.Lock()
			p.jobTitle = job.Title
			p.mu.Unlock()
		}
	}

	names, err := p.categories.List(ctx)
	if err != nil {
		p.log.Warn("category lookup failed", zap.Error(err))
		return nil
	}
	p.mu.Lock()
	p.categoryNames = names
	p.mu.Unlock()
	return nil
}

func (p *CandidateListPage) JobTitle() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobTitle
}

func (p *CandidateListPage) Categories() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.categoryNames...)
}

// ChangeStatus updates one candidate and swaps it in place. Order and count
// of the page are kept even when sorted by score.
func (p *CandidateListPage) ChangeStatus(ctx context.Context, id int64, status model.ResumeStatus) (*model.Resume, error) {
	updated, err := p.resumes.UpdateStatus(ctx, id, status)
	if err != nil {
		p.log.Warn("status update failed", zap.Int64("resume_id", id), zap.String("status", string(status)), zap.Error(err))
		err = pageError(err, MsgStatusUpdateFailed)
		p.List.SetError(err)
		return nil, err
	}
	p.List.Replace(*updated)
	return updated, nil
}

// ShowScorecard opens the scorecard overlay for a candidate on the page.
func (p *CandidateListPage) ShowScorecard(id int64) error {
	resume, ok := p.List.Find(id)
	if !ok {
		return ErrNotFound
	}
	p.Scorecard.Open(resume)
	return nil
}

func (p *CandidateListPage) Download(ctx context.Context, id int64) (*service.Download, error) {
	return download(ctx, p.List, p.resumes, p.log, id)
}

func (p *CandidateListPage) EmptyMessage() string {
	return MsgNoApplicants
}

func (p *CandidateListPage) Close() {
	p.List.Close()
}
