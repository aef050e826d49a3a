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
	MsgResumesUnavailable = "Failed to fetch resumes."
	MsgResumesDeleteFail  = "Failed to delete resumes."
	MsgNoResumes          = "No resumes found."
	deleteResumesPrompt   = "Are you sure you want to delete %d resume(s)?"
)

// ResumesPage lists every uploaded resume. Deleted resumes are dropped from
// the page without a refetch.
type ResumesPage struct {
	List    *listing.Controller[model.Resume]
	resumes service.ResumeServiceInterface
	log     *zap.Logger
}

func NewResumesPage(ctx context.Context, resumes service.ResumeServiceInterface, opts PageOptions) *ResumesPage {
	ui := opts.ui()
	return &ResumesPage{
		List: listing.New(ctx, listing.Options[model.Resume]{
			Fetch:       fetchResumes(resumes, 0, MsgResumesUnavailable),
			ID:          model.Resume.Key,
			Delete:      deleteResumes(resumes, MsgResumesDeleteFail),
			Confirm:     opts.confirm(deleteResumesPrompt),
			AfterDelete: listing.RemoveLocally,
			PageSize:    ui.PageSize,
			Debounce:    ui.SearchDebounce,
			Logger:      opts.Logger,
		}),
		resumes: resumes,
		log:     logger.OrNop(opts.Logger),
	}
}

func (p *ResumesPage) Load(ctx context.Context, req PageRequest) error {
	return p.List.Restore(ctx, req.query())
}

func (p *ResumesPage) Download(ctx context.Context, id int64) (*service.Download, error) {
	return download(ctx, p.List, p.resumes, p.log, id)
}

func (p *ResumesPage) Close() {
	p.List.Close()
}

func fetchResumes(resumes service.ResumeServiceInterface, jobID int64, fallback string) listing.FetchFunc[model.Resume] {
	return func(ctx context.Context, q listing.Query) (*model.Page[model.Resume], error) {
		page, err := resumes.List(ctx, service.ResumeQuery{
			JobID:    jobID,
			SortBy:   q.SortBy,
			Page:     q.Page,
			Search:   q.Search,
			Category: q.Category,
			PageURL:  q.PageURL,
		})
		if err != nil {
			return nil, pageError(err, fallback)
		}
		return page, nil
	}
}

func deleteResumes(resumes service.ResumeServiceInterface, fallback string) listing.DeleteFunc {
	return func(ctx context.Context, ids []int64) error {
		return pageError(resumes.DeleteBatch(ctx, ids), fallback)
	}
}

// download fetches the original CV of a resume on the current page.
func download(ctx context.Context, list *listing.Controller[model.Resume], resumes service.ResumeServiceInterface, log *zap.Logger, id int64) (*service.Download, error) {
	resume, ok := list.Find(id)
	if !ok || resume.OriginalCV == "" {
		err := &PageError{Message: MsgDownloadFailed, Err: ErrNotFound}
		list.SetError(err)
		return nil, err
	}
	d, err := resumes.Download(ctx, resume.OriginalCV)
	if err != nil {
		log.Warn("cv download failed", zap.Int64("resume_id", id), zap.Error(err))
		err = &PageError{Message: MsgDownloadFailed, Err: err}
		list.SetError(err)
		return nil, err
	}
	return d, nil
}
