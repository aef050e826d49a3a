package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/util"
	"go.uber.org/zap"
)

const (
	MsgJobNotFound       = "Could not find the specified job posting."
	MsgApplicationFailed = "Application failed."
)

var ErrInProgress = errors.New("a submission is already in progress")

type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

type ApplicationState struct {
	JobID    int64
	JobTitle string
	// FileName is empty until a valid document has been selected.
	FileName string
	Phase    Phase
	Error    string
}

func (s ApplicationState) HasFile() bool {
	return s.FileName != ""
}

// ApplicationForm is the public page where a candidate applies to one job.
type ApplicationForm struct {
	jobs service.JobServiceInterface
	apps service.ApplicationServiceInterface
	log  *zap.Logger

	mu       sync.Mutex
	jobID    int64
	jobTitle string
	file     *model.Document
	phase    Phase
	errMsg   string
}

func NewApplicationForm(jobID int64, jobs service.JobServiceInterface, apps service.ApplicationServiceInterface, log *zap.Logger) *ApplicationForm {
	return &ApplicationForm{jobID: jobID, jobs: jobs, apps: apps, log: logger.OrNop(log)}
}

// Load fetches the job title shown above the form.
func (f *ApplicationForm) Load(ctx context.Context) error {
	job, err := f.jobs.Get(ctx, f.jobID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.log.Warn("application job lookup failed", zap.Int64("job_id", f.jobID), zap.Error(err))
		f.errMsg = MsgJobNotFound
		return err
	}
	f.jobTitle = job.Title
	return nil
}

// SelectFile accepts a PDF. Anything else, including no file, is rejected
// and the previously selected file is kept.
func (f *ApplicationForm) SelectFile(doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := requirePDF(doc); err != nil {
		f.errMsg = err.Error()
		return err
	}
	f.file = doc
	f.errMsg = ""
	return nil
}

// Submit sends the selected resume together with the job id. Success and
// failure replace each other; nothing is retried.
func (f *ApplicationForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.phase == Submitting {
		f.mu.Unlock()
		return ErrInProgress
	}
	if f.file == nil {
		err := util.NewFormError(MsgResumeNeeded, map[string]string{"file": "required"})
		f.errMsg = err.Error()
		f.mu.Unlock()
		return err
	}
	doc := *f.file
	f.phase = Submitting
	f.errMsg = ""
	f.mu.Unlock()

	err := f.apps.Analyze(ctx, f.jobID, doc)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.log.Warn("application failed", zap.Int64("job_id", f.jobID), zap.String("file", doc.Name), zap.Error(err))
		f.phase = Failed
		f.errMsg = service.Message(err, MsgApplicationFailed)
		return err
	}
	f.log.Info("application submitted", zap.Int64("job_id", f.jobID), zap.String("file", doc.Name))
	f.phase = Succeeded
	return nil
}

func (f *ApplicationForm) State() ApplicationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := ApplicationState{
		JobID:    f.jobID,
		JobTitle: f.jobTitle,
		Phase:    f.phase,
		Error:    f.errMsg,
	}
	if f.file != nil {
		st.FileName = f.file.Name
	}
	return st
}
