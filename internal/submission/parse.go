package submission

import (
	"context"
	"sync"

	"github.com/fadilmartias/ats-portal/internal/dto"
	"github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/util"
	"go.uber.org/zap"
)

const (
	MsgParseFailed = "Failed to parse resume."
	MsgNoData      = "No data to save."
	MsgSaveFailed  = "Failed to save details."
)

// ParseFields lists the fields an employer may correct after parsing.
var ParseFields = []string{"name", "email", "phone", "skills", "education", "experience"}

type ParseState struct {
	FileName string
	Parsed   *dto.ParsedResume
	Loading  bool
	Error    string
	Success  string
}

// ParseForm uploads a resume for text extraction, lets the employer correct
// the result and saves it.
type ParseForm struct {
	apps    service.ApplicationServiceInterface
	resumes service.ResumeServiceInterface
	log     *zap.Logger

	mu      sync.Mutex
	file    *model.Document
	parsed  *dto.ParsedResume
	loading bool
	errMsg  string
	success string
}

func NewParseForm(apps service.ApplicationServiceInterface, resumes service.ResumeServiceInterface, log *zap.Logger) *ParseForm {
	return &ParseForm{apps: apps, resumes: resumes, log: logger.OrNop(log)}
}

func (f *ParseForm) SelectFile(doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success = ""
	if err := requirePDF(doc); err != nil {
		f.errMsg = err.Error()
		return err
	}
	f.file = doc
	f.errMsg = ""
	return nil
}

func (f *ParseForm) Parse(ctx context.Context) (*dto.ParsedResume, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil, ErrInProgress
	}
	if f.file == nil {
		err := util.NewFormError(MsgSelectFile, map[string]string{"file": "required"})
		f.errMsg = err.Error()
		f.mu.Unlock()
		return nil, err
	}
	doc := *f.file
	f.loading = true
	f.errMsg = ""
	f.success = ""
	f.parsed = nil
	f.mu.Unlock()

	parsed, err := f.apps.ExtractText(ctx, doc)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.log.Warn("resume parse failed", zap.String("file", doc.Name), zap.Error(err))
		f.errMsg = service.Message(err, MsgParseFailed)
		return nil, err
	}
	f.parsed = parsed
	return cloneParsed(parsed), nil
}

// EditField changes one parsed field. List fields are split on commas and
// newlines.
func (f *ParseForm) EditField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.parsed == nil {
		return util.NewFormError(MsgNoData, nil)
	}
	f.success = ""
	switch name {
	case "name":
		f.parsed.Name = value
	case "email":
		f.parsed.Email = value
	case "phone":
		f.parsed.Phone = value
	case "skills":
		f.parsed.Skills = splitList(value)
	case "education":
		f.parsed.Education = splitList(value)
	case "experience":
		f.parsed.Experience = splitList(value)
	default:
		return util.NewFormError("unknown field", map[string]string{name: "not editable"})
	}
	return nil
}

func (f *ParseForm) Save(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return "", ErrInProgress
	}
	if f.parsed == nil || f.parsed.ID == 0 {
		err := util.NewFormError(MsgNoData, nil)
		f.errMsg = err.Error()
		f.mu.Unlock()
		return "", err
	}
	details := *cloneParsed(f.parsed)
	f.loading = true
	f.errMsg = ""
	f.success = ""
	f.mu.Unlock()

	msg, err := f.resumes.UpdateDetails(ctx, details)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.log.Warn("resume save failed", zap.Int64("resume_id", details.ID), zap.Error(err))
		f.errMsg = service.Message(err, MsgSaveFailed)
		return "", err
	}
	f.success = msg
	return msg, nil
}

// Restore puts back a parse result carried by the client, for front ends
// that keep nothing between the parse and save steps.
func (f *ParseForm) Restore(parsed dto.ParsedResume) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parsed = cloneParsed(&parsed)
	f.errMsg = ""
	f.success = ""
}

func (f *ParseForm) StartOver() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.file = nil
	f.parsed = nil
	f.errMsg = ""
	f.success = ""
}

func (f *ParseForm) State() ParseState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := ParseState{
		Parsed:  cloneParsed(f.parsed),
		Loading: f.loading,
		Error:   f.errMsg,
		Success: f.success,
	}
	if f.file != nil {
		st.FileName = f.file.Name
	}
	return st
}

func splitList(value string) []string {
	return []string(model.SplitSkills(value))
}

func cloneParsed(p *dto.ParsedResume) *dto.ParsedResume {
	if p == nil {
		return nil
	}
	c := *p
	c.Skills = append([]string{}, p.Skills...)
	c.Education = append([]string{}, p.Education...)
	c.Experience = append([]string{}, p.Experience...)
	c.Projects = append([]string{}, p.Projects...)
	return &c
}
