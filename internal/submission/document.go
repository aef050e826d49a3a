// Package submission implements the file upload flows: applying to a job
// with a resume, and parsing a resume for the employer to verify and save.
package submission

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/util"
)

const (
	MsgInvalidPDF   = "Please upload a valid PDF file."
	MsgResumeNeeded = "Please upload your resume before applying."
	MsgSelectFile   = "Please select a file first."
)

// DocumentFromFile reads a local file. The declared type comes from the
// extension only.
func DocumentFromFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewDocument(filepath.Base(path), "", data), nil
}

// NewDocument builds a Document from an upload. An empty declared type is
// derived from the file name.
func NewDocument(name, declaredType string, data []byte) *model.Document {
	ct := declaredType
	if ct == "" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mediaType
	}
	return &model.Document{Name: name, ContentType: ct, Data: data}
}

func requirePDF(doc *model.Document) error {
	if !doc.IsPDF() {
		declared := ""
		if doc != nil {
			declared = doc.ContentType
		}
		return util.NewFormError(MsgInvalidPDF, map[string]string{"file": declared})
	}
	return nil
}
