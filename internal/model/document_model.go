package model

// Document is a user selected file. ContentType is the declared type (from
// the picker or the file extension); the bytes are never inspected.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

const ContentTypePDF = "application/pdf"

func (d *Document) IsPDF() bool {
	return d != nil && d.ContentType == ContentTypePDF
}
