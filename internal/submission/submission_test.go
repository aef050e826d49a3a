package submission

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upload struct {
	file        string
	contentType string
	data        string
	jobID       string
}

type fakeAPI struct {
	mu       sync.Mutex
	uploads  []upload
	saved    []map[string]any
	analyze  int
	extract  int
	failWith int
}

func (a *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs/4/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":4,"title":"Backend Engineer","description":"Go"}`)
	})
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found."}`)
	})
	mux.HandleFunc("/api/analyze-resume/", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.analyze++
		if a.failWith != 0 {
			w.WriteHeader(a.failWith)
			return
		}
		a.uploads = append(a.uploads, readUpload(t, r))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":31}`)
	})
	mux.HandleFunc("/api/extract-text/", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.extract++
		a.uploads = append(a.uploads, readUpload(t, r))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":12,"name":"Rina","email":"rina@example.com","phone":"0812","skills":"Go, SQL","education":["ITB"],"experience":null}`)
	})
	mux.HandleFunc("/api/resume/12/", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, http.MethodPut, r.Method)
		a.saved = append(a.saved, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	})
	return mux
}

func readUpload(t *testing.T, r *http.Request) upload {
	require.NoError(t, r.ParseMultipartForm(1<<20))
	f, fh, err := r.FormFile("file")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return upload{
		file:        fh.Filename,
		contentType: fh.Header.Get("Content-Type"),
		data:        string(data),
		jobID:       r.FormValue("job_description_id"),
	}
}

func newServices(t *testing.T, api *fakeAPI) *service.Services {
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	b := service.NewBackend(&config.BackendConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)
	return service.NewServices(b)
}

func pdf(name string) *model.Document {
	return &model.Document{Name: name, ContentType: model.ContentTypePDF, Data: []byte("%PDF-1.7 resume")}
}

func TestDocumentFromFileUsesExtension(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "cv.PDF")
	txtPath := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(pdfPath, []byte("not really a pdf"), 0o600))
	require.NoError(t, os.WriteFile(txtPath, []byte("%PDF-1.7"), 0o600))

	doc, err := DocumentFromFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "cv.PDF", doc.Name)
	assert.True(t, doc.IsPDF(), "the bytes are never sniffed")

	doc, err = DocumentFromFile(txtPath)
	require.NoError(t, err)
	assert.False(t, doc.IsPDF())

	_, err = DocumentFromFile(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestNewDocumentStripsParameters(t *testing.T) {
	doc := NewDocument("resume.bin", "application/pdf; charset=binary", nil)
	assert.Equal(t, model.ContentTypePDF, doc.ContentType)
}

func TestApplicationRejectsNonPDF(t *testing.T) {
	api := &fakeAPI{}
	svc := newServices(t, api)
	form := NewApplicationForm(4, svc.Jobs, svc.Applications, nil)

	err := form.SelectFile(&model.Document{Name: "cv.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"})
	var formErr *util.FormError
	require.ErrorAs(t, err, &formErr)

	st := form.State()
	assert.False(t, st.HasFile())
	assert.Equal(t, MsgInvalidPDF, st.Error)

	require.NoError(t, form.SelectFile(pdf("first.pdf")))
	require.Error(t, form.SelectFile(nil))
	assert.Equal(t, "first.pdf", form.State().FileName, "a rejected file keeps the previous one")
}

func TestApplicationRequiresFile(t *testing.T) {
	api := &fakeAPI{}
	svc := newServices(t, api)
	form := NewApplicationForm(4, svc.Jobs, svc.Applications, nil)

	require.Error(t, form.Submit(context.Background()))
	assert.Equal(t, MsgResumeNeeded, form.State().Error)
	assert.Zero(t, api.analyze)
}

func TestApplicationSubmitsMultipart(t *testing.T) {
	api := &fakeAPI{}
	svc := newServices(t, api)
	form := NewApplicationForm(4, svc.Jobs, svc.Applications, nil)
	ctx := context.Background()

	require.NoError(t, form.Load(ctx))
	assert.Equal(t, "Backend Engineer", form.State().JobTitle)

	require.NoError(t, form.SelectFile(pdf("rina.pdf")))
	require.NoError(t, form.Submit(ctx))

	st := form.State()
	assert.Equal(t, Succeeded, st.Phase)
	assert.Empty(t, st.Error)
	require.Len(t, api.uploads, 1)
	assert.Equal(t, upload{file: "rina.pdf", contentType: model.ContentTypePDF, data: "%PDF-1.7 resume", jobID: "4"}, api.uploads[0])
}

func TestApplicationFailure(t *testing.T) {
	api := &fakeAPI{failWith: http.StatusInternalServerError}
	svc := newServices(t, api)
	form := NewApplicationForm(4, svc.Jobs, svc.Applications, nil)

	require.NoError(t, form.SelectFile(pdf("rina.pdf")))
	require.Error(t, form.Submit(context.Background()))

	st := form.State()
	assert.Equal(t, Failed, st.Phase)
	assert.Equal(t, MsgApplicationFailed, st.Error)
	assert.Equal(t, 1, api.analyze, "failures are not retried")
}

func TestApplicationUnknownJob(t *testing.T) {
	api := &fakeAPI{}
	svc := newServices(t, api)
	form := NewApplicationForm(99, svc.Jobs, svc.Applications, nil)

	require.Error(t, form.Load(context.Background()))
	assert.Equal(t, MsgJobNotFound, form.State().Error)
}

func TestParseEditSave(t *testing.T) {
	api := &fakeAPI{}
	svc := newServices(t, api)
	form := NewParseForm(svc.Applications, svc.Resumes, nil)
	ctx := context.Background()

	_, err := form.Parse(ctx)
	require.Error(t, err)
	assert.Equal(t, MsgSelectFile, form.State().Error)

	_, err = form.Save(ctx)
	require.Error(t, err)
	assert.Equal(t, MsgNoData, form.State().Error)

	require.NoError(t, form.SelectFile(pdf("rina.pdf")))
	parsed, err := form.Parse(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), parsed.ID)
	assert.Equal(t, []string{"Go, SQL"}, parsed.Skills)
	assert.Equal(t, []string{"ITB"}, parsed.Education)
	assert.Empty(t, parsed.Experience)

	require.NoError(t, form.EditField("skills", "Go,SQL\nDocker, "))
	require.NoError(t, form.EditField("name", "Rina Putri"))
	assert.Error(t, form.EditField("salary", "100"))

	msg, err := form.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Details saved successfully!", msg)
	assert.Equal(t, msg, form.State().Success)

	require.Len(t, api.saved, 1)
	assert.Equal(t, "Rina Putri", api.saved[0]["name"])
	assert.Equal(t, []any{"Go", "SQL", "Docker"}, api.saved[0]["skills"])

	form.StartOver()
	st := form.State()
	assert.Nil(t, st.Parsed)
	assert.Empty(t, st.FileName)
	assert.Empty(t, st.Success)
}
