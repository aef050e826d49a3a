package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/session"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-hr1"

type fakeResume struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Status     string  `json:"status"`
	JobID      int64   `json:"-"`
	Score      float64 `json:"-"`
	OriginalCV string  `json:"original_cv"`
}

type fakeJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// fakeATS is an in-memory stand-in for the REST backend.
type fakeATS struct {
	mu       sync.Mutex
	srv      *httptest.Server
	jobs     []fakeJob
	resumes  []fakeResume
	nextJob  int64
	requests []string
	authSeen []string
}

func newFakeATS(t *testing.T) *fakeATS {
	a := &fakeATS{nextJob: 100}
	a.srv = httptest.NewServer(http.HandlerFunc(a.serve))
	t.Cleanup(a.srv.Close)
	return a
}

func (a *fakeATS) addJobs(titles ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, title := range titles {
		a.nextJob++
		a.jobs = append(a.jobs, fakeJob{ID: a.nextJob, Title: title, Description: "<p>" + title + "</p>"})
	}
}

func (a *fakeATS) addResumes(jobID int64, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	base := int64(len(a.resumes))
	for i := int64(1); i <= int64(n); i++ {
		id := base + i
		a.resumes = append(a.resumes, fakeResume{
			ID:         id,
			Name:       fmt.Sprintf("Candidate %02d", id),
			Email:      fmt.Sprintf("c%d@example.com", id),
			Status:     "New",
			JobID:      jobID,
			Score:      float64(id % 10),
			OriginalCV: a.srv.URL + fmt.Sprintf("/media/resumes/cv_%d.pdf", id),
		})
	}
}

func (a *fakeATS) resumeIDs() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]int64, len(a.resumes))
	for i, r := range a.resumes {
		ids[i] = r.ID
	}
	return ids
}

func (a *fakeATS) services(sess *session.Session) *service.Services {
	b := service.NewBackend(&config.BackendConfig{URL: a.srv.URL, Timeout: 5 * time.Second}, nil)
	if sess != nil {
		b = b.WithTokens(sess)
	}
	return service.NewServices(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *fakeATS) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Token "+testToken
}

func (a *fakeATS) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, r.Method+" "+r.URL.RequestURI())
	a.authSeen = append(a.authSeen, r.Header.Get("Authorization"))

	path := r.URL.Path
	switch {
	case path == "/api/api-token-auth/":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "hr1" && body["password"] == "secret" {
			writeJSON(w, http.StatusOK, map[string]string{"token": testToken})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Unable to log in with provided credentials."}})

	case path == "/api/jobs/" && r.Method == http.MethodGet:
		a.listJobs(w, r)

	case path == "/api/jobs/" && r.Method == http.MethodPost:
		if !a.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		var job fakeJob
		_ = json.NewDecoder(r.Body).Decode(&job)
		a.nextJob++
		job.ID = a.nextJob
		a.jobs = append(a.jobs, job)
		writeJSON(w, http.StatusCreated, job)

	case strings.HasPrefix(path, "/api/jobs/"):
		a.jobDetail(w, r)

	case path == "/api/resumes/" && r.Method == http.MethodGet:
		if !a.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		a.listResumes(w, r)

	case path == "/api/resumes/delete/":
		var body struct {
			IDs []int64 `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		drop := map[int64]bool{}
		for _, id := range body.IDs {
			drop[id] = true
		}
		kept := a.resumes[:0]
		for _, res := range a.resumes {
			if !drop[res.ID] {
				kept = append(kept, res)
			}
		}
		a.resumes = kept
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})

	case strings.HasSuffix(path, "/update-status/"):
		id, _ := strconv.ParseInt(strings.Split(strings.TrimPrefix(path, "/api/resumes/"), "/")[0], 10, 64)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		for i := range a.resumes {
			if a.resumes[i].ID == id {
				a.resumes[i].Status = body["status"]
				writeJSON(w, http.StatusOK, a.resumes[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})

	case path == "/api/categories/":
		writeJSON(w, http.StatusOK, []string{"Backend", "Data"})

	case strings.HasPrefix(path, "/media/"):
		if !a.authorized(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))

	default:
		http.NotFound(w, r)
	}
}

func (a *fakeATS) listJobs(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	results := []fakeJob{}
	for _, j := range a.jobs {
		if search == "" || strings.Contains(strings.ToLower(j.Title), search) {
			results = append(results, j)
		}
	}
	writeJSON(w, http.StatusOK, a.page(r, len(results), func(start, end int) any { return results[start:end] }))
}

func (a *fakeATS) jobDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/jobs/"), "/"), 10, 64)
	idx := -1
	for i, j := range a.jobs {
		if j.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.jobs[idx])
	case http.MethodPut:
		var job fakeJob
		_ = json.NewDecoder(r.Body).Decode(&job)
		job.ID = id
		a.jobs[idx] = job
		writeJSON(w, http.StatusOK, job)
	case http.MethodDelete:
		if !a.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		a.jobs = append(a.jobs[:idx], a.jobs[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *fakeATS) listResumes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobID, _ := strconv.ParseInt(q.Get("job_id"), 10, 64)
	search := strings.ToLower(q.Get("search"))
	results := []fakeResume{}
	for _, res := range a.resumes {
		if jobID != 0 && res.JobID != jobID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(res.Name), search) {
			continue
		}
		results = append(results, res)
	}
	switch q.Get("sort_by") {
	case "-score":
		sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	case "name":
		sort.SliceStable(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	}
	writeJSON(w, http.StatusOK, a.page(r, len(results), func(start, end int) any { return results[start:end] }))
}

// page slices a result set into the paginated envelope, ten per page.
func (a *fakeATS) page(r *http.Request, total int, slice func(start, end int) any) map[string]any {
	const size = 10
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	out := map[string]any{"count": total, "results": slice(start, end), "next": nil, "previous": nil}
	ref := func(p int) string {
		u := *r.URL
		vals := u.Query()
		vals.Set("page", strconv.Itoa(p))
		u.RawQuery = vals.Encode()
		return a.srv.URL + u.RequestURI()
	}
	if end < total {
		out["next"] = ref(page + 1)
	}
	if page > 1 {
		out["previous"] = ref(page - 1)
	}
	return out
}

func loggedInSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.New(context.Background(), session.NewMemoryStore(), "test", nil)
	require.NoError(t, err)
	require.NoError(t, sess.Login(context.Background(), testToken))
	return sess
}
