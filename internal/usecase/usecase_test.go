package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUI = &config.UIConfig{
	PageSize:          10,
	SearchDebounce:    20 * time.Millisecond,
	JobSearchDebounce: 10 * time.Millisecond,
	RedirectDelay:     10 * time.Millisecond,
}

func TestLoginWrongPasswordStoresNothing(t *testing.T) {
	api := newFakeATS(t)
	store := session.NewMemoryStore()
	sess, err := session.New(context.Background(), store, "browser-1", nil)
	require.NoError(t, err)

	page := NewLoginPage(api.services(sess).Auth, sess, nil)
	err = page.Submit(context.Background(), "hr1", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password.", err.Error())
	assert.Equal(t, MsgInvalidCredentials, page.ErrorMessage())

	assert.False(t, sess.IsAuthenticated())
	stored, err := store.Load(context.Background(), "browser-1")
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, page.Redirect())
}

func TestLoginRequiresFields(t *testing.T) {
	api := newFakeATS(t)
	sess, err := session.New(context.Background(), session.NewMemoryStore(), "browser-1", nil)
	require.NoError(t, err)

	page := NewLoginPage(api.services(sess).Auth, sess, nil)
	require.Error(t, page.Submit(context.Background(), "  ", ""))
	assert.Equal(t, "Please fill in all required fields.", page.ErrorMessage())
	assert.Empty(t, api.requests)
}

func TestLoginPersistsAndNotifies(t *testing.T) {
	api := newFakeATS(t)
	store := session.NewMemoryStore()
	sess, err := session.New(context.Background(), store, "browser-1", nil)
	require.NoError(t, err)

	var states []session.State
	sess.Subscribe(func(s session.State) { states = append(states, s) })

	page := NewLoginPage(api.services(sess).Auth, sess, nil)
	require.NoError(t, page.Submit(context.Background(), "hr1", "secret"))

	assert.True(t, sess.IsAuthenticated())
	assert.Equal(t, AfterLoginPath, page.Redirect())
	stored, err := store.Load(context.Background(), "browser-1")
	require.NoError(t, err)
	assert.Equal(t, testToken, stored)
	require.Len(t, states, 1)
	assert.True(t, states[0].Authenticated)

	reloaded, err := session.New(context.Background(), store, "browser-1", nil)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAuthenticated(), "a reload keeps the session")
}

func TestCandidatePagination(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Backend Engineer")
	api.addResumes(101, 12)
	ctx := context.Background()

	page := NewCandidateListPage(ctx, 101, api.services(loggedInSession(t)), PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))

	st := page.List.Snapshot()
	assert.Len(t, st.Items, 10)
	assert.Equal(t, "page 1 of 2", st.PageLabel())
	assert.Equal(t, DefaultCandidateSort, st.SortBy)
	assert.Equal(t, "Backend Engineer", page.JobTitle())
	assert.Equal(t, []string{"Backend", "Data"}, page.Categories())

	require.NoError(t, page.List.NextPage(ctx))
	st = page.List.Snapshot()
	assert.Len(t, st.Items, 2)
	assert.Equal(t, "page 2 of 2", st.PageLabel())
	assert.False(t, st.HasNext())
	assert.True(t, st.HasPrevious())

	require.NoError(t, page.List.SetSort(ctx, "name"))
	st = page.List.Snapshot()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, "Candidate 01", st.Items[0].Name)
}

func TestCandidateInvalidSortFallsBack(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Backend Engineer")
	api.addResumes(101, 1)

	page := NewCandidateListPage(context.Background(), 101, api.services(loggedInSession(t)), PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(context.Background(), PageRequest{SortBy: "salary"}))
	assert.Contains(t, api.requests[0], "sort_by=-score")
}

func TestCandidateStatusChangeInPlace(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Backend Engineer")
	api.addResumes(101, 5)
	ctx := context.Background()

	page := NewCandidateListPage(ctx, 101, api.services(loggedInSession(t)), PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))
	before := page.List.Snapshot()
	requests := len(api.requests)

	target := before.Items[2].ID
	updated, err := page.ChangeStatus(ctx, target, model.StatusInterviewing)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInterviewing, updated.Status)
	assert.Equal(t, requests+1, len(api.requests), "no refetch after a status change")

	after := page.List.Snapshot()
	require.Len(t, after.Items, len(before.Items))
	assert.Equal(t, before.Count, after.Count)
	for i := range before.Items {
		assert.Equal(t, before.Items[i].ID, after.Items[i].ID)
		if after.Items[i].ID == target {
			assert.Equal(t, model.StatusInterviewing, after.Items[i].Status)
		} else {
			assert.Equal(t, before.Items[i].Status, after.Items[i].Status)
		}
	}
}

func TestCandidateStatusChangeRejectsUnknownStatus(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Backend Engineer")
	api.addResumes(101, 1)
	ctx := context.Background()

	page := NewCandidateListPage(ctx, 101, api.services(loggedInSession(t)), PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))

	_, err := page.ChangeStatus(ctx, 1, model.ResumeStatus("Ghosted"))
	require.Error(t, err)
	assert.NotEmpty(t, page.List.Snapshot().Error)
}

func TestCandidateBatchDeleteRefetches(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Backend Engineer")
	api.addResumes(101, 12)
	ctx := context.Background()

	var prompts []string
	page := NewCandidateListPage(ctx, 101, api.services(loggedInSession(t)), PageOptions{
		UI:      testUI,
		Confirm: func(p string) bool { prompts = append(prompts, p); return true },
	})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))
	require.NoError(t, page.List.NextPage(ctx))

	page.List.SelectAll(true)
	assert.True(t, page.List.AllSelected())
	n, err := page.List.DeleteSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Are you sure you want to delete 2 applicant(s)?"}, prompts)

	st := page.List.Snapshot()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 10, st.Count)
	assert.Equal(t, "page 1 of 1", st.PageLabel())
	assert.Zero(t, st.Selected.Len())
	assert.Len(t, api.resumeIDs(), 10)
}

func TestCandidateScorecardModal(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Backend Engineer")
	api.addResumes(101, 2)

	page := NewCandidateListPage(context.Background(), 101, api.services(loggedInSession(t)), PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(context.Background(), PageRequest{}))

	assert.ErrorIs(t, page.ShowScorecard(404), ErrNotFound)
	require.NoError(t, page.ShowScorecard(2))
	open, ok := page.Scorecard.Current()
	require.True(t, ok)
	assert.Equal(t, int64(2), open.ID)
}

func TestResumesBatchDeleteRemovesLocally(t *testing.T) {
	api := newFakeATS(t)
	api.addResumes(0, 3)
	ctx := context.Background()

	confirm := false
	page := NewResumesPage(ctx, api.services(loggedInSession(t)).Resumes, PageOptions{
		UI:      testUI,
		Confirm: func(string) bool { return confirm },
	})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))

	_, err := page.List.DeleteSelected(ctx)
	assert.ErrorIs(t, err, listing.ErrNothingSelected)

	page.List.ToggleSelect(2)
	_, err = page.List.DeleteSelected(ctx)
	assert.ErrorIs(t, err, listing.ErrNotConfirmed)
	assert.Len(t, api.resumeIDs(), 3, "nothing is sent without confirmation")

	confirm = true
	requests := len(api.requests)
	_, err = page.List.DeleteSelected(ctx)
	require.NoError(t, err)
	assert.Equal(t, requests+1, len(api.requests))

	st := page.List.Snapshot()
	for _, r := range st.Items {
		assert.NotEqual(t, int64(2), r.ID)
	}
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, []int64{1, 3}, api.resumeIDs())
}

func TestResumesDebouncedSearch(t *testing.T) {
	api := newFakeATS(t)
	api.addResumes(0, 12)
	ctx := context.Background()

	page := NewResumesPage(ctx, api.services(loggedInSession(t)).Resumes, PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))

	done := make(chan listing.State[model.Resume], 4)
	page.List.Subscribe(func(s listing.State[model.Resume]) {
		if s.Loaded && !s.Loading && s.Search != "" {
			done <- s
		}
	})
	page.List.SetSearchTerm("Candidate 1")
	page.List.SetSearchTerm("Candidate 11")

	select {
	case st := <-done:
		require.Len(t, st.Items, 1)
		assert.Equal(t, int64(11), st.Items[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("search did not settle")
	}
	searches := 0
	for _, r := range api.requests {
		if strings.Contains(r, "search=") {
			searches++
		}
	}
	assert.Equal(t, 1, searches)
}

func TestResumesDownload(t *testing.T) {
	api := newFakeATS(t)
	api.addResumes(0, 1)
	ctx := context.Background()

	page := NewResumesPage(ctx, api.services(loggedInSession(t)).Resumes, PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))

	d, err := page.Download(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "cv_1.pdf", d.Name)
	assert.Equal(t, "application/pdf", d.ContentType)
	assert.Equal(t, []byte("%PDF-1.7"), d.Data)

	_, err = page.Download(ctx, 99)
	require.Error(t, err)
	assert.Equal(t, MsgDownloadFailed, page.List.Snapshot().Error)
}

func TestResumesUnauthenticated(t *testing.T) {
	api := newFakeATS(t)
	api.addResumes(0, 1)
	sess, err := session.New(context.Background(), session.NewMemoryStore(), "anon", nil)
	require.NoError(t, err)

	page := NewResumesPage(context.Background(), api.services(sess).Resumes, PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	err = page.Load(context.Background(), PageRequest{})
	require.Error(t, err)
	assert.Equal(t, "Authentication credentials were not provided.", page.List.Snapshot().Error)
}

func TestPublicJobsEmptyMessagesAndModal(t *testing.T) {
	api := newFakeATS(t)
	ctx := context.Background()

	page := NewPublicJobsPage(ctx, api.services(nil).Jobs, PageOptions{UI: testUI})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))
	assert.Equal(t, MsgNoOpenPositions, page.EmptyMessage())

	api.addJobs("Go Engineer", "Data Analyst")
	require.NoError(t, page.List.CommitSearch(ctx, "designer"))
	assert.Equal(t, `No jobs found for "designer".`, page.EmptyMessage())

	require.NoError(t, page.List.CommitSearch(ctx, "go"))
	st := page.List.Snapshot()
	require.Len(t, st.Items, 1)
	assert.Empty(t, api.authSeen[len(api.authSeen)-1], "the public list is fetched without a token")

	require.NoError(t, page.View(st.Items[0].ID))
	job, ok := page.Detail.Current()
	require.True(t, ok)
	assert.Equal(t, "Go Engineer", job.Title)
	assert.ErrorIs(t, page.View(999), ErrNotFound)
}

func TestDashboardDeletePosting(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Go Engineer", "Data Analyst")
	ctx := context.Background()

	answer := false
	var prompt string
	page := NewDashboardPage(ctx, api.services(loggedInSession(t)).Jobs, PageOptions{
		UI:      testUI,
		Confirm: func(p string) bool { prompt = p; return answer },
	})
	t.Cleanup(page.Close)
	require.NoError(t, page.Load(ctx, PageRequest{}))

	assert.ErrorIs(t, page.DeletePosting(ctx, 101), listing.ErrNotConfirmed)
	assert.Contains(t, prompt, "Go Engineer")
	assert.Len(t, page.List.Snapshot().Items, 2)

	answer = true
	require.NoError(t, page.DeletePosting(ctx, 101))
	st := page.List.Snapshot()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "Data Analyst", st.Items[0].Title)
	assert.Equal(t, 1, st.Count)

	err := page.DeletePosting(ctx, 101)
	require.Error(t, err)
	assert.Equal(t, "Not found.", page.List.Snapshot().Error)
}

func TestJobEditorUpdatesAndRedirects(t *testing.T) {
	api := newFakeATS(t)
	api.addJobs("Go Engineer")
	ctx := context.Background()

	redirected := make(chan model.Job, 1)
	page := NewJobEditorPage(api.services(loggedInSession(t)).Jobs, 101, func(j model.Job) { redirected <- j }, PageOptions{UI: testUI})
	t.Cleanup(page.Close)

	require.NoError(t, page.Load(ctx))
	assert.Equal(t, "Go Engineer", page.Draft().Title)

	require.NoError(t, page.SetFields("Senior Go Engineer", "<p>Remote</p>"))
	_, err := page.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, MsgJobUpdated, page.Snapshot().Success)
	assert.Contains(t, api.requests, "PUT /api/jobs/101/")

	select {
	case j := <-redirected:
		assert.Equal(t, "Senior Go Engineer", j.Title)
	case <-time.After(time.Second):
		t.Fatal("no redirect")
	}
}

func TestJobEditorMissingPostingIsTerminal(t *testing.T) {
	api := newFakeATS(t)
	page := NewJobEditorPage(api.services(loggedInSession(t)).Jobs, 555, nil, PageOptions{UI: testUI})
	t.Cleanup(page.Close)

	err := page.Load(context.Background())
	require.Error(t, err)
	st := page.Snapshot()
	assert.True(t, st.Terminal)
	assert.Equal(t, MsgJobDetailsUnavailable, st.Error)
}

func TestJobCreate(t *testing.T) {
	api := newFakeATS(t)
	ctx := context.Background()
	page := NewJobCreatePage(api.services(loggedInSession(t)).Jobs, nil, PageOptions{UI: testUI})
	t.Cleanup(page.Close)

	_, err := page.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "Please fill in all required fields.", page.Snapshot().Error)

	require.NoError(t, page.SetFields("Data Analyst", "SQL and dashboards"))
	created, err := page.Submit(ctx)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, MsgJobCreated, page.Snapshot().Success)
}

func TestPageErrorKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := pageError(cause, "Failed.")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "boom", err.Error())
	assert.NoError(t, pageError(nil, "Failed."))
}
