package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/submission"
	"github.com/fadilmartias/ats-portal/internal/usecase"
)

var errUsage = errors.New("invalid arguments")

func (env *cliEnv) options(yes bool) usecase.PageOptions {
	confirm := usecase.ConfirmFunc(env.confirm)
	if yes {
		confirm = usecase.Confirmed(true)
	}
	return usecase.PageOptions{UI: env.ui, Confirm: confirm, Logger: env.log}
}

// askYesNo prompts on out and reads the answer from in. Anything but y or
// yes declines.
func askYesNo(in io.Reader, out io.Writer) usecase.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: bad id %q", errUsage, a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func requireLogin(env *cliEnv) error {
	if !env.sess.IsAuthenticated() {
		return errors.New("not logged in, run atsctl login first")
	}
	return nil
}

func runLogin(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page := usecase.NewLoginPage(env.svc.Auth, env.sess, env.log)
	if err := page.Submit(ctx, *username, *password); err != nil {
		return errors.New(page.ErrorMessage())
	}
	fmt.Println("Logged in.")
	return nil
}

func runLogout(ctx context.Context, env *cliEnv, _ []string) error {
	if err := env.sess.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runJobs(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("jobs")
	search := fs.String("search", "", "filter by title")
	pageNo := fs.Int("page", 1, "page number")
	view := fs.Int64("view", 0, "show the description of a job on the page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page := usecase.NewPublicJobsPage(ctx, env.svc.Jobs, env.options(false))
	defer page.Close()
	if err := page.Load(ctx, usecase.PageRequest{Search: *search, Page: *pageNo}); err != nil {
		return err
	}
	if *view > 0 {
		if err := page.View(*view); err != nil {
			return fmt.Errorf("job %d is not on this page", *view)
		}
		return page.Detail.Render(os.Stdout, func(w io.Writer, job model.Job) error {
			_, err := fmt.Fprintf(w, "%s\n\n%s\n", job.Title, job.Description)
			return err
		})
	}
	printJobs(page.List.Snapshot(), page.EmptyMessage())
	return nil
}

func printJobs(st listing.State[model.Job], empty string) {
	if len(st.Items) == 0 {
		fmt.Println(empty)
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPOSTED")
	for _, j := range st.Items {
		posted := ""
		if !j.CreatedAt.IsZero() {
			posted = j.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", j.ID, j.Title, posted)
	}
	tw.Flush()
	fmt.Println(st.PageLabel())
}

func printResumes(st listing.State[model.Resume], empty string, withStatus bool) {
	if len(st.Items) == 0 {
		fmt.Println(empty)
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if withStatus {
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSCORE\tSTATUS")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSKILLS")
	}
	for _, r := range st.Items {
		if withStatus {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.ScoreLabel(), r.Status)
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Email, r.Skills)
		}
	}
	tw.Flush()
	fmt.Println(st.PageLabel())
}

func printScorecard(w io.Writer, r model.Resume) error {
	fmt.Fprintf(w, "Scorecard: %s\n", r.Name)
	sc := r.Scorecard
	if sc == nil {
		_, err := fmt.Fprintln(w, "No scorecard is available for this candidate yet.")
		return err
	}
	fmt.Fprintf(w, "Match score: %s / 10\n", sc.ScoreLabel())
	if sc.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", sc.Summary)
	}
	fmt.Fprintf(w, "\nMatching skills: %s\n", strings.Join(sc.SkillGapAnalysis.MatchingSkills, ", "))
	fmt.Fprintf(w, "Missing skills:  %s\n", strings.Join(sc.SkillGapAnalysis.MissingSkills, ", "))
	for _, rf := range sc.RedFlags {
		fmt.Fprintf(w, "Red flag: %s\n", rf)
	}
	_, err := fmt.Fprintln(w)
	return err
}

type candidateFlags struct {
	job      *int64
	search   *string
	sortBy   *string
	category *string
	page     *int
}

func addCandidateFlags(fs *flag.FlagSet) candidateFlags {
	return candidateFlags{
		job:      fs.Int64("job", 0, "job posting id"),
		search:   fs.String("search", "", "filter by name"),
		sortBy:   fs.String("sort", usecase.DefaultCandidateSort, "sort key"),
		category: fs.String("category", "", "category filter"),
		page:     fs.Int("page", 1, "page number"),
	}
}

func (f candidateFlags) request() usecase.PageRequest {
	return usecase.PageRequest{Search: *f.search, SortBy: *f.sortBy, Category: *f.category, Page: *f.page}
}

func loadCandidates(ctx context.Context, env *cliEnv, f candidateFlags, yes bool) (*usecase.CandidateListPage, error) {
	if err := requireLogin(env); err != nil {
		return nil, err
	}
	if *f.job <= 0 {
		return nil, fmt.Errorf("%w: -job is required", errUsage)
	}
	page := usecase.NewCandidateListPage(ctx, *f.job, env.svc, env.options(yes))
	if err := page.Load(ctx, f.request()); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

func runCandidates(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("candidates")
	f := addCandidateFlags(fs)
	scorecard := fs.Int64("scorecard", 0, "show the scorecard of a candidate on the page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := loadCandidates(ctx, env, f, false)
	if err != nil {
		return err
	}
	defer page.Close()

	if *scorecard > 0 {
		if err := page.ShowScorecard(*scorecard); err != nil {
			return fmt.Errorf("candidate %d is not on this page", *scorecard)
		}
		return page.Scorecard.Render(os.Stdout, printScorecard)
	}
	if title := page.JobTitle(); title != "" {
		fmt.Printf("Candidates for %s\n\n", title)
	}
	st := page.List.Snapshot()
	if st.Error != "" {
		fmt.Fprintln(os.Stderr, st.Error)
	}
	printResumes(st, page.EmptyMessage(), true)
	return nil
}

func runStatus(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("status")
	f := addCandidateFlags(fs)
	resumeID := fs.Int64("resume", 0, "resume id")
	status := fs.String("status", "", "new status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st := model.ResumeStatus(*status)
	if !st.Valid() {
		return fmt.Errorf("%w: status must be one of %v", errUsage, model.ResumeStatuses)
	}
	page, err := loadCandidates(ctx, env, f, false)
	if err != nil {
		return err
	}
	defer page.Close()
	updated, err := page.ChangeStatus(ctx, *resumeID, st)
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s.\n", updated.Name, updated.Status)
	return nil
}

func runDeleteCandidates(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("delete-candidates")
	f := addCandidateFlags(fs)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	page, err := loadCandidates(ctx, env, f, *yes)
	if err != nil {
		return err
	}
	defer page.Close()
	return deleteSelected(ctx, page.List, ids)
}

func deleteSelected[T any](ctx context.Context, list *listing.Controller[T], ids []int64) error {
	for _, id := range ids {
		if !list.ToggleSelect(id) {
			fmt.Fprintf(os.Stderr, "id %d is not on this page, skipped\n", id)
		}
	}
	n, err := list.DeleteSelected(ctx)
	switch {
	case errors.Is(err, listing.ErrNotConfirmed):
		fmt.Println("Cancelled.")
		return nil
	case err != nil:
		return err
	}
	fmt.Printf("Deleted %d item(s). Now showing %s.\n", n, list.Snapshot().PageLabel())
	return nil
}

func loadResumes(ctx context.Context, env *cliEnv, search string, pageNo int, yes bool) (*usecase.ResumesPage, error) {
	if err := requireLogin(env); err != nil {
		return nil, err
	}
	page := usecase.NewResumesPage(ctx, env.svc.Resumes, env.options(yes))
	if err := page.Load(ctx, usecase.PageRequest{Search: search, Page: pageNo}); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

func runResumes(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("resumes")
	search := fs.String("search", "", "filter by name")
	pageNo := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := loadResumes(ctx, env, *search, *pageNo, false)
	if err != nil {
		return err
	}
	defer page.Close()
	printResumes(page.List.Snapshot(), usecase.MsgNoResumes, false)
	return nil
}

func runDeleteResumes(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("delete-resumes")
	pageNo := fs.Int("page", 1, "page the ids are on")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	page, err := loadResumes(ctx, env, "", *pageNo, *yes)
	if err != nil {
		return err
	}
	defer page.Close()
	return deleteSelected(ctx, page.List, ids)
}

func runDeleteJob(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("delete-job")
	pageNo := fs.Int("page", 1, "dashboard page the job is on")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := parseIDs(fs.Args())
	if err != nil || len(ids) != 1 {
		return fmt.Errorf("%w: exactly one job id is required", errUsage)
	}
	if err := requireLogin(env); err != nil {
		return err
	}
	page := usecase.NewDashboardPage(ctx, env.svc.Jobs, env.options(*yes))
	defer page.Close()
	if err := page.Load(ctx, usecase.PageRequest{Page: *pageNo}); err != nil {
		return err
	}
	err = page.DeletePosting(ctx, ids[0])
	switch {
	case errors.Is(err, listing.ErrNotConfirmed):
		fmt.Println("Cancelled.")
		return nil
	case err != nil:
		return err
	}
	fmt.Println("Job posting deleted.")
	return nil
}

func runCreateJob(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("create-job")
	title := fs.String("title", "", "job title")
	description := fs.String("description", "", "job description, HTML allowed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireLogin(env); err != nil {
		return err
	}
	page := usecase.NewJobCreatePage(env.svc.Jobs, nil, env.options(false))
	defer page.Close()
	return submitJob(ctx, page, *title, *description)
}

func runEditJob(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("edit-job")
	id := fs.Int64("id", 0, "job posting id")
	title := fs.String("title", "", "new title, unchanged when empty")
	description := fs.String("description", "", "new description, unchanged when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireLogin(env); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}
	page := usecase.NewJobEditorPage(env.svc.Jobs, *id, nil, env.options(false))
	defer page.Close()
	if err := page.Load(ctx); err != nil {
		return errors.New(page.Snapshot().Error)
	}
	draft := page.Draft()
	if *title == "" {
		*title = draft.Title
	}
	if *description == "" {
		*description = draft.Description
	}
	return submitJob(ctx, page, *title, *description)
}

func submitJob(ctx context.Context, page *usecase.JobEditorPage, title, description string) error {
	if err := page.SetFields(title, description); err != nil {
		return err
	}
	if _, err := page.Submit(ctx); err != nil {
		return errors.New(page.Snapshot().Error)
	}
	fmt.Println(page.Snapshot().Success)
	return nil
}

func runApply(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("apply")
	jobID := fs.Int64("job", 0, "job posting id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobID <= 0 || fs.NArg() != 1 {
		return fmt.Errorf("%w: apply -job id <file.pdf>", errUsage)
	}
	form := submission.NewApplicationForm(*jobID, env.svc.Jobs, env.svc.Applications, env.log)
	if err := form.Load(ctx); err != nil {
		return errors.New(form.State().Error)
	}
	doc, err := submission.DocumentFromFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := form.SelectFile(doc); err != nil {
		return err
	}
	if err := form.Submit(ctx); err != nil {
		return errors.New(form.State().Error)
	}
	fmt.Printf("Applied to %s with %s.\n", form.State().JobTitle, doc.Name)
	return nil
}

func runParse(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("parse")
	save := fs.Bool("save", false, "save the parsed details")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: parse [-save] <file.pdf>", errUsage)
	}
	if err := requireLogin(env); err != nil {
		return err
	}
	form := submission.NewParseForm(env.svc.Applications, env.svc.Resumes, env.log)
	doc, err := submission.DocumentFromFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := form.SelectFile(doc); err != nil {
		return err
	}
	parsed, err := form.Parse(ctx)
	if err != nil {
		return errors.New(form.State().Error)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", parsed.Name)
	fmt.Fprintf(tw, "Email\t%s\n", parsed.Email)
	fmt.Fprintf(tw, "Phone\t%s\n", parsed.Phone)
	fmt.Fprintf(tw, "Skills\t%s\n", strings.Join(parsed.Skills, ", "))
	fmt.Fprintf(tw, "Education\t%s\n", strings.Join(parsed.Education, "; "))
	fmt.Fprintf(tw, "Experience\t%s\n", strings.Join(parsed.Experience, "; "))
	tw.Flush()
	if !*save {
		return nil
	}
	msg, err := form.Save(ctx)
	if err != nil {
		return errors.New(form.State().Error)
	}
	fmt.Println(msg)
	return nil
}

func runDownload(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("download")
	f := addCandidateFlags(fs)
	resumeID := fs.Int64("resume", 0, "resume id")
	out := fs.String("o", "", "output file, the server's file name when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var (
		d   *service.Download
		err error
	)
	if *f.job > 0 {
		page, lerr := loadCandidates(ctx, env, f, false)
		if lerr != nil {
			return lerr
		}
		defer page.Close()
		d, err = page.Download(ctx, *resumeID)
	} else {
		page, lerr := loadResumes(ctx, env, *f.search, *f.page, false)
		if lerr != nil {
			return lerr
		}
		defer page.Close()
		d, err = page.Download(ctx, *resumeID)
	}
	if err != nil {
		return err
	}
	name := *out
	if name == "" {
		name = d.Name
	}
	if err := os.WriteFile(name, d.Data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Saved %s (%d bytes).\n", name, len(d.Data))
	return nil
}

// runLiveSearch feeds every line typed on stdin to the debounced search
// and prints each result set as it arrives.
func runLiveSearch(ctx context.Context, env *cliEnv, args []string) error {
	fs := newFlags("live-search")
	jobID := fs.Int64("job", 0, "search the candidates of this job instead of open positions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobID > 0 {
		if err := requireLogin(env); err != nil {
			return err
		}
		page := usecase.NewCandidateListPage(ctx, *jobID, env.svc, env.options(false))
		defer page.Close()
		if err := page.Load(ctx, usecase.PageRequest{}); err != nil {
			return err
		}
		return liveSearch(ctx, page.List, func(st listing.State[model.Resume]) {
			printResumes(st, page.EmptyMessage(), true)
		})
	}
	page := usecase.NewPublicJobsPage(ctx, env.svc.Jobs, env.options(false))
	defer page.Close()
	if err := page.Load(ctx, usecase.PageRequest{}); err != nil {
		return err
	}
	return liveSearch(ctx, page.List, func(st listing.State[model.Job]) {
		printJobs(st, page.EmptyMessage())
	})
}

func liveSearch[T any](ctx context.Context, list *listing.Controller[T], show func(listing.State[T])) error {
	show(list.Snapshot())
	results := make(chan listing.State[T], 1)
	unsubscribe := list.Subscribe(func(st listing.State[T]) {
		// Keystrokes also notify; only settled fetches are shown.
		if st.Loading || !st.Loaded || st.Search != st.SearchInput {
			return
		}
		select {
		case <-results:
		default:
		}
		select {
		case results <- st:
		default:
		}
	})
	defer unsubscribe()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintln(os.Stderr, "type to search, Ctrl-D to stop")
	last := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := list.CommitSearch(ctx, last); err != nil {
					return err
				}
				show(list.Snapshot())
				return nil
			}
			last = line
			list.SetSearchTerm(line)
		case st := <-results:
			if st.Search != "" {
				fmt.Printf("\nResults for %q:\n", st.Search)
			}
			if st.Error != "" {
				fmt.Fprintln(os.Stderr, st.Error)
			}
			show(st)
		}
	}
}
