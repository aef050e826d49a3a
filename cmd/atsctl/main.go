// Command atsctl drives the ATS backend from a terminal with the same
// session, list and form logic as the web portal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fadilmartias/ats-portal/internal/config"
	applogger "github.com/fadilmartias/ats-portal/internal/logger"
	"github.com/fadilmartias/ats-portal/internal/service"
	"github.com/fadilmartias/ats-portal/internal/session"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *cliEnv, args []string) error
}

var commands = []command{
	{"login", "login -u <username> -p <password>", runLogin},
	{"logout", "logout", runLogout},
	{"jobs", "jobs [-search text] [-page n] [-view id]", runJobs},
	{"candidates", "candidates -job id [-search text] [-sort key] [-category name] [-page n] [-scorecard id]", runCandidates},
	{"status", "status -job id -resume id -status <status>", runStatus},
	{"delete-candidates", "delete-candidates -job id [-yes] id...", runDeleteCandidates},
	{"resumes", "resumes [-search text] [-page n]", runResumes},
	{"delete-resumes", "delete-resumes [-yes] id...", runDeleteResumes},
	{"delete-job", "delete-job [-yes] id", runDeleteJob},
	{"create-job", "create-job -title text -description text", runCreateJob},
	{"edit-job", "edit-job -id id [-title text] [-description text]", runEditJob},
	{"apply", "apply -job id <file.pdf>", runApply},
	{"parse", "parse [-save] <file.pdf>", runParse},
	{"download", "download [-job id] -resume id [-o file]", runDownload},
	{"live-search", "live-search [-job id]", runLiveSearch},
}

// cliEnv is what every command shares: one persisted session and the
// backend bound to it.
type cliEnv struct {
	ui      *config.UIConfig
	sess    *session.Session
	svc     *service.Services
	log     *zap.Logger
	confirm func(prompt string) bool
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("Could not load .env file")
	}

	verbose := flag.Bool("v", false, "log backend requests")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cmd, ok := lookup(flag.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "atsctl: unknown command %q\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, closeEnv, err := newEnv(ctx, *verbose)
	if err != nil {
		log.Fatalf("atsctl: %v", err)
	}
	err = cmd.run(ctx, env, flag.Args()[1:])
	closeEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "atsctl %s: %v\n", cmd.name, err)
		os.Exit(1)
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: atsctl [-v] <command> [flags]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", c.usage)
	}
}

func newEnv(ctx context.Context, verbose bool) (*cliEnv, func(), error) {
	appConfig := config.LoadAppConfig()
	zlog, err := applogger.NewLogger(appConfig.Env)
	if err != nil {
		return nil, nil, err
	}
	if !verbose {
		zlog = zlog.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}

	sessCfg := config.LoadSessionConfig()
	store, closeStore, err := session.OpenStore(sessCfg, appConfig.IsProduction())
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.New(ctx, store, sessCfg.Key, zlog)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	backend := service.NewBackend(config.LoadBackendConfig(), zlog).WithTokens(sess)
	env := &cliEnv{
		ui:      config.LoadUIConfig(),
		sess:    sess,
		svc:     service.NewServices(backend),
		log:     zlog,
		confirm: askYesNo(os.Stdin, os.Stderr),
	}
	return env, func() {
		_ = zlog.Sync()
		_ = closeStore()
	}, nil
}
