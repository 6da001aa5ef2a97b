package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"substrates.ai/internal/builds"
	persistlog "substrates.ai/internal/persistence/log"
	"substrates.ai/internal/sim/palette"
	"substrates.ai/internal/sim/substrate"
	"substrates.ai/internal/sim/tuning"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "http listen address")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		tuningPath  = flag.String("settings", "", "path to settings.yaml (default: built-in sequential_gathering settings)")
		disableDB   = flag.Bool("disable_db", false, "disable the build index")
		noArchive   = flag.Bool("no_archive", false, "do not archive built documents")
		strictRoles = flag.Bool("strict_roles", false, "reject roles outside valid_roles")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	settings, err := tuning.Load(strings.TrimSpace(*tuningPath))
	if err != nil {
		logger.Fatalf("load settings: %v", err)
	}
	asm, err := substrate.NewAssembler(settings, palette.HumanReadable())
	if err != nil {
		logger.Fatalf("assembler: %v", err)
	}

	idx, err := openRuntimeIndex(*dataDir, *disableDB, logger)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	archiveDir := ""
	if !*noArchive {
		archiveDir = filepath.Join(*dataDir, "archive")
	}
	mirror, err := buildMirror(archiveDir, logger)
	if err != nil {
		logger.Fatalf("init mirror: %v", err)
	}
	if mirror != nil {
		defer mirror.Close()
	}

	buildLog := persistlog.NewBuildLogger(*dataDir)
	defer buildLog.Close()

	opts := builds.Options{
		Assembler:   asm,
		ArchiveDir:  archiveDir,
		Index:       idx,
		BuildLog:    buildLog,
		Logger:      log.New(os.Stdout, "[builds] ", log.LstdFlags|log.Lmicroseconds),
		StrictRoles: *strictRoles,
	}
	if mirror != nil {
		opts.Mirror = mirror
	}
	svc, err := builds.New(opts)
	if err != nil {
		logger.Fatalf("build service: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	mux, wsSrv := buildMux(svc, idx, mirror, logger, envBool("SUBSTRATE_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()))
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
		// Hijacked ws connections are not covered by srv.Shutdown.
		if err := wsSrv.Shutdown(ctx2); err != nil {
			logger.Printf("ws shutdown: %v", err)
		}
	}()

	logger.Printf("level=%s max_players=%d listening on %s", settings.LevelName, asm.MaxPlayers(), *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	// Sessions must be drained before the deferred index and log closes run.
	<-stopped
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
