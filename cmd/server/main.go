// Command server runs the portal: public forms, the voting workflow and the
// clerk surface behind one HTTP listener. main only wires dependencies;
// business logic lives in the internal services.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"curia/internal/admin"
	"curia/internal/audit"
	auditmemory "curia/internal/audit/memory"
	auditpostgres "curia/internal/audit/postgres"
	"curia/internal/election"
	electionservice "curia/internal/election/service"
	electionstore "curia/internal/election/store/jsonfile"
	"curia/internal/election/window"
	"curia/internal/jwttoken"
	"curia/internal/platform/config"
	"curia/internal/platform/httpserver"
	"curia/internal/platform/logger"
	"curia/internal/platform/metrics"
	"curia/internal/platform/middleware"
	platformredis "curia/internal/platform/redis"
	"curia/internal/ratelimit"
	ratelimitmemory "curia/internal/ratelimit/memory"
	ratelimitredis "curia/internal/ratelimit/redis"
	"curia/internal/submission"
	"curia/internal/submission/docgen"
	submissionservice "curia/internal/submission/service"
	submissionjsonfile "curia/internal/submission/store/jsonfile"
	submissionmemory "curia/internal/submission/store/memory"
	httptransport "curia/internal/transport/http"
)

const (
	auditQueueSize  = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr    string
		dataDir string
		output  string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the government services portal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if addr != "" {
				cfg.Addr = addr
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if output != "" {
				cfg.OutputFile = output
			}
			if debug {
				cfg.DebugBypass = true
			}
			return run(cmd.Context(), cfg, debug)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides CURIA_ADDR)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "election ledger directory (overrides CURIA_DATA_DIR)")
	cmd.Flags().StringVar(&output, "output", "", "submissions output file (overrides CURIA_OUTPUT_FILE)")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug mode: verbose logs and the voting window forced open")
	return cmd
}

func run(ctx context.Context, cfg config.Server, debug bool) error {
	log := logger.New(debug)
	m := metrics.New()

	// Audit trail: emitters publish into an in-process queue; a worker
	// drains it into the configured store.
	var auditStore audit.Store = auditmemory.New()
	if cfg.AuditDatabaseURL != "" {
		pg, err := auditpostgres.Open(ctx, cfg.AuditDatabaseURL)
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		defer pg.Close()
		auditStore = pg
	}
	queue := audit.NewQueue(auditQueueSize)
	publisher := audit.NewPublisher(queue)
	worker := audit.NewWorker(auditStore, queue.Events(), log)

	// Election workflow over the two on-disk ledgers.
	ledgers, err := electionstore.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open election ledgers: %w", err)
	}
	elections := election.NewService(ledgers,
		window.NewPolicy(window.FixedStart(cfg.VotingStart)),
		electionservice.WithLogger(log),
		electionservice.WithAuditPublisher(publisher),
		electionservice.WithMetrics(m),
		electionservice.WithDebugBypass(cfg.DebugBypass),
	)

	// Form submissions. Without an output file they stay in memory, which
	// matches a dev run.
	var subStore submissionservice.Store
	if cfg.OutputFile != "" {
		store, err := submissionjsonfile.Open(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("open submissions store: %w", err)
		}
		subStore = store
	} else {
		log.Info("no output file configured, keeping submissions in memory")
		subStore = submissionmemory.New()
	}

	var docs submissionservice.DocumentGenerator
	if g, err := docgen.Load(cfg.TranslationsFile); err != nil {
		log.Warn("certificate templates unavailable, documents disabled", "error", err)
	} else {
		docs = g
	}

	submissions := submission.NewService(subStore, docs,
		submissionservice.WithLogger(log),
		submissionservice.WithAuditPublisher(publisher),
		submissionservice.WithMetrics(m),
	)

	// Per-IP throttle on the public forms; Redis-backed when configured so
	// the budget holds across replicas.
	var limiter *ratelimit.Middleware
	if cfg.SubmissionsPerMinute > 0 {
		var bucket ratelimit.BucketStore = ratelimitmemory.New()
		if client, err := platformredis.New(cfg.RedisURL); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		} else if client != nil {
			defer client.Close()
			bucket = ratelimitredis.New(client.Client)
		}
		limiter = ratelimit.NewMiddleware(bucket, cfg.SubmissionsPerMinute, time.Minute, log,
			ratelimit.WithMetrics(m))
	}

	// Clerk surface, only when a secret hash is configured.
	var (
		adminHandler *admin.Handler
		validator    middleware.TokenValidator
	)
	if cfg.AdminSecretHash != "" {
		tokens := jwttoken.NewService(cfg.JWTSigningKey, "curia", "curia-admin")
		adminHandler = admin.New(cfg.AdminSecretHash, tokens, submissions, elections, log,
			admin.WithAuditPublisher(publisher))
		validator = tokens
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		Election:       election.NewHandler(elections, log, cfg.CandidatesFile, cfg.DefaultLang),
		Submissions:    submission.NewHandler(submissions, log),
		Admin:          adminHandler,
		TokenValidator: validator,
		RateLimit:      limiter,
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting portal", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
