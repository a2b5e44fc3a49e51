package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"

	"rbstat/api/grpcserver"
	"rbstat/config"
	"rbstat/infra/event"
	"rbstat/infra/kafka"
	"rbstat/infra/metrics"
	"rbstat/infra/sequence"
	entrywal "rbstat/infra/wal/entry"
	exitwal "rbstat/infra/wal/exit"
	"rbstat/jobs/broadcaster"
	"rbstat/service"
	"rbstat/snapshot"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------- Entry WAL ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:            cfg.EntryWALDir,
		SegmentSize:    cfg.SegmentSize,
		SyncEveryWrite: cfg.SyncEveryWrite,
	})
	if err != nil {
		log.Fatalf("entry WAL init failed: %v", err)
	}
	defer entryWAL.Close()

	// ---------------- Exit WAL ----------------

	exitWAL, err := exitwal.Open(cfg.ExitWALDir)
	if err != nil {
		log.Fatalf("exit WAL init failed: %v", err)
	}
	defer exitWAL.Close()

	// ---------------- Sequencer ----------------

	seqGen := sequence.New(0)

	// ---------------- Restore ----------------

	snapWriter := &snapshot.Writer{Dir: cfg.SnapshotDir}
	tree, err := service.Restore(snapWriter.Path(), cfg.EntryWALDir, seqGen)
	if err != nil {
		log.Fatalf("restore failed: %v", err)
	}

	// ---------------- Service ----------------

	codec, err := event.ForFormat(cfg.EventFormat)
	if err != nil {
		log.Fatalf("event format: %v", err)
	}
	m := metrics.New()

	svc := service.NewTreeService(tree, seqGen, entryWAL, exitWAL, codec, m)
	defer svc.Close()

	if err := svc.Check(); err != nil {
		log.Fatalf("restored tree is inconsistent: %v", err)
	}

	// ---------------- Background Jobs ----------------

	// jobs must finish before the deferred closers above run
	var jobs sync.WaitGroup

	snapDone := svc.StartSnapshotJob(ctx, cfg.SnapshotDir, cfg.SnapshotInterval)
	jobs.Add(1)
	go func() {
		defer jobs.Done()
		<-snapDone
	}()

	if len(cfg.Brokers) > 0 {
		pub, err := kafka.NewPublisher(cfg.KafkaDriver, cfg.Brokers, cfg.Topic)
		if err != nil {
			log.Fatalf("kafka publisher init failed: %v", err)
		}
		bc := broadcaster.New(exitWAL, pub, cfg.BroadcastInterval)
		defer bc.Close()
		jobs.Add(1)
		go func() {
			defer jobs.Done()
			bc.Run(ctx)
		}()
	} else {
		log.Println("[broadcaster] no brokers configured, events stay in the outbox")
	}

	// ---------------- Metrics ----------------

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[metrics] server exited: %v", err)
			}
		}()
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LogErrors))
	grpcserver.Register(grpcSrv, grpcserver.NewServer(svc))

	go func() {
		<-ctx.Done()
		log.Println("[server] shutting down")
		grpcSrv.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("[server] rbstat running: grpc=%s metrics=%s values=%d", cfg.GRPCAddr, cfg.MetricsAddr, svc.Len())

	if err := grpcSrv.Serve(lis); err != nil {
		log.Printf("gRPC server exited: %v", err)
		stop()
	}

	jobs.Wait()
	log.Println("[server] background jobs stopped")
}
