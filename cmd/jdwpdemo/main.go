// godwp demo
//
// Drives a jdwp.Session against a scripted MockTransport so the entity
// graph and laziness can be exercised without a real Dalvik VM attached.
//
// Usage:
//
//	go run ./cmd/jdwpdemo
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/scottdunlop/godwp/config"
	"github.com/scottdunlop/godwp/jdwp"
	"github.com/scottdunlop/godwp/observability"
	"github.com/scottdunlop/godwp/testutil"
	"github.com/scottdunlop/godwp/wire"
)

func scriptedTransport(sizes wire.IDSizes) *testutil.MockTransport {
	mt := testutil.NewMockTransport()

	classesPayload := wire.NewEncoder(sizes)
	classesPayload.PackU32(1)
	classesPayload.Pack("1t$$4", byte(1), wire.TypeID(100), "Lcom/example/Main;", "", uint32(0))
	mt.WithReply(1, 0x14, 0, classesPayload.Bytes())

	threadsPayload := wire.NewEncoder(sizes)
	threadsPayload.PackInt32(1)
	threadsPayload.PackObjectID(wire.ObjectID(7))
	mt.WithReply(1, 0x04, 0, threadsPayload.Bytes())

	nameReply := wire.NewEncoder(sizes)
	nameReply.PackString("main")
	mt.WithReply(11, 0x01, 0, nameReply.Bytes())

	return mt
}

func main() {
	addr := flag.String("addr", "", "reserved for a future real Transport implementation")
	otlpEndpoint := flag.String("otlp-endpoint", "", "OTLP/gRPC collector endpoint; tracing is disabled if empty")
	flag.Parse()
	_ = *addr

	logger := observability.NewStdLogger(log.New(os.Stdout, "", log.LstdFlags))
	logger.Info("godwp_demo_starting")

	if *otlpEndpoint != "" {
		shutdownTracer, err := observability.InitTracer("godwp-demo", *otlpEndpoint)
		if err != nil {
			log.Fatalf("InitTracer failed: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error("tracer_shutdown_failed", "err", err)
			}
		}()
	}

	cfg := config.DefaultConfig()
	mt := scriptedTransport(cfg.DefaultIDSizes)
	sess := jdwp.NewSession(mt, cfg, logger)
	logger.Info("session_created", "session_id", sess.ID())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	classes, err := sess.Classes()
	if err != nil {
		log.Fatalf("Classes failed: %v", err)
	}
	for _, c := range classes {
		fmt.Printf("class %s (jni=%s)\n", c.Name(), c.Jni())
	}

	threads, err := sess.AllThreads()
	if err != nil {
		log.Fatalf("AllThreads failed: %v", err)
	}
	for _, t := range threads {
		name, err := t.Name()
		if err != nil {
			log.Fatalf("Thread.Name failed: %v", err)
		}
		fmt.Printf("thread %d: %s\n", t.ID(), name)
	}

	logger.Info("godwp_demo_ready")
	fmt.Println("Press Ctrl+C to stop")

	sig := <-sigCh
	logger.Info("shutdown_signal_received", "signal", sig.String())

	if err := sess.Shutdown(); err != nil {
		logger.Error("shutdown_failed", "err", err)
		os.Exit(1)
	}
	logger.Info("godwp_demo_stopped")
}
