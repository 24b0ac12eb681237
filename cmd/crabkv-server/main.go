// Command crabkv-server runs CrabKv's line-oriented TCP server (spec.md
// §6.2) against a single data directory.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/AntoineB0/CrabKV/engine"
	"github.com/AntoineB0/CrabKV/internal/config"
	"github.com/AntoineB0/CrabKV/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	defaultCfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv-server:", err)
		return 2
	}

	addr := flag.String("addr", ":7070", "TCP address to listen on")
	dataDir := flag.String("data-dir", defaultCfg.DataDir, "data directory")
	cacheCapacity := flag.Int("cache-capacity", defaultCfg.CacheCapacity, "read-through LRU capacity (0 disables)")
	compression := flag.Bool("compression", false, "compress stored values with Snappy")
	asyncCompaction := flag.Bool("async-compaction", false, "run compaction on a background goroutine")
	writeBack := flag.Bool("write-back-cache", false, "buffer puts/deletes in memory until an explicit flush")
	syncInterval := flag.Duration("sync-interval", 0, "fsync cadence (0 = fsync every write)")
	maxClients := flag.Int("max-clients", 10000, "maximum concurrent connections")
	configFile := flag.String("config", "", "optional JSON config file; only its default_ttl_secs is applied, other fields are ignored")
	flag.Parse()

	fileCfg := *defaultCfg
	if *configFile != "" {
		if err := config.LoadFile(&fileCfg, *configFile); err != nil {
			fmt.Fprintln(os.Stderr, "crabkv-server:", err)
			return 2
		}
	}

	e, err := engine.Open(engine.Config{
		DataDir:         *dataDir,
		CacheCapacity:   *cacheCapacity,
		DefaultTTL:      fileCfg.DefaultTTL(),
		SyncInterval:    *syncInterval,
		Compression:     *compression,
		AsyncCompaction: *asyncCompaction,
		WriteBackCache:  *writeBack,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv-server: open engine:", err)
		return 1
	}

	srv := server.New(e, server.Config{Addr: *addr, MaxClients: *maxClients})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "crabkv-server: shutting down")
		srv.Close()
		close(drained)
	}()

	serveErr := srv.Start()
	if serveErr == nil {
		// Start returns nil only once Close has run; wait for it to finish
		// draining connections before closing the engine.
		<-drained
	}

	if err := e.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "crabkv-server: close engine:", err)
		return 1
	}

	if serveErr != nil {
		fmt.Fprintln(os.Stderr, "crabkv-server:", serveErr)
		return 1
	}
	return 0
}
