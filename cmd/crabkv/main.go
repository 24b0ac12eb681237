// Command crabkv is a one-shot CLI front-end over a local CrabKv data
// directory: one process per invocation, one subcommand per process.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	flag "github.com/spf13/pflag"

	"github.com/AntoineB0/CrabKV/engine"
	"github.com/AntoineB0/CrabKV/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	sub := args[0]
	rest := args[1:]

	switch sub {
	case "put":
		return cmdPut(rest)
	case "get":
		return cmdGet(rest)
	case "delete":
		return cmdDelete(rest)
	case "compact":
		return cmdCompact(rest)
	case "stats":
		return cmdStats(rest)
	case "-h", "--help", "help":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "crabkv: unknown subcommand %q\n", sub)
		printUsage(os.Stderr)
		return 2
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: crabkv <put|get|delete|compact|stats> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Common options (all subcommands):")
	fmt.Fprintln(w, "  --data-dir=<path>   data directory (default: $CRABKV_DATA_DIR or ./crabkv-data)")
	fmt.Fprintln(w, "  --json              emit machine-readable JSON output")
}

// commonFlags holds the flags shared by every subcommand.
type commonFlags struct {
	dataDir string
	asJSON  bool
}

func bindCommon(fs *flag.FlagSet, defaultDataDir string) *commonFlags {
	cf := &commonFlags{}
	fs.StringVar(&cf.dataDir, "data-dir", defaultDataDir, "data directory")
	fs.BoolVar(&cf.asJSON, "json", false, "emit JSON output")
	return cf
}

func openEngine(cf *commonFlags) (*engine.Engine, error) {
	return engine.Open(engine.Config{DataDir: cf.dataDir})
}

func defaultDataDir() string {
	cfg, err := config.LoadEnv()
	if err != nil {
		return "crabkv-data"
	}
	return cfg.DataDir
}

func emit(cf *commonFlags, plain string, structured any) int {
	if !cf.asJSON {
		fmt.Println(plain)
		return 0
	}
	data, err := json.Marshal(structured)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv: marshal output:", err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}

func cmdPut(args []string) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	cf := bindCommon(fs, defaultDataDir())
	ttl := fs.Duration("ttl", 0, "time-to-live, e.g. 30s (0 = no expiry / engine default)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: crabkv put [options] <key> <value>")
		return 2
	}
	key, value := fs.Arg(0), fs.Arg(1)

	e, err := openEngine(cf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	defer e.Close()

	if err := e.Put([]byte(key), []byte(value), *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	return emit(cf, "OK", map[string]any{"ok": true})
}

func cmdGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	cf := bindCommon(fs, defaultDataDir())
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: crabkv get [options] <key>")
		return 2
	}
	key := fs.Arg(0)

	e, err := openEngine(cf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	defer e.Close()

	value, ok, err := e.Get([]byte(key))
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	if !ok {
		return emit(cf, "NOT_FOUND", map[string]any{"found": false})
	}
	return emit(cf, string(value), map[string]any{"found": true, "value": string(value)})
}

func cmdDelete(args []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	cf := bindCommon(fs, defaultDataDir())
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: crabkv delete [options] <key>")
		return 2
	}
	key := fs.Arg(0)

	e, err := openEngine(cf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	defer e.Close()

	existed, err := e.Delete([]byte(key))
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	plain := "OK"
	if !existed {
		plain = "NOT_FOUND"
	}
	return emit(cf, plain, map[string]any{"existed": existed})
}

func cmdCompact(args []string) int {
	fs := flag.NewFlagSet("compact", flag.ContinueOnError)
	cf := bindCommon(fs, defaultDataDir())
	if err := fs.Parse(args); err != nil {
		return 2
	}

	e, err := openEngine(cf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	defer e.Close()

	start := time.Now()
	if err := e.Compact(); err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	elapsed := time.Since(start)
	return emit(cf, fmt.Sprintf("OK (%s)", elapsed), map[string]any{"ok": true, "elapsed_ms": elapsed.Milliseconds()})
}

func cmdStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	cf := bindCommon(fs, defaultDataDir())
	if err := fs.Parse(args); err != nil {
		return 2
	}

	e, err := openEngine(cf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	defer e.Close()

	st, err := e.Stats()
	if err != nil {
		fmt.Fprintln(os.Stderr, "crabkv:", err)
		return 1
	}
	plain := fmt.Sprintf("keys=%d wal_total=%d wal_live=%d wal_stale=%d compact_passes=%d",
		st.Keys, st.WALTotalBytes, st.WALLiveBytes, st.WALStaleBytes, st.CompactPasses)
	return emit(cf, plain, st)
}
