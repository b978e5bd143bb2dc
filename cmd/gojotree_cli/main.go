// Command gojotree_cli is an interactive shell over a single in-memory
// gojotree index with int64 keys and values. It exists for poking at
// the index by hand: loading and saving snapshots, inspecting the tree
// shape, and watching structural counters as it mutates.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sushant-115/gojotree/core/indexing/bptree"
	internaltelemetry "github.com/sushant-115/gojotree/internal/telemetry"
	"github.com/sushant-115/gojotree/pkg/logger"
	"github.com/sushant-115/gojotree/pkg/telemetry"
)

func main() {
	order := flag.Int("order", bptree.DefaultOrder, "tree order (max children per internal node)")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	metricsPort := flag.Int("metrics-port", 0, "expose Prometheus metrics on this port (0 disables)")
	snapshot := flag.String("load", "", "snapshot file to load at startup")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console", OutputFile: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sessionID := uuid.New().String()
	log.Info("starting session", zap.String("session_id", sessionID), zap.Int("order", *order))

	stats := &bptree.Stats{}
	hooks := bptree.MultiHooks{stats}

	tel, shutdownTel, err := telemetry.New(telemetry.Config{
		Enabled:        *metricsPort > 0,
		ServiceName:    "gojotree_cli",
		PrometheusPort: *metricsPort,
	})
	if err != nil {
		log.Fatal("telemetry setup failed", zap.Error(err))
	}
	defer shutdownTel(context.Background())

	if *metricsPort > 0 {
		metrics, err := internaltelemetry.NewTreeMetrics(tel.Meter)
		if err != nil {
			log.Fatal("metric registration failed", zap.Error(err))
		}
		hooks = append(hooks, metrics)
		log.Info("metrics exposed", zap.Int("port", *metricsPort))
	}

	tree := bptree.New(*order,
		bptree.WithHooks[int64, int64](hooks),
		bptree.WithLogger[int64, int64](log),
	)
	if *snapshot != "" {
		loaded, err := bptree.FromSnapshotFile[int64, int64](*snapshot,
			bptree.WithHooks[int64, int64](hooks),
			bptree.WithLogger[int64, int64](log),
		)
		if err != nil {
			log.Fatal("snapshot load failed", zap.String("path", *snapshot), zap.Error(err))
		}
		tree = loaded
		fmt.Printf("loaded %d pairs from %s (order %d)\n", tree.Len(), *snapshot, tree.Order())
	}

	rl, err := readline.New("gojotree> ")
	if err != nil {
		log.Fatal("readline setup failed", zap.Error(err))
	}
	defer rl.Close()

	repl(tree, stats, rl, log)
}

func repl(tree *bptree.BPlusTree[int64, int64], stats *bptree.Stats, rl *readline.Instance, log *zap.Logger) {
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cmd, args := strings.ToLower(fields[0]), fields[1:]
		switch cmd {
		case "exit", "quit":
			return
		case "help":
			printHelp()
		default:
			if err := dispatch(tree, stats, cmd, args); err != nil {
				fmt.Printf("error: %v\n", err)
				log.Debug("command failed", zap.String("cmd", cmd), zap.Error(err))
			}
		}
	}
}

func dispatch(tree *bptree.BPlusTree[int64, int64], stats *bptree.Stats, cmd string, args []string) error {
	switch cmd {
	case "put":
		k, v, err := parseKV(args)
		if err != nil {
			return err
		}
		tree.Insert(k, v)
		fmt.Println("ok")

	case "get":
		k, err := parseKey(args)
		if err != nil {
			return err
		}
		if v, found := tree.Search(k); found {
			fmt.Println(v)
		} else {
			fmt.Println("(not found)")
		}

	case "del":
		k, err := parseKey(args)
		if err != nil {
			return err
		}
		if tree.Remove(k) {
			fmt.Println("ok")
		} else {
			fmt.Println("(not found)")
		}

	case "range":
		if len(args) != 2 {
			return fmt.Errorf("usage: range <start> <end>")
		}
		start, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad start key %q", args[0])
		}
		end, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("bad end key %q", args[1])
		}
		for _, p := range tree.RangeQuery(start, end) {
			fmt.Printf("%d = %d\n", p.Key, p.Value)
		}

	case "scan":
		for k, v := range tree.All() {
			fmt.Printf("%d = %d\n", k, v)
		}

	case "rscan":
		for k, v := range tree.Backward() {
			fmt.Printf("%d = %d\n", k, v)
		}

	case "len":
		fmt.Println(tree.Len())

	case "height":
		fmt.Println(tree.Height())

	case "stats":
		fmt.Printf("pairs=%d height=%d leaves=%d internal=%d\n",
			tree.Len(), tree.Height(), stats.LeafNodes(), stats.InternalNodes())
		fmt.Printf("splits=%d/%d merges=%d/%d redistributions=%d (leaf/internal)\n",
			stats.LeafSplits, stats.InternalSplits, stats.LeafMerges, stats.InternalMerges, stats.Redistributions)

	case "dump":
		return tree.Dump(os.Stdout)

	case "validate":
		if err := tree.Validate(); err != nil {
			return err
		}
		fmt.Println("ok")

	case "save":
		if len(args) != 1 {
			return fmt.Errorf("usage: save <path>")
		}
		if err := tree.SaveFile(args[0]); err != nil {
			return err
		}
		fmt.Printf("saved %d pairs\n", tree.Len())

	case "load":
		if len(args) != 1 {
			return fmt.Errorf("usage: load <path>")
		}
		if err := tree.LoadFile(args[0]); err != nil {
			return err
		}
		fmt.Printf("loaded %d pairs\n", tree.Len())

	case "clear":
		tree.Clear()
		fmt.Println("ok")

	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func parseKey(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one key")
	}
	k, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad key %q", args[0])
	}
	return k, nil
}

func parseKV(args []string) (int64, int64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("usage: put <key> <value>")
	}
	k, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad key %q", args[0])
	}
	v, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad value %q", args[1])
	}
	return k, v, nil
}

func printHelp() {
	fmt.Print(`commands:
  put <key> <value>    insert or overwrite a pair
  get <key>            look up a key
  del <key>            delete a key
  range <start> <end>  list pairs in an inclusive key range
  scan                 list all pairs ascending
  rscan                list all pairs descending
  len                  number of pairs
  height               tree height
  stats                structural counters
  dump                 print the tree level by level
  validate             check structural invariants
  save <path>          write a snapshot file
  load <path>          replace contents from a snapshot file
  clear                remove everything
  exit                 quit
`)
}
