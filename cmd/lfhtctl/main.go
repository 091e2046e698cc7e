// Command lfhtctl is a small interactive shell for exercising a
// store.Container by hand. This module is a library, not a service; this
// command exists for manual exploration, not for any production deployment
// story.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unsafe"

	log "github.com/semihalev/zlog/v2"
	"github.com/spf13/cobra"

	"github.com/tessera-db/lfht/config"
	"github.com/tessera-db/lfht/idkey"
	"github.com/tessera-db/lfht/store"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:   "lfhtctl",
		Short: "Interactively exercise a lock-free id/value container",
		Run:   run,
	}
	root.Flags().StringVar(&cfgPath, "config", "lfht.toml", "location of the config file, generated if not found")

	if err := root.Execute(); err != nil {
		log.Crit("lfhtctl failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Crit("Config loading failed", "error", err.Error())
	}

	c := store.New(store.Config{
		GrowthThreshold: cfg.GrowthThreshold,
		MaxIndexBits:    cfg.MaxIndexBits,
		PoolSoftCap:     cfg.PoolSoftCap,
	})

	fmt.Fprintln(os.Stdout, "lfhtctl ready. Commands: add <id|key> <value>, find <id|key>, delete <id|key>, stats, clear, quit")
	repl(c)
}

func repl(c *store.Container) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return
		case "add":
			handleAdd(c, fields)
		case "find":
			handleFind(c, fields)
		case "delete":
			handleDelete(c, fields)
		case "stats":
			handleStats(c)
		case "clear":
			c.Clear()
			fmt.Fprintln(os.Stdout, "ok")
		default:
			fmt.Fprintln(os.Stdout, "unrecognized command:", fields[0])
		}
	}
}

func resolveID(token string) uint64 {
	if id, err := strconv.ParseUint(token, 10, 64); err == nil {
		return id
	}
	return idkey.FromString(token)
}

func handleAdd(c *store.Container, fields []string) {
	if len(fields) != 3 {
		fmt.Fprintln(os.Stdout, "usage: add <id|key> <value>")
		return
	}
	id := resolveID(fields[1])
	val := []byte(fields[2])
	ok := c.Add(id, store.Value(unsafe.Pointer(&val[0])))
	fmt.Fprintln(os.Stdout, ok)
}

func handleFind(c *store.Container, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(os.Stdout, "usage: find <id|key>")
		return
	}
	id := resolveID(fields[1])
	_, ok := c.Find(id)
	fmt.Fprintln(os.Stdout, ok)
}

func handleDelete(c *store.Container, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(os.Stdout, "usage: delete <id|key>")
		return
	}
	id := resolveID(fields[1])
	fmt.Fprintln(os.Stdout, c.Delete(id))
}

func handleStats(c *store.Container) {
	s := c.DumpStats()
	fmt.Fprintf(os.Stdout, "entries=%d insertions=%d deletions=%d searches=%d nodes_allocated=%d nodes_freed=%d\n",
		c.Len(), s.Insertions, s.DeletionAttempts, s.Searches, s.NodesAllocated, s.NodesFreed)
}
