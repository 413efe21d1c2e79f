package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/preetimant/coursesensei/pkg/client"
	"github.com/preetimant/coursesensei/pkg/graph"
	"github.com/preetimant/coursesensei/pkg/store"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usage = `Usage:
  coursesensei [-api URL] [-token TOKEN] ask <Intent> [key=value ...]
  coursesensei [-api URL] intents
  coursesensei [-api URL] health
  coursesensei import <snapshot.json|snapshot.yaml> <kb.db>
  coursesensei version
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coursesensei", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	apiURL := fs.String("api", envOrDefault("COURSESENSEI_API", "http://127.0.0.1:8090"), "daemon base URL")
	token := fs.String("token", os.Getenv("COURSESENSEI_WEBHOOK_TOKEN"), "webhook bearer token")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	c := client.NewClient(*apiURL, client.WithToken(*token))

	var err error
	switch rest[0] {
	case "ask":
		err = ask(ctx, c, rest[1:], stdout)
	case "intents":
		err = intents(ctx, c, stdout)
	case "health":
		err = health(ctx, c, stdout)
	case "import":
		err = importSnapshot(ctx, rest[1:], stdout)
	case "version":
		fmt.Fprintf(stdout, "coursesensei %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", rest[0], usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, client.ErrUnreachable) {
			fmt.Fprintln(stderr, "Is coursesensei-d running?")
		}
		return 1
	}
	return 0
}

func ask(ctx context.Context, c *client.Client, args []string, stdout io.Writer) error {
	// Re-quote so values given as separate shell words survive ParseQuery.
	parts := make([]string, len(args))
	for i, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok && strings.ContainsAny(v, " \t") {
			a = k + `="` + v + `"`
		}
		parts[i] = a
	}
	q, err := client.ParseQuery(strings.Join(parts, " "))
	if err != nil {
		return err
	}

	answer, err := c.Fulfill(ctx, "", q, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, answer.Text)
	return nil
}

func intents(ctx context.Context, c *client.Client, stdout io.Writer) error {
	names, err := c.Intents(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(stdout, n)
	}
	return nil
}

func health(ctx context.Context, c *client.Client, stdout io.Writer) error {
	status, err := c.Ping(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "status: %s\n", status.Status)
	if kb := status.KnowledgeBase; kb != nil {
		fmt.Fprintf(stdout, "knowledge base: %s (checksum %s, %d nodes)\n", kb.Source, kb.Checksum, kb.Nodes)
	}
	return nil
}

func importSnapshot(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return errors.New("import needs <snapshot> <db>")
	}
	snap, err := graph.LoadSnapshotFile(args[0])
	if err != nil {
		return err
	}

	st, err := store.NewStore(args[1])
	if err != nil {
		return err
	}
	defer st.Close()

	info, err := st.ImportSnapshot(ctx, graph.CourseSchema(), snap, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %d nodes from %s into %s (checksum %s)\n", info.Nodes, info.Source, args[1], info.Checksum)
	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
