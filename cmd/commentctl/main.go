// commentctl - консольный клиент API комментариев.
//
//	commentctl [-api URL] submit -post ID -body TEXT [-author NAME] [-contact C]
//	commentctl [-api URL] list -post ID
//	commentctl [-api URL] counts -post ID[,ID...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pribylovaa/blog-comments/pkg/async"
	"github.com/pribylovaa/blog-comments/pkg/commentsclient"
)

var errUsage = errors.New("usage: commentctl [-api URL] submit|list|counts [flags]")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("commentctl", flag.ContinueOnError)
	global.SetOutput(stderr)

	apiURL := global.String("api", envOr("COMMENTS_API_URL", "http://localhost:8080/api"), "comments API base URL")
	timeout := global.Duration("timeout", 10*time.Second, "request timeout")
	verbose := global.Bool("v", false, "debug logging")

	if err := global.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	rest := global.Args()
	if len(rest) == 0 {
		return errUsage
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := commentsclient.New(*apiURL)

	switch rest[0] {
	case "submit":
		return submit(ctx, client, rest[1:], stdout, stderr)
	case "list":
		return list(ctx, client, rest[1:], stdout, stderr)
	case "counts":
		return counts(ctx, client, rest[1:], stdout, stderr)
	default:
		return fmt.Errorf("unknown command %q: %w", rest[0], errUsage)
	}
}

func submit(ctx context.Context, client *commentsclient.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var in commentsclient.CreateRequest
	fs.StringVar(&in.PostID, "post", "", "post id")
	fs.StringVar(&in.Author, "author", "", "display name")
	fs.StringVar(&in.Contact, "contact", "", "contact (optional)")
	fs.StringVar(&in.Body, "body", "", "comment text")

	if err := fs.Parse(args); err != nil {
		return err
	}

	tr := async.New(client.CreateComment).
		WithOnError(func(err error) {
			slog.Debug("submit_failed", slog.String("err", err.Error()))
		})

	comm, ok := await(ctx, tr, in, stderr, "submitting")
	if !ok {
		return fmt.Errorf("submit: %s", tr.Error())
	}

	fmt.Fprintf(stdout, "created %s at %s\n", comm.ID, comm.CreatedAt.Format(time.RFC3339))
	return nil
}

func list(ctx context.Context, client *commentsclient.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	postID := fs.String("post", "", "post id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	tr := async.New(client.ListByPost)

	items, ok := await(ctx, tr, *postID, stderr, "loading")
	if !ok {
		return fmt.Errorf("list: %s", tr.Error())
	}

	if len(items) == 0 {
		fmt.Fprintln(stdout, "no comments yet")
		return nil
	}

	for _, c := range items {
		author := c.Author
		if author == "" {
			author = "anonymous"
		}
		fmt.Fprintf(stdout, "[%s] %s: %s\n", c.CreatedAt.Format(time.RFC3339), author, c.Body)
	}

	return nil
}

func counts(ctx context.Context, client *commentsclient.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("counts", flag.ContinueOnError)
	fs.SetOutput(stderr)
	posts := fs.String("post", "", "comma-separated post ids")

	if err := fs.Parse(args); err != nil {
		return err
	}

	ids := strings.Split(*posts, ",")
	tr := async.New(client.Counts)

	got, ok := await(ctx, tr, ids, stderr, "counting")
	if !ok {
		return fmt.Errorf("counts: %s", tr.Error())
	}

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		fmt.Fprintf(stdout, "%s\t%d\n", id, got[id])
	}

	return nil
}

// await запускает операцию через Go и печатает индикатор, пока Loading=true.
func await[P, R any](ctx context.Context, tr *async.Tracker[P, R], params P, stderr io.Writer, label string) (R, bool) {
	out := tr.Go(ctx, params)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-out:
			return res.Result, res.OK
		case <-ticker.C:
			if tr.Loading() {
				fmt.Fprintf(stderr, "%s...\n", label)
			}
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
