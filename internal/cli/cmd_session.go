package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/koltyakov/aocd/internal/config"
)

func runSession(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: aocd session <add|list> [flags]")
		return 2
	}
	switch args[0] {
	case "add":
		return runSessionAdd(ctx, args[1:])
	case "list":
		return runSessionList(ctx, args[1:])
	default:
		fmt.Fprintln(os.Stderr, "unknown session command:", args[0])
		return 2
	}
}

func runSessionAdd(ctx context.Context, args []string) int {
	var username, val string
	cfg, _, err := config.Parse("session-add", args, func(fs *flag.FlagSet) {
		fs.StringVar(&username, "username", "", "Account name (defaults to the configured user)")
		fs.StringVar(&val, "val", "", "Session cookie value (read from stdin when empty)")
	})
	if err != nil {
		return 2
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = cfg.CurrentUser
	}
	if username == "" {
		fmt.Fprintln(os.Stderr, "session add error: missing --username (or AOC_USER)")
		return 2
	}
	if strings.TrimSpace(val) == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "session add error: missing --val")
			return 2
		}
		val = strings.TrimSpace(line)
	}
	if val == "" {
		fmt.Fprintln(os.Stderr, "session add error: empty session value")
		return 2
	}

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db error:", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	cred, err := st.InsertSession(ctx, username, val)
	if err != nil {
		fmt.Fprintln(os.Stderr, "session add error:", err)
		return 1
	}
	fmt.Println("id:", cred.ID)
	fmt.Println("username:", cred.Username)
	return 0
}

func runSessionList(ctx context.Context, args []string) int {
	var username string
	cfg, _, err := config.Parse("session-list", args, func(fs *flag.FlagSet) {
		fs.StringVar(&username, "username", "", "Account name (defaults to the configured user)")
	})
	if err != nil {
		return 2
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = cfg.CurrentUser
	}
	if username == "" {
		fmt.Fprintln(os.Stderr, "session list error: missing --username (or AOC_USER)")
		return 2
	}

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "db error:", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	creds, err := st.ListSessions(ctx, username)
	if err != nil {
		fmt.Fprintln(os.Stderr, "session list error:", err)
		return 1
	}
	for _, c := range creds {
		fmt.Printf("%s\t%s\tval=%s\tcreated=%s\n", c.ID, c.Username, maskSecret(c.Value), c.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return 0
}

// maskSecret keeps the last four characters of v.
func maskSecret(v string) string {
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", 8) + v[len(v)-4:]
}
