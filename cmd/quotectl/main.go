// quotectl is a command-line client for the quoting API. It keeps its
// session in a local file and renews the access token transparently.
//
//	quotectl login --user alice
//	quotectl get /api/quotes
//	quotectl logout
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/quotecraft/quoting-system/internal/client/session"
	"github.com/quotecraft/quoting-system/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	server      string
	sessionFile string
	user        string
	email       string
	name        string
	company     string
	industry    string
	timeout     time.Duration
	verbose     bool
}

func run(args []string, stdout io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("quotectl", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.server, "server", "s", envOr("QUOTECTL_SERVER", "http://localhost:8080"), "quoting API base URL")
	flagSet.StringVar(&opts.sessionFile, "session-file", defaultSessionFile(), "where the session is stored")
	flagSet.StringVarP(&opts.user, "user", "u", "", "username or email")
	flagSet.StringVar(&opts.email, "email", "", "email (register)")
	flagSet.StringVar(&opts.name, "name", "", "display name (register)")
	flagSet.StringVar(&opts.company, "company", "", "name of the company to create (register)")
	flagSet.StringVar(&opts.industry, "industry", "", "industry id of the new company (register)")
	flagSet.DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP timeout")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log session activity to stderr")
	flagSet.Usage = func() { printHelp(flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(flagSet)
		return errors.New("missing command")
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: true, Output: os.Stderr})

	m, client, err := newManager(opts, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	switch cmd := rest[0]; cmd {
	case "login":
		user, err := m.Login(ctx, opts.user, os.Getenv("QUOTECTL_PASSWORD"))
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		fmt.Fprintf(stdout, "logged in as %s (%s)\n", user.Username, user.Role)
	case "register":
		user, err := m.Register(ctx, session.RegisterRequest{
			Username:    opts.user,
			Email:       opts.email,
			Password:    os.Getenv("QUOTECTL_PASSWORD"),
			Name:        opts.name,
			CompanyName: opts.company,
			IndustryID:  opts.industry,
		})
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintf(stdout, "registered %s\n", user.Username)
	case "status":
		if err := m.Init(ctx); err != nil {
			return err
		}
		s := m.State()
		if s.Status != session.StatusAuthenticated || s.User == nil {
			fmt.Fprintln(stdout, "not logged in")
			return nil
		}
		fmt.Fprintf(stdout, "logged in as %s, access token valid until %s\n",
			s.User.Username, s.ExpiresAt.Local().Format(time.RFC1123))
	case "logout":
		if err := m.Init(ctx); err != nil {
			return err
		}
		if err := m.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "logged out")
	case "get":
		if len(rest) < 2 {
			return errors.New("usage: quotectl get <path>")
		}
		if err := m.Init(ctx); err != nil {
			return err
		}
		return get(ctx, m, client.BaseURL()+"/"+strings.TrimLeft(rest[1], "/"), stdout)
	default:
		printHelp(flagSet)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func newManager(opts options, log zerolog.Logger) (*session.Manager, *session.HTTPClient, error) {
	client, err := session.NewHTTPClient(opts.server, opts.timeout)
	if err != nil {
		return nil, nil, err
	}
	m, err := session.NewManager(session.Config{
		API:     client,
		Storage: session.NewFileStorage(opts.sessionFile),
		Doer:    client,
		Log:     log,
	})
	if err != nil {
		return nil, nil, err
	}
	return m, client, nil
}

func get(ctx context.Context, m *session.Manager, url string, stdout io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.Do(ctx, req)
	if err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			return errors.New("session expired, run quotectl login")
		}
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(stdout, resp.Body); err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "quotectl", "session.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: quotectl [flags] <command>

Commands:
  login       authenticate (password from QUOTECTL_PASSWORD)
  register    create an account and log in
  status      show the current session, renewing it if needed
  get <path>  GET an API path with the session's bearer token
  logout      end the session locally and on the server

Flags:
%s`, flagSet.FlagUsages())
}
