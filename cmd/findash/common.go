package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"findash/internal/config"
	"findash/internal/logging"
	"findash/internal/services/classifier"
	"findash/internal/services/dashboard"
	"findash/internal/services/dataloader"
	"findash/internal/services/daterange"
	"findash/internal/services/storage"
)

// rangeFlags are shared by the report commands
type rangeFlags struct {
	user   string
	preset string
	start  string
	end    string
	query  string
	format string
}

func (rf *rangeFlags) register(f *flag.FlagSet) {
	f.StringVar(&rf.user, "user", "", "User ID (UUID)")
	f.StringVar(&rf.preset, "preset", "", "Range preset: last-month, last-quarter, last-year, year-to-date")
	f.StringVar(&rf.start, "start", "", "Explicit range start (YYYY-MM-DD)")
	f.StringVar(&rf.end, "end", "", "Explicit range end (YYYY-MM-DD)")
	f.StringVar(&rf.query, "query", "", "JSONPath expression applied to the JSON output")
	f.StringVar(&rf.format, "format", "json", "Output format: json or markdown")
}

func (rf *rangeFlags) request() daterange.Request {
	return daterange.Request{Preset: rf.preset, Start: rf.start, End: rf.end}
}

func (rf *rangeFlags) validate() error {
	if rf.format != "json" && rf.format != "markdown" {
		return fmt.Errorf("unknown format %q", rf.format)
	}
	if rf.query != "" && rf.format != "json" {
		return errors.New("-query only applies to json output")
	}
	return nil
}

// env is the loaded configuration plus an unlocked store
type env struct {
	cfg    *config.Config
	logger *logging.Logger
	store  *storage.Storage
}

func openEnv(unlock bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lc := cfg.Logging()
	lc.OutputPaths = []string{"stderr"}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, err
	}
	store, err := storage.New(cfg.DataDirectory)
	if err != nil {
		return nil, err
	}
	if unlock && store.IsEncrypted() {
		password, err := readPassword("Password: ")
		if err != nil {
			return nil, err
		}
		if err := store.Unlock(password); err != nil {
			return nil, err
		}
	}
	return &env{cfg: cfg, logger: logger, store: store}, nil
}

func (e *env) service() (*dashboard.Service, error) {
	rules, err := e.cfg.LoadRules()
	if err != nil {
		return nil, err
	}
	return dashboard.NewService(dashboard.Config{
		Source:     dataloader.New(e.store, e.logger),
		Resolver:   daterange.New(e.cfg.Location(), nil),
		Classifier: classifier.New(rules),
		Logger:     e.logger,
	}), nil
}

// readPassword takes FINDASH_PASSWORD when set, otherwise prompts without echo
func readPassword(prompt string) (string, error) {
	if password := os.Getenv("FINDASH_PASSWORD"); password != "" {
		return password, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal for password prompt: set FINDASH_PASSWORD")
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// writeJSON prints v as indented JSON, or the value selected by query
func writeJSON(w io.Writer, v any, query string) error {
	out := v
	if query != "" {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		if out, err = jsonpath.Get(query, doc); err != nil {
			return fmt.Errorf("query %s: %w", query, err)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
