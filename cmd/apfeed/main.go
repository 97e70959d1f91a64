/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
	"github.com/dimkr/apfeed/fed"
	"github.com/dimkr/apfeed/feed"
	"github.com/dimkr/apfeed/logcontext"
	"github.com/dimkr/apfeed/notify"
	"github.com/dimkr/apfeed/profile"
	_ "github.com/mattn/go-sqlite3"
)

var (
	cfgPath   = flag.String("cfg", "", "configuration file")
	server    = flag.String("server", "", "home server API URL (overrides configuration)")
	user      = flag.String("user", "", "user name (overrides configuration)")
	lookup    = flag.String("lookup", "", "show followers and following of a handle instead of the feed")
	filter    = flag.String("filter", "", "show only posts by this actor")
	pages     = flag.Int("pages", 1, "number of pages to load")
	textLogs  = flag.Bool("text", false, "log in text format instead of JSON")
	blockList = flag.String("blocklist", "", "blocked domains CSV (overrides configuration)")
)

func dataDir() (string, error) {
	var baseDir string
	if runtime.GOOS == "linux" {
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".local", "share")
		}
	} else {
		var err error
		if baseDir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}

	dir := filepath.Join(baseDir, "apfeed")
	return dir, os.MkdirAll(dir, 0700)
}

func printPosts(w io.Writer, cfg *cfg.Config, posts []*ap.Object) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts.")
		return
	}

	for _, post := range posts {
		fmt.Fprintf(w, "%s %s\n", post.Published.Format(time.DateTime), post.Author())
		if post.Summary != "" {
			fmt.Fprintf(w, "[%s]\n", post.Summary)
		}
		if post.Content != "" {
			if text, err := toPlain(post.Content); err != nil {
				slog.Debug("Failed to convert post", "id", post.ID, "error", err)
				fmt.Fprintln(w, post.Content)
			} else {
				fmt.Fprintln(w, text)
			}
		}
		for _, a := range post.Attachments() {
			fmt.Fprintf(w, "=> %s %s\n", fed.MediaURL(cfg.MediaHost, a.URL), a.MediaType)
		}
		fmt.Fprintln(w)
	}
}

func printRelation(w io.Writer, title string, s profile.State) {
	fmt.Fprintf(w, "%s (%d):\n", title, s.TotalItems)
	for _, item := range s.Items {
		if item.Object.PreferredUsername != "" {
			fmt.Fprintf(w, "  %s (%s)\n", item.Object.PreferredUsername, item.ID())
		} else {
			fmt.Fprintf(w, "  %s\n", item.ID())
		}
	}
	fmt.Fprintln(w)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Prints the feed of a user, or the followers and following of an actor.")
		fmt.Fprintln(flag.CommandLine.Output(), "")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := cfg.Load(*cfgPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if *server != "" {
		cfg.Server = *server
	}
	if *user != "" {
		cfg.User = *user
	}
	if *blockList != "" {
		cfg.BlockListPath = *blockList
	}

	opts := slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if *textLogs {
		handler = slog.NewTextHandler(os.Stderr, &opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &opts)
	}
	slog.SetDefault(slog.New(logcontext.NewHandler(handler)))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cachePath := cfg.CachePath
	if cachePath == "" {
		dir, err := dataDir()
		if err != nil {
			slog.Error("Failed to create data directory", "error", err)
			os.Exit(1)
		}
		cachePath = filepath.Join(dir, "cache.sqlite3")
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?%s", cachePath, cfg.DatabaseOptions))
	if err != nil {
		slog.Error("Failed to open cache", "path", cachePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := fed.NewCache(ctx, db)
	if err != nil {
		slog.Error("Failed to open cache", "path", cachePath, "error", err)
		os.Exit(1)
	}

	if n, err := cache.CollectGarbage(ctx, time.Now().Add(-cfg.CacheRetention)); err != nil {
		slog.Warn("Failed to collect garbage", "error", err)
	} else if n > 0 {
		slog.Debug("Collected garbage", "count", n)
	}

	var blocked *fed.BlockList
	if cfg.BlockListPath != "" {
		if blocked, err = fed.NewBlockList(cfg.BlockListPath); err != nil {
			slog.Error("Failed to load blocklist", "path", cfg.BlockListPath, "error", err)
			os.Exit(1)
		}
		defer blocked.Close()
	}

	var tokens fed.TokenSource
	if cfg.TokenPath != "" {
		tokens = fed.FileToken(cfg.TokenPath)
	}

	transport := fed.NewTransport(cfg, fed.NewClient(cfg), cfg.Server, tokens)
	resolver := fed.NewResolver(blocked, cfg, transport, cache)
	notifier := notify.Log{}

	if *lookup != "" {
		p := profile.New(cfg, transport, resolver, notifier)
		if err := p.Find(ctx, *lookup); err != nil {
			os.Exit(1)
		}

		if err := loadRelations(ctx, p, *pages); err != nil {
			slog.Debug("Stopped loading relations", "error", err)
		}

		printRelation(os.Stdout, "Followers", p.Followers())
		printRelation(os.Stdout, "Following", p.Following())
		return
	}

	if cfg.Server == "" || cfg.User == "" {
		slog.Error("Server and user must be specified")
		os.Exit(2)
	}

	f := feed.New(cfg, transport, resolver, notifier)

	if err := loadFeed(ctx, f, cfg.User, *filter, *pages); errors.Is(err, fed.ErrUnauthorized) {
		os.Exit(3)
	} else if errors.Is(err, feed.ErrEmptyFilter) {
		os.Exit(2)
	} else if err != nil {
		os.Exit(1)
	}

	printPosts(os.Stdout, cfg, f.Posts())
}
