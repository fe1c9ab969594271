// Copyright 2025 Sievekit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sievekit/sieve"
	"github.com/sievekit/sieve/ai"
	"github.com/sievekit/sieve/ai/openai"
	"github.com/sievekit/sieve/core"
	"github.com/sievekit/sieve/ingestion"
	"github.com/sievekit/sieve/source"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sieve",
		Usage: "Content-addressed ingestion pipeline for document collections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a directory of documents, skipping unchanged content",
				Action: ingestCommand,
				Flags:  append(pipelineFlags(), sourceFlags()...),
			},
			{
				Name:   "watch",
				Usage:  "Watch a directory and re-ingest whenever files change",
				Action: watchCommand,
				Flags: append(append(pipelineFlags(), sourceFlags()...),
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a change burst triggers re-ingestion",
						Value: 500 * time.Millisecond,
					},
				),
			},
			{
				Name:   "prune",
				Usage:  "Remove stored records for documents no longer present in the source",
				Action: pruneCommand,
				Flags: append(sourceFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				),
			},
			{
				Name:  "snapshot",
				Usage: "Export or import pipeline state",
				Subcommands: []*cli.Command{
					{
						Name:   "save",
						Usage:  "Write store and cache state to a snapshot file",
						Action: snapshotSaveCommand,
						Flags:  snapshotFlags(),
					},
					{
						Name:   "load",
						Usage:  "Restore store and cache state from a snapshot file",
						Action: snapshotLoadCommand,
						Flags:  snapshotFlags(),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "strategy",
			Usage: "Deduplication strategy (upserts-and-delete, upserts-no-delete, duplicates-only, none)",
			Value: core.StrategyUpsertsAndDelete.String(),
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Maximum chunk size in characters",
			Value: 512,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Overlap between neighboring chunks in characters",
			Value: 64,
		},
		&cli.BoolFlag{
			Name:  "embed",
			Usage: "Attach embedding vectors to chunks",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Number of documents processed concurrently (0 = half the CPUs)",
		},
		&cli.DurationFlag{
			Name:  "stage-timeout",
			Usage: "Per-document time limit for a single stage (0 = unlimited)",
		},
		&cli.StringFlag{
			Name:  "snapshot",
			Usage: "Write a state snapshot to this path after the run",
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "dir",
			Usage:    "Directory of documents to ingest",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:  "ext",
			Usage: "File extensions to load (defaults to .md and .txt)",
		},
	}
}

func snapshotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "path",
			Aliases:  []string{"p"},
			Usage:    "Snapshot file path",
			Required: true,
		},
	}
}

func newSource(c *cli.Context) *source.DirSource {
	var opts []source.DirOption
	if exts := c.StringSlice("ext"); len(exts) > 0 {
		opts = append(opts, source.WithExtensions(exts...))
	}
	return source.NewDirSource(c.String("dir"), opts...)
}

func buildStages(c *cli.Context) ([]ingestion.Transform, error) {
	stages := []ingestion.Transform{
		ingestion.NewSplitterStage(c.Int("chunk-size"), c.Int("chunk-overlap")),
	}

	if c.Bool("embed") {
		config := ai.NewConfig(
			ai.WithHost(c.String("embedding-host")),
			ai.WithModel(c.String("embedding-model")),
		)
		embedder, err := openai.NewEmbedder(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		embedStage, err := ingestion.NewEmbeddingStage(embedder, config.Model, slog.Default())
		if err != nil {
			return nil, err
		}
		stages = append(stages, embedStage)
	}

	return stages, nil
}

func buildPipeline(c *cli.Context, ws *sieve.Workspace) (*ingestion.Pipeline, error) {
	strategy, err := core.ParseStrategy(c.String("strategy"))
	if err != nil {
		return nil, err
	}

	opts := []ingestion.Option{
		ingestion.WithStrategy(strategy),
		ingestion.WithStageTimeout(c.Duration("stage-timeout")),
	}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}
	return ws.NewPipeline(opts...)
}

func runOnce(ctx context.Context, c *cli.Context, ws *sieve.Workspace, pipeline *ingestion.Pipeline, stages []ingestion.Transform) error {
	documents, err := newSource(c).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	result, err := pipeline.Run(ctx, documents, stages)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	for _, notice := range result.Notices {
		fmt.Fprintf(os.Stderr, "notice: %s\n", notice)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", failure.DocID, failure.Err)
	}
	fmt.Fprintf(os.Stderr, "documents: %d, skipped: %d, failed: %d, artifacts: %d\n",
		len(documents), len(result.Skipped), len(result.Failures), len(result.Artifacts))

	if path := c.String("snapshot"); path != "" {
		if err := ws.NewController().Save(ctx, path); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	ws, err := sieve.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer ws.Close()

	pipeline, err := buildPipeline(c, ws)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	stages, err := buildStages(c)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Source: %s\n", c.String("dir"))
	fmt.Fprintf(os.Stderr, "Strategy: %s\n", pipeline.Strategy())
	fmt.Fprintln(os.Stderr)

	return runOnce(ctx, c, ws, pipeline, stages)
}

func watchCommand(c *cli.Context) error {
	ctx := context.Background()

	ws, err := sieve.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer ws.Close()

	pipeline, err := buildPipeline(c, ws)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	stages, err := buildStages(c)
	if err != nil {
		return err
	}

	// Initial pass so the watch starts from a fully ingested state.
	if err := runOnce(ctx, c, ws, pipeline, stages); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "watching %s\n", c.String("dir"))
	watcher := source.NewWatcher(c.String("dir"),
		source.WithDebounce(c.Duration("debounce")))
	return watcher.Run(ctx, func(ctx context.Context) error {
		return runOnce(ctx, c, ws, pipeline, stages)
	})
}

func pruneCommand(c *cli.Context) error {
	ctx := context.Background()

	ws, err := sieve.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer ws.Close()

	pipeline, err := ws.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	documents, err := newSource(c).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	currentIDs := make([]string, len(documents))
	for i, doc := range documents {
		currentIDs[i] = doc.ID
	}

	if err := pipeline.Prune(ctx, currentIDs); err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	return nil
}

func snapshotSaveCommand(c *cli.Context) error {
	ctx := context.Background()

	ws, err := sieve.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer ws.Close()

	if err := ws.NewController().Save(ctx, c.String("path")); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func snapshotLoadCommand(c *cli.Context) error {
	ctx := context.Background()

	ws, err := sieve.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer ws.Close()

	if err := ws.NewController().Load(ctx, c.String("path")); err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
