package main

import (
	"flag"
	"log/slog"
	"testing"

	"github.com/sievekit/sieve/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestPipelineFlags(t *testing.T) {
	flags := pipelineFlags()

	find := func(name string) cli.Flag {
		for _, f := range flags {
			for _, n := range f.Names() {
				if n == name {
					return f
				}
			}
		}
		return nil
	}

	t.Run("db is required", func(t *testing.T) {
		dbFlag, ok := find("db").(*cli.StringFlag)
		require.True(t, ok)
		assert.True(t, dbFlag.Required)
	})

	t.Run("strategy defaults to upserts-and-delete", func(t *testing.T) {
		strategyFlag, ok := find("strategy").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, core.StrategyUpsertsAndDelete.String(), strategyFlag.Value)
	})

	t.Run("chunking has defaults", func(t *testing.T) {
		sizeFlag, ok := find("chunk-size").(*cli.IntFlag)
		require.True(t, ok)
		assert.Equal(t, 512, sizeFlag.Value)

		overlapFlag, ok := find("chunk-overlap").(*cli.IntFlag)
		require.True(t, ok)
		assert.Equal(t, 64, overlapFlag.Value)
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		hostFlag, ok := find("embedding-host").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})
}

func TestBuildStages(t *testing.T) {
	newContext := func(embed bool) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.Int("chunk-size", 512, "")
		set.Int("chunk-overlap", 64, "")
		set.Bool("embed", embed, "")
		set.String("embedding-host", "http://localhost:11434/v1", "")
		set.String("embedding-model", "embeddinggemma", "")
		return cli.NewContext(nil, set, nil)
	}

	t.Run("splitter only", func(t *testing.T) {
		stages, err := buildStages(newContext(false))
		require.NoError(t, err)
		require.Len(t, stages, 1)
		assert.Equal(t, "split:recursive:512:64", stages[0].Signature())
	})

	t.Run("splitter and embedder", func(t *testing.T) {
		stages, err := buildStages(newContext(true))
		require.NoError(t, err)
		require.Len(t, stages, 2)
		assert.Equal(t, "embed:embeddinggemma", stages[1].Signature())
	})
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	newContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return cli.NewContext(nil, set, nil)
	}

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
			assert.NoError(t, setupLogger(newContext(level)), level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
