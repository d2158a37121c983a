package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/treediff-go/config"
	"github.com/masmgr/treediff-go/internal/git"
	"github.com/masmgr/treediff-go/internal/logging"
	"github.com/masmgr/treediff-go/internal/output"
	"github.com/masmgr/treediff-go/internal/treediff"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all commands.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	Logger   *zap.Logger

	// Store reads blobs and history. Objects is the same store, or a
	// CLIStore when tree changes come from the git binary.
	Store      *git.RepositoryStore
	Objects    git.ObjectStore
	Dispatcher *treediff.Dispatcher
}

// NewCommandContext creates a context from CLI flags.
// It loads configuration, opens the repository and builds the dispatcher.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	rename, err := parseRenameDetectFlag(cfg.Diff.RenameDetect)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	store, err := git.OpenRepositoryStore(repoPath, git.StoreOptions{
		TreeChangeOptions: git.TreeChangeOptions{
			RenameDetect: rename,
			Include:      cfg.Filters.Include,
			Exclude:      cfg.Filters.Exclude,
		},
		CacheSize: cfg.Cache.BlobCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	var objects git.ObjectStore = store
	if cfg.Diff.Backend == config.BackendGit {
		objects = git.NewCLIStore(store, repoPath)
	}

	readability, err := treediff.NewReadability(treediff.ReadabilityOptions{
		BinaryPatterns: cfg.Readability.BinaryPatterns,
		TextPatterns:   cfg.Readability.TextPatterns,
		CacheSize:      cfg.Readability.CacheSize,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("opened repository",
		zap.String("path", repoPath),
		zap.String("backend", cfg.Diff.Backend),
		zap.Stringer("renameDetect", rename),
	)

	return &CommandContext{
		Config:   cfg,
		RepoPath: repoPath,
		Logger:   logger,
		Store:    store,
		Objects:  objects,
		Dispatcher: treediff.NewDispatcher(treediff.Options{
			Renderer:      treediff.UnifiedRenderer{ContextLines: cfg.Diff.ContextLines},
			Readability:   readability,
			PreserveOrder: cfg.Diff.PreserveOrder,
			Logger:        logger,
		}),
	}, nil
}

// Close flushes the logger.
func (ctx *CommandContext) Close() {
	_ = ctx.Logger.Sync()
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		Top:        c.Int("top"),
		OutputPath: c.String("output"),
		StatOnly:   c.Bool("stat"),
	}
}
