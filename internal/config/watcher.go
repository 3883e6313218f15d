package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"resumefit/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// PromptWatcher watches prompt override files and the inference table file,
// reloading them into the Config when they change on disk. Events are
// debounced because editors commonly emit several writes per save.
type PromptWatcher struct {
	config   *Config
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(*Config)
	logger   *errors.Logger
}

// NewPromptWatcher creates a watcher over every file-backed prompt and policy
// path in the configuration. onReload is invoked after a successful reload;
// it may be nil.
func NewPromptWatcher(cfg *Config, onReload func(*Config), logger *errors.Logger) (*PromptWatcher, error) {
	paths := cfg.watchedFiles()
	if len(paths) == 0 {
		return nil, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch parent directories: many editors replace files atomically, which
	// removes the original watch target.
	dirs := make(map[string]struct{})
	for _, path := range paths {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return &PromptWatcher{
		config:   cfg,
		watcher:  watcher,
		debounce: time.Second,
		onReload: onReload,
		logger:   logger,
	}, nil
}

// watchedFiles lists every configured external file path
func (c *Config) watchedFiles() []string {
	var paths []string
	add := func(p string) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	add(c.AI.CustomPrompts.SystemPrompts.ReviewResumeFile)
	add(c.AI.CustomPrompts.UserPrompts.ReviewResumeFile)
	add(c.AI.CustomPrompts.SystemPrompts.ModifyResumeFile)
	add(c.AI.CustomPrompts.UserPrompts.ModifyResumeFile)
	add(c.AI.Review.CustomPrompts.SystemPrompts.ReviewResumeFile)
	add(c.AI.Review.CustomPrompts.UserPrompts.ReviewResumeFile)
	add(c.AI.Modify.CustomPrompts.SystemPrompts.ModifyResumeFile)
	add(c.AI.Modify.CustomPrompts.UserPrompts.ModifyResumeFile)
	add(c.Enhancement.Truthfulness.Inference.TableFile)
	return paths
}

// Start runs the watch loop until the context is canceled
func (pw *PromptWatcher) Start(ctx context.Context) {
	if pw == nil {
		return
	}

	var timer *time.Timer
	reload := func() {
		if err := pw.config.loadPromptsFromFiles(); err != nil {
			if pw.logger != nil {
				pw.logger.LogError(err, "Failed to reload prompt files")
			}
			return
		}
		if pw.logger != nil {
			pw.logger.Info("Reloaded prompt files after change on disk")
		}
		if pw.onReload != nil {
			pw.onReload(pw.config)
		}
	}

	for {
		select {
		case <-ctx.Done():
			_ = pw.watcher.Close()
			return
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pw.logger != nil {
				pw.logger.Debug("Watched file changed", "file", event.Name, "op", event.Op.String())
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(pw.debounce, reload)
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			if pw.logger != nil {
				pw.logger.Warn("File watcher error", "error", err.Error())
			}
		}
	}
}

// Close stops the watcher
func (pw *PromptWatcher) Close() error {
	if pw == nil {
		return nil
	}
	return pw.watcher.Close()
}
