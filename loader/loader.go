// Package loader reads rule documents from disk, optionally following their
// include lists and merging every included document into one.
//
// Include paths are resolved from the directory of the including document.
// A document included more than once is only read the first time.
//
//	l := loader.New(loader.WithFollowIncludes())
//	result, err := l.Load(ctx, "rules.yaml")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/hyoubkp/logging"
	"github.com/robinvdvleuten/hyoubkp/rules"
	"github.com/robinvdvleuten/hyoubkp/telemetry"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Loader reads rule documents.
//
//	loader := New(WithFollowIncludes())
type Loader struct {
	// FollowIncludes loads and merges the documents listed under "include".
	// When false the list is left on the returned document untouched.
	FollowIncludes bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithFollowIncludes makes the loader resolve include lists recursively.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is a loaded rule document.
type Result struct {
	Document *rules.Document

	// Root is the absolute path of the document passed to Load.
	Root string
	// Includes lists the absolute paths of every included document that was
	// read, in load order.
	Includes []string
}

// Load reads filename and, when following includes, every document it
// includes.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	timer := telemetry.FromContext(ctx).Start("load " + filepath.Base(filename))
	defer timer.End()

	root, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	if !l.FollowIncludes {
		doc, err := readDocument(filename)
		if err != nil {
			return nil, err
		}
		return &Result{Document: doc, Root: root}, nil
	}

	state := &loaderState{
		visited: make(map[string]bool),
		timer:   timer,
		logger:  logging.FromContext(ctx),
	}
	doc, err := state.loadRecursive(ctx, filename)
	if err != nil {
		return nil, err
	}

	return &Result{Document: doc, Root: root, Includes: state.includes}, nil
}

type loaderState struct {
	visited  map[string]bool
	includes []string
	timer    telemetry.Timer
	logger   *zap.Logger
}

func (l *loaderState) loadRecursive(ctx context.Context, filename string) (*rules.Document, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	if l.visited[absPath] {
		l.logger.Debug("skipping document loaded before", zap.String("path", absPath))
		return &rules.Document{}, nil
	}
	if len(l.visited) > 0 {
		l.includes = append(l.includes, absPath)
	}
	l.visited[absPath] = true

	doc, err := readDocument(filename)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded rule document",
		zap.String("path", absPath),
		zap.Int("rulesets", len(doc.Ruleset)),
		zap.Int("includes", len(doc.Include)))

	baseDir := filepath.Dir(absPath)
	included := make([]*rules.Document, 0, len(doc.Include))
	for _, inc := range doc.Include {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		includePath := inc
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		child := l.timer.Child("include " + filepath.Base(includePath))
		incDoc, err := l.loadRecursive(ctx, includePath)
		child.End()
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", filename, err)
		}
		included = append(included, incDoc)
	}

	return merge(doc, included...), nil
}

func readDocument(filename string) (*rules.Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	defer f.Close()

	doc, err := rules.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return doc, nil
}

// merge folds included documents into main. Values of main win: its fallback
// is kept when set, and its tags and rulesets shadow those of the same name.
// Earlier includes win over later ones in the same way. Hints are combined
// without duplicates.
func merge(main *rules.Document, included ...*rules.Document) *rules.Document {
	result := &rules.Document{
		Fallback: main.Fallback,
		Hints:    append([]string(nil), main.Hints...),
		Tags:     make(map[string][]string, len(main.Tags)),
		Ruleset:  make(map[string][]rules.Entry, len(main.Ruleset)),
	}
	for k, v := range main.Tags {
		result.Tags[k] = v
	}
	for k, v := range main.Ruleset {
		result.Ruleset[k] = v
	}

	for _, inc := range included {
		if result.Fallback == "" {
			result.Fallback = inc.Fallback
		}
		for _, h := range inc.Hints {
			if !slices.Contains(result.Hints, h) {
				result.Hints = append(result.Hints, h)
			}
		}
		for k, v := range inc.Tags {
			if _, ok := result.Tags[k]; !ok {
				result.Tags[k] = v
			}
		}
		for k, v := range inc.Ruleset {
			if _, ok := result.Ruleset[k]; !ok {
				result.Ruleset[k] = v
			}
		}
	}

	return result
}
