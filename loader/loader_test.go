package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/hyoubkp/rules"
	"github.com/robinvdvleuten/hyoubkp/telemetry"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	mainFile := writeFile(t, tmpDir, "main.yaml", `
fallback: F
ruleset:
  main:
    - token: 工行
      account: 资产:银行:ICBC
  reward:
    - account: 收入:优惠券变现
`)

	absMainFile, err := filepath.Abs(mainFile)
	assert.NoError(t, err)

	for _, ldr := range []*Loader{New(), New(WithFollowIncludes())} {
		result, err := ldr.Load(context.Background(), mainFile)
		assert.NoError(t, err)
		assert.Equal(t, "F", result.Document.Fallback)
		assert.Equal(t, 2, len(result.Document.Ruleset))
		assert.Equal(t, absMainFile, result.Root)
		assert.Equal(t, 0, len(result.Includes))
	}
}

func TestLoadWithIncludeNoFollow(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "banks.yaml", "tags:\n  工行: [bank]\n")
	mainFile := writeFile(t, tmpDir, "main.yaml", "include: [banks.yaml]\nfallback: F\n")

	result, err := New().Load(context.Background(), mainFile)
	assert.NoError(t, err)
	assert.Equal(t, []string{"banks.yaml"}, result.Document.Include)
	assert.Equal(t, 0, len(result.Document.Tags))
	assert.Equal(t, 0, len(result.Includes))
}

func TestLoadWithIncludeFollow(t *testing.T) {
	tmpDir := t.TempDir()
	banks := writeFile(t, tmpDir, "rules/banks.yaml", `
fallback: ignored
hints: [还款, 储蓄卡]
tags:
  工行: [bank]
  农行: [bank]
ruleset:
  bank:
    - account: $1
  main:
    - token: ignored
      account: ignored
`)
	mainFile := writeFile(t, tmpDir, "main.yaml", `
include: [rules/banks.yaml]
fallback: F
hints: [还款]
tags:
  工行: [bank, card]
ruleset:
  main:
    - token: 工行
      import: [bank, 资产:银行:ICBC]
  reward:
    - account: R
`)

	result, err := New(WithFollowIncludes()).Load(context.Background(), mainFile)
	assert.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "F", doc.Fallback)
	assert.Equal(t, []string{"还款", "储蓄卡"}, doc.Hints)
	assert.Equal(t, []string{"bank", "card"}, doc.Tags["工行"])
	assert.Equal(t, []string{"bank"}, doc.Tags["农行"])
	assert.Equal(t, 3, len(doc.Ruleset))
	assert.Equal(t, 1, len(doc.Ruleset["main"]))
	assert.Equal(t, 0, len(doc.Include))

	absBanks, err := filepath.Abs(banks)
	assert.NoError(t, err)
	assert.Equal(t, []string{absBanks}, result.Includes)

	rule, err := rules.Compile(doc)
	assert.NoError(t, err)
	assert.Equal(t, "资产:银行:ICBC", rule.Main["工行"][0].Account)
}

func TestLoadNestedIncludes(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a/b/deep.yaml", "hints: [deep]\n")
	writeFile(t, tmpDir, "a/middle.yaml", "include: [b/deep.yaml]\nhints: [middle]\n")
	mainFile := writeFile(t, tmpDir, "main.yaml", "include: [a/middle.yaml]\nhints: [main]\n")

	result, err := New(WithFollowIncludes()).Load(context.Background(), mainFile)
	assert.NoError(t, err)
	assert.Equal(t, []string{"main", "middle", "deep"}, result.Document.Hints)
	assert.Equal(t, 2, len(result.Includes))
}

func TestLoadDuplicateAndCircularIncludes(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "shared.yaml", "hints: [shared]\n")
	writeFile(t, tmpDir, "a.yaml", "include: [shared.yaml, main.yaml]\nhints: [a]\n")
	mainFile := writeFile(t, tmpDir, "main.yaml", "include: [a.yaml, shared.yaml]\nhints: [main]\n")

	result, err := New(WithFollowIncludes()).Load(context.Background(), mainFile)
	assert.NoError(t, err)
	assert.Equal(t, []string{"main", "a", "shared"}, result.Document.Hints)
	assert.Equal(t, 2, len(result.Includes))
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("MissingFile", func(t *testing.T) {
		_, err := New().Load(context.Background(), filepath.Join(tmpDir, "nope.yaml"))
		assert.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("MissingInclude", func(t *testing.T) {
		mainFile := writeFile(t, tmpDir, "broken.yaml", "include: [nope.yaml]\n")
		_, err := New(WithFollowIncludes()).Load(context.Background(), mainFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "in file "+mainFile)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("InvalidDocument", func(t *testing.T) {
		mainFile := writeFile(t, tmpDir, "invalid.yaml", "fallbak: F\n")
		_, err := New().Load(context.Background(), mainFile)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid.yaml")
	})

	t.Run("Cancelled", func(t *testing.T) {
		writeFile(t, tmpDir, "inc.yaml", "hints: [x]\n")
		mainFile := writeFile(t, tmpDir, "cancel.yaml", "include: [inc.yaml]\n")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := New(WithFollowIncludes()).Load(ctx, mainFile)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestMerge(t *testing.T) {
	main := &rules.Document{
		Ruleset: map[string][]rules.Entry{"main": {{Account: "main"}}},
	}
	first := &rules.Document{
		Fallback: "first",
		Ruleset:  map[string][]rules.Entry{"main": {{Account: "first"}}, "reward": {{Account: "r1"}}},
	}
	second := &rules.Document{
		Fallback: "second",
		Ruleset:  map[string][]rules.Entry{"reward": {{Account: "r2"}}},
	}

	merged := merge(main, first, second)
	assert.Equal(t, "first", merged.Fallback)
	assert.Equal(t, "main", merged.Ruleset["main"][0].Account)
	assert.Equal(t, "r1", merged.Ruleset["reward"][0].Account)
}

func TestLoadTimings(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "banks.yaml", "tags:\n  工行: [bank]\n")
	mainFile := writeFile(t, tmpDir, "main.yaml", "include: [banks.yaml]\nfallback: F\n")

	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	_, err := New(WithFollowIncludes()).Load(ctx, mainFile)
	assert.NoError(t, err)

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Contains(t, buf.String(), "load main.yaml: ")
	assert.Contains(t, buf.String(), "└─ include banks.yaml: ")
}
