package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestGetNamesLoggerAfterCategory(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	install(zap.New(core), nil)
	t.Cleanup(func() { install(nil, nil) })

	Get(CategoryExpand).Infof("expanded %d symbols", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "expand", entries[0].LoggerName)
	assert.Equal(t, "expanded 3 symbols", entries[0].Message)
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	install(nil, nil)
	assert.NotPanics(t, func() {
		Get(CategoryEmit).Debugf("nothing to see")
		Sync()
	})
}

func TestInitDisablesCategories(t *testing.T) {
	require.NoError(t, Init(Options{
		Level:      "debug",
		Format:     "json",
		Categories: map[string]bool{"watch": false, "emit": true},
	}))
	t.Cleanup(func() { install(nil, nil) })

	assert.False(t, Get(CategoryWatch).Desugar().Core().Enabled(zapcore.ErrorLevel))
	assert.True(t, Get(CategoryEmit).Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init(Options{Level: "chatty"}))
}

func TestCategoriesAreDistinct(t *testing.T) {
	seen := map[Category]bool{}
	for _, c := range Categories() {
		assert.False(t, seen[c], c)
		seen[c] = true
	}
	assert.True(t, seen[CategoryWatch])
	assert.Len(t, seen, 8)
}
