package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwash/catalog-server/internal/util"
)

func TestSetLogLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		setLogLevel(tt.in)
		assert.Equal(t, tt.want, zerolog.GlobalLevel(), tt.in)
	}
}

func TestRootCmd(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "hash-password"} {
		assert.True(t, names[want], want)
	}

	migrate, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "down", migrate.Name())
}

func TestHashPasswordCmd(t *testing.T) {
	run := func(t *testing.T, stdin string, args ...string) (string, error) {
		t.Helper()
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetIn(strings.NewReader(stdin))
		root.SetArgs(append([]string{"hash-password"}, args...))
		err := root.Execute()
		return strings.TrimSpace(out.String()), err
	}

	t.Run("hashes an argument", func(t *testing.T) {
		hash, err := run(t, "", "s3cret-password")
		require.NoError(t, err)
		assert.True(t, util.CheckPasswordHash("s3cret-password", hash))
	})

	t.Run("reads stdin without an argument", func(t *testing.T) {
		hash, err := run(t, "from-stdin-pass\n")
		require.NoError(t, err)
		assert.True(t, util.CheckPasswordHash("from-stdin-pass", hash))
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		_, err := run(t, "\n")
		assert.Error(t, err)
	})
}

func TestMigrateDownRequiresConfirmation(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "down"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}
