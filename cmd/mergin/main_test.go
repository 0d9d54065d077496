package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"login", "project", "download", "pull", "push", "status"} {
		assert.True(t, names[want], "command %q must be registered", want)
	}
}

func TestResolveProjectDir(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	dir, err := resolveProjectDir(nil)
	require.NoError(t, err)
	assert.Equal(t, cwd, dir)

	dir, err = resolveProjectDir([]string{"sub/project"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "sub", "project"), dir)
	assert.True(t, filepath.IsAbs(dir))
}

func TestProjectSubcommands(t *testing.T) {
	subs := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() != "project" {
			continue
		}
		for _, sub := range cmd.Commands() {
			subs[sub.Name()] = true
		}
	}

	require.NotEmpty(t, subs, "project command must be registered")
	assert.True(t, subs["list"])
	assert.True(t, subs["create"])
	assert.True(t, subs["delete"])
}
