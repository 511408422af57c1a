package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "indexes", "resolve"}, names)
}

func TestResolveRequiresUser(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"resolve", "--date", "2025-01-06"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user")
}

func TestResolveRejectsBadDate(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"resolve", "--user", "user-1", "--date", "tomorrow"})
	require.Error(t, root.Execute())
}
