package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "spots", "query"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "kindness-map", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestSpotsCommand_Flags(t *testing.T) {
	for _, name := range []string{"lat", "lng", "locate", "ip", "source", "format", "zoom"} {
		assert.NotNil(t, spotsCmd.Flags().Lookup(name), "spots should have --%s flag", name)
	}
	assert.Equal(t, "table", spotsCmd.Flags().Lookup("format").DefValue)
}

func TestQueryCommand_Flags(t *testing.T) {
	for _, name := range []string{"lat", "lng", "radius"} {
		assert.NotNil(t, queryCmd.Flags().Lookup(name), "query should have --%s flag", name)
	}
}
