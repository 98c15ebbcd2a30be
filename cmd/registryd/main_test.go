package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-registry/framework/container"
)

func parse(t *testing.T, out io.Writer, args ...string) (*kong.Context, *CLI) {
	t.Helper()
	var cli CLI
	parser, err := newParser(&cli, kong.BindTo(out, (*io.Writer)(nil)), kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return kctx, &cli
}

func TestParse_DefaultsToServe(t *testing.T) {
	kctx, cli := parse(t, io.Discard)
	assert.Equal(t, "serve", kctx.Command())
	assert.Equal(t, []string{".env"}, cli.Env)
}

func TestParse_Inspect(t *testing.T) {
	kctx, cli := parse(t, io.Discard, "inspect", "-f", "yaml", "-e", "testdata/registry.env")
	assert.Equal(t, "inspect", kctx.Command())
	assert.Equal(t, "yaml", cli.Inspect.Format)
	assert.Equal(t, []string{"testdata/registry.env"}, cli.Env)
}

func TestParse_InspectRejectsUnknownFormat(t *testing.T) {
	var cli CLI
	parser, err := newParser(&cli, kong.Exit(func(int) {}), kong.Writers(io.Discard, io.Discard))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"inspect", "--format", "xml"})
	assert.Error(t, err)
}

func TestInspect_JSON(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("APP_PORT", "")

	var out bytes.Buffer
	kctx, cli := parse(t, &out, "inspect", "-e", "testdata/missing.env")
	require.NoError(t, kctx.Run(cli))

	var status container.Status
	require.NoError(t, json.Unmarshal(out.Bytes(), &status))
	assert.True(t, status.Loaded)
	assert.NotEmpty(t, status.Build)
	assert.Contains(t, status.Timing, "server")
}

func TestInspect_YAML(t *testing.T) {
	t.Setenv("APP_ENV", "testing")

	var out bytes.Buffer
	kctx, cli := parse(t, &out, "inspect", "--format", "yaml", "-e", "testdata/missing.env")
	require.NoError(t, kctx.Run(cli))

	var status container.Status
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &status))
	assert.True(t, status.Loaded)
	assert.Contains(t, status.Timing, "logger")
}

func TestInspect_InvalidConfig(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-port")

	kctx, cli := parse(t, io.Discard, "inspect", "-e", "testdata/missing.env")
	err := kctx.Run(cli)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config:")
}

func TestEncode_UnknownFormat(t *testing.T) {
	assert.Error(t, encode(io.Discard, "toml", container.Status{}))
}
