// Command registryd runs the framework application: it builds the component
// registry, serves HTTP with the inspect routes mounted and tears everything
// down on SIGINT or SIGTERM.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-registry/framework/app"
	"github.com/km-arc/go-registry/framework/config"
	"github.com/km-arc/go-registry/framework/container"
)

var version = "dev"

// CLI is the root command configuration with subcommands.
type CLI struct {
	Env     []string         `kong:"short='e',help='Env files to load',default='.env'"`
	Serve   ServeCmd         `kong:"cmd,default='1',help='Build the registry and serve HTTP until interrupted (default)'"`
	Inspect InspectCmd       `kong:"cmd,help='Build the registry, print its status and stop'"`
	Version kong.VersionFlag `kong:"short='v',help='Show version and exit.'"`
}

// ServeCmd is the default command.
type ServeCmd struct{}

// Run executes the serve command.
func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Env...)
	if err != nil {
		return err
	}
	return app.New(cfg).Run(context.Background())
}

// InspectCmd builds the registry without starting the server.
type InspectCmd struct {
	Format string `kong:"short='f',enum='json,yaml',default='json',help='Output format (json, yaml)'"`
}

// Run executes the inspect command.
func (c *InspectCmd) Run(cli *CLI, out io.Writer) error {
	cfg, err := config.Load(cli.Env...)
	if err != nil {
		return err
	}

	ctx := context.Background()
	application := app.New(cfg)
	if err := application.Boot(ctx); err != nil {
		return err
	}
	defer stopWithin(application, cfg)

	status, err := application.Status()
	if err != nil {
		return err
	}
	return encode(out, c.Format, status)
}

func stopWithin(a *app.Application, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	a.Stop(ctx)
}

func encode(w io.Writer, format string, status container.Status) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(status); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli, append([]kong.Option{
		kong.Name("registryd"),
		kong.Description("Component registry host: builds, serves and inspects the framework application"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	}, options...)...)
}

func run(args []string) error {
	var cli CLI
	parser, err := newParser(&cli, kong.BindTo(os.Stdout, (*io.Writer)(nil)))
	if err != nil {
		return err
	}
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kongCtx.Run(&cli)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
