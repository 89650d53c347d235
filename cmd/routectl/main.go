// Command routectl builds the order aggregate's routing table offline and
// prints it. It exits non-zero when the handler models cannot be routed, so
// it doubles as a CI check for model changes.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jsamuelsen11/go-entity-routing/internal/app"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/command"
	"github.com/jsamuelsen11/go-entity-routing/internal/domain/order"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/config"
	"github.com/jsamuelsen11/go-entity-routing/internal/platform/logging"
	"github.com/jsamuelsen11/go-entity-routing/internal/ports"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatTOML = "toml"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// tableOptions are the routing settings shared by every subcommand.
type tableOptions struct {
	profile   string
	configDir string
	maxDepth  int
	strict    bool
	verbose   bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &tableOptions{}

	root := &cobra.Command{
		Use:           "routectl",
		Short:         "Inspect how order commands are routed to entities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.profile, "profile", "", "load routing settings from this config profile (local, dev, qa, prod)")
	pf.StringVar(&opts.configDir, "config-dir", "configs", "directory holding the config YAML files")
	pf.IntVar(&opts.maxDepth, "max-depth", 0, "maximum entity nesting depth; 0 means unlimited")
	pf.BoolVar(&opts.strict, "strict", false, "fail when a routed payload lacks a target property")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log route discovery to stderr")

	root.AddCommand(newRoutesCmd(opts), newCommandsCmd(opts))
	return root
}

func newRoutesCmd(opts *tableOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print every handler of the order aggregate",
		Example: strings.TrimSpace(`
  routectl routes
  routectl routes --format json --strict
  routectl routes --profile local --format toml`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := opts.build(cmd)
			if err != nil {
				return err
			}
			return writeRoutes(cmd.OutOrStdout(), format, table.Routes())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or toml")
	return cmd
}

func newCommandsCmd(opts *tableOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "Map HTTP command names to the handlers they reach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := opts.build(cmd)
			if err != nil {
				return err
			}

			byPayload := make(map[string]ports.RouteInfo)
			for _, r := range table.Routes() {
				byPayload[r.Payload] = r
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tPAYLOAD\tHANDLER\tKIND")
			for _, name := range order.CommandNames() {
				payload, err := order.DecodeCommand(name, nil)
				if err != nil {
					return err
				}
				typ := command.TypeName(reflect.TypeOf(payload))
				r, ok := byPayload[typ]
				if !ok {
					r = ports.RouteInfo{Command: "-", Kind: "unrouted"}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, typ, r.Command, r.Kind)
			}
			return tw.Flush()
		},
	}
}

// build resolves the effective routing settings and builds the table.
// Explicit flags override the profile's values.
func (o *tableOptions) build(cmd *cobra.Command) (*app.DispatchTable, error) {
	maxDepth, strict := o.maxDepth, o.strict

	if o.profile != "" {
		cfg, err := config.Load(o.profile, config.WithConfigDir(o.configDir))
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
		if !changed["max-depth"] {
			maxDepth = cfg.Routing.MaxDepth
		}
		if !changed["strict"] {
			strict = cfg.Routing.StrictTargetProperties
		}
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger := logging.New(level, "text", cmd.ErrOrStderr())

	table, err := app.BuildOrderTable(maxDepth, strict, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("routing table built",
		slog.Int("routes", len(table.Routes())),
		slog.Int("max_depth", maxDepth),
		slog.Bool("strict", strict),
	)
	return table, nil
}

func writeRoutes(w io.Writer, format string, routes []ports.RouteInfo) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"routes": routes})
	case formatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(struct {
			Routes []ports.RouteInfo `toml:"routes"`
		}{routes})
	case formatText:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tHANDLER\tPAYLOAD\tENTITY\tDEPTH\tPATH")
		for _, r := range routes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", r.Kind, r.Command, r.Payload, r.Entity, r.Depth, pathString(r.Path))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q: want text, json or toml", format)
	}
}

// pathString renders a route path as Lines[targetLineId].Pricing.
func pathString(path []ports.RouteHop) string {
	if len(path) == 0 {
		return "-"
	}
	var b strings.Builder
	for i, hop := range path {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(hop.Member)
		if hop.TargetProperty != "" {
			b.WriteString("[" + hop.TargetProperty + "]")
		}
	}
	return b.String()
}
