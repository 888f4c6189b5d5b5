// Command render builds an attendee graph from a roster file in memory and
// writes its layout as SVG or its recommendations as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"graphite/backend/internal/demo"
	"graphite/backend/internal/graph"
	"graphite/backend/internal/ingest"
	"graphite/backend/internal/layout"
	"graphite/backend/internal/recommend"
	"graphite/backend/pkg/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// graphFlags select the data a subcommand works on
type graphFlags struct {
	roster    string
	eventID   string
	viewerID  string
	portfolio []string
	demo      bool
	scope     string
}

type svgFlags struct {
	out       string
	frames    int
	settle    float64
	width     float64
	height    float64
	seed      uint64
	highlight string
	query     string
}

func newRootCommand() *cobra.Command {
	var gf graphFlags

	root := &cobra.Command{
		Use:   "render",
		Short: "Render attendee graphs offline",
		Long: `Build an attendee graph in memory from a roster file and render it.

The roster is a JSON or YAML list of attendees with name, title,
currentCompany, linkedinUrl and workHistory. --demo loads the bundled
demo events first; both can be combined.

Examples:
  render svg --demo --event event-1 --viewer vc-1 -o event-1.svg
  render svg --roster attendees.yaml --event meetup --portfolio Stripe,Figma
  render recommend --roster attendees.json --event meetup --portfolio Stripe`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&gf.roster, "roster", "r", "", "roster file (.json, .yaml or .yml)")
	root.PersistentFlags().StringVarP(&gf.eventID, "event", "e", "event-1", "event to ingest into and render")
	root.PersistentFlags().StringVar(&gf.viewerID, "viewer", "vc-1", "viewer whose portfolio marks targets")
	root.PersistentFlags().StringSliceVar(&gf.portfolio, "portfolio", nil, "portfolio companies of the viewer, replaces any stored ones")
	root.PersistentFlags().BoolVar(&gf.demo, "demo", false, "load the bundled demo dataset")
	root.PersistentFlags().StringVar(&gf.scope, "scope", config.ConnectScopeFull, "auto-connection scope (batch or full)")

	root.AddCommand(newSVGCommand(&gf), newRecommendCommand(&gf))
	return root
}

func newSVGCommand(gf *graphFlags) *cobra.Command {
	var sf svgFlags

	cmd := &cobra.Command{
		Use:   "svg",
		Short: "Relax the event graph and write the final frame as SVG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := loadGraph(ctx, *gf)
			if err != nil {
				return err
			}
			data, err := graph.GetEventGraph(ctx, store, gf.eventID, gf.viewerID)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, sf.out)
			if err != nil {
				return err
			}
			defer closeOut()

			steps, err := layout.RenderSVG(w, data, layout.Config{Width: sf.width, Height: sf.height, Seed: sf.seed}, layout.RenderOptions{
				Frames:    sf.frames,
				Settle:    sf.settle,
				Highlight: sf.highlight,
				Query:     sf.query,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "rendered %d nodes, %d links after %d steps\n", len(data.Nodes), len(data.Links), steps)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sf.out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().IntVar(&sf.frames, "frames", 300, "physics steps before drawing")
	cmd.Flags().Float64Var(&sf.settle, "settle", 1e-3, "stop early below this kinetic energy, 0 never")
	cmd.Flags().Float64Var(&sf.width, "width", 800, "canvas width")
	cmd.Flags().Float64Var(&sf.height, "height", 600, "canvas height")
	cmd.Flags().Uint64Var(&sf.seed, "seed", 1, "seed of the initial placement, 0 for random")
	cmd.Flags().StringVar(&sf.highlight, "highlight", "", "node id to emphasise and centre on")
	cmd.Flags().StringVarP(&sf.query, "query", "q", "", "search text to emphasise matching nodes")
	return cmd
}

func newRecommendCommand(gf *graphFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Print who the viewer should meet at the event as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := loadGraph(ctx, *gf)
			if err != nil {
				return err
			}
			recs, err := recommend.NewEngine(store).GetRecommendations(ctx, gf.eventID, gf.viewerID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		},
	}
}

// loadGraph fills a fresh memory store from the demo data and the roster
func loadGraph(ctx context.Context, gf graphFlags) (graph.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if gf.roster == "" && !gf.demo {
		return nil, fmt.Errorf("nothing to render: pass --roster or --demo")
	}
	if gf.scope != config.ConnectScopeBatch && gf.scope != config.ConnectScopeFull {
		return nil, fmt.Errorf("--scope must be %q or %q", config.ConnectScopeBatch, config.ConnectScopeFull)
	}

	store := graph.NewMemoryStore()
	if gf.demo {
		if err := demo.Seed(ctx, store); err != nil {
			return nil, err
		}
	}

	if gf.roster != "" {
		records, err := readRoster(gf.roster)
		if err != nil {
			return nil, err
		}
		if _, err := ingest.NewBuilder(store, gf.scope).BuildGraph(ctx, gf.eventID, records); err != nil {
			return nil, err
		}
	}

	if len(gf.portfolio) > 0 {
		if err := store.SetPortfolio(ctx, gf.viewerID, gf.portfolio); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// readRoster decodes a roster list. YAML is assumed unless the file ends in .json.
func readRoster(path string) ([]ingest.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	records := []ingest.Record{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &records)
	} else {
		err = yaml.Unmarshal(raw, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode roster %s: %w", path, err)
	}
	return records, nil
}

// output opens the destination of a render
func output(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
