package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/dsbmap/internal/catalog"
	"github.com/dshills/dsbmap/internal/importer"
	"github.com/dshills/dsbmap/internal/layout"
	"github.com/dshills/dsbmap/internal/mcp"
	"github.com/dshills/dsbmap/internal/storage"
	"github.com/dshills/dsbmap/internal/topology"
	"github.com/dshills/dsbmap/internal/viewport"
	"github.com/dshills/dsbmap/pkg/types"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Info("dsbmap MCP server starting",
				"version", version,
				"build_mode", storage.BuildMode,
				"driver", storage.DriverName,
				"db", a.cfg.Database.Path)

			server, err := mcp.NewServer(a.cfg, a.logger)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errChan := make(chan error, 1)
			go func() {
				a.logger.Info("MCP server ready, listening on stdio")
				errChan <- server.Serve(ctx)
			}()

			select {
			case <-ctx.Done():
				a.logger.Info("shutting down")
				return nil
			case err := <-errChan:
				return err
			}
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var (
		layoutName string
		force      bool
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "import <catalog.csv>",
		Short: "Import a catalog CSV into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if workers <= 0 {
				workers = a.cfg.Import.Workers
			}
			stats, err := importer.New(store, a.logger).Import(cmd.Context(), args[0], &importer.Config{
				Workers:   workers,
				BatchSize: a.cfg.Import.BatchSize,
				Layout:    catalog.Layout(layoutName),
				Force:     force,
				Build:     a.buildOptions(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s layout)\n", stats.RunID, stats.Layout)
			fmt.Fprintf(out, "  read: %d  stored: %d  skipped: %d  invalid: %d  in %s\n",
				stats.RowsRead, stats.RowsStored, stats.RowsSkipped, stats.RowsInvalid, stats.Duration.Round(time.Millisecond))
			for _, msg := range stats.ErrorMessages {
				fmt.Fprintf(out, "  %s\n", msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&layoutName, "layout", string(catalog.LayoutAuto), "catalog layout: auto, dataset or topology")
	cmd.Flags().BoolVar(&force, "force", false, "rewrite rows even when unchanged")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent validators (default from config)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "show <accession>",
		Short: "Print the annotation of a protein as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := a.lookupService(store).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if summary {
				return writeJSON(cmd.OutOrStdout(), res.Annotation.Summary())
			}
			return writeJSON(cmd.OutOrStdout(), res.Annotation)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print counts only")
	return cmd
}

func newLayoutCmd(a *app) *cobra.Command {
	var (
		width     float64
		scale     float64
		fullScale bool
		window    string
		hide      []string
	)
	cmd := &cobra.Command{
		Use:   "layout <accession>",
		Short: "Print drawing coordinates for a protein as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := layout.DefaultOptions()
			opts.Width = a.cfg.Layout.Width
			opts.Height = a.cfg.Layout.Height
			opts.Scale = a.cfg.Layout.Scale
			opts.BondLength = a.cfg.Layout.BondLength
			if width > 0 {
				opts.Width = width
			}
			if scale > 0 {
				opts.Scale = scale
			}
			opts.FullScale = fullScale

			if window != "" {
				w, err := parseWindow(window)
				if err != nil {
					return err
				}
				opts.Window = w
			}
			if len(hide) > 0 {
				opts.Hidden = make(map[layout.Category]bool, len(hide))
				for _, name := range hide {
					c, err := layout.ParseCategory(name)
					if err != nil {
						return err
					}
					opts.Hidden[c] = true
				}
			}

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := a.lookupService(store).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			scene, err := layout.Compose(res.Annotation, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), scene)
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&scale, "scale", 0, "full spine stretch factor (default from config)")
	cmd.Flags().BoolVar(&fullScale, "full-scale", false, "one unit per residue for sequences of 3000+ residues")
	cmd.Flags().StringVar(&window, "window", "", "window as start:end")
	cmd.Flags().StringSliceVar(&hide, "hide", nil, "legend categories to hide")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "decode <topology-code> <length>",
		Short: "Decode a topology code into domain intervals",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var length int
			if _, err := fmt.Sscanf(args[1], "%d", &length); err != nil {
				return fmt.Errorf("invalid length %q", args[1])
			}

			outside, inside, err := topology.Decode(args[0], length)
			if err != nil {
				return err
			}
			if strict || a.cfg.Decoder.StrictPartition {
				if err := topology.CheckPartition(outside, inside, length); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SIDE\tSTART\tEND\tLENGTH")
			for _, seg := range topology.Merge(outside, inside) {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", seg.Side, seg.Start, seg.End, seg.Len())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if normalized, err := topology.Encode(topology.Merge(outside, inside), length); err == nil {
				fmt.Fprintf(out, "normalized: %s\n", normalized)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "require the domains to tile the sequence")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Search the catalog by accession, entry name or protein name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hits, err := a.lookupService(store).Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCESSION\tENTRY\tLENGTH\tSOURCE\tRELEVANCE\tDESCRIPTION")
			for _, h := range hits {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.2f\t%s\n",
					h.Accession, h.EntryName, h.Length, h.Source, storage.Relevance(h.Score), h.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultSearchLimit, "maximum results")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records by accession",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListRecords(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCESSION\tENTRY\tLENGTH\tTOPOLOGY\tSOURCE\tCOMPLETE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%t\n",
					r.Accession, r.EntryName, r.Length, r.TopologyCode, r.Source, r.Complete)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum records (0 for all)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <accession>...",
		Short: "Remove records from the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			for _, id := range args {
				id = strings.ToUpper(strings.TrimSpace(id))
				if err := store.DeleteRecord(cmd.Context(), id); err != nil {
					if errors.Is(err, storage.ErrNotFound) {
						return fmt.Errorf("record %s: %w", id, err)
					}
					return err
				}
				a.logger.Info("record deleted", "accession", id)
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dsbmap\n")
			fmt.Fprintf(out, "Version: %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
			fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
			fmt.Fprintf(out, "Schema: %s\n", storage.CurrentSchemaVersion)
		},
	}
}

// parseWindow parses "start:end"
func parseWindow(s string) (*viewport.Window, error) {
	var start, end int
	if _, err := fmt.Sscanf(s, "%d:%d", &start, &end); err != nil {
		return nil, fmt.Errorf("invalid window %q, want start:end", s)
	}
	return &viewport.Window{Start: types.Position(start), End: types.Position(end)}, nil
}
