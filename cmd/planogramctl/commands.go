package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"planogram-editor/internal/planogram/catalog"
	"planogram-editor/internal/planogram/importer"
	"planogram-editor/internal/planogram/models"
	"planogram-editor/internal/planogram/persistence"
	"planogram-editor/internal/planogram/render"
	"planogram-editor/internal/planogram/store"
	"planogram-editor/internal/planogram/transform"

	"github.com/spf13/cobra"
)

// ============================================================
// export
// ============================================================

func newExportCommand() *cobra.Command {
	var draftFile, catalogDir, layoutID, output string
	var scale float64

	cmd := &cobra.Command{
		Use:   "export --draft <file>",
		Short: "Write the backend coordinate document of a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDraft(draftFile)
			if err != nil {
				return err
			}
			chrome, opts, err := projectionFor(catalogDir, firstNonEmpty(layoutID, d.LayoutID))
			if err != nil {
				return err
			}
			doc := transform.Export(current(d), chrome, scale, opts...)
			return writeJSON(cmd, output, doc)
		},
	}

	cmd.Flags().StringVar(&draftFile, "draft", "", "draft JSON file")
	cmd.Flags().Float64Var(&scale, "scale", 1, "pixel scale factor")
	cmd.Flags().StringVar(&catalogDir, "catalog", "", "catalog directory, for layout chrome")
	cmd.Flags().StringVar(&layoutID, "layout", "", "layout id overriding the draft's")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

// ============================================================
// import
// ============================================================

func newImportCommand() *cobra.Command {
	var payloadFile, catalogDir, layoutID, output string

	cmd := &cobra.Command{
		Use:   "import --payload <file> --catalog <dir>",
		Short: "Convert a detection payload into a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(catalogDir)
			if err != nil {
				return err
			}
			f, err := os.Open(payloadFile)
			if err != nil {
				return fmt.Errorf("open payload: %w", err)
			}
			defer f.Close()

			payload, err := importer.ParsePayload(f)
			if err != nil {
				return err
			}

			var res *importer.Result
			if layoutID != "" {
				res, err = importer.ConvertWithLayout(payload, cat, layoutID)
			} else {
				res, err = importer.Convert(payload, cat)
			}
			var amb *importer.AmbiguousLayoutError
			if errors.As(err, &amb) {
				ids := make([]string, len(amb.Candidates))
				for i, c := range amb.Candidates {
					ids[i] = c.ID
				}
				return fmt.Errorf("several layouts fit, rerun with --layout one of: %s", strings.Join(ids, ", "))
			}
			if err != nil {
				return err
			}

			if !res.Exact {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no exact layout match, using %s\n", res.Layout.ID)
			}
			for _, s := range res.Skipped {
				if s.Reason == importer.SkipEmpty {
					continue
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s section %d %q: %s\n", s.Door, s.Section+1, s.SKUCode, s.Reason)
			}

			st := store.New(res.Layout.ID, res.Refrigerator)
			return writeJSON(cmd, output, persistence.NewDraft(st.State(), time.Now()))
		},
	}

	cmd.Flags().StringVar(&payloadFile, "payload", "", "detection payload JSON file")
	cmd.Flags().StringVar(&catalogDir, "catalog", "data", "catalog directory")
	cmd.Flags().StringVar(&layoutID, "layout", "", "layout id, to resolve ambiguous matches")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("payload")
	return cmd
}

// ============================================================
// validate
// ============================================================

func newValidateCommand() *cobra.Command {
	var draftFile string

	cmd := &cobra.Command{
		Use:   "validate --draft <file>",
		Short: "Check a draft against the layout invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDraft(draftFile)
			if err != nil {
				return err
			}
			if len(d.History) > 0 && (d.HistoryIndex < 0 || d.HistoryIndex >= len(d.History)) {
				return fmt.Errorf("history index %d out of range [0,%d)", d.HistoryIndex, len(d.History))
			}

			violations := current(d).CheckInvariants()
			for i, entry := range d.History {
				if i == d.HistoryIndex {
					continue
				}
				for _, v := range entry.CheckInvariants() {
					fmt.Fprintf(cmd.OutOrStdout(), "history[%d]: %s\n", i, v)
				}
			}
			for _, v := range violations {
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d violations", len(violations))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d items\n", len(current(d).Items()))
			return nil
		},
	}

	cmd.Flags().StringVar(&draftFile, "draft", "", "draft JSON file")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

// ============================================================
// render
// ============================================================

func newRenderCommand() *cobra.Command {
	var draftFile, catalogDir, output string
	var scale float64

	cmd := &cobra.Command{
		Use:   "render --draft <file>",
		Short: "Render a draft as SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDraft(draftFile)
			if err != nil {
				return err
			}
			chrome, opts, err := projectionFor(catalogDir, d.LayoutID)
			if err != nil {
				return err
			}
			svg, err := render.NewRenderer(render.Options{Scale: scale}).Render(transform.Layout(current(d), chrome, opts...))
			if err != nil {
				return err
			}
			return write(cmd, output, []byte(svg))
		},
	}

	cmd.Flags().StringVar(&draftFile, "draft", "", "draft JSON file")
	cmd.Flags().Float64Var(&scale, "scale", 1, "pixel scale factor")
	cmd.Flags().StringVar(&catalogDir, "catalog", "", "catalog directory, for layout chrome")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

// ============================================================
// Helpers
// ============================================================

func readDraft(path string) (persistence.Draft, error) {
	var d persistence.Draft
	data, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read draft: %w", err)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse draft: %w", err)
	}
	return d, nil
}

// current is the snapshot the history index points at.
func current(d persistence.Draft) models.Refrigerator {
	if d.HistoryIndex >= 0 && d.HistoryIndex < len(d.History) {
		return d.History[d.HistoryIndex]
	}
	return d.Refrigerator
}

// projectionFor resolves chrome and door sizes from the catalog layout, if any.
func projectionFor(catalogDir, layoutID string) (models.Chrome, []transform.Option, error) {
	if catalogDir == "" {
		return models.DefaultChrome(), nil, nil
	}
	cat, err := catalog.Load(catalogDir)
	if err != nil {
		return models.Chrome{}, nil, err
	}
	if layout, ok := cat.Layout(layoutID); ok {
		return layout.ChromeOrDefault(), []transform.Option{transform.WithTemplate(layout)}, nil
	}
	return models.DefaultChrome(), nil, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(cmd *cobra.Command, output string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return write(cmd, output, append(data, '\n'))
}

func write(cmd *cobra.Command, output string, data []byte) error {
	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := w.Write(data)
	return err
}
