package cli

import (
	"fmt"
	"io"

	"github.com/phanxgames/showcase"

	"github.com/spf13/cobra"
)

func newWidthsCmd(opts *rootOptions) *cobra.Command {
	var (
		strategy string
		ratio    float64
		viewport float64
	)

	cmd := &cobra.Command{
		Use:   "widths <catalog>",
		Short: "Print the breakpoint rules for a catalog's width tiers",
		Long: `Print the breakpoint rules each load strategy builds from a catalog's
width tiers, using the min and max widths from the config.

--ratio is the share of the viewport the image is rendered at. With
--viewport, the width selected for that viewport is printed too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			comp, err := showcase.FetchComposition(ctx, showcase.HTTPFetcher{}, args[0], showcase.FetchOptions{
				Attempts: cfg.FetchAttempts,
			})
			if err != nil {
				return err
			}

			strategies := []showcase.LoadStrategy{showcase.StrategyQuality, showcase.StrategyBalanced, showcase.StrategySpeed}
			if strategy != "" {
				s, err := showcase.ParseLoadStrategy(strategy)
				if err != nil {
					return err
				}
				strategies = []showcase.LoadStrategy{s}
			}

			out := cmd.OutOrStdout()
			for _, s := range strategies {
				res := showcase.ResolveWidths(showcase.WidthOptions{
					Available:  comp.AvailableWidths(),
					MinWidth:   cfg.MinMediaWidth,
					MaxWidth:   cfg.MaxMediaWidth,
					Strategy:   s,
					Multiplier: ratio,
				})
				printResolution(out, s, res, viewport)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "only this strategy (quality, balanced, speed)")
	cmd.Flags().Float64Var(&ratio, "ratio", 1, "share of the viewport width the image covers")
	cmd.Flags().Float64Var(&viewport, "viewport", 0, "viewport width to select a tier for")
	return cmd
}

func printResolution(w io.Writer, s showcase.LoadStrategy, res showcase.Resolution, viewport float64) {
	printTitle(w, "%s", s)
	if res.Warning != nil {
		printWarning(w, "%v", res.Warning)
	}
	for _, r := range res.Rules {
		media := r.Media()
		if media == "" {
			media = styleDim.Render("(fallback)")
		}
		fmt.Fprintf(w, "  %-22s %s %s\n", media, iconArrow, styleNumber.Render(fmt.Sprintf("%dw", r.Width)))
	}
	if viewport > 0 {
		fmt.Fprintf(w, "  selected at %gpx: %s\n", viewport, styleNumber.Render(fmt.Sprintf("%dw", res.Select(viewport))))
	}
}
