package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <catalog>",
		Short: "Print the resolved item list of a catalog",
		Long: `Print the items a viewer would show for a catalog, after the category
filter and item limit from the config are applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViewer(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			out := cmd.OutOrStdout()
			comp := v.Composition()
			cat := v.Catalog()
			printTitle(out, "%s (%s, hd %dpx)", args[0], comp.AspectRatio, comp.ImageHdWidth)
			for _, span := range cat.Categories {
				start := styleDim.Render("truncated")
				if span.Start >= 0 {
					start = styleNumber.Render(fmt.Sprint(span.Start))
				}
				fmt.Fprintf(out, "  %s %s %s\n", span.ID, iconArrow, start)
			}
			for i, it := range cat.Items {
				label := it.Item.Title
				if it.Custom {
					label += styleDim.Render(" (custom)")
				}
				fmt.Fprintf(out, "%s %-12s %-10s %s\n",
					styleNumber.Render(fmt.Sprintf("%3d", i)),
					cat.CategoryAt(i).ID, it.Item.Kind, label)
			}
			printSuccess(out, "%d items in %d categories", cat.Len(), len(cat.Categories))
			return nil
		},
	}
}
