package cli

import (
	"fmt"
	"os"

	"github.com/phanxgames/showcase"
	"github.com/phanxgames/showcase/host"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newViewCmd(opts *rootOptions) *cobra.Command {
	var (
		width, height int
		showFPS       bool
		scriptPath    string
		shotDir       string
		analytics     bool
	)

	cmd := &cobra.Command{
		Use:   "view <catalog>",
		Short: "Open a catalog in a window",
		Long: `Open a catalog (URL or local file) in a window.

Drag or use the arrow keys to move between items, scroll with ctrl held or
pinch to zoom, and drag a 360 item to spin it. With --script, the gesture
script is replayed and the window closes when it finishes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			v, err := loadViewer(ctx, opts, args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			if analytics {
				a := showcase.NewAnalytics(showcase.AnalyticsFunc(func(r showcase.AnalyticsRecord) {
					logger.Info("analytics", "session", shortID(r.Session), "action", r.Action.Name,
						"field", r.Action.Field, "value", r.Action.Value, "index", r.Index)
				}), 0)
				defer a.Close()
				v.SetAnalytics(a)
			}

			run := host.RunConfig{
				Title:         fmt.Sprintf("Showcase - %s", args[0]),
				Width:         width,
				Height:        height,
				ShowFPS:       showFPS,
				ScreenshotDir: shotDir,
				Logger:        logger,
			}
			if scriptPath != "" {
				data, err := os.ReadFile(scriptPath)
				if err != nil {
					return fmt.Errorf("read script: %w", err)
				}
				if run.Script, err = showcase.LoadTestScript(data); err != nil {
					return err
				}
			}
			return host.Run(v, run)
		},
	}

	cmd.Flags().IntVar(&width, "width", 960, "window width")
	cmd.Flags().IntVar(&height, "height", 640, "window height")
	cmd.Flags().BoolVar(&showFPS, "fps", false, "show FPS counter")
	cmd.Flags().StringVar(&scriptPath, "script", "", "gesture script to replay (JSON)")
	cmd.Flags().StringVar(&shotDir, "screenshots", "screenshots", "screenshot output directory")
	cmd.Flags().BoolVar(&analytics, "analytics", false, "log analytics records")

	return cmd
}

// shortID returns the first block of a session id for log lines.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
