package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/phanxgames/showcase"

	"github.com/spf13/cobra"
)

// scriptFrame is the simulated frame length of a headless run.
const scriptFrame = time.Second / 60

func newScriptCmd(opts *rootOptions) *cobra.Command {
	var (
		width, height int
		maxFrames     int
	)

	cmd := &cobra.Command{
		Use:   "script <catalog> <script.json>",
		Short: "Replay a gesture script without a window",
		Long: `Replay a gesture script against a catalog with a simulated clock. The
viewer state is printed at every screenshot step and once the script and
its animations have finished.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			runner, err := showcase.LoadTestScript(data)
			if err != nil {
				return err
			}
			v, err := loadViewer(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			frames := runScript(v, runner, cmd.OutOrStdout(), width, height, maxFrames)
			out := cmd.OutOrStdout()
			printState(out, "final", v.State())
			for _, err := range runner.Errs() {
				printWarning(out, "%v", err)
			}
			if !runner.Done() {
				return fmt.Errorf("script did not finish within %d frames", maxFrames)
			}
			printSuccess(out, "script finished in %d frames", frames)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 960, "viewport width")
	cmd.Flags().IntVar(&height, "height", 640, "viewport height")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 3600, "frame limit")
	return cmd
}

// runScript drives v until the runner is done and no animation is pending,
// or maxFrames is reached. It returns the number of frames run.
func runScript(v *showcase.Viewer, runner *showcase.TestRunner, out io.Writer, width, height, maxFrames int) int {
	v.Resize(showcase.Size{Width: float64(width), Height: float64(height)},
		showcase.ViewportMetrics{PlayerInViewportWidthRatio: 1})
	v.SetTestRunner(runner)

	var now time.Duration
	frame := 0
	for frame < maxFrames {
		if runner.Done() && v.InjectPending() == 0 && v.Loop().Pending() == 0 {
			break
		}
		frame++
		now += scriptFrame
		v.Update(now, showcase.FrameInput{})
		for _, label := range v.TakeScreenshots() {
			printState(out, label, v.State())
		}
	}
	return frame
}

func printState(w io.Writer, label string, st showcase.ViewerState) {
	fmt.Fprintf(w, "%s %s item %d/%d %s %s scale %.2f frame %d owner %s\n",
		styleTitle.Render(label), iconArrow, st.Index, st.Items,
		st.Category, st.Kind, st.Transform.Scale, st.Frame, st.Owner)
}
