package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/phanxgames/showcase"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// defaultConfigPath is used when neither --config nor SHOWCASE_CONFIG is set.
const defaultConfigPath = "showcase.toml"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose    bool
	configPath string
}

// config loads the viewer configuration. An unset path falls back to
// SHOWCASE_CONFIG and then to showcase.toml in the working directory.
func (o *rootOptions) config() (showcase.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv("SHOWCASE_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := showcase.LoadConfig(path)
	if err != nil {
		return showcase.Config{}, err
	}
	if o.verbose {
		cfg.Debug = true
	}
	return cfg, nil
}

// NewRootCmd builds the command tree. main hands it to fang.Execute.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "showcase",
		Short:        "Browse product media catalogs",
		Long:         `Showcase loads a product media catalog and presents it as a carousel of zoomable images, 360 spins and videos.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("showcase %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "viewer config file (TOML)")

	root.AddCommand(newViewCmd(opts))
	root.AddCommand(newInspectCmd(opts))
	root.AddCommand(newWidthsCmd(opts))
	root.AddCommand(newScriptCmd(opts))

	return root
}

// loadViewer builds a viewer from the config and loads the catalog at
// source, logging how long the fetch took.
func loadViewer(ctx context.Context, opts *rootOptions, source string) (*showcase.Viewer, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	logger := loggerFromContext(ctx)
	v, err := showcase.NewViewer(cfg)
	if err != nil {
		return nil, err
	}
	v.SetLogger(logger.WithPrefix("viewer"))
	v.SetDebugMode(cfg.Debug)

	prog := newProgress(logger)
	if err := v.Load(ctx, showcase.HTTPFetcher{}, source); err != nil {
		v.Close()
		return nil, err
	}
	prog.done("catalog loaded", "source", source, "items", v.Catalog().Len())
	return v, nil
}
