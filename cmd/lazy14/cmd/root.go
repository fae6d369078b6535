package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lazy14/pkg/resource"
	"lazy14/pkg/settings"
)

var (
	flagSettings = settings.Default()
	configPath   string

	rootCmd = &cobra.Command{
		Use:           "lazy14",
		Short:         "Lazy image loading for scroll containers",
		Long:          "lazy14 loads a page, runs its scripts and reports which images of a scroll container have been lazily loaded.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	settings.AddFlags(rootCmd.PersistentFlags(), &flagSettings, &configPath)
	rootCmd.AddCommand(scanCmd)
}

// resolveSettings merges the config file and flags of cmd.
func resolveSettings(cmd *cobra.Command) (settings.Settings, error) {
	return settings.Resolve(cmd.Flags(), flagSettings, configPath)
}

func openPage(ctx context.Context, target string, s settings.Settings) (*resource.Page, error) {
	opts := []resource.PageOption{resource.WithViewport(s.Width, s.Height)}
	if s.Container != "" {
		opts = append(opts, resource.WithLazyContainer(s.Container, s.LazyOptions()...))
	}
	return resource.OpenTarget(ctx, target, opts...)
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
