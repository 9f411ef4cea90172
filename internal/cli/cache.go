package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lingo-build/lingo/pkg/cache"
)

// cacheCommand creates the command managing the download cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tarball download cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear all cached downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(c.Out, "Cache is empty")
				return nil
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess(c.Out, "Cleared download cache")
			printDetail(c.Out, "Directory: %s", dir)
			return nil
		},
	})

	return cmd
}

// cacheDir returns the download cache of the current project, or the user
// default outside a project.
func (c *CLI) cacheDir() (string, error) {
	p, err := c.openProject()
	if err != nil {
		s, err := loadSettings("", os.LookupEnv)
		if err != nil {
			return "", err
		}
		return s.CacheDir, nil
	}
	return p.settings.CacheDir, nil
}
