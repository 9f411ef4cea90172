package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lingo-build/lingo/pkg/store"
)

// storeCommand creates the command managing the project's package store.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the project's content-addressed package store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the store directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.openProject()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, p.cfg.StoreDir())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every stored package; the next build fetches them again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.openProject()
			if err != nil {
				return err
			}
			dir := p.cfg.StoreDir()
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(c.Out, "Store is empty")
				return nil
			}
			s, err := store.New(dir)
			if err != nil {
				return err
			}
			size, err := s.Size()
			if err != nil {
				return err
			}
			if err := s.Clear(); err != nil {
				return fmt.Errorf("clear store: %w", err)
			}
			printSuccess(c.Out, "Cleared package store (%s)", formatBytes(size))
			printDetail(c.Out, "Directory: %s", dir)
			return nil
		},
	})

	return cmd
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
