package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/source"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/spf13/cobra"
)

// NewSetupCommand creates the setup command.
func NewSetupCommand(e *env) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure the catalog token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if reset {
				if err := adapter.ClearCatalogCredentials(e.cfg); err != nil {
					return err
				}
				fmt.Fprintln(out, "Catalog token removed.")
				return nil
			}

			token, err := source.PromptToken(os.Stdin, out)
			if err != nil {
				return err
			}
			e.cfg.Catalog.Token = token

			catalog, err := source.NewCatalog(e.cfg, e.logger)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Verifying token...")
			ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
			defer cancel()
			if _, err := catalog.Discover(ctx); err != nil {
				if errors.Is(err, domain.ErrAuthFailed) {
					return fmt.Errorf("the catalog rejected this token")
				}
				return fmt.Errorf("could not reach the catalog: %w", err)
			}

			if err := adapter.SaveConfig(e.cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "✓ Configuration saved!")
			fmt.Fprintln(out, "Run marquee to start the application.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Remove the stored catalog token")
	return cmd
}
