package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valhub-labs/valhub/internal/configgen"
	"github.com/valhub-labs/valhub/internal/hub"
	"github.com/valhub-labs/valhub/internal/manifest"
)

var (
	createValidators string
	createName       string
	createFilepath   string
	createDryRun     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Install validators and write a guard configuration file",
	Long: `Install a comma-separated list of hub validators and write a Python file
that builds a Guard using them.

All manifests are fetched before anything is installed, so an unknown
validator aborts the command without changes. Use --dry-run to print the
file without installing or writing anything.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createValidators, "validators", "", "Comma-separated list of validator hub URIs")
	createCmd.Flags().StringVar(&createName, "name", "", "Name of the guard defined in the file")
	createCmd.Flags().StringVar(&createFilepath, "filepath", "config.py", "Path the configuration file is written to")
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "Print the validators to install without making changes")
	_ = createCmd.MarkFlagRequired("validators")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := context.Background()

	svc, settings, err := newService(true)
	if err != nil {
		return err
	}

	// Prefetch every manifest before installing anything.
	var (
		ids       []string
		manifests []*manifest.Manifest
		site      string
	)
	for _, uri := range strings.Split(createValidators, ",") {
		id, err := hub.ParseURI(uri)
		if err != nil {
			return fmt.Errorf("validator %q does not appear to be a valid URI: %w", strings.TrimSpace(uri), err)
		}
		logger.Debug("prefetching manifest", "id", id)
		m, s, err := svc.Prepare(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching manifest of %s: %w", id, err)
		}
		ids = append(ids, id)
		manifests = append(manifests, m)
		site = s
	}

	exports := make([]string, 0, len(manifests))
	for i, m := range manifests {
		if createDryRun {
			fmt.Fprintf(out, "Fake installing %s\n", ids[i])
		} else {
			fmt.Fprintf(out, "Installing %s\n", ids[i])
			if _, err := svc.InstallManifest(ctx, m, site, true); err != nil {
				return fmt.Errorf("installing %s: %w", ids[i], err)
			}
		}
		exports = append(exports, m.Exports[0])
	}

	content, err := configgen.Generate(settings.HubPackage, exports, createName)
	if err != nil {
		return err
	}

	if createDryRun {
		fmt.Fprintf(out, "Not actually saving output to %s\n", createFilepath)
		fmt.Fprintf(out, "The following would have been written:\n%s\n", content)
		return nil
	}

	if err := os.WriteFile(createFilepath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", createFilepath, err)
	}
	fmt.Fprintf(out, "Saved configuration to %s\n", createFilepath)
	return nil
}
