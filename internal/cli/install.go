package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valhub-labs/valhub/internal/service"
)

var (
	installLocalModels   bool
	installNoLocalModels bool
	installQuiet         bool
)

const localModelsPrompt = "This validator has an inference endpoint available. Would you still like to install the local models for local inference?"

var installCmd = &cobra.Command{
	Use:   "install <hub://namespace/package>...",
	Short: "Install validators from the hub",
	Long: `Install one or more validators into the active Python environment.

Each validator is resolved on the hub, installed with pip under the hub import
tree, and registered so it can be imported from the hub package. Validators that
can run against a remote inference endpoint ask whether local models should be
installed unless --local-models, --no-local-models, or the use_remote_inferencing
setting decides it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installLocalModels, "local-models", false, "Install local models and run the post-install script")
	installCmd.Flags().BoolVar(&installNoLocalModels, "no-local-models", false, "Skip local models, use the remote inference endpoint")
	installCmd.Flags().BoolVarP(&installQuiet, "quiet", "q", false, "Suppress pip output")
	installCmd.MarkFlagsMutuallyExclusive("local-models", "no-local-models")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	svc, _, err := newService(installQuiet)
	if err != nil {
		return err
	}

	opts := service.Options{
		Confirm: func() (bool, error) {
			return confirm(cmd.InOrStdin(), cmd.OutOrStdout(), localModelsPrompt)
		},
	}
	switch {
	case cmd.Flags().Changed("local-models"):
		opts.InstallLocalModels = &installLocalModels
	case cmd.Flags().Changed("no-local-models"):
		local := !installNoLocalModels
		opts.InstallLocalModels = &local
	}

	ctx := context.Background()
	for _, uri := range args {
		if _, err := svc.Install(ctx, uri, opts); err != nil {
			return fmt.Errorf("installing %s: %w", uri, err)
		}
	}
	return nil
}

// confirm asks a yes/no question on out and reads the answer from in. An
// empty answer means no; a closed input is an error.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "? %s (y/N) ", question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("reading answer: %w", err)
		}
		return false, io.ErrUnexpectedEOF
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
