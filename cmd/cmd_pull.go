// cmd_pull.go - Pull Command
// Hauptfunktionen: PullHandler
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maskform/maskform/api"
	"github.com/maskform/maskform/format"
)

// PullHandler - Laedt eine Konfiguration vom Hub in Cache und Store
func PullHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	revision, _ := cmd.Flags().GetString("revision")
	allFiles, _ := cmd.Flags().GetBool("all-files")

	resp, err := client.Pull(cmd.Context(), &api.PullRequest{
		ModelID:  args[0],
		Revision: revision,
		AllFiles: allFiles,
	})
	if err != nil {
		return err
	}

	fmt.Printf("pulled %s@%s (%s, %d labels, %s) from %s\n",
		resp.ModelID, resp.Revision, resp.ModelType, resp.NumLabels,
		format.HumanBytes(resp.SizeBytes), resp.Source)
	if resp.SnapshotFiles > 0 {
		fmt.Printf("snapshot: %d files, %s\n",
			resp.SnapshotFiles, format.HumanBytes(resp.SnapshotBytes))
	}
	return nil
}

// newPullCmd - Erstellt den pull Command
func newPullCmd() *cobra.Command {
	pullCmd := &cobra.Command{
		Use:     "pull MODEL",
		Short:   "Pull a model configuration from the hub",
		Args:    cobra.ExactArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    PullHandler,
	}

	pullCmd.Flags().String("revision", "", "Hub revision to pull (default \"main\")")
	pullCmd.Flags().Bool("all-files", false, "Pull the full snapshot including checkpoint weights")

	return pullCmd
}
