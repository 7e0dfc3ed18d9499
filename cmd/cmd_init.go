// cmd_init.go - Init Command
// Hauptfunktionen: InitHandler
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maskform/maskform/config/maskformer"
)

// InitHandler - Schreibt die Standard-Konfiguration als config.json
func InitHandler(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	data, err := json.MarshalIndent(maskformer.Default(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if !force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", output)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("wrote default configuration to %s\n", output)
	return nil
}

// newInitCmd - Erstellt den init Command
func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to a file",
		Args:  cobra.NoArgs,
		RunE:  InitHandler,
	}

	initCmd.Flags().StringP("output", "o", "config.json", "Output path, - for stdout")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")

	return initCmd
}
