// cmd_validate.go - Validate Command
// Hauptfunktionen: ValidateHandler
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maskform/maskform/config/maskformer"
)

// validateParallelism begrenzt die parallele Validierung
const validateParallelism = 8

// validateFileResult ist das Ergebnis einer Datei-Validierung
type validateFileResult struct {
	path string
	err  error
}

// ValidateHandler - Validiert config.json Dateien parallel.
// Der Exit-Code ist ungleich null sobald eine Datei ungueltig ist.
func ValidateHandler(cmd *cobra.Command, args []string) error {
	results := make([]validateFileResult, len(args))

	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(validateParallelism)
	for i, path := range args {
		g.Go(func() error {
			results[i] = validateFileResult{path: path, err: validateFile(path)}
			return nil
		})
	}
	g.Wait()

	var failed int
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.path, r.err)
			continue
		}
		fmt.Printf("%s: ok\n", r.path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d configurations invalid", failed, len(args))
	}
	return nil
}

// validateFile prueft eine einzelne config.json
func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}

	_, err = maskformer.FromMap(m)
	return err
}

// newValidateCmd - Erstellt den validate Command
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate CONFIG...",
		Short: "Validate configuration files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ValidateHandler,
	}
}
