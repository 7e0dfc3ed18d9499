// cmd_models.go - Models Command
// Hauptfunktionen: ModelsHandler
package cmd

import (
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/maskform/maskform/huggingface"
)

// ModelsHandler - Listet bekannte Hub-Checkpoints auf.
// Mit --dataset wird auf einen Trainings-Datensatz gefiltert.
func ModelsHandler(cmd *cobra.Command, args []string) error {
	dataset, _ := cmd.Flags().GetString("dataset")

	var models []huggingface.KnownModel
	if dataset != "" {
		models = huggingface.GetModelsByDataset(dataset)
	} else {
		for _, ds := range huggingface.KnownDatasets() {
			models = append(models, huggingface.GetModelsByDataset(ds)...)
		}
	}

	var data [][]string
	for _, m := range models {
		if len(args) > 0 && !strings.Contains(strings.ToLower(m.Pattern), strings.ToLower(args[0])) {
			continue
		}
		data = append(data, []string{m.Pattern, m.Dataset, m.BackbonePreset, formatValue(m.NumLabels)})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"MODEL", "DATASET", "BACKBONE", "LABELS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// newModelsCmd - Erstellt den models Command
func newModelsCmd() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models [FILTER]",
		Short: "List known hub checkpoints",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ModelsHandler,
	}

	modelsCmd.Flags().String("dataset", "", "Filter by training dataset (ade20k, coco-panoptic)")

	return modelsCmd
}
