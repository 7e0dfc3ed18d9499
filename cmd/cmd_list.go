// cmd_list.go - List und Rm Commands
// Hauptfunktionen: ListHandler, DeleteHandler
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/maskform/maskform/api"
	"github.com/maskform/maskform/format"
)

// ListHandler - Listet die gepullten Modelle des Stores auf
func ListHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	models, err := client.List(cmd.Context())
	if err != nil {
		return err
	}

	var data [][]string

	for _, m := range models.Models {
		if len(args) == 0 || strings.HasPrefix(strings.ToLower(m.ModelID), strings.ToLower(args[0])) {
			data = append(data, []string{
				m.ModelID,
				m.Revision,
				m.ModelType,
				fmt.Sprintf("%d", m.NumLabels),
				format.HumanBytes(m.SizeBytes),
				format.HumanTime(m.PulledAt, "Never"),
			})
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"MODEL", "REVISION", "TYPE", "LABELS", "SIZE", "PULLED"})
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

// DeleteHandler - Entfernt Modelle aus dem Store
func DeleteHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	for _, name := range args {
		if err := client.Delete(cmd.Context(), &api.DeleteRequest{ModelID: name}); err != nil {
			return err
		}
		fmt.Printf("deleted '%s'\n", name)
	}
	return nil
}

// newListCmd - Erstellt den list Command
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [FILTER]",
		Aliases: []string{"ls"},
		Short:   "List pulled model configurations",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    ListHandler,
	}
}

// newRmCmd - Erstellt den rm Command
func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm MODEL...",
		Short:   "Remove pulled model configurations",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    DeleteHandler,
	}
}
