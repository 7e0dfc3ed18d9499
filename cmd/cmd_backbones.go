// cmd_backbones.go - Backbones Command
// Hauptfunktionen: BackbonesHandler
package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/maskform/maskform/config"
	"github.com/maskform/maskform/format"
)

// BackbonesHandler - Listet die registrierten Backbone-Architekturen auf
func BackbonesHandler(cmd *cobra.Command, _ []string) error {
	var data [][]string

	for _, name := range config.NamesFromDefault() {
		backbone, err := config.BuildFromDefault(name, map[string]any{})
		if err != nil {
			return err
		}

		channels := formatArrayValue(anySlice(backbone.ChannelSizes()), terminalWidth()/2)
		data = append(data, []string{
			name,
			channels,
			format.HumanNumber(backbone.ParameterCount()),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"TYPE", "CHANNELS", "PARAMETERS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	fmt.Printf("\n%d supported backbone type(s)\n", config.CountInDefault())
	return nil
}

// newBackbonesCmd - Erstellt den backbones Command
func newBackbonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backbones",
		Short: "List supported backbone architectures",
		Args:  cobra.NoArgs,
		RunE:  BackbonesHandler,
	}
}
