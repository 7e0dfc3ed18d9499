// cmd_show.go - Show Command
// Hauptfunktionen: ShowHandler, showInfo, formatArrayValue
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/maskform/maskform/config/maskformer"
	"github.com/maskform/maskform/format"
	"github.com/maskform/maskform/huggingface"
)

// ShowHandler - Zeigt eine Konfiguration als Zusammenfassung an.
// Das Argument ist ein lokaler config.json-Pfad, ein Checkpoint-
// Verzeichnis oder eine Hub Model-ID (Cache vor Hub).
func ShowHandler(cmd *cobra.Command, args []string) error {
	revision, _ := cmd.Flags().GetString("revision")

	result, err := huggingface.NewLoader(nil).Load(cmd.Context(), args[0], huggingface.LoadOptions{Revision: revision})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(result.Config, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if asKV, _ := cmd.Flags().GetBool("kv"); asKV {
		return showKV(result.Config, os.Stdout)
	}

	return showInfo(result, os.Stdout)
}

// showKV - Gibt den flachen Metadaten-Export sortiert aus
func showKV(cfg *maskformer.Config, w io.Writer) error {
	kv := cfg.KV()

	keys := slices.Sorted(kv.Keys())

	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	for _, key := range keys {
		table.Append([]string{key, formatValue(kv.Value(key))})
	}
	table.Render()
	return nil
}

// showInfo - Gibt detaillierte Konfigurations-Informationen aus
func showInfo(result *huggingface.LoadResult, w io.Writer) error {
	cfg := result.Config

	tableRender := func(header string, rows func() [][]string) {
		fmt.Fprintln(w, " ", header)
		table := tablewriter.NewWriter(w)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.SetNoWhiteSpace(true)
		table.SetTablePadding("    ")

		table.AppendBulk(rows())
		table.Render()
		fmt.Fprintln(w)
	}

	tableRender("Model", func() (rows [][]string) {
		rows = append(rows, []string{"", "architecture", cfg.ModelType()})
		if result.ModelID != "" {
			rows = append(rows, []string{"", "model", result.ModelID})
			rows = append(rows, []string{"", "source", result.Source})
		}
		rows = append(rows, []string{"", "parameters", format.HumanNumber(cfg.ParameterCount())})
		rows = append(rows, []string{"", "labels", fmt.Sprintf("%d", cfg.NumLabels)})
		rows = append(rows, []string{"", "fpn feature size", fmt.Sprintf("%d", cfg.FPNFeatureSize)})
		rows = append(rows, []string{"", "mask feature size", fmt.Sprintf("%d", cfg.MaskFeatureSize)})
		rows = append(rows, []string{"", "attention heads", fmt.Sprintf("%d", cfg.NumAttentionHeads())})
		rows = append(rows, []string{"", "hidden layers", fmt.Sprintf("%d", cfg.NumHiddenLayers())})
		rows = append(rows, []string{"", "auxiliary loss", fmt.Sprintf("%t", cfg.UseAuxiliaryLoss)})
		return
	})

	tableRender("Backbone", func() (rows [][]string) {
		b := cfg.Backbone
		rows = append(rows, []string{"", "architecture", b.ModelType()})
		rows = append(rows, []string{"", "parameters", format.HumanNumber(b.ParameterCount())})
		rows = append(rows, []string{"", "channel sizes", formatArrayValue(anySlice(b.ChannelSizes()), terminalWidth()/2)})
		return
	})

	tableRender("Decoder", func() (rows [][]string) {
		d := cfg.Decoder
		rows = append(rows, []string{"", "architecture", d.ModelType()})
		rows = append(rows, []string{"", "parameters", format.HumanNumber(d.ParameterCount())})
		rows = append(rows, []string{"", "hidden size", fmt.Sprintf("%d", d.HiddenSize())})
		rows = append(rows, []string{"", "queries", fmt.Sprintf("%d", d.NumQueries)})
		rows = append(rows, []string{"", "encoder layers", fmt.Sprintf("%d", d.EncoderLayers)})
		rows = append(rows, []string{"", "decoder layers", fmt.Sprintf("%d", d.DecoderLayers)})
		return
	})

	tableRender("Loss", func() (rows [][]string) {
		rows = append(rows, []string{"", "dice weight", formatValue(cfg.DiceWeight)})
		rows = append(rows, []string{"", "cross entropy weight", formatValue(cfg.CrossEntropyWeight)})
		rows = append(rows, []string{"", "mask weight", formatValue(cfg.MaskWeight)})
		rows = append(rows, []string{"", "no object weight", formatValue(cfg.NoObjectWeight)})
		return
	})

	return nil
}

// terminalWidth - Breite des Terminals, mit Fallback fuer Pipes
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// formatValue - Formatiert einen Skalar fuer die Anzeige
func formatValue(v any) string {
	switch val := v.(type) {
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", val), "0"), ".")
	case []any:
		return formatArrayValue(val, terminalWidth()/2)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func anySlice(ints []int) []any {
	out := make([]any, len(ints))
	for i, v := range ints {
		out[i] = v
	}
	return out
}

// formatArrayValue - Formatiert Array-Werte breiten-bewusst fuer Anzeige
func formatArrayValue(vData []any, targetWidth int) string {
	var itemsToShow int
	totalWidth := 1

	for i := range vData {
		itemStr := fmt.Sprintf("%v", vData[i])
		width := runewidth.StringWidth(itemStr)

		if i > 0 {
			width += 2
		}

		if totalWidth+width > targetWidth && i > 0 {
			break
		}

		totalWidth += width
		itemsToShow++
	}

	if itemsToShow < len(vData) {
		v := fmt.Sprintf("%v", vData[:itemsToShow])
		v = strings.TrimSuffix(v, "]")
		v += fmt.Sprintf(" ...+%d more]", len(vData)-itemsToShow)
		return v
	}
	return fmt.Sprintf("%v", vData)
}

// newShowCmd - Erstellt den show Command
func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show CONFIG",
		Short: "Show information for a model configuration",
		Long:  "Show information for a model configuration. CONFIG is a config.json path, a checkpoint directory or a hub model id (owner/model).",
		Args:  cobra.ExactArgs(1),
		RunE:  ShowHandler,
	}

	showCmd.Flags().Bool("json", false, "Print the full configuration as JSON")
	showCmd.Flags().Bool("kv", false, "Print the flat metadata export")
	showCmd.Flags().String("revision", "", "Hub revision to resolve (default \"main\")")
	showCmd.MarkFlagsMutuallyExclusive("json", "kv")

	return showCmd
}
