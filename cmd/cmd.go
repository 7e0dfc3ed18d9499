// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs, checkServerHeartbeat, versionHandler
package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maskform/maskform/api"
	"github.com/maskform/maskform/envconfig"
	"github.com/maskform/maskform/version"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// checkServerHeartbeat - Prueft ob der Server erreichbar ist
func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}
	if err := client.Heartbeat(cmd.Context()); err != nil {
		if strings.Contains(err.Error(), " refused") || strings.Contains(err.Error(), "could not connect") {
			return fmt.Errorf("could not connect to a running maskform instance, start one with 'maskform serve'")
		}
		return err
	}
	return nil
}

// versionHandler - Zeigt Client- und Server-Version an
func versionHandler(cmd *cobra.Command, _ []string) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}

	serverVersion, err := client.Version(cmd.Context())
	if err == nil && serverVersion != "" {
		fmt.Printf("maskform version is %s\n", serverVersion)
	}

	if serverVersion != version.Version {
		fmt.Printf("client version is %s\n", version.Version)
	}
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "maskform",
		Short:         "MaskFormer model configuration toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	showCmd := newShowCmd()
	validateCmd := newValidateCmd()
	initCmd := newInitCmd()
	backbonesCmd := newBackbonesCmd()
	modelsCmd := newModelsCmd()
	pullCmd := newPullCmd()
	listCmd := newListCmd()
	rmCmd := newRmCmd()
	serveCmd := newServeCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["MASKFORM_HOST"]}

	for _, cmd := range []*cobra.Command{
		showCmd,
		validateCmd,
		pullCmd,
		listCmd,
		rmCmd,
		serveCmd,
	} {
		switch cmd {
		case showCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["MASKFORM_CACHE"],
				envVars["MASKFORM_OFFLINE"],
			})
		case pullCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["MASKFORM_HOST"],
				envVars["MASKFORM_PULL_TIMEOUT"],
				envVars["MASKFORM_RETRIES"],
			})
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["MASKFORM_DEBUG"],
				envVars["MASKFORM_HOST"],
				envVars["MASKFORM_ORIGINS"],
				envVars["MASKFORM_CACHE"],
				envVars["MASKFORM_STORE"],
				envVars["MASKFORM_OFFLINE"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		showCmd,
		validateCmd,
		initCmd,
		backbonesCmd,
		modelsCmd,
		pullCmd,
		listCmd,
		rmCmd,
	)

	return rootCmd
}
