// cmd_serve.go - Serve Command
// Hauptfunktionen: RunServer
package cmd

import (
	"errors"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/maskform/maskform/envconfig"
	"github.com/maskform/maskform/server"
)

// RunServer - Startet den maskform-Server
func RunServer(_ *cobra.Command, _ []string) error {
	ln, err := net.Listen("tcp", envconfig.Host().Host)
	if err != nil {
		return err
	}

	err = server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// newServeCmd - Erstellt den serve Command
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start maskform",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}
}
