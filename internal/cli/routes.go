package cli

import (
	"fmt"
	"io"

	"github.com/TechTitans1233/FORUMweb-sub000/config"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/server"
	"github.com/spf13/cobra"
)

// NewRoutesCommand creates the routes command.
func NewRoutesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only the table is needed; no collaborators are opened.
			srv := server.New(server.Deps{Config: config.Default()})
			printRoutes(cmd.OutOrStdout(), srv.Routes())
			return nil
		},
	}
}

func printRoutes(w io.Writer, routes []server.Route) {
	fmt.Fprintf(w, "%-7s %-36s %s\n", "METHOD", "PATH", "ACCESS")
	for _, r := range routes {
		fmt.Fprintf(w, "%-7s %-36s %s\n", r.Method, r.Path, r.Access)
	}
}
