package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wvell/xgettext"
)

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "List the marker functions recognised per language",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := optionsFromConfig(nil)
		if err != nil {
			return err
		}

		extra, err := opts.extraMarkers(afero.NewOsFs())
		if err != nil {
			return err
		}

		tables := []struct {
			name    string
			markers xgettext.Markers
		}{
			{xgettext.Python.Name, xgettext.PythonMarkers()},
			{xgettext.C.Name, xgettext.CMarkers()},
			{xgettext.CPP.Name, xgettext.CMarkers()},
			{"go", xgettext.GoMarkers()},
		}

		out := cmd.OutOrStdout()
		for _, table := range tables {
			table.markers.Add(extra...)

			fmt.Fprintf(out, "%s:\n", table.name)
			for _, name := range table.markers.Names() {
				spec, _ := table.markers.Lookup(name)
				fmt.Fprintf(out, "  %-12s %s\n", spec.Name, spec.Kind)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(markersCmd)
}
