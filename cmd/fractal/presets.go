package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/fractal/presets"
)

func newPresetsCmd(o *rootOptions) *cobra.Command {
	var (
		file   string
		asTOML bool
	)
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the built-in and user presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("preset-file") {
				cfg, err := o.loadConfig()
				if err != nil {
					return err
				}
				file = cfg.PresetFile
			}
			store, err := presets.NewStore(file)
			if err != nil {
				return err
			}
			ps := store.List()

			if asTOML {
				data, err := presets.Marshal(ps)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tZOOM\tITERATIONS\tPALETTE")
			for _, p := range ps {
				params := p.Params()
				zoom := strconv.FormatFloat(params.Zoom, 'g', 4, 64)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.Name, p.Kind, zoom, params.MaxIter, params.Palette.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&file, "preset-file", "", "TOML presets merged over the built-ins")
	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the merged presets as TOML")
	return cmd
}
