package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/fractal/shaders"
)

func newShadersCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "shaders",
		Short: "Validate and cross-compile the WGSL programs",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "directory of WGSL overrides")

	validate := &cobra.Command{
		Use:   "validate [PROGRAM...]",
		Short: "Parse and validate programs (all by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, programs, err := openPrograms(dir, args)
			if err != nil {
				return err
			}
			defer lib.Close()

			failed := 0
			for _, p := range programs {
				eps, err := lib.EntryPoints(p)
				if err == nil {
					err = lib.Validate(p)
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", p, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s", p)
				for _, ep := range eps {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s:%s", ep.Stage, ep.Name)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d programs failed", failed, len(programs))
			}
			return nil
		},
	}

	var (
		target string
		out    string
	)
	translate := &cobra.Command{
		Use:   "translate PROGRAM",
		Short: "Cross-compile a program to SPIR-V, GLSL, MSL or HLSL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := shaders.ParseTarget(target)
			if err != nil {
				return err
			}
			lib, programs, err := openPrograms(dir, args)
			if err != nil {
				return err
			}
			defer lib.Close()

			code, err := lib.Translate(programs[0], t)
			if err != nil {
				return err
			}
			if out == "" {
				if t.Binary() {
					return fmt.Errorf("%s output is binary; use --out", t)
				}
				_, err = cmd.OutOrStdout().Write(code)
				return err
			}
			return os.WriteFile(out, code, 0o644)
		},
	}
	translate.Flags().StringVarP(&target, "target", "t", "spirv", "spirv, glsl, msl or hlsl")
	translate.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	cmd.AddCommand(validate, translate)
	return cmd
}

// openPrograms loads the library and parses program names; no names means
// every program.
func openPrograms(dir string, names []string) (*shaders.Library, []shaders.Program, error) {
	programs := shaders.Programs()
	if len(names) > 0 {
		programs = programs[:0:0]
		for _, n := range names {
			p, err := shaders.ParseProgram(n)
			if err != nil {
				return nil, nil, err
			}
			programs = append(programs, p)
		}
	}
	lib, err := shaders.NewLibrary(dir)
	if err != nil {
		return nil, nil, err
	}
	return lib, programs, nil
}
