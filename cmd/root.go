// Package cmd implements the gypn CLI command.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cdeg/gypn/internal/ninja"
	"github.com/cdeg/gypn/internal/pathutil"
	"github.com/cdeg/gypn/internal/project"
	"github.com/cdeg/gypn/internal/pygerr"
)

// defaultGenerator is the only implemented backend; --generator is
// accepted now so a future backend can be added without an
// incompatible flag change.
const defaultGenerator = "ninja"

// NewRootCmd creates the root gypn command: translate a single GYP
// project file into a Ninja manifest on stdout.
func NewRootCmd(reader project.FileReader) *cobra.Command {
	var builddir, deprefix, generator string

	root := &cobra.Command{
		Use:           "gypn <file.gyp>",
		Short:         "gypn translates GYP-style project files into Ninja build manifests",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if generator != defaultGenerator {
				return fmt.Errorf("unsupported --generator %q (only %q is implemented)", generator, defaultGenerator)
			}

			dp := deprefix
			if !cmd.Flags().Changed("deprefix") {
				cwd, err := os.Getwd()
				if err != nil {
					return pygerr.E(pygerr.FS, err)
				}
				dp, err = pathutil.Realpath(cwd)
				if err != nil {
					return pygerr.E(pygerr.FS, err)
				}
			}

			root, err := project.New(args[0], reader)
			if err != nil {
				return err
			}

			out, err := ninja.Generate(root, ninja.Settings{
				BuildDir: builddir,
				Deprefix: dp,
				RunID:    uuid.NewString(),
			})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	root.Flags().StringVar(&builddir, "builddir", "build", "build output directory prefix")
	root.Flags().StringVar(&deprefix, "deprefix", "", "directory prefix stripped from source paths in the manifest (default: the working directory)")
	root.Flags().StringVar(&generator, "generator", defaultGenerator, "output backend (only \"ninja\" is implemented)")

	return root
}
