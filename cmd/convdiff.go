/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/model_problems/ConvDiff2D"
)

// convdiffCmd represents the convdiff command
var convdiffCmd = &cobra.Command{
	Use:   "convdiff",
	Short: "Hybridized DG convection diffusion, explicit convection and implicit diffusion",
	Long: `
Transports the bump with the rotating wind while diffusing it, solving

	M* x = M x - dt C x,   M* = M + dt eps A

on the free element and trace unknowns each step.

gohdg convdiff [-I input.yaml] [-g] [-s plotSteps] [-d delay]`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		m2d := newModel2D(cmd)
		cp := InputParameters.NewConvDiffDefaults()
		if err = processInput(m2d, cp, &cp.RunParameters); err != nil {
			return
		}
		return runConvDiff(m2d, cp)
	},
}

func runConvDiff(m2d *Model2D, cp *InputParameters.ConvDiffParameters) (err error) {
	mesh, err := buildMesh(&cp.Mesh, 0, 1, 0, 1, m2d.Verbose)
	if err != nil {
		return
	}
	showMesh(m2d, mesh)
	c, err := ConvDiff2D.NewConvDiff(mesh, cp)
	if err != nil {
		return
	}
	_, err = c.Run(newSink(m2d, mesh, 0, 1, 1, 0), m2d.Verbose)
	return
}

func init() {
	rootCmd.AddCommand(convdiffCmd)
	addModelFlags(convdiffCmd, "unused, the element values are always shown")
}
