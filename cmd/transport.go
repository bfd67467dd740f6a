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
	"github.com/notargets/gohdg/model_problems/Transport2D"
)

// transportCmd represents the transport command
var transportCmd = &cobra.Command{
	Use:   "transport",
	Short: "Rotating bump transported by upwind DG",
	Long: `
Advects exp(-width |x - center|²) around the center of the unit square with
forward Euler and the matrix free upwind operator.

gohdg transport [-I input.yaml] [-g] [-s plotSteps] [-d delay]`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		m2d := newModel2D(cmd)
		tp := InputParameters.NewTransportDefaults()
		if err = processInput(m2d, tp, &tp.RunParameters); err != nil {
			return
		}
		return runTransport(m2d, tp)
	},
}

func runTransport(m2d *Model2D, tp *InputParameters.TransportParameters) (err error) {
	mesh, err := buildMesh(&tp.Mesh, 0, 1, 0, 1, m2d.Verbose)
	if err != nil {
		return
	}
	showMesh(m2d, mesh)
	c, err := Transport2D.NewTransport(mesh, tp)
	if err != nil {
		return
	}
	_, err = c.Run(newSink(m2d, mesh, 0, 1, 1, 0), m2d.Verbose)
	return
}

func init() {
	rootCmd.AddCommand(transportCmd)
	addModelFlags(transportCmd, "unused, the transported scalar is always shown")
}
