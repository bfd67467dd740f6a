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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/model_problems/Wave2D"
)

// waveCmd represents the wave command
var waveCmd = &cobra.Command{
	Use:   "wave",
	Short: "Ring resonator driven from a waveguide, with absorbing layers",
	Long: `
Runs the staggered pressure/velocity scheme on the ring resonator geometry. The
source is switched on and off by a smooth envelope and the outer frame damps
outgoing waves.

gohdg wave [-I input.yaml] [-g] [-q 0|1|2] [-s plotSteps] [-d delay]`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		m2d := newModel2D(cmd)
		wp := InputParameters.NewWaveDefaults()
		if err = processInput(m2d, wp, &wp.RunParameters); err != nil {
			return
		}
		return runWave(m2d, wp)
	},
}

func runWave(m2d *Model2D, wp *InputParameters.WaveParameters) (err error) {
	if m2d.GraphField < 0 || m2d.GraphField > 2 {
		return fmt.Errorf("graph field %d is not one of 0 (pressure), 1 (ux), 2 (uy)", m2d.GraphField)
	}
	mesh, err := Wave2D.NewRingResonatorMesh(wp.H, wp.PMLWidth)
	if err != nil {
		return
	}
	if m2d.Verbose {
		fmt.Printf("Ring resonator mesh: %d elements, %d faces, regions %v\n",
			mesh.K(), mesh.NFaces(), mesh.Regions())
	}
	showMesh(m2d, mesh)
	c, err := Wave2D.NewWave(mesh, wp)
	if err != nil {
		return
	}
	stride, component := 1, 0
	if m2d.GraphField > 0 {
		c.PlotField = c.Velocity
		stride, component = 2, m2d.GraphField-1
	}
	_, err = c.Run(newSink(m2d, mesh, 0, 0, stride, component), m2d.Verbose)
	return
}

func init() {
	rootCmd.AddCommand(waveCmd)
	addModelFlags(waveCmd, "field to plot: 0 pressure, 1 x velocity, 2 y velocity")
}
