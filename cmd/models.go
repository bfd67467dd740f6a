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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gohdg/DG2D"
	"github.com/notargets/gohdg/InputParameters"
	"github.com/notargets/gohdg/geometry2D"
	"github.com/notargets/gohdg/readfiles"
	"github.com/notargets/gohdg/timestepper"
	"github.com/notargets/gohdg/utils"
)

// Model2D holds the command line settings shared by the model problems
type Model2D struct {
	ICFile     string
	Graph      bool
	GraphField int
	PlotMesh   bool
	Blocking   bool
	PlotSteps  int
	Delay      int
	Verbose    bool
}

func addModelFlags(cmd *cobra.Command, fieldHelp string) {
	cmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters, defaults are used when absent")
	cmd.Flags().BoolP("graph", "g", false, "display a graph while computing solution")
	cmd.Flags().BoolP("plotMesh", "m", false, "display the mesh before computing solution")
	cmd.Flags().BoolP("blocking", "b", false, "hold every frame on screen for the plot delay")
	cmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	cmd.Flags().IntP("plotSteps", "s", 0, "number of steps before plotting each frame, 0 keeps the input file value")
	cmd.Flags().IntP("graphField", "q", 0, fieldHelp)
}

// newModel2D reads the flags of cmd, with values of the config file under
// the command's name as defaults
func newModel2D(cmd *cobra.Command) (m2d *Model2D) {
	v := viper.Sub(cmd.Name())
	if v == nil {
		v = viper.New()
	}
	for _, name := range []string{"inputConditionsFile", "graph", "plotMesh", "blocking", "delay", "plotSteps", "graphField"} {
		_ = v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	m2d = &Model2D{
		ICFile:     v.GetString("inputConditionsFile"),
		Graph:      v.GetBool("graph"),
		GraphField: v.GetInt("graphField"),
		PlotMesh:   v.GetBool("plotMesh"),
		Blocking:   v.GetBool("blocking"),
		PlotSteps:  v.GetInt("plotSteps"),
		Delay:      v.GetInt("delay"),
		Verbose:    viper.GetBool("verbose"),
	}
	return
}

// processInput overlays the input file, if any, on the defaults held by ip
func processInput(m2d *Model2D, ip InputParameters.Parser, run *InputParameters.RunParameters) (err error) {
	if len(m2d.ICFile) != 0 {
		if err = InputParameters.ReadFile(m2d.ICFile, ip); err != nil {
			return
		}
	}
	if m2d.PlotSteps > 0 {
		run.PlotEvery = m2d.PlotSteps
	}
	if m2d.Blocking || m2d.Delay > 0 {
		run.Blocking = true
	}
	if m2d.Verbose {
		ip.Print()
	}
	return
}

// buildMesh reads the grid file named in mp, or generates a mesh of the box
func buildMesh(mp *InputParameters.MeshParameters, xmin, xmax, ymin, ymax float64, verbose bool) (m *geometry2D.Mesh, err error) {
	if err = mp.Validate(); err != nil {
		return
	}
	switch ext := strings.ToLower(filepath.Ext(mp.GridFile)); {
	case len(mp.GridFile) == 0 && mp.Jitter > 0:
		return geometry2D.NewDelaunayMesh(xmin, xmax, ymin, ymax, mp.NX, mp.NY, mp.Jitter, mp.Seed)
	case len(mp.GridFile) == 0:
		return geometry2D.NewRectangleMesh(xmin, xmax, ymin, ymax, mp.NX, mp.NY)
	case ext == ".su2":
		return readfiles.ReadSU2(mp.GridFile, verbose)
	case ext == ".neu":
		return readfiles.ReadGambit2D(mp.GridFile, verbose)
	default:
		err = fmt.Errorf("unknown grid file type [%s], use .su2 or .neu", mp.GridFile)
	}
	return
}

// showMesh holds the mesh on screen for a few seconds, or the plot delay if
// that is longer
func showMesh(m2d *Model2D, m *geometry2D.Mesh) {
	if !m2d.PlotMesh {
		return
	}
	readfiles.PlotMesh(m, 1000, 1000)
	utils.SleepFor(max(m2d.Delay, 3000))
}

// newSink opens a chart of one of stride values per element when graphing
// is on, and logs frame ranges when verbose
func newSink(m2d *Model2D, m *geometry2D.Mesh, fMin, fMax float64, stride, component int) timestepper.Sink {
	switch {
	case m2d.Graph:
		cs := DG2D.NewChartSink(m, 1000, 1000, fMin, fMax)
		cs.Stride, cs.Component = stride, component
		if m2d.Delay > 0 {
			cs.Delay = m2d.Delay
		}
		return cs
	case m2d.Verbose:
		return timestepper.LogSink{}
	}
	return nil
}
