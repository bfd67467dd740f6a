package InputParameters

import (
	"fmt"
	"math"
	"os"

	"github.com/ghodss/yaml"
)

// MeshParameters select a grid file or one of the generated meshes
type MeshParameters struct {
	GridFile string  `json:"GridFile"` // SU2 (.su2) or Gambit neutral (.neu), empty to generate
	NX       int     `json:"NX"`
	NY       int     `json:"NY"`
	Jitter   float64 `json:"Jitter"` // Non zero selects the Delaunay generator
	Seed     int64   `json:"Seed"`
}

func (mp *MeshParameters) Validate() error {
	if len(mp.GridFile) == 0 && (mp.NX < 1 || mp.NY < 1) {
		return fmt.Errorf("mesh needs a grid file or NX, NY >= 1, have %d, %d", mp.NX, mp.NY)
	}
	if mp.Jitter < 0 || mp.Jitter >= 0.5 {
		return fmt.Errorf("mesh jitter must be in [0, 0.5), have %g", mp.Jitter)
	}
	return nil
}

func (mp *MeshParameters) Print() {
	if len(mp.GridFile) != 0 {
		fmt.Printf("[%s]\t\t= Grid File\n", mp.GridFile)
		return
	}
	fmt.Printf("[%d x %d]\t\t= Mesh Cells\n", mp.NX, mp.NY)
	if mp.Jitter != 0 {
		fmt.Printf("%8.5f\t\t= Delaunay Jitter, seed %d\n", mp.Jitter, mp.Seed)
	}
}

// RunParameters are shared by every model problem
type RunParameters struct {
	Title          string  `json:"Title"`
	Dt             float64 `json:"Dt"`
	FinalTime      float64 `json:"FinalTime"`
	PlotEvery      int     `json:"PlotEvery"`
	PrintEvery     int     `json:"PrintEvery"`
	ParallelDegree int     `json:"ParallelDegree"`
	Blocking       bool    `json:"Blocking"` // Hold each frame on screen for the plot delay
}

func (rp *RunParameters) Validate() error {
	switch {
	case !(rp.Dt > 0) || math.IsInf(rp.Dt, 0):
		return fmt.Errorf("time step must be positive, have %g", rp.Dt)
	case !(rp.FinalTime >= 0) || math.IsInf(rp.FinalTime, 0):
		return fmt.Errorf("final time must be non negative, have %g", rp.FinalTime)
	case rp.PlotEvery < 0 || rp.PrintEvery < 0 || rp.ParallelDegree < 0:
		return fmt.Errorf("plot, print and parallel settings must be non negative")
	}
	return nil
}

func (rp *RunParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("%8.5f\t\t= Dt\n", rp.Dt)
	fmt.Printf("%8.5f\t\t= FinalTime\n", rp.FinalTime)
	fmt.Printf("[%d]\t\t\t\t= Plot Every\n", rp.PlotEvery)
	if rp.Blocking {
		fmt.Printf("[blocking]\t\t\t= Plot Frames\n")
	}
}

// TransportParameters configure pure DG transport in the rotating wind
type TransportParameters struct {
	RunParameters
	Mesh       MeshParameters `json:"Mesh"`
	BumpCenter [2]float64     `json:"BumpCenter"`
	BumpWidth  float64        `json:"BumpWidth"` // exp(-BumpWidth * r²)
}

func NewTransportDefaults() (tp *TransportParameters) {
	tp = &TransportParameters{
		RunParameters: RunParameters{
			Title: "Transport", Dt: 1.e-3, FinalTime: 10, PlotEvery: 10, PrintEvery: 1000,
		},
		Mesh:       MeshParameters{NX: 10, NY: 10, Jitter: 0.2, Seed: 1},
		BumpCenter: [2]float64{0.5, 0.75},
		BumpWidth:  100,
	}
	return
}

func (tp *TransportParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, tp); err != nil {
		return err
	}
	return tp.Validate()
}

func (tp *TransportParameters) Validate() (err error) {
	if err = tp.RunParameters.Validate(); err != nil {
		return
	}
	if err = tp.Mesh.Validate(); err != nil {
		return
	}
	if !(tp.BumpWidth > 0) {
		err = fmt.Errorf("bump width must be positive, have %g", tp.BumpWidth)
	}
	return
}

func (tp *TransportParameters) Print() {
	tp.RunParameters.Print()
	tp.Mesh.Print()
	fmt.Printf("[%5.3f, %5.3f]\t= Bump Center\n", tp.BumpCenter[0], tp.BumpCenter[1])
	fmt.Printf("%8.5f\t\t= Bump Width\n", tp.BumpWidth)
}

// ConvDiffParameters configure the hybridized convection diffusion problem
type ConvDiffParameters struct {
	TransportParameters
	Epsilon         float64 `json:"Epsilon"`
	Alpha           float64 `json:"Alpha"`
	PolynomialOrder int     `json:"PolynomialOrder"` // Order the interior penalty is scaled for
	Solver          string  `json:"Solver"`          // "cholesky" or "pcg"
	Tolerance       float64 `json:"Tolerance"`
	MaxIterations   int     `json:"MaxIterations"`
}

func NewConvDiffDefaults() (cp *ConvDiffParameters) {
	tp := NewTransportDefaults()
	tp.Title = "Convection Diffusion"
	cp = &ConvDiffParameters{
		TransportParameters: *tp,
		Epsilon:             1.e-3,
		Alpha:               2,
		PolynomialOrder:     3,
		Solver:              "cholesky",
		Tolerance:           1.e-10,
		MaxIterations:       500,
	}
	return
}

func (cp *ConvDiffParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, cp); err != nil {
		return err
	}
	return cp.Validate()
}

func (cp *ConvDiffParameters) Validate() (err error) {
	if err = cp.TransportParameters.Validate(); err != nil {
		return
	}
	switch {
	case cp.Epsilon < 0 || !(cp.Alpha > 0) || cp.PolynomialOrder < 0:
		err = fmt.Errorf("invalid diffusion parameters Epsilon = %g, Alpha = %g, PolynomialOrder = %d",
			cp.Epsilon, cp.Alpha, cp.PolynomialOrder)
	case cp.Solver != "cholesky" && cp.Solver != "pcg":
		err = fmt.Errorf("unknown solver [%s], use cholesky or pcg", cp.Solver)
	case cp.Solver == "pcg" && (!(cp.Tolerance > 0) || cp.MaxIterations < 1):
		err = fmt.Errorf("pcg needs a positive tolerance and iteration limit")
	}
	return
}

func (cp *ConvDiffParameters) Print() {
	cp.TransportParameters.Print()
	fmt.Printf("%8.5f\t\t= Epsilon\n", cp.Epsilon)
	fmt.Printf("%8.5f\t\t= Alpha\n", cp.Alpha)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", cp.PolynomialOrder)
	fmt.Printf("[%s]\t\t= Solver\n", cp.Solver)
}

// WaveParameters configure the ring resonator with its absorbing layer
type WaveParameters struct {
	RunParameters
	Sigma      float64 `json:"Sigma"`      // PML damping
	PMLWidth   float64 `json:"PMLWidth"`   // Width of the absorbing frame
	Wavelength float64 `json:"Wavelength"` // fcen = 5 / Wavelength
	TPeak      float64 `json:"TPeak"`
	Df         float64 `json:"Df"`       // Width of the gaussian envelope
	Envelope   string  `json:"Envelope"` // "bump" or "gaussian"
	EpsSlab    float64 `json:"EpsSlab"`  // Relative permittivity of slabs and ring
	H          float64 `json:"H"`        // Target cell size of the tensor mesh
}

func NewWaveDefaults() (wp *WaveParameters) {
	wp = &WaveParameters{
		RunParameters: RunParameters{
			Title: "Ring Resonator", Dt: 2.e-4, FinalTime: 100, PlotEvery: 5, PrintEvery: 5000,
		},
		Sigma:      10,
		PMLWidth:   0.05,
		Wavelength: 1.542,
		TPeak:      1,
		Df:         0.1,
		Envelope:   "bump",
		EpsSlab:    27,
		H:          0.02,
	}
	return
}

func (wp *WaveParameters) Fcen() float64 { return 5 / wp.Wavelength }

func (wp *WaveParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, wp); err != nil {
		return err
	}
	return wp.Validate()
}

func (wp *WaveParameters) Validate() (err error) {
	if err = wp.RunParameters.Validate(); err != nil {
		return
	}
	switch {
	case wp.Sigma < 0:
		err = fmt.Errorf("PML damping must be non negative, have %g", wp.Sigma)
	case !(wp.PMLWidth > 0) || !(wp.H > 0) || !(wp.Wavelength > 0):
		err = fmt.Errorf("PML width, cell size and wavelength must be positive")
	case !(wp.TPeak > 0):
		err = fmt.Errorf("source peak time must be positive, have %g", wp.TPeak)
	case !(wp.EpsSlab > 0):
		err = fmt.Errorf("permittivity must be positive, have %g", wp.EpsSlab)
	case wp.Envelope != "bump" && wp.Envelope != "gaussian":
		err = fmt.Errorf("unknown envelope [%s], use bump or gaussian", wp.Envelope)
	case wp.Envelope == "gaussian" && !(wp.Df > 0):
		err = fmt.Errorf("gaussian envelope needs a positive width, have %g", wp.Df)
	}
	return
}

func (wp *WaveParameters) Print() {
	wp.RunParameters.Print()
	fmt.Printf("%8.5f\t\t= Sigma\n", wp.Sigma)
	fmt.Printf("%8.5f\t\t= PML Width\n", wp.PMLWidth)
	fmt.Printf("%8.5f\t\t= Center Frequency\n", wp.Fcen())
	fmt.Printf("%8.5f\t\t= Peak Time\n", wp.TPeak)
	fmt.Printf("[%s]\t\t\t= Envelope\n", wp.Envelope)
	fmt.Printf("%8.5f\t\t= Slab Permittivity\n", wp.EpsSlab)
	fmt.Printf("%8.5f\t\t= Cell Size\n", wp.H)
}

// Parser is satisfied by every parameter set
type Parser interface {
	Parse(data []byte) error
	Print()
}

// ReadFile parses a YAML input file over the defaults already held by ip
func ReadFile(filename string, ip Parser) (err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		return fmt.Errorf("input file %s: %w", filename, err)
	}
	return
}
