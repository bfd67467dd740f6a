package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/gohdg/geometry2D"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

// ReadSU2 reads a two dimensional SU2 mesh of triangles. Every MARKER_TAG
// becomes a boundary tag of the mesh; duplicate markers are merged.
func ReadSU2(filename string, verbose bool) (m *geometry2D.Mesh, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	if m, err = ReadSU2From(file, verbose); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func ReadSU2From(r io.Reader, verbose bool) (m *geometry2D.Mesh, err error) {
	var (
		reader = bufio.NewReader(r)
		VX, VY []float64
		EToV   [][3]int
		bcs    map[string][][2]int
	)
	if err = func() (err error) {
		defer catch(&err)
		dimensionality := readNumber(reader)
		if dimensionality != 2 {
			fail("only two dimensional meshes are supported, file has NDIME = %d", dimensionality)
		}
		EToV = readElements(reader)
		VX, VY = readVertices(reader)
		bcs = readBCs(reader)
		return
	}(); err != nil {
		return
	}
	if verbose {
		fmt.Printf("Read %d elements, %d vertices and %d boundary markers\n", len(EToV), len(VX), len(bcs))
	}
	return geometry2D.NewMesh(VX, VY, EToV, bcs)
}

func readBCs(reader *bufio.Reader) (BCEdges map[string][][2]int) {
	var (
		nType  int
		v1, v2 int
		err    error
	)
	NBCs := readNumber(reader)
	BCEdges = make(map[string][][2]int, NBCs)
	for n := 0; n < NBCs; n++ {
		label := readLabel(reader)
		nEdges := readNumber(reader)
		// Duplicate tags, e.g. the two halves of a periodic pair, accumulate
		for i := 0; i < nEdges; i++ {
			line := getLine(reader)
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				fail("marker %s: %w", label, err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				fail("marker %s: BCs should only contain line elements in 2D, have type %d", label, nType)
			}
			BCEdges[label] = append(BCEdges[label], [2]int{v1, v2})
		}
	}
	return
}

func readVertices(reader *bufio.Reader) (VX, VY []float64) {
	var (
		n    int
		x, y float64
		err  error
	)
	Nv := readNumber(reader)
	VX, VY = make([]float64, Nv), make([]float64, Nv)
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil || n != 2 {
			fail("unable to read coordinates of vertex %d from [%s]", i, line)
		}
		VX[i], VY[i] = x, y
	}
	return
}

func readElements(reader *bufio.Reader) (EToV [][3]int) {
	var (
		n          int
		nType      int
		v1, v2, v3 int
		err        error
	)
	K := readNumber(reader)
	EToV = make([][3]int, K)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		if n, err = fmt.Sscanf(line, "%d %d %d %d", &nType, &v1, &v2, &v3); err != nil || n != 4 {
			fail("unable to read vertices of element %d from [%s]", k, line)
		}
		if SU2ElementType(nType) != ELType_Triangle {
			fail("element %d has type %d, only triangles are supported", k, nType)
		}
		EToV[k] = [3]int{v1, v2, v3}
	}
	return
}

func getToken(reader *bufio.Reader) (token string) {
	line := getLineNoComments(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		fail("badly formed input line [%s], should have an =", line)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	token := getToken(reader)
	if _, err := fmt.Sscanf(token, "%s", &label); err != nil {
		fail("unable to read label from token: [%s]", token)
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	token := getToken(reader)
	if _, err := fmt.Sscanf(token, "%d", &num); err != nil {
		fail("unable to read number from token: [%s]", token)
	}
	return
}

// getLineNoComments skips lines starting with % and blank lines
func getLineNoComments(reader *bufio.Reader) (line string) {
	for {
		line = strings.TrimSpace(getLine(reader))
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}
