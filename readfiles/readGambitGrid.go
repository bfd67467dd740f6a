package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/gohdg/geometry2D"
)

/*
ReadGambit2D reads a two dimensional Gambit neutral file of triangles.
Material group titles become element regions and boundary condition names
become boundary tags.
*/
func ReadGambit2D(filename string, verbose bool) (m *geometry2D.Mesh, err error) {
	var (
		file *os.File
	)
	if verbose {
		fmt.Printf("Reading Gambit Neutral file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	if m, err = ReadGambit2DFrom(file, verbose); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func ReadGambit2DFrom(r io.Reader, verbose bool) (m *geometry2D.Mesh, err error) {
	var (
		reader  = bufio.NewReader(r)
		VX, VY  []float64
		EToV    [][3]int
		regions []string
		bcs     map[string][][2]int
	)
	if err = func() (err error) {
		defer catch(&err)
		// Skip first six lines
		skipLines(6, reader)
		Nv, K, Nmats, Nbcs, Nsd := readHeader(reader)
		skipLines(2, reader)
		if verbose {
			fmt.Printf("Nv = %d, K = %d\n", Nv, K)
			fmt.Printf("Nmats = %d, Nbcs = %d\n%d space dimensions\n", Nmats, Nbcs, Nsd)
		}
		if Nsd != 2 {
			fail("space dimensions %d, only 2 is supported", Nsd)
		}
		VX, VY = read2DVertices(Nv, reader)
		skipLines(2, reader)
		EToV = readTris(K, reader)
		skipLines(2, reader)
		regions = make([]string, K)
		for i := 0; i < Nmats; i++ {
			elnum, title := readMaterialHeader(reader)
			readMaterialGroup(reader, elnum, title, regions)
			skipLines(2, reader)
		}
		bcs = readBCS(Nbcs, reader, EToV)
		return
	}(); err != nil {
		return
	}
	if m, err = geometry2D.NewMesh(VX, VY, EToV, bcs); err != nil {
		return
	}
	copy(m.Region, regions)
	return
}

func readBCS(Nbcs int, reader *bufio.Reader, EToV [][3]int) (BCEdges map[string][][2]int) {
	var (
		line, bctyp string
		err         error
		n, bcid     int
		K           = len(EToV)
	)
	BCEdges = make(map[string][][2]int, Nbcs)
	for i := 0; i < Nbcs; i++ {
		// Read BC header, if BC text is "Cyl", read a float parameter
		if i != 0 {
			skipLines(1, reader)
		}
		line = getLine(reader)
		if _, err = fmt.Sscanf(line, "%32s", &bctyp); err != nil {
			fail("unable to read boundary name from [%s]: %w", line, err)
		}
		bctyp = strings.ToLower(strings.Trim(bctyp, " "))
		var paramf float64
		var numfaces int
		switch bctyp {
		case "cyl":
			n, err = fmt.Sscanf(line, "%32s%8f%8d", &bctyp, &paramf, &numfaces)
		default:
			n, err = fmt.Sscanf(line, "%32s%8d%8d", &bctyp, &bcid, &numfaces)
		}
		if err != nil || n < 3 {
			fail("unable to read boundary header [%s]", line)
		}
		bctyp = strings.ToLower(bctyp)
		for j := 0; j < numfaces; j++ {
			line = getLine(reader)
			var kp1, n2, faceNumberp1 int
			if n, err = fmt.Sscanf(line, "%d %d %d", &kp1, &n2, &faceNumberp1); err != nil || n < 3 {
				fail("read fewer than required dimensions, read %d, need 3, line: %s", n, line)
			}
			if kp1 < 1 || kp1 > K || faceNumberp1 < 1 || faceNumberp1 > 3 {
				fail("boundary %s references element %d face %d", bctyp, kp1, faceNumberp1)
			}
			verts := EToV[kp1-1]
			f := faceNumberp1 - 1
			BCEdges[bctyp] = append(BCEdges[bctyp], [2]int{verts[f], verts[(f+1)%3]})
		}
		skipLines(1, reader)
	}
	return
}

func readMaterialGroup(reader *bufio.Reader, elementCount int, title string, regions []string) {
	var (
		n     int
		nn    = make([]int, 10)
		err   error
		added int
	)
	if elementCount%10 != 0 {
		added = 1
	}
	numLines := elementCount/10 + added
	for i := 0; i < numLines; i++ {
		line := getLine(reader)
		nargs := 10
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d %d %d %d %d", &nn[0], &nn[1], &nn[2], &nn[3], &nn[4], &nn[5], &nn[6], &nn[7], &nn[8], &nn[9]); err != nil || n < nargs {
			if !(n < nargs && i == numLines-1) {
				fail("read fewer than %d element numbers, read %d, line: %s", nargs, n, line)
			}
		}
		for j := 0; j < n; j++ {
			if nn[j] < 1 || nn[j] > len(regions) {
				fail("material %s references element %d", title, nn[j])
			}
			regions[nn[j]-1] = title
		}
	}
}

func readMaterialHeader(reader *bufio.Reader) (elnum int, title string) {
	/*
	   GROUP:           1 ELEMENTS:        977 MATERIAL:      1.000 NFLAGS:          0
	                     epsilon: 1.000
	          0
	*/
	var (
		line   = getLine(reader)
		n, gn  int
		matval float64
		err    error
	)
	nargs := 3
	if n, err = fmt.Sscanf(line, "GROUP: %11d ELEMENTS:%11d MATERIAL:%11f", &gn, &elnum, &matval); err != nil || n < nargs {
		fail("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
	}
	title = strings.TrimSpace(getLine(reader))
	skipLines(1, reader)
	return
}

func readHeader(reader *bufio.Reader) (Nv, K, Nmats, Nbcs, Nsd int) {
	/*
		Nv      // num nodes in mesh
		K       // num elements
		Nmats   // num material groups
		Nbcs    // num boundary groups
		Nsd;    // num space dimensions
	*/
	var (
		line   = getLine(reader)
		n, dum int
		err    error
	)
	nargs := 6
	if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &Nv, &K, &Nmats, &Nbcs, &Nsd, &dum); err != nil || n < nargs {
		fail("read fewer than %d dimensions, read %d, line: %s", nargs, n, line)
	}
	return
}

func read2DVertices(Nv int, reader *bufio.Reader) (VX, VY []float64) {
	var (
		line   string
		err    error
		n, ind int
		x, y   float64
	)
	VX, VY = make([]float64, Nv), make([]float64, Nv)
	for i := 0; i < Nv; i++ {
		line = getLine(reader)
		if n, err = fmt.Sscanf(line, "%d %f %f", &ind, &x, &y); err != nil || n < 3 {
			fail("read fewer than required dimensions, read %d, need 3, line: %s", n, line)
		}
		if ind < 1 || ind > Nv {
			fail("vertex index %d out of range, line: %s", ind, line)
		}
		VX[ind-1], VY[ind-1] = x, y
	}
	return
}

func readTris(K int, reader *bufio.Reader) (EToV [][3]int) {
	//-------------------------------------
	//    ELEMENTS/CELLS 1.3.0
	//      1  3  3        1       2       3
	//      2  3  3        3       2       4
	var (
		line                string
		err                 error
		n, ind, typ, nfaces int
	)
	EToV = make([][3]int, K)
	for i := 0; i < K; i++ {
		line = getLine(reader)
		var n1, n2, n3 int
		if n, err = fmt.Sscanf(line, "%d %d %d %d %d %d", &ind, &typ, &nfaces, &n1, &n2, &n3); err != nil || n < 6 {
			fail("read fewer than required dimensions, read %d, need 6, line: %s", n, line)
		}
		if ind < 1 || ind > K {
			fail("element index %d out of range, line: %s", ind, line)
		}
		EToV[ind-1] = [3]int{n1 - 1, n2 - 1, n3 - 1}
	}
	return
}
