package geometry2D

import (
	"regexp"
)

// TagRegions sets the region of every element from its centroid
func (m *Mesh) TagRegions(region func(x, y float64) string) {
	for k, c := range m.Centroid {
		m.Region[k] = region(c[0], c[1])
	}
}

// TagFaces assigns tag to every face accepted by pred and returns how many
// were tagged. Interior faces can be tagged too.
func (m *Mesh) TagFaces(tag string, pred func(f *Face) bool) (n int) {
	for i := range m.Faces {
		if pred(&m.Faces[i]) {
			m.Faces[i].Tag = tag
			n++
		}
	}
	return
}

// FacesTagged lists the faces carrying tag
func (m *Mesh) FacesTagged(tag string) (faces []int) {
	for i := range m.Faces {
		if m.Faces[i].Tag == tag {
			faces = append(faces, i)
		}
	}
	return
}

// BoundaryFaces lists every boundary face
func (m *Mesh) BoundaryFaces() (faces []int) {
	for i := range m.Faces {
		if m.Faces[i].IsBoundary() {
			faces = append(faces, i)
		}
	}
	return
}

// RegionMatcher selects elements by region name. The pattern is anchored, so
// "pml_default.*|pml_normal.*" matches every one dimensional layer.
func RegionMatcher(pattern string) (match func(region string) bool, err error) {
	var re *regexp.Regexp
	if re, err = regexp.Compile("^(?:" + pattern + ")$"); err != nil {
		return
	}
	match = re.MatchString
	return
}

// ElementsInRegion lists the elements whose region is accepted by match
func (m *Mesh) ElementsInRegion(match func(region string) bool) (elements []int) {
	for k, r := range m.Region {
		if match(r) {
			elements = append(elements, k)
		}
	}
	return
}

// RegionMask is the element indicator of ElementsInRegion, nil match selects all
func (m *Mesh) RegionMask(match func(region string) bool) (mask []bool) {
	mask = make([]bool, m.K())
	for k, r := range m.Region {
		mask[k] = match == nil || match(r)
	}
	return
}

// Regions returns the distinct region names in order of first appearance
func (m *Mesh) Regions() (names []string) {
	seen := make(map[string]bool)
	for _, r := range m.Region {
		if !seen[r] {
			seen[r] = true
			names = append(names, r)
		}
	}
	return
}
