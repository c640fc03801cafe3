package maskedit

// affine is a 2D affine matrix laid out as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type affine [6]float64

var identityAffine = affine{1, 0, 0, 1, 0, 0}

func translateAffine(tx, ty float64) affine { return affine{1, 0, 0, 1, tx, ty} }

func scaleAffine(s float64) affine { return affine{s, 0, 0, s, 0, 0} }

// then returns m applied after n, i.e. m * n.
func (m affine) then(n affine) affine {
	return affine{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// inverse returns the inverse matrix, or the identity when m is singular.
func (m affine) inverse() affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityAffine
	}
	a, b := m[3]/det, -m[1]/det
	c, d := -m[2]/det, m[0]/det
	return affine{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// viewAffine is the canvas-to-container map of a viewport:
// Translate(pan) * Scale(zoom).
func viewAffine(zoom, panX, panY float64) affine {
	return translateAffine(panX, panY).then(scaleAffine(zoom))
}
