package rendering

// BoxShadow is a blurred, offset copy of a shape painted beneath it.
type BoxShadow struct {
	Color  Color
	Offset Offset
	// BlurRadius is the CSS-style blur extent; backends blur with half of it
	// as the gaussian sigma.
	BlurRadius float64
}

// Sigma is the gaussian standard deviation for the blur, or 0 for a hard
// shadow.
func (s BoxShadow) Sigma() float64 {
	return max(s.BlurRadius, 0) / 2
}

// Extent is how far the blurred shadow reaches past the shape's edge.
func (s BoxShadow) Extent() float64 {
	return 3 * s.Sigma()
}
