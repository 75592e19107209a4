package render

// HsvToRgb converts an HSV color to normalized RGB using the standard
// six-sector algorithm. h is in [0,1); s and v in [0,1].
func HsvToRgb(h, s, v float64) [3]float64 {
	i := int(h * 6)
	f := h*6 - float64(i)

	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	switch ((i % 6) + 6) % 6 {
	case 0:
		return [3]float64{v, t, p}
	case 1:
		return [3]float64{q, v, p}
	case 2:
		return [3]float64{p, v, t}
	case 3:
		return [3]float64{p, q, v}
	case 4:
		return [3]float64{t, p, v}
	default:
		return [3]float64{v, p, q}
	}
}
