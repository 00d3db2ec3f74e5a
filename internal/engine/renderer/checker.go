package renderer

// CheckerPixels returns an RGBA checkerboard of size*size pixels made of
// cells*cells squares alternating between two grey levels.
func CheckerPixels(size, cells int, light, dark uint8) []byte {
	if size <= 0 || cells <= 0 {
		return nil
	}
	cell := size / cells
	if cell == 0 {
		cell = 1
	}

	pix := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := dark
			if (x/cell+y/cell)%2 == 0 {
				v = light
			}
			i := (y*size + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
		}
	}
	return pix
}

// TintFor returns a stable pastel colour for an entity index so brushes of
// different entities are told apart.
func TintFor(entity int) [3]float32 {
	if entity == 0 {
		return [3]float32{1, 1, 1}
	}
	h := uint32(entity) * 2654435761
	return [3]float32{
		0.6 + 0.4*float32(h&0xff)/255,
		0.6 + 0.4*float32((h>>8)&0xff)/255,
		0.6 + 0.4*float32((h>>16)&0xff)/255,
	}
}
