package main

// demoFrame draws frame i of n: diagonal stripes scrolling under a square
// that moves from the left edge to the right edge over the animation.
func demoFrame(i, n, width, height int) []byte {
	px := make([]byte, width*height*4)

	side := max(min(width, height)/4, 1)
	travel := max(width-side, 0)
	left := 0
	if n > 1 {
		left = i * travel / (n - 1)
	}
	top := (height - side) / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			switch {
			case x >= left && x < left+side && y >= top && y < top+side:
				px[off], px[off+1], px[off+2] = 0xf0, 0x80, 0x20
			case ((x+y+i*4)/16)%2 == 0:
				px[off], px[off+1], px[off+2] = 0x20, 0x30, 0x60
			default:
				px[off], px[off+1], px[off+2] = 0x40, 0x60, 0xa0
			}
			px[off+3] = 0xff
		}
	}
	return px
}
