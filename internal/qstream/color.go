package qstream

import "image/color"

// Color specs of the serialized QColor.
const (
	SpecInvalid int8 = 0
	SpecRgb     int8 = 1
)

// Color writes c as an Rgb-spec QColor. Each 8-bit channel is widened to 16
// bits by repetition.
func (w *Writer) Color(c color.NRGBA) {
	w.Int8(SpecRgb)
	w.Uint16(uint16(c.A) * 0x101)
	w.Uint16(uint16(c.R) * 0x101)
	w.Uint16(uint16(c.G) * 0x101)
	w.Uint16(uint16(c.B) * 0x101)
	w.Uint16(0)
}

// Color reads a QColor and returns its spec and 8-bit channels. Only the Rgb
// spec carries RGB channels; for other specs the channels are returned raw
// and the caller should reject them.
func (r *Reader) Color() (int8, color.NRGBA) {
	spec := r.Int8()
	a := r.Uint16()
	red := r.Uint16()
	green := r.Uint16()
	blue := r.Uint16()
	r.Uint16() // pad
	return spec, color.NRGBA{
		R: uint8(red >> 8),
		G: uint8(green >> 8),
		B: uint8(blue >> 8),
		A: uint8(a >> 8),
	}
}
