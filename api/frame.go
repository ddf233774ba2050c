package emucore

// Game Boy LCD geometry. Frames are RGBA, row-major, top-left origin.
const (
	FrameWidth         = 160
	FrameHeight        = 144
	FrameBytesPerPixel = 4
	FrameStride        = FrameWidth * FrameBytesPerPixel
	FrameSize          = FrameStride * FrameHeight
)

// NewFrame allocates a zeroed frame buffer.
func NewFrame() []byte {
	return make([]byte, FrameSize)
}

// PixelOffset returns the byte offset of pixel (x, y) in a frame.
func PixelOffset(x, y int) int {
	return y*FrameStride + x*FrameBytesPerPixel
}
