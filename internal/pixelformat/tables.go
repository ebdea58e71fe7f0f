package pixelformat

// Standard is the canonical table: the five formats the pipe-based producer
// generation emits.
var Standard = Table{
	name: "standard",
	entries: []Descriptor{
		{}, // invalid
		RGBA8888: {BitsPerPixel: 32, Red: Channel{0, 8}, Green: Channel{8, 8}, Blue: Channel{16, 8}, Alpha: Channel{24, 8}},
		RGBX8888: {BitsPerPixel: 32, Red: Channel{0, 8}, Green: Channel{8, 8}, Blue: Channel{16, 8}, Alpha: Channel{24, 0}},
		RGB888:   {BitsPerPixel: 24, Red: Channel{0, 8}, Green: Channel{8, 8}, Blue: Channel{16, 8}, Alpha: Channel{24, 0}},
		RGB565:   {BitsPerPixel: 16, Red: Channel{11, 5}, Green: Channel{5, 6}, Blue: Channel{0, 5}, Alpha: Channel{0, 0}},
		BGRA8888: {BitsPerPixel: 32, Red: Channel{16, 8}, Green: Channel{8, 8}, Blue: Channel{0, 8}, Alpha: Channel{24, 8}},
	},
}

// Extended is the HAL-based producer generation's table. It adds the 16-bit
// alpha formats and disagrees with Standard on RGBX alpha placement and on
// RGB_888 channel order.
var Extended = Table{
	name: "extended",
	entries: []Descriptor{
		{}, // invalid
		RGBA8888: {BitsPerPixel: 32, Red: Channel{0, 8}, Green: Channel{8, 8}, Blue: Channel{16, 8}, Alpha: Channel{24, 8}},
		RGBX8888: {BitsPerPixel: 32, Red: Channel{0, 8}, Green: Channel{8, 8}, Blue: Channel{16, 8}, Alpha: Channel{0, 0}},
		RGB888:   {BitsPerPixel: 24, Red: Channel{16, 8}, Green: Channel{8, 8}, Blue: Channel{0, 8}, Alpha: Channel{0, 0}},
		RGB565:   {BitsPerPixel: 16, Red: Channel{11, 5}, Green: Channel{5, 6}, Blue: Channel{0, 5}, Alpha: Channel{0, 0}},
		BGRA8888: {BitsPerPixel: 32, Red: Channel{16, 8}, Green: Channel{8, 8}, Blue: Channel{0, 8}, Alpha: Channel{24, 8}},
		RGBA5551: {BitsPerPixel: 16, Red: Channel{11, 5}, Green: Channel{6, 5}, Blue: Channel{1, 5}, Alpha: Channel{0, 1}},
		RGBA4444: {BitsPerPixel: 16, Red: Channel{12, 4}, Green: Channel{8, 4}, Blue: Channel{4, 4}, Alpha: Channel{0, 4}},
	},
}
