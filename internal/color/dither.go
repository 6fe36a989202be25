package color

// ditherNoise returns a value in [0,1) that depends only on the absolute
// pixel position. Row-partitioned jobs therefore quantize identically to a
// single pass over the whole image.
func ditherNoise(x, y int) float32 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return float32(h&0xffffff) / float32(1<<24)
}

// ByteFromFloat quantizes a float buffer into a 4-channel byte buffer.
//
// Strides are in pixels. originX and originY give the absolute position of
// the first source pixel and seed the dither pattern. With predivide set,
// 4-channel input is treated as associated alpha and converted to straight
// before quantizing. One-channel input is replicated to all four bytes;
// three-channel input gets an opaque alpha.
func ByteFromFloat(dst []byte, src []float32, channels int, dither float32, predivide bool,
	width, height, dstStride, srcStride, originX, originY int) {
	amount := dither * byteScale
	var straight [4]float32

	for y := range height {
		srow := src[y*srcStride*channels:]
		drow := dst[y*dstStride*4:]
		for x := range width {
			s := srow[x*channels:]
			d := drow[x*4 : x*4+4]

			var offset float32
			if amount != 0 {
				offset = (ditherNoise(originX+x, originY+y) - 0.5) * amount
			}

			switch channels {
			case 1:
				v := F32ToU8(s[0] + offset)
				d[0], d[1], d[2], d[3] = v, v, v, v
			case 3:
				d[0] = F32ToU8(s[0] + offset)
				d[1] = F32ToU8(s[1] + offset)
				d[2] = F32ToU8(s[2] + offset)
				d[3] = 255
			case 4:
				px := s[:4]
				if predivide {
					PremulToStraight(straight[:], px)
					px = straight[:]
				}
				d[0] = F32ToU8(px[0] + offset)
				d[1] = F32ToU8(px[1] + offset)
				d[2] = F32ToU8(px[2] + offset)
				d[3] = F32ToU8(px[3])
			default:
				panic("color: unsupported channel count for byte conversion")
			}
		}
	}
}
