// ABOUTME: Ogg page checksum
// ABOUTME: CRC-32 with polynomial 0x04C11DB7, unreflected, zero seed
package ogg

// The standard library hash/crc32 only implements reflected tables, so the
// Ogg variant is table driven here.
var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// Checksum computes the Ogg CRC of p from a zero seed.
func Checksum(p []byte) uint32 {
	return UpdateChecksum(0, p)
}

// UpdateChecksum continues a running checksum with p. Chaining calls over
// consecutive ranges gives the same result as one call over their
// concatenation.
func UpdateChecksum(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
