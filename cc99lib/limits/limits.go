// Package limits collects the integer bounds the on-disk store formats and
// the TAC interpreter are built around.
package limits

// Integer limit values, grounded on the conventions of erigon-lib/common/math.
const (
	MaxInt8   = 1<<7 - 1
	MinInt8   = -1 << 7
	MaxInt16  = 1<<15 - 1
	MinInt16  = -1 << 15
	MaxInt32  = 1<<31 - 1
	MinInt32  = -1 << 31
	MaxUint8  = 1<<8 - 1
	MaxUint16 = 1<<16 - 1
	MaxUint32 = 1<<32 - 1
)

// MaxSStoreBytes is the hard ceiling on SSTORE's total byte size: positions
// are 16-bit, so the backing file (length headers included) must never grow
// past this many bytes.
const MaxSStoreBytes = 1 << 16

// ParseLongLiteral parses a C99 integer-literal token's text (decimal, octal
// with a leading 0, or hex with 0x/0X) into its value. It does not validate
// integer-suffix characters (u/U/l/L); the caller is expected to have
// stripped them already.
func ParseLongLiteral(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var base int64 = 10
	switch {
	case len(s) > 1 && (s[1] == 'x' || s[1] == 'X') && s[0] == '0':
		base = 16
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	var v int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d int64
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		default:
			return 0, false
		}
		if d >= base {
			return 0, false
		}
		v = v*base + d
	}
	if neg {
		v = -v
	}
	return v, true
}
