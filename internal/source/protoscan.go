package source

import (
	"unicode"
	"unicode/utf8"
)

// fieldString is one printable string recovered from a protobuf-style blob,
// tagged with the field number it appeared under. The cursor blob format is
// undocumented, so field numbers are the only structure we get.
type fieldString struct {
	field int
	text  string
}

// scanProtoStrings walks protobuf wire data and collects printable UTF-8
// strings longer than five characters by field number. Length-delimited
// chunks that are not valid UTF-8 are descended into as nested messages.
// A malformed tag ends the walk; whatever was collected so far is returned.
func scanProtoStrings(data []byte) []fieldString {
	var out []fieldString
	pos := 0
	for pos < len(data) {
		tag, next, ok := decodeVarint(data, pos)
		if !ok {
			break
		}
		pos = next
		field := int(tag >> 3)
		switch tag & 0x7 {
		case 0: // varint
			_, next, ok := decodeVarint(data, pos)
			if !ok {
				return out
			}
			pos = next
		case 2: // length-delimited
			length, next, ok := decodeVarint(data, pos)
			if !ok || length > uint64(len(data)-next) {
				return out
			}
			chunk := data[next : next+int(length)]
			pos = next + int(length)
			if utf8.Valid(chunk) {
				if s := string(chunk); printableText(s) {
					out = append(out, fieldString{field: field, text: s})
				}
			} else {
				out = append(out, scanProtoStrings(chunk)...)
			}
		case 5: // 32-bit
			pos += 4
		case 1: // 64-bit
			pos += 8
		default:
			return out
		}
	}
	return out
}

// decodeVarint reads one base-128 varint starting at pos. Truncated input or
// a value wider than 64 bits reports !ok.
func decodeVarint(data []byte, pos int) (uint64, int, bool) {
	var result uint64
	shift := 0
	for {
		if pos >= len(data) {
			return 0, pos, false
		}
		b := data[pos]
		result |= uint64(b&0x7f) << shift
		pos++
		if b&0x80 == 0 {
			return result, pos, true
		}
		shift += 7
		if shift > 63 {
			return 0, pos, false
		}
	}
}

// printableText reports whether s is long enough to be interesting and
// contains no control characters. Multi-line chunks fail on the newline,
// which keeps framing bytes that merely look like text out of the results.
func printableText(s string) bool {
	if utf8.RuneCountInString(s) <= 5 {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
