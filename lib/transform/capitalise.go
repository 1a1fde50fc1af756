package transform

// Func transforms a buffer and returns a buffer of the same length.
// Implementations may modify the input in place.
type Func func(buf []byte) []byte

// Capitalise converts all ASCII lower case letters in buf to upper case.
// The conversion happens in place and the length never changes, so a reply
// always has exactly as many bytes as the request. Non-ASCII bytes are left
// untouched.
func Capitalise(buf []byte) []byte {
	for i, c := range buf {
		if 'a' <= c && c <= 'z' {
			buf[i] = c - ('a' - 'A')
		}
	}
	return buf
}
