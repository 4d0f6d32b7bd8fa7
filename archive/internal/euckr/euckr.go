// Package euckr transcodes PK2 entry names between EUC-KR, the on-disk
// encoding used by the archive format, and UTF-8, the encoding used
// everywhere else in this module.
//
// This mirrors the way a filesystem driver in this corpus (soypat-fat)
// reaches for golang.org/x/text rather than hand-rolling a codepage
// transform: PK2 names are a narrow transcoding concern, not a place to
// grow bespoke decode tables.
package euckr

import (
	"golang.org/x/text/encoding/korean"
)

// Decode converts raw EUC-KR bytes (already stripped of any trailing NUL
// padding) to a UTF-8 string. Decoding is lossy on invalid sequences: the
// korean.EUCKR decoder substitutes the Unicode replacement character
// rather than failing.
func Decode(b []byte) string {
	out, err := korean.EUCKR.NewDecoder().Bytes(b)
	if err != nil {
		// The stdlib decoder is a non-failing transform for EUC-KR; this
		// path exists only to satisfy the signature.
		return string(b)
	}
	return string(out)
}

// Encode converts a UTF-8 name to EUC-KR bytes. It returns an error if the
// name contains characters with no EUC-KR representation, which the caller
// treats as an invalid entry (name does not fit the 81-byte field).
func Encode(name string) ([]byte, error) {
	return korean.EUCKR.NewEncoder().Bytes([]byte(name))
}
