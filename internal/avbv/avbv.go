// Package avbv converts between Bilibili's two public video ID encodings.
//
// An "av" ID is the legacy numeric identifier (av170001). A "bv" ID is the
// obfuscated 12 character form (BV17x411w7KC) derived from the same number
// through a fixed base-58 table.
package avbv

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidID is returned for input that is neither a valid av nor bv ID.
var ErrInvalidID = errors.New("invalid video id")

const (
	alphabet = "fZodR9XQDSUm21yCkr6zBqiveYah8bt4xsWpHnJE7jL5VG3guMTKNPAwcF"
	xorKey   = 177451812
	addKey   = 8728348608
	// bvTemplate holds the fixed characters of every 12 character bv ID.
	bvTemplate = "BV1  4 1 7  "
)

// positions lists the character indexes carrying the encoded digits,
// least significant first.
var positions = [6]int{11, 10, 3, 8, 4, 6}

var (
	bvPattern      = regexp.MustCompile(`[Bb][Vv][` + alphabet + `]{10}`)
	validBVPattern = regexp.MustCompile(`^[Bb][Vv][` + alphabet + `]{10}$`)
	avPattern      = regexp.MustCompile(`(?i)av(\d+)`)
)

var alphabetIndex = func() map[byte]int64 {
	m := make(map[byte]int64, len(alphabet))
	for i := range len(alphabet) {
		m[alphabet[i]] = int64(i)
	}
	return m
}()

// IsValidBV reports whether s is exactly a "BV" prefix (any case) followed by
// ten characters of the bv alphabet.
func IsValidBV(s string) bool {
	return validBVPattern.MatchString(s)
}

// ExtractBV returns the first bv shaped substring of s.
func ExtractBV(s string) (string, bool) {
	m := bvPattern.FindString(s)
	return m, m != ""
}

// ExtractAV returns the digits following the first "av" (any case) in s.
func ExtractAV(s string) (string, bool) {
	m := avPattern.FindStringSubmatch(s)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}

// BVToAV decodes a bv ID into its "av" form.
//
// Besides the full 12 character form, the short forms without the "BV"
// (10 characters) or "BV1" (9 characters) prefix are accepted.
func BVToAV(bv string) (string, error) {
	var full string
	switch len(bv) {
	case 12:
		full = bv
	case 10:
		full = "BV" + bv
	case 9:
		full = "BV1" + bv
	default:
		return "", fmt.Errorf("%w: %q has length %d", ErrInvalidID, bv, len(bv))
	}
	if !IsValidBV(full) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, bv)
	}

	var sum, weight int64 = 0, 1
	for _, p := range positions {
		sum += alphabetIndex[full[p]] * weight
		weight *= 58
	}

	// The scheme was published as JavaScript, where ^ works on 32-bit signed
	// integers. Truncate the same way so every input decodes identically.
	av := toInt32(sum-addKey) ^ toInt32(xorKey)
	return "av" + strconv.FormatInt(int64(av), 10), nil
}

// AVToBV encodes a numeric av ID into its 12 character bv form.
func AVToBV(av int64) string {
	x := (av ^ xorKey) + addKey
	out := []byte(bvTemplate)
	var weight int64 = 1
	for _, p := range positions {
		out[p] = alphabet[(x/weight)%58]
		weight *= 58
	}
	return string(out)
}

// Canonical returns the "av" form of a raw av or bv ID.
func Canonical(id string) (string, error) {
	if n, ok := ExtractAV(id); ok && strings.HasPrefix(strings.ToLower(id), "av") {
		return "av" + n, nil
	}
	if bv, ok := ExtractBV(id); ok {
		return BVToAV(bv)
	}
	if _, err := strconv.ParseUint(id, 10, 63); err == nil {
		return "av" + id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
}

func toInt32(v int64) int32 {
	return int32(uint32(v)) //nolint:gosec // intentional wrap-around
}
