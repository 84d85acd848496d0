// Package glyph identifies pictographic glyphs and the cache keys derived
// from them. A glyph is a Unicode scalar sequence (a single emoji may span
// several codepoints, e.g. flags or ZWJ families) paired with a target render
// size in pixels.
package glyph

import (
	"fmt"
	"strconv"
	"strings"
)

// Codepoints that modify or join a glyph sequence.
const (
	variationSelector16 = '\uFE0F'
	zeroWidthJoiner     = '\u200D'
)

// Key uniquely identifies a requested glyph rendering. Two requests with the
// same sequence and size always map to the same cached artifact.
type Key struct {
	Seq  string // the glyph's codepoints, including any VS16/ZWJ
	Size int    // target render dimension in pixels
}

// NewKey builds a key for the given codepoint sequence and render size.
func NewKey(seq string, size int) Key {
	return Key{Seq: seq, Size: size}
}

// Filename returns the deterministic on-disk name for this key: uppercase
// hexadecimal codepoints (minimum width 4) joined by "-", an underscore, the
// size, and the image extension. [0x1F600], 72 encodes to "1F600_72.png".
func (k Key) Filename() string {
	var b strings.Builder
	for i, r := range k.Seq {
		if i > 0 {
			b.WriteByte('-')
		}
		fmt.Fprintf(&b, "%04X", r)
	}
	fmt.Fprintf(&b, "_%d.png", k.Size)
	return b.String()
}

// String implements fmt.Stringer for diagnostics.
func (k Key) String() string {
	return k.Filename()
}

// PathVariants returns the ordered URL path spellings (without extension) the
// CDNs may use for this glyph, most likely first. Twemoji assets are keyed by
// lowercase hex with no zero padding; the canonical form strips variation
// selectors but keeps zero-width joiners. Later entries cover hosts that index
// fully-stripped sequences or only the leading codepoint.
func (k Key) PathVariants() []string {
	noVS := strings.ReplaceAll(k.Seq, string(variationSelector16), "")
	stripped := strings.ReplaceAll(noVS, string(zeroWidthJoiner), "")

	candidates := []string{
		hexJoin(noVS),
		hexJoin(stripped),
		hexJoin(k.Seq),
	}
	if stripped != "" {
		first := hexJoin(string([]rune(stripped)[:1]))
		candidates = append(candidates, first, first+"-fe0f")
	}

	variants := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		variants = append(variants, c)
	}
	return variants
}

// hexJoin renders each codepoint as unpadded lowercase hex, joined by "-".
func hexJoin(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.FormatInt(int64(r), 16))
	}
	return b.String()
}

// ParseFilename reverses Filename. It reports false for names that were not
// produced by this package, which lets cache directory scans skip foreign
// files (temp files, dotfiles) without erroring.
func ParseFilename(name string) (Key, bool) {
	stem, ok := strings.CutSuffix(name, ".png")
	if !ok {
		return Key{}, false
	}
	cps, sizeStr, ok := strings.Cut(stem, "_")
	if !ok || cps == "" || sizeStr == "" {
		return Key{}, false
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		return Key{}, false
	}

	var seq strings.Builder
	for _, part := range strings.Split(cps, "-") {
		n, err := strconv.ParseUint(part, 16, 32)
		if err != nil || n > 0x10FFFF {
			return Key{}, false
		}
		seq.WriteRune(rune(n))
	}
	return Key{Seq: seq.String(), Size: size}, true
}
