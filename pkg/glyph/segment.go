package glyph

import (
	"strings"
	"unicode"
)

// SegmentKind classifies a run of input text.
type SegmentKind int

const (
	// SegmentPlain is ordinary text rendered with fonts.
	SegmentPlain SegmentKind = iota
	// SegmentPictographic is a single glyph sequence resolved to an image.
	SegmentPictographic
	// SegmentSeparator is a horizontal-rule-like run that must not wrap.
	SegmentSeparator
)

// Segment is a contiguous run of input text with uniform handling.
type Segment struct {
	Text string
	Kind SegmentKind
}

// separatorRunes are characters that form visual divider lines when repeated.
const separatorRunes = "━─═—_-~·•"

// minSeparatorRun is the repeat count at which a divider run stops wrapping.
const minSeparatorRun = 3

// pictographicTable covers the emoji blocks the CDNs serve: legacy symbol
// blocks (arrows, Misc Symbols, Dingbats), enclosed alphanumerics, regional
// indicators, and the supplementary pictographic planes through U+1FFFF.
var pictographicTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x2199, Stride: 1},
		{Lo: 0x21A9, Hi: 0x21AA, Stride: 1},
		{Lo: 0x231A, Hi: 0x231B, Stride: 1},
		{Lo: 0x2328, Hi: 0x2328, Stride: 1},
		{Lo: 0x23CF, Hi: 0x23CF, Stride: 1},
		{Lo: 0x23E9, Hi: 0x23F3, Stride: 1},
		{Lo: 0x23F8, Hi: 0x23FA, Stride: 1},
		{Lo: 0x24C2, Hi: 0x24C2, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25AB, Stride: 1},
		{Lo: 0x25B6, Hi: 0x25B6, Stride: 1},
		{Lo: 0x25C0, Hi: 0x25C0, Stride: 1},
		{Lo: 0x25FB, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1},
		{Lo: 0x2702, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B07, Stride: 1},
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B50, Stride: 1},
		{Lo: 0x2B55, Hi: 0x2B55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303D, Hi: 0x303D, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F004, Hi: 0x1F004, Stride: 1},
		{Lo: 0x1F0CF, Hi: 0x1F0CF, Stride: 1},
		{Lo: 0x1F170, Hi: 0x1F171, Stride: 1},
		{Lo: 0x1F17E, Hi: 0x1F17F, Stride: 1},
		{Lo: 0x1F18E, Hi: 0x1F18E, Stride: 1},
		{Lo: 0x1F191, Hi: 0x1F19A, Stride: 1},
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F201, Hi: 0x1F202, Stride: 1},
		{Lo: 0x1F21A, Hi: 0x1F21A, Stride: 1},
		{Lo: 0x1F22F, Hi: 0x1F22F, Stride: 1},
		{Lo: 0x1F232, Hi: 0x1F23A, Stride: 1},
		{Lo: 0x1F250, Hi: 0x1F251, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F700, Hi: 0x1FFFF, Stride: 1},
	},
}

// IsPictographic reports whether r can start or continue a glyph sequence on
// its own (modifiers and joiners excluded).
func IsPictographic(r rune) bool {
	return unicode.Is(pictographicTable, r)
}

func isVariationSelector(r rune) bool {
	return r >= '\uFE00' && r <= '\uFE0F'
}

func isSkinTone(r rune) bool {
	return r >= 0x1F3FB && r <= 0x1F3FF
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}

// Split divides text into plain runs, pictographic sequences, and no-wrap
// separator runs. A pictographic sequence is one base glyph plus any trailing
// variation selectors, and joins across ZWJ when the joiner is followed by
// another base glyph, so a family emoji stays a single segment.
func Split(text string) []Segment {
	runes := []rune(text)
	var segs []Segment
	plainStart := 0

	flushPlain := func(end int) {
		if end > plainStart {
			segs = append(segs, splitSeparators(string(runes[plainStart:end]))...)
		}
	}

	for i := 0; i < len(runes); {
		if !IsPictographic(runes[i]) {
			i++
			continue
		}
		flushPlain(i)

		j := i + 1
		// Flags are two regional indicators forming one glyph.
		if isRegionalIndicator(runes[i]) && j < len(runes) && isRegionalIndicator(runes[j]) {
			j++
		}
	scan:
		for j < len(runes) {
			switch {
			case isVariationSelector(runes[j]) || isSkinTone(runes[j]):
				j++
			case runes[j] == zeroWidthJoiner && j+1 < len(runes) && IsPictographic(runes[j+1]):
				j += 2
			default:
				break scan
			}
		}
		segs = append(segs, Segment{Text: string(runes[i:j]), Kind: SegmentPictographic})
		i = j
		plainStart = i
	}
	flushPlain(len(runes))
	return segs
}

// splitSeparators breaks a plain run so that divider lines (three or more of
// the same separator character) become their own no-wrap segments.
func splitSeparators(text string) []Segment {
	runes := []rune(text)
	var segs []Segment
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		kind := SegmentPlain
		if j-i >= minSeparatorRun && strings.ContainsRune(separatorRunes, runes[i]) {
			kind = SegmentSeparator
		}
		if kind == SegmentPlain && len(segs) > 0 && segs[len(segs)-1].Kind == SegmentPlain {
			segs[len(segs)-1].Text += string(runes[i:j])
		} else {
			segs = append(segs, Segment{Text: string(runes[i:j]), Kind: kind})
		}
		i = j
	}
	return segs
}
