// Package thumbnail renders headline images for social posts.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	Width  = 1200
	Height = 1200

	DefaultTitle = "AI Remix"
	Subtitle     = "AUDREY REMIX SYSTEM"

	margin   = 100
	maxLines = 6
	ellipsis = "..."
)

var (
	colorTop    = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	colorBottom = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	colorTitle  = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	colorAccent = color.RGBA{0x38, 0xbd, 0xf8, 0xff}
	colorMuted  = color.RGBA{0x94, 0xa3, 0xb8, 0xff}

	face       = basicfont.Face7x13
	glyphWidth = face.Advance
	glyphH     = face.Height
	titleScale = []int{8, 6, 5, 4}

	// the bitmap face only has ASCII glyphs
	punctuation = strings.NewReplacer(
		"\u2018", "'", "\u2019", "'", "\u201c", `"`, "\u201d", `"`,
		"\u2013", "-", "\u2014", "-", "\u2026", ellipsis,
	)
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Render draws title on the gradient background and returns a PNG.
func Render(title string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fillGradient(img)

	scale, lines := layout(ToASCII(strings.ToUpper(title)))
	lineHeight := glyphH * scale * 5 / 4
	blockHeight := lineHeight * len(lines)
	y := (Height-blockHeight)/2 - 40

	// accent bar above the headline
	draw.Draw(img, image.Rect(margin, y-60, margin+160, y-48), image.NewUniform(colorAccent), image.Point{}, draw.Src)

	for _, line := range lines {
		drawText(img, line, margin, y, scale, colorTitle)
		y += lineHeight
	}

	drawText(img, Subtitle, margin, Height-margin-glyphH*3, 3, colorMuted)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func fillGradient(img *image.RGBA) {
	h := img.Bounds().Dy()
	for y := 0; y < h; y++ {
		c := lerp(colorTop, colorBottom, y, h-1)
		draw.Draw(img, image.Rect(0, y, img.Bounds().Dx(), y+1), image.NewUniform(c), image.Point{}, draw.Src)
	}
}

func lerp(a, b color.RGBA, step, steps int) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(int(x) + (int(y)-int(x))*step/steps)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// ToASCII folds accented letters and typographic punctuation to their ASCII
// forms. Anything else outside ASCII becomes '?'.
func ToASCII(s string) string {
	s = punctuation.Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return '?'
		}
		return r
	}, s)
}

// layout picks the largest scale at which the title fits in maxLines. A
// title that does not fit even at the smallest scale is cut and ends in an
// ellipsis.
func layout(title string) (int, []string) {
	var lines []string
	var width int
	for _, scale := range titleScale {
		width = (Width - 2*margin) / (glyphWidth * scale)
		lines = Wrap(title, width)
		if len(lines) <= maxLines {
			return scale, lines
		}
	}

	lines = lines[:maxLines]
	last := []rune(lines[maxLines-1])
	if keep := width - len(ellipsis); len(last) > keep {
		last = last[:keep]
	}
	lines[maxLines-1] = strings.TrimRight(string(last), " ") + ellipsis
	return titleScale[len(titleScale)-1], lines
}

// Wrap splits text into lines of at most width characters, breaking on
// spaces and splitting words that are longer than a line.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = w
		case len(cur)+1+len(w) <= width:
			cur = append(append(cur, ' '), w...)
		default:
			lines = append(lines, string(cur))
			cur = w
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

// drawText renders s with the bitmap face and scales it up onto dst with its
// top-left corner at (x, y).
func drawText(dst *image.RGBA, s string, x, y, scale int, c color.Color) {
	d := &font.Drawer{Face: face, Src: image.NewUniform(c)}
	w := d.MeasureString(s).Ceil()
	if w == 0 {
		return
	}
	small := image.NewRGBA(image.Rect(0, 0, w, glyphH))
	d.Dst = small
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(s)

	target := image.Rect(x, y, x+w*scale, y+glyphH*scale)
	xdraw.NearestNeighbor.Scale(dst, target, small, small.Bounds(), xdraw.Over, nil)
}
