package render

import (
	"errors"
	"image"
	"image/color"
	"sort"
	"strings"
)

const (
	cloudWidth  = 1000
	cloudHeight = 600
	cloudMargin = 20

	// DefaultMaxWords caps how many distinct words a cloud renders.
	DefaultMaxWords = 200
)

// WordCount is one entry of a frequency tally.
type WordCount struct {
	Word  string
	Count int
}

var cloudPalette = []color.RGBA{
	{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff},
	{R: 0xb0, G: 0x3a, B: 0x2e, A: 0xff},
	{R: 0x2e, G: 0x6b, B: 0x34, A: 0xff},
	{R: 0x6a, G: 0x3d, B: 0x9a, A: 0xff},
	{R: 0xb5, G: 0x65, B: 0x1d, A: 0xff},
	{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff},
}

// Tally counts whitespace-separated words across texts and returns at
// most max entries ordered by descending count, ties alphabetical.
func Tally(texts []string, max int) []WordCount {
	if max <= 0 {
		max = DefaultMaxWords
	}
	counts := make(map[string]int)
	for _, t := range texts {
		for _, w := range strings.Fields(t) {
			counts[w]++
		}
	}
	tally := make([]WordCount, 0, len(counts))
	for w, n := range counts {
		tally = append(tally, WordCount{Word: w, Count: n})
	}
	sort.Slice(tally, func(i, j int) bool {
		if tally[i].Count != tally[j].Count {
			return tally[i].Count > tally[j].Count
		}
		return tally[i].Word < tally[j].Word
	})
	if len(tally) > max {
		tally = tally[:max]
	}
	return tally
}

// WordCloud renders a frequency cloud over texts to a PNG at path.
// Words flow left to right in rows on a white canvas, sized by count
// relative to the most frequent word. Words that no longer fit are
// dropped silently.
func WordCloud(texts []string, maxWords int, path string) error {
	tally := Tally(texts, maxWords)
	if len(tally) == 0 {
		return errors.New("word cloud: no words to render")
	}

	img := image.NewRGBA(image.Rect(0, 0, cloudWidth, cloudHeight))
	fillRect(img, img.Bounds(), color.White)

	maxCount := tally[0].Count
	x, y, rowHeight := cloudMargin, cloudMargin, 0
	for i, wc := range tally {
		scale := 1 + (5*wc.Count)/maxCount
		w := textWidth(wc.Word, scale)
		h := 13 * scale

		if x+w > cloudWidth-cloudMargin {
			x = cloudMargin
			y += rowHeight + 6
			rowHeight = 0
		}
		if y+h > cloudHeight-cloudMargin {
			break
		}

		drawText(img, wc.Word, x, y, scale, cloudPalette[i%len(cloudPalette)])
		x += w + 10
		if h > rowHeight {
			rowHeight = h
		}
	}
	return savePNG(path, img)
}
