package render

import (
	"errors"
	"image"
	"image/color"
	"sort"
	"strconv"
)

const (
	chartWidth  = 1000
	chartHeight = 600

	chartLeft   = 70
	chartRight  = 40
	chartTop    = 60
	chartBottom = 70
)

var (
	positiveFill = color.RGBA{R: 0x2e, G: 0x6b, B: 0xa8, A: 0xff}
	negativeFill = color.RGBA{R: 0xc0, G: 0x45, B: 0x3c, A: 0xff}
	axisColor    = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// GroupCount holds the per-bank sentiment totals behind one pair of
// bars.
type GroupCount struct {
	Bank     string
	Positive int
	Negative int
}

// SentimentChart renders grouped positive/negative bars per bank to a
// PNG at path. Groups are drawn in bank name order so reruns over the
// same data produce identical images.
func SentimentChart(groups []GroupCount, path string) error {
	if len(groups) == 0 {
		return errors.New("sentiment chart: no groups to render")
	}
	sorted := make([]GroupCount, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Bank < sorted[j].Bank })

	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	fillRect(img, img.Bounds(), color.White)

	maxCount := 1
	for _, g := range sorted {
		if g.Positive > maxCount {
			maxCount = g.Positive
		}
		if g.Negative > maxCount {
			maxCount = g.Negative
		}
	}

	plotW := chartWidth - chartLeft - chartRight
	plotH := chartHeight - chartTop - chartBottom
	baseY := chartTop + plotH

	title := "Sentiment Distribution by Bank"
	drawText(img, title, (chartWidth-textWidth(title, 2))/2, 18, 2, axisColor)

	// Axes.
	fillRect(img, image.Rect(chartLeft, chartTop, chartLeft+1, baseY+1), axisColor)
	fillRect(img, image.Rect(chartLeft, baseY, chartWidth-chartRight, baseY+1), axisColor)
	drawText(img, "0", chartLeft-textWidth("0", 1)-6, baseY-6, 1, axisColor)
	maxLabel := strconv.Itoa(maxCount)
	drawText(img, maxLabel, chartLeft-textWidth(maxLabel, 1)-6, chartTop-6, 1, axisColor)

	slot := plotW / len(sorted)
	barW := slot / 3
	if barW < 2 {
		barW = 2
	}
	for i, g := range sorted {
		slotX := chartLeft + i*slot

		posH := g.Positive * plotH / maxCount
		negH := g.Negative * plotH / maxCount
		posX := slotX + slot/2 - barW
		negX := slotX + slot/2
		fillRect(img, image.Rect(posX, baseY-posH, posX+barW, baseY), positiveFill)
		fillRect(img, image.Rect(negX, baseY-negH, negX+barW, baseY), negativeFill)

		label := g.Bank
		for textWidth(label, 1) > slot-4 && len(label) > 3 {
			label = label[:len(label)-4] + "..."
		}
		drawText(img, label, slotX+(slot-textWidth(label, 1))/2, baseY+8, 1, axisColor)
	}

	// Legend, upper right of the plot area.
	legendX := chartWidth - chartRight - 160
	fillRect(img, image.Rect(legendX, chartTop, legendX+12, chartTop+12), positiveFill)
	drawText(img, "POSITIVE", legendX+18, chartTop, 1, axisColor)
	fillRect(img, image.Rect(legendX, chartTop+20, legendX+12, chartTop+32), negativeFill)
	drawText(img, "NEGATIVE", legendX+18, chartTop+20, 1, axisColor)

	return savePNG(path, img)
}
