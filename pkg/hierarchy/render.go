package hierarchy

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// upperHalf paints the top pixel of a cell in the foreground colour and the
// bottom pixel in the background colour.
const upperHalf = "▀"

// CellSize converts a pixel size into terminal cells at the given width limit.
// Each cell holds one pixel column and two pixel rows. Images are never scaled up.
func CellSize(img image.Image, maxCols int) (cols, rows int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || maxCols <= 0 {
		return 0, 0
	}
	cols = b.Dx()
	if cols > maxCols {
		cols = maxCols
	}
	px := b.Dy() * cols / b.Dx()
	if px < 1 {
		px = 1
	}
	rows = (px + 1) / 2
	return cols, rows
}

// Render draws the image into at most maxCols terminal columns, one string per
// row. Transparent areas are painted white.
func Render(img image.Image, maxCols int) []string {
	return RenderWith(lipgloss.DefaultRenderer(), img, maxCols)
}

// RenderWith is Render using a specific lipgloss renderer.
func RenderWith(r *lipgloss.Renderer, img image.Image, maxCols int) []string {
	cols, rows := CellSize(img, maxCols)
	if cols == 0 {
		return nil
	}

	src := image.NewRGBA(img.Bounds())
	draw.Draw(src, src.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(src, src.Bounds(), img, img.Bounds().Min, draw.Over)

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	lines := make([]string, rows)
	var sb strings.Builder
	for y := 0; y < rows; y++ {
		sb.Reset()
		for x := 0; x < cols; x++ {
			top := hex(dst.RGBAAt(x, 2*y))
			bottom := hex(dst.RGBAAt(x, 2*y+1))
			sb.WriteString(r.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(upperHalf))
		}
		lines[y] = sb.String()
	}
	return lines
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
