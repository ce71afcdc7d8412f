package pipeline

import (
	"encoding/json"
	"strconv"
)

const pageWindow = 2

// PageItem is a page number, or an ellipsis when Number is zero.
type PageItem struct {
	Number int
}

// Ellipsis marks a collapsed run of pages.
var Ellipsis = PageItem{}

func (p PageItem) IsEllipsis() bool { return p.Number == 0 }

func (p PageItem) String() string {
	if p.IsEllipsis() {
		return "..."
	}
	return strconv.Itoa(p.Number)
}

// MarshalJSON writes page numbers as numbers and the ellipsis as "...".
func (p PageItem) MarshalJSON() ([]byte, error) {
	if p.IsEllipsis() {
		return json.Marshal("...")
	}
	return json.Marshal(p.Number)
}

// VisiblePages lists the first and last page plus every page within two of current.
// A gap of one page is filled with that page, larger gaps become an ellipsis.
func VisiblePages(current, total int) []PageItem {
	var window []int
	for i := 1; i <= total; i++ {
		if i == 1 || i == total || (i >= current-pageWindow && i <= current+pageWindow) {
			window = append(window, i)
		}
	}

	out := make([]PageItem, 0, len(window)+2)
	last := 0
	for _, i := range window {
		if last != 0 {
			switch i - last {
			case 1:
			case 2:
				out = append(out, PageItem{Number: last + 1})
			default:
				out = append(out, Ellipsis)
			}
		}
		out = append(out, PageItem{Number: i})
		last = i
	}
	return out
}
