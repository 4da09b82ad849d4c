package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/shinobix/pkg/app/styles"
)

// PageTracker follows the reader through the pages of a chapter.
type PageTracker struct {
	current int
	total   int
	width   int
}

func NewPageTracker(total, width int) *PageTracker {
	return &PageTracker{total: total, width: width}
}

func (p *PageTracker) Reset(total int) {
	p.current = 0
	p.total = total
}

func (p *PageTracker) SetWidth(width int) {
	p.width = width
}

func (p *PageTracker) Next() {
	if p.current < p.total-1 {
		p.current++
	}
}

func (p *PageTracker) Prev() {
	if p.current > 0 {
		p.current--
	}
}

// Current is the zero-based page index.
func (p *PageTracker) Current() int {
	return p.current
}

func (p *PageTracker) AtEnd() bool {
	return p.total == 0 || p.current == p.total-1
}

func (p *PageTracker) View() string {
	if p.total == 0 {
		return ""
	}

	page := p.current + 1
	percentage := float64(page) / float64(p.total) * 100
	label := fmt.Sprintf("Page %d/%d - %.0f%%", page, p.total, percentage)

	var b strings.Builder
	b.WriteString(renderProgressBar(page, p.total, p.width-4))
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(label))
	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}
