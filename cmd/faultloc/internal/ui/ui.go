package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/faultloc-lite/interaction/domain"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// PrintHeader prints a section header
func PrintHeader(title string) {
	line := strings.Repeat("=", len(title)+4)
	fmt.Printf("\n%s%s%s\n", colorBold+colorBlue, line, colorReset)
	fmt.Printf("%s  %s  %s\n", colorBold+colorBlue, title, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBold+colorBlue, line, colorReset)
}

// PrintStep prints a step in progress
func PrintStep(message string) {
	fmt.Printf("%s▶%s %s\n", colorCyan, colorReset, message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("%s✗%s %s\n", colorRed, colorReset, message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, message)
}

// PrintInfo prints an informational message
func PrintInfo(message string) {
	fmt.Printf("  %s\n", message)
}

// PrintProgress prints a progress bar
func PrintProgress(current, total int, prefix string) {
	if total == 0 {
		return
	}

	percentage := float64(current) / float64(total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * float64(current) / float64(total))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Printf("\r%s [%s%s%s] %d/%d (%.1f%%)",
		prefix, colorGreen, bar, colorReset, current, total, percentage)

	if current >= total {
		fmt.Println()
	}
}

// PrintInteraction prints one interaction. Correct ones are highlighted.
func PrintInteraction(rank int, a domain.Assignment, correct bool) {
	if correct {
		fmt.Printf("  %s%d.%s %s%s%s\n", colorBold, rank, colorReset, colorGreen, a, colorReset)
		return
	}
	fmt.Printf("  %s%d.%s %s\n", colorBold, rank, colorReset, a)
}

// PrintOutcome prints the outcome of a search with a color matching how
// conclusive it is.
func PrintOutcome(status string) {
	color := colorYellow
	switch status {
	case domain.OutcomeConverged.String():
		color = colorGreen
	case "TIMEOUT", "ERROR", domain.OutcomeNoResult.String():
		color = colorRed
	}
	fmt.Printf("\n%sOutcome:%s %s%s%s\n", colorBold, colorReset, color, status, colorReset)
}

// PrintCounts prints the cost of a search.
func PrintCounts(verifications, creations int, elapsed time.Duration) {
	fmt.Printf("Verifications: %d\n", verifications)
	if creations >= 0 {
		fmt.Printf("Creations:     %d\n", creations)
	} else {
		fmt.Printf("Creations:     %s-%s\n", colorGray, colorReset)
	}
	fmt.Printf("Elapsed:       %s\n", formatDuration(elapsed))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// PrintTable prints a simple table
func PrintTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Printf("%s%-*s%s  ", colorBold, widths[i], h, colorReset)
	}
	fmt.Println()

	for _, w := range widths {
		fmt.Print(strings.Repeat("-", w) + "  ")
	}
	fmt.Println()

	for _, row := range rows {
		for i, cell := range row {
			fmt.Printf("%-*s  ", widths[i], cell)
		}
		fmt.Println()
	}
}

// FormatDuration formats a duration for display (exported version)
func FormatDuration(d time.Duration) string {
	return formatDuration(d)
}
