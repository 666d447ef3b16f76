package status

import (
	"fmt"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 35 // base width for the saved file path
)

// 📝 formatSyncOperation formats one copy result as a console line
func formatSyncOperation(file, dest string, err error) string {
	var symbol rune
	var symbolColor color.Attribute
	if err != nil {
		symbol = '✗'
		symbolColor = color.FgRed
	} else {
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, file),
		color.New(color.Faint).Sprint("→"),
		color.New(color.FgCyan).Sprint(dest))

	if err != nil {
		line += " " + color.New(color.FgRed).Sprint(err.Error())
	}
	return line
}

// 📝 formatBanner formats a lifecycle transition line
func formatBanner(msg string) string {
	name := color.New(color.Bold, color.FgCyan).Sprint("savesync")
	return fmt.Sprintf("%s %s", name, color.New(color.Faint).Sprint("• "+msg))
}

// 📝 formatIndicator formats the transient status line
func formatIndicator(text string) string {
	if text == IdleText {
		return color.New(color.Faint).Sprint("◦ " + text)
	}
	return fmt.Sprintf("%s %s", color.New(color.FgGreen).Sprint("●"), text)
}
