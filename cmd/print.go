package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ANSI colors for terminal progress output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorBold   = "\033[1m"
)

var titleCaser = cases.Title(language.English)

// progress receives human-oriented output; stdout is reserved for results
var progress io.Writer = os.Stderr

func printHeader(title, subject string) {
	fmt.Fprintf(progress, "%s%s%s%s: %s%s%s\n", ColorBold, ColorBlue, title, ColorReset, ColorCyan, subject, ColorReset)
	fmt.Fprintf(progress, "%s%s%s\n\n", ColorBlue, strings.Repeat("═", 80), ColorReset)
}

func printStep(num int, title string) {
	fmt.Fprintf(progress, "%s%s%d%s %s%s%s\n", ColorBold, ColorPurple, num, ColorReset, ColorWhite, title, ColorReset)
}

func printSectionHeader(title string) {
	fmt.Fprintf(progress, "\n%s%s%s%s\n", ColorBold, ColorBlue, title, ColorReset)
	fmt.Fprintln(progress, strings.Repeat("-", len(title)))
}

func printSuccess(format string, args ...any) {
	fmt.Fprintf(progress, "   %s✓%s %s\n", ColorGreen, ColorReset, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintf(progress, "   %s⚠%s %s\n", ColorYellow, ColorReset, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintf(progress, "   %s✗%s %s\n", ColorRed, ColorReset, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Fprintf(progress, "   %s•%s %s\n", ColorCyan, ColorReset, fmt.Sprintf(format, args...))
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Fprintf(progress, "%-35s\n", key)
	} else {
		fmt.Fprintf(progress, "%-35s %s\n", key+":", value)
	}
}

func printResult(name string, success bool) {
	if success {
		fmt.Fprintf(progress, "%-20s %s✓ PASS%s\n", name+":", ColorGreen, ColorReset)
	} else {
		fmt.Fprintf(progress, "%-20s %s✗ FAIL%s\n", name+":", ColorRed, ColorReset)
	}
}

// eventTitle turns a timer event name such as "file_loading" into "File Loading"
func eventTitle(event string) string {
	return titleCaser.String(strings.ReplaceAll(event, "_", " "))
}
