package utils

import (
	"fmt"
	"io"
	"math"
	"os"
)

// Color output helpers
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
)

// Output is where the Print helpers write. Tests swap it out.
var Output io.Writer = os.Stdout

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorGreen+"✓ "+msg+ColorReset+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorRed+"✗ "+msg+ColorReset+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorCyan+"ℹ "+msg+ColorReset+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	fmt.Fprintf(Output, ColorYellow+"⚠ "+msg+ColorReset+"\n", args...)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// Money rounds a baht amount half away from zero to two decimals.
func Money(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatMoney renders an amount the way receipts and reports show it.
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", Money(v))
}
