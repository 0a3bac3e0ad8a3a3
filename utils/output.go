package utils

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Out receives the console trace.
var Out io.Writer = color.Output

func Banner(format string, a ...interface{}) {
	fmt.Fprintf(Out, "\n %s %s\n\n", color.CyanString("▶"), fmt.Sprintf(format, a...))
}

func Step(number int, title string) {
	fmt.Fprintf(Out, "\n %s %d. %s\n", color.YellowString("▶"), number, title)
}

func Info(format string, a ...interface{}) {
	fmt.Fprintf(Out, "   → %s\n", fmt.Sprintf(format, a...))
}

func Success(format string, a ...interface{}) {
	fmt.Fprintf(Out, "   %s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func Skipped(format string, a ...interface{}) {
	fmt.Fprintf(Out, "   %s %s\n", color.HiBlackString("-"), fmt.Sprintf(format, a...))
}

func Warn(format string, a ...interface{}) {
	fmt.Fprintf(Out, "   %s %s\n", color.YellowString("!"), color.YellowString(format, a...))
}

func Fail(format string, a ...interface{}) {
	fmt.Fprintf(Out, "\n %s %s\n", color.RedString("✗"), color.RedString(format, a...))
}

func Done(format string, a ...interface{}) {
	fmt.Fprintf(Out, "\n %s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}
