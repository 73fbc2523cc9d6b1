package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// metricKind selects the color of a summary metric.
type metricKind int

const (
	metricPlain metricKind = iota
	metricSuccess
	metricFail
	metricWarn
)

// colorScheme defines consistent colors for different metric types.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: warning metrics
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

// formatMetric formats "label: value", colorizing when enabled.
func formatMetric(label string, value interface{}, useColor bool, kind metricKind) string {
	if !useColor {
		return fmt.Sprintf("%s: %v", label, value)
	}

	scheme := newColorScheme()
	valueColor := scheme.value
	switch kind {
	case metricSuccess:
		valueColor = scheme.success
	case metricFail:
		valueColor = scheme.fail
	case metricWarn:
		valueColor = scheme.warn
	}
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), valueColor.Sprintf("%v", value))
}
