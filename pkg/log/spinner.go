package log

import (
	"github.com/pterm/pterm"
)

const (
	ScanInProgressMsg        string = "Scanning for kits..."
	ScanInProgressSuccessMsg string = "Scanning for kits... Done."
	ScanInProgressErrorMsg   string = "Scanning for kits... Error."

	ActivationInProgressMsg        string = "Activating vendor environment..."
	ActivationInProgressSuccessMsg string = "Activating vendor environment... Done."
	ActivationInProgressErrorMsg   string = "Activating vendor environment... Error."
)

func GetPtermErrorStyle() *pterm.Style {
	return &pterm.Style{pterm.FgRed, pterm.Bold}
}

func GetPtermSuccessStyle() *pterm.Style {
	return &pterm.Style{pterm.FgGreen}
}

// Set this, so it can be checked and used in the logging process
// to ensure correct output
var currentProgressSpinner *pterm.SpinnerPrinter

func CreateCurrentProgressSpinner(style *pterm.Style, msg string) {
	// error can be ignored here since pterm doesn't return one
	if style != nil {
		currentProgressSpinner.Style = style
		currentProgressSpinner.MessageStyle = style
	}
	currentProgressSpinner, _ = pterm.DefaultSpinner.Start(msg)
}

func StopCurrentProgressSpinner(style *pterm.Style, msg string) {
	if style != nil {
		currentProgressSpinner.Style = style
		currentProgressSpinner.MessageStyle = style
	}

	if msg != "" {
		currentProgressSpinner.UpdateText(msg)
	}

	// error can be ignored here since pterm doesn't return one
	currentProgressSpinner.RemoveWhenDone = false
	_ = currentProgressSpinner.Stop()
	currentProgressSpinner = nil
}
