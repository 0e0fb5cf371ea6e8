package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const instructionTitle = "Welcome to QuizBot!"

var instructionParagraphs = []string{
	"QuizBot is here to test you on your Nobel Prize winner knowledge.",
	"Answer each question correctly to become a Nobel Prize history expert!",
	"If you need some help, feel free to ask QuizBot for hints and additional information.",
	`Type "Go" below and press Enter to start!`,
	"Good Luck!",
}

// sidePanelMinWidth is the terminal width from which the instructions get
// their own column next to the conversation.
const sidePanelMinWidth = 100

const sidePanelWidth = 34

// renderInstructions renders the static instruction panel at the given outer width
func renderInstructions(width int) string {
	inner := width - instructionPanelStyle.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	parts := []string{instructionTitleStyle.Width(inner).Render(instructionTitle)}
	for _, p := range instructionParagraphs {
		parts = append(parts, instructionTextStyle.Width(inner).Render(p))
	}
	return instructionPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// instructionHint is the one-line reminder used when there is no room for the panel
func instructionHint() string {
	return strings.TrimSuffix(instructionParagraphs[3], "!")
}
