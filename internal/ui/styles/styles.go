// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#CCCCCC"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#BBBBBB"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#777777"}

	AccentColor = lipgloss.AdaptiveColor{Light: "#0B5FFF", Dark: "#54A0FF"} // Focus, cursor, active tab

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#696969"}
	BorderFocusColor   = AccentColor

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}

	// Phase badge backgrounds
	PhaseIdleColor    = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#555555"}
	PhaseBusyColor    = lipgloss.AdaptiveColor{Light: "#0B5FFF", Dark: "#1A5276"}
	PhaseDoneColor    = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#1E8449"}
	PhaseFailureColor = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#922B21"}

	// Format badge colors, keyed by dataset format.
	FormatColors = map[string]lipgloss.AdaptiveColor{
		"csv":    {Light: "#1A7F37", Dark: "#73F59F"},
		"netcdf": {Light: "#0B5FFF", Dark: "#54A0FF"},
		"hdf5":   {Light: "#8250DF", Dark: "#CBA6F7"},
		"json":   {Light: "#9A6700", Dark: "#F9E2AF"},
	}

	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#0B5FFF", Dark: "#FFFFFF"}

	// Selection indicator style (">" prefix in lists)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	ButtonTextColor           = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor      = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	ButtonPrimaryFocusBgColor = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}
	ButtonDisabledBgColor     = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#2D2D2D"}

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true)

	PrimaryButtonStyle = baseButtonStyle.
				Foreground(ButtonTextColor).
				Background(ButtonPrimaryBgColor)

	PrimaryButtonFocusedStyle = baseButtonStyle.
					Foreground(ButtonTextColor).
					Background(ButtonPrimaryFocusBgColor).
					Underline(true).
					UnderlineSpaces(true)

	DisabledButtonStyle = baseButtonStyle.
				Foreground(TextMutedColor).
				Background(ButtonDisabledBgColor)

	// Form colors
	FormLabelStyle        = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	FormLabelFocusedStyle = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)

	// Toast notification colors
	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderInfoColor    = AccentColor
	ToastBorderWarnColor    = StatusWarningColor

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	MutedStyle   = lipgloss.NewStyle().Foreground(TextMutedColor)
	WarningStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true)

	// Loading spinner color
	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFF"}
)

// FormatBadge renders a dataset format as a small coloured tag.
func FormatBadge(format string) string {
	c, ok := FormatColors[format]
	if !ok {
		c = TextSecondaryColor
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("[" + format + "]")
}

// PhaseBadge renders a workflow phase label. busy and failed select the
// background; neither means idle, done means a successful terminal phase.
func PhaseBadge(label string, busy, done, failed bool) string {
	bg := PhaseIdleColor
	switch {
	case failed:
		bg = PhaseFailureColor
	case busy:
		bg = PhaseBusyColor
	case done:
		bg = PhaseDoneColor
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(ButtonTextColor).
		Background(bg).
		Render(label)
}
