// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#CCCCCC"} // Shortcut names
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#BBBBBB"} // Commands, ids
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#696969"} // Unfocused borders
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#D29922", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Instance state colors
	StateLaunchingColor = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#CBA6F7"}
	StateRunningColor   = StatusSuccessColor
	StateStoppingColor  = StatusWarningColor

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	// Toast notification colors
	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	// Form colors
	FormLabelColor        = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#8C8C8C"}
	FormFocusedLabelColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	// Loading spinner color
	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFF"}
)

var (
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	NameStyle    = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	CmdStyle     = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	HintStyle    = lipgloss.NewStyle().Foreground(TextMutedColor)
	SpinnerStyle = lipgloss.NewStyle().Foreground(SpinnerColor)

	badgeStyle = lipgloss.NewStyle().Bold(true)

	LaunchingBadgeStyle = badgeStyle.Foreground(StateLaunchingColor)
	RunningBadgeStyle   = badgeStyle.Foreground(StateRunningColor)
	StoppingBadgeStyle  = badgeStyle.Foreground(StateStoppingColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	ConnectedStyle    = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	DisconnectedStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)

// ApplyTheme overrides the muted, error and success colors. Empty strings
// keep the defaults. Styles derived from the colors are rebuilt.
func ApplyTheme(muted, errorColor, success string) {
	if muted != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		BorderDefaultColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
	}
	if errorColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errorColor, Dark: errorColor}
	}
	if success != "" {
		StatusSuccessColor = lipgloss.AdaptiveColor{Light: success, Dark: success}
		StateRunningColor = StatusSuccessColor
	}

	HintStyle = HintStyle.Foreground(TextMutedColor)
	RunningBadgeStyle = RunningBadgeStyle.Foreground(StateRunningColor)
	ConnectedStyle = ConnectedStyle.Foreground(StatusSuccessColor)
	DisconnectedStyle = DisconnectedStyle.Foreground(StatusErrorColor)
	ErrorStyle = ErrorStyle.Foreground(StatusErrorColor)
}
