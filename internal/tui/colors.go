package tui

// Color constants for the taskflow TUI theme
const (
	// Base Colors
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (titles, user input)
	ColorSecondaryText = "#B1B8C7" // Secondary text
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorPlaceholder   = "#B1B8C7"
	ColorHelpText      = "240" // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, active borders
	ColorAccentBright = "#A78BFA" // Highlights, headers

	// State Colors
	ColorError   = "#EF4444" // Overdue, urgent, errors
	ColorSuccess = "#22C55E" // Completed
	ColorWarning = "#F59E0B" // Due soon, high priority
	ColorInfo    = "#3B82F6" // In progress
)
