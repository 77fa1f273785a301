package tui

import "github.com/charmbracelet/lipgloss"

var (
	AppStyle = lipgloss.NewStyle().Padding(0, 0)

	ListTitleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1).MarginLeft(1).Foreground(lipgloss.Color("63"))
	ListStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(lipgloss.Color("240")).PaddingRight(1)

	NormalItemStyle     = lipgloss.NewStyle().PaddingLeft(1)
	SelectedItemStyle   = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("231")).Bold(true)
	SecondaryTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "244"})
	ResolvedBadgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
	UrgentBadgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	HighBadgeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	SentimentBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("189"))

	ContentBoxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
	TitleStyle      = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("63")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	HeaderKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	HeaderValStyle  = lipgloss.NewStyle()
	DraftStyle      = lipgloss.NewStyle().MarginTop(1)
	EditingStyle    = lipgloss.NewStyle().MarginTop(1).Foreground(lipgloss.Color("229"))

	StatusBarNormalStyle  = lipgloss.NewStyle().Background(lipgloss.Color("235")).Foreground(lipgloss.Color("250")).Padding(0, 1)
	StatusBarSuccessStyle = lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	StatusBarErrorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("196")).Foreground(lipgloss.Color("255")).Padding(0, 1)
)
