package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"mailtriage/internal/model"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing terminal size..."
	}

	statusBarHeight := 1
	contentHeight := m.height - statusBarHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	var mainUIView string
	switch m.currentView {
	case viewAnalytics:
		mainUIView = m.renderAnalyticsView(m.width, contentHeight)
	default:
		listPaneTargetWidth := int(float64(m.width) * 0.40)
		listPaneWidth := listPaneTargetWidth
		if listPaneWidth < minListPaneWidth {
			listPaneWidth = minListPaneWidth
		}
		if listPaneWidth > m.width-minDetailPaneWidth && m.width > minDetailPaneWidth {
			listPaneWidth = m.width - minDetailPaneWidth
		}
		if listPaneWidth < 0 {
			listPaneWidth = 0
		}
		if listPaneWidth > m.width {
			listPaneWidth = m.width
		}
		detailPaneWidth := m.width - listPaneWidth
		if detailPaneWidth < 0 {
			detailPaneWidth = 0
		}

		listRendered := m.renderEmailList(listPaneWidth, contentHeight)
		detailRendered := m.renderDetailPane(detailPaneWidth, contentHeight)
		mainUIView = lipgloss.JoinHorizontal(lipgloss.Top, listRendered, detailRendered)
	}

	statusBarRendered := m.renderStatusBar()
	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, mainUIView, statusBarRendered))
}

func (m Model) renderEmailList(paneWidth, paneHeight int) string {
	title := ListTitleStyle.Render(fmt.Sprintf("Inbox (%d)", len(m.emails)))
	itemWidth := paneWidth - 4
	if itemWidth < 10 {
		itemWidth = 10
	}

	fit := 0
	if emailListItemHeight > 0 {
		fit = (paneHeight - lipgloss.Height(title)) / emailListItemHeight
	}
	if fit < 0 {
		fit = 0
	}

	startIdx := m.viewportTopLine
	if startIdx < 0 {
		startIdx = 0
	}
	if startIdx > len(m.emails) {
		startIdx = len(m.emails)
	}
	endIdx := startIdx + fit
	if endIdx > len(m.emails) {
		endIdx = len(m.emails)
	}

	var items []string
	for i := startIdx; i < endIdx; i++ {
		items = append(items, formatEmailListItem(m.emails[i], i == m.selectedIdx, itemWidth))
	}
	if len(m.emails) == 0 {
		items = append(items, SecondaryTextStyle.Render(" No emails. [L] loads the sample inbox."))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(items, "\n"))
	return ListStyle.Width(paneWidth).Height(paneHeight).Render(body)
}

func formatEmailListItem(email model.Email, isSelected bool, width int) string {
	subject := email.Subject
	if subject == "" {
		subject = "(No Subject)"
	}

	var line1 string
	if isSelected {
		line1 = SelectedItemStyle.Render("> " + truncate(subject, width-3))
	} else {
		line1 = NormalItemStyle.Render("  " + truncate(subject, width-3))
	}

	badge := priorityBadge(email.Priority)
	status := ""
	if email.Status == model.StatusResolved {
		status = ResolvedBadgeStyle.Render(" ✓resolved")
	} else if email.HasResponse {
		status = SentimentBadgeStyle.Render(" drafted")
	}
	meta := fmt.Sprintf("  %s · %s%s", truncate(email.Sender, width/2), badge, status)
	line2 := SecondaryTextStyle.Render(truncate(meta, width))

	return line1 + "\n" + line2 + "\n"
}

func priorityBadge(priority string) string {
	switch priority {
	case model.PriorityUrgent:
		return UrgentBadgeStyle.Render(priority)
	case model.PriorityHigh:
		return HighBadgeStyle.Render(priority)
	default:
		return priority
	}
}

func (m Model) renderDetailPane(paneWidth, paneHeight int) string {
	if paneWidth <= 0 || paneHeight <= 0 {
		return ""
	}

	styledTitle := TitleStyle.Render("Placeholder")
	maxContentHeight := paneHeight - lipgloss.Height(styledTitle) - ContentBoxStyle.GetVerticalPadding()
	if maxContentHeight < 0 {
		maxContentHeight = 0
	}

	selected := m.controller.Selected()
	var titleText, content string

	if selected == nil {
		titleText = "Home"
		content = lipgloss.NewStyle().
			Width(paneWidth - ContentBoxStyle.GetHorizontalPadding()).
			MaxHeight(maxContentHeight).
			Padding(1).Render("\nNo email selected.\n\nNavigate with j/k and press Enter to open one.")
	} else {
		titleText = "Email: " + truncate(selected.Subject, paneWidth-16)

		var b strings.Builder
		b.WriteString(fmt.Sprintf("%s %s\n", HeaderKeyStyle.Render("From:"), HeaderValStyle.Render(truncate(selected.Sender, paneWidth-10))))
		dateStr := "N/A"
		if !selected.SentDate.IsZero() {
			dateStr = selected.SentDate.Local().Format(time.RFC1123)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", HeaderKeyStyle.Render("Date:"), HeaderValStyle.Render(dateStr)))
		b.WriteString(fmt.Sprintf("%s %s (%.0f%%)   %s %s\n",
			HeaderKeyStyle.Render("Sentiment:"), HeaderValStyle.Render(selected.Sentiment), selected.SentimentConfidence*100,
			HeaderKeyStyle.Render("Priority:"), priorityBadge(selected.Priority)))
		b.WriteString("\n" + strings.Repeat("─", paneWidth/2) + "\n")
		b.WriteString(truncate(strings.ReplaceAll(selected.Body, "\r\n", "\n"), 600))
		b.WriteString("\n" + strings.Repeat("─", paneWidth/2) + "\n")

		draft := m.draftBuffer
		if m.editingDraft {
			b.WriteString(HeaderKeyStyle.Render("Draft (editing):") + "\n")
			b.WriteString(EditingStyle.Render(draft + "▌"))
		} else if draft != "" {
			b.WriteString(HeaderKeyStyle.Render("Draft:") + "\n")
			b.WriteString(DraftStyle.Render(draft))
		} else {
			b.WriteString(SecondaryTextStyle.Render("No draft yet. [G] generates one."))
		}

		content = lipgloss.NewStyle().
			Width(paneWidth - ContentBoxStyle.GetHorizontalPadding()).
			MaxHeight(maxContentHeight).
			Render(b.String())
	}

	styledTitle = TitleStyle.Render(titleText)
	return ContentBoxStyle.Width(paneWidth).Height(paneHeight).Render(
		lipgloss.JoinVertical(lipgloss.Top, styledTitle, content),
	)
}

func (m Model) renderAnalyticsView(paneWidth, paneHeight int) string {
	styledTitle := TitleStyle.Render("Analytics")
	maxContentHeight := paneHeight - lipgloss.Height(styledTitle) - ContentBoxStyle.GetVerticalPadding()
	if maxContentHeight < 0 {
		maxContentHeight = 0
	}

	var b strings.Builder
	if m.analytics == nil {
		b.WriteString("No analytics yet.")
	} else {
		a := m.analytics
		b.WriteString(fmt.Sprintf("%s %d total, %d pending, %d resolved\n",
			HeaderKeyStyle.Render("Emails:"), a.TotalEmails, a.PendingEmails, a.ResolvedEmails))
		b.WriteString(fmt.Sprintf("%s %d with responses, %d without\n\n",
			HeaderKeyStyle.Render("Responses:"), a.EmailsWithResponses, a.EmailsWithoutResponses))
		b.WriteString(HeaderKeyStyle.Render("Sentiment:") + "\n")
		b.WriteString(renderDistribution(a.SentimentDistribution))
		b.WriteString("\n" + HeaderKeyStyle.Render("Priority:") + "\n")
		b.WriteString(renderDistribution(a.PriorityDistribution))
		if a.AIEngine != "" {
			b.WriteString("\n" + SecondaryTextStyle.Render("Engine: "+a.AIEngine))
		}
	}

	content := lipgloss.NewStyle().
		Width(paneWidth - ContentBoxStyle.GetHorizontalPadding()).
		MaxHeight(maxContentHeight).
		Render(b.String())

	return ContentBoxStyle.Width(paneWidth).Height(paneHeight).Render(
		lipgloss.JoinVertical(lipgloss.Top, styledTitle, content),
	)
}

func renderDistribution(dist map[string]int) string {
	if len(dist) == 0 {
		return SecondaryTextStyle.Render("  (none)") + "\n"
	}
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		bar := strings.Repeat("█", dist[k])
		b.WriteString(fmt.Sprintf("  %-10s %s %d\n", k, bar, dist[k]))
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	styleToUse := StatusBarNormalStyle
	if m.statusIsError {
		styleToUse = StatusBarErrorStyle
	} else if m.statusIsTemp {
		styleToUse = StatusBarSuccessStyle
	}
	return styleToUse.Width(m.width).Render(truncate(m.statusBarText, m.width))
}
