// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/glint/pkg/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.inDetail {
		b.WriteString(m.viewport.View())
	} else if m.tab == TabTraces {
		b.WriteString(m.renderTraceList())
	} else {
		b.WriteString(m.renderLogList())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// =============================================================================
// Header Rendering
// =============================================================================

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("glint"))
	b.WriteString("  ")

	tabs := []struct {
		tab   Tab
		label string
	}{
		{TabTraces, fmt.Sprintf("Traces (%d)", len(m.traces))},
		{TabLogs, fmt.Sprintf("Logs (%d)", len(m.logs))},
	}
	for i, t := range tabs {
		if i > 0 {
			b.WriteString("  ")
		}
		if t.tab == m.tab {
			b.WriteString(activeTabStyle.Render(t.label))
		} else {
			b.WriteString(inactiveTabStyle.Render(t.label))
		}
	}

	if m.err != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	}
	return b.String()
}

// =============================================================================
// Footer Rendering
// =============================================================================

func (m Model) renderFooter() string {
	var keys []string
	if m.inDetail {
		keys = []string{"[J/K] Scroll", "[Esc] Back", "[Q] Quit"}
	} else if m.tab == TabTraces {
		keys = []string{"[J/K] Move", "[Enter] Open", "[Tab] Logs", "[R] Refresh", "[Q] Quit"}
	} else {
		keys = []string{"[J/K] Move", "[Tab] Traces", "[R] Refresh", "[Q] Quit"}
	}
	return footerStyle.Render(strings.Join(keys, "  "))
}

// =============================================================================
// Trace List Rendering
// =============================================================================

func (m Model) renderTraceList() string {
	if len(m.traces) == 0 {
		return dimStyle.Render("No traces yet. Point an OTLP exporter at localhost:4317.")
	}

	var b strings.Builder
	for i := range m.traces {
		t := &m.traces[i]

		service := "<unknown>"
		if t.ServiceName != nil {
			service = *t.ServiceName
		}
		line := fmt.Sprintf("%-20s %9s  %3d spans  %s",
			truncate(service, 20),
			formatDuration(t.DurationMS()),
			t.SpanCount(),
			truncate(rootName(t), 40))

		b.WriteString(m.renderListLine(i, line, t.HasErrors()))
		b.WriteString("\n")
	}
	return b.String()
}

func rootName(t *model.Trace) string {
	if root := t.RootSpan(); root != nil {
		return root.Name
	}
	if len(t.Spans) > 0 {
		return t.Spans[0].Name
	}
	return ""
}

// =============================================================================
// Log List Rendering
// =============================================================================

func (m Model) renderLogList() string {
	if len(m.logs) == 0 {
		return dimStyle.Render("No logs yet.")
	}

	var b strings.Builder
	for i := range m.logs {
		l := &m.logs[i]

		service := "<unknown>"
		if l.ServiceName != nil {
			service = *l.ServiceName
		}
		line := fmt.Sprintf("%s  %-5s %-16s %s",
			l.Time().Format("15:04:05.000"),
			l.Severity.Class(),
			truncate(service, 16),
			truncate(l.Body, 60))

		b.WriteString(m.renderListLine(i, line, l.IsError()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderListLine(i int, line string, isError bool) string {
	style := normalStyle
	if isError {
		style = errorStyle
	}
	if i == m.cursor {
		return cursorStyle.Render("> ") + selectedStyle.Render(line)
	}
	return "  " + style.Render(line)
}

// =============================================================================
// Trace Detail Rendering
// =============================================================================

// renderTraceDetail draws the span tree, children indented under their
// parents. Orphaned spans (parent not in the trace) render at the root
// level so nothing silently disappears.
func (m Model) renderTraceDetail(t *model.Trace) string {
	var b strings.Builder

	b.WriteString(filePathStyle.Render("Trace " + t.TraceID))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d spans, %s",
		t.SpanCount(), formatDuration(t.DurationMS()))))
	b.WriteString("\n\n")

	present := make(map[string]bool, len(t.Spans))
	for i := range t.Spans {
		present[t.Spans[i].SpanID] = true
	}

	for i := range t.Spans {
		s := &t.Spans[i]
		if s.IsRoot() || !present[*s.ParentSpanID] {
			m.renderSpanTree(&b, t, s, 0)
		}
	}
	return b.String()
}

func (m Model) renderSpanTree(b *strings.Builder, t *model.Trace, s *model.Span, depth int) {
	indent := strings.Repeat("  ", depth)

	line := fmt.Sprintf("%s%s %s (%s)",
		indent, spanKindBadge(s.Kind), s.Name, formatDuration(s.DurationMS()))
	if s.IsError() {
		b.WriteString(errorStyle.Render(line))
		if s.Status.Message != nil {
			b.WriteString(errorStyle.Render("  " + *s.Status.Message))
		}
	} else {
		b.WriteString(normalStyle.Render(line))
	}
	b.WriteString("\n")

	for key, val := range s.Attributes {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s    %s=%s", indent, key, val.String())))
		b.WriteString("\n")
	}

	for _, child := range t.ChildrenOf(s.SpanID) {
		m.renderSpanTree(b, t, child, depth+1)
	}
}

func spanKindBadge(k model.SpanKind) string {
	switch k {
	case model.SpanKindServer:
		return "SRV"
	case model.SpanKindClient:
		return "CLI"
	case model.SpanKindProducer:
		return "PRD"
	case model.SpanKindConsumer:
		return "CNS"
	case model.SpanKindInternal:
		return "INT"
	default:
		return "   "
	}
}

// =============================================================================
// Formatting helpers
// =============================================================================

func formatDuration(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.0fµs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.1fms", ms)
	default:
		return time.Duration(ms * float64(time.Millisecond)).Round(10 * time.Millisecond).String()
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
