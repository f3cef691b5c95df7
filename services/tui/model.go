// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui implements the interactive terminal explorer for stored
// telemetry.
//
// # Description
//
// The explorer reads directly from the local database, so it works
// whether or not a collector is running. Two tabs: recent traces with a
// drill-down span tree, and recent logs.
//
// # Thread Safety
//
// TUI components are designed for single-threaded use within the
// bubbletea event loop. Do not access TUI state from multiple
// goroutines.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/glint/pkg/model"
	"github.com/AleutianAI/glint/pkg/storage"
)

// =============================================================================
// Tabs
// =============================================================================

// Tab selects which signal the list pane shows.
type Tab int

const (
	// TabTraces lists recent traces.
	TabTraces Tab = iota

	// TabLogs lists recent log records.
	TabLogs
)

// =============================================================================
// Messages
// =============================================================================

// tracesLoadedMsg delivers a fresh page of traces.
type tracesLoadedMsg struct {
	traces []model.Trace
	err    error
}

// logsLoadedMsg delivers a fresh page of logs.
type logsLoadedMsg struct {
	logs []model.Log
	err  error
}

// tickMsg drives the periodic refresh.
type tickMsg time.Time

// =============================================================================
// Config
// =============================================================================

// Config configures the explorer.
type Config struct {
	// PageSize is how many traces or logs one refresh fetches.
	PageSize int

	// RefreshInterval is how often the list reloads from storage.
	// Zero disables automatic refresh; "r" still reloads manually.
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:        50,
		RefreshInterval: 2 * time.Second,
	}
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for the telemetry explorer.
type Model struct {
	config Config
	store  *storage.Storage

	// Current navigation state
	tab      Tab
	cursor   int
	inDetail bool

	// Loaded data
	traces []model.Trace
	logs   []model.Log
	err    error

	// Viewport for the detail pane
	viewport viewport.Model

	// Terminal dimensions
	width  int
	height int

	ready    bool
	quitting bool
}

// NewModel creates an explorer over the given store.
func NewModel(store *storage.Storage, config Config) Model {
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}
	return Model{config: config, store: store}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadTraces(), m.loadLogs()}
	if m.config.RefreshInterval > 0 {
		cmds = append(cmds, m.tick())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.updateDetailContent()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tracesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.traces = msg.traces
			m.clampCursor()
		}

	case logsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.logs = msg.logs
			m.clampCursor()
		}

	case tickMsg:
		cmds := []tea.Cmd{m.tick()}
		// Skip reloads while reading a trace so the tree does not
		// shift underfoot.
		if !m.inDetail {
			cmds = append(cmds, m.loadTraces(), m.loadLogs())
		}
		return m, tea.Batch(cmds...)
	}

	if m.inDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.inDetail {
			m.inDetail = false
		}

	case "tab":
		if !m.inDetail {
			m.toggleTab()
		}

	case "r", "R":
		return m, tea.Batch(m.loadTraces(), m.loadLogs())

	case "enter":
		if !m.inDetail && m.tab == TabTraces && m.cursor < len(m.traces) {
			m.inDetail = true
			m.updateDetailContent()
			m.viewport.GotoTop()
		}

	case "j", "down":
		if m.inDetail {
			m.viewport.LineDown(1)
		} else {
			m.cursor++
			m.clampCursor()
		}

	case "k", "up":
		if m.inDetail {
			m.viewport.LineUp(1)
		} else if m.cursor > 0 {
			m.cursor--
		}

	case "g", "home":
		if m.inDetail {
			m.viewport.GotoTop()
		} else {
			m.cursor = 0
		}

	case "G", "end":
		if m.inDetail {
			m.viewport.GotoBottom()
		} else {
			m.cursor = m.listLen() - 1
			m.clampCursor()
		}

	case "ctrl+d":
		if m.inDetail {
			m.viewport.HalfViewDown()
		}

	case "ctrl+u":
		if m.inDetail {
			m.viewport.HalfViewUp()
		}
	}

	return m, nil
}

// =============================================================================
// Navigation helpers
// =============================================================================

func (m *Model) toggleTab() {
	if m.tab == TabTraces {
		m.tab = TabLogs
	} else {
		m.tab = TabTraces
	}
	m.cursor = 0
}

func (m *Model) listLen() int {
	if m.tab == TabTraces {
		return len(m.traces)
	}
	return len(m.logs)
}

func (m *Model) clampCursor() {
	if n := m.listLen(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selectedTrace returns the trace under the cursor, or nil.
func (m *Model) selectedTrace() *model.Trace {
	if m.tab != TabTraces || m.cursor >= len(m.traces) {
		return nil
	}
	return &m.traces[m.cursor]
}

func (m *Model) updateDetailContent() {
	if !m.ready || !m.inDetail {
		return
	}
	if t := m.selectedTrace(); t != nil {
		m.viewport.SetContent(m.renderTraceDetail(t))
	}
}

// =============================================================================
// Commands
// =============================================================================

func (m Model) loadTraces() tea.Cmd {
	store, limit := m.store, m.config.PageSize
	return func() tea.Msg {
		traces, err := store.ListTraces("", limit)
		return tracesLoadedMsg{traces: traces, err: err}
	}
}

func (m Model) loadLogs() tea.Cmd {
	store, limit := m.store, m.config.PageSize
	return func() tea.Msg {
		logs, err := store.ListLogs("", limit)
		return logsLoadedMsg{logs: logs, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.config.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// =============================================================================
// Entry Point
// =============================================================================

// Run starts the explorer and blocks until the user quits.
func Run(store *storage.Storage, config Config) error {
	p := tea.NewProgram(NewModel(store, config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
