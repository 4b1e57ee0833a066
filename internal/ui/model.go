// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Source
	source    string
	container string

	// Stream
	mode            string
	framesPerPacket int
	sampleRate      int
	channels        int
	bitDepth        int
	outputRate      int

	// Playback
	state       string
	endOfStream bool
	volume      int
	muted       bool

	// Stats
	decoded        int64
	played         int64
	bytes          int64
	pages          int64
	checksumErrors int64
	queueDepth     int

	// Debug
	showDebug bool
	streamID  string

	volumeCtrl *VolumeControl

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderStreamInfo()
	s += m.renderControls()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders the source and playback state
func (m Model) renderHeader() string {
	source := "(none)"
	if m.source != "" {
		source = truncate(m.source, 45)
	}

	state := m.state
	if m.endOfStream && state == "playing" {
		state = "draining"
	}

	return fmt.Sprintf(`┌─ Speex Player ───────────────────────────────────────┐
│ Source: %-45s │
│ State:  %-45s │
├──────────────────────────────────────────────────────┤
`, source, state)
}

// renderStreamInfo renders the decoded stream format
func (m Model) renderStreamInfo() string {
	if m.sampleRate == 0 {
		return "│ No stream                                            │\n"
	}

	s := fmt.Sprintf("│ Container: %-42s │\n", m.container)
	s += fmt.Sprintf("│ Speex:     %-42s │\n",
		fmt.Sprintf("%s, %d frames/packet", m.mode, m.framesPerPacket))
	s += fmt.Sprintf("│ Format:    %-42s │\n",
		fmt.Sprintf("%dHz %s %d-bit", m.sampleRate, channelName(m.channels), m.bitDepth))
	if m.outputRate != 0 && m.outputRate != m.sampleRate {
		s += fmt.Sprintf("│ Output:    %-42s │\n", fmt.Sprintf("resampled to %dHz", m.outputRate))
	}

	return s
}

// renderControls renders volume and queue status
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %3d%%%-25s │\n"+
		"│ Queue:  %-45s │\n",
		volumeBar, m.volume, muteIcon,
		fmt.Sprintf("%d buffers", m.queueDepth))
}

// renderStats renders playback statistics
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Stats:  %-45s │
│         %-45s │
`, fmt.Sprintf("Decoded: %d  Played: %d  Bytes: %d", m.decoded, m.played, m.bytes),
		fmt.Sprintf("Pages: %d  Bad checksums: %d", m.pages, m.checksumErrors))
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  m:Mute  d:Debug  q:Quit                  │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Stream ID:   %-37s │
│   End of input: %-36v │
`, m.streamID, m.endOfStream)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.sendQuit()
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.sendVolume()
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.sendVolume()
		}
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

func (m Model) sendQuit() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Quit <- QuitMsg{}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Source != "" {
		m.source = msg.Source
	}
	if msg.Container != "" {
		m.container = msg.Container
	}
	if msg.SampleRate != 0 {
		m.mode = msg.Mode
		m.framesPerPacket = msg.FramesPerPacket
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
		m.outputRate = msg.OutputRate
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.EndOfStream != nil {
		m.endOfStream = *msg.EndOfStream
	}
	if msg.StreamID != "" {
		m.streamID = msg.StreamID
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	if msg.Stats != nil {
		m.decoded = msg.Stats.Decoded
		m.played = msg.Stats.Played
		m.bytes = msg.Stats.Bytes
		m.pages = msg.Stats.Pages
		m.checksumErrors = msg.Stats.ChecksumErrors
		m.queueDepth = msg.Stats.QueueDepth
	}
}

// StatusMsg updates TUI state. Zero fields are left unchanged.
type StatusMsg struct {
	Source          string
	Container       string
	StreamID        string
	Mode            string
	FramesPerPacket int
	SampleRate      int
	Channels        int
	BitDepth        int
	OutputRate      int
	State           string
	EndOfStream     *bool
	Volume          int
	Stats           *StatsUpdate
}

// StatsUpdate carries playback counters
type StatsUpdate struct {
	Decoded        int64
	Played         int64
	Bytes          int64
	Pages          int64
	ChecksumErrors int64
	QueueDepth     int
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}
