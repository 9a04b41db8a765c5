package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/result"
	"github.com/matzehuels/stormbolt/pkg/worker"
)

const (
	watchHistory   = 8
	previewColumns = 64
	previewRows    = 20
)

// previewRamp maps brightness to glyphs, darkest first.
var previewRamp = []rune(" .:-=+*#%@")

var (
	watchPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	watchPreviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("189"))
)

// =============================================================================
// WatchModel - Interactive strike console
// =============================================================================

// strikeMsg carries a finished strike back to the model.
type strikeMsg struct {
	resp worker.Response
}

// tickMsg schedules the next automatic strike.
type tickMsg time.Time

// WatchModel is the bubbletea model for the watch console.
type WatchModel struct {
	worker   *worker.Worker
	ctx      context.Context
	width    int
	height   int
	seeded   bool
	nextSeed uint64

	Auto     bool
	Interval time.Duration
	Running  bool
	Strikes  int
	Last     *worker.Response
	History  []strikeRow
	Preview  string
	Err      error
}

// NewWatchModel creates a watch model. A nil seed makes every strike random;
// otherwise seeds count up from it.
func NewWatchModel(ctx context.Context, w *worker.Worker, width, height int, seed *uint64) WatchModel {
	m := WatchModel{
		worker:   w,
		ctx:      ctx,
		width:    width,
		height:   height,
		Interval: time.Second,
	}
	if seed != nil {
		m.seeded = true
		m.nextSeed = *seed
	}
	return m
}

func (m WatchModel) Init() tea.Cmd {
	return m.strike()
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "enter", "s":
			if m.Running {
				return m, nil
			}
			m.Running = true
			return m, m.strike()
		case "a":
			m.Auto = !m.Auto
			if m.Auto && !m.Running {
				return m, m.tick()
			}
		}
	case strikeMsg:
		m.Running = false
		m.Strikes++
		resp := msg.resp
		m.Last = &resp
		m.Err = resp.Err
		if m.seeded {
			m.nextSeed = resp.Seed + 1
		}
		if resp.Err == nil {
			m.History = append([]strikeRow{{
				Seed:     resp.Seed,
				Segments: len(resp.Segments),
				Branches: len(resp.Branches),
				MaxWidth: resp.MaxWidth,
				Shake:    resp.ShakeIntensity,
				Struck:   resp.DidStrike,
			}}, m.History...)
			if len(m.History) > watchHistory {
				m.History = m.History[:watchHistory]
			}
			m.Preview = preview(resp.Image, previewColumns, previewRows)
		}
		if m.Auto {
			return m, m.tick()
		}
	case tickMsg:
		if m.Auto && !m.Running {
			m.Running = true
			return m, m.strike()
		}
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(iconBolt + " stormbolt watch"))
	b.WriteString("\n")
	auto := "off"
	if m.Auto {
		auto = fmt.Sprintf("every %s", m.Interval)
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("space strike  a auto (%s)  q quit", auto)))
	b.WriteString("\n\n")

	switch {
	case m.Last == nil:
		b.WriteString(StyleDim.Render("striking..."))
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + apperr.UserMessage(m.Err))
	default:
		b.WriteString(watchPanelStyle.Render(watchPreviewStyle.Render(m.Preview)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			StyleDim.Render("shake"),
			shakeBar(m.Last.ShakeIntensity, 30),
			StyleNumber.Render(fmt.Sprintf("%.2f", m.Last.ShakeIntensity))))
	}

	if len(m.History) > 0 {
		b.WriteString("\n")
		b.WriteString(strikeTable(m.History))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d strikes", m.Strikes)))
	return b.String()
}

func (m WatchModel) strike() tea.Cmd {
	req := worker.Request{Width: m.width, Height: m.height}
	if m.seeded {
		req = req.WithSeed(m.nextSeed)
	}
	w, ctx := m.worker, m.ctx
	return func() tea.Msg {
		return strikeMsg{resp: w.Strike(ctx, req)}
	}
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// preview renders im as text, one glyph per cell, brighter pixels denser.
func preview(im *result.Image, cols, rows int) string {
	if im == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	src := im.Decoded()
	if src == nil || src.Bounds().Empty() {
		return strings.Repeat(strings.Repeat(" ", cols)+"\n", rows-1) + strings.Repeat(" ", cols)
	}

	// Transparent pixels convert to black, so gray is alpha-weighted brightness.
	gray := image.NewGray(image.Rect(0, 0, cols, rows))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)

	var b strings.Builder
	last := len(previewRamp) - 1
	for y := range rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := range cols {
			v := int(gray.GrayAt(x, y).Y)
			b.WriteRune(previewRamp[v*last/255])
		}
	}
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// watchCommand creates the interactive watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		width, height int
		seedStr       string
		auto          bool
		interval      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Strike interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *uint64
			if seedStr != "" {
				s, err := apperr.ParseSeed(seedStr)
				if err != nil {
					return err
				}
				seed = &s
			}
			if interval <= 0 {
				return apperr.New(apperr.ErrCodeInvalidInput, "interval must be positive, got %s", interval)
			}
			if err := apperr.ValidateDimensions(width, height); err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			// No worker logger: log lines would tear the alternate screen.
			w := worker.New(worker.WithParams(cfg.Generator), worker.WithStyle(cfg.Style))
			m := NewWatchModel(cmd.Context(), w, width, height, seed)
			m.Auto = auto
			m.Interval = interval

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 640, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "canvas height in pixels")
	cmd.Flags().StringVar(&seedStr, "seed", "", "first seed; strikes count up from it")
	cmd.Flags().BoolVar(&auto, "auto", false, "strike automatically")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between automatic strikes")

	return cmd
}
