package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pullfeed/internal/config"
)

const AppName = "pullfeed"

var LogoLines = []string{
	"█▀█ █ █ █   █   █▀▀ █▀▀ █▀▀ █▀▄",
	"█▀▀ █ █ █   █   █▀  █▀  █▀  █ █",
	"▀    ▀▀ ▀▀▀ ▀▀▀ ▀   ▀▀▀ ▀▀▀ ▀▀ ",
}

const CompactLogo = `pullfeed ↻`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	UnreadColor  = lipgloss.Color("#FFE66D")
	ReadColor    = lipgloss.Color("#64748B")
	ErrorColor   = lipgloss.Color("#EF4444")
	SuccessColor = lipgloss.Color("#10B981")
)

// Styled components. Rebuilt by ApplyColors.
var (
	LogoStyle           lipgloss.Style
	TitleStyle          lipgloss.Style
	HeaderStyle         lipgloss.Style
	StatusBarStyle      lipgloss.Style
	UnreadItemStyle     lipgloss.Style
	ReadItemStyle       lipgloss.Style
	HelpStyle           lipgloss.Style
	TimeStyle           lipgloss.Style
	ModalTextStyle      lipgloss.Style
	ModalHighlightStyle lipgloss.Style
	ErrorMessageStyle   lipgloss.Style
	SeparatorStyle      lipgloss.Style
	StatusInfoStyle     lipgloss.Style
	StatusSuccessStyle  lipgloss.Style
	StatusWarnStyle     lipgloss.Style
	StatusErrorStyle    lipgloss.Style
	MutedStyle          lipgloss.Style
	FrameStyle          lipgloss.Style
	FocusedFrameStyle   lipgloss.Style

	// Empty style for resetting
	EmptyStyle = lipgloss.NewStyle()
)

func init() {
	buildStyles()
}

// ApplyColors overrides the palette with the configured colors. Empty
// entries keep their defaults.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	UnreadItemStyle = lipgloss.NewStyle().
		Foreground(UnreadColor).
		Bold(true)

	ReadItemStyle = lipgloss.NewStyle().
		Foreground(ReadColor)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	ModalTextStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	ModalHighlightStyle = lipgloss.NewStyle().
		Foreground(UnreadColor).
		Bold(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(UnreadColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	MutedStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	FrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Padding(0, 1)

	FocusedFrameStyle = FrameStyle.
		BorderForeground(AccentColor)
}

// readerHeader is the article title over a muted "feed • date" line, both
// cut to width.
func readerHeader(title, feedTitle string, published time.Time, width int) string {
	var meta []string
	if feedTitle != "" {
		meta = append(meta, feedTitle)
	}
	if !published.IsZero() {
		meta = append(meta, published.Format("Mon, Jan 2 2006 15:04"))
	}

	rows := []string{HeaderStyle.Render(truncateEnd(title, width-2))}
	if len(meta) > 0 {
		rows = append(rows, MutedStyle.Render(truncateEnd(strings.Join(meta, " • "), width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// inputFrame boxes a rendered text input; the border takes the accent color
// while the input has focus.
func inputFrame(view string, focused bool, width int) string {
	style := FrameStyle
	if focused {
		style = FocusedFrameStyle
	}
	return style.Width(width + 4).Render(view)
}

func centered(width, height int, content string) string {
	return EmptyStyle.
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

// GetWelcomeMessage is shown on an empty feed list. modifier is the
// configured key prefix, such as "ctrl+".
func GetWelcomeMessage(modifier string) string {
	return GetCompactBanner(fmt.Sprintf("Press %sn to add your first feed", modifier))
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// ShowBanner writes the boxed logo with the version tagline to w.
func ShowBanner(w io.Writer, version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	tagline := "Pull-to-refresh Feed Reader"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline += " " + version
	}
	lines = append(lines, tagline)

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	centered := lipgloss.NewStyle().Width(70).Align(lipgloss.Center)

	fmt.Fprintln(w, centered.Render(borderStyle.Render(banner)))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◆ ◇ ◆ ◇ ◆")
	fmt.Fprintln(w, centered.MarginBottom(1).Render(separator))
}
