package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"go.uber.org/zap"

	"folio/content"
	"folio/layout"
	"folio/reader"
	"folio/utils"
)

// chromeRows is what the shell adds around the content area: header row,
// status row and help row.
const chromeRows = 3

// AppModel is the bubbletea shell around the reading session. It owns no
// navigation state of its own: keys become abstract commands, the session
// applies them synchronously, and View reads the resulting frame.
type AppModel struct {
	session *reader.Session
	keys    KeyMap
	help    help.Model
	cfg     utils.Config
	log     *zap.Logger

	width  int
	height int
	ready  bool
}

func NewAppModel(book *content.Book, cfg utils.Config, log *zap.Logger) AppModel {
	if log == nil {
		log = zap.NewNop()
	}
	session := reader.NewSession(book, 80, 24, log)

	if pm, err := utils.LoadProgress(); err == nil {
		if p, ok := utils.GetProgress(pm, book.ID()); ok {
			session.Restore(p.ChapterID, p.FlatOffset)
		}
	}

	return AppModel{
		session: session,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		cfg:     cfg,
		log:     log,
	}
}

func (m AppModel) Init() tea.Cmd { return nil }

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w, h := m.contentSize()
		m.session.Apply(reader.Resize{Width: w, Height: h})
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		for _, cmd := range m.translate(msg) {
			if _, quit := cmd.(reader.Quit); quit {
				m.saveProgress()
				m.session.Apply(cmd)
				return m, tea.Quit
			}
			before := m.session.ChapterIndex()
			m.session.Apply(cmd)
			if m.session.ChapterIndex() != before {
				m.saveProgress()
			}
		}
		return m, nil
	}
	return m, nil
}

// contentSize is the viewport handed to the layout engine: terminal size
// minus chrome and the configured paddings, clamped so layout never sees a
// degenerate viewport.
func (m AppModel) contentSize() (int, int) {
	w := m.width - 2*m.cfg.Reader.HorizontalPadding
	h := m.height - chromeRows - 2*m.cfg.Reader.VerticalPadding
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// translate maps one key press to abstract session commands. The mapping is
// mode-aware: while the search overlay is typing, printable keys are query
// input, not navigation.
func (m AppModel) translate(msg tea.KeyMsg) []reader.Command {
	k := m.keys

	if m.session.Mode().InSearch() {
		switch {
		case msg.Type == tea.KeyCtrlC:
			return []reader.Command{reader.Quit{}}
		case key.Matches(msg, k.Back):
			return []reader.Command{reader.Cancel{}}
		case key.Matches(msg, k.Select):
			return []reader.Command{reader.CommitSelection{}}
		case msg.Type == tea.KeyUp:
			return []reader.Command{reader.SearchPrev{}}
		case msg.Type == tea.KeyDown:
			return []reader.Command{reader.SearchNext{}}
		case msg.Type == tea.KeyBackspace:
			return []reader.Command{reader.SearchInput{Backspace: true}}
		case msg.Type == tea.KeySpace:
			return []reader.Command{reader.SearchInput{Ch: ' '}}
		case msg.Type == tea.KeyRunes:
			cmds := make([]reader.Command, 0, len(msg.Runes))
			for _, r := range msg.Runes {
				cmds = append(cmds, reader.SearchInput{Ch: r})
			}
			return cmds
		}
		return nil
	}

	switch m.session.Mode() {
	case reader.ModeContents:
		switch {
		case msg.Type == tea.KeyCtrlC:
			return []reader.Command{reader.Quit{}}
		case key.Matches(msg, k.Back):
			return []reader.Command{reader.Cancel{}}
		case key.Matches(msg, k.Select):
			return []reader.Command{reader.CommitSelection{}}
		case key.Matches(msg, k.Up):
			return []reader.Command{reader.Scroll{Lines: -1}}
		case key.Matches(msg, k.Down):
			return []reader.Command{reader.Scroll{Lines: 1}}
		case key.Matches(msg, k.PageBack):
			return []reader.Command{reader.Scroll{Lines: -10}}
		case key.Matches(msg, k.PageForward):
			return []reader.Command{reader.Scroll{Lines: 10}}
		}

	default: // reading
		switch {
		case key.Matches(msg, k.Quit):
			return []reader.Command{reader.Quit{}}
		case key.Matches(msg, k.Up):
			return []reader.Command{reader.Scroll{Lines: -1}}
		case key.Matches(msg, k.Down):
			return []reader.Command{reader.Scroll{Lines: 1}}
		case key.Matches(msg, k.PageForward):
			return []reader.Command{reader.Page{Delta: 1}}
		case key.Matches(msg, k.PageBack):
			return []reader.Command{reader.Page{Delta: -1}}
		case key.Matches(msg, k.NextChapter):
			return []reader.Command{reader.ChapterStep{Delta: 1}}
		case key.Matches(msg, k.PrevChapter):
			return []reader.Command{reader.ChapterStep{Delta: -1}}
		case key.Matches(msg, k.Start):
			return []reader.Command{reader.JumpStart{}}
		case key.Matches(msg, k.End):
			return []reader.Command{reader.JumpEnd{}}
		case key.Matches(msg, k.Contents):
			return []reader.Command{reader.OpenContents{}}
		case key.Matches(msg, k.Search):
			return []reader.Command{reader.OpenSearch{}}
		}
	}
	return nil
}

func (m AppModel) View() string {
	if !m.ready {
		return "opening book…"
	}

	st := m.session.Status()
	rows := make([]string, 0, m.height)
	rows = append(rows, m.headerView(st))
	rows = append(rows, m.contentRows()...)
	rows = append(rows, m.statusView(st))
	rows = append(rows, m.help.View(m.keys))
	return strings.Join(rows, "\n")
}

func (m AppModel) headerView(st reader.Status) string {
	title := HeaderTitleStyle.Render(st.BookTitle)
	author := HeaderAuthorStyle.Render(" — " + st.Author)
	return truncate.StringWithTail(" "+title+author, uint(max(m.width, 1)), "…")
}

func (m AppModel) statusView(st reader.Status) string {
	left := fmt.Sprintf(" %s", st.ChapterTitle)
	right := fmt.Sprintf("ch %d/%d · page %d/%d · %s ",
		st.Chapter+1, st.ChapterCount, st.Page+1, st.PageCount, st.Mode)

	gap := m.width - gloss.Width(left) - gloss.Width(right)
	if gap < 1 {
		left = truncate.StringWithTail(left, uint(max(m.width-gloss.Width(right)-1, 1)), "…")
		gap = max(m.width-gloss.Width(left)-gloss.Width(right), 1)
	}
	return StatusStyle.Render(left) + strings.Repeat(" ", gap) + StatusMutedStyle.Render(right)
}

// contentRows renders exactly the content area: vertical padding plus the
// viewport, either the reading view or an overlay.
func (m AppModel) contentRows() []string {
	_, h := m.contentSize()
	vpad := m.cfg.Reader.VerticalPadding

	var body []string
	switch {
	case m.session.Mode() == reader.ModeContents:
		body = m.contentsOverlay(h)
	case m.session.Mode().InSearch():
		body = m.searchOverlay(h)
	default:
		body = m.readingRows(h)
	}

	rows := make([]string, 0, h+2*vpad)
	for i := 0; i < vpad; i++ {
		rows = append(rows, "")
	}
	rows = append(rows, body...)
	for i := 0; i < vpad; i++ {
		rows = append(rows, "")
	}
	return rows
}

func (m AppModel) readingRows(h int) []string {
	visible := m.session.Visible()
	rows := make([]string, h)
	for i := 0; i < h; i++ {
		if i < len(visible) {
			rows[i] = m.renderLine(visible[i])
		}
	}
	return rows
}

// renderLine turns one wrapped line into a styled terminal row. Blockquote
// bars and list bullets live in the padding gutter so they never disturb
// the wrapped columns.
func (m AppModel) renderLine(l layout.Line) string {
	hpad := m.cfg.Reader.HorizontalPadding
	gutter := strings.Repeat(" ", hpad)
	if hpad >= 2 && !l.Blank() {
		switch l.Kind {
		case content.Blockquote:
			gutter = GutterStyle.Render("│") + strings.Repeat(" ", hpad-1)
		case content.ListItem:
			if l.First {
				gutter = GutterStyle.Render("•") + strings.Repeat(" ", hpad-1)
			}
		}
	}

	var b strings.Builder
	b.WriteString(gutter)
	runes := []rune(l.Text)
	for _, r := range l.Styles {
		b.WriteString(m.spanStyle(l, r.Style).Render(string(runes[r.Start:r.End])))
	}
	return b.String()
}

func (m AppModel) spanStyle(l layout.Line, st content.Style) gloss.Style {
	base := TextStyle
	switch l.Kind {
	case content.Heading:
		base = HeadingStyle(l.Level)
	case content.Blockquote:
		base = QuoteStyle
	}
	if st.Has(content.Bold) {
		base = base.Bold(true)
	}
	if st.Has(content.Italic) {
		base = base.Italic(true)
	}
	return base
}

func (m AppModel) contentsOverlay(h int) []string {
	book := m.session.Book()
	cursor := m.session.TOCCursor()
	panelW := min(m.width-4, 64)
	if panelW < 16 {
		panelW = max(m.width-2, 8)
	}
	maxRows := max(h-4, 1)

	start := clampWindow(cursor, len(book.Chapters), maxRows)
	var sb strings.Builder
	sb.WriteString(PanelTitleStyle.Render(fmt.Sprintf("Contents · %d chapters", len(book.Chapters))))
	for i := start; i < len(book.Chapters) && i < start+maxRows; i++ {
		row := fmt.Sprintf("%3d  %s", i+1, book.Chapters[i].Title)
		row = truncate.StringWithTail(row, uint(max(panelW-2, 4)), "…")
		sb.WriteByte('\n')
		if i == cursor {
			sb.WriteString(SelectedStyle.Render("▶ " + row))
		} else {
			sb.WriteString(DimStyle.Render("  " + row))
		}
	}
	sb.WriteString("\n" + DimStyle.Render("enter select · esc close"))

	panel := PanelStyle.Width(panelW).Render(sb.String())
	return overlayRows(panel, m.width, h)
}

func (m AppModel) searchOverlay(h int) []string {
	results := m.session.Results()
	cursor := m.session.ResultCursor()
	panelW := min(m.width-4, 78)
	if panelW < 16 {
		panelW = max(m.width-2, 8)
	}
	maxRows := max(h-5, 1)

	var sb strings.Builder
	prompt := "/" + m.session.Query()
	if m.session.Mode() == reader.ModeSearchTyping {
		prompt += "█"
	}
	sb.WriteString(PromptStyle.Render(prompt))
	sb.WriteString("\n" + PanelTitleStyle.Render(fmt.Sprintf("Results (%d)", len(results))))

	start := clampWindow(cursor, len(results), maxRows)
	for i := start; i < len(results) && i < start+maxRows; i++ {
		e := results[i]
		row := fmt.Sprintf("ch %2d · %s", e.Chapter+1, renderMatch(e.Text, e.Col, e.Length))
		row = truncate.StringWithTail(row, uint(max(panelW-2, 4)), "…")
		sb.WriteByte('\n')
		if i == cursor {
			sb.WriteString(SelectedStyle.Render("▶ ") + row)
		} else {
			sb.WriteString("  " + row)
		}
	}
	if len(results) == 0 && m.session.Query() != "" {
		sb.WriteString("\n" + DimStyle.Render("  no matches"))
	}
	sb.WriteString("\n" + DimStyle.Render("↑↓ browse · enter go · esc close"))

	panel := PanelStyle.Width(panelW).Render(sb.String())
	return overlayRows(panel, m.width, h)
}

// renderMatch highlights the matched span inside a result line.
func renderMatch(text string, col, length int) string {
	runes := []rune(text)
	if col < 0 || col+length > len(runes) {
		return text
	}
	return string(runes[:col]) +
		MatchStyle.Render(string(runes[col:col+length])) +
		string(runes[col+length:])
}

// overlayRows centers a panel inside the content area and returns it as
// individual rows.
func overlayRows(panel string, w, h int) []string {
	placed := gloss.Place(w, h, gloss.Center, gloss.Center, panel)
	rows := strings.Split(placed, "\n")
	if len(rows) > h {
		rows = rows[:h]
	}
	for len(rows) < h {
		rows = append(rows, "")
	}
	return rows
}

// clampWindow picks the first visible index so the cursor stays in view.
func clampWindow(cursor, total, rows int) int {
	if total <= rows {
		return 0
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start > total-rows {
		start = total - rows
	}
	return start
}

func (m AppModel) saveProgress() {
	chID, flat := m.session.Position()
	if chID == "" {
		return
	}
	pm, err := utils.LoadProgress()
	if err != nil {
		m.log.Warn("progress unreadable, starting fresh", zap.Error(err))
		pm = make(map[string]utils.Progress)
	}
	utils.SetProgress(pm, m.session.Book().ID(), utils.Progress{
		ChapterID:  chID,
		FlatOffset: flat,
		LastRead:   time.Now(),
	})
	if err := utils.SaveProgress(pm); err != nil {
		m.log.Warn("saving progress failed", zap.Error(err))
	}
}

// Run drives the program until the reader quits.
func Run(book *content.Book, cfg utils.Config, log *zap.Logger) error {
	p := tea.NewProgram(NewAppModel(book, cfg, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
