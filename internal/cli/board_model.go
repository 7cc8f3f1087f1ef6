package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/planner"
	"github.com/alexanderramin/planboard/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type boardLoadedMsg struct{ err error }

// boardChangedMsg is sent when background fetches or an eviction changed the
// board.
type boardChangedMsg struct{}

type sideTablesMsg struct {
	tables service.SideTables
	err    error
}

type boardActionMsg struct {
	status     string
	err        error
	reloadSide bool
}

// boardModel renders the virtualized week board and drives keyboard drags.
type boardModel struct {
	app   *App
	ctx   context.Context
	board *planner.Board
	keys  boardKeyMap
	help  help.Model

	colWidth int
	width    int
	height   int

	cursorDay string
	cursorRow int
	grabbed   string // entry id while a drag is in progress

	status   string
	err      error
	quitting bool
}

func newBoardModel(ctx context.Context, app *App, board *planner.Board) boardModel {
	h := help.New()
	h.Styles.ShortKey = formatter.StyleYellow
	h.Styles.FullKey = formatter.StyleYellow
	h.Styles.ShortDesc = formatter.StyleDim
	h.Styles.FullDesc = formatter.StyleDim

	width := app.Config.ColumnWidth
	if width <= 0 {
		width = 1
	}
	return boardModel{
		app:      app,
		ctx:      ctx,
		board:    board,
		keys:     newBoardKeyMap(app.Config.Keys),
		help:     h,
		colWidth: width,
	}
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.sideTablesCmd())
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.board.Resize(msg.Width)
		return m.synced(), nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.cursorDay = domain.DateKey(m.board.Today())
		m.cursorRow = 0
		return m.synced(), nil

	case sideTablesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.board.SetSideTables(msg.tables.Subtasks, msg.tables.Entries)
		return m, nil

	case boardChangedMsg:
		return m.synced(), nil

	case boardActionMsg:
		m.status, m.err = msg.status, msg.err
		if msg.reloadSide {
			return m.synced(), m.sideTablesCmd()
		}
		return m.synced(), nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.board.Close()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Cancel):
		if m.grabbed != "" {
			m.board.DragCancel()
			m.grabbed = ""
			m.status = "Move cancelled"
		}
	case key.Matches(msg, m.keys.Left):
		m.moveDay(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveDay(1)
	case key.Matches(msg, m.keys.PrevWeek):
		m.moveDay(-domain.DaysPerWeek)
	case key.Matches(msg, m.keys.NextWeek):
		m.moveDay(domain.DaysPerWeek)
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Grab):
		return m.grabOrDrop()
	case key.Matches(msg, m.keys.Today):
		if m.grabbed != "" {
			return m, nil
		}
		return m, m.todayCmd()
	case key.Matches(msg, m.keys.Complete, m.keys.Delete, m.keys.Undo):
		if m.grabbed != "" {
			m.status = "Drop or cancel the move first"
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Complete):
			return m, m.toggleCmd()
		case key.Matches(msg, m.keys.Delete):
			return m, m.deleteCmd()
		default:
			return m, m.undoCmd()
		}
	}
	return m.synced(), nil
}

func (m boardModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	step := m.colWidth
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.board.Wheel(0, -step)
	case tea.MouseButtonWheelDown:
		m.board.Wheel(0, step)
	case tea.MouseButtonWheelLeft:
		m.board.Wheel(-step, 0)
	case tea.MouseButtonWheelRight:
		m.board.Wheel(step, 0)
	default:
		return m, nil
	}
	if m.grabbed == "" {
		v := m.board.View()
		if !m.dayVisible(v, dayIndex(v.Days, m.cursorDay)) {
			m.cursorDay = v.Controlling.ID
			m.cursorRow = 0
		}
	}
	return m.synced(), nil
}

// ── cursor and drag ──────────────────────────────────────────────────────────

func (m *boardModel) moveDay(delta int) {
	v := m.board.View()
	if len(v.Days) == 0 {
		return
	}
	i := dayIndex(v.Days, m.cursorDay)
	if i < 0 {
		i = max(dayIndex(v.Days, v.Controlling.ID), 0)
	}
	j := min(max(i+delta, 0), len(v.Days)-1)

	if m.grabbed != "" && j != i {
		target := v.Days[j].ID
		col := v.Tasks(target)
		ev := planner.DragEvent{ActiveID: m.grabbed, ActiveType: planner.ActiveTask, OverContainerID: target}
		if m.cursorRow < len(col) {
			ev.OverID = col[m.cursorRow].EntryID
		}
		m.board.DragOver(ev)
	}
	m.cursorDay = v.Days[j].ID
	m.reveal(v, j)
}

// reveal scrolls the least distance that brings column j fully into view.
// Scrolling also lets the board expand its range at either end.
func (m *boardModel) reveal(v planner.BoardView, j int) {
	start := j * m.colWidth
	end := start + m.colWidth
	offset := v.ScrollOffset
	switch {
	case start < offset:
		offset = start
	case end > offset+v.ViewportWidth:
		offset = end - v.ViewportWidth
	}
	m.board.ScrollTo(offset)
}

func (m boardModel) dayVisible(v planner.BoardView, j int) bool {
	if j < 0 {
		return false
	}
	start := j * m.colWidth
	return start >= v.ScrollOffset && start+m.colWidth <= v.ScrollOffset+v.ViewportWidth
}

func (m *boardModel) moveRow(delta int) {
	col := m.board.View().Tasks(m.cursorDay)
	if len(col) == 0 {
		m.cursorRow = 0
		return
	}
	j := min(max(m.cursorRow+delta, 0), len(col)-1)
	if m.grabbed != "" && j != m.cursorRow {
		m.board.DragOver(planner.DragEvent{
			ActiveID:        m.grabbed,
			ActiveType:      planner.ActiveTask,
			OverContainerID: m.cursorDay,
			OverID:          col[j].EntryID,
		})
	}
	m.cursorRow = j
}

func (m boardModel) grabOrDrop() (tea.Model, tea.Cmd) {
	if m.grabbed == "" {
		t, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		err := m.board.DragStart(planner.DragEvent{
			ActiveID:          t.EntryID,
			ActiveType:        planner.ActiveTask,
			SourceContainerID: m.cursorDay,
		})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.grabbed = t.EntryID
		m.status = "Moving " + t.Title
		return m, nil
	}

	ev := planner.DragEvent{ActiveID: m.grabbed, ActiveType: planner.ActiveTask, OverContainerID: m.cursorDay}
	m.grabbed = ""
	board, ctx := m.board, m.ctx
	return m, func() tea.Msg {
		if err := board.DragEnd(ctx, ev); err != nil {
			return boardActionMsg{err: err}
		}
		return boardActionMsg{status: "Moved"}
	}
}

// synced reconciles the cursor with the board after anything changed it.
func (m boardModel) synced() boardModel {
	v := m.board.View()
	if len(v.Days) == 0 {
		return m
	}
	if m.grabbed != "" {
		if !v.Dragging {
			m.grabbed = ""
		} else {
			for day, col := range v.ByDay {
				if i := entryIndex(col, m.grabbed); i >= 0 {
					m.cursorDay, m.cursorRow = day, i
					return m
				}
			}
		}
	}
	if dayIndex(v.Days, m.cursorDay) < 0 {
		m.cursorDay = v.Controlling.ID
		if m.cursorDay == "" {
			m.cursorDay = v.Days[0].ID
		}
	}
	n := len(v.Tasks(m.cursorDay))
	m.cursorRow = min(max(m.cursorRow, 0), max(n-1, 0))
	return m
}

func (m boardModel) currentTask() (domain.EnrichedTask, bool) {
	col := m.board.View().Tasks(m.cursorDay)
	if m.cursorRow < 0 || m.cursorRow >= len(col) {
		return domain.EnrichedTask{}, false
	}
	return col[m.cursorRow], true
}

func dayIndex(days []domain.Day, id string) int {
	for i, d := range days {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func entryIndex(col []domain.EnrichedTask, entryID string) int {
	for i, t := range col {
		if t.EntryID == entryID {
			return i
		}
	}
	return -1
}

// ── commands ─────────────────────────────────────────────────────────────────

func (m boardModel) loadCmd() tea.Cmd {
	board, ctx := m.board, m.ctx
	return func() tea.Msg {
		return boardLoadedMsg{err: board.Load(ctx)}
	}
}

func (m boardModel) todayCmd() tea.Cmd {
	board, ctx := m.board, m.ctx
	return func() tea.Msg {
		return boardLoadedMsg{err: board.JumpToToday(ctx)}
	}
}

func (m boardModel) sideTablesCmd() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		tables, err := service.LoadSideTables(ctx, app.userID(), app.Subtasks, app.Times, app.Projects)
		return sideTablesMsg{tables: tables, err: err}
	}
}

func (m boardModel) toggleCmd() tea.Cmd {
	t, ok := m.currentTask()
	if !ok {
		return nil
	}
	app, board, ctx := m.app, m.board, m.ctx
	return func() tea.Msg {
		done := !t.IsCompleted
		if _, err := app.Tasks.UpdateTask(ctx, t.ID, domain.TaskPatch{IsCompleted: &done}); err != nil {
			return boardActionMsg{err: err}
		}
		board.Refresh(ctx, t.PlanDate)
		if done {
			return boardActionMsg{status: "Completed " + t.Title}
		}
		return boardActionMsg{status: "Reopened " + t.Title}
	}
}

func (m boardModel) deleteCmd() tea.Cmd {
	t, ok := m.currentTask()
	if !ok {
		return nil
	}
	app, board, ctx := m.app, m.board, m.ctx
	return func() tea.Msg {
		deleted, err := app.Tasks.DeleteTask(ctx, t.ID)
		if err != nil {
			return boardActionMsg{err: err}
		}
		planDate := t.PlanDate
		board.History().Push(planner.Action{
			Kind:     planner.ActionDeleteTask,
			Task:     deleted.Task,
			PlanDate: &planDate,
			Position: t.Position,
		})
		dates := []time.Time{planDate}
		for _, e := range deleted.Entries {
			dates = append(dates, e.PlanDate)
		}
		board.Refresh(ctx, dates...)
		return boardActionMsg{status: fmt.Sprintf("Deleted %s (%s to undo)", t.Title, m.keys.Undo.Help().Key), reloadSide: true}
	}
}

func (m boardModel) undoCmd() tea.Cmd {
	app, board, ctx := m.app, m.board, m.ctx
	return func() tea.Msg {
		a, err := board.History().Undo(ctx, app.Tasks)
		if errors.Is(err, planner.ErrNothingToUndo) {
			return boardActionMsg{status: "Nothing to undo"}
		}
		if err != nil {
			return boardActionMsg{err: err}
		}
		if a.PlanDate != nil {
			board.Refresh(ctx, *a.PlanDate)
		}
		return boardActionMsg{status: "Restored " + a.Task.Title, reloadSide: true}
	}
}

// ── rendering ────────────────────────────────────────────────────────────────

func (m boardModel) View() string {
	if m.quitting {
		return ""
	}
	v := m.board.View()
	helpView := m.help.View(m.keys)
	height := max(m.height-2-lipgloss.Height(helpView), 4)

	var b strings.Builder
	b.WriteString(m.renderHeader(v))
	b.WriteString("\n")
	b.WriteString(m.renderColumns(v, height))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(helpView)
	return b.String()
}

func (m boardModel) renderHeader(v planner.BoardView) string {
	parts := make([]string, 0, 4)
	if v.LoadingPast {
		parts = append(parts, formatter.Dim("◀ loading"))
	}
	if v.Controlling.ID != "" {
		parts = append(parts, formatter.StyleHeader.Render(strings.ToUpper(v.Controlling.FullDate.Format("January 2006"))))
	}
	if v.Dragging {
		parts = append(parts, formatter.StyleYellow.Render("MOVING"))
	}
	if v.LoadingFuture {
		parts = append(parts, formatter.Dim("loading ▶"))
	}
	return strings.Join(parts, "  ")
}

func (m boardModel) renderColumns(v planner.BoardView, height int) string {
	if len(v.Items) == 0 {
		return formatter.Dim("Loading...")
	}
	cols := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		cols = append(cols, m.renderColumn(v, v.Days[it.Index], it.Size, height))
	}
	joined := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	// Overscan columns render off screen; clip to the viewport.
	left := v.ScrollOffset - v.Items[0].Start
	lines := strings.Split(joined, "\n")
	for i, line := range lines {
		lines[i] = xansi.Cut(line, left, left+v.ViewportWidth)
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderColumn(v planner.BoardView, day domain.Day, size, height int) string {
	inner := max(size-1, 1)
	selected := day.ID == m.cursorDay

	titleStyle := formatter.StyleBold
	if day.ID == domain.DateKey(v.Today) {
		titleStyle = formatter.StyleHeader
	}
	if selected {
		titleStyle = titleStyle.Reverse(true)
	}
	lines := []string{
		titleStyle.Render(formatter.Truncate(day.ShortDayName+" "+day.ShortDate, inner)),
		formatter.Dim(strings.Repeat("─", inner)),
	}

	tasks := v.Tasks(day.ID)
	if len(tasks) == 0 {
		lines = append(lines, formatter.Dim("·"))
	}
	for i, t := range tasks {
		marker := " "
		if t.EntryID == v.DragActive {
			marker = formatter.StyleYellow.Render("»")
		}
		title := formatter.Truncate(t.Title, inner-4)
		switch {
		case selected && i == m.cursorRow:
			title = formatter.StyleFg.Reverse(true).Render(title)
		case t.IsCompleted:
			title = formatter.Dim(title)
		}
		lines = append(lines,
			marker+formatter.Checkbox(t.IsCompleted)+" "+title,
			"   "+formatter.TimeRatio(t.TimeSpent, t.TimePlanned),
		)
	}

	return lipgloss.NewStyle().
		Width(inner).
		Height(height).
		MaxHeight(height).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(formatter.ColorDim).
		Render(strings.Join(lines, "\n"))
}

func (m boardModel) renderStatus() string {
	if m.err != nil {
		return formatter.StyleRed.Render("Error: " + m.err.Error())
	}
	return formatter.Dim(m.status)
}

// runBoardProgram opens the board full screen until the user quits.
func runBoardProgram(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changed := make(chan struct{}, 1)
	board := planner.NewBoard(app.Plans, app.Config.Board(80),
		planner.WithLogger(app.logger()),
		planner.WithNotify(func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		}),
	)
	defer board.Close()

	p := tea.NewProgram(newBoardModel(ctx, app, board),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				p.Send(boardChangedMsg{})
			}
		}
	}()

	_, err := p.Run()
	cancel()
	board.Wait()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	app.logger().Info("board closed", "error", err)
	return err
}
