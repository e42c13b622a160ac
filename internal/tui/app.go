package tui

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pedrolima/newsmood/internal/aggregate"
	"github.com/pedrolima/newsmood/internal/browser"
	"github.com/pedrolima/newsmood/internal/cache"
	"github.com/pedrolima/newsmood/internal/config"
	"github.com/pedrolima/newsmood/internal/export"
	"github.com/pedrolima/newsmood/internal/feed"
	"github.com/pedrolima/newsmood/internal/sentiment"
	"github.com/pedrolima/newsmood/internal/update"
)

type mode int

const (
	modeDashboard mode = iota
	modeSearch
	modeFilter
	modeHelp
)

const cacheKey = "headlines"

var binSizes = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
}

var lookbackHours = []int{1, 6, 12, 24, 48, 72}

type App struct {
	cfg    *config.Config
	store  *cache.Store[[]sentiment.Record]
	scorer *sentiment.Scorer

	// Cached snapshot and the view derived from it
	records   []sentiment.Record
	fetchedAt time.Time
	view      aggregate.View

	// User-adjustable parameters
	thresholds     sentiment.Thresholds
	binIdx         int
	lookbackIdx    int
	excludeImputed bool
	keyword        string

	cursor int
	mode   mode
	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	sourceBar   sourceBar

	refreshing    bool
	startRefresh  bool
	statusNote    string
	err           error
	updateVersion string
	version       string
}

// RunOpts holds all parameters for launching the dashboard.
type RunOpts struct {
	Cfg      *config.Config
	Store    *cache.Store[[]sentiment.Record]
	Scorer   *sentiment.Scorer
	Keyword  string
	Lookback time.Duration
	Refresh  bool
	Version  string
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Keyword filter..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	a := &App{
		cfg:            opts.Cfg,
		store:          opts.Store,
		scorer:         opts.Scorer,
		thresholds:     sentiment.Thresholds{Negative: opts.Cfg.Thresholds.Negative, Positive: opts.Cfg.Thresholds.Positive},
		binIdx:         nearestBinIdx(opts.Cfg.BinSizeDuration()),
		excludeImputed: true,
		keyword:        opts.Keyword,
		sourceBar:      newSourceBar(opts.Cfg.SourceNames()),
		startRefresh:   opts.Refresh,
		searchInput:    ti,
		spinner:        sp,
		version:        opts.Version,
	}

	lookback := opts.Lookback
	if lookback <= 0 {
		lookback = opts.Cfg.Lookback()
	}
	a.lookbackIdx = nearestLookbackIdx(lookback)

	a.searchInput.SetValue(opts.Keyword)
	return a
}

func nearestBinIdx(d time.Duration) int {
	for i, b := range binSizes {
		if d <= b {
			return i
		}
	}
	return len(binSizes) - 1
}

func nearestLookbackIdx(d time.Duration) int {
	hours := int(d.Hours())
	for i, h := range lookbackHours {
		if hours <= h {
			return i
		}
	}
	return len(lookbackHours) - 1
}

func (a *App) Init() tea.Cmd {
	a.refreshing = true
	return tea.Batch(a.loadRecordsCmd(a.startRefresh), a.spinner.Tick, a.checkUpdateCmd(), tickCmd())
}

// tickCmd re-renders once a minute so the TTL cache can expire and the
// relative timestamps stay honest without any user interaction.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) params() aggregate.Params {
	return aggregate.Params{
		Sources:        a.sourceBar.selection(),
		Keyword:        a.keyword,
		Lookback:       time.Duration(lookbackHours[a.lookbackIdx]) * time.Hour,
		BinSize:        binSizes[a.binIdx],
		ExcludeImputed: a.excludeImputed,
		Thresholds:     a.thresholds,
	}
}

// rebuild recomputes the derived view from the cached snapshot. Parameter
// changes only ever pass through here; they never trigger a fetch.
func (a *App) rebuild() {
	a.view = aggregate.Build(a.records, a.params())
	if a.cursor >= len(a.view.Rows) {
		a.cursor = max(0, len(a.view.Rows)-1)
	}
}

// loadRecordsCmd fetches through the TTL cache; force invalidates first so
// "fetch latest" always hits the network.
func (a *App) loadRecordsCmd(force bool) tea.Cmd {
	cfg := a.cfg
	store := a.store
	scorer := a.scorer
	return func() tea.Msg {
		if force {
			store.Invalidate(cacheKey)
		}

		var fetchErrs []error
		records, err := store.GetOrFetch(cacheKey, cfg.CacheTTLDuration(), func() ([]sentiment.Record, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			result := feed.FetchAll(ctx, cfg.EnabledSources(), cfg.EntryCap())
			fetchErrs = result.Errors
			return scorer.ScoreAll(result.Headlines), nil
		})
		if err != nil {
			return recordsLoadedMsg{errs: []error{err}}
		}

		fetchedAt := time.Now().UTC()
		if at, ok := store.InsertedAt(cacheKey); ok {
			fetchedAt = at.UTC()
		}
		return recordsLoadedMsg{records: records, fetchedAt: fetchedAt, errs: fetchErrs}
	}
}

func (a *App) exportCmd() tea.Cmd {
	rows := a.view.Rows
	return func() tea.Msg {
		path := export.Filename(time.Now())
		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		defer f.Close()
		if err := export.WriteCSV(f, rows); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func (a *App) checkUpdateCmd() tea.Cmd {
	version := a.version
	return func() tea.Msg {
		result := update.Check(context.Background(), version)
		if result == nil {
			return nil
		}
		return updateAvailableMsg{version: result.LatestVersion}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case recordsLoadedMsg:
		a.refreshing = false
		a.records = msg.records
		if !msg.fetchedAt.IsZero() {
			a.fetchedAt = msg.fetchedAt
		}
		a.statusNote = ""
		if len(msg.errs) > 0 {
			a.statusNote = fmt.Sprintf("%d source(s) failed: %v", len(msg.errs), msg.errs[0])
		}
		a.rebuild()
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.statusNote = "Exported " + msg.path
		}
		return a, nil

	case updateAvailableMsg:
		a.updateVersion = msg.version
		return a, nil

	case tickMsg:
		// Expired cache entries get refetched; a warm cache lands again
		// almost immediately. Shares the manual-refresh status path so a
		// slow background fetch shows the spinner.
		cmds := []tea.Cmd{tickCmd()}
		if !a.refreshing {
			a.refreshing = true
			cmds = append(cmds, a.loadRecordsCmd(false), a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if s := msg.String(); s == "?" || s == "esc" || s == "q" {
			a.mode = modeDashboard
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.view.Rows)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "o", "enter":
		if len(a.view.Rows) > 0 && a.cursor < len(a.view.Rows) {
			return a, openBrowserCmd(a.view.Rows[a.cursor].Link)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.SetValue(a.keyword)
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.sourceBar.choosing = true
		return a, nil
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, tea.Batch(a.loadRecordsCmd(true), a.spinner.Tick)
		}
		return a, nil
	case "e":
		return a, a.exportCmd()
	case "[":
		a.adjustNegative(-0.05)
		return a, nil
	case "]":
		a.adjustNegative(0.05)
		return a, nil
	case "{":
		a.adjustPositive(-0.05)
		return a, nil
	case "}":
		a.adjustPositive(0.05)
		return a, nil
	case "b":
		a.binIdx = (a.binIdx + 1) % len(binSizes)
		a.rebuild()
		return a, nil
	case "w":
		a.lookbackIdx = (a.lookbackIdx + 1) % len(lookbackHours)
		a.rebuild()
		return a, nil
	case "u":
		a.excludeImputed = !a.excludeImputed
		a.rebuild()
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

// adjustNegative moves the negative cutoff within [-1, 0], never reaching
// the positive cutoff.
func (a *App) adjustNegative(delta float64) {
	v := roundCutoff(a.thresholds.Negative + delta)
	if v < -1 {
		v = -1
	}
	if v > 0 {
		v = 0
	}
	if v >= a.thresholds.Positive {
		return
	}
	a.thresholds.Negative = v
	a.rebuild()
}

// adjustPositive moves the positive cutoff within [0, 1].
func (a *App) adjustPositive(delta float64) {
	v := roundCutoff(a.thresholds.Positive + delta)
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if v <= a.thresholds.Negative {
		return
	}
	a.thresholds.Positive = v
	a.rebuild()
}

func roundCutoff(v float64) float64 {
	return math.Round(v*100) / 100
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeDashboard
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.keyword = ""
		a.cursor = 0
		a.rebuild()
		return a, nil
	case "enter":
		a.mode = modeDashboard
		a.searchInput.Blur()
		a.keyword = a.searchInput.Value()
		a.cursor = 0
		a.rebuild()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeDashboard
		a.sourceBar.choosing = false
		return a, nil
	case "left", "h":
		if a.sourceBar.cursor > 0 {
			a.sourceBar.cursor--
		}
		return a, nil
	case "right", "l":
		if a.sourceBar.cursor < len(a.sourceBar.names)-1 {
			a.sourceBar.cursor++
		}
		return a, nil
	case " ", "enter":
		a.sourceBar.toggleCursor()
		a.cursor = 0
		a.rebuild()
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.sourceBar.names) {
			a.sourceBar.toggle(a.sourceBar.names[idx])
			a.cursor = 0
			a.rebuild()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) paramsLine() string {
	sep := tabSeparatorStyle.Render(" · ")
	undated := "shown"
	if a.excludeImputed {
		undated = "hidden in chart"
	}
	parts := []string{
		paramStyle.Render("cutoffs ") + paramValueStyle.Render(fmt.Sprintf("%.2f / %+.2f", a.thresholds.Negative, a.thresholds.Positive)),
		paramStyle.Render("bin ") + paramValueStyle.Render(formatBin(binSizes[a.binIdx])),
		paramStyle.Render("lookback ") + paramValueStyle.Render(fmt.Sprintf("%dh", lookbackHours[a.lookbackIdx])),
		paramStyle.Render("undated ") + paramValueStyle.Render(undated),
	}
	if a.keyword != "" {
		parts = append(parts, paramStyle.Render("keyword ")+paramValueStyle.Render(a.keyword))
	}
	return " " + strings.Join(parts, sep)
}

func formatBin(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

func (a *App) kpiRow() string {
	k := a.view.KPI
	sep := "   "
	mean := fmt.Sprintf("%+.3f", k.MeanCompound)
	meanStyle := neutralStyle
	if k.MeanCompound > 0 {
		meanStyle = positiveStyle
	} else if k.MeanCompound < 0 {
		meanStyle = negativeStyle
	}

	return " " + kpiLabelStyle.Render("Headlines ") + kpiValueStyle.Render(fmt.Sprintf("%d", k.Headlines)) + sep +
		kpiLabelStyle.Render("Avg ") + meanStyle.Bold(true).Render(mean) + sep +
		kpiLabelStyle.Render("Positive ") + positiveStyle.Render(fmt.Sprintf("%d", k.Positive)) + sep +
		kpiLabelStyle.Render("Neutral ") + neutralStyle.Render(fmt.Sprintf("%d", k.Neutral)) + sep +
		kpiLabelStyle.Render("Negative ") + negativeStyle.Render(fmt.Sprintf("%d", k.Negative))
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  newsmood")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	header := a.renderHeader()

	filter := a.sourceBar.render(a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	params := a.paramsLine()
	kpi := a.kpiRow()

	// Chart row
	chartHeight := 6
	leftWidth := a.width / 2
	rightWidth := a.width - leftWidth - 1
	distPane := paneStyle.Width(leftWidth - 2).Height(chartHeight).Render(
		renderDistribution(a.view.Distribution, leftWidth-4))
	seriesPane := paneStyle.Width(rightWidth - 2).Height(chartHeight).Render(
		renderSeries(a.view.Series, rightWidth-4))
	charts := lipgloss.JoinHorizontal(lipgloss.Top, distPane, seriesPane)

	// Bottom row: breakdown table + headline list
	bottomHeight := a.height - 5 - chartHeight - 2 - 3
	if bottomHeight < 4 {
		bottomHeight = 4
	}
	tablePane := paneStyle.Width(leftWidth - 2).Height(bottomHeight).Render(
		renderSummaryTable(a.view.Summaries, leftWidth-4))
	listPane := paneActiveStyle.Width(rightWidth - 2).Height(bottomHeight).Render(
		renderList(a.view.Rows, a.cursor, bottomHeight, rightWidth-4))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, tablePane, listPane)

	status := renderStatusBar(
		len(a.view.Rows),
		a.sourceBar.label(),
		a.fetchedAt,
		a.width,
		a.mode == modeSearch,
		a.refreshing,
	)
	if a.refreshing {
		status = a.spinner.View() + " " + status
	}
	if a.statusNote != "" {
		status = statusBarStyle.Width(a.width).Render(" " + a.statusNote)
	}
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, params, kpi, charts, bottom, status)
}

func (a *App) renderHeader() string {
	left := headerStyle.Render("newsmood")
	right := headerDateStyle.Render(time.Now().UTC().Format("Jan 2 15:04Z"))
	if a.updateVersion != "" {
		right = headerDateStyle.Render("update available: v"+a.updateVersion) + "  " + right
	}
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("newsmood")
	dim := helpDimStyle

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓      Move through headlines\n" +
		"  o, enter      Open headline in browser\n\n" +
		dim.Render("Filters") + "\n" +
		"  /             Keyword filter\n" +
		"  f             Source toggle mode\n" +
		"  u             Show/hide undated items in the chart\n\n" +
		dim.Render("Tuning") + "\n" +
		"  [ / ]         Negative cutoff down/up\n" +
		"  { / }         Positive cutoff down/up\n" +
		"  b             Cycle bin size (1m-1h)\n" +
		"  w             Cycle lookback window (1-72h)\n\n" +
		dim.Render("Data") + "\n" +
		"  r             Fetch latest headlines\n" +
		"  e             Export current view to CSV\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the dashboard.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
