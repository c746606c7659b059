package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// tickMsg is fired every second to update the token countdown.
type tickMsg time.Time

// state represents the current phase of the demo flow.
type state int

const (
	stateInit        state = iota
	stateToken             // obtaining an access token
	stateRegistering       // registering the product
	stateFetching          // fetching offers
	stateSuccess           // offers shown
	stateError             // fatal error
)

// statusKind distinguishes line types in the status log.
type statusKind int

const (
	statusOK   statusKind = iota
	statusWarn            // warning / non-fatal
	statusInfo            // neutral info
)

// statusLine is one row in the scrolling status log.
type statusLine struct {
	kind statusKind
	text string
}

// Model is the BubbleTea model for the demo TUI.
type Model struct {
	state   state
	spinner spinner.Model
	width   int
	height  int
	now     func() time.Time

	tokenPreview string
	tokenExpiry  time.Time
	remaining    time.Duration

	productID   string
	productName string
	offers      []OfferRow
	errMsg      string

	statusLines []statusLine
}

var (
	styleTitleBox = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 2)

	styleTableBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("228")).
			Padding(0, 1)

	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleBold = lipgloss.NewStyle().Bold(true)
)

// NewModel creates the initial TUI model.
func NewModel() Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))),
	)
	return Model{
		state:   stateInit,
		spinner: s,
		now:     time.Now,
	}
}

// Init starts the spinner animation.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.remaining = max(m.tokenExpiry.Sub(m.now()), 0)
		if m.remaining > 0 && m.state != stateError {
			return m, tickAfterSecond()
		}
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case MsgBanner:
		return m, nil

	case MsgObtainingToken:
		m.state = stateToken
		return m, nil

	case MsgTokenReady:
		m.tokenPreview = msg.Preview
		m.tokenExpiry = msg.ExpiresAt
		m.remaining = max(msg.ExpiresAt.Sub(m.now()), 0)
		m.addStatus(statusOK, "Access token ready ("+msg.Preview+"...)")
		return m, tickAfterSecond()

	case MsgRegistering:
		m.state = stateRegistering
		m.productID = msg.ID
		m.productName = msg.Name
		return m, nil

	case MsgRegistered:
		m.addStatus(statusOK, "Product "+msg.ID+" registered")
		return m, nil

	case MsgAlreadyRegistered:
		m.addStatus(statusWarn, "Product "+msg.ID+" was already registered")
		return m, nil

	case MsgFetchingOffers:
		m.state = stateFetching
		m.productID = msg.ProductID
		return m, nil

	case MsgOffersReady:
		m.offers = msg.Offers
		m.state = stateSuccess
		m.addStatus(statusOK, fmt.Sprintf("%d offers received", len(msg.Offers)))
		return m, nil

	case MsgFatal:
		m.errMsg = msg.Err.Error()
		m.state = stateError
		return m, nil
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() tea.View {
	switch m.state {
	case stateSuccess:
		return tea.NewView(m.viewSuccess())
	case stateError:
		return tea.NewView(m.viewError())
	default:
		return tea.NewView(m.viewMain())
	}
}

// viewMain is shown while a request is in flight.
func (m Model) viewMain() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleTitleBox.Render("  Applifting Offers  "))
	b.WriteString("\n\n")

	b.WriteString(m.spinner.View())
	switch m.state {
	case stateToken:
		b.WriteString(" Obtaining access token...\n")
	case stateRegistering:
		b.WriteString(fmt.Sprintf(" Registering %q...\n", m.productName))
		b.WriteString(styleDim.Render("  " + m.productID))
		b.WriteString("\n")
	case stateFetching:
		b.WriteString(" Fetching offers...\n")
		b.WriteString(styleDim.Render("  " + m.productID))
		b.WriteString("\n")
	default:
		b.WriteString(" Initializing...\n")
	}

	b.WriteString(m.viewTokenLine())
	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewSuccess is shown once the offers are in.
func (m Model) viewSuccess() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleOK.Render("  ✓ Offers for " + m.productID))
	b.WriteString("\n\n")

	if len(m.offers) == 0 {
		b.WriteString(styleDim.Render("  No offers yet. The offers service may need a minute."))
		b.WriteString("\n")
	} else {
		b.WriteString(styleTableBox.Render(renderOffers(m.offers)))
		b.WriteString("\n")
	}

	b.WriteString(m.viewTokenLine())
	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewError is shown when a fatal error occurs.
func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleErr.Render("  ✗ Request failed"))
	b.WriteString("\n\n")
	b.WriteString(styleDim.Render("  " + m.errMsg))
	b.WriteString("\n")

	b.WriteString(m.viewStatusLog())
	return b.String()
}

func (m Model) viewTokenLine() string {
	if m.tokenPreview == "" {
		return ""
	}
	return "\n" + styleBold.Render("Access Token: ") + m.tokenPreview + "...  " +
		styleDim.Render(formatDuration(m.remaining)+" remaining") + "\n"
}

// viewStatusLog renders the scrolling status log.
func (m Model) viewStatusLog() string {
	if len(m.statusLines) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	for _, line := range m.statusLines {
		switch line.kind {
		case statusOK:
			b.WriteString(styleOK.Render("  ✓ " + line.text))
		case statusWarn:
			b.WriteString(styleWarn.Render("  ⚠ " + line.text))
		default:
			b.WriteString(styleDim.Render("  · " + line.text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// addStatus appends a line to the status log.
func (m *Model) addStatus(kind statusKind, text string) {
	m.statusLines = append(m.statusLines, statusLine{kind: kind, text: text})
}

func renderOffers(offers []OfferRow) string {
	var b strings.Builder
	b.WriteString(styleBold.Render(fmt.Sprintf("%-36s  %10s  %8s", "OFFER", "PRICE", "IN STOCK")))
	for _, o := range offers {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-36s  %10s  %8d", o.ID, formatPrice(o.Price), o.ItemsInStock)
	}
	return b.String()
}

// tickAfterSecond returns a command that fires tickMsg after one second.
func tickAfterSecond() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// formatDuration formats a duration as "Xm Ys" or "Xs".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// formatPrice renders a price in cents as units with two decimals.
func formatPrice(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
