// Package chat is the interactive terminal front end: every line typed is
// handled as if it had been sent to the bot in a direct message.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"lexive/internal/bot"
)

// Handler answers requests. *bot.Dispatcher implements it.
type Handler interface {
	Handle(ctx context.Context, req bot.Request) (bot.Reply, error)
}

// Options configure the chat session.
type Options struct {
	Guild int
	Title string
	// Style is a glamour style name. Empty picks one from the terminal.
	Style string
}

// ReloadedMsg tells the model the content was reloaded in the background.
type ReloadedMsg struct {
	Err error
}

type replyMsg struct {
	reply bot.Reply
	err   error
}

type entry struct {
	user bool
	err  bool
	text string
}

const (
	headerHeight = 1
	footerHeight = 1
	statusHeight = 1
	inputHeight  = 5
)

// Model is the bubbletea model of a chat session.
type Model struct {
	handler Handler
	opts    Options
	styles  Styles

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	history []entry
	status  string
	loading bool
	ready   bool
}

// New creates a chat model answering through h.
func New(h Handler, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "Lexive"
	}
	styles := DefaultStyles()

	ta := textarea.New()
	ta.Placeholder = "Ask about a card, or type a command such as random or box outcasts"
	ta.ShowLineNumbers = false
	ta.CharLimit = 500
	ta.SetHeight(inputHeight - 2)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return Model{
		handler:  h,
		opts:     opts,
		styles:   styles,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" || m.loading {
				return m, nil
			}
			m.textarea.Reset()
			m.history = append(m.history, entry{user: true, text: text})
			m.loading = true
			m.status = ""
			m.refresh()
			return m, tea.Batch(m.ask(text), m.spinner.Tick)
		}

	case replyMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.history = append(m.history, entry{err: true, text: "Error: " + msg.err.Error()})
		case msg.reply.Empty():
			m.history = append(m.history, entry{text: "Nothing found."})
		default:
			for _, text := range msg.reply.Messages {
				m.history = append(m.history, entry{text: text})
			}
			for _, f := range msg.reply.Files {
				m.history = append(m.history, entry{text: "Attachment: " + f})
			}
		}
		m.refresh()
		return m, nil

	case ReloadedMsg:
		if msg.Err != nil {
			m.status = "Reload failed: " + msg.Err.Error()
		} else {
			m.status = "Content reloaded."
		}
		return m, nil

	case tea.WindowSizeMsg:
		height := msg.Height - headerHeight - footerHeight - statusHeight - inputHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.renderer = m.newRenderer(msg.Width - 4)
		m.refresh()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	style := glamour.WithAutoStyle()
	if m.opts.Style != "" {
		style = glamour.WithStandardStyle(m.opts.Style)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	return r
}

// ask sends text to the handler. Typed lines need no command prefix.
func (m Model) ask(text string) tea.Cmd {
	h, guild := m.handler, m.opts.Guild
	return func() tea.Msg {
		reply, err := h.Handle(context.Background(), bot.Request{
			Content: text,
			Guild:   guild,
			Author:  "terminal",
			Channel: "chat",
			Direct:  true,
			Owner:   true,
		})
		return replyMsg{reply: reply, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	for _, e := range m.history {
		switch {
		case e.user:
			sb.WriteString(m.styles.UserInput.Render("> " + e.text))
			sb.WriteString("\n")
		case e.err:
			sb.WriteString(m.styles.Error.Render(e.text))
			sb.WriteString("\n\n")
		default:
			sb.WriteString(m.renderReply(e.text))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// renderReply renders the ``` blocks of a reply through glamour.
func (m Model) renderReply(text string) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return out
		}
	}
	return m.styles.Reply.Render(text) + "\n"
}

// View renders the session.
func (m Model) View() string {
	header := m.styles.Header.Render(m.opts.Title)
	status := m.styles.Status.Render(m.status)
	if m.loading {
		status = m.spinner.View() + " " + m.styles.Status.Render("Looking it up...")
	}
	footer := m.styles.Footer.Render("enter: send • esc: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		status,
		m.styles.Input.Render(m.textarea.View()),
		footer,
	)
}
