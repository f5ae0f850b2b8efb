package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexive/internal/bot"
)

type fakeHandler struct {
	got   []bot.Request
	reply bot.Reply
	err   error
}

func (f *fakeHandler) Handle(_ context.Context, req bot.Request) (bot.Reply, error) {
	f.got = append(f.got, req)
	return f.reply, f.err
}

func newTestModel(h Handler) Model {
	m := New(h, Options{Guild: 123, Style: "notty"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func TestModel_Submit(t *testing.T) {
	h := &fakeHandler{reply: bot.Reply{Messages: []string{"```\nJade\n```"}, Files: []string{"assets/Jade.png"}}}
	m := typeText(newTestModel(h), "jade")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Equal(t, "", m.textarea.Value())
	require.Len(t, m.history, 1)
	assert.Equal(t, entry{user: true, text: "jade"}, m.history[0])
	assert.Contains(t, m.View(), "Looking it up")

	msg := m.ask("jade")()
	require.Len(t, h.got, 1)
	assert.Equal(t, bot.Request{Content: "jade", Guild: 123, Author: "terminal", Channel: "chat", Direct: true, Owner: true}, h.got[0])

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.False(t, m.loading)
	require.Len(t, m.history, 3)
	assert.Equal(t, "```\nJade\n```", m.history[1].text)
	assert.Equal(t, "Attachment: assets/Jade.png", m.history[2].text)
	assert.Contains(t, m.renderHistory(), "Jade")
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	h := &fakeHandler{}
	m := typeText(newTestModel(h), "   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, next.(Model).history)
}

func TestModel_ReplyOutcomes(t *testing.T) {
	m := newTestModel(&fakeHandler{})

	next, _ := m.Update(replyMsg{})
	m = next.(Model)
	assert.Equal(t, "Nothing found.", m.history[len(m.history)-1].text)

	next, _ = m.Update(replyMsg{err: errors.New("content not loaded")})
	m = next.(Model)
	last := m.history[len(m.history)-1]
	assert.True(t, last.err)
	assert.Equal(t, "Error: content not loaded", last.text)
}

func TestModel_Reloaded(t *testing.T) {
	m := newTestModel(&fakeHandler{})

	next, _ := m.Update(ReloadedMsg{})
	assert.Equal(t, "Content reloaded.", next.(Model).status)

	next, _ = m.Update(ReloadedMsg{Err: errors.New("bad row")})
	assert.Equal(t, "Reload failed: bad row", next.(Model).status)
	assert.True(t, strings.Contains(next.(Model).View(), "Reload failed"))
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(&fakeHandler{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_FallbackRendering(t *testing.T) {
	m := New(&fakeHandler{}, Options{})
	assert.Nil(t, m.renderer)
	assert.Contains(t, m.renderReply("plain text"), "plain text")
	assert.Contains(t, m.View(), "Lexive")
}
