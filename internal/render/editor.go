package render

import (
	"strings"
	"unicode/utf8"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Text editing overlay — one session at a time. The visible
// text node is hidden and replaced by an overlay sized and
// colored to match; commit writes back as one undoable
// mutation through the callback the opening module supplied.
// ─────────────────────────────────────────────────────────────

// CommitReason says why an editing session ended. Every reason commits; a
// session is only discarded through Abort (async failure fallback).
type CommitReason int

const (
	CommitBlur CommitReason = iota
	CommitEnter
	CommitEscape
	CommitClickOutside
)

// TextEditor owns the single active editing session.
type TextEditor struct {
	ctx     *Context
	session *editSession
}

type editSession struct {
	elementID string
	group     *scene.Node
	textNode  *scene.Node
	hidden    *scene.Node // the scene text node hidden while editing
	text      string
	commit    func(text string)
}

// NewTextEditor creates an editor bound to the mount context.
func NewTextEditor(ctx *Context) *TextEditor {
	return &TextEditor{ctx: ctx}
}

// EditStyle controls the overlay's appearance so it matches the node it
// replaces.
type EditStyle struct {
	Fill      string
	TextColor string
	FontSize  float64
}

// Open starts an editing session over the given bounds. An already-active
// session commits first (click-outside semantics). hidden, when non-nil, is
// made invisible for the duration of the session.
func (ed *TextEditor) Open(elementID string, bounds domain.Rect, style EditStyle, initial string, hidden *scene.Node, commit func(text string)) {
	ed.Commit(CommitClickOutside)

	group := scene.NewGroup()
	group.SetPosition(bounds.X, bounds.Y)

	back := scene.NewNode(scene.KindRect)
	back.SetSize(bounds.Width, bounds.Height)
	back.Fill = style.Fill
	back.Stroke = "#4a90d9"
	back.StrokeWidth = 1
	group.Add(back)

	text := scene.NewNode(scene.KindText)
	text.SetSize(bounds.Width, bounds.Height)
	text.Text = initial
	text.FontSize = style.FontSize
	text.Fill = style.TextColor
	group.Add(text)

	if hidden != nil {
		hidden.Visible = false
		hidden.MarkDirty()
	}

	ed.ctx.Layers.Overlay.Add(group)
	ed.session = &editSession{
		elementID: elementID,
		group:     group,
		textNode:  text,
		hidden:    hidden,
		text:      initial,
		commit:    commit,
	}
}

// Active reports whether a session is open.
func (ed *TextEditor) Active() bool { return ed.session != nil }

// ActiveElementID returns the id under edit, or "".
func (ed *TextEditor) ActiveElementID() string {
	if ed.session == nil {
		return ""
	}
	return ed.session.elementID
}

// SetText updates the uncommitted text (live typing feedback). Nothing
// reaches the store until commit.
func (ed *TextEditor) SetText(text string) {
	if ed.session == nil {
		return
	}
	ed.session.text = text
	ed.session.textNode.Text = text
	ed.session.textNode.MarkDirty()
}

// Input feeds a key into the session. Enter without shift commits; Escape
// commits; anything else appends. Returns true when the key was consumed.
func (ed *TextEditor) Input(key string, shift bool) bool {
	if ed.session == nil {
		return false
	}
	switch key {
	case "Enter":
		if shift {
			ed.SetText(ed.session.text + "\n")
			return true
		}
		ed.Commit(CommitEnter)
		return true
	case "Escape":
		ed.Commit(CommitEscape)
		return true
	case "Backspace":
		// trim a full rune, not a byte, so multi-byte text stays valid
		if t := ed.session.text; t != "" {
			_, size := utf8.DecodeLastRuneInString(t)
			ed.SetText(t[:len(t)-size])
		}
		return true
	default:
		if len(key) == 1 || strings.HasPrefix(key, " ") {
			ed.SetText(ed.session.text + key)
			return true
		}
	}
	return false
}

// Commit ends the session and writes the text back through the module's
// callback — exactly one undoable mutation, whatever the reason.
func (ed *TextEditor) Commit(_ CommitReason) {
	s := ed.session
	if s == nil {
		return
	}
	ed.session = nil
	ed.teardown(s)
	s.commit(s.text)
}

// Abort discards the session without committing. Used when an editing
// session must fall back to a neutral state after an async failure.
func (ed *TextEditor) Abort() {
	s := ed.session
	if s == nil {
		return
	}
	ed.session = nil
	ed.teardown(s)
}

func (ed *TextEditor) teardown(s *editSession) {
	s.group.Remove()
	if s.hidden != nil {
		s.hidden.Visible = true
		s.hidden.MarkDirty()
	}
}

// EstimateText approximates rendered text size for auto-measured nodes.
func EstimateText(text string, fontSize float64) (w, h float64) {
	if fontSize <= 0 {
		fontSize = 14
	}
	lines := strings.Split(text, "\n")
	longest := 0
	for _, line := range lines {
		if len(line) > longest {
			longest = len(line)
		}
	}
	if longest == 0 {
		longest = 1
	}
	w = float64(longest)*fontSize*0.6 + 2*8
	h = float64(len(lines))*fontSize*1.4 + 2*8
	return w, h
}
