package editor

import (
	"strings"

	"github.com/dshills/markupeditor/internal/commands"
	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
	"github.com/dshills/markupeditor/internal/transform"
)

// Change names published for document loads.
const (
	commandSetHTML     = "html.set"
	commandSetTestHTML = "html.setTest"
)

func (e *Editor) parseOptions() model.ParseOptions {
	return model.ParseOptions{KeepHostElements: !e.cfg.Behavior.StripHostElements}
}

// SetHTML replaces the document with parsed HTML. The change bypasses
// undo and clears the history, so editing starts from a clean slate.
func (e *Editor) SetHTML(src string) error {
	return e.locked(commandSetHTML, func() error {
		doc, err := model.ParseHTML(model.Markup, src, e.parseOptions())
		if err != nil {
			return commands.Wrap(commands.CodeParse, err, "cannot parse HTML")
		}
		e.load(doc, nil, commandSetHTML)
		return nil
	})
}

func (e *Editor) load(doc *model.Node, sel state.Selection, name string) {
	e.history.Clear()
	e.searcher.Cancel()
	e.replaceLocked(doc, sel, events.StateChanged{Command: name})
}

// GetHTML serializes the document, or the content of the div with id
// divID when it is not empty. The div's own tag is left out. pretty
// indents blocks one per line; clean drops presentation-only markup.
func (e *Editor) GetHTML(pretty, clean bool, divID string) (string, error) {
	var out string
	err := e.locked("html.get", func() error {
		node := e.state.Doc
		if divID != "" {
			_, div, ok := commands.FindByID(node, "div", divID)
			if !ok {
				return commands.Errorf(commands.CodeDiv, "no div with id %q", divID)
			}
			node = div
		}
		out = model.Serialize(node, model.SerializeOptions{
			Pretty: pretty,
			Indent: e.cfg.Serialize.Indent,
			Clean:  clean,
		})
		return nil
	})
	return out, err
}

// SetTestHTML loads HTML in which occurrences of marker give the
// selection: none puts the cursor at the start, one is a cursor and two
// bound a range. Like SetHTML it resets the history.
func (e *Editor) SetTestHTML(src, marker string) error {
	return e.locked(commandSetTestHTML, func() error {
		if marker == "" {
			return commands.Errorf(commands.CodeParse, "empty selection marker")
		}
		doc, err := model.ParseHTML(model.Markup, src, e.parseOptions())
		if err != nil {
			return commands.Wrap(commands.CodeParse, err, "cannot parse HTML")
		}
		positions := markerPositions(doc, marker)
		if len(positions) > 2 {
			return commands.Errorf(commands.CodeParse, "found %d selection markers, want at most 2", len(positions))
		}
		size := len([]rune(marker))
		tr := transform.New(doc)
		for i := len(positions) - 1; i >= 0; i-- {
			if err := tr.Delete(positions[i], positions[i]+size); err != nil {
				return commands.Internal(err)
			}
		}
		var sel state.Selection
		switch len(positions) {
		case 1:
			sel = state.Cursor(positions[0])
		case 2:
			sel = state.NewTextSelection(positions[0], positions[1]-size)
		}
		e.load(tr.Doc, sel, commandSetTestHTML)
		return nil
	})
}

// markerPositions returns the document positions of marker in text
// nodes, in order.
func markerPositions(doc *model.Node, marker string) []int {
	var positions []int
	doc.Descendants(func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if !n.IsText() {
			return true
		}
		text := n.Text
		offset := 0
		for {
			i := strings.Index(text, marker)
			if i < 0 {
				break
			}
			offset += len([]rune(text[:i]))
			positions = append(positions, pos+offset)
			offset += len([]rune(marker))
			text = text[i+len(marker):]
		}
		return false
	})
	return positions
}

// GetTestHTML serializes the document with marker inserted at the
// selection bounds. Bounds outside textblocks are left unmarked.
func (e *Editor) GetTestHTML(marker string) string {
	st := e.State()
	tr := transform.New(st.Doc)
	from, to := st.Selection.Start(), st.Selection.End()
	bounds := []int{to}
	if from != to {
		bounds = append(bounds, from)
	}
	for _, pos := range bounds {
		r, err := tr.Doc.Resolve(pos)
		if err != nil || !r.Parent().InlineContent() {
			continue
		}
		var marks []*model.Mark
		if r.Parent().Type.MarksAllowed {
			marks = r.Marks()
		}
		if err := tr.InsertText(pos, marker, marks); err != nil {
			e.log.Warn("test html: cannot mark position %d: %v", pos, err)
		}
	}
	return model.Serialize(tr.Doc, model.SerializeOptions{Clean: true})
}
