package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// Style tags accepted by SetStyle.
const (
	StyleParagraph = "P"
	StyleCode      = "PRE"
)

// styleType returns the node type and attributes for a style tag.
func styleType(s *model.Schema, tag string) (*model.NodeType, model.Attrs, error) {
	tag = strings.ToUpper(tag)
	switch {
	case tag == StyleParagraph:
		return s.Nodes["paragraph"], nil, nil
	case tag == StyleCode:
		return s.Nodes["code_block"], nil, nil
	case len(tag) == 2 && tag[0] == 'H' && tag[1] >= '1' && tag[1] <= '6':
		return s.Nodes["heading"], model.Attrs{"level": tag[1:]}, nil
	}
	return nil, nil, unknown(CodeStyle, "style", tag, styleTags)
}

// StyleOf returns the style tag of a textblock, or "".
func StyleOf(n *model.Node) string {
	switch n.Type.Name {
	case "paragraph":
		return StyleParagraph
	case "code_block":
		return StyleCode
	case "heading":
		return "H" + strconv.Itoa(n.AttrInt("level", 1))
	}
	return ""
}

// SetStyle retypes every textblock touched by the selection. Divs the
// selection is not inside are skipped, as are buttons. When any block
// cannot take the new type (a code block only holds unmarked text) the
// command fails with a Style error carrying the last failure and nothing
// changes.
func SetStyle(tag string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		typ, attrs, err := styleType(st.Schema(), tag)
		if err != nil {
			return nil, err
		}
		from, to, err := bounds(st)
		if err != nil {
			return nil, err
		}
		positions, nodes := textblocksBetween(st.Doc, from, to.Pos)

		type retype struct {
			pos   int
			attrs model.Attrs
		}
		var targets []retype
		var lastErr *Error
		for i, n := range nodes {
			a := styleAttrs(n, typ, attrs)
			if n.HasMarkup(typ, a, n.Marks) {
				continue
			}
			if !typ.ValidContent(n.Content) {
				lastErr = Errorf(CodeStyle, "cannot set style %s on %s", strings.ToUpper(tag), describeBlock(n))
				continue
			}
			targets = append(targets, retype{positions[i], a})
		}
		if lastErr != nil {
			return nil, lastErr
		}
		if len(targets) == 0 {
			return nil, nil
		}

		tr := newTr(st, NameSetStyle)
		for _, t := range targets {
			if err := tr.SetNodeMarkup(tr.Mapping.Map(t.pos, 1), typ, t.attrs, nil); err != nil {
				return nil, Wrap(CodeStyle, err, "cannot set style "+strings.ToUpper(tag))
			}
		}
		return tr, nil
	}
}

// styleAttrs keeps an existing heading id when a heading changes level.
func styleAttrs(n *model.Node, typ *model.NodeType, attrs model.Attrs) model.Attrs {
	if typ.Name != "heading" || n.Type != typ || n.Attr("id") == "" {
		return attrs
	}
	out := attrs.Clone()
	out["id"] = n.Attr("id")
	return out
}

func describeBlock(n *model.Node) string {
	text := []rune(n.TextContent())
	if len(text) > 20 {
		text = append(text[:20], '…')
	}
	return fmt.Sprintf("%s %q", n.Type.Name, string(text))
}
