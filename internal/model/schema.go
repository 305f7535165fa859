package model

import (
	"fmt"
	"sort"
)

// Attrs holds node or mark attributes. Values are kept as strings so they
// round-trip through HTML unchanged; use AttrInt for numeric attributes.
type Attrs map[string]string

// Clone returns a copy of the attribute map.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return Attrs{}
	}
	c := make(Attrs, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Eq reports whether two attribute maps hold the same entries.
func (a Attrs) Eq(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContentSpec describes which children a node type may hold.
type ContentSpec struct {
	// Allow lists node type names and group names accepted as children.
	Allow []string
	// Min is the minimum number of children.
	Min int
}

// NodeType describes a kind of node in the schema.
type NodeType struct {
	Name    string
	Groups  []string
	Content ContentSpec
	// Inline is true for text, images and hard breaks.
	Inline bool
	// Leaf nodes never have children.
	Leaf bool
	// MarksAllowed reports whether inline children may carry marks.
	MarksAllowed bool
	// Defaults holds the default attribute values.
	Defaults Attrs
	// Defining nodes keep their type when their content is replaced.
	Defining bool
	// Isolating nodes stop lifting and joining at their boundary.
	Isolating bool

	schema        *Schema
	inlineContent bool
}

// Schema returns the schema the type belongs to.
func (t *NodeType) Schema() *Schema { return t.schema }

// IsText reports whether this is the text node type.
func (t *NodeType) IsText() bool { return t.Name == "text" }

// IsBlock reports whether nodes of this type are block nodes.
func (t *NodeType) IsBlock() bool { return !t.Inline }

// IsTextblock reports whether this is a block type holding inline content.
func (t *NodeType) IsTextblock() bool { return !t.Inline && t.inlineContent }

// InlineContent reports whether this type's children are inline.
func (t *NodeType) InlineContent() bool { return t.inlineContent }

// InGroup reports whether the type belongs to the named group.
func (t *NodeType) InGroup(group string) bool {
	for _, g := range t.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Allows reports whether a node of type child may appear in this type's
// content.
func (t *NodeType) Allows(child *NodeType) bool {
	for _, name := range t.Content.Allow {
		if child.Name == name || child.InGroup(name) {
			return true
		}
	}
	return false
}

// AllowsMarkType reports whether inline content of this type may carry
// marks of the given type.
func (t *NodeType) AllowsMarkType(_ *MarkType) bool {
	return t.MarksAllowed
}

// CompatibleContent reports whether both types accept the same children.
func (t *NodeType) CompatibleContent(other *NodeType) bool {
	if t == other {
		return true
	}
	if len(t.Content.Allow) != len(other.Content.Allow) {
		return false
	}
	for i, a := range t.Content.Allow {
		if other.Content.Allow[i] != a {
			return false
		}
	}
	return true
}

// ValidContent reports whether the fragment satisfies this type's content
// rules.
func (t *NodeType) ValidContent(content *Fragment) bool {
	return t.checkContent(content) == nil
}

func (t *NodeType) checkContent(content *Fragment) error {
	if t.Leaf {
		if content.Size() > 0 {
			return &ContentError{Type: t.Name, Reason: "leaf node has content"}
		}
		return nil
	}
	if content.ChildCount() < t.Content.Min {
		return &ContentError{Type: t.Name, Reason: fmt.Sprintf("needs at least %d children", t.Content.Min)}
	}
	for _, child := range content.nodes {
		if !t.Allows(child.Type) {
			return &ContentError{Type: t.Name, Reason: child.Type.Name + " not allowed"}
		}
		if !t.MarksAllowed && len(child.Marks) > 0 {
			return &ContentError{Type: t.Name, Reason: "marks not allowed"}
		}
	}
	return nil
}

// ComputeAttrs merges attrs over the type defaults.
func (t *NodeType) ComputeAttrs(attrs Attrs) Attrs {
	out := t.Defaults.Clone()
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// Create builds a node of this type without validating its content.
func (t *NodeType) Create(attrs Attrs, content *Fragment, marks []*Mark) *Node {
	if t.IsText() {
		panic("model: use Schema.Text to create text nodes")
	}
	if content == nil {
		content = EmptyFragment
	}
	return &Node{Type: t, Attrs: t.ComputeAttrs(attrs), Content: content, Marks: normalizeMarks(marks)}
}

// CreateChecked builds a node and validates its content.
func (t *NodeType) CreateChecked(attrs Attrs, content *Fragment, marks []*Mark) (*Node, error) {
	n := t.Create(attrs, content, marks)
	if err := t.checkContent(n.Content); err != nil {
		return nil, err
	}
	return n, nil
}

// CreateAndFill builds a node and, when the content is too short, pads it
// with the smallest valid filler so the result satisfies the content rules.
func (t *NodeType) CreateAndFill(attrs Attrs, content *Fragment) *Node {
	if content == nil {
		content = EmptyFragment
	}
	for content.ChildCount() < t.Content.Min {
		filler := t.schema.fillerFor(t)
		if filler == nil {
			break
		}
		content = content.Append(FragmentFrom(filler))
	}
	return t.Create(attrs, content, nil)
}

// MarkType describes a kind of mark.
type MarkType struct {
	Name string
	// Rank orders marks within a mark set.
	Rank int
	// Inclusive marks extend to text typed at their end.
	Inclusive bool
	// Excludes lists mark type names that cannot coexist with this one.
	Excludes []string
	Defaults Attrs

	schema *Schema
}

// Create builds a mark of this type.
func (t *MarkType) Create(attrs Attrs) *Mark {
	out := t.Defaults.Clone()
	for k, v := range attrs {
		out[k] = v
	}
	return &Mark{Type: t, Attrs: out}
}

// ExcludesType reports whether this mark type cannot coexist with other.
func (t *MarkType) ExcludesType(other *MarkType) bool {
	for _, name := range t.Excludes {
		if name == other.Name {
			return true
		}
	}
	return false
}

// IsInSet returns the mark of this type in the set, or nil.
func (t *MarkType) IsInSet(set []*Mark) *Mark {
	for _, m := range set {
		if m.Type == t {
			return m
		}
	}
	return nil
}

// RemoveFromSet returns the set without marks of this type.
func (t *MarkType) RemoveFromSet(set []*Mark) []*Mark {
	var out []*Mark
	for i, m := range set {
		if m.Type == t {
			if out == nil {
				out = append([]*Mark{}, set[:i]...)
			}
			continue
		}
		if out != nil {
			out = append(out, m)
		}
	}
	if out == nil {
		return set
	}
	return out
}

// Schema is a closed set of node and mark types.
type Schema struct {
	Nodes map[string]*NodeType
	Marks map[string]*MarkType
	// TopNode is the type of the document root.
	TopNode *NodeType
	// TextType is the type of text nodes.
	TextType *NodeType

	nodeOrder []*NodeType
	markOrder []*MarkType
}

// NodeType returns the named node type.
func (s *Schema) NodeType(name string) (*NodeType, error) {
	t, ok := s.Nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: node %q", ErrUnknownType, name)
	}
	return t, nil
}

// MarkType returns the named mark type.
func (s *Schema) MarkType(name string) (*MarkType, error) {
	t, ok := s.Marks[name]
	if !ok {
		return nil, fmt.Errorf("%w: mark %q", ErrUnknownType, name)
	}
	return t, nil
}

// Node creates a node of the named type. It panics on unknown names and is
// meant for building fixed structures in code and tests.
func (s *Schema) Node(name string, attrs Attrs, children ...*Node) *Node {
	t, ok := s.Nodes[name]
	if !ok {
		panic("model: unknown node type " + name)
	}
	return t.Create(attrs, NewFragment(children), nil)
}

// Text creates a text node. Empty text is not allowed.
func (s *Schema) Text(text string, marks ...*Mark) *Node {
	if text == "" {
		panic("model: empty text node")
	}
	return &Node{Type: s.TextType, Attrs: Attrs{}, Content: EmptyFragment, Text: text, Marks: normalizeMarks(marks), textLen: runeCount(text)}
}

// Mark creates a mark of the named type.
func (s *Schema) Mark(name string, attrs Attrs) *Mark {
	t, ok := s.Marks[name]
	if !ok {
		panic("model: unknown mark type " + name)
	}
	return t.Create(attrs)
}

// EmptyDoc returns a document holding a single empty paragraph.
func (s *Schema) EmptyDoc() *Node {
	return s.Node("doc", nil, s.Node("paragraph", nil))
}

func (s *Schema) fillerFor(t *NodeType) *Node {
	for _, name := range t.Content.Allow {
		var candidate *NodeType
		if nt, ok := s.Nodes[name]; ok {
			candidate = nt
		} else {
			for _, nt := range s.nodeOrder {
				if nt.InGroup(name) {
					candidate = nt
					break
				}
			}
		}
		if candidate == nil || candidate.IsText() || candidate.Leaf {
			continue
		}
		return candidate.CreateAndFill(nil, nil)
	}
	return nil
}

func (s *Schema) addNode(t *NodeType) {
	t.schema = s
	if t.Defaults == nil {
		t.Defaults = Attrs{}
	}
	s.Nodes[t.Name] = t
	s.nodeOrder = append(s.nodeOrder, t)
}

func (s *Schema) addMark(t *MarkType) {
	t.schema = s
	t.Rank = len(s.markOrder)
	if t.Defaults == nil {
		t.Defaults = Attrs{}
	}
	s.Marks[t.Name] = t
	s.markOrder = append(s.markOrder, t)
}

func (s *Schema) finish() {
	for _, t := range s.nodeOrder {
		if t.Leaf || len(t.Content.Allow) == 0 {
			continue
		}
		first := t.Content.Allow[0]
		if nt, ok := s.Nodes[first]; ok {
			t.inlineContent = nt.Inline
			continue
		}
		for _, nt := range s.nodeOrder {
			if nt.InGroup(first) {
				t.inlineContent = nt.Inline
				break
			}
		}
	}
}

// Markup is the schema used by the editor.
var Markup = newMarkupSchema()

func newMarkupSchema() *Schema {
	s := &Schema{Nodes: map[string]*NodeType{}, Marks: map[string]*MarkType{}}

	block := []string{"block"}
	inline := []string{"inline"}
	s.addNode(&NodeType{Name: "doc", Content: ContentSpec{Allow: block, Min: 1}})
	s.addNode(&NodeType{Name: "paragraph", Groups: block, Content: ContentSpec{Allow: inline}, MarksAllowed: true})
	s.addNode(&NodeType{Name: "heading", Groups: block, Content: ContentSpec{Allow: inline}, MarksAllowed: true,
		Defaults: Attrs{"level": "1", "id": ""}, Defining: true})
	s.addNode(&NodeType{Name: "code_block", Groups: block, Content: ContentSpec{Allow: []string{"text"}}, Defining: true})
	s.addNode(&NodeType{Name: "blockquote", Groups: block, Content: ContentSpec{Allow: block, Min: 1}, Defining: true})
	s.addNode(&NodeType{Name: "bullet_list", Groups: []string{"block", "list"}, Content: ContentSpec{Allow: []string{"list_item"}, Min: 1}})
	s.addNode(&NodeType{Name: "ordered_list", Groups: []string{"block", "list"}, Content: ContentSpec{Allow: []string{"list_item"}, Min: 1},
		Defaults: Attrs{"order": "1"}})
	s.addNode(&NodeType{Name: "list_item", Content: ContentSpec{Allow: block, Min: 1}, Defining: true})
	s.addNode(&NodeType{Name: "table", Groups: block, Content: ContentSpec{Allow: []string{"table_row"}, Min: 1},
		Defaults: Attrs{"class": "bordered-table-cell"}, Isolating: true})
	s.addNode(&NodeType{Name: "table_row", Content: ContentSpec{Allow: []string{"cell"}, Min: 1}})
	s.addNode(&NodeType{Name: "table_cell", Groups: []string{"cell"}, Content: ContentSpec{Allow: block, Min: 1},
		Defaults: Attrs{"colspan": "1"}, Isolating: true})
	s.addNode(&NodeType{Name: "table_header", Groups: []string{"cell"}, Content: ContentSpec{Allow: block, Min: 1},
		Defaults: Attrs{"colspan": "1"}, Isolating: true})
	s.addNode(&NodeType{Name: "div", Groups: block, Content: ContentSpec{Allow: []string{"block", "button"}, Min: 1},
		Defaults: Attrs{"id": "", "editable": "true", "cssClass": ""}, Isolating: true, Defining: true})
	s.addNode(&NodeType{Name: "button", Content: ContentSpec{Allow: []string{"text"}},
		Defaults: Attrs{"id": "", "label": "", "cssClass": ""}, Isolating: true})
	s.addNode(&NodeType{Name: "text", Groups: inline, Inline: true, Leaf: true})
	s.addNode(&NodeType{Name: "image", Groups: inline, Inline: true, Leaf: true,
		Defaults: Attrs{"src": "", "alt": "", "width": "", "height": ""}})
	s.addNode(&NodeType{Name: "hard_break", Groups: inline, Inline: true, Leaf: true})

	s.addMark(&MarkType{Name: "link", Excludes: []string{"link"}, Defaults: Attrs{"href": ""}})
	s.addMark(&MarkType{Name: "bold", Inclusive: true, Excludes: []string{"bold"}})
	s.addMark(&MarkType{Name: "italic", Inclusive: true, Excludes: []string{"italic"}})
	s.addMark(&MarkType{Name: "underline", Inclusive: true, Excludes: []string{"underline"}})
	s.addMark(&MarkType{Name: "strike", Inclusive: true, Excludes: []string{"strike"}})
	s.addMark(&MarkType{Name: "code", Inclusive: true, Excludes: []string{"code"}})
	s.addMark(&MarkType{Name: "sub", Inclusive: true, Excludes: []string{"sub", "sup"}})
	s.addMark(&MarkType{Name: "sup", Inclusive: true, Excludes: []string{"sup", "sub"}})

	s.TopNode = s.Nodes["doc"]
	s.TextType = s.Nodes["text"]
	s.finish()
	return s
}
