package commands

import (
	"strconv"
	"strings"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// Directions for AddRow and AddCol.
const (
	Before = "BEFORE"
	After  = "AFTER"
)

// Areas for DeleteTableArea.
const (
	AreaRow   = "ROW"
	AreaCol   = "COL"
	AreaTable = "TABLE"
)

// Border styles for BorderTable.
const (
	BorderOuter  = "outer"
	BorderHeader = "header"
	BorderCell   = "cell"
	BorderNone   = "none"
)

// BorderClass returns the table class for a border style.
func BorderClass(style string) string {
	return "bordered-table-" + style
}

// TableContext locates the selection inside a table.
type TableContext struct {
	Pos   int
	Table *model.Node
	Row   int
	Col   int
	// Offset is the selection start relative to the cell content.
	Offset int
}

// Rows returns the table's rows.
func (c *TableContext) Rows() []*model.Node { return c.Table.Content.Nodes() }

// HasHeader reports whether the first row is a header row.
func (c *TableContext) HasHeader() bool { return hasHeader(c.Table) }

// Cols returns the number of columns, counting colspans.
func (c *TableContext) Cols() int { return columnCount(c.Table) }

// InMergedHeader reports whether the selection is in a header row made of
// one spanning cell.
func (c *TableContext) InMergedHeader() bool {
	return c.Row == 0 && c.HasHeader() && mergedHeader(c.Table)
}

// FindTable returns the innermost table holding the selection start.
func FindTable(st *state.EditorState) (*TableContext, bool) {
	from, err := st.Doc.Resolve(st.Selection.Start())
	if err != nil {
		return nil, false
	}
	table, depth := state.InnermostOfType(from, st.Schema().Nodes["table"])
	if table == nil {
		return nil, false
	}
	c := &TableContext{Pos: from.Before(depth), Table: table}
	if from.Depth >= depth+2 {
		c.Row = from.Index(depth)
		c.Col = from.Index(depth + 1)
		c.Offset = from.Pos - from.Start(depth+2)
	}
	return c, true
}

func hasHeader(table *model.Node) bool {
	first := table.FirstChild()
	return first != nil && first.ChildCount() > 0 && first.FirstChild().Type.Name == "table_header"
}

func mergedHeader(table *model.Node) bool {
	return hasHeader(table) && table.FirstChild().ChildCount() == 1
}

func columnCount(table *model.Node) int {
	cols := 0
	table.Content.ForEach(func(row *model.Node, _, _ int) {
		n := 0
		row.Content.ForEach(func(cell *model.Node, _, _ int) {
			n += cell.AttrInt("colspan", 1)
		})
		cols = max(cols, n)
	})
	return cols
}

func emptyCell(s *model.Schema, name string, attrs model.Attrs) *model.Node {
	return s.Nodes[name].Create(attrs, model.FragmentFrom(s.Node("paragraph", nil)), nil)
}

func bodyRow(s *model.Schema, cols int) *model.Node {
	cells := make([]*model.Node, cols)
	for i := range cells {
		cells[i] = emptyCell(s, "table_cell", nil)
	}
	return s.Nodes["table_row"].Create(nil, model.NewFragment(cells), nil)
}

func headerRow(s *model.Schema, cols int, merged bool) *model.Node {
	if merged {
		cell := emptyCell(s, "table_header", model.Attrs{"colspan": strconv.Itoa(cols)})
		return s.Nodes["table_row"].Create(nil, model.FragmentFrom(cell), nil)
	}
	cells := make([]*model.Node, cols)
	for i := range cells {
		cells[i] = emptyCell(s, "table_header", nil)
	}
	return s.Nodes["table_row"].Create(nil, model.NewFragment(cells), nil)
}

// mergeHeaderRow returns row as the single header cell spanning cols
// columns that a table header always is. Non-empty cell content is kept
// in order.
func mergeHeaderRow(row *model.Node, cols int) *model.Node {
	first := row.FirstChild()
	var blocks []*model.Node
	row.Content.ForEach(func(cell *model.Node, _, _ int) {
		if cell.ChildCount() == 1 && cell.FirstChild().Content.Size() == 0 {
			return
		}
		blocks = append(blocks, cell.Content.Nodes()...)
	})
	content := first.Content
	if len(blocks) > 0 {
		content = model.NewFragment(blocks)
	}
	cell := first.Type.Create(mergeAttrs(first.Attrs, "colspan", strconv.Itoa(cols)), content, nil)
	return row.Copy(model.FragmentFrom(cell))
}

// cellContentPos returns the position of the start of the content of the
// cell at (row, col) in a table at tablePos.
func cellContentPos(tablePos int, table *model.Node, row, col int) int {
	pos := tablePos + 1
	for i := 0; i < row; i++ {
		pos += table.Child(i).NodeSize()
	}
	pos++
	r := table.Child(row)
	for i := 0; i < col; i++ {
		pos += r.Child(i).NodeSize()
	}
	return pos + 1
}

// replaceTable swaps the table in c for rows and puts the cursor in the
// cell at (row, col), keeping offset when the cell content allows it.
func replaceTable(tr *state.Transaction, c *TableContext, rows []*model.Node, row, col, offset int) error {
	table := c.Table.Copy(model.NewFragment(rows))
	if err := tr.ReplaceWith(c.Pos, c.Pos+c.Table.NodeSize(), table); err != nil {
		return err
	}
	row = min(max(row, 0), len(rows)-1)
	col = min(max(col, 0), rows[row].ChildCount()-1)
	cell := rows[row].Child(col)
	pos := cellContentPos(c.Pos, table, row, col) + min(max(offset, 0), cell.Content.Size())
	return tr.SetSelection(state.Near(tr.Doc, pos, 1))
}

// InsertTable inserts an empty rows by cols table with the given border
// style ("" for the default). An empty paragraph at the selection is
// replaced; otherwise the table goes after the selected block. The cursor
// ends up in the first cell.
func InsertTable(rows, cols int, border string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		if rows < 1 || cols < 1 {
			return nil, Errorf(CodeTable, "invalid table size %dx%d", rows, cols)
		}
		s := st.Schema()
		typ := s.Nodes["table"]
		var attrs model.Attrs
		if border != "" {
			attrs = model.Attrs{"class": BorderClass(border)}
		}
		body := make([]*model.Node, rows)
		for i := range body {
			body[i] = bodyRow(s, cols)
		}
		table := typ.Create(attrs, model.NewFragment(body), nil)

		from, _, err := bounds(st)
		if err != nil {
			return nil, err
		}
		tr := newTr(st, NameInsertTable)
		var pos int
		parent := from.Parent()
		switch {
		case from.Depth == 0:
			pos = from.Pos
			err = tr.Insert(pos, table)
		case parent.Type.Name == "paragraph" && parent.Content.Size() == 0 && from.Node(from.Depth-1).Type.Allows(typ):
			pos = from.Before(from.Depth)
			err = tr.ReplaceWith(pos, pos+parent.NodeSize(), table)
		default:
			d := from.Depth
			for d > 1 && !from.Node(d-1).Type.Allows(typ) {
				d--
			}
			if !from.Node(d - 1).Type.Allows(typ) {
				return nil, Errorf(CodeTable, "cannot insert a table here")
			}
			if !st.Selection.IsEmpty() {
				if err := tr.DeleteSelection(); err != nil {
					return nil, Wrap(CodeTable, err, "cannot insert table")
				}
			}
			pos = tr.Mapping.Map(from.After(d), 1)
			err = tr.Insert(pos, table)
		}
		if err != nil {
			return nil, Wrap(CodeTable, err, "cannot insert table")
		}
		if err := tr.SetSelection(state.Cursor(pos + 4)); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
}

func direction(dir string) (bool, error) {
	switch strings.ToUpper(dir) {
	case Before:
		return true, nil
	case After:
		return false, nil
	}
	return false, unknown(CodeTable, "direction", dir, directions)
}

// AddRow adds an empty body row before or after the selected row. Rows
// cannot be added above a header.
func AddRow(dir string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		before, err := direction(dir)
		if err != nil {
			return nil, err
		}
		c, ok := FindTable(st)
		if !ok {
			return nil, nil
		}
		if before && c.Row == 0 && c.HasHeader() {
			return nil, nil
		}
		at, row := c.Row+1, c.Row
		if before {
			at, row = c.Row, c.Row+1
		}
		rows := insertNode(c.Rows(), at, bodyRow(st.Schema(), c.Cols()))
		tr := newTr(st, NameAddRow)
		if err := replaceTable(tr, c, rows, row, c.Col, c.Offset); err != nil {
			return nil, Wrap(CodeTable, err, "cannot add row")
		}
		return tr, nil
	}
}

// AddCol adds an empty column before or after the selected column. The
// header row, if any, is then merged into one cell spanning every column,
// so a header split by AddHeader(false) is joined again. From inside a
// merged header the column goes at the end (after) or the start (before).
func AddCol(dir string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		before, err := direction(dir)
		if err != nil {
			return nil, err
		}
		c, ok := FindTable(st)
		if !ok {
			return nil, nil
		}
		s := st.Schema()
		cols := c.Cols()
		at := c.Col + 1
		switch {
		case c.InMergedHeader() && before:
			at = 0
		case c.InMergedHeader():
			at = cols
		case before:
			at = c.Col
		}

		rows := c.Rows()
		out := make([]*model.Node, len(rows))
		for i, row := range rows {
			cells := row.Content.Nodes()
			if i == 0 && c.HasHeader() {
				out[i] = mergeHeaderRow(row, cols+1)
				continue
			}
			cells = insertNode(cells, min(at, len(cells)), emptyCell(s, "table_cell", nil))
			out[i] = row.Copy(model.NewFragment(cells))
		}
		col := c.Col
		switch {
		case c.Row == 0 && c.HasHeader():
			col = 0
		case before:
			col++
		}
		tr := newTr(st, NameAddCol)
		if err := replaceTable(tr, c, out, c.Row, col, c.Offset); err != nil {
			return nil, Wrap(CodeTable, err, "cannot add column")
		}
		return tr, nil
	}
}

// AddHeader inserts a header row above the table body. With colspan the
// header is one cell spanning every column. A table that already has a
// header is left alone.
func AddHeader(colspan bool) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		c, ok := FindTable(st)
		if !ok || c.HasHeader() {
			return nil, nil
		}
		rows := insertNode(c.Rows(), 0, headerRow(st.Schema(), c.Cols(), colspan))
		tr := newTr(st, NameAddHeader)
		if err := replaceTable(tr, c, rows, 0, 0, 0); err != nil {
			return nil, Wrap(CodeTable, err, "cannot add header")
		}
		return tr, nil
	}
}

// DeleteTableArea deletes the selected row, the selected column or the
// whole table. Removing the last row or column removes the table.
func DeleteTableArea(area string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		c, ok := FindTable(st)
		if !ok {
			return nil, nil
		}
		tr := newTr(st, NameDeleteArea)
		switch strings.ToUpper(area) {
		case AreaTable:
			err := deleteTable(tr, c)
			if err != nil {
				return nil, Wrap(CodeTable, err, "cannot delete table")
			}
			return tr, nil
		case AreaRow:
			rows := removeNode(c.Rows(), c.Row)
			if len(rows) == 0 || (len(rows) == 1 && c.HasHeader() && c.Row > 0) {
				err := deleteTable(tr, c)
				if err != nil {
					return nil, Wrap(CodeTable, err, "cannot delete table")
				}
				return tr, nil
			}
			if err := replaceTable(tr, c, rows, min(c.Row, len(rows)-1), c.Col, 0); err != nil {
				return nil, Wrap(CodeTable, err, "cannot delete row")
			}
			return tr, nil
		case AreaCol:
			if c.InMergedHeader() {
				return nil, nil
			}
			cols := c.Cols()
			if cols <= 1 {
				if err := deleteTable(tr, c); err != nil {
					return nil, Wrap(CodeTable, err, "cannot delete table")
				}
				return tr, nil
			}
			rows := c.Rows()
			out := make([]*model.Node, 0, len(rows))
			for i, row := range rows {
				cells := row.Content.Nodes()
				if !(i == 0 && mergedHeader(c.Table)) && c.Col < len(cells) {
					cells = removeNode(cells, c.Col)
				}
				row = row.Copy(model.NewFragment(cells))
				if i == 0 && c.HasHeader() {
					row = mergeHeaderRow(row, cols-1)
				}
				out = append(out, row)
			}
			if err := replaceTable(tr, c, out, c.Row, c.Col, 0); err != nil {
				return nil, Wrap(CodeTable, err, "cannot delete column")
			}
			return tr, nil
		}
		return nil, unknown(CodeTable, "table area", area, areas)
	}
}

// deleteTable removes the table and moves the cursor next to where it was.
func deleteTable(tr *state.Transaction, c *TableContext) error {
	if err := deleteNode(tr, c.Pos, c.Table); err != nil {
		return err
	}
	return tr.SetSelection(state.Near(tr.Doc, c.Pos, 1))
}

// BorderTable sets the border style of the selected table.
func BorderTable(style string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		switch style {
		case BorderOuter, BorderHeader, BorderCell, BorderNone:
		default:
			return nil, unknown(CodeTable, "border", style, borders)
		}
		c, ok := FindTable(st)
		if !ok {
			return nil, nil
		}
		class := BorderClass(style)
		if c.Table.Attr("class") == class {
			return nil, nil
		}
		tr := newTr(st, NameBorderTable)
		if err := tr.SetNodeAttribute(c.Pos, "class", class); err != nil {
			return nil, Wrap(CodeTable, err, "cannot set border")
		}
		return tr, nil
	}
}

func mergeAttrs(attrs model.Attrs, key, value string) model.Attrs {
	out := attrs.Clone()
	out[key] = value
	return out
}

func insertNode(nodes []*model.Node, at int, n *model.Node) []*model.Node {
	out := make([]*model.Node, 0, len(nodes)+1)
	out = append(out, nodes[:at]...)
	out = append(out, n)
	return append(out, nodes[at:]...)
}

func removeNode(nodes []*model.Node, at int) []*model.Node {
	out := make([]*model.Node, 0, len(nodes))
	out = append(out, nodes[:at]...)
	return append(out, nodes[at+1:]...)
}
