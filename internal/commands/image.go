package commands

import (
	"strconv"
	"strings"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// ImageInfo holds the attributes of an image node.
type ImageInfo struct {
	Src    string
	Alt    string
	Width  int
	Height int
}

// ImageInfoOf returns the attributes of an image node.
func ImageInfoOf(n *model.Node) ImageInfo {
	return ImageInfo{
		Src:    n.Attr("src"),
		Alt:    n.Attr("alt"),
		Width:  n.AttrInt("width", 0),
		Height: n.AttrInt("height", 0),
	}
}

// SelectedImage returns the image covered by the selection. The selection
// must cover exactly one image node.
func SelectedImage(st *state.EditorState) (int, *model.Node, bool) {
	if ns, ok := st.Selection.(state.NodeSelection); ok {
		if ns.Node.Type.Name == "image" {
			return ns.Pos, ns.Node, true
		}
		return 0, nil, false
	}
	from, to := st.Selection.Start(), st.Selection.End()
	if to != from+1 {
		return 0, nil, false
	}
	n := st.Doc.NodeAt(from)
	if n == nil || n.Type.Name != "image" {
		return 0, nil, false
	}
	return from, n, true
}

// InsertImage replaces the selection with an image.
func InsertImage(src, alt string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		src = strings.TrimSpace(src)
		if src == "" {
			return nil, Errorf(CodeImage, "empty image source")
		}
		img := st.Schema().Nodes["image"].Create(model.Attrs{"src": src, "alt": alt}, nil, nil)
		tr := newTr(st, NameInsertImage)
		if err := tr.ReplaceSelectionWith(img); err != nil {
			return nil, Wrap(CodeImage, err, "cannot insert image")
		}
		return tr, nil
	}
}

// ModifyImage changes the source and alt text of the selected image. An
// empty src keeps the current source.
func ModifyImage(src, alt string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		pos, img, ok := SelectedImage(st)
		if !ok {
			return nil, nil
		}
		tr := newTr(st, NameModifyImage)
		if src = strings.TrimSpace(src); src != "" && src != img.Attr("src") {
			if err := tr.SetNodeAttribute(pos, "src", src); err != nil {
				return nil, Wrap(CodeImage, err, "cannot modify image")
			}
		}
		if alt != img.Attr("alt") {
			if err := tr.SetNodeAttribute(pos, "alt", alt); err != nil {
				return nil, Wrap(CodeImage, err, "cannot modify image")
			}
		}
		return changed(tr)
	}
}

// ResizeImage sets the display size of the selected image in pixels.
func ResizeImage(width, height int) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		if width <= 0 || height <= 0 {
			return nil, Errorf(CodeImage, "invalid image size %dx%d", width, height)
		}
		pos, _, ok := SelectedImage(st)
		if !ok {
			return nil, nil
		}
		tr := newTr(st, NameResizeImage)
		if err := tr.SetNodeAttribute(pos, "width", strconv.Itoa(width)); err != nil {
			return nil, Wrap(CodeImage, err, "cannot resize image")
		}
		if err := tr.SetNodeAttribute(pos, "height", strconv.Itoa(height)); err != nil {
			return nil, Wrap(CodeImage, err, "cannot resize image")
		}
		return changed(tr)
	}
}

// CutImage deletes the selected image.
func CutImage() Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		pos, img, ok := SelectedImage(st)
		if !ok {
			return nil, nil
		}
		tr := newTr(st, NameCutImage)
		if err := tr.Delete(pos, pos+img.NodeSize()); err != nil {
			return nil, Wrap(CodeImage, err, "cannot cut image")
		}
		if err := tr.SetSelection(state.Cursor(pos)); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
}
