package model

// replace fits slice into the range between from and to, closing every
// node it rebuilds and validating it against the schema.
func replace(from, to *ResolvedPos, slice *Slice) (*Node, error) {
	if slice.OpenStart > from.Depth {
		return nil, replaceErrorf("inserted content deeper than insertion position")
	}
	if from.Depth-slice.OpenStart != to.Depth-slice.OpenEnd {
		return nil, replaceErrorf("inconsistent open depths")
	}
	return replaceOuter(from, to, slice, 0)
}

func replaceOuter(from, to *ResolvedPos, slice *Slice, depth int) (*Node, error) {
	index := from.Index(depth)
	node := from.Node(depth)
	switch {
	case index == to.Index(depth) && depth < from.Depth-slice.OpenStart:
		inner, err := replaceOuter(from, to, slice, depth+1)
		if err != nil {
			return nil, err
		}
		return node.Copy(node.Content.ReplaceChild(index, inner)), nil
	case slice.Content.Size() == 0:
		content, err := replaceTwoWay(from, to, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, content)
	case slice.OpenStart == 0 && slice.OpenEnd == 0 && from.Depth == depth && to.Depth == depth:
		parent := from.Parent()
		content := parent.Content
		joined := content.Cut(0, from.ParentOffset).Append(slice.Content).Append(content.Cut(to.ParentOffset, content.Size()))
		return closeNode(parent, joined)
	default:
		start, end, err := prepareSliceForReplace(slice, from)
		if err != nil {
			return nil, err
		}
		content, err := replaceThreeWay(from, start, end, to, depth)
		if err != nil {
			return nil, err
		}
		return closeNode(node, content)
	}
}

func checkJoin(main, sub *Node) error {
	if !sub.Type.CompatibleContent(main.Type) {
		return replaceErrorf("cannot join %s onto %s", sub.Type.Name, main.Type.Name)
	}
	return nil
}

func joinable(before, after *ResolvedPos, depth int) (*Node, error) {
	node := before.Node(depth)
	if err := checkJoin(node, after.Node(depth)); err != nil {
		return nil, err
	}
	return node, nil
}

// addRange appends the children of the node at depth lying between start
// and end. A nil start means the beginning of the node, a nil end its end.
func addRange(start, end *ResolvedPos, depth int, target []*Node) []*Node {
	ref := end
	if ref == nil {
		ref = start
	}
	node := ref.Node(depth)
	startIndex, endIndex := 0, node.ChildCount()
	if end != nil {
		endIndex = end.Index(depth)
	}
	if start != nil {
		startIndex = start.Index(depth)
		if start.Depth > depth {
			startIndex++
		} else if start.TextOffset() > 0 {
			target = append(target, start.NodeAfter())
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		target = append(target, node.Child(i))
	}
	if end != nil && end.Depth == depth && end.TextOffset() > 0 {
		target = append(target, end.NodeBefore())
	}
	return target
}

func closeNode(node *Node, content *Fragment) (*Node, error) {
	if err := node.Type.checkContent(content); err != nil {
		return nil, err
	}
	return node.Copy(content), nil
}

func replaceThreeWay(from, start, end, to *ResolvedPos, depth int) (*Fragment, error) {
	var openStart, openEnd *Node
	var err error
	if from.Depth > depth {
		if openStart, err = joinable(from, start, depth+1); err != nil {
			return nil, err
		}
	}
	if to.Depth > depth {
		if openEnd, err = joinable(end, to, depth+1); err != nil {
			return nil, err
		}
	}

	content := addRange(nil, from, depth, nil)
	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return nil, err
		}
		inner, err := replaceThreeWay(from, start, end, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeNode(openStart, inner)
		if err != nil {
			return nil, err
		}
		content = append(content, closed)
	} else {
		if openStart != nil {
			inner, err := replaceTwoWay(from, start, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := closeNode(openStart, inner)
			if err != nil {
				return nil, err
			}
			content = append(content, closed)
		}
		content = addRange(start, end, depth, content)
		if openEnd != nil {
			inner, err := replaceTwoWay(end, to, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := closeNode(openEnd, inner)
			if err != nil {
				return nil, err
			}
			content = append(content, closed)
		}
	}
	content = addRange(to, nil, depth, content)
	return NewFragment(content), nil
}

func replaceTwoWay(from, to *ResolvedPos, depth int) (*Fragment, error) {
	content := addRange(nil, from, depth, nil)
	if from.Depth > depth {
		node, err := joinable(from, to, depth+1)
		if err != nil {
			return nil, err
		}
		inner, err := replaceTwoWay(from, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeNode(node, inner)
		if err != nil {
			return nil, err
		}
		content = append(content, closed)
	}
	content = addRange(to, nil, depth, content)
	return NewFragment(content), nil
}

// prepareSliceForReplace wraps the slice in copies of the ancestors of
// along so its open sides line up with the replaced range.
func prepareSliceForReplace(slice *Slice, along *ResolvedPos) (start, end *ResolvedPos, err error) {
	extra := along.Depth - slice.OpenStart
	parent := along.Node(extra)
	node := parent.Copy(slice.Content)
	for i := extra - 1; i >= 0; i-- {
		node = along.Node(i).Copy(FragmentFrom(node))
	}
	if start, err = node.Resolve(slice.OpenStart + extra); err != nil {
		return nil, nil, err
	}
	if end, err = node.Resolve(node.Content.Size() - slice.OpenEnd - extra); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
