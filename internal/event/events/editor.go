package events

import "github.com/dshills/markupeditor/internal/event/topic"

// Editor event topics.
const (
	// TopicStateChanged is published after a transaction changes the document.
	TopicStateChanged topic.Topic = "editor.state.changed"

	// TopicSelectionChanged is published when the selection moves.
	TopicSelectionChanged topic.Topic = "editor.selection.changed"

	// TopicError is published when a command is rejected or fails.
	TopicError topic.Topic = "editor.error"

	// TopicHeightChanged is published when the reported content height changes.
	TopicHeightChanged topic.Topic = "editor.height.changed"

	// TopicFocusChanged is published when a session becomes the focused one.
	TopicFocusChanged topic.Topic = "editor.focus.changed"

	// TopicSearchCountChanged is published when a search changes the match count.
	TopicSearchCountChanged topic.Topic = "search.count.changed"

	// TopicImageCopied is published when an image is copied or cut.
	TopicImageCopied topic.Topic = "image.copied"
)

// StateChanged describes a committed document change.
type StateChanged struct {
	// Command names the command that produced the change, if any.
	Command string `json:"command"`

	// Steps is the number of steps in the transaction.
	Steps int `json:"steps"`

	// Size is the document content size after the change.
	Size int `json:"size"`

	// AddToHistory is false for changes that bypass undo.
	AddToHistory bool `json:"add_to_history"`

	// Undo and Redo flag history replays.
	Undo bool `json:"undo"`
	Redo bool `json:"redo"`
}

// SelectionChanged describes the new selection.
type SelectionChanged struct {
	From  int  `json:"from"`
	To    int  `json:"to"`
	Empty bool `json:"empty"`

	// DivID is the id of the div holding the selection, or "".
	DivID string `json:"div_id"`
}

// Error is a rejected or failed command.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Info    string `json:"info"`

	// Alert asks the host to interrupt the user.
	Alert bool `json:"alert"`
}

// HeightChanged carries the new content height in host units.
type HeightChanged struct {
	Height int `json:"height"`
}

// FocusChanged names the newly focused session.
type FocusChanged struct {
	SessionID string `json:"session_id"`
}

// SearchCountChanged reports the matches of the current search.
type SearchCountChanged struct {
	Query string `json:"query"`
	Count int    `json:"count"`

	// Current is the index of the selected match, or -1.
	Current int `json:"current"`
}

// ImageCopied describes the copied image.
type ImageCopied struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Cut is true when the image was removed from the document.
	Cut bool `json:"cut"`
}
