// Package editor is the session facade of the markup editor.
//
// An Editor owns one document state together with its undo history and
// searcher, and reports what happens to it on an event bus:
//
//	ed := editor.New(editor.WithConfig(cfg))
//	ed.Subscribe(events.TopicStateChanged, func(ctx context.Context, ev any) error {
//		html, _ := ed.GetHTML(false, true, "")
//		return render(html)
//	})
//	ed.SetHTML("<p>Hello</p>")
//	ed.SelectAll()
//	ed.ToggleBold()
//
// Commands return (bool, error). A false result with a nil error means
// the command did not apply at the selection. An error is an *Error with
// a stable Code; every error is also published on editor.error. Panics
// inside a command are recovered and reported as Internal errors with
// Alert set, and the document is left as it was.
//
// The document changes only through transactions. Each applied
// transaction that changes the document is recorded in the history,
// publishes editor.state.changed, and drops the search matches.
package editor
