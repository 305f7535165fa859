// Package script runs Lua scripts against an editor session.
//
// A Runtime exposes its session as the global table "editor". Commands
// return ok plus an error message, so scripts can branch on rejections:
//
//	editor.set_test_html("<p>|Hello|</p>", "|")
//	local ok, err = editor.list("UL")
//	if not ok then print(err) end
//	print(editor.test_html("|"))
//
// Handlers registered with editor.on receive events as tables and run
// only while a script is executing. The runtime opens the base, table,
// string and math libraries; file loading is removed and print writes to
// the runtime's output.
package script
