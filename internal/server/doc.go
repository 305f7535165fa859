// Package server exposes editor sessions to a host process over HTTP.
//
// A websocket connection to /ws opens a session. The server first sends
//
//	{"type":"hello","session":"<id>"}
//
// and then answers each request
//
//	{"id":1,"cmd":"format","args":{"tag":"B"}}
//
// with a result carrying the same id. Events the session publishes while
// handling a request are sent before its result:
//
//	{"type":"event","topic":"editor.state.changed","payload":{...}}
//	{"type":"result","id":1,"ok":true,"value":true}
//
// A rejected command has ok false and an error with the editor error code.
// The session closes with the connection.
//
// The /api routes read and replace a session's HTML and move focus
// between sessions.
package server
