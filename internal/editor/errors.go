package editor

import "github.com/dshills/markupeditor/internal/commands"

// Error is the typed error reported by editor operations and published on
// the editor.error topic.
type Error = commands.Error

// Code categorizes errors.
type Code = commands.Code

// Error codes.
const (
	CodeStyle    = commands.CodeStyle
	CodeList     = commands.CodeList
	CodeIndent   = commands.CodeIndent
	CodeTable    = commands.CodeTable
	CodeLink     = commands.CodeLink
	CodeImage    = commands.CodeImage
	CodeDiv      = commands.CodeDiv
	CodeSearch   = commands.CodeSearch
	CodeParse    = commands.CodeParse
	CodeInternal = commands.CodeInternal
)
