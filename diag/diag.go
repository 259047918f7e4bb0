// Package diag defines the error taxonomy shared by every stage of the Quill
// front end.
//
// Every failure is a *[Error] carrying a [Kind], a message and an optional
// 1-based source line (0 when unknown). Errors are fatal: the first one raised
// aborts compilation and is returned unchanged to the caller.
//
// The driver-side contract lives in [Format]: print "Line <n>\n\t<message>"
// when a line is known, or the bare message otherwise.
package diag

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a diagnostic.
type Kind int

const (
	// Syntax covers malformed tokens and grammar violations.
	Syntax Kind = iota
	// Name covers duplicate symbols and reuse of built-in names.
	Name
	// Type covers conflicting return types and operand mismatches.
	Type
	// IllegalStatement covers statements that are well-formed but not
	// allowed where they appear, and malformed callable declarations.
	IllegalStatement
	// Reference covers uses of names that are not bound.
	Reference
	// Declaration covers declarations whose parts do not agree.
	Declaration
	// ArrayBounds covers constant indices and literals that exceed a size.
	ArrayBounds
	// UnreachableCode covers statements that can never execute.
	UnreachableCode
)

var kindNames = [...]string{
	Syntax:           "SyntaxError",
	Name:             "NameError",
	Type:             "TypeError",
	IllegalStatement: "IllegalStatementError",
	Reference:        "ReferenceError",
	Declaration:      "DeclarationError",
	ArrayBounds:      "ArrayBoundsError",
	UnreachableCode:  "UnreachableCodeError",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a single fatal diagnostic.
type Error struct {
	Kind Kind
	Msg  string
	Line int // 1-based; 0 when unknown
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

// Newf builds an *Error of the given kind with a formatted message.
func Newf(kind Kind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Line: line}
}

// KindOf reports the Kind of err when err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var d *Error
	if errors.As(err, &d) {
		return d.Kind, true
	}
	return 0, false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Format renders err the way the driver prints it.
func Format(err error) string {
	var d *Error
	if !errors.As(err, &d) {
		return err.Error()
	}
	if d.Line > 0 {
		return fmt.Sprintf("Line %d\n\t%s", d.Line, d.Error())
	}
	return d.Error()
}

// Exit codes used by the driver.
const (
	ExitOK       = 0
	ExitCompile  = 1
	ExitInternal = 2
)

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, new(*Error)):
		return ExitCompile
	default:
		return ExitInternal
	}
}
