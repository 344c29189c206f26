// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package perr defines the structured error taxonomy shared by the
// lexer, parser, and evaluator: every reported failure carries a
// stable Code plus a property map, rather than just a formatted
// string, so that callers (and conformance tests) can match on the
// failure's shape instead of its prose.
package perr

import "fmt"

// PropKey names one property attached to an Error.
type PropKey string

const (
	LineNumber   PropKey = "LINE_NUMBER"
	ColumnNumber PropKey = "COLUMN_NUMBER"
	TokenType    PropKey = "TOKEN_TYPE"
	TokenValue   PropKey = "TOKEN_VALUE"
	Keyword      PropKey = "KEYWORD"

	// ExpectedTokenType(1Of2/2Of2) name the TokenType(s) the parser
	// would have accepted at the failing position; distinct from
	// ExpectedType/ActualType below, which describe a document-model
	// type mismatch (CAST, function arguments), not a lexical one.
	ExpectedTokenType     PropKey = "EXPECTED_TOKEN_TYPE"
	ExpectedTokenType1Of2 PropKey = "EXPECTED_TOKEN_TYPE_1_OF_2"
	ExpectedTokenType2Of2 PropKey = "EXPECTED_TOKEN_TYPE_2_OF_2"

	// ExpectedArityMin/Max name a CAST type's required parameter count.
	ExpectedArityMin PropKey = "EXPECTED_ARITY_MIN"
	ExpectedArityMax PropKey = "EXPECTED_ARITY_MAX"

	ExpectedType PropKey = "EXPECTED_TYPE"
	ActualType   PropKey = "ACTUAL_TYPE"
	FunctionName PropKey = "FUNCTION_NAME"
	Operator     PropKey = "OPERATOR"
	Value        PropKey = "VALUE"
	Cause        PropKey = "CAUSE"
	CastFrom     PropKey = "CAST_FROM"
	CastTo       PropKey = "CAST_TO"
	BindingName  PropKey = "BINDING_NAME"
	SessionID    PropKey = "SESSION_ID"
)

// Code is a stable error identifier. Codes are grouped by the phase
// that raises them: PARSE_* from the lexer/parser, EVALUATOR_* from
// the evaluator.
type Code string

const (
	// Lexer/parser codes.
	InvalidCharacter                       Code = "LEXER_INVALID_CHARACTER"
	ParseExpectedKeyword                   Code = "PARSE_EXPECTED_KEYWORD"
	ParseExpectedTypeName                  Code = "PARSE_EXPECTED_TYPE_NAME"
	ParseMissingIdentAfterAt                Code = "PARSE_MISSING_IDENT_AFTER_AT"
	ParseUnexpectedToken                   Code = "PARSE_UNEXPECTED_TOKEN"
	ParseUnexpectedKeyword                 Code = "PARSE_UNEXPECTED_KEYWORD"
	ParseInvalidPathComponent              Code = "PARSE_INVALID_PATH_COMPONENT"
	ParseCastArity                         Code = "PARSE_CAST_ARITY"
	ParseInvalidTypeParam                  Code = "PARSE_INVALID_TYPE_PARAM"
	ParseExpectedWhenClause                Code = "PARSE_EXPECTED_WHEN_CLAUSE"
	ParseUnexpectedOperator                Code = "PARSE_UNEXPECTED_OPERATOR"
	ParseExpectedExpression                Code = "PARSE_EXPECTED_EXPRESSION"
	ParseExpectedTokenType                 Code = "PARSE_EXPECTED_TOKEN_TYPE"
	ParseExpected2TokenTypes                Code = "PARSE_EXPECTED_2_TOKEN_TYPES"
	ParseExpectedLeftParenAfterCast         Code = "PARSE_EXPECTED_LEFT_PAREN_AFTER_CAST"
	ParseExpectedLeftParenValueConstructor  Code = "PARSE_EXPECTED_LEFT_PAREN_VALUE_CONSTRUCTOR"
	ParseUnexpectedTerm                    Code = "PARSE_UNEXPECTED_TERM"
	ParseSelectMissingFrom                 Code = "PARSE_SELECT_MISSING_FROM"
	ParseUnsupportedLiteralsGroupby        Code = "PARSE_UNSUPPORTED_LITERALS_GROUPBY"
	ParseExpectedIdentForAlias             Code = "PARSE_EXPECTED_IDENT_FOR_ALIAS"
	ParseExpectedIdentForAt                Code = "PARSE_EXPECTED_IDENT_FOR_AT"
	ParseExpectedLeftParenBuiltinCall      Code = "PARSE_EXPECTED_LEFT_PAREN_BUILTIN_FUNCTION_CALL"
	ParseExpectedRightParenBuiltinCall     Code = "PARSE_EXPECTED_RIGHT_PAREN_BUILTIN_FUNCTION_CALL"
	ParseExpectedArgumentDelimiter         Code = "PARSE_EXPECTED_ARGUMENT_DELIMITER"

	// Evaluator codes.
	EvaluatorInvalidArguments Code = "EVALUATOR_INVALID_ARGUMENTS"
	EvaluatorIntOverflow      Code = "EVALUATOR_INT_OVERFLOW"
	EvaluatorInvalidCast      Code = "EVALUATOR_INVALID_CAST"
	EvaluatorInvalidCastNoLoc Code = "EVALUATOR_INVALID_CAST_NO_LOCATION"
	EvaluatorCastFailed       Code = "EVALUATOR_CAST_FAILED"
	EvaluatorCastFailedNoLoc  Code = "EVALUATOR_CAST_FAILED_NO_LOCATION"
	EvaluatorDivideByZero     Code = "EVALUATOR_DIVIDE_BY_ZERO"
	EvaluatorBindingNotFound  Code = "EVALUATOR_BINDING_NOT_FOUND"
	EvaluatorUnboundedExpr    Code = "EVALUATOR_UNBOUND_EXPRESSION"
	EvaluatorGeneric          Code = "EVALUATOR_GENERIC"
)

// Error is the structured taxonomy shared by parse and evaluation
// failures. Internal, when true, marks a bug in this module rather
// than a malformed query or input (an invariant violated, a case the
// grammar should have ruled out already).
type Error struct {
	Code       Code
	Message    string
	Properties map[PropKey]any
	Internal   bool
}

func (e *Error) Error() string {
	if len(e.Properties) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s %v", e.Code, e.Message, e.Properties)
}

// Property fetches a property, returning nil, false if unset.
func (e *Error) Property(k PropKey) (any, bool) {
	v, ok := e.Properties[k]
	return v, ok
}

// New builds an Error with the given code, message, and properties
// (supplied as alternating key/value pairs, following the convention
// used elsewhere in this module for building small maps inline).
func New(code Code, message string, kv ...any) *Error {
	e := &Error{Code: code, Message: message}
	if len(kv) > 0 {
		e.Properties = make(map[PropKey]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, _ := kv[i].(PropKey)
			e.Properties[key] = kv[i+1]
		}
	}
	return e
}

// Internal builds an Error marked Internal: true, for conditions that
// indicate a defect in this module rather than bad input.
func Internal(code Code, message string, kv ...any) *Error {
	e := New(code, message, kv...)
	e.Internal = true
	return e
}
