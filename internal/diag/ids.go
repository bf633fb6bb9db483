// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diag

// ID names one diagnostic. Every ID resolves to a builtin severity class and
// a format string whose %0..%9 markers are replaced by the arguments attached
// to the report.
type ID int

const (
	// Lexer diagnostics.

	ErrUnterminatedBlockComment ID = iota
	ErrUnterminatedString
	ErrUnterminatedChar
	ErrEmptyCharConstant
	ErrInvalidCharacter
	ErrConflictMarker
	WarnNestedBlockComment
	WarnMultiLineLineComment
	ExtNoNewlineAtEOF
	ExtLineComment
	ExtDollarInIdentifier
	WarnTrigraphIgnored
	WarnTrigraphConverted
	ErrUnterminatedConditional
	ExtTokenPasteComment

	// Numeric and literal diagnostics.

	ErrInvalidSuffixOnInteger
	ErrInvalidSuffixOnFloat
	ErrInvalidDigit
	ErrInvalidBinaryDigit
	ErrExponentHasNoDigits
	ErrHexFloatRequiresExponent
	WarnIntegerTooLarge
	WarnCharConstTooLarge
	WarnMultiCharConstant
	WarnExtraneousWideChars
	ErrHexEscapeNoDigits
	WarnHexEscapeOutOfRange
	WarnOctalEscapeOutOfRange
	ExtUnknownEscape
	ExtNonStandardEscape
	ExtBinaryLiteral
	ExtImaginarySuffix
	ErrPascalStringTooLong

	// Preprocessor directive diagnostics.

	ErrInvalidDirective
	ErrMacroNameMissing
	ErrMacroNameIsKeyword
	ErrDefinedMacroName
	ErrEndifWithoutIf
	ErrElseWithoutIf
	ErrElifWithoutIf
	ErrElseAfterElse
	ErrElifAfterElse
	ErrUnterminatedDirective
	ExtExtraTokensAtEOL
	ErrExpectedValueInExpr
	ErrExpectedRParen
	ErrExpectedEOL
	ErrDivisionByZeroInPPExpr
	ErrRemainderByZeroInPPExpr
	ExtPPCommaExpr
	WarnPPExprOverflow
	ErrExpectedColon
	ErrExpectedHeaderName
	ErrIncludeNesting
	ErrFileNotFound
	ErrIncludeNextAtTopLevel
	ErrEmptyFilename
	ErrPoisonedIdentifier
	ErrPragmaOnceInMainFile
	ErrPragmaOperatorExpectsString
	WarnPragmaPoisonExistingMacro
	WarnPragmaSystemHeaderOutsideHeader
	ExtPPWarningDirective
	ErrPPErrorDirective
	ErrIdentExpectsString
	ErrLineExpectsInteger
	ErrLineValueOutOfRange
	ErrLineExpectsFilename
	WarnUndefOfBuiltin
	WarnRedefOfBuiltin
	WarnMacroRedefined
	ErrParamNameMissing
	ErrDuplicateMacroParam
	ErrExpectedCommaInParamList
	ErrMissingRParenInParamList
	ExtNamedVariadic
	ExtVariadicMacro
	ExtMissingWhitespaceAfterMacroName
	ErrTooFewMacroArgs
	ErrTooManyMacroArgs
	ErrUnterminatedMacroInvocation
	ErrHashNotFollowedByParam
	ErrCharifyNotOneChar
	ErrInvalidPasteResult
	ErrPasteAtStart
	ErrPasteAtEnd
	ExtPasteComma
	ErrStrayBackslashInStringize
	ErrEmbeddedDirectiveInMacroArg
	ErrUnexpectedAtInProgram

	// Parser diagnostics.

	ErrExpectedToken
	ErrExpectedExpression
	ErrExpectedIdentifier
	ErrExpectedSemi
	ErrExpectedSemiDecl
	ErrExpectedSemiAfterExpr
	ErrExpectedLParen
	ErrExpectedRParenParse
	ErrExpectedRSquare
	ErrExpectedRBrace
	ErrExpectedLBrace
	ErrMatchingDelimiterNote
	ErrExpectedStatement
	ErrDuplicateDeclSpec
	ErrInvalidDeclSpecCombination
	ErrInvalidSignSpec
	ErrInvalidWidthSpec
	ErrExpectedTypeName
	ErrExpectedFnBody
	ErrExpectedColonAfterCaseLabel
	ErrCaseNotInSwitch
	ErrDefaultNotInSwitch
	ErrBreakNotInBreakScope
	ErrContinueNotInContinueScope
	ErrExpectedWhileInDoStmt
	ErrExpectedIdentAfterGoto
	ErrIllegalStorageClassOnParam
	ErrExpectedDeclarator
	ErrKnRMissingParamDecl
	ErrKnRParamNotInIdentList
	ExtGNUEmptyConditional
	ExtGNUStatementExpr
	ErrExpectedStringLiteralAsm
	ErrUnknownAsmQualifier
	ErrExpectedSelector
	ErrExpectedMethodType
	ErrExpectedObjCDirective
	ErrExpectedClassName
	ErrMissingAtEnd
	ErrExpectedProtocolName
	ErrExpectedTemplateParam
	ErrExpectedGreaterInTemplate
	ErrOmpUnknownDirective
	ErrOmpUnexpectedDirective
	ErrOmpOrphanedSection
	ErrOmpDirectiveAtFileScope

	// Semantic stub diagnostics.

	ErrReturnTypeIncompatible
	WarnReturnPointerFromInt
	WarnReturnIntFromPointer
	WarnReturnIncompatiblePointer
	WarnReturnDiscardsQualifiers
	ErrTypedefRedefinition
	ErrRedefinition

	NumDiagnostics
)
