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

// Class is the builtin severity of a diagnostic before mapping overrides and
// engine flags are applied.
type Class int

const (
	ClassNote Class = iota
	ClassWarning
	ClassExtension
	ClassError
	ClassFatal
)

type info struct {
	class  Class
	format string
}

var table = map[ID]info{
	ErrUnterminatedBlockComment: {ClassError, "unterminated /* comment"},
	ErrUnterminatedString:       {ClassError, "missing terminating '\"' character"},
	ErrUnterminatedChar:         {ClassError, "missing terminating ' character"},
	ErrEmptyCharConstant:        {ClassError, "empty character constant"},
	ErrInvalidCharacter:         {ClassError, "invalid character '%0' in input"},
	ErrConflictMarker:           {ClassError, "version control conflict marker in file"},
	WarnNestedBlockComment:      {ClassWarning, "'/*' within block comment"},
	WarnMultiLineLineComment:    {ClassWarning, "multi-line // comment"},
	ExtNoNewlineAtEOF:           {ClassExtension, "no newline at end of file"},
	ExtLineComment:              {ClassExtension, "// comments are not allowed in this language"},
	ExtDollarInIdentifier:       {ClassExtension, "'$' in identifier"},
	WarnTrigraphIgnored:         {ClassWarning, "trigraph ignored"},
	WarnTrigraphConverted:       {ClassWarning, "trigraph converted to '%0' character"},
	ErrUnterminatedConditional:  {ClassError, "unterminated conditional directive"},
	ExtTokenPasteComment:        {ClassExtension, "pasting two '/' tokens into a '//' comment"},

	ErrInvalidSuffixOnInteger:   {ClassError, "invalid suffix '%0' on integer constant"},
	ErrInvalidSuffixOnFloat:     {ClassError, "invalid suffix '%0' on floating constant"},
	ErrInvalidDigit:             {ClassError, "invalid digit '%0' in octal constant"},
	ErrInvalidBinaryDigit:       {ClassError, "invalid digit '%0' in binary constant"},
	ErrExponentHasNoDigits:      {ClassError, "exponent has no digits"},
	ErrHexFloatRequiresExponent: {ClassError, "hexadecimal floating constant requires an exponent"},
	WarnIntegerTooLarge:         {ClassWarning, "integer constant is too large for its type"},
	WarnCharConstTooLarge:       {ClassWarning, "character constant too long for its type"},
	WarnMultiCharConstant:       {ClassWarning, "multi-character character constant"},
	WarnExtraneousWideChars:     {ClassWarning, "extraneous characters in wide character constant ignored"},
	ErrHexEscapeNoDigits:        {ClassError, "\\x used with no following hex digits"},
	WarnHexEscapeOutOfRange:     {ClassWarning, "hex escape sequence out of range"},
	WarnOctalEscapeOutOfRange:   {ClassWarning, "octal escape sequence out of range"},
	ExtUnknownEscape:            {ClassExtension, "unknown escape sequence '\\%0'"},
	ExtNonStandardEscape:        {ClassExtension, "use of non-standard escape character '\\%0'"},
	ExtBinaryLiteral:            {ClassExtension, "binary integer literals are an extension"},
	ExtImaginarySuffix:          {ClassExtension, "imaginary constants are an extension"},
	ErrPascalStringTooLong:      {ClassError, "Pascal string is too long"},

	ErrInvalidDirective:                {ClassError, "invalid preprocessing directive"},
	ErrMacroNameMissing:                {ClassError, "macro name missing"},
	ErrMacroNameIsKeyword:              {ClassError, "macro name must be an identifier"},
	ErrDefinedMacroName:                {ClassError, "operator 'defined' requires a macro name"},
	ErrEndifWithoutIf:                  {ClassError, "#endif without #if"},
	ErrElseWithoutIf:                   {ClassError, "#else without #if"},
	ErrElifWithoutIf:                   {ClassError, "#elif without #if"},
	ErrElseAfterElse:                   {ClassError, "#else after #else"},
	ErrElifAfterElse:                   {ClassError, "#elif after #else"},
	ErrUnterminatedDirective:           {ClassError, "unterminated preprocessing directive"},
	ExtExtraTokensAtEOL:                {ClassExtension, "extra tokens at end of #%0 directive"},
	ErrExpectedValueInExpr:             {ClassError, "expected value in expression"},
	ErrExpectedRParen:                  {ClassError, "expected ')'"},
	ErrExpectedEOL:                     {ClassError, "expected end of line in preprocessor expression"},
	ErrDivisionByZeroInPPExpr:          {ClassError, "division by zero in preprocessor expression"},
	ErrRemainderByZeroInPPExpr:         {ClassError, "remainder by zero in preprocessor expression"},
	ExtPPCommaExpr:                     {ClassExtension, "comma operator in operand of #if"},
	WarnPPExprOverflow:                 {ClassWarning, "integer overflow in preprocessor expression"},
	ErrExpectedColon:                   {ClassError, "expected ':' in ternary expression"},
	ErrExpectedHeaderName:              {ClassError, "expected \"FILENAME\" or <FILENAME>"},
	ErrIncludeNesting:                  {ClassFatal, "#include nested too deeply"},
	ErrFileNotFound:                    {ClassFatal, "'%0' file not found"},
	ErrIncludeNextAtTopLevel:           {ClassWarning, "#include_next in primary source file"},
	ErrEmptyFilename:                   {ClassError, "empty filename"},
	ErrPoisonedIdentifier:              {ClassError, "attempt to use a poisoned identifier '%0'"},
	ErrPragmaOnceInMainFile:            {ClassWarning, "#pragma once in main file"},
	ErrPragmaOperatorExpectsString:     {ClassError, "_Pragma takes a parenthesized string literal"},
	WarnPragmaPoisonExistingMacro:      {ClassWarning, "poisoning existing macro"},
	WarnPragmaSystemHeaderOutsideHeader: {ClassWarning, "#pragma system_header ignored in main file"},
	ExtPPWarningDirective:              {ClassWarning, "#warning%0"},
	ErrPPErrorDirective:                {ClassError, "#error%0"},
	ErrIdentExpectsString:              {ClassError, "#ident expects \"string\""},
	ErrLineExpectsInteger:              {ClassError, "#line directive requires a positive integer argument"},
	ErrLineValueOutOfRange:             {ClassError, "#line directive value out of range"},
	ErrLineExpectsFilename:             {ClassError, "invalid filename in #line directive"},
	WarnUndefOfBuiltin:                 {ClassWarning, "undefining builtin macro '%0'"},
	WarnRedefOfBuiltin:                 {ClassWarning, "redefining builtin macro '%0'"},
	WarnMacroRedefined:                 {ClassWarning, "'%0' macro redefined"},
	ErrParamNameMissing:                {ClassError, "expected identifier in macro parameter list"},
	ErrDuplicateMacroParam:             {ClassError, "duplicate macro parameter name '%0'"},
	ErrExpectedCommaInParamList:        {ClassError, "expected comma in macro parameter list"},
	ErrMissingRParenInParamList:        {ClassError, "missing ')' in macro parameter list"},
	ExtNamedVariadic:                   {ClassExtension, "named variadic macros are an extension"},
	ExtVariadicMacro:                   {ClassExtension, "variadic macros are an extension"},
	ExtMissingWhitespaceAfterMacroName: {ClassExtension, "ISO C99 requires whitespace after the macro name"},
	ErrTooFewMacroArgs:                 {ClassError, "too few arguments provided to function-like macro invocation"},
	ErrTooManyMacroArgs:                {ClassError, "too many arguments provided to function-like macro invocation"},
	ErrUnterminatedMacroInvocation:     {ClassError, "unterminated function-like macro invocation"},
	ErrHashNotFollowedByParam:          {ClassError, "'#' is not followed by a macro parameter"},
	ErrCharifyNotOneChar:               {ClassError, "charize operand does not name a single character"},
	ErrInvalidPasteResult:              {ClassError, "pasting formed '%0', an invalid preprocessing token"},
	ErrPasteAtStart:                    {ClassError, "'##' cannot appear at start of macro expansion"},
	ErrPasteAtEnd:                      {ClassError, "'##' cannot appear at end of macro expansion"},
	ExtPasteComma:                      {ClassExtension, "token pasting of ',' and __VA_ARGS__ is an extension"},
	ErrStrayBackslashInStringize:       {ClassError, "invalid string literal, ignoring final '\\'"},
	ErrEmbeddedDirectiveInMacroArg:     {ClassError, "embedding a directive within macro arguments is not supported"},
	ErrUnexpectedAtInProgram:           {ClassError, "unexpected '@' in program"},

	ErrExpectedToken:               {ClassError, "expected '%0'"},
	ErrExpectedExpression:          {ClassError, "expected expression"},
	ErrExpectedIdentifier:          {ClassError, "expected identifier"},
	ErrExpectedSemi:                {ClassError, "expected ';'"},
	ErrExpectedSemiDecl:            {ClassError, "expected ';' at end of declaration"},
	ErrExpectedSemiAfterExpr:       {ClassError, "expected ';' after expression"},
	ErrExpectedLParen:              {ClassError, "expected '(' after '%0'"},
	ErrExpectedRParenParse:         {ClassError, "expected ')'"},
	ErrExpectedRSquare:             {ClassError, "expected ']'"},
	ErrExpectedRBrace:              {ClassError, "expected '}'"},
	ErrExpectedLBrace:              {ClassError, "expected '{'"},
	ErrMatchingDelimiterNote:       {ClassNote, "to match this '%0'"},
	ErrExpectedStatement:           {ClassError, "expected statement"},
	ErrDuplicateDeclSpec:           {ClassError, "duplicate '%0' declaration specifier"},
	ErrInvalidDeclSpecCombination:  {ClassError, "cannot combine '%0' with previous '%1' declaration specifier"},
	ErrInvalidSignSpec:             {ClassError, "'%0' cannot be signed or unsigned"},
	ErrInvalidWidthSpec:            {ClassError, "'%0' is invalid"},
	ErrExpectedTypeName:            {ClassError, "expected a type name"},
	ErrExpectedFnBody:              {ClassError, "expected function body after function declarator"},
	ErrExpectedColonAfterCaseLabel: {ClassError, "expected ':' after case label"},
	ErrCaseNotInSwitch:             {ClassError, "'case' statement not in switch statement"},
	ErrDefaultNotInSwitch:          {ClassError, "'default' statement not in switch statement"},
	ErrBreakNotInBreakScope:        {ClassError, "'break' statement not in loop or switch statement"},
	ErrContinueNotInContinueScope:  {ClassError, "'continue' statement not in loop statement"},
	ErrExpectedWhileInDoStmt:       {ClassError, "expected 'while' in do/while loop"},
	ErrExpectedIdentAfterGoto:      {ClassError, "expected identifier after 'goto'"},
	ErrIllegalStorageClassOnParam:  {ClassError, "invalid storage class specifier in function declarator"},
	ErrExpectedDeclarator:          {ClassError, "expected identifier or '('"},
	ErrKnRMissingParamDecl:         {ClassError, "parameter '%0' was not declared, defaulting to type 'int'"},
	ErrKnRParamNotInIdentList:      {ClassError, "declaration of '%0' is not in the identifier list of the function"},
	ExtGNUEmptyConditional:         {ClassExtension, "use of GNU ?: expression extension, eliding middle term"},
	ExtGNUStatementExpr:            {ClassExtension, "use of GNU statement expression extension"},
	ErrExpectedStringLiteralAsm:    {ClassError, "expected string literal in 'asm'"},
	ErrUnknownAsmQualifier:         {ClassError, "unknown 'asm' qualifier '%0'"},
	ErrExpectedSelector:            {ClassError, "expected selector for Objective-C method"},
	ErrExpectedMethodType:          {ClassError, "expected Objective-C method type, '-' or '+'"},
	ErrExpectedObjCDirective:       {ClassError, "illegal interface qualifier"},
	ErrExpectedClassName:           {ClassError, "expected class name"},
	ErrMissingAtEnd:                {ClassError, "missing @end"},
	ErrExpectedProtocolName:        {ClassError, "expected protocol name"},
	ErrExpectedTemplateParam:       {ClassError, "expected template parameter"},
	ErrExpectedGreaterInTemplate:   {ClassError, "expected '>' to close template parameter list"},
	ErrOmpUnknownDirective:         {ClassError, "expected an OpenMP directive, found '%0'"},
	ErrOmpUnexpectedDirective:      {ClassError, "region cannot be closely nested inside '%0' region%1"},
	ErrOmpOrphanedSection:          {ClassError, "'#pragma omp section' must be closely nested inside a 'sections' region"},
	ErrOmpDirectiveAtFileScope:     {ClassError, "'#pragma omp %0' cannot appear at file scope"},

	ErrReturnTypeIncompatible:     {ClassError, "returning '%0' from a function with incompatible result type '%1'"},
	WarnReturnPointerFromInt:      {ClassWarning, "returning integer from a function with pointer result type '%0'"},
	WarnReturnIntFromPointer:      {ClassWarning, "returning pointer from a function with integer result type '%0'"},
	WarnReturnIncompatiblePointer: {ClassWarning, "returning '%0' from a function with incompatible pointer result type '%1'"},
	WarnReturnDiscardsQualifiers:  {ClassWarning, "returning '%0' from a function with result type '%1' discards qualifiers"},
	ErrTypedefRedefinition:        {ClassError, "typedef redefinition with different types"},
	ErrRedefinition:               {ClassError, "redefinition of '%0'"},
}

// FormatString returns the raw format string for id.
func FormatString(id ID) string { return table[id].format }

// BuiltinClass returns the severity class assigned to id before any mapping
// override or engine flag applies.
func BuiltinClass(id ID) Class { return table[id].class }

// IsBuiltinNoteOrWarning reports whether id is remappable. Errors are never
// downgraded.
func IsBuiltinNoteOrWarning(id ID) bool {
	c := table[id].class
	return c == ClassNote || c == ClassWarning || c == ClassExtension
}
