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

package pp

import (
	"math"

	"github.com/EngFlow/ccfront/internal/diag"
	"github.com/EngFlow/ccfront/internal/lexer"
	"github.com/EngFlow/ccfront/internal/literal"
	"github.com/EngFlow/ccfront/internal/source"
)

// ppValue is an intmax_t/uintmax_t preprocessor arithmetic value: 64-bit
// two's complement with a signedness tag that follows the usual arithmetic
// conversions.
type ppValue struct {
	val        uint64
	isUnsigned bool
}

func (v ppValue) isNonZero() bool { return v.val != 0 }

// defined-tracker states, used to recognize the #if !defined(X) guard shape.
const (
	dtUnknown = iota
	dtDefined    // expression so far is exactly defined(X)
	dtNotDefined // expression so far is exactly !defined(X)
)

type ppExprEvaluator struct {
	p   *Preprocessor
	tok lexer.Token

	// isEvaluated is cleared inside short-circuited subexpressions so
	// division by zero and overflow there stay silent.
	isEvaluated bool

	dt      int
	dtMacro *lexer.Info
}

// EvaluateDirectiveExpression parses and evaluates a #if or #elif
// expression, consuming through the end of the line. The returned Info is
// non-nil when the whole expression had the shape !defined(MACRO), the
// include-guard idiom.
func (p *Preprocessor) EvaluateDirectiveExpression() (bool, *lexer.Info) {
	e := &ppExprEvaluator{p: p, isEvaluated: true}
	p.Lex(&e.tok)

	v, ok := e.evaluateValue()
	if ok {
		v, ok = e.evaluateSubExpr(v, 1)
	}
	if !ok {
		if e.tok.IsNot(lexer.Kind_EOM) && e.tok.IsNot(lexer.Kind_EOF) {
			p.DiscardUntilEndOfDirective()
		}
		return false, nil
	}
	if e.tok.IsNot(lexer.Kind_EOM) && e.tok.IsNot(lexer.Kind_EOF) {
		p.diags.Report(e.tok.Loc, diag.ErrExpectedEOL).Emit()
		p.DiscardUntilEndOfDirective()
	}

	var guard *lexer.Info
	if e.dt == dtNotDefined {
		guard = e.dtMacro
	}
	return v.isNonZero(), guard
}

// evaluateValue parses one unary-expression and leaves e.tok on the token
// after it.
func (e *ppExprEvaluator) evaluateValue() (ppValue, bool) {
	p := e.p
	switch e.tok.Kind {
	case lexer.Kind_EOM, lexer.Kind_EOF:
		p.diags.Report(e.tok.Loc, diag.ErrExpectedValueInExpr).
			AddString("end of directive").Emit()
		return ppValue{}, false

	case lexer.Kind_NumericConstant:
		spelling := p.Spelling(&e.tok)
		np := literal.ParseNumeric(spelling, e.tok.Loc, p.diags, p.opts)
		if np.HadError {
			return ppValue{}, false
		}
		if np.IsFloating {
			p.diags.Report(e.tok.Loc, diag.ErrExpectedValueInExpr).
				AddString(spelling).Emit()
			return ppValue{}, false
		}
		val, overflow := np.GetIntegerValue(p.opts.IntMaxWidth)
		if overflow {
			p.diags.Report(e.tok.Loc, diag.WarnIntegerTooLarge).Emit()
		}
		v := ppValue{val: val, isUnsigned: np.IsUnsigned}
		// A literal too big for intmax_t quietly becomes unsigned.
		if !v.isUnsigned && np.Radix != 10 && val>>63 != 0 {
			v.isUnsigned = true
		}
		p.Lex(&e.tok)
		e.dt = dtUnknown
		return v, true

	case lexer.Kind_CharConstant:
		cp := literal.ParseChar(p.Spelling(&e.tok), e.tok.Loc, p.diags, p.opts)
		if cp.HadError {
			return ppValue{}, false
		}
		p.Lex(&e.tok)
		e.dt = dtUnknown
		return ppValue{val: uint64(cp.Value)}, true

	case lexer.Kind_LParen:
		p.Lex(&e.tok)
		v, ok := e.evaluateValue()
		if !ok {
			return v, false
		}
		v, ok = e.evaluateSubExpr(v, 1)
		if !ok {
			return v, false
		}
		if e.tok.IsNot(lexer.Kind_RParen) {
			p.diags.Report(e.tok.Loc, diag.ErrExpectedRParen).Emit()
			return ppValue{}, false
		}
		p.Lex(&e.tok)
		// Parens preserve the defined-tracker: (!defined(X)) still guards.
		return v, true

	case lexer.Kind_Plus:
		// Unary plus does not change the value, so the defined-tracker
		// passes through: +defined(X) still tracks.
		p.Lex(&e.tok)
		return e.evaluateValue()

	case lexer.Kind_Minus:
		loc := e.tok.Loc
		p.Lex(&e.tok)
		v, ok := e.evaluateValue()
		if !ok {
			return v, false
		}
		res := ppValue{val: -v.val, isUnsigned: v.isUnsigned}
		if !res.isUnsigned && v.val == 1<<63 && e.isEvaluated {
			e.p.diags.Report(loc, diag.WarnPPExprOverflow).Emit()
		}
		e.dt = dtUnknown
		return res, true

	case lexer.Kind_Tilde:
		p.Lex(&e.tok)
		v, ok := e.evaluateValue()
		e.dt = dtUnknown
		return ppValue{val: ^v.val, isUnsigned: v.isUnsigned}, ok

	case lexer.Kind_Exclaim:
		p.Lex(&e.tok)
		v, ok := e.evaluateValue()
		if !ok {
			return v, false
		}
		res := ppValue{val: 0}
		if !v.isNonZero() {
			res.val = 1
		}
		// Negation flips the defined-tracker, so guards like
		// !defined(X) and !!!defined(X) both track.
		switch e.dt {
		case dtDefined:
			e.dt = dtNotDefined
		case dtNotDefined:
			e.dt = dtDefined
		default:
			e.dt = dtUnknown
		}
		return res, true

	default:
		if e.tok.Info != nil {
			if e.tok.Info == p.identDefined {
				return e.evaluateDefined()
			}
			// C99 6.10.1p4: remaining identifiers (and keywords) are 0.
			p.Lex(&e.tok)
			e.dt = dtUnknown
			return ppValue{}, true
		}
		p.diags.Report(e.tok.Loc, diag.ErrExpectedValueInExpr).
			AddString(p.Spelling(&e.tok)).Emit()
		return ppValue{}, false
	}
}

// evaluateDefined handles defined X and defined(X); the operand is read
// without macro expansion.
func (e *ppExprEvaluator) evaluateDefined() (ppValue, bool) {
	p := e.p
	p.LexUnexpandedToken(&e.tok)

	paren := false
	if e.tok.Is(lexer.Kind_LParen) {
		paren = true
		p.LexUnexpandedToken(&e.tok)
	}
	if e.tok.Info == nil {
		p.diags.Report(e.tok.Loc, diag.ErrMacroNameMissing).Emit()
		return ppValue{}, false
	}
	info := e.tok.Info
	mi := p.MacroFor(info)
	if mi != nil {
		mi.IsUsed = true
	}
	if paren {
		p.LexUnexpandedToken(&e.tok)
		if e.tok.IsNot(lexer.Kind_RParen) {
			p.diags.Report(e.tok.Loc, diag.ErrExpectedRParen).Emit()
			return ppValue{}, false
		}
	}
	p.Lex(&e.tok)

	e.dt = dtDefined
	e.dtMacro = info
	v := ppValue{}
	if mi != nil {
		v.val = 1
	}
	return v, true
}

// opPrec returns the binding strength of a binary operator in a
// preprocessor expression, or -1 for non-operators.
func opPrec(k lexer.Kind) int {
	switch k {
	case lexer.Kind_Comma:
		return 1
	case lexer.Kind_Question:
		return 2
	case lexer.Kind_PipePipe:
		return 4
	case lexer.Kind_AmpAmp:
		return 5
	case lexer.Kind_Pipe:
		return 6
	case lexer.Kind_Caret:
		return 7
	case lexer.Kind_Amp:
		return 8
	case lexer.Kind_EqualEqual, lexer.Kind_ExclaimEqual:
		return 9
	case lexer.Kind_Less, lexer.Kind_Greater, lexer.Kind_LessEqual, lexer.Kind_GreaterEqual:
		return 10
	case lexer.Kind_LessLess, lexer.Kind_GreaterGreater:
		return 11
	case lexer.Kind_Plus, lexer.Kind_Minus:
		return 12
	case lexer.Kind_Star, lexer.Kind_Slash, lexer.Kind_Percent:
		return 13
	default:
		return -1
	}
}

// evaluateSubExpr is the precedence climber: it extends lhs with every
// operator binding at least as tightly as minPrec.
func (e *ppExprEvaluator) evaluateSubExpr(lhs ppValue, minPrec int) (ppValue, bool) {
	p := e.p
	for {
		prec := opPrec(e.tok.Kind)
		if prec < minPrec {
			return lhs, true
		}
		op := e.tok.Kind
		opLoc := e.tok.Loc
		e.dt = dtUnknown

		if op == lexer.Kind_Question {
			var ok bool
			lhs, ok = e.evaluateConditional(lhs, prec)
			if !ok {
				return lhs, false
			}
			continue
		}
		if op == lexer.Kind_Comma {
			p.diags.Report(opLoc, diag.ExtPPCommaExpr).Emit()
		}

		savedEval := e.isEvaluated
		if (op == lexer.Kind_AmpAmp && !lhs.isNonZero()) ||
			(op == lexer.Kind_PipePipe && lhs.isNonZero()) {
			e.isEvaluated = false
		}

		p.Lex(&e.tok)
		rhs, ok := e.evaluateValue()
		if !ok {
			e.isEvaluated = savedEval
			return rhs, false
		}
		rhs, ok = e.evaluateSubExpr(rhs, prec+1)
		e.isEvaluated = savedEval
		if !ok {
			return rhs, false
		}

		lhs, ok = e.applyBinary(op, opLoc, lhs, rhs)
		if !ok {
			return lhs, false
		}
	}
}

// evaluateConditional parses "? then : else" after a '?' in e.tok.
func (e *ppExprEvaluator) evaluateConditional(cond ppValue, prec int) (ppValue, bool) {
	p := e.p
	savedEval := e.isEvaluated
	condTrue := cond.isNonZero()

	e.isEvaluated = savedEval && condTrue
	p.Lex(&e.tok)
	thenV, ok := e.evaluateValue()
	if ok {
		// The middle expression runs to the ':', commas and all.
		thenV, ok = e.evaluateSubExpr(thenV, 1)
	}
	if !ok {
		e.isEvaluated = savedEval
		return thenV, false
	}
	if e.tok.IsNot(lexer.Kind_Colon) {
		p.diags.Report(e.tok.Loc, diag.ErrExpectedColon).Emit()
		e.isEvaluated = savedEval
		return ppValue{}, false
	}

	e.isEvaluated = savedEval && !condTrue
	p.Lex(&e.tok)
	elseV, ok := e.evaluateValue()
	if ok {
		// Right-associative: the else arm may itself be a conditional.
		elseV, ok = e.evaluateSubExpr(elseV, prec)
	}
	e.isEvaluated = savedEval
	if !ok {
		return elseV, false
	}

	res := elseV
	if condTrue {
		res = thenV
	}
	res.isUnsigned = thenV.isUnsigned || elseV.isUnsigned
	return res, true
}

func (e *ppExprEvaluator) applyBinary(op lexer.Kind, opLoc source.Location, lhs, rhs ppValue) (ppValue, bool) {
	p := e.p
	commonUnsigned := lhs.isUnsigned || rhs.isUnsigned

	boolVal := func(b bool) ppValue {
		if b {
			return ppValue{val: 1}
		}
		return ppValue{}
	}
	overflowed := false

	var res ppValue
	switch op {
	case lexer.Kind_Comma:
		res = rhs

	case lexer.Kind_AmpAmp:
		res = boolVal(lhs.isNonZero() && rhs.isNonZero())
	case lexer.Kind_PipePipe:
		res = boolVal(lhs.isNonZero() || rhs.isNonZero())

	case lexer.Kind_EqualEqual:
		res = boolVal(lhs.val == rhs.val)
	case lexer.Kind_ExclaimEqual:
		res = boolVal(lhs.val != rhs.val)
	case lexer.Kind_Less:
		res = boolVal(compareLess(lhs, rhs, commonUnsigned))
	case lexer.Kind_Greater:
		res = boolVal(compareLess(rhs, lhs, commonUnsigned))
	case lexer.Kind_LessEqual:
		res = boolVal(!compareLess(rhs, lhs, commonUnsigned))
	case lexer.Kind_GreaterEqual:
		res = boolVal(!compareLess(lhs, rhs, commonUnsigned))

	case lexer.Kind_Amp:
		res = ppValue{val: lhs.val & rhs.val, isUnsigned: commonUnsigned}
	case lexer.Kind_Caret:
		res = ppValue{val: lhs.val ^ rhs.val, isUnsigned: commonUnsigned}
	case lexer.Kind_Pipe:
		res = ppValue{val: lhs.val | rhs.val, isUnsigned: commonUnsigned}

	case lexer.Kind_LessLess:
		if rhs.val >= 64 {
			overflowed = true
			res = ppValue{val: 0, isUnsigned: lhs.isUnsigned}
		} else {
			res = ppValue{val: lhs.val << rhs.val, isUnsigned: lhs.isUnsigned}
			if !lhs.isUnsigned && res.val>>rhs.val != lhs.val {
				overflowed = true
			}
		}
	case lexer.Kind_GreaterGreater:
		if rhs.val >= 64 {
			overflowed = true
			res = ppValue{val: 0, isUnsigned: lhs.isUnsigned}
		} else if lhs.isUnsigned {
			res = ppValue{val: lhs.val >> rhs.val, isUnsigned: true}
		} else {
			res = ppValue{val: uint64(int64(lhs.val) >> rhs.val)}
		}

	case lexer.Kind_Plus:
		res = ppValue{val: lhs.val + rhs.val, isUnsigned: commonUnsigned}
		if !commonUnsigned && ((lhs.val^res.val)&(rhs.val^res.val))>>63 != 0 {
			overflowed = true
		}
	case lexer.Kind_Minus:
		res = ppValue{val: lhs.val - rhs.val, isUnsigned: commonUnsigned}
		if !commonUnsigned && ((lhs.val^rhs.val)&(lhs.val^res.val))>>63 != 0 {
			overflowed = true
		}
	case lexer.Kind_Star:
		res = ppValue{val: lhs.val * rhs.val, isUnsigned: commonUnsigned}
		if !commonUnsigned {
			a, b := int64(lhs.val), int64(rhs.val)
			if a != 0 && (int64(res.val)/a != b || (a == -1 && b == math.MinInt64)) {
				overflowed = true
			}
		}

	case lexer.Kind_Slash:
		if rhs.val == 0 {
			if e.isEvaluated {
				p.diags.Report(opLoc, diag.ErrDivisionByZeroInPPExpr).Emit()
				return ppValue{}, false
			}
			res = ppValue{isUnsigned: commonUnsigned}
		} else if commonUnsigned {
			res = ppValue{val: lhs.val / rhs.val, isUnsigned: true}
		} else {
			a, b := int64(lhs.val), int64(rhs.val)
			if a == math.MinInt64 && b == -1 {
				overflowed = true
				res = ppValue{val: lhs.val}
			} else {
				res = ppValue{val: uint64(a / b)}
			}
		}
	case lexer.Kind_Percent:
		if rhs.val == 0 {
			if e.isEvaluated {
				p.diags.Report(opLoc, diag.ErrRemainderByZeroInPPExpr).Emit()
				return ppValue{}, false
			}
			res = ppValue{isUnsigned: commonUnsigned}
		} else if commonUnsigned {
			res = ppValue{val: lhs.val % rhs.val, isUnsigned: true}
		} else {
			res = ppValue{val: uint64(int64(lhs.val) % int64(rhs.val))}
		}
	}

	if overflowed && e.isEvaluated {
		p.diags.Report(opLoc, diag.WarnPPExprOverflow).Emit()
	}
	return res, true
}

// compareLess compares with the common signedness.
func compareLess(a, b ppValue, asUnsigned bool) bool {
	if asUnsigned {
		return a.val < b.val
	}
	return int64(a.val) < int64(b.val)
}
