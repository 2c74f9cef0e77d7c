package vm

import (
	"gsm/internal/callobj"
	"gsm/internal/errors"
	"gsm/internal/value"
)

// InitCall pushes a fresh call accumulator for funcname (§4.4).
func (g *GSM) InitCall(funcname string) bool {
	fd, ok := g.funcTable.Lookup(funcname)
	if !ok {
		return g.fail(errors.New(errors.UnknownFunction, "undefined function %q", funcname))
	}
	if len(g.callStack) >= g.cfg.MaxCallDepth {
		return g.fail(errors.New(errors.InternalInvariant, "call accumulator stack exhausted"))
	}
	g.callStack = append(g.callStack, callobj.NewAccumulator(fd))
	return true
}

func (g *GSM) currentCall() (*callobj.Accumulator, *errors.GSMError) {
	if len(g.callStack) == 0 {
		return nil, errors.New(errors.InternalInvariant, "no call in progress")
	}
	return g.callStack[len(g.callStack)-1], nil
}

// SetCurrentParam moves the top call's cursor to the named parameter
// (the BindCheck(name) step shared by Bind/BindVal/BindRef's named
// forms, §4.4).
func (g *GSM) SetCurrentParam(name string) bool {
	acc, e := g.currentCall()
	if e != nil {
		return g.fail(e)
	}
	if serr := acc.SetCurrentParam(name); serr != nil {
		acc.SetErrorOccurred()
		return g.fail(serr)
	}
	return true
}

// Bind is the reference-preferring bind (§4.4): Bind() == BindRef().
func (g *GSM) Bind() bool { return g.BindRef() }

// BindVal consumes the top stack value as the current parameter,
// dereferencing it and clearing any shadow-of before storing it (§4.4).
func (g *GSM) BindVal() bool {
	acc, e := g.currentCall()
	if e != nil {
		return g.fail(e)
	}
	param, e := g.pop()
	if e != nil {
		return g.fail(e)
	}
	if param.IsRef() {
		resolved, rerr := g.refTable.Resolve(param.RefName, param.RefSub)
		if rerr != nil {
			acc.SetErrorOccurred()
			return g.fail(rerr)
		}
		param = resolved
	}
	param = param.Copy()
	if !acc.SetCurrParam(param) {
		return g.fail(errors.Suppressed(errors.NoOverloadMatch))
	}
	return true
}

// BindRef consumes the top stack value as the current parameter,
// retaining enough reference/shadow provenance to write the handler's
// output back afterward (§4.4). Values that are neither a reference nor
// a shadow fall back to BindVal's by-value behaviour.
func (g *GSM) BindRef() bool {
	acc, e := g.currentCall()
	if e != nil {
		return g.fail(e)
	}
	param, e := g.pop()
	if e != nil {
		return g.fail(e)
	}

	if param.IsRef() {
		name, sub := param.RefName, param.RefSub
		resolved, ok := g.refTable.TryResolve(name, sub)
		if !ok {
			// Soft resolve failed: bind an err-kind placeholder instead
			// of reporting UndefinedRef here (§4.4). Only a parameter
			// declared Any accepts the placeholder; a typed parameter
			// rejects it in SetCurrParam below, so BindRef fails at once
			// with NoOverloadMatch rather than at call time.
			resolved = value.Value{Kind: value.KindErr}
		}
		// Record provenance against the current slot before SetCurrParam
		// advances the cursor past it.
		acc.SetCurrParamRef(name, sub)
		if !acc.SetCurrParam(resolved) {
			acc.SetErrorOccurred()
			return g.fail(errors.Suppressed(errors.NoOverloadMatch))
		}
		return true
	}

	if origin := param.ShadowOf(); origin != nil {
		acc.SetCurrParamShadowOf(origin)
		if !acc.SetCurrParam(param.Copy()) {
			acc.SetErrorOccurred()
			return g.fail(errors.Suppressed(errors.NoOverloadMatch))
		}
		return true
	}

	g.push(param)
	return g.BindVal()
}

// BindNamed sets the cursor to param name then performs the requested
// bind kind (value, reference, or Bind's reference-preferring default).
func (g *GSM) BindNamed(kind string, paramName string) bool {
	if !g.SetCurrentParam(paramName) {
		return false
	}
	switch kind {
	case "VAL":
		return g.BindVal()
	case "REF":
		return g.BindRef()
	default:
		return g.Bind()
	}
}

// Call finalises the in-progress call (§4.4): resolves the overload,
// fills defaults, invokes the handler, pushes the return value, then
// writes by-reference parameters back through the binding table or list
// shadow of their origin.
func (g *GSM) Call() bool {
	if len(g.callStack) == 0 {
		return g.fail(errors.New(errors.InternalInvariant, "CALL with no call in progress"))
	}
	acc := g.callStack[len(g.callStack)-1]
	g.callStack = g.callStack[:len(g.callStack)-1]

	ov, params, writeback, rerr := acc.ResolveOverload()
	if rerr != nil {
		return g.fail(rerr)
	}

	result, herr := ov.Handler(params)
	if herr != nil {
		return g.fail(errors.New(errors.HandlerFailure, "%s: %s", acc.Descriptor.Name, herr.Error()))
	}
	g.push(result)

	ok := true
	for i, wb := range writeback {
		if ov.Params[i].Mode != callobj.ByRef {
			continue
		}
		out := params[i]
		switch {
		case wb.RefBound:
			if wb.RefSub == "" {
				g.refTable.Define(wb.RefName, out.Copy())
			} else if aerr := g.refTable.AssignSub(wb.RefName, wb.RefSub, out.Copy()); aerr != nil {
				g.report(aerr)
				ok = false
			}
		case wb.ShadowOrigin != nil:
			list := wb.ShadowOrigin.ParentList()
			idx := 0
			if list != nil {
				idx = list.Find(wb.ShadowOrigin)
			}
			if idx == 0 {
				g.report(errors.New(errors.InternalInvariant, "by-ref parameter %d: shadow origin is no longer live", i))
				ok = false
				continue
			}
			if serr := list.Set(idx, out.Copy()); serr != nil {
				ok = false
			}
		}
	}
	return ok
}
