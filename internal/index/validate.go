package index

import (
	"fmt"

	"busindex/internal/diag"
)

// Validate admits a candidate as a Declaration or reports the first rule it
// breaks. It holds no state between calls.
func Validate(c Candidate, r diag.Reporter) (Declaration, bool) {
	var (
		code diag.Code
		msg  string
	)
	switch {
	case c.Kind == KindOther:
		code, msg = diag.SubNotMethod, fmt.Sprintf("eventbus:subscribe is only valid for methods (found on %s)", c.Name)
	case c.Kind == KindFunc:
		code, msg = diag.SubStatic, fmt.Sprintf("Subscriber method must not be static: %s is a package-level function", c.Name)
	case !c.Exported:
		code, msg = diag.SubNotPublic, fmt.Sprintf("Subscriber method must be public: %s is not exported", c.qualified())
	case len(c.Params) != 1:
		code, msg = diag.SubParamCount, fmt.Sprintf("Subscriber method must have exactly 1 parameter: %s has %d", c.qualified(), len(c.Params))
	case c.PayloadErr != nil:
		code, msg = diag.SubBadPayload, fmt.Sprintf("invalid eventbus:subscribe arguments on %s: %v", c.qualified(), c.PayloadErr)
	case c.Owner.IsZero():
		code, msg = diag.SubNoReceiver, fmt.Sprintf("cannot resolve receiver type of %s", c.Name)
	case c.Params[0].Key == "":
		code, msg = diag.SubParamUntyped, fmt.Sprintf("parameter type of %s is unknown", c.qualified())
	default:
		return Declaration{
			Declaring:  c.Owner,
			Method:     c.Name,
			Event:      c.Params[0],
			ThreadMode: c.Annotation.ThreadMode,
			Priority:   c.Annotation.Priority,
			Sticky:     c.Annotation.Sticky,
			Loc:        c.Loc,
		}, true
	}
	diag.ReportError(r, code, c.Loc, msg).Emit()
	return Declaration{}, false
}

func (c Candidate) qualified() string {
	if c.Owner.IsZero() {
		return c.Name
	}
	return c.Owner.Name + "." + c.Name
}
