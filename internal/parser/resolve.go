package parser

import (
	"sort"
	"strings"

	hedlerr "github.com/hedl-dev/hedl/internal/errors"
	"github.com/hedl-dev/hedl/pkg/document"
)

// pendingRef is a reference value awaiting resolution, with a setter that
// rewrites it in place. References carry their source line through parsing
// so resolution errors stay located.
type pendingRef struct {
	ref  *document.Reference
	set  func(document.Value)
	line int
	ctx  string
}

func (p *parser) addPendingRef(v document.Value, set func(document.Value), line int, ctx string) {
	if ref, ok := v.AsReference(); ok {
		p.pendingRefs = append(p.pendingRefs, pendingRef{ref: ref, set: set, line: line, ctx: ctx})
	}
}

// resolveReferences is the second parse phase: every reference collected
// during the body walk is checked against the identifier registry. A
// qualified reference needs an exact (type, id) hit; a local reference must
// match exactly one type and is rewritten to its qualified form. In lenient
// mode unresolved and ambiguous references become null values and are
// recorded as warnings.
func (p *parser) resolveReferences() error {
	for _, pending := range p.pendingRefs {
		ref := pending.ref

		if ref.IsQualified() {
			if p.reg.contains(ref.TypeName, ref.ID) {
				continue
			}
			if err := p.failRef(pending, hedlerr.Newf(hedlerr.Reference, pending.line,
				"unresolved reference %s", ref)); err != nil {
				return err
			}
			continue
		}

		types := p.reg.typesWithID(ref.ID)
		switch len(types) {
		case 1:
			pending.set(document.Ref(document.QualifiedRef(types[0], ref.ID)))
		case 0:
			if err := p.failRef(pending, hedlerr.Newf(hedlerr.Reference, pending.line,
				"unresolved reference %s", ref)); err != nil {
				return err
			}
		default:
			sort.Strings(types)
			if err := p.failRef(pending, hedlerr.Newf(hedlerr.Reference, pending.line,
				"ambiguous reference %s: candidate types %s", ref, strings.Join(types, ", "))); err != nil {
				return err
			}
		}
	}
	return nil
}

// failRef applies lenient null-replacement or propagates the error through
// the partial-mode reporter.
func (p *parser) failRef(pending pendingRef, err *hedlerr.Error) error {
	if pending.ctx != "" {
		err = err.WithContext(pending.ctx)
	}
	if !p.opts.StrictRefs {
		pending.set(document.Null())
		p.warnings = append(p.warnings, err)
		return nil
	}
	return p.report(err)
}
