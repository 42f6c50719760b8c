// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

package newick

import (
	"strconv"
	"strings"

	"github.com/benedictpaten/sonlib-go/sonerr"
)

// Parse reads a newick string into a tree, per spec §4.2/§6: lax grammar,
// whitespace permitted around punctuation, unary nodes accepted, the
// top-level expression must end in ';'.
func Parse[Info any](s string) (*Node[Info], error) {
	p := &parser{s: s}
	p.skipSpace()
	n, err := parseSubtree[Info](p)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	b, ok := p.peek()
	if !ok || b != ';' {
		return nil, sonerr.New(sonerr.KindGeneral, "Parse: expected top-level ';'")
	}
	p.pos++
	return n, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && isSpace(p.s[p.pos]) {
		p.pos++
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

// parseSubtree parses a single node: an optional parenthesized child list,
// an optional label, an optional ":branchlength". A trailing ';' is NOT
// consumed here — only the top-level Parse call requires and consumes it,
// matching spec §4.2's "trailing ';' optional on sub-calls but required at
// top level".
func parseSubtree[Info any](p *parser) (*Node[Info], error) {
	n := NewNode[Info]("")
	p.skipSpace()
	if b, ok := p.peek(); ok && b == '(' {
		p.pos++
		for {
			p.skipSpace()
			child, err := parseSubtree[Info](p)
			if err != nil {
				return nil, err
			}
			SetParent(child, n)
			p.skipSpace()
			b, ok := p.peek()
			if !ok {
				return nil, sonerr.New(sonerr.KindGeneral, "parseSubtree: unterminated child list")
			}
			if b == ',' {
				p.pos++
				continue
			}
			if b == ')' {
				p.pos++
				break
			}
			return nil, sonerr.Newf(sonerr.KindGeneral, "parseSubtree: unexpected byte %q in child list", b)
		}
	}
	p.skipSpace()
	n.Label = p.readLabel()
	p.skipSpace()
	if b, ok := p.peek(); ok && b == ':' {
		p.pos++
		p.skipSpace()
		length, err := p.readNumber()
		if err != nil {
			return nil, err
		}
		n.BranchLength = length
	}
	return n, nil
}

func (p *parser) readLabel() string {
	start := p.pos
	for p.pos < len(p.s) {
		b := p.s[p.pos]
		if b == '(' || b == ')' || b == ',' || b == ':' || b == ';' || isSpace(b) {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) readNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.s) {
		b := p.s[p.pos]
		if (b >= '0' && b <= '9') || b == '.' || b == '-' || b == '+' || b == 'e' || b == 'E' {
			p.pos++
			continue
		}
		break
	}
	tok := p.s[start:p.pos]
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, sonerr.Wrapf(sonerr.KindGeneral, err, "readNumber: invalid branch length %q", tok)
	}
	return v, nil
}

// Serialize writes n (treated as the root of the expression) to newick
// text, emitting a branch length only when set and terminating with ';'.
func Serialize[Info any](n *Node[Info]) string {
	var b strings.Builder
	writeSubtree(&b, n)
	b.WriteByte(';')
	return b.String()
}

func writeSubtree[Info any](b *strings.Builder, n *Node[Info]) {
	if len(n.children) > 0 {
		b.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				b.WriteByte(',')
			}
			writeSubtree(b, c)
		}
		b.WriteByte(')')
	}
	b.WriteString(n.Label)
	if n.HasBranchLength() {
		b.WriteByte(':')
		b.WriteString(formatBranchLength(n.BranchLength))
	}
}

func formatBranchLength(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
