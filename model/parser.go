package model

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/mechiko/pdfimg/log"
)

var nameUTF8Decoder = xunicode.UTF8.NewDecoder()

// parser tokenizes and parses PDF object syntax (arrays, dicts, names,
// string/hex literals, numbers, indirect references, booleans, null) from
// an in-memory buffer. It is a cursor over buf, not a streaming reader:
// cross-reference tables and object headers are always small enough to
// hold whole.
type parser struct {
	buf string
	pos int
}

func newParser(buf string) *parser { return &parser{buf: buf} }

// ParseOneObject parses a single PDF object from the start of buf and
// returns it along with the number of bytes consumed. It exists for
// callers that need object-syntax parsing without a full xref-backed
// Document driving it, e.g. an inline-image dictionary embedded in a
// content stream.
func ParseOneObject(buf string) (Object, int, error) {
	p := newParser(buf)
	obj, err := p.ParseObject()
	if err != nil {
		return nil, 0, err
	}
	return obj, p.pos, nil
}

func (p *parser) rest() string { return p.buf[p.pos:] }

func (p *parser) eof() bool { return p.pos >= len(p.buf) }

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
}

// skipWhitespace advances past whitespace and PDF comments (`%` to EOL).
func (p *parser) skipWhitespace() {
	for !p.eof() {
		c := p.buf[p.pos]
		if unicode.IsSpace(rune(c)) {
			p.pos++
			continue
		}
		if c == '%' {
			for !p.eof() && p.buf[p.pos] != '\n' && p.buf[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		break
	}
}

// peekToken returns the run of non-whitespace, non-delimiter bytes at the
// cursor, without advancing.
func (p *parser) peekToken() string {
	start := p.pos
	for i := start; i < len(p.buf); i++ {
		c := p.buf[i]
		if unicode.IsSpace(rune(c)) || isDelim(c) {
			return p.buf[start:i]
		}
	}
	return p.buf[start:]
}

// ParseObject parses one PDF object starting at the cursor, leaving the
// cursor positioned immediately after it.
func (p *parser) ParseObject() (Object, error) {
	p.skipWhitespace()
	if p.eof() {
		return nil, errors.New("model: unexpected end of buffer parsing object")
	}

	switch c := p.buf[p.pos]; {
	case c == '/':
		return p.parseName()
	case c == '(':
		return p.parseStringLiteral()
	case c == '[':
		return p.parseArray()
	case strings.HasPrefix(p.rest(), "<<"):
		return p.parseDict()
	case c == '<':
		return p.parseHexLiteral()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumberOrIndirectRef()
	default:
		return p.parseKeyword()
	}
}

func (p *parser) parseName() (Object, error) {
	p.pos++ // consume '/'
	start := p.pos
	var sb strings.Builder
	hexEscaped := false
	for p.pos < len(p.buf) {
		c := p.buf[p.pos]
		if unicode.IsSpace(rune(c)) || isDelim(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.buf) {
			if n, err := strconv.ParseUint(p.buf[p.pos+1:p.pos+3], 16, 8); err == nil {
				sb.WriteByte(byte(n))
				p.pos += 3
				hexEscaped = true
				continue
			}
		}
		sb.WriteByte(c)
		p.pos++
	}
	if sb.Len() == 0 && p.pos == start {
		return Name(""), nil
	}
	raw := sb.String()
	// #xx escapes can spell out arbitrary bytes (7.3.5 allows any byte this
	// way); names built entirely from unescaped ASCII never need the check.
	if hexEscaped {
		logMalformedNameBytes(raw)
	}
	return Name(raw), nil
}

// logMalformedNameBytes runs raw through a strict UTF-8 decoder purely for
// diagnostics: a hex-escaped name with non-UTF-8 bytes is still a
// well-formed PDF name (nothing requires Unicode), but it's worth a debug
// line for callers tracking down mojibake in extracted metadata.
func logMalformedNameBytes(raw string) {
	if _, err := nameUTF8Decoder.String(raw); err != nil {
		log.Debug.Printf("model: name contains non-UTF-8 bytes after hex unescape: %q\n", raw)
	}
}

func (p *parser) parseStringLiteral() (Object, error) {
	if p.buf[p.pos] != '(' {
		return nil, errors.New("model: expected '(' starting string literal")
	}
	p.pos++
	depth := 1
	var sb strings.Builder
	for !p.eof() {
		c := p.buf[p.pos]
		switch c {
		case '(':
			depth++
			sb.WriteByte(c)
			p.pos++
		case ')':
			depth--
			p.pos++
			if depth == 0 {
				return StringLiteral(sb.String()), nil
			}
			sb.WriteByte(c)
		case '\\':
			p.pos++
			if p.eof() {
				return nil, errors.New("model: unterminated escape in string literal")
			}
			esc := p.buf[p.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
				p.pos++
			case 'r':
				sb.WriteByte('\r')
				p.pos++
			case 't':
				sb.WriteByte('\t')
				p.pos++
			case 'b':
				sb.WriteByte('\b')
				p.pos++
			case 'f':
				sb.WriteByte('\f')
				p.pos++
			case '(', ')', '\\':
				sb.WriteByte(esc)
				p.pos++
			case '\n':
				p.pos++ // line continuation, no byte emitted
			case '\r':
				p.pos++
				if !p.eof() && p.buf[p.pos] == '\n' {
					p.pos++
				}
			default:
				if esc >= '0' && esc <= '7' {
					n := 0
					for k := 0; k < 3 && !p.eof() && p.buf[p.pos] >= '0' && p.buf[p.pos] <= '7'; k++ {
						n = n*8 + int(p.buf[p.pos]-'0')
						p.pos++
					}
					sb.WriteByte(byte(n))
				} else {
					sb.WriteByte(esc)
					p.pos++
				}
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return nil, errors.New("model: unterminated string literal")
}

func (p *parser) parseHexLiteral() (Object, error) {
	p.pos++ // consume '<'
	start := p.pos
	end := strings.IndexByte(p.rest(), '>')
	if end < 0 {
		return nil, errors.New("model: unterminated hex literal")
	}
	raw := p.buf[start : start+end]
	p.pos = start + end + 1

	var digits strings.Builder
	for _, r := range raw {
		if unicode.Is(unicode.Hex_Digit, r) {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s)%2 != 0 {
		s += "0"
	}
	var sb strings.Builder
	for i := 0; i+1 < len(s); i += 2 {
		n, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return nil, errors.Wrap(err, "model: corrupt hex literal")
		}
		sb.WriteByte(byte(n))
	}
	return HexLiteral(sb.String()), nil
}

func (p *parser) parseArray() (Object, error) {
	p.pos++ // consume '['
	arr := Array{}
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, errors.New("model: unterminated array")
		}
		if p.buf[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *parser) parseDict() (Object, error) {
	p.pos += 2 // consume '<<'
	d := NewDict()
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, errors.New("model: unterminated dictionary")
		}
		if strings.HasPrefix(p.rest(), ">>") {
			p.pos += 2
			break
		}
		keyObj, err := p.parseName()
		if err != nil {
			return nil, err
		}
		key := keyObj.(Name).Value()
		p.skipWhitespace()
		val, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		d[key] = val
	}

	// A dict immediately followed by the `stream` keyword is a stream
	// object; the caller (object reader) handles that, since it needs
	// access to /Length and the raw byte offset, which this parser has no
	// notion of.
	return d, nil
}

func (p *parser) parseNumberOrIndirectRef() (Object, error) {
	tok := p.peekToken()
	p.pos += len(tok)

	if !strings.Contains(tok, ".") {
		if n, err := strconv.Atoi(tok); err == nil {
			// Look ahead for "gen R".
			save := p.pos
			p.skipWhitespace()
			genTok := p.peekToken()
			if gen, err := strconv.Atoi(genTok); err == nil {
				genPos := p.pos + len(genTok)
				q := &parser{buf: p.buf, pos: genPos}
				q.skipWhitespace()
				if !q.eof() && q.buf[q.pos] == 'R' && (q.pos+1 == len(q.buf) || isDelim(q.buf[q.pos+1]) || unicode.IsSpace(rune(q.buf[q.pos+1]))) {
					p.pos = q.pos + 1
					return IndirectRef{ObjectNumber: n, GenerationNumber: gen}, nil
				}
			}
			p.pos = save
			return Integer(n), nil
		}
	}

	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "model: corrupt numeric object %q", tok)
	}
	return Float(f), nil
}

func (p *parser) parseKeyword() (Object, error) {
	tok := p.peekToken()
	switch tok {
	case "true":
		p.pos += len(tok)
		return Boolean(true), nil
	case "false":
		p.pos += len(tok)
		return Boolean(false), nil
	case "null":
		p.pos += len(tok)
		return Null{}, nil
	default:
		return nil, errors.Errorf("model: unrecognized object keyword %q", tok)
	}
}
