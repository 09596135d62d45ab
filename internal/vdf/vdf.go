// Package vdf parses Valve's KeyValues text format, used by Steam for
// libraryfolder.vdf and appmanifest .acf descriptors.
//
// The format is a sequence of quoted key/value pairs, where a value is either
// a quoted string or a brace-delimited nested block:
//
//	"AppState"
//	{
//		"appid"      "12"
//		"name"       "Foo"
//		"SizeOnDisk" "100"
//	}
//
// Unknown fields are preserved; lookups are case-insensitive because Steam is
// not consistent about key casing (SizeOnDisk vs sizeondisk both occur).
package vdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Object is one brace-delimited block. Values are string or Object.
type Object map[string]any

// Parse parses a complete KeyValues document. The top level is treated as an
// implicit object, so documents with a single root key ("libraryfolder",
// "AppState") parse to an Object with that one entry.
func Parse(data []byte) (Object, error) {
	p := &parser{data: data}
	obj, err := p.parseObject(false)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.data) {
		return nil, fmt.Errorf("vdf: unexpected %q at offset %d", p.data[p.pos], p.pos)
	}
	return obj, nil
}

// ParseString parses a KeyValues document from a string.
func ParseString(s string) (Object, error) {
	return Parse([]byte(s))
}

// Get returns the raw value for key, matching case-insensitively.
func (o Object) Get(key string) (any, bool) {
	if v, ok := o[key]; ok {
		return v, true
	}
	for k, v := range o {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// String returns the string value for key.
func (o Object) String(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Object returns the nested block for key.
func (o Object) Object(key string) (Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(Object)
	return obj, ok
}

// Int64 returns the value for key parsed as a base-10 integer.
func (o Object) Int64(key string) (int64, bool) {
	s, ok := o.String(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

type parser struct {
	data []byte
	pos  int
}

// parseObject reads key/value pairs until EOF (nested=false) or a closing
// brace (nested=true).
func (p *parser) parseObject(nested bool) (Object, error) {
	obj := Object{}
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			if nested {
				return nil, fmt.Errorf("vdf: unexpected end of input, unclosed block")
			}
			return obj, nil
		}

		if p.data[p.pos] == '}' {
			if !nested {
				return nil, fmt.Errorf("vdf: unexpected '}' at offset %d", p.pos)
			}
			p.pos++
			return obj, nil
		}

		key, err := p.parseToken()
		if err != nil {
			return nil, fmt.Errorf("vdf: bad key: %w", err)
		}

		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("vdf: key %q has no value", key)
		}

		if p.data[p.pos] == '{' {
			p.pos++
			child, err := p.parseObject(true)
			if err != nil {
				return nil, err
			}
			obj[key] = child
			continue
		}

		val, err := p.parseToken()
		if err != nil {
			return nil, fmt.Errorf("vdf: bad value for key %q: %w", key, err)
		}
		obj[key] = val
	}
}

// parseToken reads a quoted string or a bare token.
func (p *parser) parseToken() (string, error) {
	if p.data[p.pos] == '"' {
		return p.parseQuoted()
	}
	return p.parseBare()
}

func (p *parser) parseQuoted() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return "", fmt.Errorf("truncated escape at offset %d", p.pos)
			}
			switch p.data[p.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				// Unknown escape, keep it verbatim.
				sb.WriteByte('\\')
				sb.WriteByte(p.data[p.pos])
			}
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string at offset %d", p.pos)
}

// parseBare reads an unquoted token. Some tools emit bare keys.
func (p *parser) parseBare() (string, error) {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '"' || c == '{' || c == '}' || isSpace(c) {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("empty token at offset %d", start)
	}
	return string(p.data[start:p.pos]), nil
}

// skipSpace advances past whitespace and // line comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isSpace(c) {
			p.pos++
			continue
		}
		if c == '/' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '/' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		return
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
