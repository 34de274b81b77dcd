package model

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sineer/routerconf/errs"
)

// Parse reads the declarative text format of spec §4.1:
//
//	config <type> [<name>]
//	    option <key> <value>
//	    list <key> <value>
//
// Blank lines and "#..." comments are skipped. A missing or malformed
// config header fails with errs.KindSyntax; reusing a key across an option
// and a list statement within the same section fails with
// errs.KindTypeConflict.
func Parse(r io.Reader) (*Config, error) {
	const op = "model.Parse"
	cfg := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *Section
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields, err := tokenize(line)
		if err != nil {
			return nil, errs.New(errs.KindSyntax, op, fmt.Errorf("line %d: %w", lineNo, err))
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "config":
			if len(fields) < 2 || len(fields) > 3 {
				return nil, errs.Newf(errs.KindSyntax, op, "line %d: malformed config header", lineNo)
			}
			cur = &Section{Type: fields[1]}
			if len(fields) == 3 {
				cur.Name = fields[2]
			}
			cfg.Append(cur)

		case "option":
			if cur == nil {
				return nil, errs.Newf(errs.KindSyntax, op, "line %d: option outside of a config block", lineNo)
			}
			if len(fields) != 3 {
				return nil, errs.Newf(errs.KindSyntax, op, "line %d: malformed option statement", lineNo)
			}
			if strings.HasPrefix(fields[1], ".") {
				if cur.Meta == nil {
					cur.Meta = make(map[string]string)
				}
				cur.Meta[fields[1]] = fields[2]
				continue
			}
			if existing, ok := cur.Get(fields[1]); ok && existing.IsList() {
				return nil, errs.New(errs.KindTypeConflict, op,
					fmt.Errorf("line %d: option %q conflicts with earlier list statement", lineNo, fields[1]))
			}
			cur.Set(fields[1], Scalar(fields[2]))

		case "list":
			if cur == nil {
				return nil, errs.Newf(errs.KindSyntax, op, "line %d: list outside of a config block", lineNo)
			}
			if len(fields) != 3 {
				return nil, errs.Newf(errs.KindSyntax, op, "line %d: malformed list statement", lineNo)
			}
			if existing, ok := cur.Get(fields[1]); ok {
				if existing.IsScalar() {
					return nil, errs.New(errs.KindTypeConflict, op,
						fmt.Errorf("line %d: list %q conflicts with earlier option statement", lineNo, fields[1]))
				}
				cur.Set(fields[1], ListValue(append(existing.AsList(), fields[2])))
			} else {
				cur.Set(fields[1], ListValue([]string{fields[2]}))
			}

		default:
			return nil, errs.Newf(errs.KindSyntax, op, "line %d: unexpected token %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.KindIO, op, err)
	}
	return cfg, nil
}

// tokenize splits a line into whitespace-separated fields, honoring
// unquoted, single-quoted and double-quoted values and the escape sequences
// \\, \' and \" both inside and outside quotes, so the escaped form Emit
// writes for an embedded single quote reads back as that quote.
func tokenize(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inField := false
	i := 0
	n := len(line)

	flush := func() {
		if inField {
			fields = append(fields, cur.String())
			cur.Reset()
			inField = false
		}
	}

	for i < n {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			flush()
			i++
		case c == '\'' || c == '"':
			quote := c
			inField = true
			i++
			for i < n {
				if line[i] == '\\' && i+1 < n && (line[i+1] == '\\' || line[i+1] == '\'' || line[i+1] == '"') {
					cur.WriteByte(line[i+1])
					i += 2
					continue
				}
				if line[i] == quote {
					i++
					break
				}
				cur.WriteByte(line[i])
				i++
			}
		case c == '\\' && i+1 < n && (line[i+1] == '\\' || line[i+1] == '\'' || line[i+1] == '"'):
			inField = true
			cur.WriteByte(line[i+1])
			i += 2
		default:
			inField = true
			cur.WriteByte(c)
			i++
		}
	}
	flush()
	return fields, nil
}

// Emit writes c back to the declarative text format. Sections are emitted in
// their stored order; within a section, options in insertion order, with
// each List rendered as a run of "list" lines. Values are single-quoted,
// with ' escaped as '\''. Emit never writes an empty list (spec
// invariant 4).
func Emit(w io.Writer, c *Config) error {
	const op = "model.Emit"
	bw := bufio.NewWriter(w)
	for _, s := range c.Sections {
		if s.Name != "" {
			fmt.Fprintf(bw, "config %s %s\n", s.Type, quote(s.Name))
		} else {
			fmt.Fprintf(bw, "config %s\n", s.Type)
		}
		metaKeys := make([]string, 0, len(s.Meta))
		for k := range s.Meta {
			metaKeys = append(metaKeys, k)
		}
		sort.Strings(metaKeys)
		for _, k := range metaKeys {
			fmt.Fprintf(bw, "\toption %s %s\n", k, quote(s.Meta[k]))
		}
		for _, o := range s.Options {
			switch o.Value.Kind() {
			case KindScalar:
				fmt.Fprintf(bw, "\toption %s %s\n", o.Key, quote(o.Value.AsScalar()))
			case KindList:
				for _, item := range o.Value.AsList() {
					fmt.Fprintf(bw, "\tlist %s %s\n", o.Key, quote(item))
				}
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return errs.New(errs.KindIO, op, err)
	}
	return nil
}

// EmitString renders c to its text form as a string.
func EmitString(c *Config) (string, error) {
	var b strings.Builder
	if err := Emit(&b, c); err != nil {
		return "", err
	}
	return b.String(), nil
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
