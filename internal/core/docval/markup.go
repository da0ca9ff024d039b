package docval

import (
	"strings"
)

// Markup rendering is the structural mirror of a Value: each object key
// becomes an element, array items become repeated <item> elements, scalars
// become escaped leaf text. Element names are sanitized so every emitted name
// matches [A-Za-z0-9_-]+.

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// RenderMarkup renders v under a root element with the given name
func RenderMarkup(root string, v Value) string {
	var sb strings.Builder
	appendMarkup(&sb, root, v)
	return sb.String()
}

func appendMarkup(sb *strings.Builder, name string, v Value) {
	name = SanitizeName(name)
	sb.WriteByte('<')
	sb.WriteString(name)
	sb.WriteByte('>')

	switch v.kind {
	case KindObject:
		for _, k := range v.obj.keys {
			appendMarkup(sb, k, v.obj.m[k])
		}
	case KindArray:
		for _, item := range v.arr.items {
			appendMarkup(sb, "item", item)
		}
	case KindString:
		sb.WriteString(markupEscaper.Replace(v.str))
	case KindNumber:
		sb.WriteString(v.num)
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNull:
		// empty element
	}

	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
}

// SanitizeName replaces every rune outside [A-Za-z0-9_-] with '_'.
// Empty names collapse to a single underscore
func SanitizeName(name string) string {
	if name == "" {
		return "_"
	}
	clean := true
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			clean = false
			break
		}
	}
	if clean {
		return name
	}
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if r < 128 && isNameByte(byte(r)) {
			sb.WriteByte(byte(r))
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}
