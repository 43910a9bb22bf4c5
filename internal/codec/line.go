package codec

import "strings"

// LineKind tags a classified vCard content line.
type LineKind int

const (
	LineUnrecognized LineKind = iota
	LineBegin
	LineEnd
	LineName
	LinePhone
	LineEmail
	LineAddress
	LineBirthday
)

func (k LineKind) String() string {
	switch k {
	case LineBegin:
		return "BEGIN"
	case LineEnd:
		return "END"
	case LineName:
		return "FN"
	case LinePhone:
		return "TEL"
	case LineEmail:
		return "EMAIL"
	case LineAddress:
		return "ADR"
	case LineBirthday:
		return "BDAY"
	default:
		return "unrecognized"
	}
}

// Line is one classified vCard line. Value holds the decoded property value;
// for addresses the structured components are already collapsed.
type Line struct {
	Kind  LineKind
	Value string
}

// ClassifyLine maps a single unfolded vCard line onto a Line.
// Property names are matched case-sensitively. TEL and ADR accept
// parameters (TEL;TYPE=CELL:...); FN, EMAIL and BDAY must be bare.
func ClassifyLine(line string) Line {
	switch {
	case line == "BEGIN:VCARD":
		return Line{Kind: LineBegin}
	case line == "END:VCARD":
		return Line{Kind: LineEnd}
	case strings.HasPrefix(line, "FN:"):
		return Line{Kind: LineName, Value: strings.TrimSpace(line[len("FN:"):])}
	case strings.HasPrefix(line, "EMAIL:"):
		return Line{Kind: LineEmail, Value: strings.TrimSpace(line[len("EMAIL:"):])}
	case strings.HasPrefix(line, "BDAY:"):
		return Line{Kind: LineBirthday, Value: NormalizeBirthday(line[len("BDAY:"):])}
	}

	if v, ok := parameterized(line, "TEL"); ok {
		return Line{Kind: LinePhone, Value: strings.TrimSpace(v)}
	}
	if v, ok := parameterized(line, "ADR"); ok {
		return Line{Kind: LineAddress, Value: collapseAddress(v)}
	}
	return Line{Kind: LineUnrecognized}
}

// parameterized matches "NAME:value" or "NAME;params:value" and returns value.
func parameterized(line, name string) (string, bool) {
	if !strings.HasPrefix(line, name) || len(line) == len(name) {
		return "", false
	}
	rest := line[len(name):]
	switch rest[0] {
	case ':':
		return rest[1:], true
	case ';':
		i := strings.IndexByte(rest, ':')
		if i < 0 {
			return "", false
		}
		return rest[i+1:], true
	}
	return "", false
}

// collapseAddress joins the non-empty ;-separated ADR components with single
// spaces. Escaped separators (\; and \,) stay inside their component.
func collapseAddress(v string) string {
	var parts []string
	for _, p := range splitComponents(v) {
		parts = append(parts, strings.Fields(unescapeText(p))...)
	}
	return strings.Join(parts, " ")
}

// splitComponents splits v on semicolons not preceded by a backslash.
func splitComponents(v string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '\\':
			i++
		case ';':
			parts = append(parts, v[start:i])
			start = i + 1
		}
	}
	return append(parts, v[start:])
}

var (
	textEscaper   = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`)
	textUnescaper = strings.NewReplacer(`\\`, `\`, `\;`, ";", `\,`, ",", `\n`, " ", `\N`, " ")
)

func escapeText(v string) string   { return textEscaper.Replace(v) }
func unescapeText(v string) string { return textUnescaper.Replace(v) }
