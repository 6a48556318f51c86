package printer

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// CodePage pairs an ESC t table number with the charset used to encode text.
type CodePage struct {
	Name    string
	Table   byte
	charmap *charmap.Charmap
}

var codePages = map[string]CodePage{
	"cp437":   {Name: "cp437", Table: 0, charmap: charmap.CodePage437},
	"cp850":   {Name: "cp850", Table: 2, charmap: charmap.CodePage850},
	"cp860":   {Name: "cp860", Table: 3, charmap: charmap.CodePage860},
	"cp863":   {Name: "cp863", Table: 4, charmap: charmap.CodePage863},
	"cp865":   {Name: "cp865", Table: 5, charmap: charmap.CodePage865},
	"cp1252":  {Name: "cp1252", Table: 16, charmap: charmap.Windows1252},
	"cp866":   {Name: "cp866", Table: 17, charmap: charmap.CodePage866},
	"cp852":   {Name: "cp852", Table: 18, charmap: charmap.CodePage852},
	"cp858":   {Name: "cp858", Table: 19, charmap: charmap.CodePage858},
	"iso8859": {Name: "iso8859", Table: 40, charmap: charmap.ISO8859_15},
}

// DefaultCodePage returns CP437, the power-on table of most ESC/POS printers.
func DefaultCodePage() CodePage {
	return codePages["cp437"]
}

// LookupCodePage resolves a code page by name ("cp437", "CP858", "1252"...).
func LookupCodePage(name string) (CodePage, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasPrefix(key, "cp") && !strings.HasPrefix(key, "iso") {
		key = "cp" + key
	}
	cp, ok := codePages[key]
	return cp, ok
}

// Encode converts s to the code page, replacing unsupported runes with '?'.
func (cp CodePage) Encode(s string) []byte {
	if cp.charmap == nil {
		return []byte(s)
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := cp.charmap.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}
