package transform

// Import specifier scanning over lowered ES module output. The lowerer has
// already stripped types and JSX, so the scanner only has to understand module
// syntax: static imports, re-exports, side-effect imports, and dynamic
// import() calls with literal arguments.

// ImportRef locates one import specifier inside module code. Start and End
// bound the specifier text itself, excluding the surrounding quotes, so a
// rewrite can splice a replacement in place.
type ImportRef struct {
	Specifier string
	Start     int
	End       int
}

// ScanImports returns every import specifier in the code, deduplicated,
// in first-seen source order.
func ScanImports(code string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ref := range ScanImportRefs(code) {
		if _, ok := seen[ref.Specifier]; ok {
			continue
		}
		seen[ref.Specifier] = struct{}{}
		out = append(out, ref.Specifier)
	}
	return out
}

// ScanImportRefs returns every import specifier occurrence in source order,
// including duplicates, with splice offsets.
func ScanImportRefs(code string) []ImportRef {
	s := &specScanner{src: code}
	s.run()
	return s.refs
}

type specScanner struct {
	src  string
	pos  int
	refs []ImportRef

	// prev is a one-byte summary of the last significant token, used to tell
	// a regex literal from a division at a bare '/': 'a' for identifiers and
	// other value-ending tokens, 'k' for keywords that expect an expression
	// next, '"' for string ends, 0 at the start of input, otherwise the raw
	// punctuation byte.
	prev byte
}

func (s *specScanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.peekAt(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peekAt(1) == '*':
			s.skipBlockComment()
		case c == '/':
			if s.regexAllowed() {
				s.skipRegex()
				s.prev = 'a'
			} else {
				s.pos++
				s.prev = '/'
			}
		case c == '\'' || c == '"':
			s.skipString(c)
			s.prev = '"'
		case c == '`':
			s.skipTemplate()
			s.prev = '"'
		case isIdentStart(c):
			word := s.readIdent()
			switch word {
			case "import":
				s.afterImport()
				s.prev = 'a'
			case "export":
				s.afterExport()
				s.prev = 'a'
			default:
				if expressionKeywords[word] {
					s.prev = 'k'
				} else {
					s.prev = 'a'
				}
			}
		default:
			s.prev = c
			s.pos++
		}
	}
}

// expressionKeywords precede an expression, so a '/' after one of these opens
// a regex literal rather than a division.
var expressionKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "instanceof": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// regexAllowed reports whether a '/' at the current position opens a regex
// literal. Division only follows value-ending tokens: identifiers, numbers,
// string ends, and closing ')' or ']'.
func (s *specScanner) regexAllowed() bool {
	switch {
	case s.prev == 'a' || s.prev == '"' || s.prev == ')' || s.prev == ']' || s.prev == '/':
		return false
	case s.prev >= '0' && s.prev <= '9':
		return false
	}
	return true
}

// skipRegex consumes a regex literal, honoring escapes and character classes
// (an unescaped '/' inside [...] does not terminate the literal). A newline
// before the closing '/' means the token was not a regex after all; bail so
// the line's end resynchronizes the scan.
func (s *specScanner) skipRegex() {
	s.pos++ // opening slash
	inClass := false
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == '\\':
			s.pos += 2
		case c == '[':
			inClass = true
			s.pos++
		case c == ']':
			inClass = false
			s.pos++
		case c == '/' && !inClass:
			s.pos++
			return
		case c == '\n':
			return
		default:
			s.pos++
		}
	}
}

// afterImport handles everything the import keyword can start: a side-effect
// import, an import clause with a from-specifier, a dynamic import() call, or
// import.meta (ignored).
func (s *specScanner) afterImport() {
	s.skipTrivia()
	if s.pos >= len(s.src) {
		return
	}
	switch c := s.src[s.pos]; {
	case c == '.':
		// import.meta
		return
	case c == '(':
		s.pos++
		s.skipTrivia()
		if s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == '"') {
			s.captureString(s.src[s.pos])
		}
	case c == '\'' || c == '"':
		s.captureString(c)
	default:
		s.scanForFrom()
	}
}

// afterExport only cares about re-export forms: export * from "x" and
// export { ... } from "x". Everything else is a plain declaration.
func (s *specScanner) afterExport() {
	s.skipTrivia()
	if s.pos >= len(s.src) {
		return
	}
	if c := s.src[s.pos]; c != '*' && c != '{' {
		return
	}
	s.scanForFrom()
}

// scanForFrom advances through an import/export clause until it finds the
// "from" keyword followed by a string literal, or the statement ends.
func (s *specScanner) scanForFrom() {
	for s.pos < len(s.src) {
		s.skipTrivia()
		if s.pos >= len(s.src) {
			return
		}
		c := s.src[s.pos]
		switch {
		case c == ';':
			s.pos++
			return
		case isIdentStart(c):
			if s.readIdent() == "from" {
				s.skipTrivia()
				if s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == '"') {
					s.captureString(s.src[s.pos])
				}
				return
			}
		default:
			s.pos++
		}
	}
}

// captureString consumes a string literal at the current position and records
// its contents as an import specifier.
func (s *specScanner) captureString(quote byte) {
	s.pos++ // opening quote
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != quote {
		if s.src[s.pos] == '\\' {
			s.pos++
		}
		s.pos++
	}
	end := s.pos
	if s.pos < len(s.src) {
		s.pos++ // closing quote
	}
	s.refs = append(s.refs, ImportRef{Specifier: s.src[start:end], Start: start, End: end})
}

func (s *specScanner) skipString(quote byte) {
	s.pos++
	for s.pos < len(s.src) && s.src[s.pos] != quote {
		if s.src[s.pos] == '\\' {
			s.pos++
		}
		s.pos++
	}
	if s.pos < len(s.src) {
		s.pos++
	}
}

// skipTemplate consumes a template literal, tracking ${} nesting so embedded
// expressions (which may themselves contain strings) are passed over intact.
func (s *specScanner) skipTemplate() {
	s.pos++ // opening backtick
	depth := 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
		case depth == 0 && c == '`':
			s.pos++
			return
		case c == '$' && s.peekAt(1) == '{':
			depth++
			s.pos += 2
		case depth > 0 && c == '}':
			depth--
			s.pos++
		case depth > 0 && (c == '\'' || c == '"'):
			s.skipString(c)
		default:
			s.pos++
		}
	}
}

func (s *specScanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *specScanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peekAt(1) == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
}

// skipTrivia advances past whitespace and comments.
func (s *specScanner) skipTrivia() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.peekAt(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peekAt(1) == '*':
			s.skipBlockComment()
		default:
			return
		}
	}
}

func (s *specScanner) readIdent() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *specScanner) peekAt(offset int) byte {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
