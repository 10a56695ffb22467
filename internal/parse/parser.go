package parse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nullpx/pypm/internal/domain"
)

// FingerprintCache is the subset of internal/parsecache that the Parser
// depends on, kept as an interface so tests can substitute a fake.
type FingerprintCache interface {
	Get(fp domain.FileFingerprint) (domain.ParseResult, bool)
	Put(fp domain.FileFingerprint, result domain.ParseResult)
}

// Parser parses one file at a time into a ParseResult. ParseFile is a
// pure function of file contents, modulo the fingerprint cache.
type Parser struct {
	python *PythonParser
	cache  FingerprintCache
	Warn   func(domain.Warning)
}

// New creates a Parser backed by a pooled Tree-sitter Python parser.
func New(python *PythonParser, cache FingerprintCache) *Parser {
	return &Parser{python: python, cache: cache, Warn: func(domain.Warning) {}}
}

// ParseFile reads, fingerprints, and parses path, consulting and
// populating the fingerprint cache. A syntax error or unreadable file
// yields an empty ParseResult and a warning; neither is fatal.
func (p *Parser) ParseFile(path domain.FilePath) domain.ParseResult {
	info, err := os.Stat(string(path))
	if err != nil {
		p.warn(domain.WarnPermission, string(path), err.Error())
		return domain.ParseResult{}
	}
	fp := domain.FileFingerprint{
		Path:         string(path),
		Size:         info.Size(),
		ModTimeNanos: info.ModTime().UnixNano(),
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(fp); ok {
			return cached
		}
	}

	result := p.parseUncached(path)

	if p.cache != nil {
		p.cache.Put(fp, result)
	}
	return result
}

func (p *Parser) parseUncached(path domain.FilePath) domain.ParseResult {
	raw, err := os.ReadFile(string(path))
	if err != nil {
		p.warn(domain.WarnPermission, string(path), err.Error())
		return domain.ParseResult{}
	}

	// Pre-filter: the overwhelming majority of files contain no import
	// statement at all; skip the syntax parser entirely for those.
	if !bytes.Contains(raw, []byte("import")) {
		return domain.ParseResult{}
	}

	ext := strings.ToLower(filepath.Ext(string(path)))
	if ext == ".ipynb" {
		src, err := extractNotebookSource(raw)
		if err != nil {
			p.warn(domain.WarnMalformed, string(path), fmt.Sprintf("invalid notebook JSON: %s", err))
			return domain.ParseResult{}
		}
		raw = src
	}

	content, err := decode(raw)
	if err != nil {
		p.warn(domain.WarnMalformed, string(path), "undecodable as UTF-8 or Latin-1, skipped")
		return domain.ParseResult{}
	}

	tree, err := p.python.Parse(content)
	if err != nil {
		p.warn(domain.WarnMalformed, string(path), fmt.Sprintf("syntax error: %s", err))
		return domain.ParseResult{}
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		p.warn(domain.WarnMalformed, string(path), "syntax error, skipped")
		return domain.ParseResult{}
	}

	return ExtractImports(tree.RootNode(), content)
}

// decode returns content as UTF-8 bytes, trying UTF-8 first and falling
// back to Latin-1 (ISO-8859-1). Latin-1 never fails to decode: every
// byte 0x00-0xFF maps 1:1 onto the Unicode code point of the same value,
// so the fallback re-encodes each byte as its UTF-8 rune.
func decode(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		return raw, nil
	}
	var b bytes.Buffer
	b.Grow(len(raw))
	for _, c := range raw {
		b.WriteRune(rune(c))
	}
	return b.Bytes(), nil
}

func (p *Parser) warn(kind domain.WarningKind, subject, message string) {
	if p.Warn == nil {
		return
	}
	p.Warn(domain.Warning{Kind: kind, Subject: subject, Message: message})
}
