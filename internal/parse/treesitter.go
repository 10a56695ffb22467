// Package parse implements the Parser: a Tree-sitter visitor over Python
// source (and Jupyter notebooks) that extracts classified top-level
// module names, with a pre-filter and a per-file fingerprint cache.
//
// Tree-sitter requires CGO_ENABLED=1. PythonParser pools a single
// *tree_sitter.Parser; Tree-sitter parsers are not thread-safe, so parse
// calls are serialized via a mutex. Parsed trees are read-only afterward
// and safe to inspect concurrently.
package parse

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// PythonParser holds a pooled Tree-sitter parser for Python source.
type PythonParser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// NewPythonParser creates a Tree-sitter parser configured for Python.
func NewPythonParser() (*PythonParser, error) {
	p := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}
	return &PythonParser{parser: p}, nil
}

// Close releases the underlying parser. Must be called when done.
func (p *PythonParser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses content and returns a Tree the caller must Close.
func (p *PythonParser) Parse(content []byte) (*tree_sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse returned nil")
	}
	return tree, nil
}
