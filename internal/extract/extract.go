// Package extract turns Python and TypeScript source files into the raw
// declarations the graph builder needs: handler functions, route
// registrations, model classes, runtime validator schemas, and the call
// sites that connect them.
package extract

import (
	"context"
	"fmt"
	"path"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// Language identifies a supported source language.
type Language string

const (
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// DetectLanguage classifies a file path by extension.
func DetectLanguage(file string) Language {
	switch path.Ext(file) {
	case ".py":
		return LangPython
	case ".ts", ".tsx", ".js", ".jsx":
		return LangTypeScript
	default:
		return LangUnknown
	}
}

// FieldDecl is one declared field of a model, validator, or interface.
type FieldDecl struct {
	Name     string
	Type     string // raw annotation token, e.g. "str", "string", "number"
	Optional bool
}

// ParamDecl is one declared parameter. Type is the raw annotation token;
// whether it names a model class is decided during graph construction.
type ParamDecl struct {
	Name     string
	Type     string
	Optional bool
}

// FunctionDecl is a function or method declaration.
type FunctionDecl struct {
	Name       string
	File       string
	Line       int
	EndLine    int
	Params     []ParamDecl
	ReturnType string // raw annotation token, empty when unannotated
	Class      string // enclosing class name, empty for free functions
}

// ClassDecl is a class declaration. A class with annotated fields is a
// candidate schema-bearing model.
type ClassDecl struct {
	Name   string
	File   string
	Line   int
	Bases  []string
	Fields []FieldDecl
}

// RouteDecl is one route registration discovered from a framework
// decorator. Handler is a name, resolved to a node later. ResponseModel
// carries the declared response model name when the decorator names one.
type RouteDecl struct {
	Path          string
	Method        string
	Handler       string
	ResponseModel string
	File          string
	Line          int
}

// ValidatorDecl is a runtime validator schema declaration, e.g. a zod
// object. Usage fields are filled in when a call site in the same file
// sends data to an API endpoint.
type ValidatorDecl struct {
	Name        string
	File        string
	Line        int
	Fields      []FieldDecl
	UsagePath   string
	UsageMethod string
}

// StructuralDecl is a compile-time-only shape, e.g. a TypeScript
// interface.
type StructuralDecl struct {
	Name   string
	File   string
	Line   int
	Fields []FieldDecl
}

// CallSite is one call expression. For HTTP client calls URL and
// HTTPMethod are set; for ordinary calls Args carries the argument
// bindings in declaration order.
type CallSite struct {
	Caller     string // enclosing function name, empty at module scope
	Callee     string
	File       string
	Line       int
	Args       []ir.ArgBinding
	URL        string
	HTTPMethod string
}

// ImportDecl is one import of another module.
type ImportDecl struct {
	Module string
	File   string
	Line   int
}

// FileResult is everything extracted from one source file.
type FileResult struct {
	File        string
	Language    Language
	Functions   []FunctionDecl
	Classes     []ClassDecl
	Routes      []RouteDecl
	Validators  []ValidatorDecl
	Structurals []StructuralDecl
	Calls       []CallSite
	Imports     []ImportDecl
}

// extractor extracts declarations from a parsed tree-sitter AST.
type extractor interface {
	Extract(root *tree_sitter.Node, source []byte, filePath string) FileResult
}

// Parser parses source files with tree-sitter grammars. A new tree-sitter
// parser is created per Parse call, so the type is safe for sequential
// use; individual Parse calls are not thread-safe.
type Parser struct {
	languages  map[Language]*tree_sitter.Language
	extractors map[Language]extractor
}

// NewParser creates a Parser with the Python and TypeScript grammars
// registered.
func NewParser() *Parser {
	return &Parser{
		languages: map[Language]*tree_sitter.Language{
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		},
		extractors: map[Language]extractor{
			LangPython:     &pyExtractor{},
			LangTypeScript: &tsExtractor{},
		},
	}
}

// Parse extracts declarations from a single source file.
func (p *Parser) Parse(_ context.Context, file string, source []byte, lang Language) (*FileResult, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	ext := p.extractors[lang]

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", file)
	}
	defer tree.Close()

	res := ext.Extract(tree.RootNode(), source, file)
	res.File = file
	res.Language = lang
	return &res, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *Parser) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	return langs
}
