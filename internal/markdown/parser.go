package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

// Document is a rendered journal body.
type Document struct {
	HTML  string
	Meta  map[string]any
	Title string
	Tags  []string
}

type Parser struct {
	md goldmark.Markdown
}

// NewParser renders GitHub flavored markdown with YAML or TOML front matter.
// Raw HTML in the source is escaped, journals are user input.
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Render(source []byte) (*Document, error) {
	context := parser.NewContext()
	var buf bytes.Buffer

	err := p.md.Convert(source, &buf, parser.WithContext(context))
	if err != nil {
		return nil, err
	}

	meta := decodeMeta(context)
	return &Document{
		HTML:  buf.String(),
		Meta:  meta,
		Title: stringValue(meta["title"]),
		Tags:  tags(meta["tags"]),
	}, nil
}

// Meta parses only the front matter.
func (p *Parser) Meta(source []byte) map[string]any {
	context := parser.NewContext()
	p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))
	return decodeMeta(context)
}

func decodeMeta(context parser.Context) map[string]any {
	data := frontmatter.Get(context)
	if data == nil {
		return make(map[string]any)
	}

	var meta map[string]any
	err := data.Decode(&meta)
	if err != nil || meta == nil {
		return make(map[string]any)
	}
	return meta
}

// tags accepts a YAML list or a comma separated string.
func tags(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
