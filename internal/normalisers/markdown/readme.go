// Package markdown parses project READMEs into the fields a gallery
// record needs.
package markdown

import (
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// contributorHeading matches section headings that introduce the team.
var contributorHeading = regexp.MustCompile(`(?i)\b(contributors?|authors?|team|members?|group members)\b`)

// htmlImage matches src attributes of inline <img> tags.
var htmlImage = regexp.MustCompile(`(?i)<img\b[^>]*?\bsrc\s*=\s*["']([^"']+)["']`)

// Readme is the content pulled from a README.
type Readme struct {
	// Title is the text of the first level-one heading.
	Title string

	// FirstLine is the first non-empty source line of the first text
	// block, used when there is no level-one heading.
	FirstLine string

	// Description is the first paragraph after the title.
	Description string

	// Contributors are the list items under a contributors heading.
	Contributors []string

	// Images are image destinations in document order.
	Images []string
}

// HasHeading reports whether the README has a level-one heading.
func (r Readme) HasHeading() bool {
	return r.Title != ""
}

// Parser parses READMEs. It is safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a parser with GitHub Flavored Markdown enabled.
func NewParser() *Parser {
	return &Parser{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Parse extracts title, description, contributors and images.
func (p *Parser) Parse(source []byte) Readme {
	doc := p.md.Parser().Parse(text.NewReader(source))

	var (
		r              Readme
		sawTitle       bool
		inContributors bool
	)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := plainText(node, source)
			if node.Level == 1 && r.Title == "" {
				r.Title = heading
				sawTitle = true
				inContributors = false
				continue
			}
			inContributors = contributorHeading.MatchString(heading)
		case *ast.Paragraph:
			para := plainText(node, source)
			if para == "" {
				continue
			}
			if inContributors {
				r.Contributors = append(r.Contributors, splitNames(para)...)
				continue
			}
			if r.Description == "" && (sawTitle || r.FirstLine != "") {
				r.Description = para
			}
		case *ast.List:
			if inContributors {
				r.Contributors = append(r.Contributors, listItems(node, source)...)
			}
		}

		if r.FirstLine == "" && !sawTitle {
			if line := firstLine(n, source); line != "" {
				r.FirstLine = line
			}
		}
	}

	r.Images = images(doc, source)
	return r
}

// plainText returns the visible text of n on one line, without image
// alt text.
func plainText(n ast.Node, source []byte) string {
	return strings.Join(strings.Fields(visibleText(n, source)), " ")
}

// firstLine returns the first non-empty source line of n's visible text.
func firstLine(n ast.Node, source []byte) string {
	for _, line := range strings.Split(visibleText(n, source), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			return line
		}
	}
	return ""
}

// visibleText keeps line breaks as newlines.
func visibleText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Image, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func listItems(list *ast.List, source []byte) []string {
	var out []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		if name := plainText(item, source); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// splitNames splits "Alice, Bob and Carol" into names.
func splitNames(s string) []string {
	s = strings.ReplaceAll(s, " and ", ",")
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// images collects Markdown image destinations and <img src> values.
func images(doc ast.Node, source []byte) []string {
	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			out = append(out, string(node.Destination))
		case *ast.HTMLBlock:
			out = append(out, htmlSources(blockText(node, source))...)
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				b.Write(seg.Value(source))
			}
			out = append(out, htmlSources(b.String())...)
		}
		return ast.WalkContinue, nil
	})
	return out
}

func blockText(n *ast.HTMLBlock, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	if n.HasClosure() {
		b.Write(n.ClosureLine.Value(source))
	}
	return b.String()
}

func htmlSources(s string) []string {
	var out []string
	for _, m := range htmlImage.FindAllStringSubmatch(s, -1) {
		out = append(out, html.UnescapeString(m[1]))
	}
	return out
}
