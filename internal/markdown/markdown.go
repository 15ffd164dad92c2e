// Package markdown converts assistant Markdown into styled terminal
// lines. Headings become bold text, fenced code blocks are syntax
// highlighted, and everything reflows to the current viewport width.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gtext "github.com/yuin/goldmark/text"

	"lumen-cli/internal/ui/render"
)

var (
	headingStyle    = lipgloss.NewStyle().Bold(true)
	inlineCodeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	emphasisStyle   = lipgloss.NewStyle().Italic(true)
	strongStyle     = lipgloss.NewStyle().Bold(true)
	strikeStyle     = lipgloss.NewStyle().Strikethrough(true)
	linkStyle       = lipgloss.NewStyle().Underline(true)
	dimStyle        = lipgloss.NewStyle().Faint(true)
	quoteBarStyle   = lipgloss.NewStyle().Faint(true)
)

// ToLines 将 Markdown 文本转换为按宽度折行的样式化行。
func ToLines(markdown string, width int) []render.Line {
	if width <= 0 {
		width = 80
	}
	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gtext.NewReader(source))

	c := &converter{source: source, width: width}
	c.blocks(doc)
	for len(c.lines) > 0 && strings.TrimSpace(c.lines[len(c.lines)-1].Text()) == "" {
		c.lines = c.lines[:len(c.lines)-1]
	}
	return c.lines
}

type converter struct {
	source []byte
	width  int
	lines  []render.Line
}

func (c *converter) append(line render.Line) {
	c.lines = append(c.lines, line)
}

// blank inserts a separator row unless one is already there.
func (c *converter) blank() {
	if len(c.lines) == 0 {
		return
	}
	if strings.TrimSpace(c.lines[len(c.lines)-1].Text()) == "" {
		return
	}
	c.append(render.Plain(""))
}

// appendWrapped word-wraps a possibly styled string without counting
// escape sequences against the width.
func (c *converter) appendWrapped(styled string, indent string) {
	wrapWidth := c.width - ansi.StringWidth(indent)
	if wrapWidth < 8 {
		wrapWidth = 8
	}
	wrapped := ansi.Wordwrap(styled, wrapWidth, "")
	for _, row := range strings.Split(wrapped, "\n") {
		c.append(render.Plain(indent + row))
	}
}

func (c *converter) blocks(n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.block(child)
	}
}

func (c *converter) block(node ast.Node) {
	switch n := node.(type) {
	case *ast.Document:
		c.blocks(n)

	case *ast.Heading:
		c.blank()
		c.appendWrapped(headingStyle.Render(c.plainInlines(n)), "")
		c.blank()

	case *ast.Paragraph:
		c.appendWrapped(c.inlines(n), "")
		c.blank()

	case *ast.TextBlock:
		c.appendWrapped(c.inlines(n), "")

	case *ast.Blockquote:
		c.quote(n)

	case *ast.List:
		c.list(n, "")
		c.blank()

	case *ast.FencedCodeBlock:
		c.code(string(n.Language(c.source)), c.blockText(n))

	case *ast.CodeBlock:
		c.code("", c.blockText(n))

	case *ast.ThematicBreak:
		c.blank()
		rule := c.width
		if rule > 40 {
			rule = 40
		}
		c.append(render.Styled(strings.Repeat("─", rule), dimStyle))
		c.blank()

	case *east.Table:
		c.table(n)

	case *ast.HTMLBlock:
		// Raw HTML has no terminal rendering; show it verbatim.
		c.appendWrapped(c.blockText(n), "")

	default:
		c.blocks(n)
	}
}

func (c *converter) quote(n *ast.Blockquote) {
	sub := &converter{source: c.source, width: c.width - 2}
	sub.blocks(n)
	for len(sub.lines) > 0 && strings.TrimSpace(sub.lines[len(sub.lines)-1].Text()) == "" {
		sub.lines = sub.lines[:len(sub.lines)-1]
	}
	for _, line := range sub.lines {
		spans := append([]render.Span{{Text: "│ ", Style: quoteBarStyle}}, line.Spans...)
		c.append(render.Line{Spans: spans})
	}
	c.blank()
}

func (c *converter) list(n *ast.List, indent string) {
	index := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch sub := child.(type) {
			case *ast.List:
				c.list(sub, indent+"  ")
			case *ast.TextBlock, *ast.Paragraph:
				prefix := indent + strings.Repeat(" ", len(marker))
				if first {
					prefix = indent + marker
					first = false
				}
				c.appendWrapped(c.inlines(child), prefix)
			default:
				c.block(child)
			}
		}
		if first {
			c.append(render.Plain(indent + marker))
		}
	}
}

func (c *converter) code(lang, body string) {
	c.blank()
	for _, row := range highlight(body, lang) {
		c.append(render.Plain("  " + row))
	}
	c.blank()
}

// table renders a GFM table as aligned plain rows; terminals have no
// better native representation at arbitrary widths.
func (c *converter) table(n *east.Table) {
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		cells := []string{}
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, c.plainInlines(cell))
		}
		line := strings.Join(cells, "  │  ")
		if _, isHeader := row.(*east.TableHeader); isHeader {
			c.append(render.Styled(line, headingStyle))
			continue
		}
		c.append(render.Plain(line))
	}
	c.blank()
}

func (c *converter) blockText(n ast.Node) string {
	var b strings.Builder
	segments := n.Lines()
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		b.Write(seg.Value(c.source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// inlines flattens a node's inline children into one styled string.
func (c *converter) inlines(n ast.Node) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		b.WriteString(c.inline(child))
	}
	return b.String()
}

func (c *converter) inline(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Text:
		text := string(n.Segment.Value(c.source))
		if n.SoftLineBreak() {
			return text + " "
		}
		if n.HardLineBreak() {
			return text + "\n"
		}
		return text
	case *ast.String:
		return string(n.Value)
	case *ast.CodeSpan:
		return inlineCodeStyle.Render(c.plainInlines(n))
	case *ast.Emphasis:
		if n.Level >= 2 {
			return strongStyle.Render(c.plainInlines(n))
		}
		return emphasisStyle.Render(c.plainInlines(n))
	case *east.Strikethrough:
		return strikeStyle.Render(c.plainInlines(n))
	case *ast.Link:
		label := c.plainInlines(n)
		url := string(n.Destination)
		if label == "" || label == url {
			return linkStyle.Render(url)
		}
		return linkStyle.Render(label) + dimStyle.Render(" ("+url+")")
	case *ast.AutoLink:
		return linkStyle.Render(string(n.URL(c.source)))
	case *ast.Image:
		return dimStyle.Render("[image: " + c.plainInlines(n) + "]")
	case *ast.RawHTML:
		return ""
	default:
		return c.inlines(node)
	}
}

// plainInlines returns inline content with styling discarded, for
// contexts that apply one style to the whole run.
func (c *converter) plainInlines(n ast.Node) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(c.source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(c.plainInlines(child))
		}
	}
	return b.String()
}

// highlight colors a code block, falling back to plain text for
// unknown languages.
func highlight(code, lang string) []string {
	if lang == "" {
		lang = "plaintext"
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, code, lang, "terminal256", "dracula"); err != nil {
		buf.Reset()
		if err := quick.Highlight(&buf, code, "plaintext", "terminal256", "dracula"); err != nil {
			buf.Reset()
			buf.WriteString(code)
		}
	}
	if buf.Len() == 0 {
		buf.WriteString(code)
	}
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}
