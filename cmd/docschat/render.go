package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

var (
	headingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	inlineCodeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	codeBlockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")).PaddingLeft(2)
	linkStyle       = lipgloss.NewStyle().Faint(true)
	quoteStyle      = lipgloss.NewStyle().Italic(true).Faint(true)
)

// renderMarkdown converts the assistant's markdown reply into styled
// terminal text.
func renderMarkdown(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(text))

	r := &terminalRenderer{}
	ast.WalkFunc(doc, r.visit)

	return strings.TrimRight(r.b.String(), "\n")
}

// terminalRenderer writes styled text while walking the markdown AST.
// Emphasis is tracked with counters because inline containers nest.
type terminalRenderer struct {
	b       strings.Builder
	bold    int
	italic  int
	heading int
	quote   int
	lists   []*listState
}

type listState struct {
	ordered bool
	index   int
}

func (r *terminalRenderer) visit(node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Text:
		r.b.WriteString(r.styled(string(n.Literal)))

	case *ast.Code:
		r.b.WriteString(inlineCodeStyle.Render(string(n.Literal)))

	case *ast.CodeBlock:
		code := strings.TrimRight(string(n.Literal), "\n")
		r.b.WriteString(codeBlockStyle.Render(code))
		r.b.WriteString("\n\n")

	case *ast.Heading:
		if entering {
			r.heading++
		} else {
			r.heading--
			r.b.WriteString("\n\n")
		}

	case *ast.Paragraph:
		if !entering {
			if len(r.lists) > 0 {
				r.b.WriteString("\n")
			} else {
				r.b.WriteString("\n\n")
			}
		}

	case *ast.Strong:
		if entering {
			r.bold++
		} else {
			r.bold--
		}

	case *ast.Emph:
		if entering {
			r.italic++
		} else {
			r.italic--
		}

	case *ast.BlockQuote:
		if entering {
			r.quote++
		} else {
			r.quote--
		}

	case *ast.Link:
		if !entering && len(n.Destination) > 0 {
			r.b.WriteString(linkStyle.Render(fmt.Sprintf(" (%s)", n.Destination)))
		}

	case *ast.List:
		if entering {
			state := &listState{
				ordered: n.ListFlags&ast.ListTypeOrdered != 0,
				index:   n.Start,
			}
			if state.index < 1 {
				state.index = 1
			}
			r.lists = append(r.lists, state)
		} else {
			r.lists = r.lists[:len(r.lists)-1]
			if len(r.lists) == 0 {
				r.b.WriteString("\n")
			}
		}

	case *ast.ListItem:
		if entering {
			indent := strings.Repeat("  ", len(r.lists)-1)
			state := r.lists[len(r.lists)-1]
			if state.ordered {
				r.b.WriteString(fmt.Sprintf("%s%d. ", indent, state.index))
				state.index++
			} else {
				r.b.WriteString(indent + "• ")
			}
		}

	case *ast.HorizontalRule:
		r.b.WriteString(faintStyle.Render(strings.Repeat("─", 24)))
		r.b.WriteString("\n\n")

	case *ast.TableCell:
		if !entering {
			r.b.WriteString("\t")
		}

	case *ast.TableRow:
		if !entering {
			r.b.WriteString("\n")
		}

	case *ast.Table:
		if !entering {
			r.b.WriteString("\n")
		}

	case *ast.Softbreak, *ast.Hardbreak:
		r.b.WriteString("\n")
	}

	return ast.GoToNext
}

// styled renders an inline text run with whatever block or emphasis
// context is active.
func (r *terminalRenderer) styled(text string) string {
	if text == "" {
		return ""
	}

	switch {
	case r.heading > 0:
		return headingStyle.Render(text)
	case r.quote > 0:
		return quoteStyle.Render(text)
	}

	style := lipgloss.NewStyle()
	plain := true
	if r.bold > 0 {
		style = style.Bold(true)
		plain = false
	}
	if r.italic > 0 {
		style = style.Italic(true)
		plain = false
	}
	if plain {
		return text
	}
	return style.Render(text)
}
