package jira

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// ToWiki converts Markdown to Jira wiki markup.
func ToWiki(markdown string) string {
	out := blackfriday.Run([]byte(markdown),
		blackfriday.WithRenderer(&wikiRenderer{}),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
	)
	return strings.TrimSpace(string(out))
}

// wikiRenderer is a blackfriday renderer emitting Jira wiki markup.
type wikiRenderer struct{}

func (r *wikiRenderer) RenderHeader(io.Writer, *blackfriday.Node) {}

func (r *wikiRenderer) RenderFooter(io.Writer, *blackfriday.Node) {}

func (r *wikiRenderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	switch node.Type {
	case blackfriday.Text, blackfriday.HTMLSpan:
		lit := node.Literal
		if node.Next == nil {
			lit = bytes.TrimRight(lit, "\n")
		}
		w.Write(lit)

	case blackfriday.Softbreak, blackfriday.Hardbreak:
		if node.Next != nil {
			io.WriteString(w, "\n")
		}

	case blackfriday.Heading:
		if entering {
			fmt.Fprintf(w, "h%d. ", node.Level)
		} else {
			io.WriteString(w, "\n\n")
		}

	case blackfriday.Paragraph:
		if !entering {
			if inItem(node) {
				io.WriteString(w, "\n")
			} else {
				io.WriteString(w, "\n\n")
			}
		}

	case blackfriday.Strong:
		io.WriteString(w, "*")
	case blackfriday.Emph:
		io.WriteString(w, "_")
	case blackfriday.Del:
		io.WriteString(w, "-")

	case blackfriday.Code:
		fmt.Fprintf(w, "{{%s}}", node.Literal)

	case blackfriday.CodeBlock:
		lang := strings.Fields(string(node.Info))
		if len(lang) > 0 {
			fmt.Fprintf(w, "{code:%s}\n", lang[0])
		} else {
			io.WriteString(w, "{code}\n")
		}
		w.Write(node.Literal)
		if !bytes.HasSuffix(node.Literal, []byte("\n")) {
			io.WriteString(w, "\n")
		}
		io.WriteString(w, "{code}\n\n")

	case blackfriday.HTMLBlock:
		w.Write(node.Literal)
		io.WriteString(w, "\n\n")

	case blackfriday.Link:
		dest := string(node.Destination)
		if entering {
			if c := node.FirstChild; c != nil && c == node.LastChild && c.Type == blackfriday.Text && string(c.Literal) == dest {
				fmt.Fprintf(w, "[%s]", dest)
				return blackfriday.SkipChildren
			}
			io.WriteString(w, "[")
		} else {
			fmt.Fprintf(w, "|%s]", dest)
		}

	case blackfriday.Image:
		if entering {
			fmt.Fprintf(w, "!%s!", node.Destination)
		}
		return blackfriday.SkipChildren

	case blackfriday.List:
		if !entering && listDepth(node) == 1 {
			io.WriteString(w, "\n")
		}

	case blackfriday.Item:
		if entering {
			fmt.Fprintf(w, "%s ", itemPrefix(node))
		}

	case blackfriday.BlockQuote:
		if entering {
			io.WriteString(w, "{quote}\n")
		} else {
			io.WriteString(w, "{quote}\n\n")
		}

	case blackfriday.HorizontalRule:
		io.WriteString(w, "----\n\n")

	case blackfriday.Table:
		if !entering {
			io.WriteString(w, "\n")
		}
	case blackfriday.TableCell:
		if entering {
			if node.IsHeader {
				io.WriteString(w, "||")
			} else {
				io.WriteString(w, "|")
			}
		}
	case blackfriday.TableRow:
		if !entering {
			if node.Parent != nil && node.Parent.Type == blackfriday.TableHead {
				io.WriteString(w, "||\n")
			} else {
				io.WriteString(w, "|\n")
			}
		}
	}
	return blackfriday.GoToNext
}

func inItem(node *blackfriday.Node) bool {
	return node.Parent != nil && node.Parent.Type == blackfriday.Item
}

func listDepth(node *blackfriday.Node) int {
	depth := 0
	for n := node; n != nil; n = n.Parent {
		if n.Type == blackfriday.List {
			depth++
		}
	}
	return depth
}

// itemPrefix is one bullet per enclosing list, # for ordered and * for
// unordered ones, e.g. "*#" for an ordered list nested in a bullet list.
func itemPrefix(item *blackfriday.Node) string {
	var marks []byte
	for n := item.Parent; n != nil; n = n.Parent {
		if n.Type != blackfriday.List {
			continue
		}
		if n.ListFlags&blackfriday.ListTypeOrdered != 0 {
			marks = append(marks, '#')
		} else {
			marks = append(marks, '*')
		}
	}
	for i, j := 0, len(marks)-1; i < j; i, j = i+1, j-1 {
		marks[i], marks[j] = marks[j], marks[i]
	}
	return string(marks)
}
