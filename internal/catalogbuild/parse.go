// Package catalogbuild turns a wiki spell table into a class catalog
// document. The first table on the page is read as rows of
// line | comma separated names | comma separated levels.
package catalogbuild

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/errors"
)

const (
	noChange       = "no change"
	missingValue   = "(missing)"
	unknownSuffix  = " (unknown)"
	maxHeadingLen  = 50
	maxPageBytes   = 16 << 20
	defaultTimeout = 30 * time.Second
)

// Result is a parsed catalog plus the rows that needed repair
type Result struct {
	Catalog *entities.ClassCatalog
	// Mismatched lists lines whose name and level counts differ
	Mismatched []string
}

// Fetch downloads the page at url and parses it
func Fetch(ctx context.Context, client *http.Client, url string) (*Result, error) {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid page url")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to fetch spell page")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Unavailablef("spell page returned status %d", resp.StatusCode).
			WithMeta("url", url)
	}

	return Parse(ctx, io.LimitReader(resp.Body, maxPageBytes), url)
}

// Parse reads the first table of the page. sourceURL names the class when
// no heading above the table does.
func Parse(ctx context.Context, r io.Reader, sourceURL string) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to parse html")
	}

	table, before := firstTable(doc)
	if table == nil {
		return nil, errors.NotFound("no table found on the page")
	}

	result := &Result{Catalog: &entities.ClassCatalog{Spells: []*entities.Spell{}}}
	rows := findAll(table, atom.Tr)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		cells := findAll(row, atom.Td, atom.Th)
		if len(cells) < 3 {
			continue
		}

		line := strippedText(cells[0])
		names := splitList(rawText(cells[1]))
		levels := splitList(rawText(cells[2]))

		if len(names) != len(levels) {
			slog.WarnContext(ctx, "spell line has mismatched names and levels",
				"line", line,
				"names", len(names),
				"levels", len(levels))
			result.Mismatched = append(result.Mismatched, line)
			for j := 0; j < max(len(names), len(levels)); j++ {
				name, level := missingValue, missingValue
				if j < len(names) {
					name = names[j]
				}
				if j < len(levels) {
					level = levels[j]
				}
				result.Catalog.Spells = append(result.Catalog.Spells, &entities.Spell{
					Name:  spellName(name, line) + unknownSuffix,
					Line:  line,
					Level: entities.SpellLevel(level),
				})
			}
			continue
		}

		for j, name := range names {
			result.Catalog.Spells = append(result.Catalog.Spells, &entities.Spell{
				Name:  spellName(name, line),
				Line:  line,
				Level: entities.SpellLevel(levels[j]),
			})
		}
	}

	sort.SliceStable(result.Catalog.Spells, func(a, b int) bool {
		return levelKey(result.Catalog.Spells[a].Level) < levelKey(result.Catalog.Spells[b].Level)
	})

	result.Catalog.Class = className(before, sourceURL)
	return result, nil
}

// spellName maps the "No change" marker to the line's own name
func spellName(name, line string) string {
	if strings.EqualFold(strings.TrimSpace(name), noChange) {
		return line
	}
	return name
}

// levelKey orders whole-number levels first; anything else sorts last
func levelKey(level entities.SpellLevel) int {
	n, err := strconv.Atoi(strings.TrimSpace(string(level)))
	if err != nil {
		return 9999
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// className picks the closest short heading-like element above the table,
// falling back to the page's file name
func className(before []*html.Node, sourceURL string) string {
	for i := len(before) - 1; i >= 0; i-- {
		text := strippedText(before[i])
		if text == "" || len([]rune(text)) >= maxHeadingLen {
			continue
		}
		if strings.Contains(text, "Spell") || strings.Contains(text, "Level") || strings.Contains(text, "Name") {
			continue
		}
		return text
	}

	base := path.Base(strings.TrimRight(sourceURL, "/"))
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return strings.ToLower(base)
}

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.B: true, atom.Strong: true, atom.P: true,
}

// firstTable returns the first table in document order and every
// heading-like element that starts before it
func firstTable(doc *html.Node) (*html.Node, []*html.Node) {
	var (
		table  *html.Node
		before []*html.Node
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if table != nil {
			return
		}
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Table {
				table = n
				return
			}
			if headingAtoms[n.DataAtom] {
				before = append(before, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return table, before
}

// findAll returns descendants of n with one of the given tags in document order
func findAll(n *html.Node, tags ...atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				for _, tag := range tags {
					if c.DataAtom == tag {
						out = append(out, c)
						break
					}
				}
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// strippedText joins the trimmed text fragments of n without separators
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(node.Data))
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// FileName is the catalog file name a source looks up for the class
func FileName(class string) string {
	return fmt.Sprintf("%s.json", strings.ToLower(strings.TrimSpace(class)))
}
