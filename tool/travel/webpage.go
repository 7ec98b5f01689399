package travel

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"

	"github.com/hupe1980/tripgraph/tool"
)

// WebPageToolName is the name the model uses to read a page found by search.
const WebPageToolName = "extract_web_page"

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

// noiseTags never carry itinerary relevant content.
var noiseTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true, "header": true,
	"footer": true, "aside": true, "iframe": true, "form": true, "svg": true,
}

type webPageArgs struct {
	URL string `json:"url" description:"Absolute http(s) URL of the page to read"`
}

// Page is the extracted content of a web page.
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Markdown  string `json:"markdown"`
	Truncated bool   `json:"truncated,omitempty"`
}

// NewWebPageTool creates the extract_web_page tool. The page's main content
// is converted to GitHub flavored markdown and capped at opts.MaxPageChars.
func NewWebPageTool(opts Options) *tool.FunctionTool {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())

	return tool.NewTypedTool(
		WebPageToolName,
		"Read a web page (for example a search result) and return its main content as markdown.",
		func(tc *tool.Context, args webPageArgs) (any, error) {
			u, err := url.Parse(args.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, tool.NewToolError(WebPageToolName, fmt.Sprintf("invalid url %q", args.URL), tool.CodeValidation)
			}

			header := http.Header{}
			header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

			body, err := opts.Client.Do(tc.Context(), http.MethodGet, u.String(), header, nil)
			if err != nil {
				return nil, err
			}

			return ExtractPage(conv, u.String(), body, opts.MaxPageChars)
		},
	)
}

// ExtractPage converts raw HTML into a Page.
func ExtractPage(conv *md.Converter, pageURL string, body []byte, maxChars int) (*Page, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := &Page{URL: pageURL, Title: findTitle(doc)}

	removeNoise(doc)

	root := findFirst(doc, "main")
	if root == nil {
		root = findFirst(doc, "article")
	}
	if root == nil {
		root = findFirst(doc, "body")
	}
	if root == nil {
		root = doc
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	text, err := conv.ConvertString(buf.String())
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}

	text = strings.TrimSpace(excessiveLinesRe.ReplaceAllString(text, "\n\n"))

	if maxChars > 0 && len([]rune(text)) > maxChars {
		text = string([]rune(text)[:maxChars])
		page.Truncated = true
	}

	page.Markdown = text

	return page, nil
}

func findTitle(n *html.Node) string {
	t := findFirst(n, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(t.FirstChild.Data)
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func removeNoise(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && noiseTags[c.Data] {
			n.RemoveChild(c)
		} else {
			removeNoise(c)
		}
		c = next
	}
}
