package markdown

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Rule is a single named rewrite step. Apply must be a pure function.
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules returns the default rewrite rules in the order they must run.
// Each rule assumes the rules before it have already run.
func Rules() []Rule {
	return []Rule{
		// Removes script, style, iframe, noscript, svg, template, tables,
		// forms and comments together with their content.
		{Name: "stripNonContent", Apply: stripNonContent},
		// Removes page chrome: header, footer, nav and aside.
		{Name: "stripChrome", Apply: stripChrome},
		// Removes images and media embeds. Runs before headings so an
		// image-only heading collapses to nothing.
		{Name: "stripMedia", Apply: stripMedia},
		{Name: "headings", Apply: headings},
		// Needs paragraph tags still present to split quoted lines.
		{Name: "blockquotes", Apply: blockquotes},
		{Name: "lists", Apply: lists},
		{Name: "codeBlocks", Apply: codeBlocks},
		// Runs after lists and quotes have consumed their own paragraphs.
		{Name: "blocks", Apply: blocks},
		{Name: "lineBreaks", Apply: lineBreaks},
		{Name: "emphasis", Apply: emphasis},
		// Runs after emphasis so bold link text keeps its markers.
		{Name: "links", Apply: links},
		{Name: "inlineCode", Apply: inlineCode},
		// Markdown autolinks look like tags and would be stripped.
		{Name: "autolinks", Apply: autolinks},
		{Name: "stripTags", Apply: stripTags},
		// Decoding can reveal markup ("&lt;b&gt;"), which is stripped again.
		{Name: "decodeEntities", Apply: decodeEntities},
		{Name: "tidy", Apply: tidy},
	}
}

var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?(?:-->|$)`)
	tagRe     = regexp.MustCompile(`</?[A-Za-z!?][^<>]*>`)

	nonContentRes = elementRes("script", "style", "iframe", "noscript", "svg", "template", "head",
		"table", "form", "button", "select", "textarea", "object")
	nonContentVoidRe = regexp.MustCompile(`(?i)<(?:input|meta|link|base)\b[^<>]*>`)

	chromeRes = elementRes("header", "footer", "nav", "aside")

	mediaRes    = elementRes("figure", "picture", "video", "audio", "canvas", "map")
	mediaVoidRe = regexp.MustCompile(`(?i)<(?:img|embed|source|track|area|param)\b[^<>]*>`)

	headingRe = regexp.MustCompile(`(?is)<h([1-6])\b[^<>]*>(.*?)</h[1-6]\s*>`)

	blockquoteRe = regexp.MustCompile(`(?is)<blockquote\b[^<>]*>(.*?)</blockquote\s*>`)
	innerBlockRe = regexp.MustCompile(`(?i)</?(?:p|div|section|article|main|br)\b[^<>]*>`)

	listOpenRe      = regexp.MustCompile(`(?i)<(ul|ol)\b[^<>]*>`)
	listCloseRe     = regexp.MustCompile(`(?i)</(?:ul|ol)\s*>`)
	listItemRe      = regexp.MustCompile(`(?i)<li\b[^<>]*>`)
	listItemCloseRe = regexp.MustCompile(`(?i)</li\s*>`)
	listLineRe      = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s`)

	preRe = regexp.MustCompile(`(?is)<pre\b[^<>]*>(.*?)</pre\s*>`)

	blockRe = regexp.MustCompile(`(?i)</?(?:p|div|section|article|main|hr|dl|dt|dd|figcaption|address|details|summary|center|li|h[1-6])\b[^<>]*>`)
	brRe    = regexp.MustCompile(`(?i)<br\b[^<>]*>`)

	strongRe = regexp.MustCompile(`(?is)<(?:strong|b)\b[^<>]*>(.*?)</(?:strong|b)\s*>`)
	emRe     = regexp.MustCompile(`(?is)<(?:em|i)\b[^<>]*>(.*?)</(?:em|i)\s*>`)

	anchorRe = regexp.MustCompile(`(?is)<a\b([^<>]*)>(.*?)</a\s*>`)
	hrefRe   = regexp.MustCompile(`(?i)\bhref\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'<>]+))`)

	autolinkRe = regexp.MustCompile(`(?i)<((?:https?|ftp)://[^\s<>]+|mailto:[^\s<>]+)>`)

	codeRe = regexp.MustCompile(`(?is)<code\b[^<>]*>(.*?)</code\s*>`)

	spaceRe      = regexp.MustCompile(`[ \t\f\v]+`)
	anySpaceRe   = regexp.MustCompile(`\s+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	bareMarkerRe = regexp.MustCompile(`^(?:[-*+]|\d+\.|#{1,6}|>)$`)
	emptyLinkRe  = regexp.MustCompile(`\[\s*\]\([^()]*\)`)
)

// elementRes returns one expression per element name matching the element
// and its content. RE2 has no backreferences, hence one per name.
func elementRes(names ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(names))
	for _, name := range names {
		res = append(res, regexp.MustCompile(`(?is)<`+name+`\b[^<>]*>.*?</`+name+`\s*>`))
	}
	return res
}

func removeAll(s string, res []*regexp.Regexp) string {
	for _, re := range res {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

func stripNonContent(s string) string {
	s = commentRe.ReplaceAllString(s, "")
	s = removeAll(s, nonContentRes)
	return nonContentVoidRe.ReplaceAllString(s, "")
}

func stripChrome(s string) string {
	return removeAll(s, chromeRes)
}

func stripMedia(s string) string {
	s = removeAll(s, mediaRes)
	return mediaVoidRe.ReplaceAllString(s, "")
}

// headings converts h1-h6 to ATX headings on a single line.
// Precondition: media removed, so image-only headings are empty.
func headings(s string) string {
	return headingRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := headingRe.FindStringSubmatch(m)
		level, _ := strconv.Atoi(sub[1])
		text := collapse(sub[2])
		if collapse(tagRe.ReplaceAllString(text, "")) == "" {
			return "\n\n"
		}
		return "\n\n" + strings.Repeat("#", level) + " " + text + "\n\n"
	})
}

// blockquotes prefixes every line of a quote with "> ".
func blockquotes(s string) string {
	return blockquoteRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := blockquoteRe.FindStringSubmatch(m)[1]
		inner = innerBlockRe.ReplaceAllString(inner, "\n")
		var quoted []string
		for _, line := range strings.Split(inner, "\n") {
			line = collapse(line)
			if line == "" {
				continue
			}
			quoted = append(quoted, "> "+line)
		}
		if len(quoted) == 0 {
			return "\n\n"
		}
		return "\n\n" + strings.Join(quoted, "\n") + "\n\n"
	})
}

// lists flattens ul/ol into "- " and "N. " lines. The innermost list is
// converted first, so nested items end up as sibling lines.
func lists(s string) string {
	for {
		opens := listOpenRe.FindAllStringSubmatchIndex(s, -1)
		if opens == nil {
			return s
		}
		last := opens[len(opens)-1]
		ordered := strings.EqualFold(s[last[2]:last[3]], "ol")
		body, tail := s[last[1]:], ""
		if loc := listCloseRe.FindStringIndex(body); loc != nil {
			body, tail = body[:loc[0]], body[loc[1]:]
		}
		s = s[:last[0]] + "\n\n" + listItems(body, ordered) + "\n\n" + tail
	}
}

func listItems(body string, ordered bool) string {
	parts := listItemRe.Split(body, -1)
	var lines []string
	if lead := collapse(innerBlockRe.ReplaceAllString(parts[0], " ")); lead != "" {
		lines = append(lines, lead)
	}
	n := 0
	for _, part := range parts[1:] {
		part = listItemCloseRe.ReplaceAllString(part, "")
		part = innerBlockRe.ReplaceAllString(part, "\n")
		var item []string
		for _, line := range strings.Split(part, "\n") {
			if line = collapse(line); line != "" {
				item = append(item, line)
			}
		}
		if len(item) == 0 {
			continue
		}
		n++
		if !listLineRe.MatchString(item[0]) {
			marker := "- "
			if ordered {
				marker = strconv.Itoa(n) + ". "
			}
			item[0] = marker + item[0]
		}
		lines = append(lines, item...)
	}
	return strings.Join(lines, "\n")
}

// codeBlocks turns pre elements into fenced code blocks.
func codeBlocks(s string) string {
	return preRe.ReplaceAllStringFunc(s, func(m string) string {
		code := preRe.FindStringSubmatch(m)[1]
		code = brRe.ReplaceAllString(code, "\n")
		code = tagRe.ReplaceAllString(code, "")
		code = strings.Trim(code, "\r\n")
		if strings.TrimSpace(code) == "" {
			return "\n\n"
		}
		return "\n\n```\n" + code + "\n```\n\n"
	})
}

// blocks turns remaining block-level tags into paragraph breaks.
func blocks(s string) string {
	return blockRe.ReplaceAllString(s, "\n\n")
}

func lineBreaks(s string) string {
	return brRe.ReplaceAllString(s, "\n")
}

// emphasis converts strong/b to **x** and em/i to *x*, keeping surrounding
// whitespace outside the markers.
func emphasis(s string) string {
	s = wrapInline(s, strongRe, "**")
	return wrapInline(s, emRe, "*")
}

func wrapInline(s string, re *regexp.Regexp, marker string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		inner := re.FindStringSubmatch(m)[1]
		text := collapse(inner)
		if text == "" {
			if inner != "" {
				return " "
			}
			return ""
		}
		lead, trail := "", ""
		if strings.TrimLeft(inner, " \t\r\n") != inner {
			lead = " "
		}
		if strings.TrimRight(inner, " \t\r\n") != inner {
			trail = " "
		}
		return lead + marker + text + marker + trail
	})
}

// links converts anchors to [text](href). Anchors without a usable href
// keep their text only.
func links(s string) string {
	return anchorRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := anchorRe.FindStringSubmatch(m)
		text := collapse(tagRe.ReplaceAllString(sub[2], ""))
		if text == "" {
			return ""
		}
		href := ""
		if h := hrefRe.FindStringSubmatch(sub[1]); h != nil {
			href = strings.TrimSpace(h[1] + h[2] + h[3])
		}
		lower := strings.ToLower(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(lower, "javascript:") {
			return text
		}
		return "[" + text + "](" + escapeHref(href) + ")"
	})
}

var hrefEscaper = strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29")

func escapeHref(href string) string {
	return hrefEscaper.Replace(href)
}

// autolinks rewrites <https://example.com> as [https://example.com](https://example.com).
func autolinks(s string) string {
	return autolinkRe.ReplaceAllStringFunc(s, func(m string) string {
		href := autolinkRe.FindStringSubmatch(m)[1]
		return "[" + href + "](" + escapeHref(href) + ")"
	})
}

func inlineCode(s string) string {
	return codeRe.ReplaceAllStringFunc(s, func(m string) string {
		code := collapse(tagRe.ReplaceAllString(codeRe.FindStringSubmatch(m)[1], ""))
		if code == "" {
			return ""
		}
		return "`" + code + "`"
	})
}

// stripTags removes tags until none are left. Removing one tag can join
// its neighbours into another ("<<b>b>"). Every change shortens s, so the
// loop ends.
func stripTags(s string) string {
	for {
		next := commentRe.ReplaceAllString(s, "")
		next = tagRe.ReplaceAllString(next, "")
		if next == s {
			return s
		}
		s = next
	}
}

// decodeEntities decodes named and numeric entities until none are left.
// Non-breaking spaces become plain spaces. Every change drops an ampersand
// or shortens s, so the loop ends.
func decodeEntities(s string) string {
	for {
		next := html.UnescapeString(s)
		next = strings.ReplaceAll(next, "\u00a0", " ")
		next = stripTags(next)
		if next == s {
			return s
		}
		s = next
	}
}

// tidy drops empty links and bare list or heading markers,
// then normalizes whitespace.
func tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = dropEmptyLinks(s)

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
		if bareMarkerRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	s = strings.Join(kept, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// dropEmptyLinks removes "[](href)". Removing one can join its neighbours
// into a tag or an entity, which are cleaned up again.
func dropEmptyLinks(s string) string {
	for {
		next := decodeEntities(emptyLinkRe.ReplaceAllString(s, ""))
		if next == s {
			return s
		}
		s = next
	}
}

func collapse(s string) string {
	return strings.TrimSpace(anySpaceRe.ReplaceAllString(s, " "))
}
