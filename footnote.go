package l10ncache

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/l10ncache/cache"
)

// FootnoteText summarizes the counters and the store in one line.
func FootnoteText(snap StatsSnapshot, info *cache.Info) string {
	var b strings.Builder

	fmt.Fprintf(&b, "l10ncache: %d hits, %d misses, %d failures (%.1f%% hit ratio)",
		snap.Hits, snap.Misses, snap.Failures, snap.HitRatio()*100)
	fmt.Fprintf(&b, "; readable memo %d/%d", snap.ReadableHits, snap.ReadableHits+snap.ReadableMisses)

	if snap.StoreErrors > 0 {
		fmt.Fprintf(&b, "; %d store errors", snap.StoreErrors)
	}

	switch {
	case info == nil:
		b.WriteString("; uncached")
	default:
		b.WriteString("; " + info.Endpoint)
		if info.Version != "" {
			b.WriteString(" v" + info.Version)
		}
		b.WriteString(", " + humanize.IBytes(info.MemoryUsed))
		if info.MemoryTotal > 0 {
			b.WriteString(" of " + humanize.IBytes(info.MemoryTotal))
		}
	}

	// "--" would end the comment early.
	return strings.ReplaceAll(b.String(), "--", "-")
}

// Footnote appends FootnoteText as an HTML comment at the end of the page
// body. Pages without a body element are returned unchanged.
func Footnote(page string, snap StatsSnapshot, info *cache.Info) string {
	if !strings.Contains(strings.ToLower(page), "<body") {
		return page
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return page
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return page
	}

	body.AppendNodes(&html.Node{
		Type: html.CommentNode,
		Data: " " + FootnoteText(snap, info) + " ",
	})

	out, err := doc.Html()
	if err != nil {
		return page
	}
	return out
}
