package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/omarshaarawi/golfbot/internal/models"
	"github.com/omarshaarawi/golfbot/internal/standings"
)

// LatestSummary returns the summary with the highest week number.
func LatestSummary(summaries []models.Summary) (models.Summary, bool) {
	if len(summaries) == 0 {
		return models.Summary{}, false
	}
	latest := summaries[0]
	for _, sm := range summaries[1:] {
		if sm.Week > latest.Week {
			latest = sm
		}
	}
	return latest, true
}

// GetSummary posts the latest weekly news with that week's awards.
func (s *LeagueService) GetSummary(ctx context.Context) (string, error) {
	league, summaries, err := s.getLeague(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching summary: %w", err)
	}

	latest, ok := LatestSummary(summaries)
	if !ok {
		return "📰 No weekly summary has been posted yet.", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📰 *%s*\n\n", escape(latest.Title)))
	if text := summaryText(latest.Content); text != "" {
		sb.WriteString(escape(text))
		sb.WriteString("\n\n")
	}
	sb.WriteString(formatAwards(standings.Compute(league, latest.Week).Awards))
	return sb.String(), nil
}

// SaveSummary creates or replaces the summary for a 1-based week.
func (s *LeagueService) SaveSummary(ctx context.Context, week int, title, content string) error {
	sm := models.Summary{Week: week, Title: strings.TrimSpace(title), Content: strings.TrimSpace(content)}
	if err := sm.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeek, err)
	}

	league, summaries, err := s.getLeague(ctx)
	if err != nil {
		return err
	}

	next := slices.Clone(summaries)
	i := slices.IndexFunc(next, func(existing models.Summary) bool { return existing.Week == week })
	if i >= 0 {
		next[i] = sm
	} else {
		next = append(next, sm)
	}

	if err := s.store.SaveSummaries(ctx, next); err != nil {
		return fmt.Errorf("error saving summaries: %w", err)
	}
	s.repo.SaveLeague(league, next)
	slog.Info("Saved summary", "week", week, "title", sm.Title)
	return nil
}

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "tr": true,
}

var lineSpace = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")

// summaryText flattens the HTML the admin page stores into plain
// paragraphs for chat. Block elements start a new paragraph and <br>
// starts a new line.
func summaryText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return collapse(content)
	}

	var (
		paragraphs []string
		cur        strings.Builder
	)
	flush := func() {
		var lines []string
		for _, line := range strings.Split(cur.String(), "\n") {
			if line = collapse(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
		cur.Reset()
	}

	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, node *goquery.Selection) {
			switch name := goquery.NodeName(node); {
			case name == "#text":
				cur.WriteString(lineSpace.Replace(node.Text()))
			case name == "br":
				cur.WriteString("\n")
			case name == "script" || name == "style" || strings.HasPrefix(name, "#"):
			case blockTags[name]:
				flush()
				walk(node)
				flush()
			default:
				walk(node)
			}
		})
	}
	walk(doc.Find("body"))
	flush()

	return strings.Join(paragraphs, "\n\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
