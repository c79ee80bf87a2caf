package tracker

import (
	"fmt"
	"strings"
)

// syncedFromFooter closes every mirrored body so tracker users can tell
// where the item originated.
const syncedFromFooter = "Synced from Hearback"

// ComposeLabels builds the tag set for a push: provider defaults, caller
// extras, and the item category, deduplicated with first-seen order.
// The category is always appended regardless of caller input.
func ComposeLabels(defaults, extras []string, category string) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0, len(defaults)+len(extras)+1)

	add := func(label string) {
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}

	for _, l := range defaults {
		add(l)
	}
	for _, l := range extras {
		add(l)
	}
	add(category)

	return labels
}

// FormatRevenue renders an aggregate monthly revenue figure for work item
// bodies, e.g. "$1234.50/mo".
func (w WorkItem) FormatRevenue() string {
	if w.Revenue == nil {
		return ""
	}
	return fmt.Sprintf("$%s/mo", w.Revenue.StringFixed(2))
}

// MarkdownBody renders the canonical work item description in Markdown
// for providers with Markdown-capable description fields. The revenue
// line is omitted entirely when no revenue data is present.
func (w WorkItem) MarkdownBody() string {
	var b strings.Builder

	if w.Description != "" {
		b.WriteString(w.Description)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("**Category:** %s\n", w.Category))
	b.WriteString(fmt.Sprintf("**Votes:** %d\n", w.Votes))
	if rev := w.FormatRevenue(); rev != "" {
		b.WriteString(fmt.Sprintf("**Subscriber revenue:** %s\n", rev))
	}
	if w.ProjectName != "" {
		b.WriteString(fmt.Sprintf("**Project:** %s\n", w.ProjectName))
	}

	b.WriteString("\n---\n")
	b.WriteString(syncedFromFooter)
	return b.String()
}

// PlainBody renders the canonical work item description as plain text for
// providers without Markdown support.
func (w WorkItem) PlainBody() string {
	var b strings.Builder

	if w.Description != "" {
		b.WriteString(w.Description)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Category: %s\n", w.Category))
	b.WriteString(fmt.Sprintf("Votes: %d\n", w.Votes))
	if rev := w.FormatRevenue(); rev != "" {
		b.WriteString(fmt.Sprintf("Subscriber revenue: %s\n", rev))
	}
	if w.ProjectName != "" {
		b.WriteString(fmt.Sprintf("Project: %s\n", w.ProjectName))
	}

	b.WriteString("\n")
	b.WriteString(syncedFromFooter)
	return b.String()
}

// CommentBody renders a mirrored comment with its author-role prefix and
// origin footer.
func (c Comment) CommentBody() string {
	prefix := "[User]"
	if c.IsAdmin {
		prefix = "[Admin]"
	}
	return fmt.Sprintf("%s %s\n\n%s", prefix, c.Body, syncedFromFooter)
}

// LabelLine folds a label set into a body line for providers without
// native label support on creation.
func LabelLine(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return "Labels: " + strings.Join(labels, ", ")
}
