package tracker

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComposeLabels(t *testing.T) {
	tests := []struct {
		name     string
		defaults []string
		extras   []string
		category string
		want     []string
	}{
		{
			name:     "defaults plus extras plus category",
			defaults: []string{"core"},
			extras:   []string{"x"},
			category: "bug_report",
			want:     []string{"core", "x", "bug_report"},
		},
		{
			name:     "category always appended without extras",
			defaults: []string{"core"},
			extras:   nil,
			category: "feature_request",
			want:     []string{"core", "feature_request"},
		},
		{
			name:     "duplicates collapse",
			defaults: []string{"core", "bug_report"},
			extras:   []string{"core"},
			category: "bug_report",
			want:     []string{"core", "bug_report"},
		},
		{
			name:     "empty strings dropped",
			defaults: []string{"", "core"},
			extras:   []string{""},
			category: "",
			want:     []string{"core"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeLabels(tt.defaults, tt.extras, tt.category)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestWorkItem_MarkdownBody_RevenueLine(t *testing.T) {
	rev := decimal.NewFromFloat(129.5)
	withRevenue := WorkItem{
		Title:       "Dark mode",
		Description: "Please add dark mode",
		Category:    "feature_request",
		Votes:       12,
		Revenue:     &rev,
		ProjectName: "Acme",
	}

	body := withRevenue.MarkdownBody()
	assert.Contains(t, body, "Please add dark mode")
	assert.Contains(t, body, "**Votes:** 12")
	assert.Contains(t, body, "$129.50/mo")
	assert.Contains(t, body, "**Project:** Acme")
	assert.Contains(t, body, "Synced from Hearback")

	withoutRevenue := withRevenue
	withoutRevenue.Revenue = nil
	body = withoutRevenue.MarkdownBody()
	assert.NotContains(t, body, "revenue")
	assert.NotContains(t, body, "$")
}

func TestWorkItem_PlainBody(t *testing.T) {
	item := WorkItem{Title: "T", Description: "D", Category: "bug_report", Votes: 3}
	body := item.PlainBody()
	assert.Contains(t, body, "Category: bug_report")
	assert.Contains(t, body, "Votes: 3")
	assert.False(t, strings.Contains(body, "**"), "plain body must not contain markdown")
}

func TestComment_CommentBody(t *testing.T) {
	admin := Comment{Body: "we are on it", IsAdmin: true}
	assert.True(t, strings.HasPrefix(admin.CommentBody(), "[Admin] we are on it"))

	user := Comment{Body: "any update?", IsAdmin: false}
	assert.True(t, strings.HasPrefix(user.CommentBody(), "[User] any update?"))
	assert.Contains(t, user.CommentBody(), "Synced from Hearback")
}

func TestLabelLine(t *testing.T) {
	assert.Equal(t, "", LabelLine(nil))
	assert.Equal(t, "Labels: core, x", LabelLine([]string{"core", "x"}))
}
