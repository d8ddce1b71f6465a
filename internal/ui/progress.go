package ui

import (
	"strings"

	"github.com/simon020286/go-wizard/models"
)

const progressSeparator = " › "

// Progress renders the step labels as a single progress line. Steps before
// current are done, current is active or blocked, the rest are pending.
func Progress(labels []string, current int, status models.Status) string {
	parts := make([]string, len(labels))
	for i, label := range labels {
		switch {
		case i < current:
			parts[i] = SuccessStyle.Render("✓ " + label)
		case i == current && status == models.StatusBlocked:
			parts[i] = WarnStyle.Render("! " + label)
		case i == current:
			parts[i] = AccentStyle.Bold(true).Render("● " + label)
		default:
			parts[i] = MutedStyle.Render("○ " + label)
		}
	}
	return strings.Join(parts, MutedStyle.Render(progressSeparator))
}

// BlockedNotice renders the notice shown in place of a blocked step.
func BlockedNotice(label, notice string) string {
	return noticeStyle.Render(WarnStyle.Render(label) + "\n" + notice)
}
