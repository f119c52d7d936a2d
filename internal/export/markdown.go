package export

import (
	"fmt"
	"strings"
	"time"

	"devlogger/internal/domain"
)

const dateLayout = "January 2, 2006"

// ToMarkdown renders the given logs, in the order supplied, into a
// single markdown document. Pure function; an empty slice yields a
// well-formed document with just the header.
func ToMarkdown(title string, now time.Time, logs []domain.Log) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated on %s\n\n", now.Format(dateLayout))
	b.WriteString("---\n")

	for _, log := range logs {
		fmt.Fprintf(&b, "\n## %s\n\n", log.Title)
		fmt.Fprintf(&b, "**Created:** %s", log.CreatedAt.Format(dateLayout))
		if !log.UpdatedAt.Equal(log.CreatedAt) {
			fmt.Fprintf(&b, " | **Updated:** %s", log.UpdatedAt.Format(dateLayout))
		}
		b.WriteString("\n\n")
		b.WriteString(log.Content)
		b.WriteString("\n")
		if len(log.Tags) > 0 {
			fmt.Fprintf(&b, "\n**Tags:** %s\n", strings.Join(log.Tags, ", "))
		}
		b.WriteString("\n---\n")
	}

	return b.String()
}
