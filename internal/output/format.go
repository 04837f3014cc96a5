// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

// longIndent aligns description lines under the title column.
const longIndent = "           "

// FormatTask formats a task line.
// Format: "{N:>4}  [{x| }]  {TITLE}\n" (4-wide right-aligned number,
// completion checkbox, title).
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  [%s]  %s\n", num, checkbox(task.Completed), normalizeTitle(task.Title))
}

// FormatTaskLong formats a task line followed by its description,
// indented to the title column. Tasks without a description print as a
// single line.
func FormatTaskLong(w io.Writer, num int, task service.Task) {
	FormatTask(w, num, task)
	desc := strings.TrimRight(task.Description, "\r\n")
	if strings.TrimSpace(desc) == "" {
		return
	}
	for _, line := range strings.Split(desc, "\n") {
		fmt.Fprintf(w, "%s%s\n", longIndent, strings.TrimRight(line, "\r"))
	}
}

// FormatUser formats a user as "username <email>".
func FormatUser(w io.Writer, user service.User) {
	fmt.Fprintf(w, "%s <%s>\n", user.Username, user.Email)
}

func checkbox(completed bool) string {
	if completed {
		return "x"
	}
	return " "
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
