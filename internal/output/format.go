// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

const (
	// EmptyList is printed when the server holds no tasks.
	EmptyList = "no tasks found"

	markDone = "[x]"
	markOpen = "[ ]"
)

// FormatTask formats a task line for the default list.
// Format: "{N:>4}  [x] {TITLE}\n" (4-wide right-aligned number, two spaces, mark, title)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, Mark(task.Completed), NormalizeTitle(task.Title))
}

// FormatTaskWithID is FormatTask with the server id appended in brackets.
func FormatTaskWithID(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s  (id %s)\n", num, Mark(task.Completed), NormalizeTitle(task.Title), task.ID)
}

// FormatTasks writes every task numbered from 1, or EmptyList when there are none.
func FormatTasks(w io.Writer, tasks []service.Task, withIDs bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, EmptyList)
		return
	}
	for i, task := range tasks {
		if withIDs {
			FormatTaskWithID(w, i+1, task)
		} else {
			FormatTask(w, i+1, task)
		}
	}
}

// Mark returns the completion checkbox for a task.
func Mark(completed bool) string {
	if completed {
		return markDone
	}
	return markOpen
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
