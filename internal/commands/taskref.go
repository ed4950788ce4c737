package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"todo/internal/controller"
	"todo/internal/service"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a 1-based task number as printed by the list command.
func ParseTaskRef(arg string) (int, error) {
	if !isAllDigits(arg) {
		return 0, fmt.Errorf("invalid task reference: %s", arg)
	}
	num, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", arg)
	}
	if num < 1 {
		return 0, fmt.Errorf("task number out of range: %d", num)
	}
	return num, nil
}

// ParseTaskRefs parses one or more task numbers. Repeated numbers are rejected.
func ParseTaskRefs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}

	nums := make([]int, 0, len(args))
	seen := make(map[int]bool, len(args))
	for _, arg := range args {
		num, err := ParseTaskRef(arg)
		if err != nil {
			return nil, err
		}
		if seen[num] {
			return nil, fmt.Errorf("duplicate task reference: %d", num)
		}
		seen[num] = true
		nums = append(nums, num)
	}
	return nums, nil
}

// SelectTasks maps task numbers onto one snapshot, so later mutations
// cannot shift which task a number refers to.
func SelectTasks(tasks []service.Task, nums []int) ([]service.Task, error) {
	selected := make([]service.Task, 0, len(nums))
	for _, num := range nums {
		if num < 1 || num > len(tasks) {
			return nil, fmt.Errorf("task number out of range: %d", num)
		}
		selected = append(selected, tasks[num-1])
	}
	return selected, nil
}

// findTaskByID returns the task with the given server id.
func findTaskByID(tasks []service.Task, id string) (service.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// targetError is a task selection failure caused by the user's input.
type targetError struct {
	err error
}

func (e *targetError) Error() string { return e.err.Error() }
func (e *targetError) Unwrap() error { return e.err }

// resolveTargets loads the list once and picks the tasks named by id or by number.
func resolveTargets(ctx context.Context, ctrl *controller.Controller, id string, args []string) ([]service.Task, error) {
	if id != "" && len(args) > 0 {
		return nil, &targetError{errors.New("cannot use both --id and task numbers")}
	}

	var nums []int
	if id == "" {
		var err error
		if nums, err = ParseTaskRefs(args); err != nil {
			return nil, &targetError{err}
		}
	}

	if err := ctrl.Initialize(ctx); err != nil {
		return nil, err
	}
	tasks := ctrl.Tasks()

	if id != "" {
		task, found := findTaskByID(tasks, id)
		if !found {
			return nil, &targetError{fmt.Errorf("task not found: %s", id)}
		}
		return []service.Task{task}, nil
	}

	selected, err := SelectTasks(tasks, nums)
	if err != nil {
		return nil, &targetError{err}
	}
	return selected, nil
}

// isAllDigits returns true if s consists only of digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
