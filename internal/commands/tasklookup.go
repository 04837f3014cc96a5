package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"todo/internal/service"
)

// ErrTaskNumberRequired is returned when no task number was given.
var ErrTaskNumberRequired = errors.New("task number required")

// parseTaskNumbers parses one or more 1-based task numbers, dropping
// duplicates while keeping the given order.
func parseTaskNumbers(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, ErrTaskNumberRequired
	}

	nums := make([]int, 0, len(args))
	seen := make(map[int]bool)
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid task number: %s", a)
		}
		if !seen[n] {
			seen[n] = true
			nums = append(nums, n)
		}
	}
	return nums, nil
}

// resolveTasks maps task numbers to tasks using a single listing, so
// every number refers to the same snapshot the user last saw. Numbers
// past the end of the list are out of range.
func resolveTasks(ctx context.Context, svc service.Service, nums []int) ([]service.Task, error) {
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	picked := make([]service.Task, 0, len(nums))
	for _, n := range nums {
		if n > len(tasks) {
			return nil, fmt.Errorf("task number out of range: %d", n)
		}
		picked = append(picked, tasks[n-1])
	}
	return picked, nil
}
