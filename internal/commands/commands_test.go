package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"todo/internal/backend/todoapi"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/testutil"
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")
	svc.AddTask("t2", "Buy eggs")

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "   1  [ ]  Buy milk\n   2  [ ]  Buy eggs\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_CompletedCheckbox(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTaskDetail("t1", "Ship report", "", true)

	cmd := &commands.ListCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  [x]  Ship report\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ListCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_OpenKeepsNumbers(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")
	svc.AddTaskDetail("t2", "Ship report", "", true)
	svc.AddTask("t3", "Buy eggs")

	cmd := &commands.ListCmd{}
	cmd.SetOpen(true)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}

	// Hiding the completed task must not renumber the rest.
	expected := "   1  [ ]  Buy milk\n   3  [ ]  Buy eggs\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_OpenAllCompleted(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTaskDetail("t1", "Ship report", "", true)

	cmd := &commands.ListCmd{}
	cmd.SetOpen(true)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no open tasks\n" {
		t.Errorf("expected %q, got %q", "no open tasks\n", stdout)
	}
}

func TestListCommand_Long(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTaskDetail("t1", "Plan trip", "book flights\nreserve hotel", false)
	svc.AddTask("t2", "Buy milk")

	cmd := &commands.ListCmd{}
	cmd.SetLong(true)
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "list_long", stdout)
}

func TestListCommand_UnexpectedArg(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ListCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"extra"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unexpected argument: extra\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = errors.New("boom")

	cmd := &commands.ListCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: boom\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestListCommand_SessionExpired(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = todoapi.ErrSessionExpired

	cmd := &commands.ListCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: todo login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}

	tasks := svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "Buy milk" {
		t.Errorf("expected title %q, got %q", "Buy milk", tasks[0].Title)
	}
	if tasks[0].Completed {
		t.Error("new task should not be completed")
	}
}

func TestAddCommand_WithDescription(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	cmd.SetDescription("two liters")
	_, _, code := runCommand(t, cmd, svc, []string{"Buy milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].Description != "two liters" {
		t.Errorf("expected description to be stored, got %+v", tasks)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestAddCommand_BlankTitle(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"  ", " "}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.AddCmd{}
	stdout, _, code := runCommand(t, cmd, svc, []string{"Buy milk"}, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestCreateCommand(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.CreateCmd{}
	stdout, _, code := runCommand(t, cmd, svc, []string{"Buy milk"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}
	if len(svc.Tasks()) != 1 {
		t.Errorf("expected 1 task, got %d", len(svc.Tasks()))
	}
}

// Tests for done command
func TestDoneCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")
	svc.AddTask("t2", "Buy eggs")

	cmd := &commands.DoneCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"2"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}

	tasks := svc.Tasks()
	if tasks[0].Completed {
		t.Error("task 1 should be untouched")
	}
	if !tasks[1].Completed {
		t.Error("task 2 should be completed")
	}
}

func TestDoneCommand_TogglesBack(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTaskDetail("t1", "Buy milk", "", true)

	cmd := &commands.DoneCmd{}
	_, _, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if svc.Tasks()[0].Completed {
		t.Error("toggling a completed task should reopen it")
	}
}

func TestDoneCommand_MultipleOneSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")
	svc.AddTask("t2", "Buy eggs")
	svc.AddTask("t3", "Ship report")

	cmd := &commands.DoneCmd{}
	_, _, code := runCommand(t, cmd, svc, []string{"3", "1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}

	tasks := svc.Tasks()
	if !tasks[0].Completed || tasks[1].Completed || !tasks[2].Completed {
		t.Errorf("expected tasks 1 and 3 completed, got %+v", tasks)
	}
	if svc.ListCalls != 1 {
		t.Errorf("expected a single listing to resolve numbers, got %d", svc.ListCalls)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")

	cmd := &commands.DoneCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"5"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task number out of range: 5\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDoneCommand_InvalidNumber(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.DoneCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"abc"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid task number: abc\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDoneCommand_NoArgs(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.DoneCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task number required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestToggleCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")

	cmd := &commands.ToggleCmd{}
	_, _, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !svc.Tasks()[0].Completed {
		t.Error("task should be completed")
	}
}

// Tests for edit command
func TestEditCommand_Title(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTaskDetail("t1", "Buy milk", "two liters", false)

	cmd := &commands.EditCmd{}
	cmd.SetTitle("Buy oat milk")
	stdout, _, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}

	task := svc.Tasks()[0]
	if task.Title != "Buy oat milk" {
		t.Errorf("expected new title, got %q", task.Title)
	}
	if task.Description != "two liters" {
		t.Errorf("description should be untouched, got %q", task.Description)
	}
}

func TestEditCommand_ClearDescription(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTaskDetail("t1", "Buy milk", "two liters", false)

	cmd := &commands.EditCmd{}
	cmd.SetDescription("")
	_, _, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}

	task := svc.Tasks()[0]
	if task.Description != "" {
		t.Errorf("expected cleared description, got %q", task.Description)
	}
	if task.Title != "Buy milk" {
		t.Errorf("title should be untouched, got %q", task.Title)
	}
}

func TestEditCommand_NothingToUpdate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")

	cmd := &commands.EditCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: nothing to update\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestEditCommand_BlankTitle(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")

	cmd := &commands.EditCmd{}
	cmd.SetTitle("   ")
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestEditCommand_TwoNumbers(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")
	svc.AddTask("t2", "Buy eggs")

	cmd := &commands.EditCmd{}
	cmd.SetTitle("New")
	_, stderr, code := runCommand(t, cmd, svc, []string{"1", "2"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: edit takes exactly one task number\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")
	svc.AddTask("t2", "Buy eggs")
	svc.AddTask("t3", "Ship report")

	cmd := &commands.RmCmd{}
	stdout, _, code := runCommand(t, cmd, svc, []string{"2"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}

	tasks := svc.Tasks()
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t3" {
		t.Errorf("expected t1 and t3 to remain, got %+v", tasks)
	}
}

func TestRmCommand_MultipleOneSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk")
	svc.AddTask("t2", "Buy eggs")
	svc.AddTask("t3", "Ship report")

	cmd := &commands.RmCmd{}
	_, _, code := runCommand(t, cmd, svc, []string{"1", "3"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}

	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t2" {
		t.Errorf("expected only t2 to remain, got %+v", tasks)
	}
	if svc.ListCalls != 1 {
		t.Errorf("expected a single listing to resolve numbers, got %d", svc.ListCalls)
	}
}

func TestRmCommand_OutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.RmCmd{}
	_, stderr, code := runCommand(t, cmd, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task number out of range: 1\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}
