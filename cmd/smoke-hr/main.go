// smoke-hr exercises a running worklane-api end to end: signs in, lets
// the session authority resolve roles, checks capability gates and runs
// a task board session.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"worklane.org/internal/authority"
	"worklane.org/internal/taskboard"
)

func main() {
	baseURL := os.Getenv("WORKLANE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	email := os.Getenv("WORKLANE_SMOKE_EMAIL")
	password := os.Getenv("WORKLANE_SMOKE_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("set WORKLANE_SMOKE_EMAIL and WORKLANE_SMOKE_PASSWORD")
	}

	gw, err := authority.NewHTTPGateway(baseURL)
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auth := authority.New(gw)
	auth.Initialize(ctx)
	go auth.Run(ctx)

	opCtx, opCancel := context.WithTimeout(ctx, 10*time.Second)
	defer opCancel()

	session, err := gw.SignIn(opCtx, email, password)
	if err != nil {
		log.Fatalf("sign in %s: %v", email, err)
	}

	// Role resolution is asynchronous; poll until it lands.
	deadline := time.Now().Add(5 * time.Second)
	for !auth.Ready() {
		if time.Now().After(deadline) {
			log.Fatal("role resolution did not complete")
		}
		time.Sleep(50 * time.Millisecond)
	}

	roles := auth.Roles()
	if !auth.IsEmployee() {
		log.Fatalf("expected employee-level access, roles=%v", roles)
	}

	board := taskboard.NewBoard()
	first, err := board.Add(taskboard.Draft{
		Name: "Review leave request", Assignee: session.Identity.Email,
		Type: taskboard.TypeLeave, Priority: taskboard.PriorityHigh,
	})
	if err != nil {
		log.Fatalf("add task: %v", err)
	}
	if _, err := board.Add(taskboard.Draft{
		Name: "Update employee record", Assignee: session.Identity.Email,
		Type: taskboard.TypeEmployeeInfo,
	}); err != nil {
		log.Fatalf("add task: %v", err)
	}

	if _, ok := board.Toggle(first.ID); !ok {
		log.Fatal("toggle lost the task")
	}
	closed := board.Filtered(taskboard.Filter{Type: taskboard.TypeLeave, Tab: taskboard.TabClosed})
	if len(closed) != 1 {
		log.Fatalf("expected 1 closed leave task, got %d", len(closed))
	}
	pending := board.Filtered(taskboard.Filter{Tab: taskboard.TabActive})
	if len(pending) != 1 {
		log.Fatalf("expected 1 pending task, got %d", len(pending))
	}

	auth.SignOut(opCtx)
	if auth.Session() != nil {
		log.Fatal("session survived sign-out")
	}

	fmt.Printf("smoke test passed: user=%s roles=%v\n", session.Identity.Email, roles)
}
