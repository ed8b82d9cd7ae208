package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Sites(ctx context.Context) error
	Drafts(ctx context.Context) error
	Resume(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Edit(ctx context.Context) error
	Attach(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Save(ctx context.Context) error
	Submit(ctx context.Context) error
	SyncAll(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the fieldsync CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - sites          — list assigned records
//	  - drafts         — list locally stored drafts
//	  - resume         — open a draft for editing
//	  - set            — write one field of the open draft
//	  - edit           — write several fields interactively
//	  - attach         — add a photo to the open draft
//	  - show           — print the open draft
//	  - save           — save the open draft (local + best-effort sync)
//	  - submit         — validate and finally submit the open draft
//	  - syncall        — sweep-sync every stored draft
//	  - logout         — log out
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("fs> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: sites, (d)rafts, resume, set, edit, attach, show, save, submit, syncall, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "sites":
			_ = a.Sites(ctx)

		case "d", "drafts":
			_ = a.Drafts(ctx)

		case "resume":
			_ = a.Resume(ctx, args)

		case "set":
			_ = a.Set(ctx, args)

		case "edit":
			_ = a.Edit(ctx)

		case "attach":
			_ = a.Attach(ctx, args)

		case "show":
			_ = a.Show(ctx)

		case "save":
			_ = a.Save(ctx)

		case "submit":
			_ = a.Submit(ctx)

		case "syncall":
			_ = a.SyncAll(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
