package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	List(ctx context.Context) error
	Download(ctx context.Context, name, dest string) error
	Delete(ctx context.Context, name string) error
	report(ctx context.Context, cmd string, err error)
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF, on "exit" or "quit", or when ctx is cancelled. Command
// errors are handed to a.report and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sd (%s)> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: upload <path>, (l)ist, download <name> [dest], delete <name>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "upload":
			if !requireLogin(a) {
				continue
			}
			if len(args) != 1 {
				printlnFn("Usage: upload <path>")
				continue
			}
			cmdErr = a.Upload(ctx, args[0])

		case "l", "list":
			if !requireLogin(a) {
				continue
			}
			cmdErr = a.List(ctx)

		case "download":
			if !requireLogin(a) {
				continue
			}
			if len(args) < 1 || len(args) > 2 {
				printlnFn("Usage: download <name> [dest]")
				continue
			}
			dest := ""
			if len(args) == 2 {
				dest = args[1]
			}
			cmdErr = a.Download(ctx, args[0], dest)

		case "delete":
			if !requireLogin(a) {
				continue
			}
			if len(args) != 1 {
				printlnFn("Usage: delete <name>")
				continue
			}
			cmdErr = a.Delete(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			a.report(ctx, cmd, cmdErr)
		}
	}
}

func requireLogin(a execIface) bool {
	if a.isLoggedIn() {
		return true
	}
	printlnFn("Please log in first")
	return false
}
