package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Search(ctx context.Context, query string) error
	Add(ctx context.Context, n string) error
	AddManual(ctx context.Context) error
	List(ctx context.Context) error
	Find(ctx context.Context, text string) error
	Show(ctx context.Context, ref string) error
	Edit(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
	Photo(ctx context.Context, ref, path string) error
	Sync(ctx context.Context) error
	Pull(ctx context.Context) error
	Login(ctx context.Context, userID string) error
	Token(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
}

const helpText = `Available commands:
  search <text>        search the online catalog
  add <n>              save result n of the last search
  addmanual            save a book by hand
  list                 list saved books
  find <text>          filter saved books by title or author
  show <book>          show one book
  edit <book>          edit title, author or year
  delete <book>        remove a book
  photo <book> <file>  attach a photo
  sync                 push unsynced books to the cloud
  pull                 merge the cloud copy into this device
  login [user]         start a session
  token                start a session from a token issued elsewhere
  logout               end the session
  status               show connectivity and session
  exit | quit          leave the program
<book> is a book id or part of its title.`

// runREPL starts a simple read–eval–print loop for the PocketLibrary CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The same reader serves the prompts that
// commands issue, so the loop never reads ahead of them. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pl %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		rest := strings.Join(args, " ")

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "search", "s":
			_ = a.Search(ctx, rest)

		case "add":
			if len(args) != 1 {
				printlnFn("Usage: add <n>")
				continue
			}
			_ = a.Add(ctx, args[0])

		case "addmanual":
			_ = a.AddManual(ctx)

		case "list", "l":
			_ = a.List(ctx)

		case "find", "f":
			_ = a.Find(ctx, rest)

		case "show", "edit", "delete":
			if rest == "" {
				printlnFn(fmt.Sprintf("Usage: %s <book>", cmd))
				continue
			}
			switch cmd {
			case "show":
				_ = a.Show(ctx, rest)
			case "edit":
				_ = a.Edit(ctx, rest)
			default:
				_ = a.Delete(ctx, rest)
			}

		case "photo":
			if len(args) < 2 {
				printlnFn("Usage: photo <book> <file>")
				continue
			}
			_ = a.Photo(ctx, strings.Join(args[:len(args)-1], " "), args[len(args)-1])

		case "sync":
			_ = a.Sync(ctx)

		case "pull":
			_ = a.Pull(ctx)

		case "login":
			_ = a.Login(ctx, rest)

		case "token":
			_ = a.Token(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
