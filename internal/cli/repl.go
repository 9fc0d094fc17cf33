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
	connected() bool
	ListEvents(ctx context.Context) error
	AddEvent(ctx context.Context) error
	DeleteEvent(ctx context.Context) error
	ListLists(ctx context.Context) error
	AddList(ctx context.Context) error
	ListWishlist(ctx context.Context, listID string) error
	AddWishlistItem(ctx context.Context) error
	ToggleWishlistItem(ctx context.Context) error
	DeleteWishlistItem(ctx context.Context) error
	Connect(ctx context.Context) error
	Sync(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the giftcal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//	help             show available commands
//	list | l         list calendar events
//	add              add a calendar event (interactive)
//	del              delete a calendar event (interactive)
//	lists            list wishlist collections
//	addlist          create a wishlist collection (interactive)
//	wish [listID]    show wishlist items, flat or scoped to a collection
//	addwish          add a wishlist item (interactive)
//	toggle           toggle a wishlist item between pending and purchased
//	delwish          delete a wishlist item (interactive)
//	connect          run the consent flow and connect to the remote backend
//	sync             pull the remote snapshot, replacing local data
//	disconnect       revoke access and go local-only
//	status           show backend and connection state
//	exit | quit      leave the program
//
// Any errors returned by command handlers are printed here; the loop itself
// never stops on a handler error.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("giftcal %s> ", statusFn()))
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

		var err error
		switch cmd {
		case "help":
			printlnFn("Data commands: (l)ist, add, del, lists, addlist, wish [listID], addwish, toggle, delwish")
			if a.connected() {
				printlnFn("Sync commands: sync, disconnect, status, exit")
			} else {
				printlnFn("Sync commands: connect, status, exit")
			}

		case "l", "list":
			err = a.ListEvents(ctx)

		case "add":
			err = a.AddEvent(ctx)

		case "del":
			err = a.DeleteEvent(ctx)

		case "lists":
			err = a.ListLists(ctx)

		case "addlist":
			err = a.AddList(ctx)

		case "wish":
			listID := ""
			if len(args) > 0 {
				listID = args[0]
			}
			err = a.ListWishlist(ctx, listID)

		case "addwish":
			err = a.AddWishlistItem(ctx)

		case "toggle":
			err = a.ToggleWishlistItem(ctx)

		case "delwish":
			err = a.DeleteWishlistItem(ctx)

		case "connect":
			err = a.Connect(ctx)

		case "sync":
			err = a.Sync(ctx)

		case "disconnect":
			err = a.Disconnect(ctx)

		case "status":
			err = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
