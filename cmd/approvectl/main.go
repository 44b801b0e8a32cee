// approvectl is a small operator CLI for the member console: register and
// log in accounts, list them, and approve/reject/pend from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"
	"time"

	"member_console/internal/client/api"
	"member_console/internal/client/dashboard"
	"member_console/internal/client/session"
	"member_console/internal/common"
	"member_console/internal/domain/model"

	"golang.org/x/term"
)

const usage = `Usage: approvectl [-server URL] <command> [args]

Commands:
  register <email> <name>   register a new account (prompts for password)
  login <email>             log in (prompts for password)
  logout                    drop the stored session
  me                        show the logged-in account
  list [status]             list accounts, optionally filtered by status
  approve <account-id>      set status to approved
  reject <account-id>       set status to rejected
  pend <account-id>         set status to pending
  stats                     show per-status account counts
  health                    check server liveness
`

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "member console server URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*serverURL, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "approvectl: %v\n", err)
		os.Exit(1)
	}
}

func run(serverURL, command string, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statePath, err := session.DefaultPath()
	if err != nil {
		return fmt.Errorf("cannot resolve session path: %w", err)
	}
	sess, err := session.Open(session.NewStore(statePath))
	if err != nil {
		return fmt.Errorf("cannot open session: %w", err)
	}

	client := api.New(serverURL)
	if sess.Authenticated() {
		client.SetToken(sess.Token())
	}

	switch command {
	case "register":
		if len(args) != 2 {
			return errors.New("usage: register <email> <name>")
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		account, err := client.Register(ctx, args[0], password, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("registered %s (%s), awaiting approval\n", account.Email, account.ID)
		return nil

	case "login":
		if len(args) != 1 {
			return errors.New("usage: login <email>")
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		token, account, err := client.Login(ctx, args[0], password)
		if err != nil {
			var notApproved *common.NotApprovedError
			if errors.As(err, &notApproved) {
				return fmt.Errorf("account %s is %s, ask an administrator to approve it", notApproved.Email, notApproved.Status)
			}
			return err
		}
		if err := sess.Establish(token, account); err != nil {
			return fmt.Errorf("login succeeded but session could not be saved: %w", err)
		}
		fmt.Printf("logged in as %s (%s)\n", account.Email, account.Role)
		return nil

	case "logout":
		return sess.Drop()

	case "me":
		account, err := client.Me(ctx)
		if err != nil {
			return sessionError(sess, err)
		}
		printAccount(*account)
		return nil

	case "list":
		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		accounts, err := client.ListUsers(ctx, filter)
		if err != nil {
			return sessionError(sess, err)
		}
		for _, account := range accounts {
			printAccount(account)
		}
		return nil

	case "approve", "reject", "pend":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <account-id>", command)
		}
		status := map[string]string{
			"approve": model.StatusApproved,
			"reject":  model.StatusRejected,
			"pend":    model.StatusPending,
		}[command]

		controller := dashboard.NewController(client)
		if err := controller.Refresh(ctx); err != nil {
			return sessionError(sess, err)
		}
		if err := controller.UpdateStatus(ctx, args[0], status); err != nil {
			return sessionError(sess, err)
		}
		fmt.Printf("account %s is now %s\n", args[0], status)
		return nil

	case "stats":
		stats, err := client.Stats(ctx)
		if err != nil {
			return sessionError(sess, err)
		}
		fmt.Printf("total %d: %d pending, %d approved, %d rejected\n",
			stats.Total, stats.Pending, stats.Approved, stats.Rejected)
		return nil

	case "health":
		if err := client.Health(ctx); err != nil {
			return err
		}
		fmt.Println("OK")
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// sessionError drops the stored session when the server no longer accepts
// the token, so the next invocation starts clean.
func sessionError(sess *session.Session, err error) error {
	if sess.Invalidate(err) {
		return fmt.Errorf("session expired or rejected, log in again: %w", err)
	}
	return err
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("cannot read password: %w", err)
	}
	if len(password) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(password), nil
}

func printAccount(account model.Account) {
	changed := "-"
	if account.StatusChangedAt != nil {
		changed = account.StatusChangedAt.Format(time.RFC3339)
	}
	fmt.Printf("%s  %-28s %-10s %-9s changed=%s\n",
		account.ID, account.Email, account.Role, account.Status, changed)
}
