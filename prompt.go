package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"library-manager/library"
)

// readLine prints prompt and reads one trimmed line.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword masks input on a terminal and falls back to a plain line
// when stdin is piped.
func (a *app) readPassword(prompt string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.readLine(prompt)
	}
	fmt.Fprint(a.out, prompt)
	bytePassword, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(a.out) // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// login prompts for username's password.
func (a *app) login(username string) (*library.User, error) {
	if username == "" {
		var err error
		if username, err = a.readLine("Username: "); err != nil {
			return nil, err
		}
	}
	password, err := a.readPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return a.mgr.Login(username, password)
}

// requireAdmin prompts for the administrator credentials.
func (a *app) requireAdmin() error {
	if !a.cfg.AdminEnabled() {
		return errors.New("admin login is disabled: ADMIN_USER and ADMIN_PASS are not configured")
	}
	user, err := a.readLine("Admin username: ")
	if err != nil {
		return err
	}
	pass, err := a.readPassword("Admin password: ")
	if err != nil {
		return err
	}
	if !a.mgr.AdminLogin(user, pass) {
		return errors.New("invalid admin credentials")
	}
	return nil
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, s)
	}
	return id, nil
}
