package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"library-manager/config"
	"library-manager/library"
	"library-manager/logger"
)

// app carries what every command needs once the root command has started.
type app struct {
	cfg     config.Config
	mgr     *library.LibraryManager
	in      *bufio.Reader
	stdin   io.Reader
	out     io.Writer
	logFile *os.File
}

// newRootCmd builds the command tree. The caller closes the returned app
// once Execute returns.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	var envFile string

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library management: books, borrowers and sign-in",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd, envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "path to the environment file")

	root.AddCommand(
		newSignUpCmd(a),
		newBooksCmd(a),
		newUsersCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newShellCmd(a),
	)
	return root, a
}

func (a *app) open(cmd *cobra.Command, envFile string) error {
	// help and shell completion never touch the database
	if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.stdin = cmd.InOrStdin()
	a.in = bufio.NewReader(a.stdin)
	a.out = cmd.OutOrStdout()

	var logOut io.Writer = cmd.ErrOrStderr()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		logOut = io.MultiWriter(logOut, f)
	}
	log := logger.New(logOut, cfg.LogLevel, cfg.LogFormat)

	mgr, err := library.NewLibraryManager(library.Options{
		DBPath:     cfg.DatabaseName,
		Pepper:     cfg.Pepper,
		BcryptCost: cfg.BcryptCost,
		AdminUser:  cfg.AdminUser,
		AdminPass:  cfg.AdminPass,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.mgr = mgr
	return nil
}

func (a *app) close() error {
	var err error
	if a.mgr != nil {
		err = a.mgr.Close()
		a.mgr = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
	return err
}
