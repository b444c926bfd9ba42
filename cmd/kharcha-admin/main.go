// Command kharcha-admin manages household accounts and the database schema.
//
//	kharcha-admin adduser -username asha -name "Asha" [-password ...]
//	kharcha-admin migrate
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/cli"
	"kharcha/internal/config"
	"kharcha/internal/log"
	"kharcha/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "adduser":
		err = addUser(ctx, cfg, os.Args[2:], os.Stdin, os.Stdout)
	case "migrate":
		err = migrate(cfg, os.Stdout)
	case "-h", "--help", "help":
		usage(os.Stdout)
		return
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], log.FieldError, err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: kharcha-admin <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  adduser   create a household member")
	fmt.Fprintln(w, "  migrate   apply pending schema migrations")
}

func addUser(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	username := fs.String("username", "", "login name (required)")
	displayName := fs.String("name", "", "display name, defaults to username")
	password := fs.String("password", "", "password; read from stdin when empty")
	dbPath := fs.String("db", cfg.SQLiteDBPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*username) == "" {
		return fmt.Errorf("-username is required")
	}

	pw := *password
	if pw == "" {
		fmt.Fprint(stdout, "Password: ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}

	repo, err := storage.NewSQLiteRepository(*dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	// Register does not touch tokens.
	tokens, err := auth.NewTokens(strings.Repeat("x", 32), time.Minute)
	if err != nil {
		return err
	}
	user, err := auth.NewAuthenticator(repo, tokens, nil).Register(ctx, *username, *displayName, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created user %q (id %d)\n", user.Username, user.ID)
	return nil
}

func migrate(cfg *config.Config, stdout io.Writer) error {
	dsn := storage.DSN(cfg.SQLiteDBPath)
	if err := storage.RunMigrations(dsn); err != nil {
		return err
	}
	version, dirty, err := storage.SchemaVersion(dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "schema at version %d (dirty=%t)\n", version, dirty)
	return nil
}
