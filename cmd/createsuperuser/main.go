package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/service"
)

func main() {
	email := flag.String("email", "", "superuser email")
	name := flag.String("name", "", "superuser display name")
	flag.Parse()

	if err := run(*email, *name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(email, name string) error {
	if email == "" {
		return errors.New("-email is required")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	l, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	conn, err := db.NewGormClient(cfg, l)
	if err != nil {
		return err
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := service.NewUsers(conn, l, cfg).CreateSuperuser(ctx, email, password, name)
	if err != nil {
		return err
	}

	fmt.Printf("Superuser %s created.\n", user.Email)
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password must be entered on a terminal")
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Password (again): ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) < 5 {
		return "", errors.New("password must be at least 5 characters")
	}
	return string(first), nil
}
