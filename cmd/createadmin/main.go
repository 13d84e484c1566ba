// Command createadmin creates the admin account, or resets its password when
// it already exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"movexa_cms/internal/backend"
	"movexa_cms/internal/config"
	"movexa_cms/internal/service"
	"movexa_cms/internal/utils"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@movexa.com", "admin email")
	password := flag.String("password", "", "admin password (defaults to ADMIN_PASSWORD)")
	reset := flag.Bool("reset", true, "reset the password when the account exists")
	flag.Parse()

	if err := run(*username, *email, *password, *reset); err != nil {
		fmt.Fprintln(os.Stderr, "createadmin:", err)
		os.Exit(1)
	}
}

func run(username, email, password string, reset bool) error {
	cfg, _, err := config.Load()
	if err != nil {
		return err
	}
	if password == "" {
		password = cfg.Admin.Password
	}
	if password == "" {
		return fmt.Errorf("no password given, pass -password or set ADMIN_PASSWORD")
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	hasher, err := utils.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return err
	}
	auth := service.NewAuthService(store.Users, hasher, utils.NewJWTUtil(cfg.JWTSecret, cfg.TokenTTL()), log)

	status, err := auth.EnsureAdmin(ctx, username, email, password, reset)
	if err != nil {
		return err
	}
	switch status {
	case service.AdminCreated:
		fmt.Printf("admin %q created\n", username)
	case service.AdminReset:
		fmt.Printf("admin %q already existed, password reset\n", username)
	default:
		fmt.Printf("admin %q already exists, nothing changed\n", username)
	}
	return nil
}
