// admin manages schools and teachers in the PostgreSQL store and mints
// development bearer tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/app"
	"github.com/Freeeeeet/faculty_chat/internal/auth"
	"github.com/Freeeeeet/faculty_chat/internal/config"
	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/spf13/pflag"
)

const usage = `usage: admin <command> [flags]

commands:
  migrate       apply database migrations
  add-school    --name NAME
  add-teacher   --school ID --name NAME --email EMAIL [--subject S] [--telegram-chat-id N]
  token         --teacher ID [--ttl 720h]
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("command is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx := context.Background()
	command, rest := args[0], args[1:]

	switch command {
	case "token":
		return token(cfg, rest)
	case "migrate":
		return app.Migrate(ctx, cfg, logger)
	}

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	services := app.NewServices(stores, nil, logger)

	switch command {
	case "add-school":
		flags := pflag.NewFlagSet("add-school", pflag.ContinueOnError)
		name := flags.String("name", "", "school name")
		if err := flags.Parse(rest); err != nil {
			return err
		}

		school, err := services.Directory.AddSchool(ctx, *name)
		if err != nil {
			return err
		}
		fmt.Println(school.ID)
		return nil

	case "add-teacher":
		flags := pflag.NewFlagSet("add-teacher", pflag.ContinueOnError)
		schoolID := flags.String("school", "", "school id")
		name := flags.String("name", "", "full name")
		email := flags.String("email", "", "email")
		subject := flags.String("subject", "", "subject taught")
		chatID := flags.Int64("telegram-chat-id", 0, "telegram chat for invitation notifications")
		if err := flags.Parse(rest); err != nil {
			return err
		}

		teacher := &model.Teacher{
			SchoolID: *schoolID,
			FullName: *name,
			Email:    *email,
			Subject:  *subject,
		}
		if *chatID != 0 {
			teacher.TelegramChatID = chatID
		}

		if err := services.Directory.AddTeacher(ctx, teacher); err != nil {
			return err
		}
		fmt.Println(teacher.ID)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func token(cfg *config.Config, args []string) error {
	flags := pflag.NewFlagSet("token", pflag.ContinueOnError)
	teacherID := flags.String("teacher", "", "teacher id")
	ttl := flags.Duration("ttl", 30*24*time.Hour, "token lifetime")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *teacherID == "" {
		return errors.New("--teacher is required")
	}

	raw, err := auth.NewTokens(cfg.JWTSecret).Issue(*teacherID, "", *ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Println(raw)
	return nil
}
