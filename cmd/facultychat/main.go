// facultychat is a terminal client for Faculty Connect and Faculty Chat.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/app"
	"github.com/Freeeeeet/faculty_chat/internal/config"
	"github.com/Freeeeeet/faculty_chat/internal/facultychat"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `usage: facultychat [flags] <command> [args]

commands:
  me                          show your profile
  teachers                    list colleagues and your status with each
  invites                     list incoming and outgoing invitations
  connections                 list accepted connections
  invite <teacherId>          send an invitation
  accept <invitationId>       accept an incoming invitation
  reject <invitationId>       reject an incoming invitation
  history <teacherId>         print the conversation
  send <teacherId> [text]     send a message (--attach FILE for a file)
  chat <teacherId>            open an interactive conversation
  save <teacherId> <msgId>    save a message attachment (--out DIR)

flags:
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", facultychat.UserMessage(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("facultychat", pflag.ContinueOnError)
	flags.StringVar(&cfg.APIURL, "url", cfg.APIURL, "backend base URL")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "bearer token")
	flags.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "conversation polling interval")
	flags.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout while polling")
	attach := flags.String("attach", "", "file to attach (send)")
	outDir := flags.StringP("out", "o", ".", "directory for saved attachments (save)")
	verbose := flags.BoolP("verbose", "v", false, "log to stderr")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		return errors.New("command is required")
	}
	if cfg.Token == "" {
		return errors.New("token is required (FACULTY_TOKEN or --token)")
	}

	logger := zap.NewNop()
	if *verbose {
		logger = app.NewLogger("development")
	}
	defer logger.Sync()

	client, err := facultychat.NewClient(facultychat.ClientConfig{
		BaseURL: cfg.APIURL,
		Token:   cfg.Token,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &cli{backend: client, cfg: cfg, logger: logger}
	command, rest := args[0], args[1:]

	switch command {
	case "me":
		return cli.me(ctx)
	case "teachers":
		return cli.teachers(ctx)
	case "invites":
		return cli.invites(ctx)
	case "connections":
		return cli.connections(ctx)
	case "invite":
		return withArg(rest, "teacherId", func(id string) error { return cli.invite(ctx, id) })
	case "accept":
		return withArg(rest, "invitationId", func(id string) error { return cli.accept(ctx, id) })
	case "reject":
		return withArg(rest, "invitationId", func(id string) error { return cli.reject(ctx, id) })
	case "history":
		return withArg(rest, "teacherId", func(id string) error { return cli.history(ctx, id) })
	case "send":
		return withArg(rest, "teacherId", func(id string) error {
			return cli.send(ctx, id, strings.Join(rest[1:], " "), *attach)
		})
	case "chat":
		return withArg(rest, "teacherId", func(id string) error { return cli.chat(ctx, id) })
	case "save":
		if len(rest) < 2 {
			return errors.New("teacherId and messageId are required")
		}
		return cli.save(ctx, rest[0], rest[1], *outDir)
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func withArg(args []string, name string, fn func(string) error) error {
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("%s is required", name)
	}
	return fn(args[0])
}

// timeLabel is used for listing times that are not today.
func timeLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("02.01 15:04")
}
