package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/config"
	"github.com/Freeeeeet/faculty_chat/internal/facultychat"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type cli struct {
	backend facultychat.Backend
	cfg     *config.ClientConfig
	logger  *zap.Logger
}

// session loads the dashboard and an engine over it.
func (c *cli) session(ctx context.Context) (*facultychat.Dashboard, *facultychat.Engine, error) {
	dash, err := facultychat.LoadDashboard(ctx, c.backend)
	if err != nil {
		return nil, nil, err
	}
	for _, listErr := range []error{dash.RosterErr, dash.InvitesErr, dash.ConnectionsErr} {
		if listErr != nil {
			fmt.Fprintf(os.Stderr, "warning: %s\n", facultychat.UserMessage(listErr))
		}
	}
	engine := facultychat.NewEngineFromDashboard(c.backend, dash, c.logger)
	engine.SetRequestTimeout(c.cfg.RequestTimeout)
	return dash, engine, nil
}

func (c *cli) me(ctx context.Context) error {
	dir, err := facultychat.LoadDirectory(ctx, c.backend)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n%s\n", dir.Current.Name, dir.Current.Email, dir.School)
	if dir.Current.Subject != "" {
		fmt.Println(dir.Current.Subject)
	}
	return nil
}

func (c *cli) teachers(ctx context.Context) error {
	dash, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	peers := dash.Peers()
	if len(peers) == 0 {
		fmt.Println("No colleagues found.")
		return nil
	}

	for _, t := range peers {
		st := engine.Status(t.ID)
		line := fmt.Sprintf("%-36s  %-24s  %-12s  %s", t.ID, t.Name, st.Kind, t.Subject)
		if st.Kind == facultychat.StatusIncoming {
			line += "  (accept " + st.Invite.ID + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func (c *cli) invites(ctx context.Context) error {
	_, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	incoming, outgoing := engine.ListInvites()

	fmt.Println("Incoming:")
	if len(incoming) == 0 {
		fmt.Println("  none")
	}
	for _, inv := range incoming {
		fmt.Printf("  %s  from %s <%s>  %s\n", inv.ID, inv.SenderName, inv.SenderEmail, timeLabel(inv.CreatedAt))
	}

	fmt.Println("Outgoing:")
	if len(outgoing) == 0 {
		fmt.Println("  none")
	}
	for _, inv := range outgoing {
		fmt.Printf("  %s  to %s <%s>  %s\n", inv.ID, inv.RecipientName, inv.RecipientEmail, timeLabel(inv.CreatedAt))
	}
	return nil
}

func (c *cli) connections(ctx context.Context) error {
	_, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	conns := engine.ListConnections()
	if len(conns) == 0 {
		fmt.Println("No connections yet.")
		return nil
	}
	for _, conn := range conns {
		fmt.Printf("%-36s  %-24s  %s\n", conn.UserID, conn.Name, conn.Subject)
	}
	return nil
}

func (c *cli) invite(ctx context.Context, teacherID string) error {
	_, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	inv, err := engine.SendInvite(ctx, teacherID)
	if err != nil {
		return err
	}
	fmt.Printf("Invitation %s sent.\n", inv.ID)
	return nil
}

func (c *cli) accept(ctx context.Context, invitationID string) error {
	_, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	conn, err := engine.AcceptInvite(ctx, invitationID)
	if err != nil {
		return err
	}
	if conn != nil {
		fmt.Printf("Connected with %s.\n", conn.Name)
	}
	return nil
}

func (c *cli) reject(ctx context.Context, invitationID string) error {
	_, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	if err := engine.RejectInvite(ctx, invitationID); err != nil {
		return err
	}
	fmt.Println("Invitation rejected.")
	return nil
}

func (c *cli) history(ctx context.Context, peerID string) error {
	dash, engine, err := c.session(ctx)
	if err != nil {
		return err
	}
	if engine.Status(peerID).Kind != facultychat.StatusConnected {
		return facultychat.ErrNotConnected
	}

	messages, err := c.backend.Conversation(ctx, peerID, facultychat.ConversationLimit)
	if err != nil {
		return err
	}
	printMessages(facultychat.Render(messages, dash.Current, time.Local), peerName(dash, peerID))
	return nil
}

// save writes the attachment of one message into dir under its own name.
func (c *cli) save(ctx context.Context, peerID, messageID, dir string) error {
	_, engine, err := c.session(ctx)
	if err != nil {
		return err
	}
	if engine.Status(peerID).Kind != facultychat.StatusConnected {
		return facultychat.ErrNotConnected
	}

	messages, err := c.backend.Conversation(ctx, peerID, facultychat.ConversationLimit)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(messages, func(m facultychat.Message) bool { return m.ID == messageID })
	if idx < 0 || messages[idx].Attachment == nil {
		return fmt.Errorf("message %s has no attachment", messageID)
	}
	attachment := messages[idx].Attachment

	_, data, err := facultychat.DecodeDataURL(attachment.DataURL)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, filepath.Base(attachment.Name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save attachment: %w", err)
	}
	fmt.Printf("Saved %s (%s).\n", path, humanize.IBytes(uint64(len(data))))
	return nil
}

func (c *cli) send(ctx context.Context, peerID, text, attachPath string) error {
	_, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	var draft *facultychat.Draft
	if attachPath != "" {
		if draft, err = facultychat.DraftFromFile(attachPath); err != nil {
			return err
		}
	}

	chat := facultychat.NewChat(c.backend, engine, c.chatOptions(nil))
	defer chat.Close()

	if err := chat.SelectPeer(ctx, peerID); err != nil {
		return err
	}
	if err := chat.Send(ctx, text, draft); err != nil {
		return err
	}
	fmt.Println("Sent.")
	return nil
}

// chat opens an interactive conversation. Lines from stdin are sent;
// "/attach PATH" stages a file for the next line, "/quit" leaves.
func (c *cli) chat(ctx context.Context, peerID string) error {
	dash, engine, err := c.session(ctx)
	if err != nil {
		return err
	}

	name := peerName(dash, peerID)
	var printer messagePrinter

	var chat *facultychat.Chat
	chat = facultychat.NewChat(c.backend, engine, c.chatOptions(func() {
		if err := chat.SyncErr(); err != nil {
			fmt.Fprintf(os.Stderr, "sync: %s\n", facultychat.UserMessage(err))
			return
		}
		printer.print(facultychat.Render(chat.Messages(), dash.Current, time.Local), name)
	}))
	defer chat.Close()

	if err := chat.SelectPeer(ctx, peerID); err != nil {
		return err
	}
	fmt.Printf("Chat with %s. /attach PATH to add a file, /quit to leave.\n", name)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := c.handleLine(ctx, chat, line); done {
				return nil
			}
		}
	}
}

func (c *cli) handleLine(ctx context.Context, chat *facultychat.Chat, line string) bool {
	switch {
	case line == "/quit":
		return true
	case strings.HasPrefix(line, "/attach "):
		draft, err := facultychat.DraftFromFile(strings.TrimSpace(strings.TrimPrefix(line, "/attach ")))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", facultychat.UserMessage(err))
			return false
		}
		chat.SetDraft(draft)
		fmt.Printf("Attached %s (%s). It goes with the next message.\n", draft.Name, draft.SizeLabel())
		return false
	}

	if err := chat.Send(ctx, line, chat.Draft()); err != nil && !errors.Is(err, facultychat.ErrEmptyMessage) {
		fmt.Fprintf(os.Stderr, "%s\n", facultychat.UserMessage(err))
	}
	return false
}

func (c *cli) chatOptions(onUpdate func()) facultychat.ChatOptions {
	return facultychat.ChatOptions{
		PollInterval:   c.cfg.PollInterval,
		RequestTimeout: c.cfg.RequestTimeout,
		OnUpdate:       onUpdate,
		Logger:         c.logger,
	}
}

func peerName(dash *facultychat.Dashboard, peerID string) string {
	if t, ok := dash.Teacher(peerID); ok {
		return t.Name
	}
	return peerID
}

// messagePrinter prints only messages it has not printed yet.
type messagePrinter struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func (p *messagePrinter) print(views []facultychat.MessageView, peer string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen == nil {
		p.seen = make(map[string]struct{})
	}

	var fresh []facultychat.MessageView
	for _, v := range views {
		if _, ok := p.seen[v.ID]; ok {
			continue
		}
		p.seen[v.ID] = struct{}{}
		fresh = append(fresh, v)
	}
	printMessages(fresh, peer)
}

func printMessages(views []facultychat.MessageView, peer string) {
	for _, v := range views {
		who := peer
		if v.Mine {
			who = "you"
		}

		body := v.Text
		if v.Attachment != nil {
			label := fmt.Sprintf("[%s] %s", v.Attachment.Icon, v.Attachment.Name)
			if v.Attachment.Size != "" {
				label += " (" + v.Attachment.Size + ")"
			}
			label += " #" + v.ID
			if body != "" {
				body += " "
			}
			body += label
		}

		fmt.Printf("%s  %s: %s\n", v.Time, who, body)
	}
}
