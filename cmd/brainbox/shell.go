package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"brainbox/internal/domain"
	"brainbox/internal/usecase"
)

var (
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	thinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

var senderLabels = map[string]string{
	domain.SenderUser: userStyle.Render("you:"),
	domain.SenderBot:  botStyle.Render("brainbox:"),
}

type command int

const (
	cmdNone command = iota
	cmdClear
	cmdHistory
	cmdHelp
	cmdQuit
	cmdUnknown
)

// parseCommand recognises slash commands. Plain text yields cmdNone.
func parseCommand(input string) command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return cmdNone
	}
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/clear":
		return cmdClear
	case "/history":
		return cmdHistory
	case "/help", "/?":
		return cmdHelp
	case "/quit", "/exit", "/q":
		return cmdQuit
	default:
		return cmdUnknown
	}
}

const commandHelp = `Commands:
  /clear    start a new conversation
  /history  show the saved conversation
  /help     show this list
  /quit     leave brainbox`

type chatService interface {
	Send(ctx context.Context, in usecase.SendInput) (usecase.SendOutput, error)
	Clear(ctx context.Context) error
	Transcript() domain.Transcript
}

// shell renders one line of input at a time against a chat service.
type shell struct {
	chat chatService
	out  io.Writer
}

func newShell(chat chatService, out io.Writer) *shell {
	return &shell{chat: chat, out: out}
}

func (s *shell) banner() {
	fmt.Fprintln(s.out, botStyle.Render("Brainbox")+" "+infoStyle.Render("offline assistant. Type /help for commands."))
}

// handle processes one input line. It returns false when the session should end.
func (s *shell) handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}

	switch parseCommand(input) {
	case cmdQuit:
		return false
	case cmdHelp:
		fmt.Fprintln(s.out, infoStyle.Render(commandHelp))
	case cmdHistory:
		s.printHistory()
	case cmdClear:
		if err := s.chat.Clear(ctx); err != nil {
			s.printError(err)
			break
		}
		fmt.Fprintln(s.out, infoStyle.Render("Conversation cleared."))
	case cmdUnknown:
		fmt.Fprintln(s.out, errorStyle.Render("Unknown command: "+input)+" "+infoStyle.Render("(try /help)"))
	default:
		s.send(ctx, input)
	}
	return true
}

func (s *shell) send(ctx context.Context, text string) {
	fmt.Fprintln(s.out, thinkingStyle.Render("thinking..."))
	out, err := s.chat.Send(ctx, usecase.SendInput{Text: text})
	if err != nil {
		s.printError(err)
		return
	}
	s.printMessage(out.Reply)
	if !out.Persisted {
		fmt.Fprintln(s.out, infoStyle.Render("(not saved yet, will retry)"))
	}
}

func (s *shell) printHistory() {
	tr := s.chat.Transcript()
	if len(tr.Messages) == 0 {
		fmt.Fprintln(s.out, infoStyle.Render("No messages yet."))
		return
	}
	for _, m := range tr.Messages {
		fmt.Fprintf(s.out, "%s ", infoStyle.Render(m.Time().Local().Format("15:04")))
		s.printMessage(m)
	}
}

func (s *shell) printMessage(m domain.Message) {
	fmt.Fprintln(s.out, senderLabels[m.Sender()]+" "+m.Content)
}

func (s *shell) printError(err error) {
	msg := err.Error()
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		msg = strings.ReplaceAll(ucErr.Reason, "_", " ")
	}
	fmt.Fprintln(s.out, errorStyle.Render("[Error]")+" "+msg)
}
