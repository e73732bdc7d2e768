package cmd

import (
	"context"
	"fmt"
	"strings"

	"relay/internal/domain"
)

// IngestCmd routes one inbound message through the full pipeline
type IngestCmd struct {
	Channel string `help:"Source channel" required:"" enum:"email,sms,chat"`
	Client  string `help:"Client identifier" required:""`
	Project string `help:"Project identifier" required:""`
	User    string `help:"User identifier" required:""`

	Instruction string `help:"Edit instruction for the worker" default:""`
	Body        string `help:"Message body" default:""`

	// Email correlation fields
	MessageID  string   `help:"Email Message-ID header"`
	InReplyTo  string   `help:"Email In-Reply-To header"`
	References []string `help:"Email References header entries, oldest first"`

	// SMS correlation fields
	Conversation string `help:"SMS conversation id"`
	From         string `help:"SMS sender number"`
	To           string `help:"SMS recipient number"`
	SMSID        string `help:"SMS message id"`

	// Chat correlation fields
	Thread string `help:"Chat thread id"`
	ChatID string `help:"Chat message id"`
}

// Run executes the ingest command
func (i *IngestCmd) Run(cli *CLI) error {
	msg := domain.InboundMessage{
		Body:    i.Body,
		Channel: domain.Channel(i.Channel),
	}

	switch msg.Channel {
	case domain.ChannelEmail:
		msg.Email = domain.EmailFields{
			InReplyTo:  i.InReplyTo,
			MessageID:  i.MessageID,
			References: i.References,
		}
	case domain.ChannelSMS:
		msg.SMS = domain.SMSFields{
			ConversationID: i.Conversation,
			From:           i.From,
			MessageID:      i.SMSID,
			To:             i.To,
		}
	case domain.ChannelChat:
		msg.Chat = domain.ChatFields{
			MessageID: i.ChatID,
			ThreadID:  i.Thread,
		}
	}

	instruction := i.Instruction
	if instruction == "" {
		instruction = strings.TrimSpace(i.Body)
	}

	result, err := cli.Container.Router.Route(context.Background(), msg, i.Client, i.Project, i.User, instruction)
	if err != nil {
		return err
	}

	fmt.Printf("Session:   %s\n", result.SessionID)
	fmt.Printf("Thread:    %s\n", result.ThreadID)
	fmt.Printf("Branch:    %s\n", result.BranchName)
	fmt.Printf("Container: %s\n", result.ContainerID)
	fmt.Printf("Queue:     %s\n", result.InputQueue)
	fmt.Printf("Command:   %s\n", result.CommandID)
	return nil
}
