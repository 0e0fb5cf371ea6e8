package models

import "strings"

// Sender identifies who produced a message
type Sender int

const (
	// SenderUser marks text typed by the person taking the quiz
	SenderUser Sender = iota
	// SenderBot marks text returned by the /quiz endpoint
	SenderBot
)

// String returns the lowercase sender name ("user" or "bot")
func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderBot:
		return "bot"
	default:
		return "unknown"
	}
}

// Label returns the prefix shown before a message
func (s Sender) Label() string {
	if s == SenderBot {
		return "QuizBot:"
	}
	return "You:"
}

// Message is one turn of the conversation. Values are never mutated after creation.
type Message struct {
	Text   string
	Sender Sender
}

// UserMessage creates a user-tagged message
func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// BotMessage creates a bot-tagged message
func BotMessage(text string) Message {
	return Message{Text: text, Sender: SenderBot}
}

// Lines returns the display lines of the message.
// Bot text is split on newlines so enumerated quiz choices stay on their own
// line; user text is always a single block.
func (m Message) Lines() []string {
	if m.Sender != SenderBot {
		return []string{m.Text}
	}
	lines := strings.Split(m.Text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
