package models

// Conversation is the ordered, append-only message history of one session.
// It is not safe for concurrent use; the TUI only touches it from Update.
type Conversation struct {
	messages []Message
}

// NewConversation returns an empty conversation
func NewConversation() *Conversation {
	return &Conversation{messages: []Message{}}
}

// Append adds a message at the end of the conversation
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.messages)
}

// At returns the message at position i
func (c *Conversation) At(i int) Message {
	return c.messages[i]
}

// Messages returns a copy of the history in display order
func (c *Conversation) Messages() []Message {
	if c == nil {
		return nil
	}
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Last returns the most recent message from sender
func (c *Conversation) Last(sender Sender) (Message, bool) {
	if c == nil {
		return Message{}, false
	}
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Sender == sender {
			return c.messages[i], true
		}
	}
	return Message{}, false
}
