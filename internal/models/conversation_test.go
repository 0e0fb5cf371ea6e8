package models

import "testing"

func TestConversation_AppendKeepsOrder(t *testing.T) {
	c := NewConversation()
	if c.Len() != 0 {
		t.Fatalf("new conversation Len() = %d, want 0", c.Len())
	}

	c.Append(UserMessage("Go"))
	c.Append(BotMessage("Question 1: ..."))
	c.Append(UserMessage("2"))

	want := []Message{
		{Text: "Go", Sender: SenderUser},
		{Text: "Question 1: ...", Sender: SenderBot},
		{Text: "2", Sender: SenderUser},
	}
	got := c.Messages()
	if len(got) != len(want) {
		t.Fatalf("Messages() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Messages()[%d] = %+v, want %+v", i, got[i], want[i])
		}
		if c.At(i) != want[i] {
			t.Errorf("At(%d) = %+v, want %+v", i, c.At(i), want[i])
		}
	}
}

func TestConversation_DuplicatesAreKept(t *testing.T) {
	c := NewConversation()
	c.Append(UserMessage("1"))
	c.Append(UserMessage("1"))
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestConversation_MessagesReturnsCopy(t *testing.T) {
	c := NewConversation()
	c.Append(UserMessage("Go"))

	msgs := c.Messages()
	msgs[0].Text = "changed"

	if c.At(0).Text != "Go" {
		t.Errorf("conversation was mutated through Messages(): %q", c.At(0).Text)
	}
}

func TestConversation_Last(t *testing.T) {
	c := NewConversation()
	if _, ok := c.Last(SenderBot); ok {
		t.Error("Last() on empty conversation should report false")
	}

	c.Append(BotMessage("first"))
	c.Append(UserMessage("answer"))
	c.Append(BotMessage("second"))
	c.Append(UserMessage("again"))

	msg, ok := c.Last(SenderBot)
	if !ok || msg.Text != "second" {
		t.Errorf("Last(SenderBot) = %+v, %v; want second", msg, ok)
	}
	msg, ok = c.Last(SenderUser)
	if !ok || msg.Text != "again" {
		t.Errorf("Last(SenderUser) = %+v, %v; want again", msg, ok)
	}
}

func TestConversation_NilSafe(t *testing.T) {
	var c *Conversation
	if c.Len() != 0 {
		t.Error("nil Len() should be 0")
	}
	if c.Messages() != nil {
		t.Error("nil Messages() should be nil")
	}
	if _, ok := c.Last(SenderUser); ok {
		t.Error("nil Last() should report false")
	}
}
