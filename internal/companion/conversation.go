package companion

import (
	"sort"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
)

// Conversation holds the state of one chat with the companion: the ordered
// message history sent to the model, a plain-text transcript mirror consumed
// only by the turn classifier, and the set of pages whose text has already
// been injected as context.
//
// A Conversation is a caller-held value created by Engine.Start and mutated
// only through the engine's append operations. Turns are strictly sequential;
// the engine does not synchronize concurrent appends.
type Conversation struct {
	id         uuid.UUID
	messages   []*ai.Message
	transcript strings.Builder
	seen       map[int]struct{}
}

func newConversation() *Conversation {
	return &Conversation{
		id:   uuid.New(),
		seen: make(map[int]struct{}),
	}
}

// ID returns the conversation's unique identifier.
func (c *Conversation) ID() uuid.UUID { return c.id }

// Len returns the number of messages, including the system message.
func (c *Conversation) Len() int { return len(c.messages) }

// Messages returns a copy of the message history in chronological order.
// The first message is always the single system message once any turn has
// been appended. Mutating the returned slice does not affect the conversation.
func (c *Conversation) Messages() []*ai.Message {
	out := make([]*ai.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Transcript returns the plain-text mirror of the conversation. It is a
// derived projection for classifier prompts, never sent as the chat payload.
func (c *Conversation) Transcript() string { return c.transcript.String() }

// SeenPages returns the pages already injected as context, in ascending order.
func (c *Conversation) SeenPages() []int {
	pages := make([]int, 0, len(c.seen))
	for p := range c.seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func (c *Conversation) hasSeen(page int) bool {
	_, ok := c.seen[page]
	return ok
}

func (c *Conversation) markSeen(pages []int) {
	if len(pages) == 0 {
		return
	}
	if c.seen == nil {
		c.seen = make(map[int]struct{})
	}
	for _, p := range pages {
		c.seen[p] = struct{}{}
	}
}

func (c *Conversation) append(msg *ai.Message) {
	c.messages = append(c.messages, msg)
}
