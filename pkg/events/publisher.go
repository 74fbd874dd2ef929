package events

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Publisher puts task events on the in-process watermill bus. Publishing is
// fire-and-forget from the dialogue engine's point of view: a failed publish
// never fails the user's turn.
type Publisher struct {
	pubSub *gochannel.GoChannel
}

func NewPublisher(pubSub *gochannel.GoChannel) *Publisher {
	return &Publisher{pubSub: pubSub}
}

func (p *Publisher) PublishTaskEvent(event TaskEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal task event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(TopicTaskEvents, msg)
}
