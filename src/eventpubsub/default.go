package eventpubsub

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
)

// Bus fans scan events out to async subscribers such as websocket streams
// and the Slack notifier.
type Bus struct {
	bus EventBus.Bus
}

func New() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Publish(topic string, event interface{}) {
	b.bus.Publish(topic, event)
}

func (b *Bus) Subscribe(topic string, callbackFn interface{}) error {
	if err := b.bus.SubscribeAsync(topic, callbackFn, false); err != nil {
		return fmt.Errorf("Subscribe: failed to subscribe to %s: %w", topic, err)
	}

	log.Debugf("Subscribed to topic %s", topic)
	return nil
}

func (b *Bus) Unsubscribe(topic string, callbackFn interface{}) error {
	if err := b.bus.Unsubscribe(topic, callbackFn); err != nil {
		return fmt.Errorf("Unsubscribe: failed to unsubscribe from %s: %w", topic, err)
	}

	return nil
}

// WaitAsync blocks until every async callback has returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}

var defaultBus *Bus

func Init() {
	defaultBus = New()
}

func Default() *Bus {
	return defaultBus
}

func Publish(topic string, event interface{}) {
	defaultBus.Publish(topic, event)
}

func Subscribe(topic string, callbackFn interface{}) error {
	return defaultBus.Subscribe(topic, callbackFn)
}
