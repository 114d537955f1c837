package stream

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/angular_computer/internal/angle"
)

// Mirror republishes every sent batch to a local MQTT topic so consoles
// and other LAN subscribers can observe the stream without touching the
// remote endpoint. Best-effort: a mirror failure never affects delivery.
type Mirror struct {
	client mqtt.Client
	topic  string
}

// NewMirror connects to the broker and returns a ready mirror.
func NewMirror(broker, clientID, topic string) (*Mirror, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mirror: MQTT connect %s: %w", broker, token.Error())
	}
	log.Printf("mirror: connected to MQTT broker at %s", broker)

	return &Mirror{client: client, topic: topic}, nil
}

// Publish mirrors one batch, sample by sample, as JSON arrays of degrees.
func (m *Mirror) Publish(batch []angle.Sample) {
	for _, s := range batch {
		payload, err := json.Marshal(s)
		if err != nil {
			log.Printf("mirror: marshal error: %v", err)
			continue
		}
		token := m.client.Publish(m.topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("mirror: publish error: %v", token.Error())
		}
	}
}

// Close disconnects from the broker.
func (m *Mirror) Close() {
	m.client.Disconnect(250)
}
