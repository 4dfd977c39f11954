// Package mqtt streams telemetry records to an MQTT broker as JSON.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	corelogger "github.com/jdhoffa/vpp-sim/core/logger"
	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// Config holds broker connection settings.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	QoS      byte   `json:"qos"`
}

const connectTimeout = 5 * time.Second

// Publisher pushes each record to vpp/<run_id>/telemetry. It satisfies
// the metrics.Sink contract: publishes are fire-and-forget, a slow
// broker never stalls the simulation loop.
type Publisher struct {
	client paho.Client
	topic  string
	qos    byte
	log    corelogger.Logger
}

func NewPublisher(cfg Config, runID string, log corelogger.Logger) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", cfg.Broker, err)
	}

	return &Publisher{
		client: client,
		topic:  fmt.Sprintf("vpp/%s/telemetry", runID),
		qos:    cfg.QoS,
		log:    log,
	}, nil
}

// Record publishes one telemetry record without waiting for the ack.
func (p *Publisher) Record(rec telemetry.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		p.log.Errorf("marshal telemetry for step %d: %v", rec.Timestep, err)
		return
	}
	token := p.client.Publish(p.topic, p.qos, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			p.log.Warnf("publish step %d: %v", rec.Timestep, err)
		}
	}()
}

func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
