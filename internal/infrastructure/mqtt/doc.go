// Package mqtt provides MQTT client connectivity for panel-core.
//
// It wraps the Eclipse Paho MQTT client with:
//   - Connection management and automatic reconnection
//   - Subscription tracking and restoration after reconnect
//   - Last Will and Testament for offline detection
//   - Panic recovery in message handlers
//   - Topic builders for the platform signal channels
//
// # Architecture
//
// MQTT is the message bus connecting panel-core to the rest of the
// platform. Platform services publish their state on retained topics;
// panel-core's signal monitors subscribe to exactly one topic each:
//
//	Platform services → MQTT Broker → panel-core monitors
//	Callers → panelcore/command/* → panel-core command handler
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	// Subscribe to boot progress changes
//	err = client.Subscribe(mqtt.Topics{}.BootProgress(), 1,
//	    func(topic string, payload []byte) error {
//	        // decode and apply
//	        return nil
//	    })
package mqtt
