// Package mqtt owns the broker session of the ingestion core.
//
// A Manager holds at most one paho session. On every (re)connect it
// subscribes to the three inbound device topics at QoS 1:
//
//	iot/plants/+/telemetry
//	iot/plants/+/status
//	iot/plants/+/watering/done
//
// Delivery is ordered, so the MessageHandler sees one message at a time.
// Outbound commands and retained configuration go to
// iot/plants/{mac}/command and iot/plants/{mac}/config.
package mqtt
