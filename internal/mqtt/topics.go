package mqtt

import (
	"fmt"
	"strings"
)

const (
	Namespace = "iot"
	Category  = "plants"

	// SubscribeQoS is used for all inbound device topics.
	SubscribeQoS byte = 1
)

// Action is the closed set of inbound message kinds.
type Action int

const (
	ActionUnknown Action = iota
	ActionTelemetry
	ActionStatus
	ActionWateringDone
)

func (a Action) String() string {
	switch a {
	case ActionTelemetry:
		return "telemetry"
	case ActionStatus:
		return "status"
	case ActionWateringDone:
		return "watering/done"
	default:
		return "unknown"
	}
}

func actionFromSuffix(s string) Action {
	switch s {
	case "telemetry":
		return ActionTelemetry
	case "status":
		return ActionStatus
	case "watering/done":
		return ActionWateringDone
	default:
		return ActionUnknown
	}
}

// Route is an inbound topic broken into its parts.
// Suffix holds the raw action segments joined with "/".
type Route struct {
	DeviceID string
	Action   Action
	Suffix   string
}

// ParseTopic splits iot/plants/{mac}/{action...}. It reports false for
// topics with fewer than four segments or a foreign namespace/category.
// An unrecognised action parses with ActionUnknown.
func ParseTopic(topic string) (Route, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 || parts[0] != Namespace || parts[1] != Category {
		return Route{}, false
	}
	suffix := strings.Join(parts[3:], "/")
	return Route{
		DeviceID: parts[2],
		Action:   actionFromSuffix(suffix),
		Suffix:   suffix,
	}, true
}

// Topics provides builders for the plant topic tree.
type Topics struct{}

func (Topics) prefix() string {
	return Namespace + "/" + Category
}

// Subscriptions returns the wildcard filters for every inbound action.
func (t Topics) Subscriptions() []string {
	return []string{
		t.prefix() + "/+/" + ActionTelemetry.String(),
		t.prefix() + "/+/" + ActionStatus.String(),
		t.prefix() + "/+/" + ActionWateringDone.String(),
	}
}

// Command returns iot/plants/{mac}/command.
func (t Topics) Command(mac string) string {
	return fmt.Sprintf("%s/%s/command", t.prefix(), mac)
}

// Config returns iot/plants/{mac}/config.
func (t Topics) Config(mac string) string {
	return fmt.Sprintf("%s/%s/config", t.prefix(), mac)
}
