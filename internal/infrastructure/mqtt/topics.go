package mqtt

import "strings"

// DefaultPrefix is used when the configured topic prefix is empty.
const DefaultPrefix = "assetflow"

// Topics builds AssetFlow topic names under a configurable prefix.
//
//	topics := mqtt.Topics{Prefix: "assetflow"}
//	topics.Event("request.approved", "dev-42")
//	// assetflow/events/request.approved/dev-42
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return strings.TrimSuffix(t.Prefix, "/")
}

// Event is the topic for one lifecycle event on one device.
func (t Topics) Event(eventType, deviceID string) string {
	return t.prefix() + "/events/" + segment(eventType) + "/" + segment(deviceID)
}

// EventsOfType matches every device for one event type.
func (t Topics) EventsOfType(eventType string) string {
	return t.prefix() + "/events/" + segment(eventType) + "/+"
}

// AllEvents matches every lifecycle event.
func (t Topics) AllEvents() string {
	return t.prefix() + "/events/#"
}

// SystemStatus is the retained online/offline status topic, also used as LWT.
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// segment makes an identifier safe to use as a single topic level.
// Wildcards and separators are replaced, and an empty value becomes "_".
func segment(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}
