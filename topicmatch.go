package mqttclient

import "strings"

// Matches reports whether topic satisfies filter under MQTT wildcard
// rules: '+' matches exactly one level, '#' matches any number of
// trailing levels and must be the final level of filter. Per
// MQTT-4.7.2-1, a filter starting with a wildcard never matches a topic
// starting with '$', even though that rule is normally enforced by the
// server; a client dispatching its own inbound PUBLISH against its own
// subscriptions needs the same exclusion to avoid treating a broker's
// reserved topics as falling under a caller's "#" subscription.
func Matches(filter, topic string) bool {
	if strings.HasPrefix(topic, "$") && (strings.HasPrefix(filter, "+") || strings.HasPrefix(filter, "#")) {
		return false
	}

	fLevels := strings.Split(filter, "/")
	tLevels := strings.Split(topic, "/")

	for i, fLevel := range fLevels {
		if fLevel == "#" {
			return true
		}
		if i >= len(tLevels) {
			return false
		}
		if fLevel != "+" && fLevel != tLevels[i] {
			return false
		}
	}
	return len(fLevels) == len(tLevels)
}
