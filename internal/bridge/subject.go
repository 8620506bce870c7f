//file: internal/bridge/subject.go
package bridge

import "strings"

// ToNATSSubject converts an MQTT-style topic ('/' separators, '+'/'#'
// wildcards) into its NATS subject equivalent ('.' separators, '*'/'>'
// wildcards).
func ToNATSSubject(mqttTopic string) string {
	subject := strings.ReplaceAll(mqttTopic, "+", "*")
	subject = strings.ReplaceAll(subject, "#", ">")
	subject = strings.ReplaceAll(subject, "/", ".")
	return subject
}

// ToMQTTTopic converts a NATS subject back into MQTT topic form. It is
// the exact inverse of ToNATSSubject on MQTT topics that contain no '.',
// '*' or '>' of their own; such characters come back as '/', '+' or '#'.
func ToMQTTTopic(natsSubject string) string {
	topic := strings.ReplaceAll(natsSubject, "*", "+")
	topic = strings.ReplaceAll(topic, ">", "#")
	topic = strings.ReplaceAll(topic, ".", "/")
	return topic
}
