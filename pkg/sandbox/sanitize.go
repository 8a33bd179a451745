package sandbox

import (
	"strings"

	"github.com/rs/zerolog"
)

var sensitiveKeyPatterns = []string{
	"PASSWORD",
	"SECRET",
	"TOKEN",
	"KEY",
	"CREDENTIAL",
	"AUTH",
	"PRIVATE",
	"PASSPHRASE",
}

const redactedValue = "[REDACTED]"

// envDict renders env as a log dictionary with secret-looking values redacted.
func envDict(env map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range env {
		if isSensitiveKey(k) {
			v = redactedValue
		}
		d.Str(k, v)
	}
	return d
}

func isSensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}
