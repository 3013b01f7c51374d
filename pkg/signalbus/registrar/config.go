package registrar

import (
	"github.com/randalmurphal/signalbus/pkg/signalbus/config"
)

// Keys read from the registrar config section.
const (
	keyRegisterOnActivate     = "register_on_activate"
	keyUnregisterOnDeactivate = "unregister_on_deactivate"
)

// ConfigFrom extracts a registrar Config from the "registrar" section of a
// loaded configuration file. Missing keys keep their defaults:
//
//	registrar:
//	  register_on_activate: true
//	  unregister_on_deactivate: false
func ConfigFrom(c config.Config) Config {
	section := c.Sub("registrar")
	defaults := DefaultConfig()
	return Config{
		RegisterOnActivate:     section.Bool(keyRegisterOnActivate, defaults.RegisterOnActivate),
		UnregisterOnDeactivate: section.Bool(keyUnregisterOnDeactivate, defaults.UnregisterOnDeactivate),
	}
}
