package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	Load the startup list of radio drivers and device plugins
 *		from a YAML document, replacing the original's C++ static-
 *		constructor auto-registration.
 *
 * Description:	original_source's Device.h/Radio.h register every plugin
 *		class via a global object whose constructor runs before
 *		main() (DEVICE_PLUGIN_START/END, RADIO_PLUGIN_START/END).
 *		Go has no equivalent of running arbitrary code before main
 *		tied to translation-unit inclusion, and the REDESIGN FLAGS
 *		call for explicit registration instead - here, a YAML
 *		document naming which of the built-in drivers/plugins to
 *		construct and register, loaded with gopkg.in/yaml.v3.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RegistryDocument is the top-level shape of the YAML registry file.
type RegistryDocument struct {
	Radios  []string `yaml:"radios"`
	Devices []string `yaml:"devices"`
}

// radioFactories maps a registry document's radio name to a constructor.
// Built-in drivers only; a plugin system for out-of-tree drivers is
// explicitly a Non-goal.
var radioFactories = map[string]func() RadioDriver{
	"gpiocdev": func() RadioDriver { return NewGPIOCDevDriver() },
	"hamlib":   func() RadioDriver { return NewHamlibDriver() },
}

// LoadRegistry reads path as a RegistryDocument and populates radios and
// devices with the named built-in drivers/plugins.
func LoadRegistry(path string, radios *RadioRegistry, devices *DeviceRegistry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read registry file %q: %w", path, err)
	}
	var doc RegistryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse registry file %q: %w", path, err)
	}

	for _, name := range doc.Radios {
		factory, ok := radioFactories[name]
		if !ok {
			return fmt.Errorf("registry file %q: unknown radio driver %q", path, name)
		}
		radios.Add(name, factory())
	}
	for _, name := range doc.Devices {
		factory, ok := deviceFactories[name]
		if !ok {
			return fmt.Errorf("registry file %q: unknown device plugin %q", path, name)
		}
		devices.Add(name, factory())
	}
	return nil
}
