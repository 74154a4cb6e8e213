package importmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Pins are the manually managed entries prepended to every build: external
// modules the site imports straight from a CDN, or anything else the
// derivation must not touch. They live in a small JSON array next to the
// code, in insertion order:
//
//	[
//	  {"name": "htmx", "path": "https://unpkg.com/htmx.org@2.0.6/dist/htmx.min.js"}
//	]

// LoadPins reads the pins file. A missing file means no pins.
func LoadPins(name string) ([]Entry, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pins: %w", err)
	}
	var pins []Entry
	if err := json.Unmarshal(data, &pins); err != nil {
		return nil, fmt.Errorf("parse pins %s: %w", name, err)
	}
	return pins, nil
}

// SavePins rewrites the pins file.
func SavePins(name string, pins []Entry) error {
	data, err := json.MarshalIndent(pins, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pins: %w", err)
	}
	if err := os.WriteFile(name, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write pins: %w", err)
	}
	return nil
}

// AddPin inserts or replaces the pin with the given name, keeping the
// position of a replaced entry so re-pinning a module does not shuffle the
// emission order.
func AddPin(name string, pin Entry) error {
	pins, err := LoadPins(name)
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range pins {
		if existing.Name == pin.Name {
			pins[i] = pin
			replaced = true
			break
		}
	}
	if !replaced {
		pins = append(pins, pin)
	}
	return SavePins(name, pins)
}

// RemovePin deletes the pin with the given module name and reports whether
// it was present.
func RemovePin(name, module string) (bool, error) {
	pins, err := LoadPins(name)
	if err != nil {
		return false, err
	}
	kept := pins[:0]
	found := false
	for _, pin := range pins {
		if pin.Name == module {
			found = true
			continue
		}
		kept = append(kept, pin)
	}
	if !found {
		return false, nil
	}
	return true, SavePins(name, kept)
}
