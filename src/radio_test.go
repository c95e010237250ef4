package ookwiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRadio struct {
	name      string
	initCalls int
	levels    []bool
	standby   int
}

func (f *fakeRadio) Init(settings SettingsStore) error { f.initCalls++; return nil }
func (f *fakeRadio) RX(ctx context.Context, onEdge EdgeFunc) error { return nil }
func (f *fakeRadio) TX(ctx context.Context) error                 { return nil }
func (f *fakeRadio) SetLevel(high bool) error                     { f.levels = append(f.levels, high); return nil }
func (f *fakeRadio) Standby() error                               { f.standby++; return nil }
func (f *fakeRadio) Name() string                                 { return f.name }
func (f *fakeRadio) PinRX() int                                   { return -1 }
func (f *fakeRadio) PinTX() int                                   { return -1 }

func TestRadioRegistryCurrentWithoutSelectionErrors(t *testing.T) {
	r := NewRadioRegistry()
	_, err := r.Current()
	assert.Error(t, err)
}

func TestRadioRegistrySelectUnknownErrors(t *testing.T) {
	r := NewRadioRegistry()
	r.Add("gpiocdev", &fakeRadio{name: "gpiocdev"})
	assert.Error(t, r.Select("nonexistent"))
}

func TestRadioRegistrySelectAndCurrent(t *testing.T) {
	r := NewRadioRegistry()
	driver := &fakeRadio{name: "gpiocdev"}
	r.Add("gpiocdev", driver)
	require.NoError(t, r.Select("gpiocdev"))

	current, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, driver, current)
}

func TestRadioRegistryList(t *testing.T) {
	r := NewRadioRegistry()
	r.Add("gpiocdev", &fakeRadio{name: "gpiocdev"})
	r.Add("hamlib", &fakeRadio{name: "hamlib"})
	assert.Equal(t, "gpiocdev, hamlib", r.List())
}
