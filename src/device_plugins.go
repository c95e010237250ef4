package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	Built-in DevicePlugin implementations, and the name->factory
 *		table LoadRegistry uses to construct the ones named in a
 *		registry document.
 *
 * Description:	original_source ships its device decoders under
 *		device_plugins/ (referenced, but not present in this pack,
 *		via device_plugins/DEVICE_INDEX) as one C++ class per device
 *		family. Two representative built-ins are provided here in
 *		their place: a generic logger every install can enable, and
 *		a minimal fixed-code remote decoder (the common "N data bits
 *		from a PWM or PPM remote" shape underlying most inexpensive
 *		315/433 MHz mains-socket and doorbell remotes) as a worked
 *		example of the shape a real device plugin takes.
 *
 *------------------------------------------------------------------*/

var deviceFactories = map[string]func() DevicePlugin{
	"logger":     func() DevicePlugin { return &LoggerPlugin{} },
	"fixed_code": func() DevicePlugin { return &FixedCodePlugin{} },
}

// LoggerPlugin never claims a packet; it logs every packet offered to it
// (every packet no plugin registered before it has claimed).
type LoggerPlugin struct {
	Log Logger
}

func (p *LoggerPlugin) Receive(raw RawTimings, train Pulsetrain, meaning Meaning) bool {
	if p.Log != nil {
		p.Log.Infof("logger: %s", meaning.String())
	}
	return false
}

func (p *LoggerPlugin) Transmit(toTransmit string) bool { return false }

// FixedCodePlugin recognizes a single-element PWM or PPM Meaning (the
// fixed-code remotes sold under names like many mains-socket kits) and
// reports the decoded bits as "house N unit N on|off (0xCODE)" the way those
// remotes typically pack a house/unit/state triple into their data bits.
type FixedCodePlugin struct {
	Log Logger
}

func (p *FixedCodePlugin) Receive(raw RawTimings, train Pulsetrain, meaning Meaning) bool {
	if len(meaning.Elements) != 1 {
		return false
	}
	el := meaning.Elements[0]
	if el.Type != ElementPWM && el.Type != ElementPPM {
		return false
	}
	if el.DataLen < 8 || len(el.Data) == 0 {
		return false
	}

	code := uint32(0)
	for _, b := range el.Data {
		code = code<<8 | uint32(b)
	}
	state := code&1 != 0
	house := (code >> 1) & 0xF
	unit := (code >> 5) & 0xF

	if p.Log != nil {
		onOff := "off"
		if state {
			onOff = "on"
		}
		p.Log.Infof("fixed_code: house %d unit %d %s (0x%x)", house, unit, onOff, code)
	}
	return true
}

func (p *FixedCodePlugin) Transmit(toTransmit string) bool {
	return false
}
