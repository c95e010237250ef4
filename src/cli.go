package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	The line-oriented command interpreter: help/set/unset/load/
 *		save/ls/rm/reboot/standby/receive/sim/transmit/sr.
 *
 * Description:	Grounded on CLI.cpp in original_source. Commands are
 *		terminated by ';' or a newline, same as the original's
 *		Serial.read() loop; a blank command is silently ignored. A
 *		line starting "10;" is the one exception - RFLink passthrough
 *		syntax, whose own fields are ';'-separated - so it is kept
 *		intact, embedded ';' and all, until the next newline.
 *		'reboot' has no process-restart equivalent worth building in
 *		a long-running Go daemon, so here it re-runs Setup from the
 *		saved defaults instead of exiting (an Open Question resolved
 *		in DESIGN.md).
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"strings"
)

// CLI parses and executes command lines against a Pipeline.
type CLI struct {
	Pipeline *Pipeline
	Settings SettingsStore
	Log      Logger

	buffer      strings.Builder
	passthrough bool
}

const helpText = `
OOKwiz-Go Command Line Interpreter help.

Available commands:

help               - prints this message
set                - shows current configuration settings
set x              - sets configuration flag x
set x y            - sets configuration value x to y
unset x            - unsets a flag or variable
load [<file>]      - loads the default saved settings, or from a named file
save               - saves to a file named 'default', which is what is used at startup
save [<file>]      - saves the settings to a named file
ls                 - lists stored configuration files
rm <file>          - deletes a configuration file
reboot             - re-applies the saved defaults, as if freshly started
standby            - set radio to standby mode
receive            - set radio to receive mode
sim <string>       - takes a RawTimings, Pulsetrain or Meaning string and
                      acts like it just came in off the air
transmit <string>  - takes a RawTimings, Pulsetrain or Meaning string and
                      transmits it

rm default;reboot  - restore factory settings
sr                 - shorthand for "save;reboot"
`

// Feed appends input to the line buffer, executing and logging the
// result of every complete (';' or '\n' terminated) command found. A
// command beginning "10;" is read through to the next '\n' regardless of
// any ';' it contains.
func (c *CLI) Feed(input string) {
	for _, r := range input {
		if c.passthrough {
			c.buffer.WriteRune(r)
			if r == '\n' {
				c.passthrough = false
				c.flush()
			}
			continue
		}
		if r == ';' && c.buffer.String() == "10" {
			c.buffer.WriteRune(r)
			c.passthrough = true
			continue
		}
		if r == '\r' || r == '\n' || r == ';' {
			c.flush()
		} else {
			c.buffer.WriteRune(r)
		}
	}
}

func (c *CLI) flush() {
	cmd := strings.TrimSpace(c.buffer.String())
	c.buffer.Reset()
	if cmd != "" {
		c.execute(cmd)
	}
}

func (c *CLI) execute(cmd string) {
	if c.Log != nil {
		c.Log.Infof("CLI: %s", cmd)
	}

	name, args, _ := strings.Cut(cmd, " ")
	args = strings.TrimSpace(args)

	switch name {
	case "help":
		c.reply(helpText)
	case "set":
		c.doSet(args)
	case "unset":
		c.doUnset(args)
	case "load":
		c.doLoad(args)
	case "save":
		c.doSave(args)
	case "ls":
		c.doLs()
	case "rm":
		c.doRm(args)
	case "reboot":
		c.doReboot()
	case "standby":
		c.doStandby()
	case "receive":
		c.doReceive()
	case "transmit":
		c.doTransmit(args)
	case "sim":
		c.doSim(args)
	case "sr":
		c.doSaveAndReboot()
	default:
		c.reply(fmt.Sprintf("Unknown command %q. Enter 'help' for a list of commands.", cmd))
	}
}

func (c *CLI) reply(format string, args ...any) {
	if c.Log != nil {
		c.Log.Infof(format, args...)
	}
}

func (c *CLI) doSet(args string) {
	if args == "" {
		c.reply("%s", c.Settings.List())
		return
	}
	name, value, found := strings.Cut(args, " ")
	if !found {
		name, value, _ = strings.Cut(args, "=")
	}
	if err := c.Settings.Set(name, value); err != nil {
		c.reply("ERROR: %v", err)
		return
	}
	if value != "" {
		c.reply("%q set to %q", name, value)
	} else {
		c.reply("%q set", name)
	}
}

func (c *CLI) doUnset(args string) {
	if err := c.Settings.Unset(args); err != nil {
		c.reply("ERROR: %v", err)
		return
	}
	c.reply("Setting %q removed.", args)
}

func (c *CLI) doLoad(args string) {
	if args == "" {
		args = "default"
	}
	if err := c.Settings.Load(args); err != nil {
		c.reply("ERROR: %v", err)
	}
}

func (c *CLI) doSave(args string) {
	if args == "" {
		args = "default"
	}
	if err := c.Settings.Save(args); err != nil {
		c.reply("ERROR: %v", err)
	}
}

func (c *CLI) doLs() {
	names, err := c.Settings.Ls()
	if err != nil {
		c.reply("ERROR: %v", err)
		return
	}
	for _, name := range names {
		c.reply("%s", name)
	}
}

func (c *CLI) doRm(args string) {
	if err := c.Settings.Rm(args); err != nil {
		c.reply("ERROR: %v", err)
	}
}

// doReboot re-applies saved settings in place - see the package-level
// doc comment above for why this differs from the original's ESP.restart.
func (c *CLI) doReboot() {
	if err := c.Settings.Load("default"); err != nil {
		c.reply("No saved settings found, using current settings.")
	}
	if err := c.Pipeline.Setup(); err != nil {
		c.reply("ERROR: %v", err)
		return
	}
	c.reply("Re-applied settings.")
}

func (c *CLI) doStandby() {
	if err := c.Pipeline.Standby(); err != nil {
		c.reply("ERROR: %v", err)
		return
	}
	c.reply("Transceiver placed in standby mode.")
}

func (c *CLI) doReceive() {
	if err := c.Pipeline.Receive(context.Background()); err != nil {
		c.reply("ERROR: %v", err)
		return
	}
	c.reply("Receiver active, waiting for pulses.")
}

func (c *CLI) doTransmit(args string) {
	if err := c.Pipeline.Transmit(args); err != nil {
		c.reply("ERROR: %v", err)
	}
}

func (c *CLI) doSim(args string) {
	if err := c.Pipeline.Simulate(args); err != nil {
		c.reply("ERROR: %v", err)
	}
}

func (c *CLI) doSaveAndReboot() {
	c.doSave("default")
	c.doReboot()
}
