/*------------------------------------------------------------------
 *
 * Purpose:	ookwiz-pty - exposes an ookwizd CLI session on a pseudo
 *		terminal, for tools that expect a serial device rather than
 *		a pipe (minicom, screen, picocom, and the like).
 *
 * Description:	Grounded on kiss.go's kisspt_open_pt, which opens a
 *		pseudo terminal pair with github.com/creack/pty and prints
 *		the slave side's device name for a client to connect to.
 *		Unlike the KISS virtual TNC this isn't a binary framing
 *		protocol - text written to the pty is fed to the CLI as
 *		commands. The CLI's replies go to the console log on
 *		stderr; nothing is written back to the pty.
 *
 *------------------------------------------------------------------*/

package main

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/kgwire/ookwiz/src"
	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.StringP("config-dir", "c", ".", "directory holding saved settings files")
	registryFile := pflag.StringP("registry", "r", "registry.yaml", "YAML document listing radio drivers and device plugins to load")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ookwiz-pty - run the ookwizd CLI over a pseudo terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ookwiz-pty [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	ptmx, pts, err := pty.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR - could not create pseudo terminal: %s\n", err)
		os.Exit(1)
	}
	defer ptmx.Close()
	defer pts.Close()

	fmt.Printf("Virtual CLI terminal is available on %s\n", pts.Name())

	log := ookwiz.NewConsoleLogger(charmlog.InfoLevel)
	settings := ookwiz.NewMemStore(*configDir)
	if err := settings.Load("default"); err != nil {
		log.Infof("no saved 'default' settings found, using factory defaults")
	}

	radios := ookwiz.NewRadioRegistry()
	devices := ookwiz.NewDeviceRegistry(settings)
	if err := ookwiz.LoadRegistry(*registryFile, radios, devices); err != nil {
		log.Errorf("registry: %v", err)
		os.Exit(1)
	}

	pipeline := ookwiz.NewPipeline(settings, radios, devices, log)
	if err := pipeline.Setup(); err != nil {
		log.Errorf("setup: %v", err)
		os.Exit(1)
	}

	cli := &ookwiz.CLI{Pipeline: pipeline, Settings: settings, Log: log}

	buf := make([]byte, 256)
	for {
		n, err := ptmx.Read(buf)
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "pty read error: %s\n", err)
			}
			return
		}
		cli.Feed(string(buf[:n]))
	}
}
