/*------------------------------------------------------------------
 *
 * Purpose:	ookwizd - the OOK receive/transmit daemon. Loads settings
 *		and a radio/device registry document, brings up the
 *		pipeline, announces itself on the LAN, and reads CLI
 *		commands from stdin (replies go to the console log on
 *		stderr).
 *
 * Description:	Flag handling follows the pflag style of a typical Go TNC
 *		daemon's main: long/short pairs with an inline default and
 *		usage string, a custom pflag.Usage override, then
 *		pflag.Parse().
 *
 *------------------------------------------------------------------*/

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/kgwire/ookwiz/src"
	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.StringP("config-dir", "c", ".", "directory holding saved settings files")
	registryFile := pflag.StringP("registry", "r", "registry.yaml", "YAML document listing radio drivers and device plugins to load")
	logDir := pflag.StringP("log-dir", "l", "", "directory for daily-rotating packet logs (disabled if empty)")
	announce := pflag.BoolP("announce", "a", true, "announce this daemon on the LAN via DNS-SD")
	servicePort := pflag.IntP("port", "p", 8510, "port number included in the DNS-SD announcement")
	serviceName := pflag.StringP("name", "n", "ookwizd", "DNS-SD service instance name")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug-level logging")
	autoReceive := pflag.BoolP("receive", "R", true, "start in receive mode immediately")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ookwizd - OOK packet receive/transmit daemon\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ookwizd [options]\n\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands are read from stdin; enter 'help' once running for the list.\n")
	}
	pflag.Parse()

	log := ookwiz.NewConsoleLogger(charmlog.InfoLevel)

	settings := ookwiz.NewMemStore(*configDir)
	if err := settings.Load("default"); err != nil {
		log.Infof("no saved 'default' settings found, using factory defaults")
	}

	level := ookwiz.LevelFromSetting(settings)
	if *verbose {
		level = charmlog.DebugLevel
	}
	log.SetLevel(level)

	if *logDir != "" {
		if err := log.EnableDailyFile(*logDir, "%Y-%m-%d.log"); err != nil {
			log.Errorf("packet log: %v", err)
		}
	}

	radios := ookwiz.NewRadioRegistry()
	devices := ookwiz.NewDeviceRegistry(settings)
	if err := ookwiz.LoadRegistry(*registryFile, radios, devices); err != nil {
		log.Errorf("registry: %v", err)
		os.Exit(1)
	}

	pipeline := ookwiz.NewPipeline(settings, radios, devices, log)
	pipeline.OnReceive(func(raw ookwiz.RawTimings, train ookwiz.Pulsetrain, meaning ookwiz.Meaning) {
		log.LogPacket(raw, train, meaning)
	})

	if err := pipeline.Setup(); err != nil {
		log.Errorf("setup: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *announce {
		cancelAnnounce, err := ookwiz.Announce(log, *serviceName, *servicePort)
		if err != nil {
			log.Errorf("DNS-SD announce: %v", err)
		} else {
			defer cancelAnnounce()
		}
	}

	if *autoReceive {
		if err := pipeline.Receive(ctx); err != nil {
			log.Errorf("receive: %v", err)
		}
	}

	go pipeline.Run(ctx)

	cli := &ookwiz.CLI{Pipeline: pipeline, Settings: settings, Log: log}
	go runCLI(ctx, cli)

	<-ctx.Done()
	pipeline.Standby()
	log.Close()
}

func runCLI(ctx context.Context, cli *ookwiz.CLI) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		cli.Feed(scanner.Text() + "\n")
	}
}
