/*------------------------------------------------------------------
 *
 * Purpose:	ookwiz-console - talk to an ookwizd over a real or
 *		virtual serial line, the way a hardware CLI terminal would.
 *
 * Description:	Grounded on serial_port.go's use of github.com/pkg/term:
 *		open the named device in raw mode, optionally set a baud
 *		rate, then relay stdin/stdout over it line by line.
 *
 *------------------------------------------------------------------*/

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/term"
	"github.com/spf13/pflag"
)

func main() {
	device := pflag.StringP("device", "d", "/dev/ttyUSB0", "serial device connected to ookwizd")
	baud := pflag.IntP("baud", "b", 115200, "baud rate (0 leaves the port's current speed alone)")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ookwiz-console - interactive terminal over a serial link to ookwizd\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ookwiz-console [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	fd, err := term.Open(*device, term.RawMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR - could not open serial port %s: %s\n", *device, err)
		os.Exit(1)
	}
	defer fd.Close()

	switch *baud {
	case 0:
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		fd.SetSpeed(*baud)
	default:
		fmt.Fprintf(os.Stderr, "unsupported baud rate %d, using 115200\n", *baud)
		fd.SetSpeed(115200)
	}

	go func() {
		io.Copy(os.Stdout, fd)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if _, err := fmt.Fprintf(fd, "%s\n", scanner.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "write error: %s\n", err)
			return
		}
	}
}
