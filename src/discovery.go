package ookwiz

/*------------------------------------------------------------------
 *
 * Purpose:	Announce this OOKwiz instance's CLI/TCP endpoint on the LAN
 *		via mDNS/DNS-SD, so a console client can find it without a
 *		hardcoded address.
 *
 * Description:	Grounded directly on an APRS TNC's own DNS-SD announcer,
 *		which announces a KISS-over-TCP endpoint the same way;
 *		adapted here to announce the OOK service type instead.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

const discoveryServiceType = "_ookwiz._tcp"

// Announce publishes name (falling back to a generated default) on port
// via DNS-SD, and starts responding to queries in the background. It
// returns a cancel function that withdraws the announcement.
func Announce(log Logger, name string, port int) (context.CancelFunc, error) {
	if name == "" {
		name = "ookwiz"
	}

	cfg := dnssd.Config{
		Name: name,
		Type: discoveryServiceType,
		Port: port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("dns-sd: create service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("dns-sd: create responder: %w", err)
	}
	if _, err := responder.Add(service); err != nil {
		return nil, fmt.Errorf("dns-sd: add service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	log.Infof("dns-sd: announcing %s on port %d as %q", discoveryServiceType, port, name)
	go func() {
		if err := responder.Respond(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("dns-sd: responder error: %v", err)
		}
	}()
	return cancel, nil
}
