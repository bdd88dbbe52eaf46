package ground

import (
	"context"
	"os"
	"strings"

	"github.com/brutella/dnssd"
)

// dnsSDService is the mDNS/DNS-SD service type ground stations advertise
// under, adapted from the teacher's KISS-TCP announcement
// (src/dns_sd.go's DNS_SD_SERVICE) to this protocol's own service name.
const dnsSDService = "_hab-ground._tcp"

// Announcer advertises a running ground station on the local network via
// mDNS, so a payload-side operator's laptop can find it without typing an
// IP (spec.md §6, adapted from src/dns_sd.go and src/dns_sd_common.go).
type Announcer struct {
	responder dnssd.Responder
	cancel    context.CancelFunc
}

// Announce publishes a service named after the given session handle on
// port, and starts responding to mDNS queries in the background. The
// caller must call Shutdown to stop responding.
func Announce(sessionHandle string, port int) (*Announcer, error) {
	name := sessionHandle
	if name == "" {
		name = defaultServiceName()
	}

	cfg := dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: dnsSDService,
		Port: port,
	}

	sv, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, err
	}

	rp, err := dnssd.NewResponder()
	if err != nil {
		return nil, err
	}

	if _, err := rp.Add(sv); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	announcer := &Announcer{responder: rp, cancel: cancel}

	go func() {
		_ = rp.Respond(ctx)
	}()

	return announcer, nil
}

// Shutdown stops responding to mDNS queries.
func (a *Announcer) Shutdown() {
	a.cancel()
}

// defaultServiceName mirrors src/dns_sd_common.go's
// dns_sd_default_service_name: "<AppName> on <hostname>", falling back to
// a bare name if the hostname cannot be determined.
func defaultServiceName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "HAB Ground Station"
	}

	hostname, _, _ = strings.Cut(hostname, ".")

	return "HAB Ground Station on " + hostname
}
