package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"time"
)

const (
	probeTimeout  = 2 * time.Second
	probeInterval = time.Second
)

// WaitForNetwork blocks until a TCP connection to the endpoint host
// succeeds or ctx is cancelled. Wi-Fi association itself belongs to the
// host OS; from here, no connectivity is a transient condition to wait
// out, never a fatal one.
func WaitForNetwork(ctx context.Context, endpointURL string) error {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return fmt.Errorf("bootstrap: parse endpoint %q: %w", endpointURL, err)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}

	attempt := 0
	for {
		conn, err := net.DialTimeout("tcp", host, probeTimeout)
		if err == nil {
			conn.Close()
			log.Printf("bootstrap: network reachable at %s", host)
			return nil
		}

		attempt++
		if attempt == 1 || attempt%10 == 0 {
			log.Printf("bootstrap: waiting for network (%s): %v", host, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(probeInterval):
		}
	}
}
