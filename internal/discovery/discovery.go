/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package discovery advertises the balance server over mDNS so servers
and tooling on the same network segment can find the cluster without
static configuration.

The service type embeds the cluster id, so two clusters on one segment
never see each other's announcements. Discovery is convenience only;
every server still accepts an explicit balance address and skips mDNS
entirely when one is configured.
*/
package discovery

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"flychat/internal/logging"
)

const lookupTimeout = 3 * time.Second

func serviceType(clusterID string) string {
	return fmt.Sprintf("_flychat-%s._tcp", clusterID)
}

// Advertiser announces one endpoint until closed.
type Advertiser struct {
	server *mdns.Server
	logger *logging.Logger
}

// Advertise announces role (for example "balance") at port under the
// cluster's service type.
func Advertise(clusterID, role string, port int) (*Advertiser, error) {
	logger := logging.NewLogger("discovery")

	host, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	svc, err := mdns.NewMDNSService(
		host,
		serviceType(clusterID),
		"",
		"",
		port,
		nil,
		[]string{"role=" + role},
	)
	if err != nil {
		return nil, err
	}

	srv, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, err
	}

	logger.Info("Advertising over mDNS",
		"cluster", clusterID, "role", role, "port", port)
	return &Advertiser{server: srv, logger: logger}, nil
}

// Close withdraws the announcement.
func (a *Advertiser) Close() error {
	a.logger.Info("Withdrawing mDNS announcement")
	return a.server.Shutdown()
}

// Endpoint is one discovered announcement.
type Endpoint struct {
	Host string
	Port int
	Role string
}

// Lookup collects the cluster's announcements, optionally filtered by
// role. It returns whatever answered within the lookup window.
func Lookup(clusterID, role string) ([]Endpoint, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []Endpoint, 1)

	go func() {
		var out []Endpoint
		for e := range entries {
			ep := Endpoint{Host: e.Host, Port: e.Port}
			if e.AddrV4 != nil {
				ep.Host = e.AddrV4.String()
			}
			for _, f := range e.InfoFields {
				if len(f) > 5 && f[:5] == "role=" {
					ep.Role = f[5:]
				}
			}
			if role == "" || ep.Role == role {
				out = append(out, ep)
			}
		}
		done <- out
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service: serviceType(clusterID),
		Entries: entries,
		Timeout: lookupTimeout,
	})
	close(entries)
	eps := <-done
	if err != nil {
		return nil, err
	}
	return eps, nil
}
