package wellknown

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"
)

//go:embed well_known_ports.csv
var wellKnownPortsData string

type Protocol string

const (
	TCP Protocol = "tcp"
	UDP Protocol = "udp"
)

type ServiceEntry struct {
	Protocol Protocol
	Port     int
}

var serviceRegistry map[string][]ServiceEntry

func init() {
	serviceRegistry = make(map[string][]ServiceEntry)
	reader := csv.NewReader(bytes.NewBufferString(wellKnownPortsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known_ports.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known_ports.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		port, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}

		register(record[1], ServiceEntry{Protocol: TCP, Port: port})
		register(record[2], ServiceEntry{Protocol: UDP, Port: port})
	}
}

func register(name string, entry ServiceEntry) {
	name = strings.TrimSpace(name)
	if name == "" || name == "N/A" {
		return
	}
	key := strings.ToUpper(name)
	serviceRegistry[key] = append(serviceRegistry[key], entry)
	if name == "domain" {
		serviceRegistry["DNS"] = append(serviceRegistry["DNS"], entry)
	}
}

// GetService returns the ports registered under a service name, case-insensitively.
func GetService(name string) ([]ServiceEntry, bool) {
	entry, ok := serviceRegistry[strings.ToUpper(name)]
	return entry, ok
}

// PortNumbers returns the distinct port numbers of a service as text, in
// registry order.
func PortNumbers(name string) []string {
	entries, _ := GetService(name)
	var ports []string
	seen := make(map[int]bool)
	for _, e := range entries {
		if seen[e.Port] {
			continue
		}
		seen[e.Port] = true
		ports = append(ports, strconv.Itoa(e.Port))
	}
	return ports
}
