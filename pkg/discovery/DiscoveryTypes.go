package discovery

import "fmt"

// ConnectivityInfo with one address a discovered core listens on
type ConnectivityInfo struct {
	ID          string `json:"Id"`
	HostAddress string `json:"HostAddress"`
	PortNumber  int    `json:"PortNumber"`
	Metadata    string `json:"Metadata,omitempty"`
}

// GGCore describes a discovered core device and how to reach it
type GGCore struct {
	ThingArn     string             `json:"thingArn"`
	Connectivity []ConnectivityInfo `json:"Connectivity"`
}

// GGGroup with the cores of one group and the CA certificates that sign
// their server certificates
type GGGroup struct {
	GGGroupID string   `json:"GGGroupId"`
	Cores     []GGCore `json:"Cores"`
	CAs       []string `json:"CAs"`
}

// DiscoverResponse is the document returned by the discovery endpoint
type DiscoverResponse struct {
	GGGroups []GGGroup `json:"GGGroups"`
}

// DiscoveryError is returned when the discovery endpoint answers with an
// HTTP error status. The response body is kept for diagnosis.
type DiscoveryError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (discErr *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery request failed: %s: %s", discErr.Status, discErr.Body)
}
