package model

import (
	"fmt"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// FeatureEVPNGlobal is the feature name of the global "l2vpn evpn" block.
const FeatureEVPNGlobal = "evpn_global"

// Attribute kinds of the evpn_global feature.
const (
	KindEVPNReplicationType     = "replication_type"
	KindEVPNRouterID            = "router_id"
	KindEVPNDefaultGateway      = "default_gateway.advertise"
	KindEVPNLoggingPeerState    = "logging.peer.state"
	KindEVPNRouteTargetAutoVNI  = "route_target.auto.vni"
	KindEVPNIPLocalLearning     = "ip.local_learning"
	KindEVPNFloodingSuppressARP = "flooding_suppression.address_resolution.disable"
)

// ReplicationTypes lists the accepted replication_type values.
var ReplicationTypes = []string{"ingress", "static", "p2mp", "mp2mp"}

// EVPNGlobal is the global L2VPN EVPN configuration. It is a singleton and
// has no identity.
type EVPNGlobal struct {
	ReplicationType     string                   `yaml:"replication_type,omitempty" json:"replication_type,omitempty"`
	RouterID            string                   `yaml:"router_id,omitempty" json:"router_id,omitempty"`
	DefaultGateway      *EVPNDefaultGateway      `yaml:"default_gateway,omitempty" json:"default_gateway,omitempty"`
	Logging             *EVPNLogging             `yaml:"logging,omitempty" json:"logging,omitempty"`
	RouteTarget         *EVPNRouteTarget         `yaml:"route_target,omitempty" json:"route_target,omitempty"`
	IP                  *EVPNIP                  `yaml:"ip,omitempty" json:"ip,omitempty"`
	FloodingSuppression *EVPNFloodingSuppression `yaml:"flooding_suppression,omitempty" json:"flooding_suppression,omitempty"`
}

// EVPNDefaultGateway is "default-gateway advertise".
type EVPNDefaultGateway struct {
	Advertise *bool `yaml:"advertise,omitempty" json:"advertise,omitempty"`
}

// EVPNLogging is "logging peer state".
type EVPNLogging struct {
	Peer *EVPNLoggingPeer `yaml:"peer,omitempty" json:"peer,omitempty"`
}

// EVPNLoggingPeer toggles peer state logging.
type EVPNLoggingPeer struct {
	State *bool `yaml:"state,omitempty" json:"state,omitempty"`
}

// EVPNRouteTarget is "route-target auto vni".
type EVPNRouteTarget struct {
	Auto *EVPNRouteTargetAuto `yaml:"auto,omitempty" json:"auto,omitempty"`
}

// EVPNRouteTargetAuto toggles automatic route targets from the VNI.
type EVPNRouteTargetAuto struct {
	VNI *bool `yaml:"vni,omitempty" json:"vni,omitempty"`
}

// EVPNIP holds "ip local-learning ...".
type EVPNIP struct {
	LocalLearning *EVPNLocalLearning `yaml:"local_learning,omitempty" json:"local_learning,omitempty"`
}

// EVPNLocalLearning selects "ip local-learning disable" or "enable".
type EVPNLocalLearning struct {
	Disable *bool `yaml:"disable,omitempty" json:"disable,omitempty"`
	Enable  *bool `yaml:"enable,omitempty" json:"enable,omitempty"`
}

// EVPNFloodingSuppression holds "flooding-suppression address-resolution disable".
type EVPNFloodingSuppression struct {
	AddressResolution *EVPNAddressResolution `yaml:"address_resolution,omitempty" json:"address_resolution,omitempty"`
}

// EVPNAddressResolution toggles ARP/ND flooding suppression.
type EVPNAddressResolution struct {
	Disable *bool `yaml:"disable,omitempty" json:"disable,omitempty"`
}

// Feature implements Document.
func (e *EVPNGlobal) Feature() string { return FeatureEVPNGlobal }

// Identity implements Document.
func (e *EVPNGlobal) Identity() string { return "" }

// IdentityPath implements Document.
func (e *EVPNGlobal) IdentityPath() string { return "" }

// IsEmpty implements Document.
func (e *EVPNGlobal) IsEmpty() bool { return len(e.Attrs()) == 0 }

// Attrs implements Document.
func (e *EVPNGlobal) Attrs() []Attr {
	var attrs []Attr
	attrs = stringAttr(attrs, KindEVPNReplicationType, e.ReplicationType)
	attrs = stringAttr(attrs, KindEVPNRouterID, util.NormalizeInterfaceName(e.RouterID))
	if e.DefaultGateway != nil {
		attrs = boolAttr(attrs, KindEVPNDefaultGateway, e.DefaultGateway.Advertise)
	}
	if e.Logging != nil && e.Logging.Peer != nil {
		attrs = boolAttr(attrs, KindEVPNLoggingPeerState, e.Logging.Peer.State)
	}
	if e.RouteTarget != nil && e.RouteTarget.Auto != nil {
		attrs = boolAttr(attrs, KindEVPNRouteTargetAutoVNI, e.RouteTarget.Auto.VNI)
	}
	if e.IP != nil && e.IP.LocalLearning != nil {
		ll := e.IP.LocalLearning
		switch {
		case ll.Disable != nil && *ll.Disable:
			attrs = append(attrs, Attr{Kind: KindEVPNIPLocalLearning, Value: "disable"})
		case ll.Enable != nil && *ll.Enable:
			attrs = append(attrs, Attr{Kind: KindEVPNIPLocalLearning, Value: "enable"})
		case ll.Disable != nil || ll.Enable != nil:
			attrs = append(attrs, Attr{Kind: KindEVPNIPLocalLearning, Value: false})
		}
	}
	if e.FloodingSuppression != nil && e.FloodingSuppression.AddressResolution != nil {
		attrs = boolAttr(attrs, KindEVPNFloodingSuppressARP, e.FloodingSuppression.AddressResolution.Disable)
	}
	return attrs
}

// Validate implements Document.
func (e *EVPNGlobal) Validate() error {
	v := &util.ValidationBuilder{}
	if e.ReplicationType != "" {
		valid := false
		for _, t := range ReplicationTypes {
			if e.ReplicationType == t {
				valid = true
			}
		}
		v.Schema(valid, "replication_type", "must be one of %s, got %q",
			strings.Join(ReplicationTypes, ", "), e.ReplicationType)
	}
	v.Schema(!strings.ContainsAny(e.RouterID, " \t"), "router_id", "must be a single interface name, got %q", e.RouterID)
	if e.IP != nil && e.IP.LocalLearning != nil {
		ll := e.IP.LocalLearning
		v.Conflict(ll.Disable != nil && *ll.Disable, ll.Enable != nil && *ll.Enable,
			"ip.local_learning", "disable", "enable")
	}
	return v.Build()
}

// BuildEVPNGlobal rebuilds an EVPNGlobal from attributes. The identity must be empty.
func BuildEVPNGlobal(identity string, attrs []Attr) (*EVPNGlobal, error) {
	if identity != "" {
		return nil, fmt.Errorf("%s is a singleton, got identity %q", FeatureEVPNGlobal, identity)
	}
	e := &EVPNGlobal{}
	for _, a := range attrs {
		if a.Absent() {
			continue
		}
		var err error
		switch a.Kind {
		case KindEVPNReplicationType:
			e.ReplicationType, err = attrString(a)
		case KindEVPNRouterID:
			e.RouterID, err = attrString(a)
		case KindEVPNDefaultGateway:
			e.DefaultGateway = &EVPNDefaultGateway{}
			e.DefaultGateway.Advertise, err = attrBool(a)
		case KindEVPNLoggingPeerState:
			e.Logging = &EVPNLogging{Peer: &EVPNLoggingPeer{}}
			e.Logging.Peer.State, err = attrBool(a)
		case KindEVPNRouteTargetAutoVNI:
			e.RouteTarget = &EVPNRouteTarget{Auto: &EVPNRouteTargetAuto{}}
			e.RouteTarget.Auto.VNI, err = attrBool(a)
		case KindEVPNIPLocalLearning:
			var mode string
			if mode, err = attrString(a); err != nil {
				break
			}
			ll := &EVPNLocalLearning{}
			switch mode {
			case "disable":
				ll.Disable = boolPtr(true)
			case "enable":
				ll.Enable = boolPtr(true)
			default:
				err = fmt.Errorf("%s: unknown local-learning mode %q", a.Path(), mode)
			}
			e.IP = &EVPNIP{LocalLearning: ll}
		case KindEVPNFloodingSuppressARP:
			e.FloodingSuppression = &EVPNFloodingSuppression{AddressResolution: &EVPNAddressResolution{}}
			e.FloodingSuppression.AddressResolution.Disable, err = attrBool(a)
		default:
			err = fmt.Errorf("%s: unknown attribute kind %q", FeatureEVPNGlobal, a.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}
