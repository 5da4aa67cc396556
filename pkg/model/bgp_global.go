package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/util"
)

// FeatureBGPGlobal is the feature name of BGP global configuration.
const FeatureBGPGlobal = "bgp_global"

// Attribute kinds of the bgp_global feature.
const (
	KindBGPRouterID              = "bgp.router_id"
	KindBGPLogNeighborChanges    = "bgp.log_neighbor_changes"
	KindBGPAdvertiseBestExternal = "bgp.advertise_best_external"
	KindBGPAlwaysCompareMED      = "bgp.always_compare_med"
	KindBGPBestpathCompareRID    = "bgp.bestpath_options.compare_routerid"
	KindBGPBestpathMED           = "bgp.bestpath_options.med"
	KindBGPClusterID             = "bgp.cluster_id"
	KindBGPDeterministicMED      = "bgp.deterministic_med"
	KindBGPGracefulRestart       = "bgp.graceful_restart"
	KindBGPGracefulShutdown      = "bgp.graceful_shutdown"
	KindBGPNopeerupDelay         = "bgp.nopeerup_delay[]"
	KindBGPDampening             = "bgp.dampening"
	KindBGPScanTime              = "bgp.scan_time"
	KindBGPUpdateDelay           = "bgp.update_delay"
	KindBGPTimers                = "timers"
	KindBGPAutoSummary           = "auto_summary"
	KindBGPRedistribute          = "redistribute[]"

	KindNeighborIsPeerGroup   = "neighbor[].is_peer_group"
	KindNeighborRemoteAS      = "neighbor[].remote_as"
	KindNeighborPeerGroup     = "neighbor[].peer_group"
	KindNeighborDescription   = "neighbor[].description"
	KindNeighborUpdateSource  = "neighbor[].update_source"
	KindNeighborEBGPMultihop  = "neighbor[].ebgp_multihop"
	KindNeighborTimers        = "neighbor[].timers"
	KindNeighborAIGP          = "neighbor[].aigp.enable"
	KindNeighborCostCommunity = "neighbor[].aigp.send.cost_community"
	KindNeighborAIGPSendMED   = "neighbor[].aigp.send.med"
	KindNeighborRouteMapIn    = "neighbor[].route_maps.in"
	KindNeighborRouteMapOut   = "neighbor[].route_maps.out"
	KindNeighborShutdown      = "neighbor[].shutdown"
)

// Nopeerup-delay keys.
const (
	NopeerupColdBoot      = "cold_boot"
	NopeerupNSFBoot       = "nsf_boot"
	NopeerupPostBoot      = "post_boot"
	NopeerupUserInitiated = "user_initiated"
)

// BGPGlobal is the global BGP configuration under "router bgp <as_number>".
//
// Pointer fields are unset when nil. A *bool set to false asserts that the
// command is absent. Integer fields use 0 for unset.
type BGPGlobal struct {
	ASNumber     string             `yaml:"as_number,omitempty" json:"as_number,omitempty"`
	AutoSummary  *bool              `yaml:"auto_summary,omitempty" json:"auto_summary,omitempty"`
	BGP          *BGPOptions        `yaml:"bgp,omitempty" json:"bgp,omitempty"`
	Neighbors    []*BGPNeighbor     `yaml:"neighbor,omitempty" json:"neighbor,omitempty"`
	Redistribute []*BGPRedistribute `yaml:"redistribute,omitempty" json:"redistribute,omitempty"`
	Timers       *BGPTimers         `yaml:"timers,omitempty" json:"timers,omitempty"`
}

// BGPOptions holds the "bgp ..." global knobs.
type BGPOptions struct {
	AdvertiseBestExternal *bool                `yaml:"advertise_best_external,omitempty" json:"advertise_best_external,omitempty"`
	AlwaysCompareMED      *bool                `yaml:"always_compare_med,omitempty" json:"always_compare_med,omitempty"`
	BestpathOptions       *BGPBestpathOptions  `yaml:"bestpath_options,omitempty" json:"bestpath_options,omitempty"`
	ClusterID             string               `yaml:"cluster_id,omitempty" json:"cluster_id,omitempty"`
	Dampening             *BGPDampening        `yaml:"dampening,omitempty" json:"dampening,omitempty"`
	DeterministicMED      *bool                `yaml:"deterministic_med,omitempty" json:"deterministic_med,omitempty"`
	GracefulRestart       *bool                `yaml:"graceful_restart,omitempty" json:"graceful_restart,omitempty"`
	GracefulShutdown      *BGPGracefulShutdown `yaml:"graceful_shutdown,omitempty" json:"graceful_shutdown,omitempty"`
	LogNeighborChanges    *bool                `yaml:"log_neighbor_changes,omitempty" json:"log_neighbor_changes,omitempty"`
	NopeerupDelay         []*BGPNopeerupDelay  `yaml:"nopeerup_delay,omitempty" json:"nopeerup_delay,omitempty"`
	RouterID              *BGPRouterID         `yaml:"router_id,omitempty" json:"router_id,omitempty"`
	ScanTime              int                  `yaml:"scan_time,omitempty" json:"scan_time,omitempty"`
	UpdateDelay           int                  `yaml:"update_delay,omitempty" json:"update_delay,omitempty"`
}

// BGPBestpathOptions holds "bgp bestpath ..." options.
type BGPBestpathOptions struct {
	CompareRouterID *bool           `yaml:"compare_routerid,omitempty" json:"compare_routerid,omitempty"`
	MED             *BGPBestpathMED `yaml:"med,omitempty" json:"med,omitempty"`
}

// BGPBestpathMED renders as one "bgp bestpath med [confed] [missing-as-worst]" line.
type BGPBestpathMED struct {
	Confed         bool `yaml:"confed,omitempty" json:"confed,omitempty"`
	MissingAsWorst bool `yaml:"missing_as_worst,omitempty" json:"missing_as_worst,omitempty"`
}

// BGPDampening is either the four dampening parameters or a route-map.
type BGPDampening struct {
	PenaltyHalfTime  int    `yaml:"penalty_half_time,omitempty" json:"penalty_half_time,omitempty"`
	ReuseRouteVal    int    `yaml:"reuse_route_val,omitempty" json:"reuse_route_val,omitempty"`
	SuppressRouteVal int    `yaml:"suppress_route_val,omitempty" json:"suppress_route_val,omitempty"`
	MaxSuppress      int    `yaml:"max_suppress,omitempty" json:"max_suppress,omitempty"`
	RouteMap         string `yaml:"route_map,omitempty" json:"route_map,omitempty"`
}

func (d BGPDampening) hasParams() bool {
	return d.PenaltyHalfTime != 0 || d.ReuseRouteVal != 0 || d.SuppressRouteVal != 0 || d.MaxSuppress != 0
}

// Merge fills an unset dampening from current. Parameters and route-map are
// alternatives, so only the form desired is completed.
func (d BGPDampening) Merge(current interface{}) interface{} {
	c, ok := current.(BGPDampening)
	if !ok || d.RouteMap != "" {
		return d
	}
	if !d.hasParams() {
		return c
	}
	if c.RouteMap == "" {
		d.PenaltyHalfTime = orInt(d.PenaltyHalfTime, c.PenaltyHalfTime)
		d.ReuseRouteVal = orInt(d.ReuseRouteVal, c.ReuseRouteVal)
		d.SuppressRouteVal = orInt(d.SuppressRouteVal, c.SuppressRouteVal)
		d.MaxSuppress = orInt(d.MaxSuppress, c.MaxSuppress)
	}
	return d
}

// BGPGracefulShutdown is "bgp graceful-shutdown all neighbors ...".
type BGPGracefulShutdown struct {
	Neighbors       BGPGracefulShutdownNeighbors `yaml:"neighbors" json:"neighbors"`
	Community       string                       `yaml:"community,omitempty" json:"community,omitempty"`
	LocalPreference int                          `yaml:"local_preference,omitempty" json:"local_preference,omitempty"`
}

// Merge fills the unset shutdown options from current.
func (g BGPGracefulShutdown) Merge(current interface{}) interface{} {
	c, ok := current.(BGPGracefulShutdown)
	if !ok {
		return g
	}
	if g.Neighbors == (BGPGracefulShutdownNeighbors{}) {
		g.Neighbors = c.Neighbors
	}
	if g.Community == "" {
		g.Community = c.Community
	}
	g.LocalPreference = orInt(g.LocalPreference, c.LocalPreference)
	return g
}

// BGPGracefulShutdownNeighbors selects a shutdown timer or immediate activation.
type BGPGracefulShutdownNeighbors struct {
	Time     int  `yaml:"time,omitempty" json:"time,omitempty"`
	Activate bool `yaml:"activate,omitempty" json:"activate,omitempty"`
}

// BGPNopeerupDelay sets exactly one of the nopeerup-delay timers.
type BGPNopeerupDelay struct {
	ColdBoot      int `yaml:"cold_boot,omitempty" json:"cold_boot,omitempty"`
	NSFBoot       int `yaml:"nsf_boot,omitempty" json:"nsf_boot,omitempty"`
	PostBoot      int `yaml:"post_boot,omitempty" json:"post_boot,omitempty"`
	UserInitiated int `yaml:"user_initiated,omitempty" json:"user_initiated,omitempty"`
}

func (n *BGPNopeerupDelay) entries() map[string]int {
	m := map[string]int{}
	if n.ColdBoot != 0 {
		m[NopeerupColdBoot] = n.ColdBoot
	}
	if n.NSFBoot != 0 {
		m[NopeerupNSFBoot] = n.NSFBoot
	}
	if n.PostBoot != 0 {
		m[NopeerupPostBoot] = n.PostBoot
	}
	if n.UserInitiated != 0 {
		m[NopeerupUserInitiated] = n.UserInitiated
	}
	return m
}

// BGPRouterID is either a literal address or the address of an interface.
type BGPRouterID struct {
	AddressValue string `yaml:"address_value,omitempty" json:"address_value,omitempty"`
	Interface    string `yaml:"interface,omitempty" json:"interface,omitempty"`
}

// BGPTimers is "timers bgp <keepalive> <holdtime> [min_holdtime]".
type BGPTimers struct {
	Keepalive   int `yaml:"keepalive" json:"keepalive"`
	Holdtime    int `yaml:"holdtime" json:"holdtime"`
	MinHoldtime int `yaml:"min_holdtime,omitempty" json:"min_holdtime,omitempty"`
}

// Merge keeps the current min_holdtime when none is set and it still fits
// the desired holdtime.
func (t BGPTimers) Merge(current interface{}) interface{} {
	if c, ok := current.(BGPTimers); ok {
		t.MinHoldtime = mergeMinHoldtime(t.MinHoldtime, c.MinHoldtime, t.Holdtime)
	}
	return t
}

// BGPRedistribute holds exactly one redistributed protocol.
type BGPRedistribute struct {
	Connected *BGPRedistributeRoute `yaml:"connected,omitempty" json:"connected,omitempty"`
	Static    *BGPRedistributeRoute `yaml:"static,omitempty" json:"static,omitempty"`
	RIP       *BGPRedistributeRoute `yaml:"rip,omitempty" json:"rip,omitempty"`
	OSPF      *BGPRedistributeOSPF  `yaml:"ospf,omitempty" json:"ospf,omitempty"`
	EIGRP     *BGPRedistributeEIGRP `yaml:"eigrp,omitempty" json:"eigrp,omitempty"`
}

// BGPRedistributeRoute carries the options shared by all protocols.
type BGPRedistributeRoute struct {
	Metric   int    `yaml:"metric,omitempty" json:"metric,omitempty"`
	RouteMap string `yaml:"route_map,omitempty" json:"route_map,omitempty"`
}

// BGPRedistributeOSPF redistributes one OSPF process.
type BGPRedistributeOSPF struct {
	ProcessID int       `yaml:"process_id" json:"process_id"`
	Metric    int       `yaml:"metric,omitempty" json:"metric,omitempty"`
	RouteMap  string    `yaml:"route_map,omitempty" json:"route_map,omitempty"`
	Match     OSPFMatch `yaml:"match,omitempty" json:"match,omitempty"`
}

// OSPFMatch selects which OSPF route types are redistributed.
type OSPFMatch struct {
	Internal     bool `yaml:"internal,omitempty" json:"internal,omitempty"`
	External     bool `yaml:"external,omitempty" json:"external,omitempty"`
	NSSAExternal bool `yaml:"nssa_external,omitempty" json:"nssa_external,omitempty"`
	Type1        bool `yaml:"type_1,omitempty" json:"type_1,omitempty"`
	Type2        bool `yaml:"type_2,omitempty" json:"type_2,omitempty"`
}

// IsZero reports whether no match option is set.
func (m OSPFMatch) IsZero() bool {
	return m == OSPFMatch{}
}

// BGPRedistributeEIGRP redistributes one EIGRP autonomous system.
type BGPRedistributeEIGRP struct {
	ASNumber int    `yaml:"as_number" json:"as_number"`
	Metric   int    `yaml:"metric,omitempty" json:"metric,omitempty"`
	RouteMap string `yaml:"route_map,omitempty" json:"route_map,omitempty"`
}

// RedistributeValue is the attribute value of one redistribute line. The
// protocol and process live in the attribute key ("connected", "ospf 1").
type RedistributeValue struct {
	Metric   int
	RouteMap string
	Match    OSPFMatch
}

// Merge fills metric, route-map and OSPF match from current when unset.
func (v RedistributeValue) Merge(current interface{}) interface{} {
	c, ok := current.(RedistributeValue)
	if !ok {
		return v
	}
	v.Metric = orInt(v.Metric, c.Metric)
	if v.RouteMap == "" {
		v.RouteMap = c.RouteMap
	}
	if v.Match.IsZero() {
		v.Match = c.Match
	}
	return v
}

// BGPNeighbor is a neighbor keyed by NeighborAddress. With IsPeerGroup set
// the entry defines the peer group named by NeighborAddress.
type BGPNeighbor struct {
	NeighborAddress string             `yaml:"neighbor_address" json:"neighbor_address"`
	IsPeerGroup     *bool              `yaml:"is_peer_group,omitempty" json:"is_peer_group,omitempty"`
	RemoteAS        string             `yaml:"remote_as,omitempty" json:"remote_as,omitempty"`
	PeerGroup       string             `yaml:"peer_group,omitempty" json:"peer_group,omitempty"`
	Description     string             `yaml:"description,omitempty" json:"description,omitempty"`
	UpdateSource    string             `yaml:"update_source,omitempty" json:"update_source,omitempty"`
	EBGPMultihop    *BGPEBGPMultihop   `yaml:"ebgp_multihop,omitempty" json:"ebgp_multihop,omitempty"`
	Timers          *BGPNeighborTimers `yaml:"timers,omitempty" json:"timers,omitempty"`
	AIGP            *BGPNeighborAIGP   `yaml:"aigp,omitempty" json:"aigp,omitempty"`
	RouteMaps       []*BGPRouteMap     `yaml:"route_maps,omitempty" json:"route_maps,omitempty"`
	Shutdown        *bool              `yaml:"shutdown,omitempty" json:"shutdown,omitempty"`
}

// BGPEBGPMultihop is "neighbor A ebgp-multihop [hop_count]". A non-zero
// HopCount implies Enable.
type BGPEBGPMultihop struct {
	Enable   bool `yaml:"enable,omitempty" json:"enable,omitempty"`
	HopCount int  `yaml:"hop_count,omitempty" json:"hop_count,omitempty"`
}

// BGPNeighborTimers is "neighbor A timers <interval> <holdtime> [min_holdtime]".
type BGPNeighborTimers struct {
	Interval    int `yaml:"interval" json:"interval"`
	Holdtime    int `yaml:"holdtime" json:"holdtime"`
	MinHoldtime int `yaml:"min_holdtime,omitempty" json:"min_holdtime,omitempty"`
}

// Merge keeps the current min_holdtime when none is set and it still fits
// the desired holdtime.
func (t BGPNeighborTimers) Merge(current interface{}) interface{} {
	if c, ok := current.(BGPNeighborTimers); ok {
		t.MinHoldtime = mergeMinHoldtime(t.MinHoldtime, c.MinHoldtime, t.Holdtime)
	}
	return t
}

func mergeMinHoldtime(want, have, holdtime int) int {
	if want != 0 || (holdtime != 0 && have > holdtime) {
		return want
	}
	return have
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// BGPNeighborAIGP holds the accumulated IGP metric options of a neighbor.
type BGPNeighborAIGP struct {
	Enable *bool        `yaml:"enable,omitempty" json:"enable,omitempty"`
	Send   *BGPAIGPSend `yaml:"send,omitempty" json:"send,omitempty"`
}

// BGPAIGPSend holds "neighbor A aigp send ..." options.
type BGPAIGPSend struct {
	CostCommunity *BGPCostCommunity `yaml:"cost_community,omitempty" json:"cost_community,omitempty"`
	MED           *bool             `yaml:"med,omitempty" json:"med,omitempty"`
}

// BGPCostCommunity renders as "aigp send cost-community <id> poi <igp-cost|pre-bestpath> [transitive]".
type BGPCostCommunity struct {
	ID  int                 `yaml:"id" json:"id"`
	POI BGPCostCommunityPOI `yaml:"poi" json:"poi"`
}

// BGPCostCommunityPOI is the point of insertion of the cost community.
type BGPCostCommunityPOI struct {
	IGPCost     bool `yaml:"igp_cost,omitempty" json:"igp_cost,omitempty"`
	PreBestpath bool `yaml:"pre_bestpath,omitempty" json:"pre_bestpath,omitempty"`
	Transitive  bool `yaml:"transitive,omitempty" json:"transitive,omitempty"`
}

// BGPRouteMap applies a route-map inbound, outbound, or both.
type BGPRouteMap struct {
	Name string `yaml:"name" json:"name"`
	In   bool   `yaml:"in,omitempty" json:"in,omitempty"`
	Out  bool   `yaml:"out,omitempty" json:"out,omitempty"`
}

// Feature implements Document.
func (b *BGPGlobal) Feature() string { return FeatureBGPGlobal }

// Identity implements Document.
func (b *BGPGlobal) Identity() string { return strings.TrimSpace(b.ASNumber) }

// IdentityPath implements Document.
func (b *BGPGlobal) IdentityPath() string { return "as_number" }

// IsEmpty implements Document.
func (b *BGPGlobal) IsEmpty() bool {
	return b.Identity() == "" && len(b.Attrs()) == 0
}

// Attrs implements Document. The order is bgp knobs, timers, auto-summary,
// redistribute entries, then neighbors.
func (b *BGPGlobal) Attrs() []Attr {
	var attrs []Attr
	if o := b.BGP; o != nil {
		if o.RouterID != nil && *o.RouterID != (BGPRouterID{}) {
			rid := *o.RouterID
			rid.Interface = util.NormalizeInterfaceName(rid.Interface)
			attrs = append(attrs, Attr{Kind: KindBGPRouterID, Value: rid})
		}
		attrs = boolAttr(attrs, KindBGPLogNeighborChanges, o.LogNeighborChanges)
		attrs = boolAttr(attrs, KindBGPAdvertiseBestExternal, o.AdvertiseBestExternal)
		attrs = boolAttr(attrs, KindBGPAlwaysCompareMED, o.AlwaysCompareMED)
		if bp := o.BestpathOptions; bp != nil {
			attrs = boolAttr(attrs, KindBGPBestpathCompareRID, bp.CompareRouterID)
			if bp.MED != nil {
				if *bp.MED == (BGPBestpathMED{}) {
					attrs = append(attrs, Attr{Kind: KindBGPBestpathMED, Value: false})
				} else {
					attrs = append(attrs, Attr{Kind: KindBGPBestpathMED, Value: *bp.MED})
				}
			}
		}
		attrs = stringAttr(attrs, KindBGPClusterID, o.ClusterID)
		attrs = boolAttr(attrs, KindBGPDeterministicMED, o.DeterministicMED)
		attrs = boolAttr(attrs, KindBGPGracefulRestart, o.GracefulRestart)
		if o.GracefulShutdown != nil {
			attrs = append(attrs, Attr{Kind: KindBGPGracefulShutdown, Value: *o.GracefulShutdown})
		}
		for _, n := range o.NopeerupDelay {
			if n == nil {
				continue
			}
			for _, key := range []string{NopeerupColdBoot, NopeerupNSFBoot, NopeerupPostBoot, NopeerupUserInitiated} {
				if v, ok := n.entries()[key]; ok {
					attrs = append(attrs, Attr{Kind: KindBGPNopeerupDelay, Key: key, Value: v})
				}
			}
		}
		if o.Dampening != nil {
			attrs = append(attrs, Attr{Kind: KindBGPDampening, Value: *o.Dampening})
		}
		attrs = intAttr(attrs, KindBGPScanTime, o.ScanTime)
		attrs = intAttr(attrs, KindBGPUpdateDelay, o.UpdateDelay)
	}
	if b.Timers != nil {
		attrs = append(attrs, Attr{Kind: KindBGPTimers, Value: *b.Timers})
	}
	attrs = boolAttr(attrs, KindBGPAutoSummary, b.AutoSummary)
	for _, r := range b.Redistribute {
		if r == nil {
			continue
		}
		for _, e := range r.entries() {
			attrs = append(attrs, Attr{Kind: KindBGPRedistribute, Key: e.key, Value: e.value})
		}
	}
	for _, n := range b.Neighbors {
		if n != nil {
			attrs = append(attrs, n.attrs()...)
		}
	}
	return attrs
}

type redistributeEntry struct {
	key   string
	value RedistributeValue
}

func (r *BGPRedistribute) entries() []redistributeEntry {
	var out []redistributeEntry
	add := func(key string, rt *BGPRedistributeRoute) {
		if rt != nil {
			out = append(out, redistributeEntry{key, RedistributeValue{Metric: rt.Metric, RouteMap: rt.RouteMap}})
		}
	}
	add("connected", r.Connected)
	add("static", r.Static)
	add("rip", r.RIP)
	if o := r.OSPF; o != nil {
		out = append(out, redistributeEntry{
			fmt.Sprintf("ospf %d", o.ProcessID),
			RedistributeValue{Metric: o.Metric, RouteMap: o.RouteMap, Match: o.Match},
		})
	}
	if e := r.EIGRP; e != nil {
		out = append(out, redistributeEntry{
			fmt.Sprintf("eigrp %d", e.ASNumber),
			RedistributeValue{Metric: e.Metric, RouteMap: e.RouteMap},
		})
	}
	return out
}

func (n *BGPNeighbor) attrs() []Attr {
	key := strings.TrimSpace(n.NeighborAddress)
	var attrs []Attr
	add := func(kind string, v interface{}) {
		attrs = append(attrs, Attr{Kind: kind, Key: key, Value: v})
	}
	if n.IsPeerGroup != nil {
		add(KindNeighborIsPeerGroup, *n.IsPeerGroup)
	}
	if n.RemoteAS != "" {
		add(KindNeighborRemoteAS, n.RemoteAS)
	}
	if n.PeerGroup != "" {
		add(KindNeighborPeerGroup, n.PeerGroup)
	}
	if d := strings.TrimSpace(n.Description); d != "" {
		add(KindNeighborDescription, d)
	}
	if n.UpdateSource != "" {
		add(KindNeighborUpdateSource, util.NormalizeInterfaceName(n.UpdateSource))
	}
	if m := n.EBGPMultihop; m != nil {
		if m.Enable || m.HopCount != 0 {
			add(KindNeighborEBGPMultihop, m.HopCount)
		} else {
			add(KindNeighborEBGPMultihop, false)
		}
	}
	if n.Timers != nil {
		add(KindNeighborTimers, *n.Timers)
	}
	if a := n.AIGP; a != nil {
		if a.Enable != nil {
			add(KindNeighborAIGP, *a.Enable)
		}
		if s := a.Send; s != nil {
			if s.CostCommunity != nil {
				add(KindNeighborCostCommunity, *s.CostCommunity)
			}
			if s.MED != nil {
				add(KindNeighborAIGPSendMED, *s.MED)
			}
		}
	}
	for _, rm := range n.RouteMaps {
		if rm == nil {
			continue
		}
		if rm.In {
			add(KindNeighborRouteMapIn, rm.Name)
		}
		if rm.Out {
			add(KindNeighborRouteMapOut, rm.Name)
		}
	}
	if n.Shutdown != nil {
		add(KindNeighborShutdown, *n.Shutdown)
	}
	return attrs
}

// Validate implements Document.
func (b *BGPGlobal) Validate() error {
	v := &util.ValidationBuilder{}

	asn := b.Identity()
	if asn == "" {
		v.Schema(len(b.Attrs()) == 0, "as_number", "required when any BGP configuration is given")
	} else if err := util.ValidateASN(asn); err != nil {
		v.AddError(util.NewSchemaError("as_number", "%v", err))
	}

	if o := b.BGP; o != nil {
		b.validateOptions(v, o)
	}
	if t := b.Timers; t != nil {
		validateHoldTimers(v, "timers", t.Keepalive, t.Holdtime, t.MinHoldtime)
	}
	b.validateRedistribute(v)

	seen := map[string]bool{}
	for i, n := range b.Neighbors {
		if n == nil {
			continue
		}
		addr := strings.TrimSpace(n.NeighborAddress)
		path := fmt.Sprintf("neighbor[%d]", i)
		if addr == "" {
			v.AddError(util.NewSchemaError(path+".neighbor_address", "required"))
			continue
		}
		if strings.ContainsAny(addr, " \t") {
			v.AddError(util.NewSchemaError(path+".neighbor_address", "must be a single token, got %q", addr))
			continue
		}
		if seen[addr] {
			v.AddError(util.NewSchemaError("neighbor["+addr+"]", "duplicate neighbor_address"))
			continue
		}
		seen[addr] = true
		validateNeighbor(v, "neighbor["+addr+"]", n)
	}

	return v.Build()
}

func (b *BGPGlobal) validateOptions(v *util.ValidationBuilder, o *BGPOptions) {
	if r := o.RouterID; r != nil {
		v.Conflict(r.AddressValue != "", r.Interface != "", "bgp.router_id", "address_value", "interface")
		if r.AddressValue != "" {
			v.Schema(util.IsValidIPv4(r.AddressValue), "bgp.router_id.address_value",
				"must be an IPv4 address, got %q", r.AddressValue)
		}
		v.Schema(*r != (BGPRouterID{}), "bgp.router_id", "one of address_value or interface is required")
	}
	if d := o.Dampening; d != nil {
		v.Conflict(d.RouteMap != "", d.hasParams(), "bgp.dampening", "route_map", "penalty_half_time/reuse_route_val/suppress_route_val/max_suppress")
		if d.hasParams() && d.RouteMap == "" {
			v.Schema(util.InRange(d.PenaltyHalfTime, 1, 45), "bgp.dampening.penalty_half_time", "must be 1-45, got %d", d.PenaltyHalfTime)
			v.Schema(util.InRange(d.ReuseRouteVal, 1, 20000), "bgp.dampening.reuse_route_val", "must be 1-20000, got %d", d.ReuseRouteVal)
			v.Schema(util.InRange(d.SuppressRouteVal, 1, 20000), "bgp.dampening.suppress_route_val", "must be 1-20000, got %d", d.SuppressRouteVal)
			v.Schema(util.InRange(d.MaxSuppress, 1, 255), "bgp.dampening.max_suppress", "must be 1-255, got %d", d.MaxSuppress)
		}
	}
	if g := o.GracefulShutdown; g != nil {
		v.Conflict(g.Neighbors.Time != 0, g.Neighbors.Activate, "bgp.graceful_shutdown.neighbors", "time", "activate")
		v.Schema(g.Neighbors.Time != 0 || g.Neighbors.Activate, "bgp.graceful_shutdown.neighbors",
			"one of time or activate is required")
		if g.Neighbors.Time != 0 {
			v.Schema(util.InRange(g.Neighbors.Time, 1, 65535), "bgp.graceful_shutdown.neighbors.time",
				"must be 1-65535, got %d", g.Neighbors.Time)
		}
		v.Schema(g.LocalPreference >= 0, "bgp.graceful_shutdown.local_preference", "must not be negative")
		v.Schema(!strings.ContainsAny(g.Community, " \t"), "bgp.graceful_shutdown.community", "must be a single token")
	}
	seen := map[string]bool{}
	for i, n := range o.NopeerupDelay {
		if n == nil {
			continue
		}
		entries := n.entries()
		path := fmt.Sprintf("bgp.nopeerup_delay[%d]", i)
		if len(entries) != 1 {
			v.AddError(util.NewSchemaError(path, "exactly one of cold_boot, nsf_boot, post_boot, user_initiated is required"))
			continue
		}
		for key, delay := range entries {
			if seen[key] {
				v.AddError(util.NewSchemaError("bgp.nopeerup_delay["+key+"]", "duplicate entry"))
			}
			seen[key] = true
			v.Schema(util.InRange(delay, 1, 3600), path+"."+key, "must be 1-3600, got %d", delay)
		}
	}
	if o.ScanTime != 0 {
		v.Schema(util.InRange(o.ScanTime, 5, 60), "bgp.scan_time", "must be 5-60, got %d", o.ScanTime)
	}
	if o.UpdateDelay != 0 {
		v.Schema(util.InRange(o.UpdateDelay, 1, 3600), "bgp.update_delay", "must be 1-3600, got %d", o.UpdateDelay)
	}
	v.Schema(!strings.ContainsAny(o.ClusterID, " \t"), "bgp.cluster_id", "must be a single token")
}

func (b *BGPGlobal) validateRedistribute(v *util.ValidationBuilder) {
	seen := map[string]RedistributeValue{}
	for i, r := range b.Redistribute {
		if r == nil {
			continue
		}
		path := fmt.Sprintf("redistribute[%d]", i)
		entries := r.entries()
		if len(entries) != 1 {
			v.AddError(util.NewSchemaError(path, "exactly one protocol per entry is required, got %d", len(entries)))
			continue
		}
		if o := r.OSPF; o != nil {
			v.Schema(util.InRange(o.ProcessID, 1, 65535), path+".ospf.process_id", "must be 1-65535, got %d", o.ProcessID)
			v.Schema(!(o.Match.Type1 || o.Match.Type2) || o.Match.External || o.Match.NSSAExternal,
				path+".ospf.match", "type_1/type_2 require external or nssa_external")
		}
		if e := r.EIGRP; e != nil {
			v.Schema(util.InRange(e.ASNumber, 1, 65535), path+".eigrp.as_number", "must be 1-65535, got %d", e.ASNumber)
		}
		e := entries[0]
		v.Schema(e.value.Metric >= 0, path+".metric", "must not be negative")
		if prev, ok := seen[e.key]; ok {
			if prev != e.value {
				v.AddError(util.NewConflictError("redistribute["+e.key+"]", "same protocol redistributed with different options",
					describeRedistribute(prev), describeRedistribute(e.value)))
			} else {
				v.AddError(util.NewSchemaError("redistribute["+e.key+"]", "duplicate entry"))
			}
			continue
		}
		seen[e.key] = e.value
	}
}

func describeRedistribute(r RedistributeValue) string {
	parts := []string{"metric " + strconv.Itoa(r.Metric)}
	if r.RouteMap != "" {
		parts = append(parts, "route-map "+r.RouteMap)
	}
	return strings.Join(parts, " ")
}

func validateNeighbor(v *util.ValidationBuilder, path string, n *BGPNeighbor) {
	if n.RemoteAS != "" {
		if err := util.ValidateASN(n.RemoteAS); err != nil {
			v.AddError(util.NewSchemaError(path+".remote_as", "%v", err))
		}
	}
	v.Schema(!strings.ContainsAny(n.PeerGroup, " \t"), path+".peer_group", "must be a single token")
	if n.IsPeerGroup != nil && *n.IsPeerGroup && n.PeerGroup != "" {
		v.AddError(util.NewConflictError(path, "a peer group cannot be a member of another peer group",
			"is_peer_group", "peer_group"))
	}
	v.Schema(!strings.ContainsAny(n.UpdateSource, " \t"), path+".update_source", "must be a single token")
	if m := n.EBGPMultihop; m != nil && m.HopCount != 0 {
		v.Schema(util.InRange(m.HopCount, 1, 255), path+".ebgp_multihop.hop_count", "must be 1-255, got %d", m.HopCount)
	}
	if t := n.Timers; t != nil {
		validateHoldTimers(v, path+".timers", t.Interval, t.Holdtime, t.MinHoldtime)
	}
	if a := n.AIGP; a != nil && a.Send != nil && a.Send.CostCommunity != nil {
		cc := a.Send.CostCommunity
		v.Schema(util.InRange(cc.ID, 0, 255), path+".aigp.send.cost_community.id", "must be 0-255, got %d", cc.ID)
		v.Conflict(cc.POI.IGPCost, cc.POI.PreBestpath, path+".aigp.send.cost_community.poi", "igp_cost", "pre_bestpath")
		v.Schema(cc.POI.IGPCost || cc.POI.PreBestpath, path+".aigp.send.cost_community.poi",
			"one of igp_cost or pre_bestpath is required")
	}
	var in, out string
	for i, rm := range n.RouteMaps {
		if rm == nil {
			continue
		}
		rmPath := fmt.Sprintf("%s.route_maps[%d]", path, i)
		if rm.Name == "" || strings.ContainsAny(rm.Name, " \t") {
			v.AddError(util.NewSchemaError(rmPath+".name", "must be a single non-empty token"))
		}
		if !rm.In && !rm.Out {
			v.AddError(util.NewSchemaError(rmPath, "one of in or out is required"))
		}
		if rm.In {
			if in != "" {
				v.AddError(util.NewConflictError(path+".route_maps.in", "only one inbound route-map per neighbor", in, rm.Name))
			}
			in = rm.Name
		}
		if rm.Out {
			if out != "" {
				v.AddError(util.NewConflictError(path+".route_maps.out", "only one outbound route-map per neighbor", out, rm.Name))
			}
			out = rm.Name
		}
	}
}

func validateHoldTimers(v *util.ValidationBuilder, path string, keepalive, holdtime, minHoldtime int) {
	v.Schema(util.InRange(keepalive, 0, 65535), path, "keepalive must be 0-65535, got %d", keepalive)
	v.Schema(holdtime == 0 || util.InRange(holdtime, 3, 65535), path, "holdtime must be 0 or 3-65535, got %d", holdtime)
	if minHoldtime != 0 {
		v.Schema(util.InRange(minHoldtime, 3, 65535), path, "min_holdtime must be 0 or 3-65535, got %d", minHoldtime)
		v.Schema(holdtime == 0 || minHoldtime <= holdtime, path, "min_holdtime %d exceeds holdtime %d", minHoldtime, holdtime)
	}
}

// BuildBGPGlobal rebuilds a BGPGlobal from its AS number and attributes.
// Absence assertions are dropped.
func BuildBGPGlobal(identity string, attrs []Attr) (*BGPGlobal, error) {
	b := &BGPGlobal{ASNumber: identity}
	neighbors := map[string]*BGPNeighbor{}
	opts := func() *BGPOptions {
		if b.BGP == nil {
			b.BGP = &BGPOptions{}
		}
		return b.BGP
	}
	neighbor := func(addr string) *BGPNeighbor {
		n, ok := neighbors[addr]
		if !ok {
			n = &BGPNeighbor{NeighborAddress: addr}
			neighbors[addr] = n
			b.Neighbors = append(b.Neighbors, n)
		}
		return n
	}
	aigp := func(n *BGPNeighbor) *BGPNeighborAIGP {
		if n.AIGP == nil {
			n.AIGP = &BGPNeighborAIGP{}
		}
		return n.AIGP
	}
	aigpSend := func(n *BGPNeighbor) *BGPAIGPSend {
		a := aigp(n)
		if a.Send == nil {
			a.Send = &BGPAIGPSend{}
		}
		return a.Send
	}

	for _, a := range attrs {
		if a.Absent() {
			continue
		}
		var err error
		switch a.Kind {
		case KindBGPRouterID:
			v, ok := a.Value.(BGPRouterID)
			if !ok {
				return nil, typeError(a, v)
			}
			opts().RouterID = &v
		case KindBGPLogNeighborChanges:
			opts().LogNeighborChanges, err = attrBool(a)
		case KindBGPAdvertiseBestExternal:
			opts().AdvertiseBestExternal, err = attrBool(a)
		case KindBGPAlwaysCompareMED:
			opts().AlwaysCompareMED, err = attrBool(a)
		case KindBGPBestpathCompareRID, KindBGPBestpathMED:
			o := opts()
			if o.BestpathOptions == nil {
				o.BestpathOptions = &BGPBestpathOptions{}
			}
			if a.Kind == KindBGPBestpathCompareRID {
				o.BestpathOptions.CompareRouterID, err = attrBool(a)
				break
			}
			v, ok := a.Value.(BGPBestpathMED)
			if !ok {
				return nil, typeError(a, v)
			}
			o.BestpathOptions.MED = &v
		case KindBGPClusterID:
			opts().ClusterID, err = attrString(a)
		case KindBGPDeterministicMED:
			opts().DeterministicMED, err = attrBool(a)
		case KindBGPGracefulRestart:
			opts().GracefulRestart, err = attrBool(a)
		case KindBGPGracefulShutdown:
			v, ok := a.Value.(BGPGracefulShutdown)
			if !ok {
				return nil, typeError(a, v)
			}
			opts().GracefulShutdown = &v
		case KindBGPNopeerupDelay:
			delay, err := attrInt(a)
			if err != nil {
				return nil, err
			}
			n := &BGPNopeerupDelay{}
			switch a.Key {
			case NopeerupColdBoot:
				n.ColdBoot = delay
			case NopeerupNSFBoot:
				n.NSFBoot = delay
			case NopeerupPostBoot:
				n.PostBoot = delay
			case NopeerupUserInitiated:
				n.UserInitiated = delay
			default:
				return nil, fmt.Errorf("%s: unknown nopeerup-delay %q", a.Path(), a.Key)
			}
			opts().NopeerupDelay = append(opts().NopeerupDelay, n)
		case KindBGPDampening:
			v, ok := a.Value.(BGPDampening)
			if !ok {
				return nil, typeError(a, v)
			}
			opts().Dampening = &v
		case KindBGPScanTime:
			opts().ScanTime, err = attrInt(a)
		case KindBGPUpdateDelay:
			opts().UpdateDelay, err = attrInt(a)
		case KindBGPTimers:
			v, ok := a.Value.(BGPTimers)
			if !ok {
				return nil, typeError(a, v)
			}
			b.Timers = &v
		case KindBGPAutoSummary:
			b.AutoSummary, err = attrBool(a)
		case KindBGPRedistribute:
			r, rerr := buildRedistribute(a)
			if rerr != nil {
				return nil, rerr
			}
			b.Redistribute = append(b.Redistribute, r)
		case KindNeighborIsPeerGroup:
			neighbor(a.Key).IsPeerGroup, err = attrBool(a)
		case KindNeighborRemoteAS:
			neighbor(a.Key).RemoteAS, err = attrString(a)
		case KindNeighborPeerGroup:
			neighbor(a.Key).PeerGroup, err = attrString(a)
		case KindNeighborDescription:
			neighbor(a.Key).Description, err = attrString(a)
		case KindNeighborUpdateSource:
			neighbor(a.Key).UpdateSource, err = attrString(a)
		case KindNeighborEBGPMultihop:
			hops, herr := attrInt(a)
			if herr != nil {
				return nil, herr
			}
			neighbor(a.Key).EBGPMultihop = &BGPEBGPMultihop{Enable: true, HopCount: hops}
		case KindNeighborTimers:
			v, ok := a.Value.(BGPNeighborTimers)
			if !ok {
				return nil, typeError(a, v)
			}
			neighbor(a.Key).Timers = &v
		case KindNeighborAIGP:
			aigp(neighbor(a.Key)).Enable, err = attrBool(a)
		case KindNeighborCostCommunity:
			v, ok := a.Value.(BGPCostCommunity)
			if !ok {
				return nil, typeError(a, v)
			}
			aigpSend(neighbor(a.Key)).CostCommunity = &v
		case KindNeighborAIGPSendMED:
			aigpSend(neighbor(a.Key)).MED, err = attrBool(a)
		case KindNeighborRouteMapIn, KindNeighborRouteMapOut:
			name, nerr := attrString(a)
			if nerr != nil {
				return nil, nerr
			}
			n := neighbor(a.Key)
			n.RouteMaps = append(n.RouteMaps, &BGPRouteMap{
				Name: name,
				In:   a.Kind == KindNeighborRouteMapIn,
				Out:  a.Kind == KindNeighborRouteMapOut,
			})
		case KindNeighborShutdown:
			neighbor(a.Key).Shutdown, err = attrBool(a)
		default:
			return nil, fmt.Errorf("%s: unknown attribute kind %q", FeatureBGPGlobal, a.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func buildRedistribute(a Attr) (*BGPRedistribute, error) {
	v, ok := a.Value.(RedistributeValue)
	if !ok {
		return nil, typeError(a, v)
	}
	route := &BGPRedistributeRoute{Metric: v.Metric, RouteMap: v.RouteMap}
	proto, arg, _ := strings.Cut(a.Key, " ")
	switch proto {
	case "connected":
		return &BGPRedistribute{Connected: route}, nil
	case "static":
		return &BGPRedistribute{Static: route}, nil
	case "rip":
		return &BGPRedistribute{RIP: route}, nil
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid process in %q", a.Path(), a.Key)
	}
	switch proto {
	case "ospf":
		return &BGPRedistribute{OSPF: &BGPRedistributeOSPF{
			ProcessID: id, Metric: v.Metric, RouteMap: v.RouteMap, Match: v.Match,
		}}, nil
	case "eigrp":
		return &BGPRedistribute{EIGRP: &BGPRedistributeEIGRP{
			ASNumber: id, Metric: v.Metric, RouteMap: v.RouteMap,
		}}, nil
	}
	return nil, fmt.Errorf("%s: unknown protocol %q", a.Path(), proto)
}

func typeError(a Attr, want interface{}) error {
	return fmt.Errorf("%s: expected %T, got %T", a.Path(), want, a.Value)
}
