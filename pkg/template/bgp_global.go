package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/amalmborg97/cisco.ios/pkg/model"
)

// Rule groups of bgp_global, in emitted order.
const (
	bgpGroupOptions = iota
	bgpGroupTimers
	bgpGroupAutoSummary
	bgpGroupRedistribute
	bgpGroupPeerGroup
	bgpGroupNeighbor
)

// nopeerupTokens maps nopeerup-delay keys to their CLI keywords.
var nopeerupTokens = map[string]string{
	model.NopeerupColdBoot:      "cold-boot",
	model.NopeerupNSFBoot:       "nsf-boot",
	model.NopeerupPostBoot:      "post-boot",
	model.NopeerupUserInitiated: "user-initiated",
}

func init() {
	register(&Template{
		Feature: model.FeatureBGPGlobal,
		Scope:   regexp.MustCompile(`^router bgp (?P<identity>\S+)$`),
		Context: func(identity string) string { return "router bgp " + identity },
		Skip: []*regexp.Regexp{
			regexp.MustCompile(`^address-family\s`),
			regexp.MustCompile(`^exit-address-family$`),
			regexp.MustCompile(`^template\s`),
		},
		Rules: bgpRules(),
	})
}

func bgpRules() []*Rule {
	rank := 0
	next := func() int { rank++; return rank }

	rules := []*Rule{
		{
			Kind:   model.KindBGPRouterID,
			Regexp: regexp.MustCompile(`^bgp router-id (?:interface (?P<interface>\S+)|(?P<address>\S+))$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				return "", model.BGPRouterID{AddressValue: m["address"], Interface: m["interface"]}, nil
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.BGPRouterID)
				if v.Interface != "" {
					return "bgp router-id interface " + v.Interface
				}
				return "bgp router-id " + v.AddressValue
			},
		},
		flagRule(model.KindBGPLogNeighborChanges, "bgp log-neighbor-changes"),
		flagRule(model.KindBGPAdvertiseBestExternal, "bgp advertise-best-external"),
		flagRule(model.KindBGPAlwaysCompareMED, "bgp always-compare-med"),
		flagRule(model.KindBGPBestpathCompareRID, "bgp bestpath compare-routerid"),
		{
			Kind:   model.KindBGPBestpathMED,
			Regexp: regexp.MustCompile(`^bgp bestpath med(?P<confed> confed)?(?P<worst> missing-as-worst)?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				v := model.BGPBestpathMED{Confed: m["confed"] != "", MissingAsWorst: m["worst"] != ""}
				if v == (model.BGPBestpathMED{}) {
					return "", nil, fmt.Errorf("bestpath med needs confed or missing-as-worst")
				}
				return "", v, nil
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.BGPBestpathMED)
				line := "bgp bestpath med"
				if v.Confed {
					line += " confed"
				}
				if v.MissingAsWorst {
					line += " missing-as-worst"
				}
				return line
			},
		},
		{
			Kind:   model.KindBGPClusterID,
			Regexp: regexp.MustCompile(`^bgp cluster-id (?P<id>\S+)$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				return "", m["id"], nil
			},
			Render: func(a model.Attr) string { return "bgp cluster-id " + stringValue(a) },
		},
		flagRule(model.KindBGPDeterministicMED, "bgp deterministic-med"),
		flagRule(model.KindBGPGracefulRestart, "bgp graceful-restart"),
		{
			Kind: model.KindBGPGracefulShutdown,
			Regexp: regexp.MustCompile(`^bgp graceful-shutdown all neighbors (?:(?P<activate>activate)|(?P<time>\d+))` +
				`(?: local-preference (?P<lp>\d+))?(?: community (?P<community>\S+))?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				t, err := atoi(m, "time")
				if err != nil {
					return "", nil, err
				}
				lp, err := atoi(m, "lp")
				if err != nil {
					return "", nil, err
				}
				return "", model.BGPGracefulShutdown{
					Neighbors:       model.BGPGracefulShutdownNeighbors{Time: t, Activate: m["activate"] != ""},
					Community:       m["community"],
					LocalPreference: lp,
				}, nil
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.BGPGracefulShutdown)
				line := "bgp graceful-shutdown all neighbors"
				if v.Neighbors.Activate {
					line += " activate"
				} else {
					line += fmt.Sprintf(" %d", v.Neighbors.Time)
				}
				if v.LocalPreference != 0 {
					line += fmt.Sprintf(" local-preference %d", v.LocalPreference)
				}
				if v.Community != "" {
					line += " community " + v.Community
				}
				return line
			},
		},
		{
			Kind:   model.KindBGPNopeerupDelay,
			Regexp: regexp.MustCompile(`^bgp nopeerup-delay (?P<kind>cold-boot|nsf-boot|post-boot|user-initiated) (?P<delay>\d+)$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				d, err := atoi(m, "delay")
				return strings.ReplaceAll(m["kind"], "-", "_"), d, err
			},
			Render: func(a model.Attr) string {
				return fmt.Sprintf("bgp nopeerup-delay %s %d", nopeerupTokens[a.Key], intValue(a))
			},
		},
		{
			Kind: model.KindBGPDampening,
			Regexp: regexp.MustCompile(`^bgp dampening(?: route-map (?P<rm>\S+)|` +
				` (?P<half>\d+) (?P<reuse>\d+) (?P<suppress>\d+) (?P<max>\d+))?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				v := model.BGPDampening{RouteMap: m["rm"]}
				var err error
				for _, f := range []struct {
					name string
					dst  *int
				}{
					{"half", &v.PenaltyHalfTime},
					{"reuse", &v.ReuseRouteVal},
					{"suppress", &v.SuppressRouteVal},
					{"max", &v.MaxSuppress},
				} {
					if *f.dst, err = atoi(m, f.name); err != nil {
						return "", nil, err
					}
				}
				return "", v, nil
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.BGPDampening)
				switch {
				case v.RouteMap != "":
					return "bgp dampening route-map " + v.RouteMap
				case v.PenaltyHalfTime != 0:
					return fmt.Sprintf("bgp dampening %d %d %d %d",
						v.PenaltyHalfTime, v.ReuseRouteVal, v.SuppressRouteVal, v.MaxSuppress)
				}
				return "bgp dampening"
			},
			Replace: true,
		},
		intRule(model.KindBGPScanTime, "bgp scan-time"),
		intRule(model.KindBGPUpdateDelay, "bgp update-delay"),
	}
	for _, r := range rules {
		r.Group, r.Rank = bgpGroupOptions, next()
	}

	rules = append(rules,
		&Rule{
			Kind:   model.KindBGPTimers,
			Group:  bgpGroupTimers,
			Regexp: regexp.MustCompile(`^timers bgp (?P<keepalive>\d+) (?P<holdtime>\d+)(?: (?P<min>\d+))?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				var v model.BGPTimers
				var err error
				if v.Keepalive, err = atoi(m, "keepalive"); err != nil {
					return "", nil, err
				}
				if v.Holdtime, err = atoi(m, "holdtime"); err != nil {
					return "", nil, err
				}
				v.MinHoldtime, err = atoi(m, "min")
				return "", v, err
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.BGPTimers)
				return "timers bgp " + holdTimers(v.Keepalive, v.Holdtime, v.MinHoldtime)
			},
		},
		&Rule{
			Kind:   model.KindBGPAutoSummary,
			Group:  bgpGroupAutoSummary,
			Regexp: regexp.MustCompile(`^auto-summary$`),
			Parse:  flag,
			Render: func(model.Attr) string { return "auto-summary" },
		},
		&Rule{
			Kind:  model.KindBGPRedistribute,
			Group: bgpGroupRedistribute,
			Regexp: regexp.MustCompile(`^redistribute (?P<proto>connected|static|rip|ospf \d+|eigrp \d+)` +
				`(?: metric (?P<metric>\d+))?` +
				`(?: match(?P<internal> internal)?(?P<external> external)?(?P<nssa> nssa-external)?(?P<type1> 1)?(?P<type2> 2)?)?` +
				`(?: route-map (?P<rm>\S+))?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				metric, err := atoi(m, "metric")
				if err != nil {
					return "", nil, err
				}
				return m["proto"], model.RedistributeValue{
					Metric:   metric,
					RouteMap: m["rm"],
					Match: model.OSPFMatch{
						Internal:     m["internal"] != "",
						External:     m["external"] != "",
						NSSAExternal: m["nssa"] != "",
						Type1:        m["type1"] != "",
						Type2:        m["type2"] != "",
					},
				}, nil
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.RedistributeValue)
				line := "redistribute " + a.Key
				if v.Metric != 0 {
					line += fmt.Sprintf(" metric %d", v.Metric)
				}
				if !v.Match.IsZero() {
					line += " match"
					for _, tok := range []struct {
						set  bool
						word string
					}{
						{v.Match.Internal, "internal"},
						{v.Match.External, "external"},
						{v.Match.NSSAExternal, "nssa-external"},
						{v.Match.Type1, "1"},
						{v.Match.Type2, "2"},
					} {
						if tok.set {
							line += " " + tok.word
						}
					}
				}
				if v.RouteMap != "" {
					line += " route-map " + v.RouteMap
				}
				return line
			},
			Replace: true,
		},
	)

	peerGroup := neighborFlagRule(model.KindNeighborIsPeerGroup, "peer-group")
	peerGroup.Group = bgpGroupPeerGroup
	rules = append(rules, peerGroup)

	rank = 0
	neighbor := []*Rule{
		neighborStringRule(model.KindNeighborRemoteAS, "remote-as"),
		neighborStringRule(model.KindNeighborPeerGroup, "peer-group"),
		{
			Kind:   model.KindNeighborDescription,
			Regexp: regexp.MustCompile(`^neighbor (?P<addr>\S+) description (?P<text>.+)$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				return m["addr"], strings.TrimSpace(m["text"]), nil
			},
			Render: func(a model.Attr) string {
				return fmt.Sprintf("neighbor %s description %s", a.Key, stringValue(a))
			},
		},
		neighborStringRule(model.KindNeighborUpdateSource, "update-source"),
		{
			Kind:   model.KindNeighborEBGPMultihop,
			Regexp: regexp.MustCompile(`^neighbor (?P<addr>\S+) ebgp-multihop(?: (?P<hops>\d+))?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				hops, err := atoi(m, "hops")
				return m["addr"], hops, err
			},
			Render: func(a model.Attr) string {
				if hops := intValue(a); hops != 0 {
					return fmt.Sprintf("neighbor %s ebgp-multihop %d", a.Key, hops)
				}
				return fmt.Sprintf("neighbor %s ebgp-multihop", a.Key)
			},
		},
		{
			Kind:   model.KindNeighborTimers,
			Regexp: regexp.MustCompile(`^neighbor (?P<addr>\S+) timers (?P<interval>\d+) (?P<holdtime>\d+)(?: (?P<min>\d+))?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				var v model.BGPNeighborTimers
				var err error
				if v.Interval, err = atoi(m, "interval"); err != nil {
					return "", nil, err
				}
				if v.Holdtime, err = atoi(m, "holdtime"); err != nil {
					return "", nil, err
				}
				v.MinHoldtime, err = atoi(m, "min")
				return m["addr"], v, err
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.BGPNeighborTimers)
				return fmt.Sprintf("neighbor %s timers %s", a.Key, holdTimers(v.Interval, v.Holdtime, v.MinHoldtime))
			},
		},
		neighborFlagRule(model.KindNeighborAIGP, "aigp"),
		{
			Kind: model.KindNeighborCostCommunity,
			Regexp: regexp.MustCompile(`^neighbor (?P<addr>\S+) aigp send cost-community (?P<id>\d+)` +
				` poi (?P<poi>igp-cost|pre-bestpath)(?P<transitive> transitive)?$`),
			Parse: func(m map[string]string) (string, interface{}, error) {
				id, err := atoi(m, "id")
				return m["addr"], model.BGPCostCommunity{
					ID: id,
					POI: model.BGPCostCommunityPOI{
						IGPCost:     m["poi"] == "igp-cost",
						PreBestpath: m["poi"] == "pre-bestpath",
						Transitive:  m["transitive"] != "",
					},
				}, err
			},
			Render: func(a model.Attr) string {
				v := a.Value.(model.BGPCostCommunity)
				poi := "igp-cost"
				if v.POI.PreBestpath {
					poi = "pre-bestpath"
				}
				line := fmt.Sprintf("neighbor %s aigp send cost-community %d poi %s", a.Key, v.ID, poi)
				if v.POI.Transitive {
					line += " transitive"
				}
				return line
			},
		},
		neighborFlagRule(model.KindNeighborAIGPSendMED, "aigp send med"),
		neighborRouteMapRule(model.KindNeighborRouteMapIn, "in"),
		neighborRouteMapRule(model.KindNeighborRouteMapOut, "out"),
		neighborFlagRule(model.KindNeighborShutdown, "shutdown"),
	}
	for _, r := range neighbor {
		r.Group, r.Rank = bgpGroupNeighbor, next()
	}
	return append(rules, neighbor...)
}

func holdTimers(keepalive, holdtime, minHoldtime int) string {
	s := fmt.Sprintf("%d %d", keepalive, holdtime)
	if minHoldtime != 0 {
		s += fmt.Sprintf(" %d", minHoldtime)
	}
	return s
}

func flagRule(kind, line string) *Rule {
	return &Rule{
		Kind:   kind,
		Regexp: regexp.MustCompile("^" + regexp.QuoteMeta(line) + "$"),
		Parse:  flag,
		Render: func(model.Attr) string { return line },
	}
}

func intRule(kind, prefix string) *Rule {
	return &Rule{
		Kind:   kind,
		Regexp: regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + ` (?P<v>\d+)$`),
		Parse: func(m map[string]string) (string, interface{}, error) {
			v, err := atoi(m, "v")
			return "", v, err
		},
		Render: func(a model.Attr) string { return fmt.Sprintf("%s %d", prefix, intValue(a)) },
	}
}

func neighborStringRule(kind, keyword string) *Rule {
	return &Rule{
		Kind:   kind,
		Regexp: regexp.MustCompile(`^neighbor (?P<addr>\S+) ` + regexp.QuoteMeta(keyword) + ` (?P<v>\S+)$`),
		Parse: func(m map[string]string) (string, interface{}, error) {
			return m["addr"], m["v"], nil
		},
		Render: func(a model.Attr) string {
			return fmt.Sprintf("neighbor %s %s %s", a.Key, keyword, stringValue(a))
		},
	}
}

func neighborFlagRule(kind, keyword string) *Rule {
	return &Rule{
		Kind:   kind,
		Regexp: regexp.MustCompile(`^neighbor (?P<addr>\S+) ` + regexp.QuoteMeta(keyword) + `$`),
		Parse: func(m map[string]string) (string, interface{}, error) {
			return m["addr"], true, nil
		},
		Render: func(a model.Attr) string {
			return fmt.Sprintf("neighbor %s %s", a.Key, keyword)
		},
	}
}

func neighborRouteMapRule(kind, direction string) *Rule {
	return &Rule{
		Kind:   kind,
		Regexp: regexp.MustCompile(`^neighbor (?P<addr>\S+) route-map (?P<name>\S+) ` + direction + `$`),
		Parse: func(m map[string]string) (string, interface{}, error) {
			return m["addr"], m["name"], nil
		},
		Render: func(a model.Attr) string {
			return fmt.Sprintf("neighbor %s route-map %s %s", a.Key, stringValue(a), direction)
		},
	}
}
