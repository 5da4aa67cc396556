package commands

import (
	"reflect"
	"strings"
	"testing"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/template"
)

func boolp(b bool) *bool { return &b }

func fixtureBGP() *model.BGPGlobal {
	return &model.BGPGlobal{
		ASNumber: "65000",
		BGP: &model.BGPOptions{
			Dampening: &model.BGPDampening{PenaltyHalfTime: 1, ReuseRouteVal: 1, SuppressRouteVal: 1, MaxSuppress: 1},
			GracefulShutdown: &model.BGPGracefulShutdown{
				Neighbors:       model.BGPGracefulShutdownNeighbors{Time: 50},
				Community:       "100",
				LocalPreference: 100,
			},
			LogNeighborChanges: boolp(true),
			NopeerupDelay:      []*model.BGPNopeerupDelay{{PostBoot: 10}},
		},
		Neighbors: []*model.BGPNeighbor{{
			NeighborAddress: "198.51.100.1",
			Description:     "merge neighbor",
			RemoteAS:        "100",
			AIGP: &model.BGPNeighborAIGP{Send: &model.BGPAIGPSend{CostCommunity: &model.BGPCostCommunity{
				ID:  100,
				POI: model.BGPCostCommunityPOI{IGPCost: true, Transitive: true},
			}}},
			RouteMaps: []*model.BGPRouteMap{{Name: "test-route-out", Out: true}},
		}},
		Redistribute: []*model.BGPRedistribute{{Connected: &model.BGPRedistributeRoute{Metric: 10}}},
		Timers:       &model.BGPTimers{Keepalive: 100, Holdtime: 200},
	}
}

var fixtureCommands = []string{
	"router bgp 65000",
	"bgp log-neighbor-changes",
	"bgp graceful-shutdown all neighbors 50 local-preference 100 community 100",
	"bgp nopeerup-delay post-boot 10",
	"bgp dampening 1 1 1 1",
	"timers bgp 100 200",
	"redistribute connected metric 10",
	"neighbor 198.51.100.1 remote-as 100",
	"neighbor 198.51.100.1 description merge neighbor",
	"neighbor 198.51.100.1 aigp send cost-community 100 poi igp-cost transitive",
	"neighbor 198.51.100.1 route-map test-route-out out",
}

func bgpTemplate(t *testing.T) *template.Template {
	t.Helper()
	tmpl, ok := template.ForFeature(model.FeatureBGPGlobal)
	if !ok {
		t.Fatal("bgp_global template not registered")
	}
	return tmpl
}

func generate(t *testing.T, desired, current model.Document, mode diff.Mode, identity string) []string {
	t.Helper()
	entries, err := diff.Compute(desired, current, mode)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	cmds, err := Generate(bgpTemplate(t), identity, entries)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return Lines(cmds)
}

func TestGenerateRendered(t *testing.T) {
	got := generate(t, fixtureBGP(), nil, diff.Rendered, "65000")
	if !reflect.DeepEqual(got, fixtureCommands) {
		t.Errorf("rendered commands =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(fixtureCommands, "\n"))
	}
}

func TestGenerateRemovesFirst(t *testing.T) {
	current := &model.BGPGlobal{
		ASNumber: "65000",
		BGP:      &model.BGPOptions{GracefulRestart: boolp(true)},
		Neighbors: []*model.BGPNeighbor{
			{NeighborAddress: "10.0.0.9", RemoteAS: "9"},
		},
	}
	desired := &model.BGPGlobal{
		ASNumber: "65000",
		BGP:      &model.BGPOptions{LogNeighborChanges: boolp(true)},
	}

	got := generate(t, desired, current, diff.Overridden, "65000")
	want := []string{
		"router bgp 65000",
		"no neighbor 10.0.0.9 remote-as 9",
		"no bgp graceful-restart",
		"bgp log-neighbor-changes",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %v, want %v", got, want)
	}
}

func peerGroupBGP() *model.BGPGlobal {
	return &model.BGPGlobal{
		ASNumber: "65000",
		Neighbors: []*model.BGPNeighbor{
			{NeighborAddress: "10.0.0.1", RemoteAS: "100", Description: "core", UpdateSource: "Loopback0", Shutdown: boolp(true)},
			{NeighborAddress: "10.0.0.2", PeerGroup: "PG"},
			{NeighborAddress: "PG", IsPeerGroup: boolp(true), RemoteAS: "200"},
		},
	}
}

func TestGenerateRemovalOrder(t *testing.T) {
	want := []string{
		"router bgp 65000",
		"no neighbor 10.0.0.2 peer-group PG",
		"no neighbor 10.0.0.1 shutdown",
		"no neighbor 10.0.0.1 update-source Loopback0",
		"no neighbor 10.0.0.1 description core",
		"no neighbor 10.0.0.1 remote-as 100",
		"no neighbor PG remote-as 200",
		"no neighbor PG peer-group",
	}

	for _, tt := range []struct {
		mode    diff.Mode
		desired model.Document
	}{
		{diff.Deleted, nil},
		{diff.Overridden, &model.BGPGlobal{ASNumber: "65000"}},
	} {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := generate(t, tt.desired, peerGroupBGP(), tt.mode, "65000")
			if !reflect.DeepEqual(got, want) {
				t.Errorf("commands =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
			}
		})
	}
}

func TestGeneratePeerGroupFirst(t *testing.T) {
	got := generate(t, peerGroupBGP(), nil, diff.Rendered, "65000")
	want := []string{
		"router bgp 65000",
		"neighbor PG peer-group",
		"neighbor PG remote-as 200",
		"neighbor 10.0.0.1 remote-as 100",
		"neighbor 10.0.0.1 description core",
		"neighbor 10.0.0.1 update-source Loopback0",
		"neighbor 10.0.0.1 shutdown",
		"neighbor 10.0.0.2 peer-group PG",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commands =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestGenerateReplaceRule(t *testing.T) {
	current := &model.BGPGlobal{
		ASNumber:     "65000",
		BGP:          &model.BGPOptions{Dampening: &model.BGPDampening{RouteMap: "DAMP"}},
		Redistribute: []*model.BGPRedistribute{{Static: &model.BGPRedistributeRoute{Metric: 5}}},
		Timers:       &model.BGPTimers{Keepalive: 60, Holdtime: 180},
	}
	desired := &model.BGPGlobal{
		ASNumber:     "65000",
		BGP:          &model.BGPOptions{Dampening: &model.BGPDampening{PenaltyHalfTime: 15, ReuseRouteVal: 750, SuppressRouteVal: 2000, MaxSuppress: 60}},
		Redistribute: []*model.BGPRedistribute{{Static: &model.BGPRedistributeRoute{RouteMap: "STATIC"}}},
		Timers:       &model.BGPTimers{Keepalive: 10, Holdtime: 30},
	}

	got := generate(t, desired, current, diff.Merged, "65000")
	want := []string{
		"router bgp 65000",
		"no redistribute static metric 5",
		"no bgp dampening route-map DAMP",
		"bgp dampening 15 750 2000 60",
		"timers bgp 10 30",
		"redistribute static metric 5 route-map STATIC",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %v, want %v", got, want)
	}
}

func TestGenerateIdentityChange(t *testing.T) {
	current := &model.BGPGlobal{ASNumber: "65000", BGP: &model.BGPOptions{GracefulRestart: boolp(true)}}
	desired := &model.BGPGlobal{ASNumber: "65001", BGP: &model.BGPOptions{LogNeighborChanges: boolp(true)}}

	got := generate(t, desired, current, diff.Replaced, "65001")
	want := []string{"no router bgp 65000", "router bgp 65001", "bgp log-neighbor-changes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %v, want %v", got, want)
	}
}

func TestGenerateEmpty(t *testing.T) {
	cmds, err := Generate(bgpTemplate(t), "65000", nil)
	if err != nil || cmds != nil {
		t.Errorf("Generate(nil) = %v, %v", cmds, err)
	}
}

func TestGenerateDeletedNegatesRendered(t *testing.T) {
	doc := fixtureBGP()
	rendered := generate(t, doc, nil, diff.Rendered, "65000")
	deleted := generate(t, nil, doc, diff.Deleted, "65000")

	if deleted[0] != "router bgp 65000" {
		t.Fatalf("deleted should enter the context first, got %v", deleted)
	}
	want := map[string]bool{}
	for _, line := range rendered[1:] {
		want["no "+line] = true
	}
	for _, line := range deleted[1:] {
		if !want[line] {
			t.Errorf("unexpected deleted command %q", line)
		}
		delete(want, line)
	}
	for line := range want {
		t.Errorf("missing deleted command %q", line)
	}
}

func TestRunning(t *testing.T) {
	text, err := Running(fixtureBGP())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if lines[0] != "router bgp 65000" {
		t.Errorf("first line = %q", lines[0])
	}
	for i, line := range lines[1:] {
		if line != " "+fixtureCommands[i+1] {
			t.Errorf("line %d = %q, want %q", i+1, line, " "+fixtureCommands[i+1])
		}
	}

	if text, err := Running(&model.BGPGlobal{}); err != nil || text != "" {
		t.Errorf("empty document renders %q, %v", text, err)
	}
	if text, err := Running(nil); err != nil || text != "" {
		t.Errorf("nil document renders %q, %v", text, err)
	}

	evpn := &model.EVPNGlobal{ReplicationType: "ingress", RouteTarget: &model.EVPNRouteTarget{Auto: &model.EVPNRouteTargetAuto{VNI: boolp(false)}}}
	if text, _ := Running(evpn); text != "l2vpn evpn\n replication-type ingress\n" {
		t.Errorf("evpn running = %q", text)
	}
}

func TestFingerprint(t *testing.T) {
	a := []Command{{Line: "router bgp 65000"}, {Line: "bgp log-neighbor-changes"}}
	b := []Command{{Line: "router bgp 65000"}, {Line: "bgp log-neighbor-changes"}}
	c := []Command{{Line: "bgp log-neighbor-changes"}, {Line: "router bgp 65000"}}

	fa := Fingerprint(a)
	if len(fa) != 64 {
		t.Errorf("fingerprint %q is not 32 hex bytes", fa)
	}
	if fa != Fingerprint(b) {
		t.Error("equal command lists should have equal fingerprints")
	}
	if fa == Fingerprint(c) {
		t.Error("order should change the fingerprint")
	}
	if Fingerprint(nil) != "" {
		t.Error("empty list should have an empty fingerprint")
	}
}

func TestSession(t *testing.T) {
	cmds := []Command{{Line: "router bgp 65000"}, {Line: "!"}, {Line: " bgp log-neighbor-changes"}, {Line: "end"}}

	tests := []struct {
		name string
		opts SessionOptions
		want []string
	}{
		{"plain", SessionOptions{},
			[]string{"configure terminal", "router bgp 65000", " bgp log-neighbor-changes", "end"}},
		{"timeout", SessionOptions{CommitConfirmTimeout: 5},
			[]string{"configure terminal revert timer 5", "router bgp 65000", " bgp log-neighbor-changes", "end"}},
		{"immediate", SessionOptions{CommitConfirmImmediate: true},
			[]string{"configure terminal revert timer 1", "router bgp 65000", " bgp log-neighbor-changes", "end", "configure confirm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Session(cmds, tt.opts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Session() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBannerSession(t *testing.T) {
	got := BannerSession(map[string]string{
		"banner motd":  "Welcome",
		"banner login": "Authorized\nonly",
	}, "")
	want := []string{
		"configure terminal", "banner login @", "Authorized\nonly", "@", "end",
		"configure terminal", "banner motd @", "Welcome", "@", "end",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BannerSession() = %v, want %v", got, want)
	}
}
