package ioscfg

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/amalmborg97/cisco.ios/pkg/util"
)

const runningConfig = `hostname R1
!
router bgp 65000
 bgp log-neighbor-changes
 address-family ipv4
  neighbor 10.0.0.1 activate
 exit-address-family
!
interface Loopback0
 ip address 10.0.0.1 255.255.255.255
`

func mustLoad(t *testing.T, text string, ignore ...string) *Config {
	t.Helper()
	c, err := Load(text, ignore...)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func TestLoad(t *testing.T) {
	c := mustLoad(t, runningConfig)

	roots := Commands(c.Roots())
	want := []string{"hostname R1", "router bgp 65000", "interface Loopback0"}
	if !reflect.DeepEqual(roots, want) {
		t.Errorf("Roots() = %v, want %v", roots, want)
	}
	if len(c.Items()) != 8 {
		t.Errorf("Items() has %d lines, want 8", len(c.Items()))
	}

	bgp, err := c.Object([]string{"router bgp 65000"})
	if err != nil {
		t.Fatal(err)
	}
	if bgp.Number != 3 {
		t.Errorf("Number = %d, want 3", bgp.Number)
	}
	if got := Commands(bgp.Children); !reflect.DeepEqual(got, []string{
		"bgp log-neighbor-changes", "address-family ipv4", "exit-address-family",
	}) {
		t.Errorf("Children = %v", got)
	}

	nbr, err := c.Object([]string{"router bgp 65000", "address-family ipv4", "neighbor 10.0.0.1 activate"})
	if err != nil {
		t.Fatal(err)
	}
	if nbr.Depth() != 2 || !reflect.DeepEqual(nbr.ParentTexts(), []string{"router bgp 65000", "address-family ipv4"}) {
		t.Errorf("neighbor parents = %v", nbr.ParentTexts())
	}
}

func TestLoadIgnore(t *testing.T) {
	c := mustLoad(t, runningConfig, `^hostname`, `^ip address`)
	for _, l := range c.Items() {
		if strings.HasPrefix(l.Text, "hostname") || strings.HasPrefix(l.Text, "ip address") {
			t.Errorf("ignored line %q was loaded", l.Text)
		}
	}
	if _, err := Load("x", "("); !errors.Is(err, util.ErrSchema) {
		t.Errorf("invalid ignore pattern error = %v", err)
	}
}

func TestBlock(t *testing.T) {
	c := mustLoad(t, runningConfig)
	block, err := c.Block([]string{"router bgp 65000"})
	if err != nil {
		t.Fatal(err)
	}
	if len(block) != 5 {
		t.Errorf("Block() returned %d lines, want 5: %v", len(block), Commands(block))
	}
	if _, err := c.Block([]string{"router bgp 1"}); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("missing block error = %v", err)
	}
	if got := Dump(block[:2], 1); got != "router bgp 65000\n bgp log-neighbor-changes" {
		t.Errorf("Dump() = %q", got)
	}
}

func TestDifference(t *testing.T) {
	candidate := "router bgp 65000\n bgp log-neighbor-changes\n timers bgp 100 200\n"
	running := "router bgp 65000\n bgp log-neighbor-changes\n"

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"line", Options{}, []string{"router bgp 65000", "timers bgp 100 200"}},
		{"line block", Options{Replace: ReplaceBlock},
			[]string{"router bgp 65000", "bgp log-neighbor-changes", "timers bgp 100 200"}},
		{"strict", Options{Match: MatchStrict}, []string{"router bgp 65000", "timers bgp 100 200"}},
		{"exact", Options{Match: MatchExact},
			[]string{"router bgp 65000", "bgp log-neighbor-changes", "timers bgp 100 200"}},
		{"none", Options{Match: MatchNone},
			[]string{"router bgp 65000", "bgp log-neighbor-changes", "timers bgp 100 200"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := mustLoad(t, candidate).Difference(mustLoad(t, running), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := Commands(lines); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Difference() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDifferenceExactPath(t *testing.T) {
	candidate := mustLoad(t, "router bgp 65000\n bgp log-neighbor-changes\n")
	running := mustLoad(t, "hostname R1\nrouter bgp 65000\n bgp log-neighbor-changes\n")

	lines, err := candidate.Difference(running, Options{Match: MatchExact, Path: []string{"router bgp 65000"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Errorf("identical block should produce no difference, got %v", Commands(lines))
	}
}

func TestStrictOrder(t *testing.T) {
	candidate := mustLoad(t, "a\nb\n")
	running := mustLoad(t, "b\na\n")
	lines, err := candidate.Difference(running, Options{Match: MatchStrict})
	if err != nil {
		t.Fatal(err)
	}
	if got := Commands(lines); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("strict difference = %v", got)
	}
}

func TestGetDiffExact(t *testing.T) {
	candidate := "router bgp 65000\n bgp log-neighbor-changes\n\n timers bgp 100 200\n"
	running := "router bgp 65000\n bgp log-neighbor-changes\n bgp graceful-restart\n no bgp default ipv4-unicast\n"

	d, err := GetDiff(candidate, running, Options{Match: MatchExact})
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"router bgp 65000",
		" no bgp graceful-restart",
		" no bgp default ipv4-unicast",
		"router bgp 65000",
		" timers bgp 100 200",
	}, "\n")
	if d.ConfigDiff != want {
		t.Errorf("ConfigDiff =\n%s\nwant\n%s", d.ConfigDiff, want)
	}
}

func TestGetDiffExactNegatesBlockOnce(t *testing.T) {
	candidate := "router bgp 65000\n bgp log-neighbor-changes\n"
	running := "router bgp 65000\n bgp log-neighbor-changes\n template peer-policy P\n  weight 10\n"

	d, err := GetDiff(candidate, running, Options{Match: MatchExact})
	if err != nil {
		t.Fatal(err)
	}
	if d.ConfigDiff != "router bgp 65000\n no template peer-policy P" {
		t.Errorf("ConfigDiff = %q", d.ConfigDiff)
	}
}

func TestGetDiffBanners(t *testing.T) {
	candidate := "banner motd ^CHello\nWorld^C\nhostname R1\n"
	running := "banner motd ^COld^C\nhostname R1\n"

	d, err := GetDiff(candidate, running, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d.ConfigDiff != "" {
		t.Errorf("ConfigDiff = %q, want empty", d.ConfigDiff)
	}
	if got := d.BannerDiff["banner motd"]; got != "Hello\nWorld" {
		t.Errorf("BannerDiff = %v", d.BannerDiff)
	}

	same, err := GetDiff(candidate, "banner motd ^CHello\nWorld^C\nhostname R1\n", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(same.BannerDiff) != 0 {
		t.Errorf("unchanged banner reported: %v", same.BannerDiff)
	}
}

func TestGetDiffEmptyRunning(t *testing.T) {
	d, err := GetDiff("hostname R1\ninterface Loopback0\n description x\n", "", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d.ConfigDiff != "hostname R1\ninterface Loopback0\ndescription x" {
		t.Errorf("ConfigDiff = %q", d.ConfigDiff)
	}
}

func TestGetDiffInvalidOptions(t *testing.T) {
	_, err := GetDiff("a", "b", Options{Match: "fuzzy"})
	if !errors.Is(err, util.ErrSchema) {
		t.Fatalf("error = %v, want schema error", err)
	}
	if !strings.Contains(err.Error(), "line, strict, exact, none") {
		t.Errorf("error should list valid values: %v", err)
	}
	if _, err := GetDiff("a", "b", Options{Replace: "config"}); err == nil {
		t.Error("invalid replace should fail")
	}
}

func TestExtractBanners(t *testing.T) {
	cfg, banners := ExtractBanners("banner exec ^CAuthorized only^C\nbanner login ^C\nGo away\n^C\nhostname R1")
	if banners["banner exec"] != "Authorized only" || banners["banner login"] != "Go away" {
		t.Errorf("banners = %v", banners)
	}
	if strings.Contains(cfg, "Authorized") || !strings.Contains(cfg, "!! banner removed") {
		t.Errorf("config after extraction = %q", cfg)
	}
}

func TestCapabilities(t *testing.T) {
	c := GetCapabilities()
	if !c.DeviceOperations.SupportsDiffMatch || c.DeviceOperations.SupportsCommit {
		t.Errorf("unexpected operations: %+v", c.DeviceOperations)
	}
	if !reflect.DeepEqual(c.OptionValues.DiffReplace, []string{"line", "block"}) {
		t.Errorf("DiffReplace = %v", c.OptionValues.DiffReplace)
	}
}
