package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/util"
)

const bgpTask = `name: spine1 bgp
feature: bgp_global
state: replaced
device: spine1
config:
  as_number: "65000"
  bgp:
    log_neighbor_changes: true
    graceful_restart: false
    nopeerup_delay:
      - post_boot: 10
  timers:
    keepalive: 100
    holdtime: 200
  neighbor:
    - neighbor_address: 198.51.100.1
      remote_as: "100"
      route_maps:
        - name: RM-OUT
          out: true
running_config_file: spine1.cfg
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "spine1.yaml", bgpTask)
	writeFile(t, dir, "spine1.cfg", "router bgp 65000\n bgp log-neighbor-changes\n")

	task, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if task.Feature != model.FeatureBGPGlobal || task.Device != "spine1" || task.Label() != "spine1 bgp" {
		t.Errorf("task = %+v", task)
	}

	req, err := task.Request("", "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Mode != diff.Replaced {
		t.Errorf("Mode = %q", req.Mode)
	}
	if !strings.HasPrefix(req.Running, "router bgp 65000") {
		t.Errorf("Running = %q", req.Running)
	}

	b, ok := req.Desired.(*model.BGPGlobal)
	if !ok {
		t.Fatalf("Desired is %T", req.Desired)
	}
	if b.ASNumber != "65000" || b.Timers.Holdtime != 200 || *b.BGP.GracefulRestart {
		t.Errorf("desired = %+v", b)
	}
	if len(b.Neighbors) != 1 || b.Neighbors[0].RouteMaps[0].Name != "RM-OUT" || !b.Neighbors[0].RouteMaps[0].Out {
		t.Errorf("neighbors = %+v", b.Neighbors)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("loaded document invalid: %v", err)
	}

	override, err := task.Request(diff.Merged, "router bgp 65000\n")
	if err != nil {
		t.Fatal(err)
	}
	if override.Running != "router bgp 65000\n" || override.Mode != diff.Replaced {
		t.Errorf("override request = %+v", override)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing feature", "state: merged\n", "feature"},
		{"unknown feature", "feature: ospf\n", "unknown feature"},
		{"bad state", "feature: bgp_global\nstate: purged\n", "purged"},
		{"unknown top-level key", "feature: bgp_global\nstatus: merged\n", "status"},
		{"both running sources", "feature: bgp_global\nrunning_config: x\nrunning_config_file: y\n", "running_config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDesiredStrict(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"unknown key", "config:\n  as_number: \"65000\"\n  bgp:\n    log_neighbour_changes: true\n"},
		{"wrong type", "config:\n  as_number: \"65000\"\n  timers:\n    keepalive: fast\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Load([]byte("feature: bgp_global\n" + tt.config))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := task.Desired(); !errors.Is(err, util.ErrSchema) {
				t.Errorf("Desired() error = %v, want schema error", err)
			}
		})
	}
}

func TestDesiredAbsent(t *testing.T) {
	task, err := Load([]byte("feature: bgp_global\nstate: gathered\nrunning_config: |\n  router bgp 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := task.Desired()
	if err != nil || doc != nil {
		t.Errorf("Desired() = %v, %v; want nil", doc, err)
	}
	mode, _ := task.Mode("")
	if mode != diff.Gathered {
		t.Errorf("Mode = %q", mode)
	}
	if running, _ := task.Running(); running != "router bgp 1\n" {
		t.Errorf("Running() = %q", running)
	}

	task, _ = Load([]byte("feature: evpn_global\n"))
	if mode, _ := task.Mode(""); mode != DefaultState {
		t.Errorf("default mode = %q", mode)
	}
	if mode, _ := task.Mode(diff.Overridden); mode != diff.Overridden {
		t.Errorf("fallback mode = %q", mode)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "feature: evpn_global\nconfig:\n  replication_type: ingress\n")
	writeFile(t, dir, "a.yml", "feature: bgp_global\n")
	writeFile(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0755); err != nil {
		t.Fatal(err)
	}

	tasks, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].Feature != model.FeatureBGPGlobal || tasks[1].Feature != model.FeatureEVPNGlobal {
		t.Fatalf("LoadDir() = %+v", tasks)
	}
	if tasks[1].Label() != "b.yaml" {
		t.Errorf("Label() = %q", tasks[1].Label())
	}

	writeFile(t, dir, "c.yaml", "feature: nope\n")
	if _, err := LoadDir(dir); err == nil || !strings.Contains(err.Error(), "c.yaml") {
		t.Errorf("LoadDir() error = %v, want error naming c.yaml", err)
	}
}
