package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amalmborg97/cisco.ios/pkg/audit"
	"github.com/amalmborg97/cisco.ios/pkg/cli"
	"github.com/amalmborg97/cisco.ios/pkg/commands"
	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/loader"
	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
	"github.com/amalmborg97/cisco.ios/pkg/store"
	"github.com/amalmborg97/cisco.ios/pkg/util"
)

var (
	reconcileFiles       []string
	reconcileDir         string
	reconcileRunning     string
	reconcileState       string
	reconcileDevice      string
	reconcileIgnore      []string
	reconcileDiff        bool
	reconcileRecord      bool
	reconcileRecordTTL   time.Duration
	reconcileSession     bool
	reconcileRevertTimer int
	reconcileConfirm     bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compute the commands for one or more tasks",
	Long: `Compute the IOS commands that bring a device feature to the state a task
describes. A task file names the feature, the state and the desired config:

  name: spine1 bgp
  feature: bgp_global
  state: replaced
  device: spine1
  config:
    as_number: "65000"
    bgp:
      log_neighbor_changes: true
  running_config_file: spine1.cfg

--running overrides the task's running config; --state is used for tasks
that name no state. --record stores a snapshot of each changed run in the
snapshot store, once per plan within --record-ttl.

Examples:
  iosrecon reconcile -f spine1-bgp.yaml
  iosrecon reconcile -f spine1-bgp.yaml --running spine1.cfg --diff
  iosrecon reconcile --dir tasks/ --state overridden --json
  iosrecon reconcile -f spine1-bgp.yaml --session --revert-timer 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := loadTasks()
		if err != nil {
			return err
		}

		fallback := app.settings.GetDefaultState()
		if reconcileState != "" {
			if fallback, err = diff.ParseMode(reconcileState); err != nil {
				return err
			}
		}
		running, err := readInput(reconcileRunning)
		if err != nil {
			return fmt.Errorf("reading running config: %w", err)
		}

		var st store.Store
		if reconcileRecord {
			rs, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer rs.Close()
			st = rs
		}

		r := newReconciler(reconcileIgnore)
		var (
			outputs []taskOutput
			failed  int
		)
		for _, task := range tasks {
			out := runTask(cmd, r, st, task, fallback, running)
			if out.err != nil {
				failed++
			}
			outputs = append(outputs, out)
		}

		if app.jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(outputs); err != nil {
				return err
			}
		} else {
			for _, out := range outputs {
				if err := printTaskOutput(out); err != nil {
					return err
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d tasks failed", failed, len(tasks))
		}
		return nil
	},
}

// taskOutput is the outcome of one task, as printed or encoded.
type taskOutput struct {
	Task     string            `json:"task"`
	Device   string            `json:"device,omitempty"`
	Result   *reconcile.Result `json:"result,omitempty"`
	Session  []string          `json:"session,omitempty"`
	Diff     string            `json:"diff,omitempty"`
	Recorded bool              `json:"recorded,omitempty"`
	Error    string            `json:"error,omitempty"`

	err error
}

func loadTasks() ([]*loader.Task, error) {
	var tasks []*loader.Task
	for _, f := range reconcileFiles {
		t, err := loader.LoadFile(f)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if reconcileDir != "" {
		dirTasks, err := loader.LoadDir(reconcileDir)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, dirTasks...)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks: use -f <task.yaml> or --dir <dir>")
	}
	return tasks, nil
}

func runTask(cmd *cobra.Command, r *reconcile.Reconciler, st store.Store, task *loader.Task, fallback diff.Mode, running string) taskOutput {
	device := task.Device
	if reconcileDevice != "" {
		device = reconcileDevice
	}
	out := taskOutput{Task: task.Label(), Device: device}
	logger := util.WithDevice(device).WithField("task", out.Task)

	fail := func(err error) taskOutput {
		out.err = err
		out.Error = err.Error()
		return out
	}

	req, err := task.Request(fallback, running)
	if err != nil {
		return fail(err)
	}

	start := time.Now()
	res, err := r.Reconcile(req)
	event := audit.NewEvent(app.user, device, req.Feature, string(req.Mode)).
		WithTask(out.Task).
		WithDuration(time.Since(start))
	if err != nil {
		audit.Log(event.WithError(err))
		return fail(err)
	}
	out.Result = res
	event.WithResult(res)

	if reconcileSession && len(res.Commands) > 0 {
		out.Session = commands.Session(res.Commands, commands.SessionOptions{
			CommitConfirmTimeout:   reconcileRevertTimer,
			CommitConfirmImmediate: reconcileConfirm,
		})
	}

	if reconcileDiff {
		if out.Diff, err = runningDiff(res); err != nil {
			return fail(err)
		}
	}

	if st != nil && res.Changed {
		recorded, err := record(cmd, st, device, res)
		if err != nil {
			audit.Log(event.WithError(err))
			return fail(err)
		}
		out.Recorded = recorded
		event.WithRecorded(recorded)
	}

	if err := audit.Log(event); err != nil {
		logger.Warnf("audit log: %v", err)
	}
	return out
}

// record stores a snapshot of res unless the same plan was recorded for
// device within the record TTL, according to the audit log or the store.
func record(cmd *cobra.Command, st store.Store, device string, res *reconcile.Result) (bool, error) {
	if device == "" {
		return false, fmt.Errorf("--record needs a device: set device in the task or use --device")
	}
	prev, err := audit.LastApplied(device, res.Fingerprint, time.Now().Add(-reconcileRecordTTL))
	if err != nil {
		util.WithDevice(device).Debugf("audit lookup: %v", err)
	}
	if prev != nil {
		util.WithDevice(device).Infof("plan %s already recorded by %s at %s",
			shortFingerprint(res.Fingerprint), prev.User, prev.Timestamp.Format(time.RFC3339))
		return false, nil
	}
	fresh, err := st.MarkApplied(cmd.Context(), device, res.Fingerprint, reconcileRecordTTL)
	if err != nil {
		return false, err
	}
	if !fresh {
		util.WithDevice(device).Infof("plan %s already recorded", shortFingerprint(res.Fingerprint))
		return false, nil
	}
	snap, err := store.NewSnapshot(device, res)
	if err != nil {
		return false, err
	}
	if err := st.Save(cmd.Context(), snap); err != nil {
		return false, err
	}
	return true, nil
}

// runningDiff diffs the before and after running text of res.
func runningDiff(res *reconcile.Result) (string, error) {
	before, err := commands.Running(res.Before)
	if err != nil {
		return "", err
	}
	after, err := commands.Running(res.After)
	if err != nil {
		return "", err
	}
	return cli.UnifiedDiff(before, after, "running", "reconciled")
}

func printTaskOutput(out taskOutput) error {
	header := out.Task
	if out.Device != "" && !strings.Contains(header, out.Device) {
		header = out.Device + " " + header
	}

	if out.err != nil {
		fmt.Printf("%s %s\n", cli.DotPad(header, 40), red("FAILED"))
		fmt.Printf("  %v\n\n", out.err)
		return nil
	}

	res := out.Result
	switch res.Mode {
	case diff.Parsed, diff.Gathered:
		doc := res.Parsed
		if doc == nil {
			doc = res.Before
		}
		fmt.Printf("%s %s\n", cli.DotPad(header, 40), green(string(res.Mode)))
		return printDocument(doc)
	}

	status := green("no changes")
	switch {
	case res.Mode == diff.Rendered:
		status = green(fmt.Sprintf("%d commands", len(res.Commands)))
	case res.Changed:
		status = yellow(fmt.Sprintf("%d commands", len(res.Commands)))
	}
	fmt.Printf("%s %s\n", cli.DotPad(header, 40), status)

	lines := out.Session
	if lines == nil {
		for _, c := range res.Commands {
			fmt.Println("  " + cli.Command(c))
		}
	} else {
		for _, l := range lines {
			fmt.Println("  " + l)
		}
	}
	if out.Diff != "" {
		fmt.Println()
		fmt.Print(cli.ColorDiff(out.Diff))
	}
	if out.Recorded {
		fmt.Printf("  %s %s\n", cli.Dim("recorded"), shortFingerprint(res.Fingerprint))
	}
	fmt.Println()
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func init() {
	reconcileCmd.Flags().StringSliceVarP(&reconcileFiles, "file", "f", nil, "Task file (repeatable)")
	reconcileCmd.Flags().StringVar(&reconcileDir, "dir", "", "Run every task file in a directory")
	reconcileCmd.Flags().StringVar(&reconcileRunning, "running", "", "Running config file, - for stdin")
	reconcileCmd.Flags().StringVar(&reconcileState, "state", "", "State for tasks that name none")
	reconcileCmd.Flags().StringVar(&reconcileDevice, "device", "", "Device name (overrides the task)")
	reconcileCmd.Flags().StringArrayVar(&reconcileIgnore, "ignore-lines", nil, "Regexp of running-config lines to ignore")
	reconcileCmd.Flags().BoolVar(&reconcileDiff, "diff", false, "Show a diff of the running config before and after")
	reconcileCmd.Flags().BoolVar(&reconcileRecord, "record", false, "Store a snapshot of changed runs")
	reconcileCmd.Flags().DurationVar(&reconcileRecordTTL, "record-ttl", 10*time.Minute, "Window in which an identical plan is recorded once")
	reconcileCmd.Flags().BoolVar(&reconcileSession, "session", false, "Frame commands as a configuration session")
	reconcileCmd.Flags().IntVar(&reconcileRevertTimer, "revert-timer", 0, "Session rollback timer in minutes")
	reconcileCmd.Flags().BoolVar(&reconcileConfirm, "confirm", false, "Confirm the session right after end")
}
