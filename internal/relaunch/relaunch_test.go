package relaunch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

type fakeInstall struct {
	home, main, updater string
}

func (f fakeInstall) Home() string              { return f.home }
func (f fakeInstall) MainExecutable() string    { return f.main }
func (f fakeInstall) UpdaterExecutable() string { return f.updater }

type fakeSpawner struct {
	calls []Request
	err   error
}

func (f *fakeSpawner) Spawn(req Request) (int, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return 0, f.err
	}
	return 4242, nil
}

func newInstall(t *testing.T, withMain, withUpdater bool) fakeInstall {
	t.Helper()
	home := t.TempDir()
	inst := fakeInstall{
		home:    home,
		main:    filepath.Join(home, "bin", "workbench"),
		updater: filepath.Join(home, "bin", "updater"),
	}
	if err := os.MkdirAll(filepath.Join(home, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if withMain {
		writeExecutable(t, inst.main, "#!/bin/sh\n")
	}
	if withUpdater {
		writeExecutable(t, inst.updater, "#!/bin/sh\n")
	}
	return inst
}

func writeExecutable(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestRelaunchMissingExecutables(t *testing.T) {
	tests := []struct {
		name              string
		withMain, withUpd bool
		wantPathSuffix    string
	}{
		{"no main", false, true, "workbench"},
		{"no updater", true, false, "updater"},
		{"neither", false, false, "workbench"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := newInstall(t, tt.withMain, tt.withUpd)
			spawner := &fakeSpawner{}
			host := make(chan HostCommand, 1)
			c := NewCoordinator(inst, host, WithSpawner(spawner))

			err := c.Relaunch(context.Background())

			var re *RelaunchError
			if !errors.As(err, &re) {
				t.Fatalf("Relaunch() error = %v, want *RelaunchError", err)
			}
			if re.Reason != ReasonUpdaterNotFound {
				t.Errorf("Reason = %q, want %q", re.Reason, ReasonUpdaterNotFound)
			}
			if !strings.HasSuffix(re.Path, tt.wantPathSuffix) {
				t.Errorf("Path = %q, want suffix %q", re.Path, tt.wantPathSuffix)
			}
			if len(spawner.calls) != 0 {
				t.Errorf("spawned %d processes, want 0", len(spawner.calls))
			}
			if len(host) != 0 {
				t.Error("host command sent after failed relaunch")
			}
		})
	}
}

func TestRelaunchDirectoryIsNotExecutable(t *testing.T) {
	inst := newInstall(t, true, false)
	if err := os.Mkdir(inst.updater, 0o755); err != nil {
		t.Fatal(err)
	}
	spawner := &fakeSpawner{}

	err := NewCoordinator(inst, make(chan HostCommand, 1), WithSpawner(spawner)).Relaunch(context.Background())
	if !IsRelaunchError(err) {
		t.Fatalf("Relaunch() error = %v, want *RelaunchError", err)
	}
	if len(spawner.calls) != 0 {
		t.Error("spawned despite missing updater")
	}
}

func TestRelaunchSpawnsOnceAndRequestsShutdown(t *testing.T) {
	inst := newInstall(t, true, true)
	spawner := &fakeSpawner{}
	host := make(chan HostCommand, 2)
	c := NewCoordinator(inst, host, WithSpawner(spawner), WithPID(1234))

	if err := c.Relaunch(context.Background()); err != nil {
		t.Fatalf("Relaunch() error = %v", err)
	}

	if len(spawner.calls) != 1 {
		t.Fatalf("spawned %d processes, want 1", len(spawner.calls))
	}
	req := spawner.calls[0]
	want := Request{UpdaterPath: inst.updater, PID: 1234, TargetPath: inst.main, Dir: inst.home}
	if req != want {
		t.Errorf("request = %+v, want %+v", req, want)
	}

	cmd := receive(t, host)
	if cmd.Kind != ShutdownRequested || cmd.UpdaterPID != 4242 {
		t.Errorf("host command = %+v", cmd)
	}
	select {
	case extra := <-host:
		t.Errorf("unexpected second host command %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func receive(t *testing.T, host <-chan HostCommand) HostCommand {
	t.Helper()
	select {
	case cmd := <-host:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("no host command received")
		return HostCommand{}
	}
}

func TestRelaunchSpawnFailure(t *testing.T) {
	inst := newInstall(t, true, true)
	spawnErr := errors.New("exec format error")
	spawner := &fakeSpawner{err: spawnErr}
	host := make(chan HostCommand, 1)

	err := NewCoordinator(inst, host, WithSpawner(spawner)).Relaunch(context.Background())

	if !errors.Is(err, spawnErr) {
		t.Errorf("Relaunch() error = %v, want %v", err, spawnErr)
	}
	if !IsRelaunchError(err) {
		t.Error("spawn failure should be a *RelaunchError")
	}
	if len(host) != 0 {
		t.Error("shutdown requested after spawn failure")
	}
}

func TestRelaunchDoesNotWaitForHost(t *testing.T) {
	inst := newInstall(t, true, true)
	spawner := &fakeSpawner{}
	host := make(chan HostCommand)

	done := make(chan error, 1)
	go func() {
		done <- NewCoordinator(inst, host, WithSpawner(spawner)).Relaunch(context.Background())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Relaunch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Relaunch() blocked on a host that is not reading")
	}

	// The host picks the command up from its own loop afterwards.
	if cmd := receive(t, host); cmd.Kind != ShutdownRequested {
		t.Errorf("host command = %+v", cmd)
	}
	if len(spawner.calls) != 1 {
		t.Errorf("spawned %d processes, want 1", len(spawner.calls))
	}
}

func TestRelaunchHostNotListening(t *testing.T) {
	inst := newInstall(t, true, true)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	host := make(chan HostCommand)

	err := NewCoordinator(inst, host, WithSpawner(&fakeSpawner{})).Relaunch(ctx)
	if err != nil {
		t.Fatalf("Relaunch() error = %v, want nil once the updater is running", err)
	}

	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	select {
	case cmd := <-host:
		t.Errorf("host command %+v delivered after ctx ended", cmd)
	default:
	}
}

func TestEnsureQuoted(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/opt/tool/bin/updater", "/opt/tool/bin/updater"},
		{`C:\Program Files\Tool\updater.exe`, `"C:\Program Files\Tool\updater.exe"`},
		{`"C:\Program Files\Tool\updater.exe"`, `"C:\Program Files\Tool\updater.exe"`},
		{"", ""},
		{" ", `" "`},
	}

	for _, tt := range tests {
		if got := EnsureQuoted(tt.in); got != tt.want {
			t.Errorf("EnsureQuoted(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequestArgv(t *testing.T) {
	req := Request{UpdaterPath: "/opt/my tool/updater", PID: 77, TargetPath: "/opt/my tool/workbench"}
	got := req.Argv()
	want := []string{`"/opt/my tool/updater"`, "77", "/opt/my tool/workbench"}
	if len(got) != len(want) {
		t.Fatalf("Argv() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Argv()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExecSpawner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the updater")
	}

	home := t.TempDir()
	marker := filepath.Join(home, "args.txt")
	updater := filepath.Join(home, "updater")
	writeExecutable(t, updater, "#!/bin/sh\necho \"$1 $2 $(pwd)\" > args.tmp && mv args.tmp args.txt\n")

	pid, err := ExecSpawner{}.Spawn(Request{UpdaterPath: updater, PID: 99, TargetPath: "/opt/workbench", Dir: home})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if pid <= 0 {
		t.Errorf("Spawn() pid = %d", pid)
	}

	deadline := time.Now().Add(5 * time.Second)
	var data []byte
	for time.Now().Before(deadline) {
		if data, err = os.ReadFile(marker); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("updater never ran: %v", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) != 3 || fields[0] != "99" || fields[1] != "/opt/workbench" {
		t.Errorf("updater saw args %q", data)
	}
	if resolved, _ := filepath.EvalSymlinks(home); fields[2] != home && fields[2] != resolved {
		t.Errorf("updater ran in %q, want %q", fields[2], home)
	}
}

func TestSpawnArgs(t *testing.T) {
	req := Request{UpdaterPath: `C:\Program Files\Tool\updater.exe`, PID: 9, TargetPath: `C:\Program Files\Tool\workbench.exe`}

	tests := []struct {
		goos  string
		want0 string
	}{
		{"linux", `"C:\Program Files\Tool\updater.exe"`},
		{"darwin", `"C:\Program Files\Tool\updater.exe"`},
		{"windows", `C:\Program Files\Tool\updater.exe`},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := spawnArgs(req, tt.goos)
			if len(got) != 3 {
				t.Fatalf("spawnArgs() = %q", got)
			}
			if got[0] != tt.want0 {
				t.Errorf("argv[0] = %q, want %q", got[0], tt.want0)
			}
			if got[1] != "9" || got[2] != req.TargetPath {
				t.Errorf("spawnArgs() = %q", got)
			}
		})
	}
}
