package pkgmgr

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type call struct {
	argv   []string
	stream bool
}

type fakeRunner struct {
	calls  []call
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, argv []string, stream bool) (*Output, error) {
	f.calls = append(f.calls, call{argv: argv, stream: stream})
	if f.err != nil {
		return &Output{ExitCode: 1}, f.err
	}
	return &Output{Stdout: f.stdout}, nil
}

func TestPipInstall(t *testing.T) {
	r := &fakeRunner{}
	p := NewPip("python3", WithRunner(r))

	if err := p.Install(context.Background(), "https://github.com/org/repo@main", "--target=/site/x", "--no-deps"); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	want := []string{"python3", "-m", "pip", "install", "--target=/site/x", "--no-deps", "https://github.com/org/repo@main"}
	if len(r.calls) != 1 || !reflect.DeepEqual(r.calls[0].argv, want) {
		t.Fatalf("argv = %v, want %v", r.calls, want)
	}
	if !r.calls[0].stream {
		t.Error("non-quiet install should stream output")
	}
}

func TestPipInstall_Quiet(t *testing.T) {
	r := &fakeRunner{}
	p := NewPip("python3", WithRunner(r), WithQuiet(true))

	if err := p.Install(context.Background(), "rstr"); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	want := []string{"python3", "-m", "pip", "install", "-q", "rstr"}
	if !reflect.DeepEqual(r.calls[0].argv, want) {
		t.Errorf("argv = %v, want %v", r.calls[0].argv, want)
	}
	if r.calls[0].stream {
		t.Error("quiet install should not stream output")
	}
}

func TestPipInstall_ErrorUnmodified(t *testing.T) {
	perr := &ProcessError{Args: []string{"python3"}, ExitCode: 1, Stderr: "boom"}
	p := NewPip("python3", WithRunner(&fakeRunner{err: perr}))

	err := p.Install(context.Background(), "rstr")
	if err != perr {
		t.Fatalf("Install() error = %v, want the runner's error unmodified", err)
	}
}

func TestPipInspect(t *testing.T) {
	r := &fakeRunner{stdout: `{"version":"1","pip_version":"24.0","installed":[{"metadata":{"name":"test-validator","version":"0.1.0","requires_dist":["rstr","openai<2"]}}]}`}
	p := NewPip("python3", WithRunner(r))

	report, err := p.Inspect(context.Background(), "/site/x")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	want := []string{"python3", "-m", "pip", "inspect", "--path=/site/x", "--no-color"}
	if !reflect.DeepEqual(r.calls[0].argv, want) {
		t.Errorf("argv = %v, want %v", r.calls[0].argv, want)
	}
	if got := report.RequiresDist("test_validator"); !reflect.DeepEqual(got, []string{"rstr", "openai<2"}) {
		t.Errorf("RequiresDist() = %v", got)
	}
}

func TestPipInspect_InvalidJSON(t *testing.T) {
	p := NewPip("python3", WithRunner(&fakeRunner{stdout: "not json"}))
	if _, err := p.Inspect(context.Background(), "/site/x"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestPipMarkerEnvironment(t *testing.T) {
	r := &fakeRunner{stdout: `{"python_version":"3.11","sys_platform":"linux"}`}
	p := NewPip("python3", WithRunner(r))

	env, err := p.MarkerEnvironment(context.Background())
	if err != nil {
		t.Fatalf("MarkerEnvironment() error = %v", err)
	}
	if env["python_version"] != "3.11" || env["sys_platform"] != "linux" {
		t.Errorf("env = %v", env)
	}
	if v, ok := env["extra"]; !ok || v != "" {
		t.Errorf("extra = %q (present %v), want empty", v, ok)
	}
	if r.calls[0].argv[1] != "-c" {
		t.Errorf("expected python -c invocation, got %v", r.calls[0].argv)
	}
}

func TestPipRunScript(t *testing.T) {
	r := &fakeRunner{}
	p := NewPip("/usr/bin/python3", WithRunner(r))

	if err := p.RunScript(context.Background(), "/site/x/mod/post.py"); err != nil {
		t.Fatalf("RunScript() error = %v", err)
	}
	want := []string{"/usr/bin/python3", "/site/x/mod/post.py"}
	if !reflect.DeepEqual(r.calls[0].argv, want) {
		t.Errorf("argv = %v, want %v", r.calls[0].argv, want)
	}
}

func TestPipModulePath(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    []string
		wantErr error
	}{
		{name: "package", stdout: `["/usr/lib/python3/site-packages/pip"]` + "\n", want: []string{"/usr/lib/python3/site-packages/pip"}},
		{name: "plain module", stdout: `[]`, want: []string{}},
		{name: "missing", stdout: "null\n", wantErr: ErrModuleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{stdout: tt.stdout}
			p := NewPip("python3", WithRunner(r))

			got, err := p.ModulePath(context.Background(), "pip")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ModulePath() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ModulePath() = %v, want %v", got, tt.want)
			}
			if last := r.calls[0].argv[len(r.calls[0].argv)-1]; last != "pip" {
				t.Errorf("module name should be the last argument, got %q", last)
			}
		})
	}
}

func TestRequiresDist_FallsBackToFirst(t *testing.T) {
	report := &InspectReport{Installed: []InstalledDistribution{
		{Metadata: DistributionMetadata{Name: "other", RequiresDist: []string{"a"}}},
		{Metadata: DistributionMetadata{Name: "second", RequiresDist: []string{"b"}}},
	}}
	if got := report.RequiresDist("missing"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("RequiresDist() = %v, want [a]", got)
	}
	var empty *InspectReport
	if got := empty.RequiresDist("x"); got != nil {
		t.Errorf("nil report RequiresDist() = %v", got)
	}
}

func TestProcessErrorMessage(t *testing.T) {
	err := &ProcessError{Args: []string{"python3", "-m", "pip"}, ExitCode: 2, Stderr: "No matching distribution\n"}
	msg := err.Error()
	if !strings.Contains(msg, "exit code 2") || !strings.Contains(msg, "No matching distribution") {
		t.Errorf("Error() = %q", msg)
	}
}
