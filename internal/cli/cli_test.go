package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/powerplanchanger/ppc/internal/battery"
	"github.com/powerplanchanger/ppc/internal/config"
	"github.com/powerplanchanger/ppc/internal/elevation"
	"github.com/powerplanchanger/ppc/internal/powerplan"
	"github.com/powerplanchanger/ppc/internal/service"
)

type fakeSchemes struct {
	names  map[uuid.UUID]string
	order  []uuid.UUID
	active uuid.UUID
}

func newFakeSchemes() *fakeSchemes {
	return &fakeSchemes{
		names: map[uuid.UUID]string{
			powerplan.BalancedGUID:   "Balanced",
			powerplan.PowerSaverGUID: "Power saver",
		},
		order:  []uuid.UUID{powerplan.BalancedGUID, powerplan.PowerSaverGUID},
		active: powerplan.BalancedGUID,
	}
}

func (f *fakeSchemes) Enumerate() ([]uuid.UUID, error) { return f.order, nil }
func (f *fakeSchemes) Active() (uuid.UUID, error)      { return f.active, nil }
func (f *fakeSchemes) SetActive(id uuid.UUID) error    { f.active = id; return nil }
func (f *fakeSchemes) FriendlyName(id uuid.UUID) (string, error) {
	return f.names[id], nil
}
func (f *fakeSchemes) Description(uuid.UUID) (string, error) { return "", nil }

type fakeServices struct {
	mu     sync.Mutex
	state  map[string]service.Status
	denied bool
}

func (f *fakeServices) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for n := range f.state {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeServices) lookup(name string) (string, bool) {
	for n := range f.state {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

func (f *fakeServices) Query(name string) (service.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.lookup(name)
	if !ok {
		return service.StatusUnknown, service.ErrServiceNotFound
	}
	return f.state[n], nil
}

func (f *fakeServices) set(name string, st service.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied {
		return service.ErrAccessDenied
	}
	n, ok := f.lookup(name)
	if !ok {
		return service.ErrServiceNotFound
	}
	f.state[n] = st
	return nil
}

func (f *fakeServices) Start(name string) error { return f.set(name, service.StatusRunning) }
func (f *fakeServices) Stop(name string) error  { return f.set(name, service.StatusStopped) }

func (f *fakeServices) Info(name string) (service.Info, error) {
	if _, err := f.Query(name); err != nil {
		return service.Info{}, err
	}
	return service.Info{Name: name, DisplayName: name + " Display", Description: "Test service"}, nil
}

type env struct {
	schemes  *fakeSchemes
	services *fakeServices
	config   string
	list     string
}

func setup(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		schemes: newFakeSchemes(),
		services: &fakeServices{state: map[string]service.Status{
			"Spooler": service.StatusStopped,
			"BITS":    service.StatusRunning,
			"W32Time": service.StatusStopped,
		}},
		config: filepath.Join(dir, "app.conf"),
		list:   filepath.Join(dir, "ServiceList.txt"),
	}

	cfg := config.NewAppConfig()
	cfg.History.File = filepath.Join(dir, "PowerHistory.log")
	cfg.Services.ListFile = e.list
	if err := config.SaveAppConfig(cfg, e.config); err != nil {
		t.Fatalf("SaveAppConfig: %v", err)
	}

	oldSchemes, oldBattery, oldServices, oldElevated := schemeAPI, batterySource, serviceCtl, runElevated
	schemeAPI = func() powerplan.SchemeAPI { return e.schemes }
	serviceCtl = func() service.Controller { return e.services }
	t.Cleanup(func() {
		schemeAPI, batterySource, serviceCtl, runElevated = oldSchemes, oldBattery, oldServices, oldElevated
		cfgFile = ""
	})
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	AddCommands(root)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestPlansList(t *testing.T) {
	e := setup(t)
	out, err := e.run(t, "plans", "list")
	if err != nil {
		t.Fatalf("plans list: %v", err)
	}
	if !strings.Contains(out, "*  Balanced") {
		t.Errorf("active plan not marked:\n%s", out)
	}
	if !strings.Contains(out, "Power saver") {
		t.Errorf("missing plan:\n%s", out)
	}
}

func TestPlansSet(t *testing.T) {
	e := setup(t)

	out, err := e.run(t, "plans", "set", "power SAVER")
	if err != nil {
		t.Fatalf("plans set: %v", err)
	}
	if e.schemes.active != powerplan.PowerSaverGUID {
		t.Errorf("active = %s, want power saver", e.schemes.active)
	}
	if !strings.Contains(out, "Power plan changed to Power saver") {
		t.Errorf("output = %q", out)
	}

	out, err = e.run(t, "plans", "set", powerplan.PowerSaverGUID.String())
	if err != nil {
		t.Fatalf("plans set again: %v", err)
	}
	if !strings.Contains(out, "already active") {
		t.Errorf("output = %q", out)
	}

	if _, err := e.run(t, "plans", "set", "Ultimate"); !errors.Is(err, powerplan.ErrPlanNotFound) {
		t.Errorf("unknown plan error = %v, want ErrPlanNotFound", err)
	}
}

func TestBattery(t *testing.T) {
	e := setup(t)
	batterySource = func() battery.Source {
		return battery.SourceFunc(func() (battery.Status, error) {
			return battery.Status{
				ACLineStatus:        1,
				BatteryFlag:         8,
				BatteryLifePercent:  57,
				BatteryLifeTime:     -1,
				BatteryFullLifeTime: -1,
			}, nil
		})
	}

	out, err := e.run(t, "battery")
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	for _, want := range []string{"Status:     Charging", "Charge:     57%", "Plugged in: yes", "Charging:   yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Remaining:") {
		t.Errorf("unknown lifetime printed:\n%s", out)
	}
}

func TestServicesAddListRemove(t *testing.T) {
	e := setup(t)

	if _, err := e.run(t, "services", "add", "spooler", "BITS"); err != nil {
		t.Fatalf("services add: %v", err)
	}
	names, err := config.LoadServiceList(e.list)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "BITS" || names[1] != "spooler" {
		t.Errorf("list = %v, want [BITS spooler]", names)
	}

	out, err := e.run(t, "services", "list")
	if err != nil {
		t.Fatalf("services list: %v", err)
	}
	if out != "[Y] BITS\n[N] spooler\n" {
		t.Errorf("list output = %q", out)
	}

	if _, err := e.run(t, "services", "remove", "SPOOLER"); err != nil {
		t.Fatalf("services remove: %v", err)
	}
	names, _ = config.LoadServiceList(e.list)
	if len(names) != 1 || names[0] != "BITS" {
		t.Errorf("list after remove = %v", names)
	}

	if _, err := e.run(t, "services", "remove", "Spooler"); err == nil {
		t.Error("removing an unlisted service succeeded")
	}
}

func TestServicesAddUnknown(t *testing.T) {
	e := setup(t)
	_, err := e.run(t, "services", "add", "NoSuchService")
	if !errors.Is(err, service.ErrServiceNotFound) {
		t.Fatalf("error = %v, want ErrServiceNotFound", err)
	}
	names, _ := config.LoadServiceList(e.list)
	if len(names) != 0 {
		t.Errorf("list = %v, want empty", names)
	}
}

func TestServicesListPrunesRemoved(t *testing.T) {
	e := setup(t)
	if err := config.SaveServiceList(e.list, []string{"Gone", "Spooler"}); err != nil {
		t.Fatal(err)
	}

	out, err := e.run(t, "services", "list")
	if err != nil {
		t.Fatalf("services list: %v", err)
	}
	if out != "[N] Spooler\n" {
		t.Errorf("output = %q", out)
	}
	names, _ := config.LoadServiceList(e.list)
	if len(names) != 1 || names[0] != "Spooler" {
		t.Errorf("saved list = %v, want [Spooler]", names)
	}
}

func TestServicesStartStop(t *testing.T) {
	e := setup(t)
	if err := config.SaveServiceList(e.list, []string{"Spooler", "W32Time"}); err != nil {
		t.Fatal(err)
	}

	if _, err := e.run(t, "services", "start", "--wait", "--timeout", "5s"); err != nil {
		t.Fatalf("services start: %v", err)
	}
	for _, n := range []string{"Spooler", "W32Time"} {
		if st, _ := e.services.Query(n); st != service.StatusRunning {
			t.Errorf("%s = %s, want running", n, st)
		}
	}

	if _, err := e.run(t, "services", "stop", "W32Time"); err != nil {
		t.Fatalf("services stop: %v", err)
	}
	if st, _ := e.services.Query("W32Time"); st != service.StatusStopped {
		t.Errorf("W32Time = %s, want stopped", st)
	}
	if st, _ := e.services.Query("Spooler"); st != service.StatusRunning {
		t.Errorf("Spooler = %s, want running", st)
	}
}

func TestServicesStartElevates(t *testing.T) {
	if elevation.IsElevated() {
		t.Skip("already elevated")
	}
	e := setup(t)
	e.services.denied = true

	var got []string
	runElevated = func(args ...string) error {
		got = args
		return nil
	}

	if _, err := e.run(t, "services", "start", "Spooler"); !errors.Is(err, service.ErrAccessDenied) {
		t.Fatalf("without --elevate error = %v, want ErrAccessDenied", err)
	}
	if got != nil {
		t.Fatalf("elevated without --elevate: %v", got)
	}

	if _, err := e.run(t, "services", "start", "--elevate", "Spooler"); err != nil {
		t.Fatalf("services start --elevate: %v", err)
	}
	want := []string{"services", "start", "Spooler"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("elevated args = %v, want %v", got, want)
	}
}

func TestServicesAvailable(t *testing.T) {
	e := setup(t)
	if err := config.SaveServiceList(e.list, []string{"BITS"}); err != nil {
		t.Fatal(err)
	}

	out, err := e.run(t, "services", "available", "--filter", "w32")
	if err != nil {
		t.Fatalf("services available: %v", err)
	}
	if !strings.Contains(out, "W32Time") || strings.Contains(out, "Spooler") {
		t.Errorf("filtered output = %q", out)
	}

	out, err = e.run(t, "services", "available")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "*  BITS") {
		t.Errorf("listed service not marked:\n%s", out)
	}
}

func TestServicesInfo(t *testing.T) {
	e := setup(t)
	out, err := e.run(t, "services", "info", "BITS")
	if err != nil {
		t.Fatalf("services info: %v", err)
	}
	for _, want := range []string{"Display name: BITS Display", "Status:       Running"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	e := setup(t)

	if _, err := e.run(t, "config", "init"); err == nil {
		t.Error("init over an existing file succeeded without --force")
	}
	out, err := e.run(t, "config", "init", "--force")
	if err != nil {
		t.Fatalf("config init --force: %v", err)
	}
	if !strings.Contains(out, e.config) {
		t.Errorf("output = %q", out)
	}

	out, err = e.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if out != "Configuration is valid\n" {
		t.Errorf("output = %q", out)
	}
}

func TestConfigPath(t *testing.T) {
	e := setup(t)
	out, err := e.run(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != e.config {
		t.Errorf("path = %q, want %q", out, e.config)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		filter string
		fields []string
		want   bool
	}{
		{"", []string{"Spooler"}, true},
		{"spool", []string{"Spooler"}, true},
		{"print", []string{"Spooler", "Print Spooler"}, true},
		{"bits", []string{"Spooler", ""}, false},
	}
	for _, tt := range tests {
		if got := matches(tt.filter, tt.fields...); got != tt.want {
			t.Errorf("matches(%q, %v) = %v, want %v", tt.filter, tt.fields, got, tt.want)
		}
	}
}
