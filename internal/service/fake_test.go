package service

import (
	"strings"
	"sync"
)

type fakeController struct {
	mu       sync.Mutex
	status   map[string]Status
	info     map[string]Info
	failOn   map[string]error
	started  []string
	stopped  []string
	queries  int
	infoHits int
}

func newFake(status map[string]Status) *fakeController {
	return &fakeController{status: status, info: map[string]Info{}, failOn: map[string]error{}}
}

func (f *fakeController) lookup(name string) (string, bool) {
	for n := range f.status {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

func (f *fakeController) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for n := range f.status {
		names = append(names, n)
	}
	return names, nil
}

func (f *fakeController) Query(name string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	n, ok := f.lookup(name)
	if !ok {
		return StatusUnknown, ErrServiceNotFound
	}
	return f.status[n], nil
}

func (f *fakeController) Start(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[name]; err != nil {
		return err
	}
	f.started = append(f.started, name)
	f.status[name] = StatusStartPending
	return nil
}

func (f *fakeController) Stop(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[name]; err != nil {
		return err
	}
	f.stopped = append(f.stopped, name)
	f.status[name] = StatusStopped
	return nil
}

func (f *fakeController) Info(name string) (Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoHits++
	if _, ok := f.lookup(name); !ok {
		return Info{}, ErrServiceNotFound
	}
	return Info{Name: name, DisplayName: "Display " + name}, nil
}
