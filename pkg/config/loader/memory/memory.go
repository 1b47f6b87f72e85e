package memory

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ninja0404/dex-reputation/pkg/config/loader"
	"github.com/ninja0404/dex-reputation/pkg/config/reader"
	"github.com/ninja0404/dex-reputation/pkg/config/reader/json"
	"github.com/ninja0404/dex-reputation/pkg/config/source"
)

type memory struct {
	exit chan bool
	opts loader.Options

	sync.RWMutex
	// the current snapshot
	snap *loader.Snapshot
	// the current values
	vals reader.Values
	// all the sets
	sets []*source.ChangeSet
	// all the sources
	sources []source.Source

	watchers []*watcher
}

type watcher struct {
	exit    chan bool
	path    []string
	value   reader.Value
	reader  reader.Reader
	updates chan reader.Value
}

// NewLoader creates a memory loader backed by the given sources
func NewLoader(opts ...loader.Option) loader.Loader {
	options := loader.Options{
		Reader: json.NewReader(),
	}

	for _, o := range opts {
		o(&options)
	}

	m := &memory{
		exit:    make(chan bool),
		opts:    options,
		sets:    make([]*source.ChangeSet, len(options.Source)),
		sources: options.Source,
	}

	for i, s := range options.Source {
		go m.watch(i, s)
	}

	return m
}

func (m *memory) watch(idx int, s source.Source) {
	// watches a source for changes
	watch := func(idx int, s source.Watcher) error {
		for {
			// get changeset
			cs, err := s.Next()
			if err != nil {
				return err
			}

			m.Lock()

			// save
			m.sets[idx] = cs

			// merge sets
			set, err := m.opts.Reader.Merge(m.sets...)
			if err != nil {
				m.Unlock()
				return err
			}

			// set values
			m.vals, _ = m.opts.Reader.Values(set)
			m.snap = &loader.Snapshot{
				ChangeSet: set,
				Version:   genVer(),
			}
			m.Unlock()

			// send watch updates
			m.update()
		}
	}

	for {
		// watch the source
		w, err := s.Watch()
		if err != nil {
			time.Sleep(time.Second)
			continue
		}

		// block watch
		if err := watch(idx, w); err != nil {
			// do something better
			time.Sleep(time.Second)
		}

		// check if the loader has been stopped
		select {
		case <-m.exit:
			return
		default:
		}
	}
}

func (m *memory) loaded() bool {
	m.RLock()
	loaded := m.vals != nil
	m.RUnlock()
	return loaded
}

// reload reads the sets and creates new values
func (m *memory) reload() error {
	m.Lock()
	defer m.Unlock()

	// merge sets
	set, err := m.opts.Reader.Merge(m.sets...)
	if err != nil {
		return err
	}

	// set values
	m.vals, _ = m.opts.Reader.Values(set)
	m.snap = &loader.Snapshot{
		ChangeSet: set,
		Version:   genVer(),
	}

	return nil
}

func (m *memory) update() {
	m.RLock()
	watchers := make([]*watcher, 0, len(m.watchers))
	watchers = append(watchers, m.watchers...)
	vals := m.vals
	m.RUnlock()

	for _, w := range watchers {
		if vals == nil {
			continue
		}
		select {
		case w.updates <- vals.Get(w.path...):
		default:
		}
	}
}

func (m *memory) Close() error {
	select {
	case <-m.exit:
		return nil
	default:
		close(m.exit)
	}
	return nil
}

func (m *memory) Snapshot() (*loader.Snapshot, error) {
	if m.loaded() {
		m.RLock()
		snap := loader.Copy(m.snap)
		m.RUnlock()
		return snap, nil
	}

	// not loaded, sync
	if err := m.Sync(); err != nil {
		return nil, err
	}

	// make copy
	m.RLock()
	snap := loader.Copy(m.snap)
	m.RUnlock()

	return snap, nil
}

func (m *memory) Load(sources ...source.Source) error {
	var gerr error

	for _, s := range sources {
		set, err := s.Read()
		if err != nil {
			gerr = err
			// continue processing remaining sources
			continue
		}

		m.Lock()
		m.sources = append(m.sources, s)
		m.sets = append(m.sets, set)
		idx := len(m.sets) - 1
		m.Unlock()

		go m.watch(idx, s)
	}

	if err := m.reload(); err != nil {
		gerr = err
	}

	return gerr
}

func (m *memory) Sync() error {
	//nolint:prealloc
	var sets []*source.ChangeSet

	m.Lock()

	// read the source
	var gerr []string

	for _, s := range m.sources {
		ch, err := s.Read()
		if err != nil {
			gerr = append(gerr, err.Error())
			continue
		}
		sets = append(sets, ch)
	}

	// merge sets
	set, err := m.opts.Reader.Merge(sets...)
	if err != nil {
		m.Unlock()
		return err
	}

	// set values
	vals, err := m.opts.Reader.Values(set)
	if err != nil {
		m.Unlock()
		return err
	}
	m.vals = vals
	m.snap = &loader.Snapshot{
		ChangeSet: set,
		Version:   genVer(),
	}

	m.Unlock()

	// update watchers
	m.update()

	if len(gerr) > 0 {
		return fmt.Errorf("source loading errors: %s", gerr)
	}

	return nil
}

func (m *memory) Watch(path ...string) (loader.Watcher, error) {
	value, err := m.get(path...)
	if err != nil {
		return nil, err
	}

	m.Lock()

	w := &watcher{
		exit:    make(chan bool),
		path:    path,
		value:   value,
		reader:  m.opts.Reader,
		updates: make(chan reader.Value, 1),
	}

	m.watchers = append(m.watchers, w)

	m.Unlock()

	// watcher removal
	go func() {
		<-w.exit
		m.Lock()
		for i, el := range m.watchers {
			if el == w {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				break
			}
		}
		m.Unlock()
	}()

	return w, nil
}

func (m *memory) get(path ...string) (reader.Value, error) {
	if !m.loaded() {
		if err := m.Sync(); err != nil {
			return nil, err
		}
	}

	m.RLock()
	defer m.RUnlock()

	if m.vals == nil {
		return nil, errors.New("no values loaded")
	}

	return m.vals.Get(path...), nil
}

func (m *memory) String() string {
	return "memory"
}

func (w *watcher) Next() (*loader.Snapshot, error) {
	for {
		select {
		case <-w.exit:
			return nil, errors.New("watcher stopped")
		case v := <-w.updates:
			if bytes.Equal(w.value.Bytes(), v.Bytes()) {
				continue
			}
			w.value = v

			cs := &source.ChangeSet{
				Data:      v.Bytes(),
				Format:    w.reader.String(),
				Source:    "memory",
				Timestamp: time.Now(),
			}
			cs.Checksum = cs.Sum()

			return &loader.Snapshot{
				ChangeSet: cs,
				Version:   genVer(),
			}, nil
		}
	}
}

func (w *watcher) Stop() error {
	select {
	case <-w.exit:
	default:
		close(w.exit)
	}
	return nil
}

func genVer() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
