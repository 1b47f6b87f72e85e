package config

import (
	"sync"

	"github.com/ninja0404/dex-reputation/pkg/config/loader"
	"github.com/ninja0404/dex-reputation/pkg/config/loader/memory"
	"github.com/ninja0404/dex-reputation/pkg/config/reader"
	jsonReader "github.com/ninja0404/dex-reputation/pkg/config/reader/json"
	"github.com/ninja0404/dex-reputation/pkg/config/source"
)

// Config is an interface abstraction for dynamic configuration
type Config interface {
	// Values provide the reader.Values interface
	reader.Values
	// Close stops the config loader/watchers
	Close() error
	// Load config sources
	Load(source ...source.Source) error
	// Sync force a source changeset sync
	Sync() error
	// Watch a value for changes
	Watch(path ...string) (Watcher, error)
}

// Watcher is the config watcher
type Watcher interface {
	Next() (reader.Value, error)
	Stop() error
}

type Options struct {
	Loader loader.Loader
	Reader reader.Reader
	Source []source.Source
}

type Option func(o *Options)

type config struct {
	exit chan bool
	opts Options

	sync.RWMutex
	// the current snapshot
	snap *loader.Snapshot
	// the current values
	vals reader.Values
}

var (
	defaultConfig Config
	configOnce    sync.Once
)

// Default returns the process-wide config instance
func Default() Config {
	configOnce.Do(func() {
		defaultConfig = NewConfig()
	})
	return defaultConfig
}

// NewConfig returns a new config instance
func NewConfig(opts ...Option) Config {
	var options Options
	for _, o := range opts {
		o(&options)
	}
	if options.Loader == nil {
		options.Loader = memory.NewLoader()
	}
	if options.Reader == nil {
		options.Reader = jsonReader.NewReader()
	}

	return &config{
		exit: make(chan bool),
		opts: options,
	}
}

// Load 加载配置源到默认配置实例
func Load(sources ...source.Source) error {
	return Default().Load(sources...)
}

// Get 从默认配置实例读取指定路径的值
func Get(path ...string) reader.Value {
	return Default().Get(path...)
}

// Scan 将默认配置实例整体反序列化到对象
func Scan(v interface{}) error {
	return Default().Scan(v)
}

// Sync 强制默认配置实例同步配置源
func Sync() error {
	return Default().Sync()
}

func (c *config) run() {
	watch := func(w loader.Watcher) error {
		for {
			// get changeset
			snap, err := w.Next()
			if err != nil {
				return err
			}

			c.Lock()

			// save
			c.snap = snap

			// set values
			c.vals, _ = c.opts.Reader.Values(snap.ChangeSet)

			c.Unlock()
		}
	}

	for {
		w, err := c.opts.Loader.Watch()
		if err != nil {
			continue
		}

		done := make(chan bool)

		// the stop watch func
		go func() {
			select {
			case <-done:
			case <-c.exit:
			}
			w.Stop()
		}()

		// block watch
		if err := watch(w); err != nil {
			// do something better
			close(done)
		}

		// check if the config is stopped
		select {
		case <-c.exit:
			return
		default:
		}
	}
}

func (c *config) Load(sources ...source.Source) error {
	if err := c.opts.Loader.Load(sources...); err != nil {
		return err
	}

	snap, err := c.opts.Loader.Snapshot()
	if err != nil {
		return err
	}

	c.Lock()
	defer c.Unlock()

	c.snap = snap
	vals, err := c.opts.Reader.Values(snap.ChangeSet)
	if err != nil {
		return err
	}
	c.vals = vals

	go c.run()

	return nil
}

func (c *config) Sync() error {
	if err := c.opts.Loader.Sync(); err != nil {
		return err
	}

	snap, err := c.opts.Loader.Snapshot()
	if err != nil {
		return err
	}

	c.Lock()
	defer c.Unlock()

	c.snap = snap
	vals, err := c.opts.Reader.Values(snap.ChangeSet)
	if err != nil {
		return err
	}
	c.vals = vals

	return nil
}

func (c *config) Close() error {
	select {
	case <-c.exit:
		return nil
	default:
		close(c.exit)
	}
	return c.opts.Loader.Close()
}

func (c *config) Get(path ...string) reader.Value {
	c.RLock()
	defer c.RUnlock()

	// did sync actually work?
	if c.vals != nil {
		return c.vals.Get(path...)
	}

	// no value
	return newValue()
}

func (c *config) Set(val interface{}, path ...string) {
	c.Lock()
	defer c.Unlock()

	if c.vals != nil {
		c.vals.Set(val, path...)
	}
}

func (c *config) Del(path ...string) {
	c.Lock()
	defer c.Unlock()

	if c.vals != nil {
		c.vals.Del(path...)
	}
}

func (c *config) Bytes() []byte {
	c.RLock()
	defer c.RUnlock()

	if c.vals == nil {
		return []byte{}
	}

	return c.vals.Bytes()
}

func (c *config) Map() map[string]interface{} {
	c.RLock()
	defer c.RUnlock()

	if c.vals == nil {
		return map[string]interface{}{}
	}

	return c.vals.Map()
}

func (c *config) Scan(v interface{}) error {
	c.RLock()
	defer c.RUnlock()

	if c.vals == nil {
		return nil
	}

	return c.vals.Scan(v)
}

func (c *config) Watch(path ...string) (Watcher, error) {
	value := c.Get(path...)

	w, err := c.opts.Loader.Watch(path...)
	if err != nil {
		return nil, err
	}

	return &configWatcher{
		lw:    w,
		rd:    c.opts.Reader,
		path:  path,
		value: value,
	}, nil
}

type configWatcher struct {
	lw    loader.Watcher
	rd    reader.Reader
	path  []string
	value reader.Value
}

func (w *configWatcher) Next() (reader.Value, error) {
	for {
		s, err := w.lw.Next()
		if err != nil {
			return nil, err
		}

		// only process changes
		if bytes := s.ChangeSet.Data; len(bytes) == 0 {
			continue
		}

		vals, err := w.rd.Values(s.ChangeSet)
		if err != nil {
			return nil, err
		}

		return vals.Get(w.path...), nil
	}
}

func (w *configWatcher) Stop() error {
	return w.lw.Stop()
}
