package threshold

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ninja0404/dex-reputation/internal/model"
	"github.com/ninja0404/dex-reputation/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.SetDefault((&logger.Config{
		Level:         "error",
		Discard:       true,
		DisableSentry: true,
	}).Build())
	os.Exit(m.Run())
}

// stubThresholdRepo 内存实现，fail为true时LoadAll返回错误
type stubThresholdRepo struct {
	sets  map[string]*model.ThresholdSet
	fail  bool
	loads int
}

func (r *stubThresholdRepo) LoadAll() (map[string]*model.ThresholdSet, error) {
	r.loads++
	if r.fail {
		return nil, errors.New("storage unavailable")
	}
	out := make(map[string]*model.ThresholdSet, len(r.sets))
	for k, v := range r.sets {
		out[k] = v
	}
	return out, nil
}

func (r *stubThresholdRepo) LoadSet(protocol, category string) (*model.ThresholdSet, error) {
	if set, ok := r.sets[model.ThresholdKey(protocol, category)]; ok {
		return set, nil
	}
	return nil, errors.New("not found")
}

func testSet(protocol, category string) *model.ThresholdSet {
	return &model.ThresholdSet{
		Protocol: protocol,
		Category: category,
		Features: map[string][]model.Cutpoint{
			model.FeatureTotalDepositUSD: {
				{Percentile: 10, Value: decimal.NewFromInt(100)},
				{Percentile: 90, Value: decimal.NewFromInt(10000)},
			},
		},
	}
}

func TestCacheStartAndLookup(t *testing.T) {
	repo := &stubThresholdRepo{
		sets: map[string]*model.ThresholdSet{
			model.ThresholdKey("uniswap", "dexes"):        testSet("uniswap", "dexes"),
			model.ThresholdKey(DefaultProtocol, "dexes"):  testSet(DefaultProtocol, "dexes"),
			model.ThresholdKey(DefaultProtocol, "yield"):  testSet(DefaultProtocol, "yield"),
		},
	}

	cache := NewCache(repo, time.Hour)
	if cache.Ready() {
		t.Fatal("启动前不应Ready")
	}
	if err := cache.Start(); err != nil {
		t.Fatalf("Start() 失败: %v", err)
	}
	defer cache.Stop()

	if !cache.Ready() {
		t.Error("首次加载后应Ready")
	}

	// 协议专属切点直接命中
	set, err := cache.GetThresholds("uniswap", "dexes")
	if err != nil {
		t.Fatalf("GetThresholds(uniswap, dexes) 失败: %v", err)
	}
	if set.Protocol != "uniswap" {
		t.Errorf("协议 = %s, 期望 uniswap", set.Protocol)
	}

	// 未知协议回退到default
	set, err = cache.GetThresholds("pancakeswap", "yield")
	if err != nil {
		t.Fatalf("default回退失败: %v", err)
	}
	if set.Protocol != DefaultProtocol {
		t.Errorf("协议 = %s, 期望 %s", set.Protocol, DefaultProtocol)
	}

	// 协议和default都没有的类别
	if _, err = cache.GetThresholds("uniswap", "lending"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, 期望 ErrNotFound", err)
	}
}

func TestCacheStartFailsWithoutData(t *testing.T) {
	repo := &stubThresholdRepo{fail: true}
	cache := NewCache(repo, time.Hour)

	if err := cache.Start(); err == nil {
		t.Fatal("首次加载失败时Start()应返回错误")
	}
	if cache.Ready() {
		t.Error("加载失败后不应Ready")
	}
	if _, err := cache.GetThresholds("uniswap", "dexes"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, 期望 ErrNotFound", err)
	}
}

func TestCacheRefreshFailureKeepsSnapshot(t *testing.T) {
	repo := &stubThresholdRepo{
		sets: map[string]*model.ThresholdSet{
			model.ThresholdKey(DefaultProtocol, "dexes"): testSet(DefaultProtocol, "dexes"),
		},
	}
	cache := NewCache(repo, time.Hour)
	if err := cache.Start(); err != nil {
		t.Fatalf("Start() 失败: %v", err)
	}
	defer cache.Stop()

	version := cache.Version()

	repo.fail = true
	if err := cache.Refresh(); err == nil {
		t.Fatal("存储故障时Refresh()应返回错误")
	}

	// 旧快照继续服务
	if _, err := cache.GetThresholds(DefaultProtocol, "dexes"); err != nil {
		t.Errorf("刷新失败后旧快照应可用: %v", err)
	}
	if cache.Version() != version {
		t.Errorf("失败刷新不应推进版本: %d -> %d", version, cache.Version())
	}
}

func TestCacheRefreshAdvancesVersion(t *testing.T) {
	repo := &stubThresholdRepo{
		sets: map[string]*model.ThresholdSet{
			model.ThresholdKey(DefaultProtocol, "dexes"): testSet(DefaultProtocol, "dexes"),
		},
	}
	cache := NewCache(repo, time.Hour)
	if err := cache.Start(); err != nil {
		t.Fatalf("Start() 失败: %v", err)
	}
	defer cache.Stop()

	v1 := cache.Version()

	repo.sets[model.ThresholdKey(DefaultProtocol, "yield")] = testSet(DefaultProtocol, "yield")
	if err := cache.Refresh(); err != nil {
		t.Fatalf("Refresh() 失败: %v", err)
	}

	if cache.Version() <= v1 {
		t.Errorf("版本未推进: %d -> %d", v1, cache.Version())
	}
	if _, err := cache.GetThresholds(DefaultProtocol, "yield"); err != nil {
		t.Errorf("新加载的类别应可见: %v", err)
	}
}
