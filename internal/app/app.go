package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/ninja0404/dex-reputation/internal/config"
	"github.com/ninja0404/dex-reputation/internal/feature"
	"github.com/ninja0404/dex-reputation/internal/health"
	"github.com/ninja0404/dex-reputation/internal/pipeline"
	"github.com/ninja0404/dex-reputation/internal/repo"
	"github.com/ninja0404/dex-reputation/internal/scorer"
	kafkasource "github.com/ninja0404/dex-reputation/internal/source/kafka"
	"github.com/ninja0404/dex-reputation/internal/threshold"
	"github.com/ninja0404/dex-reputation/pkg/database/polardbx"
	"github.com/ninja0404/dex-reputation/pkg/logger"
	"github.com/ninja0404/dex-reputation/pkg/mq/kafka"
)

// Application 钱包信誉评分应用
type Application struct {
	configManager  *config.Manager
	pipeline       *pipeline.Pipeline
	thresholdCache *threshold.Cache
	healthServer   *health.Server
	db             *gorm.DB
}

// New 创建新的评分应用实例
func New() *Application {
	return &Application{
		configManager: config.NewManager(),
	}
}

// Initialize 初始化应用
func (app *Application) Initialize(configPath string) error {
	// 1. 加载配置
	if err := app.configManager.Load(configPath); err != nil {
		return err
	}

	// 2. 初始化日志系统
	if err := app.configManager.InitLogger(); err != nil {
		return err
	}
	logger.Info("🚀 钱包信誉评分服务初始化开始", logger.String("config_path", configPath))

	// 3. 初始化数据库
	if err := app.initDatabase(); err != nil {
		return err
	}

	// 4. 预热阈值缓存
	if err := app.initThresholdCache(); err != nil {
		return err
	}

	// 5. 组装评分管道
	if err := app.initPipeline(); err != nil {
		return err
	}

	// 6. 设置Kafka传输
	if err := app.setupTransport(); err != nil {
		return err
	}

	// 7. 健康检查服务
	healthCfg := app.configManager.GetHealthConfig()
	if healthCfg.Addr != "" {
		app.healthServer = health.NewServer(healthCfg.Addr, app.pipeline)
	}

	logger.Info("✅ 钱包信誉评分服务初始化完成")
	return nil
}

// initDatabase 初始化数据库连接
func (app *Application) initDatabase() error {
	// 从默认配置初始化数据库
	if err := polardbx.SetupDatabaseFromDefaultConfig(); err != nil {
		return err
	}

	// 获取数据库连接
	db, err := polardbx.GetDb()
	if err != nil {
		return err
	}
	app.db = db

	logger.Info("📊 数据库连接已建立")
	return nil
}

// initThresholdCache 预热阈值缓存
// 配置存储不可达是基础设施级故障，直接返回错误交给外部重启
func (app *Application) initThresholdCache() error {
	thresholdRepo := repo.NewThresholdRepo(app.db)
	cache := threshold.NewCache(thresholdRepo, app.configManager.GetThresholdConfig().RefreshInterval())

	if err := cache.Start(); err != nil {
		return err
	}

	app.thresholdCache = cache
	return nil
}

// initPipeline 组装评分管道
func (app *Application) initPipeline() error {
	scoringCfg := app.configManager.GetScoringConfig()

	// 稳定币集合：配置优先，其次token_metadata表，最后内置集合
	stableSymbols := scoringCfg.StableSymbols
	if len(stableSymbols) == 0 {
		metaRepo := repo.NewTokenMetadataRepo(app.db)
		symbols, err := metaRepo.GetStablecoinSymbols()
		if err != nil {
			logger.Warn("⚠️ 查询稳定币元数据失败，使用内置稳定币集合", logger.FieldErr(err))
		} else {
			stableSymbols = symbols
		}
	}

	extractor := feature.NewExtractor(stableSymbols)
	aggregator := scorer.NewAggregator(
		scoringCfg.EffectiveLPWeights(),
		scoringCfg.EffectiveSwapWeights(),
		scoringCfg.EffectiveCategoryWeights(),
		scoringCfg.Tags,
	)

	orchestrator := pipeline.NewOrchestrator(extractor, aggregator, app.thresholdCache, scoringCfg.WalletTimeout())
	engine := pipeline.NewEngine(orchestrator, scoringCfg.WorkerCount)

	app.pipeline = pipeline.NewPipeline(engine, app.thresholdCache)
	app.pipeline.SetPublisherConfig(app.configManager.GetKafkaConfig())
	return nil
}

// setupTransport 设置Kafka消费与生产
func (app *Application) setupTransport() error {
	kafkaCfg := app.configManager.GetKafkaConfig()

	// 出站生产者
	if err := kafka.SetupKafkaProducer(kafkaCfg.Brokers, kafkaCfg.Producer); err != nil {
		return err
	}

	// 入站钱包批次数据源
	batchSource := kafkasource.NewSource(kafkasource.SourceConfig{
		Topic:       kafkaCfg.BatchTopic,
		Brokers:     kafkaCfg.Brokers,
		KafkaConfig: kafkaCfg.Consumer,
	})
	app.pipeline.GetSourceManager().AddSource(batchSource)

	logger.Info("📬 已配置Kafka传输",
		logger.String("batch_topic", kafkaCfg.BatchTopic),
		logger.String("scores_topic", kafkaCfg.ScoresTopic),
		logger.Any("brokers", kafkaCfg.Brokers))
	return nil
}

// Run 运行应用
func (app *Application) Run() error {
	logger.Info("🎯 启动钱包信誉评分管道")

	// 启动数据处理管道
	if err := app.pipeline.Start(); err != nil {
		return err
	}

	// 启动健康检查服务
	if app.healthServer != nil {
		if err := app.healthServer.Start(); err != nil {
			return err
		}
	}

	logger.Info("🔥 钱包信誉评分服务已启动，开始消费钱包批次...")
	logger.Info("⚡ 分片处理架构: 按钱包地址Hash分片 | 类别并行评分 | 单钱包超时保护")

	// 等待终止信号
	app.waitForShutdown()

	return nil
}

// waitForShutdown 等待关闭信号
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 阻塞等待信号
	sig := <-quit
	logger.Info("📤 收到终止信号，开始优雅关闭应用...", logger.String("signal", sig.String()))

	// 优雅关闭
	app.Shutdown()
}

// Shutdown 优雅关闭应用
func (app *Application) Shutdown() {
	logger.Info("🛑 开始关闭钱包信誉评分服务...")

	var errs *multierror.Error

	// 停止健康检查服务
	if app.healthServer != nil {
		if err := app.healthServer.Stop(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	// 停止数据处理管道
	if err := app.pipeline.Stop(); err != nil {
		errs = multierror.Append(errs, err)
	}

	// 停止阈值缓存刷新
	if app.thresholdCache != nil {
		app.thresholdCache.Stop()
	}

	// 关闭Kafka生产者
	if err := kafka.CloseProducer(); err != nil {
		errs = multierror.Append(errs, err)
	}

	// 关闭数据库连接
	if err := polardbx.Stop(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if errs.ErrorOrNil() != nil {
		logger.Error("关闭过程中出现错误", logger.FieldErr(errs))
	}

	// 获取统计信息
	stats := app.pipeline.GetStats()
	logger.Info("📈 服务运行统计",
		logger.Int64("batches_received", stats.BatchesReceived),
		logger.Int64("wallets_succeeded", stats.WalletsSucceeded),
		logger.Int64("wallets_failed", stats.WalletsFailed),
		logger.Int64("validation_errors", stats.ValidationErrors),
		logger.Float64("avg_latency_ms", stats.AvgLatencyMs))

	logger.Info("✨ 钱包信誉评分服务已成功关闭")
}

// Start 启动应用的便捷方法
func (app *Application) Start(configPath string) error {
	// 初始化
	if err := app.Initialize(configPath); err != nil {
		logger.Error("❌ 钱包信誉评分服务初始化失败", logger.FieldErr(err))
		return err
	}

	// 运行
	if err := app.Run(); err != nil {
		logger.Error("❌ 钱包信誉评分服务运行失败", logger.FieldErr(err))
		return err
	}

	return nil
}

// GetPipeline 获取数据处理管道（用于调试和监控）
func (app *Application) GetPipeline() *pipeline.Pipeline {
	return app.pipeline
}

// GetConfigManager 获取配置管理器
func (app *Application) GetConfigManager() *config.Manager {
	return app.configManager
}

// GetDatabase 获取数据库连接
func (app *Application) GetDatabase() *gorm.DB {
	return app.db
}
