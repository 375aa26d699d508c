package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tokenstd/nip13d/internal/core/application"
	"github.com/tokenstd/nip13d/internal/core/ports"
	"github.com/tokenstd/nip13d/internal/infrastructure/alertsmanager"
	"github.com/tokenstd/nip13d/internal/infrastructure/db"
	restgateway "github.com/tokenstd/nip13d/internal/infrastructure/gateway/rest"
	timescheduler "github.com/tokenstd/nip13d/internal/infrastructure/scheduler/gocron"
	inmemorycache "github.com/tokenstd/nip13d/internal/infrastructure/snapshot-cache/inmemory"
	rediscache "github.com/tokenstd/nip13d/internal/infrastructure/snapshot-cache/redis"
	seedwallet "github.com/tokenstd/nip13d/internal/infrastructure/wallet"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

var (
	supportedDbs = supportedType{
		"badger": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
	supportedCaches = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

type Config struct {
	Datadir  string
	LogLevel int

	DbType        string
	DbDir         string
	CacheType     string
	RedisUrl      string
	SchedulerType string

	NodeUrl            string
	NodeRequestTimeout int64
	Network            string
	WalletSeed         string
	AlertManagerURL    string

	MaxFee           uint64
	ContractDeadline int64
	RefreshInterval  int64
	SnapshotTTL      int64

	repo      ports.RepoManager
	keys      ports.KeyProvider
	cache     ports.SnapshotCache
	gateway   ports.NetworkGateway
	scheduler ports.SchedulerService
	alerts    ports.Alerts
	svc       application.Service
	network   symbol.NetworkType
}

func (c *Config) String() string {
	clone := *c
	if clone.WalletSeed != "" {
		clone.WalletSeed = "••••••"
	}
	json, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir            = btcutil.AppDataDir("nip13d", false)
	defaultLogLevel           = 4
	defaultDbType             = "badger"
	defaultCacheType          = "inmemory"
	defaultSchedulerType      = "gocron"
	defaultNodeUrl            = "http://localhost:3000"
	defaultNetwork            = "testnet"
	defaultMaxFee             = 2000000
	defaultNodeRequestTimeout = 15   // seconds
	defaultContractDeadline   = 7200 // 2 hours
	defaultRefreshInterval    = 300  // seconds
	defaultSnapshotTTL        = 30   // seconds
)

// env returns a list of strings prefixed with `NIP13D_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("NIP13D_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (badger)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	CacheType = &cli.StringFlag{
		Usage: "Snapshot cache type (inmemory, redis)",
		Name:  "cache-type", EnvVars: env("CACHE_TYPE"),
		Value: defaultCacheType,
	}

	RedisUrl = &cli.StringFlag{
		Usage: "Redis db connection url if NIP13D_CACHE_TYPE is set to redis",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}

	SchedulerType = &cli.StringFlag{
		Usage: "Scheduler type (gocron)",
		Name:  "scheduler-type", EnvVars: env("SCHEDULER_TYPE"),
		Value: defaultSchedulerType,
	}

	NodeUrl = &cli.StringFlag{
		Usage: "REST API url of the node to compose against",
		Name:  "node-url", EnvVars: env("NODE_URL"),
		Value: defaultNodeUrl,
	}

	NodeRequestTimeout = &cli.Int64Flag{
		Usage: "Timeout for node API requests in seconds",
		Name:  "node-request-timeout", EnvVars: env("NODE_REQUEST_TIMEOUT"),
		Value: int64(defaultNodeRequestTimeout),
	}

	Network = &cli.StringFlag{
		Usage: "Network the node runs (mainnet, testnet)",
		Name:  "network", EnvVars: env("NETWORK"),
		Value: defaultNetwork,
	}

	WalletSeed = &cli.StringFlag{
		Usage: "Hex encoded seed the signing accounts are derived from",
		Name:  "wallet-seed", EnvVars: env("WALLET_SEED"),
	}

	AlertManagerURL = &cli.StringFlag{
		Usage: "AlertManager url to post operational alerts to, disabled when empty",
		Name:  "alertmanager-url", EnvVars: env("ALERTMANAGER_URL"),
	}

	MaxFee = &cli.Uint64Flag{
		Usage: "Maximum fee attached to composed aggregates, in absolute units",
		Name:  "max-fee", EnvVars: env("MAX_FEE"),
		Value: uint64(defaultMaxFee),
	}

	// TODO: Make this a cli.DurationFlag.
	ContractDeadline = &cli.Int64Flag{
		Usage: "Contract deadline in seconds",
		Name:  "contract-deadline", EnvVars: env("CONTRACT_DEADLINE"),
		Value: int64(defaultContractDeadline),

		// We could just print 2 hours, but it's best to let time.Duration to format it in case we
		// update the value.
		DefaultText: fmt.Sprintf("%d (~%0.f hours)", defaultContractDeadline,
			(time.Duration(defaultContractDeadline) * time.Second).Hours()),
	}

	// TODO: Make this a cli.DurationFlag.
	RefreshInterval = &cli.Int64Flag{
		Usage: "Snapshot refresh interval for tracked tokens in seconds",
		Name:  "refresh-interval", EnvVars: env("REFRESH_INTERVAL"),
		Value: int64(defaultRefreshInterval),
	}

	// TODO: Make this a cli.DurationFlag.
	SnapshotTTL = &cli.Int64Flag{
		Usage: "How long a cached token snapshot stays fresh, in seconds",
		Name:  "snapshot-ttl", EnvVars: env("SNAPSHOT_TTL"),
		Value: int64(defaultSnapshotTTL),
	}
)

var Flags = []cli.Flag{
	Datadir,
	LogLevel,
	DbType,
	CacheType,
	RedisUrl,
	SchedulerType,
	NodeUrl,
	NodeRequestTimeout,
	Network,
	WalletSeed,
	AlertManagerURL,
	MaxFee,
	ContractDeadline,
	RefreshInterval,
	SnapshotTTL,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var redisUrl string
	if c.String(CacheType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("cache type set to 'redis' but redis url is missing")
		}
	}

	return &Config{
		Datadir:            c.String(Datadir.Name),
		LogLevel:           c.Int(LogLevel.Name),
		DbType:             c.String(DbType.Name),
		DbDir:              dbPath,
		CacheType:          c.String(CacheType.Name),
		RedisUrl:           redisUrl,
		SchedulerType:      c.String(SchedulerType.Name),
		NodeUrl:            c.String(NodeUrl.Name),
		NodeRequestTimeout: c.Int64(NodeRequestTimeout.Name),
		Network:            c.String(Network.Name),
		WalletSeed:         c.String(WalletSeed.Name),
		AlertManagerURL:    c.String(AlertManagerURL.Name),
		MaxFee:             c.Uint64(MaxFee.Name),
		ContractDeadline:   c.Int64(ContractDeadline.Name),
		RefreshInterval:    c.Int64(RefreshInterval.Name),
		SnapshotTTL:        c.Int64(SnapshotTTL.Name),
	}, nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf(
			"scheduler type not supported, please select one of: %s",
			supportedSchedulers,
		)
	}
	if !supportedCaches.supports(c.CacheType) {
		return fmt.Errorf(
			"cache type not supported, please select one of: %s",
			supportedCaches,
		)
	}

	network, err := symbol.NetworkTypeFromString(c.Network)
	if err != nil {
		return err
	}
	c.network = network

	if c.MaxFee == 0 {
		return fmt.Errorf("max fee must be greater than 0")
	}
	if c.ContractDeadline < 60 {
		return fmt.Errorf("invalid contract deadline, must be at least 60 seconds")
	}
	if c.RefreshInterval < 10 {
		return fmt.Errorf("invalid refresh interval, must be at least 10 seconds")
	}
	if c.SnapshotTTL < 1 {
		return fmt.Errorf("invalid snapshot ttl, must be at least 1 second")
	}
	if c.NodeRequestTimeout < 1 {
		return fmt.Errorf("invalid node request timeout, must be at least 1 second")
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.keyProviderService(); err != nil {
		return err
	}
	if err := c.snapshotCacheService(); err != nil {
		return err
	}
	if err := c.gatewayService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.alertsService(); err != nil {
		return err
	}
	return nil
}

// AppService builds the application service on first use. Construction dials
// the node to check the wallet and the network agree, so it is kept out of
// Validate.
func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) NetworkType() symbol.NetworkType {
	return c.network
}

func (c *Config) repoManager() error {
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) keyProviderService() error {
	svc, err := seedwallet.NewKeyProvider(c.WalletSeed, c.network)
	if err != nil {
		return err
	}

	c.keys = svc
	return nil
}

func (c *Config) snapshotCacheService() error {
	ttl := time.Duration(c.SnapshotTTL) * time.Second

	var cacheSvc ports.SnapshotCache
	var err error
	switch c.CacheType {
	case "inmemory":
		cacheSvc, err = inmemorycache.NewSnapshotCache(ttl)
	case "redis":
		redisOpts, parseErr := redis.ParseURL(c.RedisUrl)
		if parseErr != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", parseErr)
		}
		rdb := redis.NewClient(redisOpts)
		cacheSvc, err = rediscache.NewSnapshotCache(rdb, ttl)
	default:
		err = fmt.Errorf("unknown cache type")
	}
	if err != nil {
		return err
	}

	c.cache = cacheSvc
	return nil
}

func (c *Config) gatewayService() error {
	timeout := time.Duration(c.NodeRequestTimeout) * time.Second

	svc, err := restgateway.NewNetworkGateway(c.NodeUrl, timeout)
	if err != nil {
		return err
	}

	c.gateway = svc
	return nil
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	var err error
	switch c.SchedulerType {
	case "gocron":
		svc = timescheduler.NewScheduler()
	default:
		err = fmt.Errorf("unknown scheduler type")
	}
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) alertsService() error {
	if c.AlertManagerURL == "" {
		return nil
	}

	c.alerts = alertsmanager.NewService(c.AlertManagerURL, c.NodeUrl)
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		c.repo, c.gateway, c.keys, c.cache, c.scheduler, c.alerts,
		c.MaxFee,
		time.Duration(c.ContractDeadline)*time.Second,
		time.Duration(c.RefreshInterval)*time.Second,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
