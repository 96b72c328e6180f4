package config

import (
	"os"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

var (
	//配置文件信息
	cfgPath string = "./config/"
	cfgName string = "config"
	cfgType string = "yaml"
	//服务版本路径
	versionPath string = "./VERSION"

	gCfg *GlobalCfg
	vp   *viper.Viper
)

const (
	DBServer = "db-server"

	ReleaseMode string = "release"
	DebugMode   string = "debug"
)

type GlobalCfg struct {
	App        AppCfg     `mapstructure:"app"`
	Log        log.LogCfg `mapstructure:"log"`
	Mysql      MysqlCfg
	Redis      RedisCfg      `mapstructure:"redis"`
	Kafka      KafkaCfg      `mapstructure:"kafka"`
	HttpServer HttpServerCfg `mapstructure:"server"`
	Monitor    MonitorCfg    `mapstructure:"monitor"`
	RestAPI    RestAPI
}

// application config
type AppCfg struct {
	Mode    string `mapstructure:"mode"`    // 启动模式 : release，debug
	Version string `mapstructure:"version"` // 应用版本
}

// http server config
type HttpServerCfg struct {
	RunMode      string        `mapstructure:"runMode"`
	Addr         int           `mapstructure:"httpPort"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// db config
type MysqlCfg struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// redis config，回滚互斥锁使用
type RedisCfg struct {
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// kafka config，审计事件外发
type KafkaCfg struct {
	Brokers    []string `mapstructure:"brokers"`
	AuditTopic string   `mapstructure:"auditTopic"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SASLEnable bool     `mapstructure:"saslEnable"`
}

// monitor config，监控引擎运行参数
type MonitorCfg struct {
	CheckWorkers      int           `mapstructure:"checkWorkers"`      // 检查并发数
	CheckTimeout      time.Duration `mapstructure:"checkTimeout"`      // 单个检查超时（秒）
	FixTimeout        time.Duration `mapstructure:"fixTimeout"`        // 自动修复超时（秒）
	RollbackLockTTL   time.Duration `mapstructure:"rollbackLockTTL"`   // 回滚租约时长（秒）
	HotOperationTopN  int           `mapstructure:"hotOperationTopN"`  // 热点操作采样上限
	MinCallCount      int           `mapstructure:"minCallCount"`      // 热点操作最小调用次数
	StorageCapacityMB float64       `mapstructure:"storageCapacityMB"` // 存储容量，算使用率用
	OncallContact     string        `mapstructure:"oncallContact"`     // 升级与回滚通知意图的联系人
}

// RestAPI
type RestAPI struct {
	BackupServiceDomain string
}

func Get() *GlobalCfg {
	return gCfg
}

// 初始化配置
func InitPremise() {
	vp = viper.New()
	vp.AddConfigPath(cfgPath)
	vp.SetConfigName(cfgName)
	vp.SetConfigType(cfgType)
	loadSetting(vp)
	vp.WatchConfig()
	vp.OnConfigChange(func(e fsnotify.Event) {
		loadSetting(vp)
	})
}
func loadSetting(vp *viper.Viper) {
	if err := vp.ReadInConfig(); err != nil {
		panic(err.Error())
	}
	if err := vp.Unmarshal(&gCfg); err != nil {
		panic(err.Error())
	}
	gCfg.App.Version, _ = parseVersion(versionPath)
	initResetApi()
	setMonitorDefaults()
	setRunMode()
	log.InitLogger(gCfg.Log)
}

func parseVersion(versionPath string) (string, error) {
	b, err := os.ReadFile(versionPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
func setRunMode() {
	switch gCfg.App.Mode {
	case ReleaseMode:
		gCfg.Log.Development = false
		gCfg.HttpServer.RunMode = gin.ReleaseMode
	default:
		gCfg.Log.Development = true
		gCfg.HttpServer.RunMode = gin.DebugMode
	}
}

func setMonitorDefaults() {
	if gCfg.Monitor.CheckWorkers <= 0 {
		gCfg.Monitor.CheckWorkers = 4
	}
	if gCfg.Monitor.CheckTimeout <= 0 {
		gCfg.Monitor.CheckTimeout = 60
	}
	if gCfg.Monitor.FixTimeout <= 0 {
		gCfg.Monitor.FixTimeout = 30
	}
	if gCfg.Monitor.RollbackLockTTL <= 0 {
		gCfg.Monitor.RollbackLockTTL = 1800
	}
	if gCfg.Monitor.HotOperationTopN <= 0 || gCfg.Monitor.HotOperationTopN > 50 {
		gCfg.Monitor.HotOperationTopN = 50
	}
	if gCfg.Monitor.MinCallCount <= 0 {
		gCfg.Monitor.MinCallCount = 10
	}
	if gCfg.Monitor.StorageCapacityMB <= 0 {
		gCfg.Monitor.StorageCapacityMB = 512 * 1024
	}
	if gCfg.Monitor.OncallContact == "" {
		gCfg.Monitor.OncallContact = "dba-oncall"
	}
}

// NewMonitorCfg 监控引擎运行参数
func NewMonitorCfg() MonitorCfg {
	return gCfg.Monitor
}

func initResetApi() {
	//备份服务url
	gCfg.RestAPI.BackupServiceDomain = "http://mdl-backup-svc:13021"
}
