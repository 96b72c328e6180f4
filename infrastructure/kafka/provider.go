package kafka

import (
	"sync"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(NewAuditProducer)

var (
	producerOnce sync.Once
	producer     core.EventProducer
)

// NewAuditProducer 审计事件生产者
func NewAuditProducer() core.EventProducer {
	producerOnce.Do(func() {
		conf := config.Get().Kafka
		cfg := Config{
			Brokers: conf.Brokers,
			Topic:   conf.AuditTopic,
		}
		if conf.SASLEnable {
			cfg.SASL = &SASLConfig{
				Enabled:  true,
				Username: conf.Username,
				Password: conf.Password,
			}
		}
		p, err := NewProducer(cfg)
		if err != nil {
			log.Errorf("init kafka producer err:%s", err.Error())
			return
		}
		producer = p
	})
	return producer
}
