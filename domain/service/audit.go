package service

import (
	"context"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/bytedance/sonic"
)

// AuditService 审计轨迹。每个关键动作落一条审计记录并外发一条 kafka 事件，
// 审计失败只记日志，绝不阻断业务动作本身。
type AuditService interface {
	Record(ctx context.Context, action, entityType string, details map[string]any)
	// NotifyIntent 记录通知意图，实际投递由外部通知系统完成
	NotifyIntent(ctx context.Context, contact, message string)
}

type auditService struct {
	auditRepo dependency.AuditRepo
	producer  core.EventProducer
	idGen     *idgen.Generator
}

type auditEvent struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	Details    map[string]any `json:"details"`
	Timestamp  time.Time      `json:"timestamp"`
}

func (s *auditService) Record(ctx context.Context, action, entityType string, details map[string]any) {
	evt := auditEvent{
		Action:     action,
		EntityType: entityType,
		Details:    details,
		Timestamp:  time.Now(),
	}
	data, err := sonic.Marshal(evt.Details)
	if err != nil {
		log.Errorf("audit details marshal failed, action:%s err:%v", action, err)
		data = []byte("{}")
	}
	rec := &entity.AuditRecord{
		ID:         s.idGen.NextID(),
		Action:     action,
		EntityType: entityType,
		Details:    string(data),
		CreatedAt:  evt.Timestamp,
	}
	if repoErr := s.auditRepo.Append(ctx, rec); repoErr != nil {
		log.Errorf("audit append failed, action:%s err:%s", action, repoErr.Error())
	}
	if s.producer != nil {
		payload, err := sonic.Marshal(evt)
		if err != nil {
			log.Errorf("audit event marshal failed, action:%s err:%v", action, err)
			return
		}
		if err := s.producer.PublishAudit(ctx, action, payload); err != nil {
			log.Errorf("audit event publish failed, action:%s err:%v", action, err)
		}
	}
}

func (s *auditService) NotifyIntent(ctx context.Context, contact, message string) {
	s.Record(ctx, "notification_intent", "notification", map[string]any{
		"contact": contact,
		"message": message,
	})
}
