package service

import (
	"context"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/vo"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
)

//go:generate mockgen -source ./metric.go -destination ../../mock/service/mock_metric_service.go -package mock
type MetricService interface {
	Collect(ctx context.Context, req *vo.CollectReq) (vo.CollectResp, core.ServiceError)
	Latest(ctx context.Context) (*entity.MetricSample, core.ServiceError)
}

type metricService struct {
	metricRepo dependency.MetricRepo
	stats      dependency.StatsReader
	idGen      *idgen.Generator
	cfg        config.MonitorCfg
}

// Collect 采集一轮系统快照、单表足迹与热点操作，按迁移阶段打标。
// 系统快照失败则整轮失败，表级与热点采集失败只记日志
func (s *metricService) Collect(ctx context.Context, req *vo.CollectReq) (vo.CollectResp, core.ServiceError) {
	now := time.Now()
	sys, repoErr := s.stats.ReadSystem(ctx)
	if repoErr != nil {
		log.Errorf("read system stats failed, err:%s", repoErr.Error())
		return vo.CollectResp{}, NewSvcInternalError(repoErr)
	}
	sample := &entity.MetricSample{
		ID:                   s.idGen.NextID(),
		Phase:                req.Phase,
		ActiveConnections:    sys.ActiveConnections,
		IdleConnections:      sys.IdleConnections,
		MaxConnections:       sys.MaxConnections,
		LongestOperationSecs: sys.LongestOperationSecs,
		CacheHitRatio:        sys.CacheHitRatio,
		LockWaits:            sys.LockWaits,
		Deadlocks:            sys.Deadlocks,
		StorageUsedPercent:   sys.StorageUsedPercent,
		TempResourceMB:       sys.TempResourceMB,
		CollectedAt:          now,
	}
	if repoErr := s.metricRepo.InsertSample(ctx, sample); repoErr != nil {
		log.Errorf("insert metric sample failed, err:%s", repoErr.Error())
		return vo.CollectResp{}, NewSvcInternalError(repoErr)
	}
	samples := 1

	if ems, repoErr := s.stats.ReadEntities(ctx); repoErr != nil {
		log.Errorf("read entity metrics failed, err:%s", repoErr.Error())
	} else if len(ems) > 0 {
		for _, em := range ems {
			em.ID = s.idGen.NextID()
			em.Phase = req.Phase
			em.CollectedAt = now
		}
		if repoErr := s.metricRepo.InsertEntityMetrics(ctx, ems); repoErr != nil {
			log.Errorf("insert entity metrics failed, err:%s", repoErr.Error())
		} else {
			samples += len(ems)
		}
	}

	minCalls := s.cfg.MinCallCount
	if minCalls <= 0 {
		minCalls = 10
	}
	topN := s.cfg.HotOperationTopN
	if topN <= 0 {
		topN = 20
	}
	if ops, repoErr := s.stats.ReadHotOperations(ctx, minCalls, topN); repoErr != nil {
		log.Errorf("read hot operations failed, err:%s", repoErr.Error())
	} else if len(ops) > 0 {
		for _, op := range ops {
			op.ID = s.idGen.NextID()
			op.Phase = req.Phase
			op.CollectedAt = now
		}
		if repoErr := s.metricRepo.InsertHotOperations(ctx, ops); repoErr != nil {
			log.Errorf("insert hot operations failed, err:%s", repoErr.Error())
		} else {
			samples += len(ops)
		}
	}

	return vo.CollectResp{Samples: samples}, nil
}

// Latest 最近一次系统快照
func (s *metricService) Latest(ctx context.Context) (*entity.MetricSample, core.ServiceError) {
	sample, repoErr := s.metricRepo.LatestSample(ctx)
	if repoErr != nil {
		return nil, NewSvcNotFoundError(repoErr)
	}
	return sample, nil
}
