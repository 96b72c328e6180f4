//go:build wireinject
// +build wireinject

package main

import (
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/adapter/controller"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/adapter/repository"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/adapter/restapi/backup"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/service"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/infrastructure/cache"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/infrastructure/kafka"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/google/wire"
)

func initServer() *core.RouterQuote {
	panic(wire.Build(config.NewMonitorCfg, idgen.New, repository.ProviderSet, backup.ProviderSet, cache.ProviderSet, kafka.ProviderSet, service.ProviderSet, controller.ProviderSet))
}
