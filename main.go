package main

import (
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/config"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/migrations/0.1.0"
)

func main() {
	// 初始化服务配置
	config.InitPremise()
	__1_0.InitDataBase()
	router := initServer()
	core.InitHttpServer(router.Routes...)
}
