package backup

import (
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"github.com/google/wire"
	"github.com/kweaver-ai/kweaver-go-lib/rest"
)

var ProviderSet = wire.NewSet(NewHTTPClient, NewBackupServiceClient)

func NewHTTPClient() rest.HTTPClient {
	return rest.NewHTTPClientWithOptions(rest.HttpClientOptions{
		TimeOut: 300,
	})
}

func NewBackupServiceClient(httpClient rest.HTTPClient) dependency.BackupServiceClient {
	return &backupServiceClient{
		restapi:    core.NewCoreRestAPI(),
		httpClient: httpClient,
	}
}
