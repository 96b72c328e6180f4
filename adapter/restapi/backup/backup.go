package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"github.com/kweaver-ai/kweaver-go-lib/rest"
)

type backupServiceClient struct {
	restapi    core.RestAPI
	httpClient rest.HTTPClient
}

type backupEntry struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Verified  bool   `json:"verified"`
	StartedAt string `json:"started_at"`
}

// LatestVerifiedBackup 最近一个已完成且已校验的备份，备份服务无记录返回 nil
func (bc *backupServiceClient) LatestVerifiedBackup(ctx context.Context) (*entity.BackupRegistryEntry, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	reqUrl := bc.restapi.RestAPI().BackupServiceDomain + "/api/mdl-backup/v1/backups/latest"
	query := url.Values{}
	query.Set("verified", "true")
	respCode, respData, err := bc.httpClient.Get(ctx, reqUrl, query, headers)
	if err != nil {
		log.Errorf("request latest backup error: %v, request url:%v\n", err, reqUrl)
		return nil, err
	}
	if respCode == 404 {
		return nil, nil
	}
	if respCode != 200 {
		log.Errorf("request latest backup failed, request url:%v, respCode: %v, respData: %v\n", reqUrl, respCode, respData)
		return nil, fmt.Errorf("request latest backup failed, request url:%v, respCode: %v", reqUrl, respCode)
	}
	respJson, err := json.Marshal(respData)
	if err != nil {
		log.Errorf("json Marshal, error: %v \n", err)
		return nil, err
	}
	var result backupEntry
	if err := json.Unmarshal(respJson, &result); err != nil {
		log.Errorf("json Unmarshal, error: %v \n", err)
		return nil, err
	}
	if result.Name == "" || !result.Completed || !result.Verified {
		return nil, nil
	}
	entry := &entity.BackupRegistryEntry{
		Name:      result.Name,
		Completed: result.Completed,
		Verified:  result.Verified,
	}
	if t, err := time.Parse(time.RFC3339, result.StartedAt); err == nil {
		entry.StartedAt = t
	}
	return entry, nil
}

// Validate 校验回滚点是否可恢复
func (bc *backupServiceClient) Validate(ctx context.Context, backupName string) (*dependency.ValidationResult, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	reqUrl := bc.restapi.RestAPI().BackupServiceDomain + "/api/mdl-backup/v1/backups/" + backupName + "/validate"
	respCode, respData, err := bc.httpClient.Post(ctx, reqUrl, headers, []byte("{}"))
	if err != nil {
		log.Errorf("request validate backup error: %v, request url:%v\n", err, reqUrl)
		return nil, err
	}
	if respCode != 200 {
		log.Errorf("request validate backup failed, request url:%v, respCode: %v, respData: %v\n", reqUrl, respCode, respData)
		return nil, fmt.Errorf("request validate backup failed, request url:%v, respCode: %v", reqUrl, respCode)
	}
	respJson, err := json.Marshal(respData)
	if err != nil {
		log.Errorf("json Marshal, error: %v \n", err)
		return nil, err
	}
	var result dependency.ValidationResult
	if err := json.Unmarshal(respJson, &result); err != nil {
		log.Errorf("json Unmarshal, error: %v \n", err)
		return nil, err
	}
	return &result, nil
}

// Execute 触发备份服务执行恢复
func (bc *backupServiceClient) Execute(ctx context.Context, backupName, reason string, force bool) (*dependency.RollbackExecution, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	body, err := json.Marshal(map[string]interface{}{
		"backup_name": backupName,
		"reason":      reason,
		"force":       force,
	})
	if err != nil {
		log.Errorf("json Marshal, error: %v \n", err)
		return nil, err
	}
	reqUrl := bc.restapi.RestAPI().BackupServiceDomain + "/api/mdl-backup/v1/restore"
	respCode, respData, err := bc.httpClient.Post(ctx, reqUrl, headers, body)
	if err != nil {
		log.Errorf("request restore error: %v, request url:%v\n", err, reqUrl)
		return nil, err
	}
	if respCode != 200 {
		log.Errorf("request restore failed, request url:%v, respCode: %v, respData: %v\n", reqUrl, respCode, respData)
		return nil, fmt.Errorf("request restore failed, request url:%v, respCode: %v", reqUrl, respCode)
	}
	respJson, err := json.Marshal(respData)
	if err != nil {
		log.Errorf("json Marshal, error: %v \n", err)
		return nil, err
	}
	var result dependency.RollbackExecution
	if err := json.Unmarshal(respJson, &result); err != nil {
		log.Errorf("json Unmarshal, error: %v \n", err)
		return nil, err
	}
	return &result, nil
}
