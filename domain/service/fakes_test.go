package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/common/log"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/core"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/dependency"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/domain/entity"
	"devops.aishu.cn/AISHUDevOps/AnyRobot/_git/itops-migration-guard/server/utils/idgen"
	"github.com/pkg/errors"
)

func TestMain(m *testing.M) {
	log.InitLogger(log.LogCfg{
		FilePath: filepath.Join(os.TempDir(), "guard_service_test.log"),
		Level:    "error",
	})
	os.Exit(m.Run())
}

func notFoundErr() core.RepoError {
	return dependency.NewRepoNotFoundError(errors.New("not found"))
}

func sqlErr() core.RepoError {
	return dependency.NewRepoExecuteSqlError(errors.New("sql error"))
}

// newTestAudit 只落内存，不外发事件
func newTestAudit(repo *fakeAuditRepo) AuditService {
	return &auditService{auditRepo: repo, idGen: idgen.New()}
}

type fakeAuditRepo struct {
	records []*entity.AuditRecord
}

func (f *fakeAuditRepo) Append(_ context.Context, rec *entity.AuditRecord) core.RepoError {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.Action)
	}
	return out
}

type fakeCheckRepo struct {
	checks    map[string]*entity.IntegrityCheck
	createErr core.RepoError
	listErr   core.RepoError
	lastRuns  []string
}

func newFakeCheckRepo() *fakeCheckRepo {
	return &fakeCheckRepo{checks: make(map[string]*entity.IntegrityCheck)}
}

func (f *fakeCheckRepo) Create(_ context.Context, check *entity.IntegrityCheck) core.RepoError {
	if f.createErr != nil {
		return f.createErr
	}
	f.checks[check.Name] = check
	return nil
}

func (f *fakeCheckRepo) GetByName(_ context.Context, name string) (*entity.IntegrityCheck, core.RepoError) {
	if c, ok := f.checks[name]; ok {
		return c, nil
	}
	return nil, notFoundErr()
}

func (f *fakeCheckRepo) ListEnabled(_ context.Context) ([]*entity.IntegrityCheck, core.RepoError) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*entity.IntegrityCheck, 0, len(f.checks))
	for _, c := range f.checks {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckRepo) UpdateLastRun(_ context.Context, name string, status entity.CheckRunStatus, _ int64, _ time.Time) core.RepoError {
	f.lastRuns = append(f.lastRuns, name+":"+string(status))
	return nil
}

func (f *fakeCheckRepo) SetEnabled(_ context.Context, name string, enabled bool) core.RepoError {
	if c, ok := f.checks[name]; ok {
		c.Enabled = enabled
	}
	return nil
}

type fakeViolationRepo struct {
	created   []*entity.IntegrityViolation
	fixes     map[uint64]string
	createErr core.RepoError
	list      []*entity.IntegrityViolation
	listErr   core.RepoError
}

func newFakeViolationRepo() *fakeViolationRepo {
	return &fakeViolationRepo{fixes: make(map[uint64]string)}
}

func (f *fakeViolationRepo) Create(_ context.Context, v *entity.IntegrityViolation) core.RepoError {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, v)
	return nil
}

func (f *fakeViolationRepo) UpdateAutoFix(_ context.Context, id uint64, _, succeeded bool, fixErr string) core.RepoError {
	if succeeded {
		f.fixes[id] = "ok"
	} else {
		f.fixes[id] = fixErr
	}
	return nil
}

func (f *fakeViolationRepo) ListSince(_ context.Context, _ time.Time) ([]*entity.IntegrityViolation, core.RepoError) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

// fakeProbe 表内数据按 table.column 给定计数
type fakeProbe struct {
	orphanCount  int64
	nullCount    int64
	rangeCount   int64
	dupCount     int64
	castCount    int64
	countErr     core.RepoError
	deletedCalls int
	filledCalls  int
	fixErr       core.RepoError
}

func (f *fakeProbe) CountOrphanRows(_ context.Context, _, _, _, _ string) (int64, core.RepoError) {
	return f.orphanCount, f.countErr
}

func (f *fakeProbe) CountNullRows(_ context.Context, _, _ string) (int64, core.RepoError) {
	return f.nullCount, f.countErr
}

func (f *fakeProbe) CountOutOfRange(_ context.Context, _, _ string, _, _ float64) (int64, core.RepoError) {
	return f.rangeCount, f.countErr
}

func (f *fakeProbe) CountDuplicates(_ context.Context, _, _ string) (int64, core.RepoError) {
	return f.dupCount, f.countErr
}

func (f *fakeProbe) CountInvalidCast(_ context.Context, _, _, _ string) (int64, core.RepoError) {
	return f.castCount, f.countErr
}

func (f *fakeProbe) DeleteOrphanRows(_ context.Context, _, _, _, _ string) (int64, core.RepoError) {
	if f.fixErr != nil {
		return 0, f.fixErr
	}
	f.deletedCalls++
	return f.orphanCount, nil
}

func (f *fakeProbe) FillNullRows(_ context.Context, _, _, _ string) (int64, core.RepoError) {
	if f.fixErr != nil {
		return 0, f.fixErr
	}
	f.filledCalls++
	return f.nullCount, nil
}

type fakeMetricRepo struct {
	samples   []*entity.MetricSample
	entities  []*entity.EntityMetric
	hotOps    []*entity.HotOperation
	latest    *entity.MetricSample
	latestErr core.RepoError
	insertErr core.RepoError
}

func (f *fakeMetricRepo) InsertSample(_ context.Context, s *entity.MetricSample) core.RepoError {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.samples = append(f.samples, s)
	return nil
}

func (f *fakeMetricRepo) InsertEntityMetrics(_ context.Context, ms []*entity.EntityMetric) core.RepoError {
	f.entities = append(f.entities, ms...)
	return nil
}

func (f *fakeMetricRepo) InsertHotOperations(_ context.Context, ops []*entity.HotOperation) core.RepoError {
	f.hotOps = append(f.hotOps, ops...)
	return nil
}

func (f *fakeMetricRepo) LatestSample(_ context.Context) (*entity.MetricSample, core.RepoError) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if f.latest == nil {
		return nil, notFoundErr()
	}
	return f.latest, nil
}

func (f *fakeMetricRepo) ListSamplesSince(_ context.Context, _ time.Time) ([]*entity.MetricSample, core.RepoError) {
	return f.samples, nil
}

type fakeThresholdRepo struct {
	thresholds map[entity.MetricName]*entity.AlertThreshold
	lastAlerts map[entity.MetricName]time.Time
}

func newFakeThresholdRepo() *fakeThresholdRepo {
	return &fakeThresholdRepo{
		thresholds: make(map[entity.MetricName]*entity.AlertThreshold),
		lastAlerts: make(map[entity.MetricName]time.Time),
	}
}

func (f *fakeThresholdRepo) Create(_ context.Context, t *entity.AlertThreshold) core.RepoError {
	f.thresholds[t.MetricName] = t
	return nil
}

func (f *fakeThresholdRepo) GetByMetric(_ context.Context, metric entity.MetricName) (*entity.AlertThreshold, core.RepoError) {
	if t, ok := f.thresholds[metric]; ok {
		return t, nil
	}
	return nil, notFoundErr()
}

func (f *fakeThresholdRepo) ListEnabled(_ context.Context) ([]*entity.AlertThreshold, core.RepoError) {
	out := make([]*entity.AlertThreshold, 0, len(f.thresholds))
	for _, t := range f.thresholds {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeThresholdRepo) UpdateLastAlert(_ context.Context, metric entity.MetricName, at time.Time) core.RepoError {
	f.lastAlerts[metric] = at
	return nil
}

type fakeAlertRepo struct {
	alerts    map[uint64]*entity.Alert
	list      []*entity.Alert
	createErr core.RepoError
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[uint64]*entity.Alert)}
}

func (f *fakeAlertRepo) Create(_ context.Context, a *entity.Alert) core.RepoError {
	if f.createErr != nil {
		return f.createErr
	}
	f.alerts[a.ID] = a
	return nil
}

func (f *fakeAlertRepo) Get(_ context.Context, id uint64) (*entity.Alert, core.RepoError) {
	if a, ok := f.alerts[id]; ok {
		return a, nil
	}
	return nil, notFoundErr()
}

func (f *fakeAlertRepo) UpdateState(_ context.Context, id uint64, state entity.AlertState, at time.Time) core.RepoError {
	a, ok := f.alerts[id]
	if !ok {
		return notFoundErr()
	}
	a.State = state
	switch state {
	case entity.AlertStateAcknowledged:
		a.AcknowledgedAt = &at
	case entity.AlertStateResolved:
		a.ResolvedAt = &at
	}
	return nil
}

func (f *fakeAlertRepo) UpdateAutoAction(_ context.Context, id uint64, ok bool, actionErr string) core.RepoError {
	if a, found := f.alerts[id]; found {
		a.AutoActionRun = true
		a.AutoActionOK = ok
		a.AutoActionError = actionErr
	}
	return nil
}

func (f *fakeAlertRepo) ListSince(_ context.Context, _ time.Time) ([]*entity.Alert, core.RepoError) {
	return f.list, nil
}

type fakeProcedureRepo struct {
	procedures map[string]*entity.EmergencyProcedure
	executions map[string]int
}

func newFakeProcedureRepo() *fakeProcedureRepo {
	return &fakeProcedureRepo{
		procedures: make(map[string]*entity.EmergencyProcedure),
		executions: make(map[string]int),
	}
}

func (f *fakeProcedureRepo) Create(_ context.Context, p *entity.EmergencyProcedure) core.RepoError {
	f.procedures[p.Name] = p
	return nil
}

func (f *fakeProcedureRepo) GetByName(_ context.Context, name string) (*entity.EmergencyProcedure, core.RepoError) {
	if p, ok := f.procedures[name]; ok {
		return p, nil
	}
	return nil, notFoundErr()
}

func (f *fakeProcedureRepo) ListByIncidentType(_ context.Context, incidentType string) ([]*entity.EmergencyProcedure, core.RepoError) {
	out := make([]*entity.EmergencyProcedure, 0)
	for _, p := range f.procedures {
		if p.IncidentType == incidentType {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProcedureRepo) RecordExecution(_ context.Context, name string, _ time.Time) core.RepoError {
	f.executions[name]++
	return nil
}

type fakeIncidentRepo struct {
	incidents map[uint64]*entity.Incident
	finalized []*entity.Incident
	list      []*entity.Incident
	createErr core.RepoError
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{incidents: make(map[uint64]*entity.Incident)}
}

func (f *fakeIncidentRepo) Create(_ context.Context, inc *entity.Incident) core.RepoError {
	if f.createErr != nil {
		return f.createErr
	}
	f.incidents[inc.ID] = inc
	return nil
}

func (f *fakeIncidentRepo) Get(_ context.Context, id uint64) (*entity.Incident, core.RepoError) {
	if inc, ok := f.incidents[id]; ok {
		return inc, nil
	}
	return nil, notFoundErr()
}

func (f *fakeIncidentRepo) UpdateState(_ context.Context, id uint64, state entity.IncidentState) core.RepoError {
	if inc, ok := f.incidents[id]; ok {
		inc.State = state
	}
	return nil
}

func (f *fakeIncidentRepo) Finalize(_ context.Context, inc *entity.Incident) core.RepoError {
	f.finalized = append(f.finalized, inc)
	return nil
}

func (f *fakeIncidentRepo) ListSince(_ context.Context, _ time.Time) ([]*entity.Incident, core.RepoError) {
	return f.list, nil
}

type fakeSessionRepo struct {
	sessions map[string]*entity.MonitoringSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.MonitoringSession)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *entity.MonitoringSession) core.RepoError {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) (*entity.MonitoringSession, core.RepoError) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, notFoundErr()
}

func (f *fakeSessionRepo) UpdateHeartbeat(_ context.Context, id string, checks, violations, criticals int64, at time.Time) core.RepoError {
	s, ok := f.sessions[id]
	if !ok {
		return notFoundErr()
	}
	s.ChecksPerformed = checks
	s.ViolationsFound = violations
	s.CriticalViolations = criticals
	s.LastHeartbeat = at
	return nil
}

func (f *fakeSessionRepo) UpdateStatus(_ context.Context, id string, status entity.SessionStatus, stoppedAt *time.Time) core.RepoError {
	s, ok := f.sessions[id]
	if !ok {
		return notFoundErr()
	}
	s.Status = status
	s.StoppedAt = stoppedAt
	return nil
}

type fakeStats struct {
	sys      *dependency.SystemStats
	sysErr   core.RepoError
	entities []*entity.EntityMetric
	entErr   core.RepoError
	hotOps   []*entity.HotOperation
	hotErr   core.RepoError
}

func (f *fakeStats) ReadSystem(_ context.Context) (*dependency.SystemStats, core.RepoError) {
	if f.sysErr != nil {
		return nil, f.sysErr
	}
	return f.sys, nil
}

func (f *fakeStats) ReadEntities(_ context.Context) ([]*entity.EntityMetric, core.RepoError) {
	if f.entErr != nil {
		return nil, f.entErr
	}
	return f.entities, nil
}

func (f *fakeStats) ReadHotOperations(_ context.Context, _, _ int) ([]*entity.HotOperation, core.RepoError) {
	if f.hotErr != nil {
		return nil, f.hotErr
	}
	return f.hotOps, nil
}

type fakeOps struct {
	killed      int64
	killErr     core.RepoError
	reclaimed   [][]string
	rebuilt     [][]string
	dropped     int64
	droppedCall int
}

func (f *fakeOps) KillIdleConnections(_ context.Context, _ int64) (int64, core.RepoError) {
	if f.killErr != nil {
		return 0, f.killErr
	}
	return f.killed, nil
}

func (f *fakeOps) ReclaimStorage(_ context.Context, tables []string) core.RepoError {
	f.reclaimed = append(f.reclaimed, tables)
	return nil
}

func (f *fakeOps) RebuildStatistics(_ context.Context, tables []string) core.RepoError {
	f.rebuilt = append(f.rebuilt, tables)
	return nil
}

func (f *fakeOps) DropTempTables(_ context.Context, _ string) (int64, core.RepoError) {
	f.droppedCall++
	return f.dropped, nil
}

type fakeBackup struct {
	entry       *entity.BackupRegistryEntry
	entryErr    error
	validation  *dependency.ValidationResult
	validateErr error
	execution   *dependency.RollbackExecution
	executeErr  error
	validated   int
	executed    int
}

func (f *fakeBackup) LatestVerifiedBackup(_ context.Context) (*entity.BackupRegistryEntry, error) {
	return f.entry, f.entryErr
}

func (f *fakeBackup) Validate(_ context.Context, _ string) (*dependency.ValidationResult, error) {
	f.validated++
	return f.validation, f.validateErr
}

func (f *fakeBackup) Execute(_ context.Context, _, _ string, _ bool) (*dependency.RollbackExecution, error) {
	f.executed++
	return f.execution, f.executeErr
}

type fakeLock struct {
	acquired   bool
	acquireErr error
	holders    []string
	released   []string
}

func (f *fakeLock) TryAcquire(_ context.Context, holder string, _ time.Duration) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.acquired {
		f.holders = append(f.holders, holder)
	}
	return f.acquired, nil
}

func (f *fakeLock) Release(_ context.Context, holder string) error {
	f.released = append(f.released, holder)
	return nil
}
