package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hcm-console/project-factory/internal/bus"
	"github.com/hcm-console/project-factory/internal/clients"
	"github.com/hcm-console/project-factory/internal/domain"
)

// stubRowRepo is an in-memory RowRepository preserving insertion order.
type stubRowRepo struct {
	mu    sync.Mutex
	order []string
	rows  map[string]domain.CampaignRow
	fail  error
}

func newStubRowRepo() *stubRowRepo {
	return &stubRowRepo{rows: make(map[string]domain.CampaignRow)}
}

func rowKey(row domain.CampaignRow) string {
	return row.CampaignNumber + "|" + string(row.Type) + "|" + row.UniqueIdentifier
}

func (s *stubRowRepo) ListByCampaign(ctx context.Context, resourceType domain.ResourceType, campaignNumber string, statuses ...domain.RowStatus) ([]domain.CampaignRow, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[domain.RowStatus]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}

	var out []domain.CampaignRow
	for _, key := range s.order {
		row := s.rows[key]
		if row.CampaignNumber != campaignNumber || row.Type != resourceType {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[row.Status]; !ok {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *stubRowRepo) Upsert(ctx context.Context, rows []domain.CampaignRow) error {
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		key := rowKey(row)
		if _, exists := s.rows[key]; !exists {
			s.order = append(s.order, key)
		}
		s.rows[key] = row
	}
	return nil
}

func (s *stubRowRepo) get(campaignNumber string, resourceType domain.ResourceType, uid string) (domain.CampaignRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[campaignNumber+"|"+string(resourceType)+"|"+uid]
	return row, ok
}

// stubMappingRepo is an in-memory MappingRepository.
type stubMappingRepo struct {
	mu    sync.Mutex
	order []string
	rows  map[string]domain.CampaignMappingRow
}

func newStubMappingRepo() *stubMappingRepo {
	return &stubMappingRepo{rows: make(map[string]domain.CampaignMappingRow)}
}

func (s *stubMappingRepo) ListByCampaign(ctx context.Context, resourceType domain.ResourceType, campaignNumber string) ([]domain.CampaignMappingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.CampaignMappingRow
	for _, key := range s.order {
		row := s.rows[key]
		if row.CampaignNumber != campaignNumber || row.Type != resourceType {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *stubMappingRepo) Upsert(ctx context.Context, rows []domain.CampaignMappingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		key := row.CampaignNumber + "|" + string(row.Type) + "|" + row.Key()

		if _, exists := s.rows[key]; !exists {
			s.order = append(s.order, key)
		}
		s.rows[key] = row
	}
	return nil
}

// syncProducer applies pushes synchronously so tests can read their writes
// without a settle wait.
type syncProducer struct {
	rows     *stubRowRepo
	mappings *stubMappingRepo
	pushes   []string
}

func (p *syncProducer) Push(topic string, msg bus.Message) {
	p.pushes = append(p.pushes, topic)
	switch topic {
	case bus.TopicSaveResourceData, bus.TopicUpdateResourceData:
		_ = p.rows.Upsert(context.Background(), msg.Rows)
	case bus.TopicSaveMappingData, bus.TopicUpdateMappingData:
		_ = p.mappings.Upsert(context.Background(), msg.Mappings)
	}
}

// sleepRecorder counts settle waits without actually sleeping.
type sleepRecorder struct {
	calls  int
	waited time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.calls++
	s.waited += d
	return nil
}

// Client stubs.

type stubBoundaryService struct {
	tree []domain.BoundaryTreeNode
	err  error
}

func (s *stubBoundaryService) RelationshipTree(ctx context.Context, tenantID, hierarchyType string) ([]domain.BoundaryTreeNode, error) {
	return s.tree, s.err
}

type stubSchemaService struct {
	schema        domain.SheetSchema
	beneficiaries []domain.BeneficiaryTargetMapping
	err           error
}

func (s *stubSchemaService) SheetSchema(ctx context.Context, tenantID string, resourceType domain.ResourceType) (domain.SheetSchema, error) {
	return s.schema, s.err
}

func (s *stubSchemaService) BeneficiaryMappings(ctx context.Context, tenantID, projectType string) ([]domain.BeneficiaryTargetMapping, error) {
	return s.beneficiaries, s.err
}

type stubProjectService struct {
	created  []clients.ProjectCreateRequest
	updated  []clients.ProjectUpdateRequest
	projects map[string]clients.Project
	failFor  map[string]error
}

func newStubProjectService() *stubProjectService {
	return &stubProjectService{
		projects: make(map[string]clients.Project),
		failFor:  make(map[string]error),
	}
}

func (s *stubProjectService) Create(ctx context.Context, req clients.ProjectCreateRequest) (string, error) {
	if err := s.failFor[req.BoundaryCode]; err != nil {
		return "", err
	}
	s.created = append(s.created, req)
	id := "proj-" + req.BoundaryCode
	s.projects[id] = clients.Project{ID: id, Targets: req.Targets}
	return id, nil
}

func (s *stubProjectService) Update(ctx context.Context, req clients.ProjectUpdateRequest) error {
	if err := s.failFor[req.ID]; err != nil {
		return err
	}
	s.updated = append(s.updated, req)
	project := s.projects[req.ID]
	project.Targets = req.Targets
	s.projects[req.ID] = project
	return nil
}

func (s *stubProjectService) Search(ctx context.Context, tenantID string, ids []string) ([]clients.Project, error) {
	var out []clients.Project
	for _, id := range ids {
		if project, ok := s.projects[id]; ok {
			out = append(out, project)
		}
	}
	return out, nil
}

type stubFacilityService struct {
	created []clients.FacilityCreateRequest
	failFor map[string]error
	next    int
}

func newStubFacilityService() *stubFacilityService {
	return &stubFacilityService{failFor: make(map[string]error)}
}

func (s *stubFacilityService) Create(ctx context.Context, req clients.FacilityCreateRequest) (string, error) {
	if err := s.failFor[req.Name]; err != nil {
		return "", err
	}
	s.created = append(s.created, req)
	s.next++
	return fmt.Sprintf("FAC-%03d", s.next), nil
}

type stubEmployeeService struct {
	batches [][]clients.EmployeeCreateRequest
	err     error
	skip    map[string]bool
}

func (s *stubEmployeeService) CreateBatch(ctx context.Context, reqs []clients.EmployeeCreateRequest) (map[string]clients.EmployeeResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, reqs)
	out := make(map[string]clients.EmployeeResult, len(reqs))
	for _, req := range reqs {
		if s.skip[req.PhoneNumber] {
			continue
		}
		out[req.PhoneNumber] = clients.EmployeeResult{
			UserServiceUUID: "uuid-" + req.PhoneNumber,
			UserName:        "user-" + req.PhoneNumber,
			Password:        "pass-" + req.PhoneNumber,
		}
	}
	return out, nil
}

type stubEncrypter struct{}

func (stubEncrypter) Encrypt(plaintext string) (string, error) {
	return "enc(" + plaintext + ")", nil
}

func newTestReconciler(rows *stubRowRepo, producer *syncProducer, sleeper *sleepRecorder) *Reconciler {
	return NewReconciler(rows, producer, WithSleep(sleeper.sleep))
}
