package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/repository"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
)

// ── 内存数据库 ──
// 各 mock Repository 共享同一份数据，读取返回副本，写入需显式调用 Create / Update。

type mockDB struct {
	seq         int
	users       map[string]*model.User
	departments map[string]*model.Department
	years       map[string]*model.AcademicYear
	sessions    map[string]*model.YearSession
	topics      map[string]*model.Topic
	members     []*model.TopicMember
	events      []*model.TopicEvent
	approved    map[string]*model.ApprovedTopic
	documents   map[string]*model.ApprovedTopicDocument
}

func newMockDB() *mockDB {
	return &mockDB{
		users:       make(map[string]*model.User),
		departments: make(map[string]*model.Department),
		years:       make(map[string]*model.AcademicYear),
		sessions:    make(map[string]*model.YearSession),
		topics:      make(map[string]*model.Topic),
		approved:    make(map[string]*model.ApprovedTopic),
		documents:   make(map[string]*model.ApprovedTopicDocument),
	}
}

var mockEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// tick 递增序号，并给出单调递增的时间戳
func (db *mockDB) tick() (int, time.Time) {
	db.seq++
	return db.seq, mockEpoch.Add(time.Duration(db.seq) * time.Second)
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

// newMockRepository 组装 mock Repository 聚合（无数据库连接，Transaction 直接执行）
func newMockRepository(db *mockDB) *repository.Repository {
	return &repository.Repository{
		User:          &mockUserRepo{db},
		Department:    &mockDeptRepo{db},
		AcademicYear:  &mockAcademicYearRepo{db},
		YearSession:   &mockYearSessionRepo{db},
		Topic:         &mockTopicRepo{db},
		TopicMember:   &mockTopicMemberRepo{db},
		TopicEvent:    &mockTopicEventRepo{db},
		ApprovedTopic: &mockApprovedTopicRepo{db},
		Document:      &mockDocumentRepo{db},
	}
}

// ── 种子数据 ──

func seedDepartment(db *mockDB, code, name string) *model.Department {
	dept := &model.Department{DepartmentID: "dept-" + code, Code: code, Name: name}
	db.departments[dept.DepartmentID] = dept
	return dept
}

func seedUser(db *mockDB, username, role, deptID string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + username,
		Username:     username,
		FullName:     "Nguyễn " + username,
		Email:        username + "@husc.edu.vn",
		PasswordHash: string(hash),
		Role:         role,
	}
	if deptID != "" {
		user.DepartmentID = &deptID
	}
	db.users[user.UserID] = user
	return user
}

func seedYear(db *mockDB, year int, status string, active bool) *model.AcademicYear {
	y := &model.AcademicYear{
		AcademicYearID: fmt.Sprintf("year-%d", year),
		Year:           year,
		Status:         status,
		IsActive:       active,
	}
	db.years[y.AcademicYearID] = y
	return y
}

func seedSession(db *mockDB, year *model.AcademicYear, dept *model.Department, status string) *model.YearSession {
	s := &model.YearSession{
		YearSessionID:  fmt.Sprintf("session-%d-%s", year.Year, dept.Code),
		AcademicYearID: year.AcademicYearID,
		DepartmentID:   dept.DepartmentID,
		Year:           year.Year,
		Status:         status,
	}
	db.sessions[s.YearSessionID] = s
	return s
}

func seedTopic(db *mockDB, name, status string, session *model.YearSession) *model.Topic {
	_, at := db.tick()
	t := &model.Topic{
		TopicID:        "topic-" + name,
		Name:           name,
		Status:         status,
		DepartmentID:   session.DepartmentID,
		AcademicYearID: session.AcademicYearID,
	}
	t.Version = 1
	t.CreatedAt = at
	db.topics[t.TopicID] = t
	return t
}

func seedMember(db *mockDB, topic *model.Topic, user *model.User, role, status string) *model.TopicMember {
	_, at := db.tick()
	m := &model.TopicMember{
		TopicMemberID: "tm-" + topic.Name + "-" + user.Username,
		TopicID:       topic.TopicID,
		UserID:        user.UserID,
		Role:          role,
		Status:        status,
	}
	m.CreatedAt = at
	db.members = append(db.members, m)
	return m
}

func seedApproved(db *mockDB, topic *model.Topic, status string) *model.ApprovedTopic {
	at := &model.ApprovedTopic{
		ApprovedTopicID: "at-" + topic.Name,
		TopicID:         topic.TopicID,
		Status:          status,
	}
	db.approved[at.ApprovedTopicID] = at
	return at
}

// membersOf 课题当前成员记录（副本）
func (db *mockDB) membersOf(topicID string) []model.TopicMember {
	var result []model.TopicMember
	for _, m := range db.members {
		if m.TopicID == topicID {
			cp := *m
			if u, ok := db.users[m.UserID]; ok {
				uc := *u
				cp.User = &uc
			}
			result = append(result, cp)
		}
	}
	return result
}

func (db *mockDB) approvedOf(topicID string) *model.ApprovedTopic {
	for _, at := range db.approved {
		if at.TopicID == topicID {
			cp := *at
			return &cp
		}
	}
	return nil
}

func (db *mockDB) department(id string) *model.Department {
	if d, ok := db.departments[id]; ok {
		cp := *d
		return &cp
	}
	return nil
}

func (db *mockDB) year(id string) *model.AcademicYear {
	if y, ok := db.years[id]; ok {
		cp := *y
		return &cp
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *mockDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return uniqueViolation()
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	cp := *user
	cp.Department = nil
	m.db.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) withDept(u *model.User) *model.User {
	cp := *u
	if u.DepartmentID != nil {
		cp.Department = m.db.department(*u.DepartmentID)
	}
	return &cp
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.db.users[id]; ok {
		return m.withDept(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Username == username {
			return m.withDept(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.db.users {
		if u.Email == email {
			return m.withDept(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	cp.Department = nil
	m.db.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role, departmentID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.db.users {
		if u.Role == role && u.DepartmentIDValue() == departmentID {
			result = append(result, *m.withDept(u))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *mockUserRepo) ListWithFilters(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.db.users {
		if filters.DepartmentID != "" && u.DepartmentIDValue() != filters.DepartmentID {
			continue
		}
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if filters.Keyword != "" && !strings.Contains(u.Username+u.FullName+u.Email, filters.Keyword) {
			continue
		}
		result = append(result, *m.withDept(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return page(result, offset, limit), int64(len(result)), nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct{ db *mockDB }

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	for _, d := range m.db.departments {
		if d.Code == dept.Code {
			return uniqueViolation()
		}
	}
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Code
	}
	cp := *dept
	m.db.departments[dept.DepartmentID] = &cp
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d := m.db.department(id); d != nil {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByCode(_ context.Context, code string) (*model.Department, error) {
	for _, d := range m.db.departments {
		if d.Code == code {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.db.departments {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	cp := *dept
	m.db.departments[dept.DepartmentID] = &cp
	return nil
}

// ── Mock AcademicYearRepository ──

type mockAcademicYearRepo struct{ db *mockDB }

func (m *mockAcademicYearRepo) Create(_ context.Context, year *model.AcademicYear) error {
	for _, y := range m.db.years {
		if y.Year == year.Year {
			return uniqueViolation()
		}
		if year.IsActive && y.IsActive {
			return uniqueViolation() // uq_academic_years_active
		}
	}
	if year.AcademicYearID == "" {
		year.AcademicYearID = fmt.Sprintf("year-%d", year.Year)
	}
	cp := *year
	m.db.years[year.AcademicYearID] = &cp
	return nil
}

func (m *mockAcademicYearRepo) GetByID(_ context.Context, id string) (*model.AcademicYear, error) {
	if y := m.db.year(id); y != nil {
		return y, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademicYearRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.AcademicYear, error) {
	return m.GetByID(ctx, id)
}

func (m *mockAcademicYearRepo) GetByYear(_ context.Context, value int) (*model.AcademicYear, error) {
	for _, y := range m.db.years {
		if y.Year == value {
			cp := *y
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademicYearRepo) GetCurrent(_ context.Context) (*model.AcademicYear, error) {
	for _, y := range m.db.years {
		if y.IsActive {
			cp := *y
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademicYearRepo) List(_ context.Context, filters *repository.AcademicYearFilters, offset, limit int) ([]model.AcademicYear, int64, error) {
	var result []model.AcademicYear
	for _, y := range m.db.years {
		if filters.Keyword != "" && !strings.Contains(fmt.Sprint(y.Year), filters.Keyword) {
			continue
		}
		if filters.IsActive != nil && y.IsActive != *filters.IsActive {
			continue
		}
		result = append(result, *y)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Year > result[j].Year })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockAcademicYearRepo) Update(_ context.Context, year *model.AcademicYear) error {
	if year.IsActive {
		for id, y := range m.db.years {
			if id != year.AcademicYearID && y.IsActive {
				return uniqueViolation()
			}
		}
	}
	cp := *year
	m.db.years[year.AcademicYearID] = &cp
	return nil
}

func (m *mockAcademicYearRepo) ClearActive(_ context.Context, exceptID string) error {
	for id, y := range m.db.years {
		if id != exceptID {
			y.IsActive = false
		}
	}
	return nil
}

// ── Mock YearSessionRepository ──

type mockYearSessionRepo struct{ db *mockDB }

func (m *mockYearSessionRepo) Create(_ context.Context, session *model.YearSession) error {
	for _, s := range m.db.sessions {
		if s.AcademicYearID == session.AcademicYearID && s.DepartmentID == session.DepartmentID {
			return uniqueViolation()
		}
	}
	if session.YearSessionID == "" {
		session.YearSessionID = fmt.Sprintf("session-%d-%s", session.Year, session.DepartmentID)
	}
	cp := *session
	cp.AcademicYear, cp.Department = nil, nil
	m.db.sessions[session.YearSessionID] = &cp
	return nil
}

func (m *mockYearSessionRepo) withRefs(s *model.YearSession) *model.YearSession {
	cp := *s
	cp.AcademicYear = m.db.year(s.AcademicYearID)
	cp.Department = m.db.department(s.DepartmentID)
	return &cp
}

func (m *mockYearSessionRepo) GetByID(_ context.Context, id string) (*model.YearSession, error) {
	if s, ok := m.db.sessions[id]; ok {
		return m.withRefs(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockYearSessionRepo) GetByIDForUpdate(_ context.Context, id string) (*model.YearSession, error) {
	if s, ok := m.db.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockYearSessionRepo) GetByScope(_ context.Context, academicYearID, departmentID string) (*model.YearSession, error) {
	for _, s := range m.db.sessions {
		if s.AcademicYearID == academicYearID && s.DepartmentID == departmentID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockYearSessionRepo) GetByScopeForUpdate(ctx context.Context, academicYearID, departmentID string) (*model.YearSession, error) {
	return m.GetByScope(ctx, academicYearID, departmentID)
}

func (m *mockYearSessionRepo) ListByYear(_ context.Context, academicYearID string) ([]model.YearSession, error) {
	var result []model.YearSession
	for _, s := range m.db.sessions {
		if s.AcademicYearID == academicYearID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockYearSessionRepo) List(_ context.Context, filters *repository.YearSessionFilters, offset, limit int) ([]model.YearSession, int64, error) {
	var result []model.YearSession
	for _, s := range m.db.sessions {
		if filters.DepartmentID != "" && s.DepartmentID != filters.DepartmentID {
			continue
		}
		if filters.AcademicYearID != "" && s.AcademicYearID != filters.AcademicYearID {
			continue
		}
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		result = append(result, *m.withRefs(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Year > result[j].Year })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockYearSessionRepo) Update(_ context.Context, session *model.YearSession) error {
	cp := *session
	cp.AcademicYear, cp.Department = nil, nil
	m.db.sessions[session.YearSessionID] = &cp
	return nil
}

func (m *mockYearSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.db.sessions, id)
	return nil
}

func (m *mockYearSessionRepo) SyncYear(_ context.Context, academicYearID string, year int) error {
	for _, s := range m.db.sessions {
		if s.AcademicYearID == academicYearID {
			s.Year = year
		}
	}
	return nil
}

// ── Mock TopicRepository ──

type mockTopicRepo struct{ db *mockDB }

func (m *mockTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	if topic.TopicID == "" {
		topic.TopicID = "topic-" + topic.Name
	}
	_, at := m.db.tick()
	topic.CreatedAt = at
	if topic.Version == 0 {
		topic.Version = 1
	}
	cp := *topic
	cp.Department, cp.AcademicYear, cp.Members, cp.ApprovedTopic = nil, nil, nil, nil
	m.db.topics[topic.TopicID] = &cp
	return nil
}

// withRefs 模拟 Preload
func (m *mockTopicRepo) withRefs(t *model.Topic, members bool) *model.Topic {
	cp := *t
	cp.Department = m.db.department(t.DepartmentID)
	cp.AcademicYear = m.db.year(t.AcademicYearID)
	cp.ApprovedTopic = m.db.approvedOf(t.TopicID)
	if members {
		cp.Members = m.db.membersOf(t.TopicID)
	}
	return &cp
}

func (m *mockTopicRepo) GetByID(_ context.Context, id string) (*model.Topic, error) {
	if t, ok := m.db.topics[id]; ok {
		return m.withRefs(t, false), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Topic, error) {
	if t, ok := m.db.topics[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) Search(_ context.Context, filters *repository.TopicFilters, offset, limit int) ([]model.Topic, int64, error) {
	var result []model.Topic
	for _, t := range m.db.topics {
		if filters.DepartmentID != "" && t.DepartmentID != filters.DepartmentID {
			continue
		}
		if filters.AcademicYearID != "" && t.AcademicYearID != filters.AcademicYearID {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if filters.Keyword != "" && !strings.Contains(t.Name, filters.Keyword) {
			continue
		}
		if filters.MemberUserID != "" {
			found := false
			for _, mem := range m.db.members {
				if mem.TopicID == t.TopicID && mem.UserID == filters.MemberUserID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		result = append(result, *m.withRefs(t, true))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockTopicRepo) ListInScope(_ context.Context, departmentID, academicYearID string) ([]model.Topic, error) {
	var result []model.Topic
	for _, t := range m.db.topics {
		if t.DepartmentID == departmentID && t.AcademicYearID == academicYearID {
			result = append(result, *m.withRefs(t, true))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockTopicRepo) inScope(t *model.Topic, departmentID, academicYearID string) bool {
	return t.AcademicYearID == academicYearID && (departmentID == "" || t.DepartmentID == departmentID)
}

func (m *mockTopicRepo) CountInScope(_ context.Context, departmentID, academicYearID string, statuses ...string) (int64, error) {
	var n int64
	for _, t := range m.db.topics {
		if m.inScope(t, departmentID, academicYearID) && (len(statuses) == 0 || contains(statuses, t.Status)) {
			n++
		}
	}
	return n, nil
}

func (m *mockTopicRepo) CountByStatus(_ context.Context, departmentID, academicYearID string) ([]repository.StatusCount, error) {
	counts := make(map[string]int64)
	for _, t := range m.db.topics {
		if m.inScope(t, departmentID, academicYearID) {
			counts[t.Status]++
		}
	}
	return statusCounts(counts), nil
}

func (m *mockTopicRepo) Update(_ context.Context, topic *model.Topic) error {
	cp := *topic
	cp.Department, cp.AcademicYear, cp.Members, cp.ApprovedTopic = nil, nil, nil, nil
	m.db.topics[topic.TopicID] = &cp
	return nil
}

func (m *mockTopicRepo) UpdateWithVersion(ctx context.Context, topic *model.Topic) error {
	stored, ok := m.db.topics[topic.TopicID]
	if !ok || stored.Version != topic.Version {
		return pkgerrors.ErrOptimisticLock
	}
	topic.Version++
	return m.Update(ctx, topic)
}

// ── Mock TopicMemberRepository ──

type mockTopicMemberRepo struct{ db *mockDB }

func (m *mockTopicMemberRepo) Create(_ context.Context, member *model.TopicMember) error {
	for _, existing := range m.db.members {
		if existing.TopicID == member.TopicID && existing.UserID == member.UserID {
			return uniqueViolation()
		}
	}
	seq, at := m.db.tick()
	if member.TopicMemberID == "" {
		member.TopicMemberID = fmt.Sprintf("tm-%d", seq)
	}
	member.CreatedAt = at
	cp := *member
	cp.User = nil
	m.db.members = append(m.db.members, &cp)
	return nil
}

func (m *mockTopicMemberRepo) GetByTopicAndUser(_ context.Context, topicID, userID string) (*model.TopicMember, error) {
	for _, mem := range m.db.members {
		if mem.TopicID == topicID && mem.UserID == userID {
			cp := *mem
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicMemberRepo) ListByTopic(_ context.Context, topicID string) ([]model.TopicMember, error) {
	return m.db.membersOf(topicID), nil
}

func (m *mockTopicMemberRepo) Update(_ context.Context, member *model.TopicMember) error {
	for i, mem := range m.db.members {
		if mem.TopicMemberID == member.TopicMemberID {
			cp := *member
			cp.User = nil
			m.db.members[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockTopicMemberRepo) DeleteByIDs(_ context.Context, ids []string) error {
	kept := m.db.members[:0]
	for _, mem := range m.db.members {
		if !contains(ids, mem.TopicMemberID) {
			kept = append(kept, mem)
		}
	}
	m.db.members = kept
	return nil
}

// ── Mock TopicEventRepository ──

type mockTopicEventRepo struct{ db *mockDB }

func (m *mockTopicEventRepo) Create(_ context.Context, event *model.TopicEvent) error {
	seq, at := m.db.tick()
	event.TopicEventID = fmt.Sprintf("ev-%d", seq)
	event.CreatedAt = at
	cp := *event
	m.db.events = append(m.db.events, &cp)
	return nil
}

func (m *mockTopicEventRepo) ListByTopic(_ context.Context, topicID string) ([]model.TopicEvent, error) {
	var result []model.TopicEvent
	for _, e := range m.db.events {
		if e.TopicID == topicID {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ── Mock ApprovedTopicRepository ──

type mockApprovedTopicRepo struct{ db *mockDB }

func (m *mockApprovedTopicRepo) Create(_ context.Context, at *model.ApprovedTopic) error {
	for _, existing := range m.db.approved {
		if existing.TopicID == at.TopicID {
			return uniqueViolation()
		}
	}
	seq, ts := m.db.tick()
	if at.ApprovedTopicID == "" {
		at.ApprovedTopicID = fmt.Sprintf("at-%d", seq)
	}
	at.CreatedAt = ts
	cp := *at
	cp.Topic, cp.Documents = nil, nil
	m.db.approved[at.ApprovedTopicID] = &cp
	return nil
}

func (m *mockApprovedTopicRepo) withRefs(at *model.ApprovedTopic) *model.ApprovedTopic {
	cp := *at
	if t, ok := m.db.topics[at.TopicID]; ok {
		cp.Topic = (&mockTopicRepo{m.db}).withRefs(t, true)
		cp.Topic.ApprovedTopic = nil
	}
	cp.Documents = nil
	for _, d := range m.db.documents {
		if d.ApprovedTopicID == at.ApprovedTopicID {
			cp.Documents = append(cp.Documents, *d)
		}
	}
	return &cp
}

func (m *mockApprovedTopicRepo) GetByID(_ context.Context, id string) (*model.ApprovedTopic, error) {
	if at, ok := m.db.approved[id]; ok {
		return m.withRefs(at), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApprovedTopicRepo) GetByTopicID(_ context.Context, topicID string) (*model.ApprovedTopic, error) {
	if at := m.db.approvedOf(topicID); at != nil {
		return at, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApprovedTopicRepo) inScope(at *model.ApprovedTopic, departmentID, academicYearID string) bool {
	t, ok := m.db.topics[at.TopicID]
	if !ok {
		return false
	}
	return (departmentID == "" || t.DepartmentID == departmentID) &&
		(academicYearID == "" || t.AcademicYearID == academicYearID)
}

func (m *mockApprovedTopicRepo) Search(_ context.Context, filters *repository.ApprovedTopicFilters, offset, limit int) ([]model.ApprovedTopic, int64, error) {
	var result []model.ApprovedTopic
	for _, at := range m.db.approved {
		if !m.inScope(at, filters.DepartmentID, filters.AcademicYearID) {
			continue
		}
		if filters.Status != "" && at.Status != filters.Status {
			continue
		}
		result = append(result, *m.withRefs(at))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockApprovedTopicRepo) CountInScope(_ context.Context, departmentID, academicYearID string, statuses ...string) (int64, error) {
	var n int64
	for _, at := range m.db.approved {
		if m.inScope(at, departmentID, academicYearID) && (len(statuses) == 0 || contains(statuses, at.Status)) {
			n++
		}
	}
	return n, nil
}

func (m *mockApprovedTopicRepo) CountByStatus(_ context.Context, departmentID, academicYearID string) ([]repository.StatusCount, error) {
	counts := make(map[string]int64)
	for _, at := range m.db.approved {
		if m.inScope(at, departmentID, academicYearID) {
			counts[at.Status]++
		}
	}
	return statusCounts(counts), nil
}

func (m *mockApprovedTopicRepo) Update(_ context.Context, at *model.ApprovedTopic) error {
	cp := *at
	cp.Topic, cp.Documents = nil, nil
	m.db.approved[at.ApprovedTopicID] = &cp
	return nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct{ db *mockDB }

func (m *mockDocumentRepo) Create(_ context.Context, doc *model.ApprovedTopicDocument) error {
	for _, d := range m.db.documents {
		if d.ApprovedTopicID == doc.ApprovedTopicID && d.DocumentType == doc.DocumentType {
			return uniqueViolation()
		}
	}
	seq, _ := m.db.tick()
	doc.DocumentID = fmt.Sprintf("doc-%d", seq)
	cp := *doc
	m.db.documents[doc.DocumentID] = &cp
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (*model.ApprovedTopicDocument, error) {
	if d, ok := m.db.documents[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) GetByType(_ context.Context, approvedTopicID, documentType string) (*model.ApprovedTopicDocument, error) {
	for _, d := range m.db.documents {
		if d.ApprovedTopicID == approvedTopicID && d.DocumentType == documentType {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) ListByApprovedTopic(_ context.Context, approvedTopicID string) ([]model.ApprovedTopicDocument, error) {
	var result []model.ApprovedTopicDocument
	for _, d := range m.db.documents {
		if d.ApprovedTopicID == approvedTopicID {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DocumentType < result[j].DocumentType })
	return result, nil
}

func (m *mockDocumentRepo) Update(_ context.Context, doc *model.ApprovedTopicDocument) error {
	cp := *doc
	m.db.documents[doc.DocumentID] = &cp
	return nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id string) error {
	delete(m.db.documents, id)
	return nil
}

// ── Mock storage.Store ──

type mockStore struct {
	files   map[string][]byte
	deleted []string
	seq     int
}

func newMockStore() *mockStore {
	return &mockStore{files: make(map[string][]byte)}
}

func (s *mockStore) Save(_ context.Context, r io.Reader, subdir, filename string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.seq++
	url := fmt.Sprintf("/uploads/%s/%d-%s", subdir, s.seq, filename)
	s.files[url] = buf.Bytes()
	return url, nil
}

func (s *mockStore) Delete(_ context.Context, fileURL string) error {
	delete(s.files, fileURL)
	s.deleted = append(s.deleted, fileURL)
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		b.revoked[jti] = ttl
	}
	return nil
}

func (b *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

// ── 辅助函数 ──

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func statusCounts(counts map[string]int64) []repository.StatusCount {
	var rows []repository.StatusCount
	for status, total := range counts {
		rows = append(rows, repository.StatusCount{Status: status, Total: total})
	}
	return rows
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
