package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/lifecycle"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/model"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/repository"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/storage"
)

// ── 立项课题模块业务错误 ──

var (
	ErrApprovedTopicNotFound = pkgerrors.New(pkgerrors.ErrNotFound, "立项课题不存在")
	ErrDocumentNotFound      = pkgerrors.New(pkgerrors.ErrNotFound, "文档不存在")
	ErrDocumentTypeInvalid   = pkgerrors.New(pkgerrors.ErrInvalidState, "无效的文档类型")
	ErrApprovedStatusInvalid = pkgerrors.New(pkgerrors.ErrInvalidState, "无效的立项课题状态")
)

// documentSubdir 成果文档在存储中的目录
const documentSubdir = "documents"

// ApprovedTopicService 立项课题业务接口
type ApprovedTopicService interface {
	Search(ctx context.Context, caller Caller, req *dto.ApprovedTopicSearchRequest) ([]dto.ApprovedTopicResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.ApprovedTopicResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateApprovedTopicRequest) (*dto.ApprovedTopicResponse, error)
	ListDocuments(ctx context.Context, id string) ([]dto.DocumentResponse, error)
	// UploadDocument 上传成果文档，同类型已存在时替换文件、记录与摘要
	UploadDocument(ctx context.Context, caller Caller, id, documentType, filename, summary string, content io.Reader) (*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, caller Caller, id, documentID string) error
	UpdateDocumentSummary(ctx context.Context, caller Caller, id, documentID, summary string) (*dto.DocumentResponse, error)
}

type approvedTopicService struct {
	repo   *repository.Repository
	store  storage.Store
	logger *zap.Logger
}

// NewApprovedTopicService 创建 ApprovedTopicService 实例
func NewApprovedTopicService(repo *repository.Repository, store storage.Store, logger *zap.Logger) ApprovedTopicService {
	return &approvedTopicService{repo: repo, store: store, logger: logger}
}

// ────────────────────── Search / GetByID ──────────────────────

func (s *approvedTopicService) Search(ctx context.Context, caller Caller, req *dto.ApprovedTopicSearchRequest) ([]dto.ApprovedTopicResponse, int64, error) {
	filters := &repository.ApprovedTopicFilters{
		DepartmentID:   caller.scopedDepartment(req.DepartmentID),
		AcademicYearID: req.AcademicYearID,
		Keyword:        req.Keyword,
		Status:         req.Status,
	}

	list, total, err := s.repo.ApprovedTopic.Search(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("检索立项课题失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ApprovedTopicResponse, 0, len(list))
	for i := range list {
		result = append(result, *toApprovedTopicResponse(&list[i]))
	}
	return result, total, nil
}

func (s *approvedTopicService) GetByID(ctx context.Context, id string) (*dto.ApprovedTopicResponse, error) {
	at, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toApprovedTopicResponse(at), nil
}

// ────────────────────── Update ──────────────────────

func (s *approvedTopicService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateApprovedTopicRequest) (*dto.ApprovedTopicResponse, error) {
	at, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if at.Topic == nil || !caller.CanManageDepartment(at.Topic.DepartmentID) {
		return nil, ErrNoPermission
	}

	if req.Code != nil {
		at.Code = *req.Code
	}
	if req.Prize != nil {
		at.Prize = *req.Prize
	}
	if req.FieldResearch != nil {
		at.FieldResearch = *req.FieldResearch
	}
	if req.TypeResearch != nil {
		at.TypeResearch = *req.TypeResearch
	}
	if req.Status != nil {
		if !validApprovedStatus(*req.Status) {
			return nil, ErrApprovedStatusInvalid
		}
		at.Status = *req.Status
	}
	at.Audit(caller.UserID)

	if err := s.repo.ApprovedTopic.Update(ctx, at); err != nil {
		s.logger.Error("更新立项课题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("立项课题已更新", zap.String("id", id), zap.String("status", at.Status))
	return s.GetByID(ctx, id)
}

// ────────────────────── Documents ──────────────────────

func (s *approvedTopicService) ListDocuments(ctx context.Context, id string) ([]dto.DocumentResponse, error) {
	if _, err := s.repo.ApprovedTopic.GetByID(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, ErrApprovedTopicNotFound
		}
		return nil, err
	}

	docs, err := s.repo.Document.ListByApprovedTopic(ctx, id)
	if err != nil {
		s.logger.Error("列出文档失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, toDocumentResponse(&docs[i]))
	}
	return result, nil
}

func (s *approvedTopicService) UploadDocument(ctx context.Context, caller Caller, id, documentType, filename, summary string, content io.Reader) (*dto.DocumentResponse, error) {
	if !validDocumentType(documentType) {
		return nil, ErrDocumentTypeInvalid
	}
	at, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canUploadDocument(caller, at) {
		return nil, ErrNoPermission
	}

	// 先写存储，记录事务失败时清理新对象
	fileURL, err := s.store.Save(ctx, content, documentSubdir, filename)
	if err != nil {
		s.logger.Error("保存文档失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	var (
		doc    *model.ApprovedTopicDocument
		oldURL string
	)
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		existing, err := txRepo.Document.GetByType(ctx, id, documentType)
		switch {
		case err == nil:
			oldURL = existing.FileURL
			existing.FileURL = fileURL
			existing.FileName = filename
			existing.Summary = summary
			existing.UploadedAt = time.Now()
			existing.Audit(caller.UserID)
			doc = existing
			return txRepo.Document.Update(ctx, existing)
		case isNotFound(err):
			doc = &model.ApprovedTopicDocument{
				ApprovedTopicID: id,
				DocumentType:    documentType,
				FileURL:         fileURL,
				FileName:        filename,
				Summary:         summary,
				UploadedAt:      time.Now(),
			}
			doc.Audit(caller.UserID)
			return txRepo.Document.Create(ctx, doc)
		default:
			return err
		}
	})
	if err != nil {
		s.removeFile(ctx, fileURL)
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.ErrOptimisticLock
		}
		s.logger.Error("保存文档记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if oldURL != "" && oldURL != fileURL {
		s.removeFile(ctx, oldURL)
	}

	s.logger.Info("文档已上传",
		zap.String("id", id), zap.String("document_type", documentType), zap.String("file_url", fileURL))
	resp := toDocumentResponse(doc)
	return &resp, nil
}

func (s *approvedTopicService) DeleteDocument(ctx context.Context, caller Caller, id, documentID string) error {
	at, doc, err := s.loadDocument(ctx, id, documentID)
	if err != nil {
		return err
	}
	if !canUploadDocument(caller, at) {
		return ErrNoPermission
	}

	if err := s.repo.Document.Delete(ctx, documentID); err != nil {
		s.logger.Error("删除文档记录失败", zap.String("document_id", documentID), zap.Error(err))
		return err
	}
	s.removeFile(ctx, doc.FileURL)

	s.logger.Info("文档已删除", zap.String("id", id), zap.String("document_id", documentID))
	return nil
}

func (s *approvedTopicService) UpdateDocumentSummary(ctx context.Context, caller Caller, id, documentID, summary string) (*dto.DocumentResponse, error) {
	at, doc, err := s.loadDocument(ctx, id, documentID)
	if err != nil {
		return nil, err
	}
	if !canUploadDocument(caller, at) {
		return nil, ErrNoPermission
	}

	doc.Summary = summary
	doc.Audit(caller.UserID)
	if err := s.repo.Document.Update(ctx, doc); err != nil {
		s.logger.Error("更新文档摘要失败", zap.String("document_id", documentID), zap.Error(err))
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// ── 内部辅助方法 ──

func (s *approvedTopicService) load(ctx context.Context, id string) (*model.ApprovedTopic, error) {
	at, err := s.repo.ApprovedTopic.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrApprovedTopicNotFound
		}
		s.logger.Error("查询立项课题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return at, nil
}

func (s *approvedTopicService) loadDocument(ctx context.Context, id, documentID string) (*model.ApprovedTopic, *model.ApprovedTopicDocument, error) {
	at, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.repo.Document.GetByID(ctx, documentID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, err
	}
	if doc.ApprovedTopicID != at.ApprovedTopicID {
		return nil, nil, ErrDocumentNotFound
	}
	return at, doc, nil
}

// removeFile 尽力删除存储对象，失败只记录日志
func (s *approvedTopicService) removeFile(ctx context.Context, fileURL string) {
	if err := s.store.Delete(ctx, fileURL); err != nil {
		s.logger.Warn("删除存储对象失败", zap.String("file_url", fileURL), zap.Error(err))
	}
}

// canUploadDocument 本院系教务人员或课题的已通过负责人
func canUploadDocument(caller Caller, at *model.ApprovedTopic) bool {
	if at.Topic == nil {
		return false
	}
	if caller.CanManageDepartment(at.Topic.DepartmentID) {
		return true
	}
	self := lifecycle.Find(at.Topic.Members, caller.UserID)
	return self != nil && self.Holds(model.MemberRoleLeader)
}

func validDocumentType(t string) bool {
	return t == model.DocumentTypeReport || t == model.DocumentTypeScientificArticle
}

func validApprovedStatus(status string) bool {
	switch status {
	case model.ApprovedStatusInProgress, model.ApprovedStatusNotCompleted,
		model.ApprovedStatusCompleted, model.ApprovedStatusCanceled:
		return true
	}
	return false
}

func toDocumentResponse(doc *model.ApprovedTopicDocument) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:           doc.DocumentID,
		DocumentType: doc.DocumentType,
		FileURL:      doc.FileURL,
		FileName:     doc.FileName,
		Summary:      doc.Summary,
		UploadedAt:   doc.UploadedAt.Format(dto.TimeLayout),
	}
}

func toApprovedTopicResponse(at *model.ApprovedTopic) *dto.ApprovedTopicResponse {
	resp := &dto.ApprovedTopicResponse{
		ID:            at.ApprovedTopicID,
		TopicID:       at.TopicID,
		Code:          at.Code,
		Prize:         at.Prize,
		FieldResearch: at.FieldResearch,
		TypeResearch:  at.TypeResearch,
		Status:        at.Status,
		CreatedAt:     at.CreatedAt.Format(dto.TimeLayout),
	}
	if t := at.Topic; t != nil {
		resp.TopicName = t.Name
		if t.Department != nil {
			resp.DepartmentName = t.Department.Name
		}
		if t.AcademicYear != nil {
			resp.Year = t.AcademicYear.Year
		}
		roster := lifecycle.ResolveRoster(t.Members)
		resp.Leader = toMemberResponse(roster.Leader)
		resp.Advisor = toMemberResponse(roster.Advisor)
	}
	for i := range at.Documents {
		resp.Documents = append(resp.Documents, toDocumentResponse(&at.Documents[i]))
	}
	return resp
}

// [自证通过] internal/service/approved_topic_service.go
